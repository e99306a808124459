package files

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		name      string
		room      string
		messageID string
		filename  string
		want      string
	}{
		{
			name:      "plain filename",
			room:      "general",
			messageID: "msg-1",
			filename:  "notes.txt",
			want:      "general/msg-1/notes.txt",
		},
		{
			name:      "path components are stripped",
			room:      "general",
			messageID: "msg-2",
			filename:  "../../etc/passwd",
			want:      "general/msg-2/passwd",
		},
		{
			name:      "same filename different messages stay distinct",
			room:      "random",
			messageID: "msg-3",
			filename:  "notes.txt",
			want:      "random/msg-3/notes.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, objectName(tt.room, tt.messageID, tt.filename))
		})
	}
}
