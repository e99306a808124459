package presenter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	chat "github.com/example/terminal-chat/domain/chat"
)

func TestColorIndexStable(t *testing.T) {
	tests := []struct {
		username string
		want     int
	}{
		// byte sums: "a"=97, "ab"=195, "alice"=510
		{"a", 97 % 8},
		{"ab", 195 % 8},
		{"alice", 510 % 8},
	}
	for _, tt := range tests {
		if got := ColorIndex(tt.username); got != tt.want {
			t.Errorf("ColorIndex(%q) = %d, want %d", tt.username, got, tt.want)
		}
		// Same name, same color, every time.
		if got := ColorIndex(tt.username); got != tt.want {
			t.Errorf("ColorIndex(%q) second call = %d, want %d", tt.username, got, tt.want)
		}
	}
}

func TestPadding(t *testing.T) {
	tests := []struct {
		name                 string
		width, line, stamp   int
		want                 int
	}{
		{"spare room", 80, 20, 18, 42},
		{"exact fit", 40, 22, 18, 0},
		{"overflow floors at zero", 30, 25, 18, 0},
		{"empty line", 80, 0, 18, 62},
	}
	for _, tt := range tests {
		if got := Padding(tt.width, tt.line, tt.stamp); got != tt.want {
			t.Errorf("%s: Padding(%d, %d, %d) = %d, want %d",
				tt.name, tt.width, tt.line, tt.stamp, got, tt.want)
		}
	}
}

func TestFormatLineTimestampInIST(t *testing.T) {
	p := &Presenter{Width: 80}
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	out := p.FormatLine("alice: hello", ts)
	// 12:00 UTC is 17:30 IST.
	if !strings.Contains(out, "01 Mar 24 17:30:00") {
		t.Errorf("expected IST timestamp in %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("expected body in %q", out)
	}
}

func TestFormatLinePassThrough(t *testing.T) {
	p := &Presenter{Width: 80}
	out := p.FormatLine("no separator here", time.Now())
	if !strings.HasPrefix(out, "no separator here") {
		t.Errorf("line without separator should pass through, got %q", out)
	}
}

func TestFormatMessageFile(t *testing.T) {
	p := &Presenter{Width: 120}
	out := p.FormatMessage(chat.Message{
		Username: "bob",
		Filename: "report.pdf",
	})
	if !strings.Contains(out, "sent a file: report.pdf") {
		t.Errorf("file message should reference the filename, got %q", out)
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	p := &Presenter{Width: 80, DownloadsDir: dir}

	dest, err := p.SaveFile("notes.txt", "aGVsbG8=")
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if dest != filepath.Join(dir, "notes.txt") {
		t.Errorf("unexpected destination %q", dest)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("saved content = %q, want %q", got, "hello")
	}

	// A second file with the same name overwrites the first.
	if _, err := p.SaveFile("notes.txt", "d29ybGQ="); err != nil {
		t.Fatalf("SaveFile overwrite: %v", err)
	}
	got, _ = os.ReadFile(dest)
	if string(got) != "world" {
		t.Errorf("overwritten content = %q, want %q", got, "world")
	}
}

func TestSaveFileStripsPath(t *testing.T) {
	dir := t.TempDir()
	p := &Presenter{Width: 80, DownloadsDir: dir}

	dest, err := p.SaveFile("../../etc/passwd", "aGVsbG8=")
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if dest != filepath.Join(dir, "passwd") {
		t.Errorf("path components should be stripped, got %q", dest)
	}
}

func TestSaveFileBadBase64(t *testing.T) {
	p := &Presenter{Width: 80, DownloadsDir: t.TempDir()}
	if _, err := p.SaveFile("x.bin", "not base64!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}
