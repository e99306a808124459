// Package presenter renders broker events for the terminal and lands
// incoming files on disk.
package presenter

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	chat "github.com/example/terminal-chat/domain/chat"
)

// palette maps the username hash onto the eight base ANSI colors:
// red, green, yellow, blue, magenta, cyan, white, grey.
var palette = []lipgloss.Color{"1", "2", "3", "4", "5", "6", "7", "8"}

var timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

// Timestamps are rendered in Indian Standard Time, UTC+5:30.
var istZone = time.FixedZone("IST", 5*3600+30*60)

const timestampLayout = "02 Jan 06 15:04:05"

// Presenter formats chat lines for a terminal of a given width.
type Presenter struct {
	// Width is the terminal width timestamps are right-aligned to.
	Width int

	// DownloadsDir is where incoming files are written. Defaults to
	// "downloads" in the working directory.
	DownloadsDir string

	// Notify and Sound are invoked for incoming messages when set.
	Notify func(title, body string)
	Sound  func()
}

// New creates a presenter. The downloads directory comes from
// DOWNLOADS_DIR when set.
func New(width int) *Presenter {
	dir := os.Getenv("DOWNLOADS_DIR")
	if dir == "" {
		dir = "downloads"
	}
	return &Presenter{Width: width, DownloadsDir: dir}
}

// ColorIndex hashes a username onto the palette. The same name always
// maps to the same color, on every client.
func ColorIndex(username string) int {
	sum := 0
	for _, b := range []byte(username) {
		sum += int(b)
	}
	return sum % len(palette)
}

// ColorFor returns the palette color for a username.
func ColorFor(username string) lipgloss.Color {
	return palette[ColorIndex(username)]
}

// Padding returns the space count that right-aligns a timestamp of the
// given length after the plain-text line, never negative.
func Padding(width, lineLen, timestampLen int) int {
	pad := width - lineLen - timestampLen
	if pad < 0 {
		return 0
	}
	return pad
}

// FormatLine renders one "username: body" line with the username colored
// and the timestamp right-aligned in red. Lines without a "username: "
// prefix pass through with just the timestamp appended.
func (p *Presenter) FormatLine(line string, ts time.Time) string {
	stamp := ts.In(istZone).Format(timestampLayout)

	username, body, found := strings.Cut(line, ": ")
	if !found {
		pad := Padding(p.Width, len(line), len(stamp))
		return line + strings.Repeat(" ", pad) + timestampStyle.Render(stamp)
	}

	nameStyle := lipgloss.NewStyle().Foreground(ColorFor(username))
	pad := Padding(p.Width, len(username)+2+len(body), len(stamp))

	return nameStyle.Render(username+": ") + body +
		strings.Repeat(" ", pad) + timestampStyle.Render(stamp)
}

// FormatMessage renders a persisted message, used for history playback.
// File messages become a reference line since the payload is not stored.
func (p *Presenter) FormatMessage(msg chat.Message) string {
	body := msg.Body
	if msg.IsFile() {
		body = "sent a file: " + msg.Filename
	}
	return p.FormatLine(msg.Username+": "+body, msg.CreatedAt)
}

// SaveFile decodes an incoming file payload and writes it to the
// downloads directory. A repeated filename overwrites the earlier copy.
func (p *Presenter) SaveFile(filename, data string) (string, error) {
	payload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("decode file payload: %w", err)
	}

	if err := os.MkdirAll(p.DownloadsDir, 0o755); err != nil {
		return "", fmt.Errorf("create downloads dir: %w", err)
	}

	dest := filepath.Join(p.DownloadsDir, filepath.Base(filename))
	if err := os.WriteFile(dest, payload, 0o644); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}
	return dest, nil
}

// Render turns a broker event into terminal output. Presence and error
// events are plain lines; chat lines get the full treatment.
func (p *Presenter) Render(ev chat.Event) string {
	switch ev.Type {
	case chat.EventChatMessage:
		p.notify("New message", ev.Text)
		return p.FormatLine(ev.Text, ev.Timestamp)

	case chat.EventUserJoined, chat.EventUserLeft, chat.EventJoined:
		return ev.Message

	case chat.EventFile:
		dest, err := p.SaveFile(ev.Filename, ev.Data)
		if err != nil {
			return fmt.Sprintf("could not save %s: %v", ev.Filename, err)
		}
		p.notify("File received", ev.Filename)
		return p.FormatLine(ev.Username+": sent a file, saved to "+dest, ev.Timestamp)

	case chat.EventHistory:
		lines := make([]string, 0, len(ev.History))
		for _, msg := range ev.History {
			lines = append(lines, p.FormatMessage(msg))
		}
		return strings.Join(lines, "\n")

	case chat.EventError:
		return "error: " + ev.Error

	default:
		return ""
	}
}

func (p *Presenter) notify(title, body string) {
	if p.Notify != nil {
		p.Notify(title, body)
	}
	if p.Sound != nil {
		p.Sound()
	}
}
