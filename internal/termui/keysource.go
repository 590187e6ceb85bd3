package termui

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/techbench/diagstation/internal/diagtest"
)

// escapeSequences maps the common xterm/VT sequences to key names. Anything
// not listed falls back to "esc" plus the literal bytes.
var escapeSequences = map[string]string{
	"[A":   "up",
	"[B":   "down",
	"[C":   "right",
	"[D":   "left",
	"[H":   "home",
	"[F":   "end",
	"[2~":  "insert",
	"[3~":  "delete",
	"[5~":  "pgup",
	"[6~":  "pgdn",
	"OP":   "f1",
	"OQ":   "f2",
	"OR":   "f3",
	"OS":   "f4",
	"[15~": "f5",
	"[17~": "f6",
	"[18~": "f7",
	"[19~": "f8",
	"[20~": "f9",
	"[21~": "f10",
	"[23~": "f11",
	"[24~": "f12",
}

// decodeChunk turns one raw terminal read into a key name. Escape sequences
// arrive as a single chunk; a lone ESC byte is the Esc key itself, and an
// ESC-prefixed letter is the Alt chord for that letter.
func decodeChunk(chunk []byte) string {
	if len(chunk) == 0 {
		return ""
	}

	if chunk[0] == 0x1b {
		if len(chunk) == 1 {
			return "esc"
		}
		if name, ok := escapeSequences[string(chunk[1:])]; ok {
			return name
		}
		if len(chunk) == 2 && chunk[1] >= 'a' && chunk[1] <= 'z' {
			return fmt.Sprintf("alt+%c", chunk[1])
		}
		return "esc"
	}

	b := chunk[0]
	switch {
	case b == '\r' || b == '\n':
		return "enter"
	case b == '\t':
		return "tab"
	case b == 0x7f || b == 0x08:
		return "backspace"
	case b == ' ':
		return "space"
	case b < 0x20:
		// Control codes 0x01..0x1a are Ctrl chords for a..z.
		if b >= 0x01 && b <= 0x1a {
			return fmt.Sprintf("ctrl+%c", 'a'+b-1)
		}
		return ""
	}

	// Multi-byte UTF-8 (accented letters, "ç") comes through as one chunk.
	return string(chunk)
}

// TerminalKeys captures raw keystrokes from the controlling terminal. The
// terminal is in raw mode only while a capture session is active; a Finish
// event hands the terminal back in cooked mode so the caller can prompt, and
// calling Events again resumes capture.
type TerminalKeys struct {
	fd int

	mu       sync.Mutex
	oldState *term.State
	stop     chan struct{}
}

// NewTerminalKeys builds a key source over standard input. Fails when stdin
// is not a terminal.
func NewTerminalKeys() (*TerminalKeys, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("standard input is not a terminal")
	}
	return &TerminalKeys{fd: fd}, nil
}

// Events switches the terminal to raw mode and streams decoded key events.
// Pressing Esc twice in a row restores cooked mode, emits a Finish event and
// closes the channel; the source stays usable and Events may be called again
// to resume. The channel also closes when the context is cancelled or the
// terminal read fails.
func (t *TerminalKeys) Events(ctx context.Context) (<-chan diagtest.KeyEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.oldState != nil {
		return nil, fmt.Errorf("key capture already active")
	}

	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	t.oldState = state
	t.stop = make(chan struct{})

	events := make(chan diagtest.KeyEvent, 16)
	go t.readLoop(ctx, t.stop, events)
	return events, nil
}

func (t *TerminalKeys) readLoop(ctx context.Context, stop <-chan struct{}, events chan<- diagtest.KeyEvent) {
	defer close(events)

	buf := make([]byte, 8)
	lastWasEsc := false

	for {
		if !t.waitReadable(ctx, stop) {
			return
		}

		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}

		key := decodeChunk(buf[:n])
		if key == "" {
			continue
		}

		if key == "esc" && lastWasEsc {
			// Hand the terminal back before the finish prompts run. The test
			// re-opens the source when the operator chooses to continue.
			t.suspend()
			select {
			case events <- diagtest.KeyEvent{Finish: true}:
			case <-ctx.Done():
			}
			return
		}
		lastWasEsc = key == "esc"

		select {
		case events <- diagtest.KeyEvent{Key: key}:
		case <-ctx.Done():
			return
		}
	}
}

// waitReadable polls stdin instead of blocking in Read, so a finished capture
// session never leaves a pending read behind that would swallow the next
// keystroke meant for a prompt.
func (t *TerminalKeys) waitReadable(ctx context.Context, stop <-chan struct{}) bool {
	fds := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}
	for {
		select {
		case <-ctx.Done():
			return false
		case <-stop:
			return false
		default:
		}

		fds[0].Revents = 0
		n, err := unix.Poll(fds, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return false
		}
		if n > 0 {
			return true
		}
	}
}

// suspend restores cooked mode while keeping the source reusable.
func (t *TerminalKeys) suspend() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.oldState != nil {
		_ = term.Restore(t.fd, t.oldState)
		t.oldState = nil
	}
	t.stop = nil
}

// Close stops the read loop and restores the terminal state. Idempotent.
func (t *TerminalKeys) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	if t.oldState == nil {
		return nil
	}
	err := term.Restore(t.fd, t.oldState)
	t.oldState = nil
	return err
}
