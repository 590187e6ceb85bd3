package termui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techbench/diagstation/internal/diagtest"
)

func TestDecodeChunk(t *testing.T) {
	tests := []struct {
		name  string
		chunk []byte
		want  string
	}{
		{"letter", []byte("a"), "a"},
		{"uppercase letter", []byte("A"), "A"},
		{"utf8 cedilla", []byte("ç"), "ç"},
		{"space", []byte(" "), "space"},
		{"enter cr", []byte{'\r'}, "enter"},
		{"enter lf", []byte{'\n'}, "enter"},
		{"tab", []byte{'\t'}, "tab"},
		{"backspace del", []byte{0x7f}, "backspace"},
		{"ctrl-a", []byte{0x01}, "ctrl+a"},
		{"ctrl-z", []byte{0x1a}, "ctrl+z"},
		{"lone esc", []byte{0x1b}, "esc"},
		{"alt chord", []byte{0x1b, 'x'}, "alt+x"},
		{"arrow up", []byte("\x1b[A"), "up"},
		{"arrow left", []byte("\x1b[D"), "left"},
		{"home", []byte("\x1b[H"), "home"},
		{"delete", []byte("\x1b[3~"), "delete"},
		{"page up", []byte("\x1b[5~"), "pgup"},
		{"page down", []byte("\x1b[6~"), "pgdn"},
		{"f1", []byte("\x1bOP"), "f1"},
		{"f12", []byte("\x1b[24~"), "f12"},
		{"unknown escape", []byte("\x1b[99z"), "esc"},
		{"empty", nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, decodeChunk(tc.chunk))
		})
	}
}

// quietPrompter satisfies diagtest.Prompter without a terminal.
type quietPrompter struct{}

func (quietPrompter) Notify(string) {}

func (quietPrompter) Confirm(string) (bool, error) { return true, nil }

// chunkKeys feeds raw terminal byte chunks through decodeChunk, mirroring the
// read loop's double-Esc handling.
type chunkKeys struct {
	chunks [][]byte
}

func (s *chunkKeys) Events(context.Context) (<-chan diagtest.KeyEvent, error) {
	ch := make(chan diagtest.KeyEvent, len(s.chunks))
	lastWasEsc := false
	for _, c := range s.chunks {
		key := decodeChunk(c)
		if key == "" {
			continue
		}
		if key == "esc" && lastWasEsc {
			ch <- diagtest.KeyEvent{Finish: true}
			break
		}
		lastWasEsc = key == "esc"
		ch <- diagtest.KeyEvent{Key: key}
	}
	close(ch)
	return ch, nil
}

func (s *chunkKeys) Close() error { return nil }

// fullLayoutChunks yields one raw terminal byte sequence per physical key
// slot, chords standing in for the keys only reachable in combination.
func fullLayoutChunks() [][]byte {
	seqs := []string{
		"\x1b",
		"\x1bOP", "\x1bOQ", "\x1bOR", "\x1bOS",
		"\x1b[15~", "\x1b[17~", "\x1b[18~", "\x1b[19~",
		"\x1b[20~", "\x1b[21~", "\x1b[23~", "\x1b[24~",

		"'", "1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "-", "=",
		"\x7f", "\x1b[2~", "\x1b[H", "\x1b[5~",

		"\t", "q", "w", "e", "r", "t", "y", "u", "i", "o", "p", "[", "]",
		"\x1b[3~", "\x1b[F", "\x1b[6~",

		"a", "s", "d", "f", "g", "h", "j", "k", "l", "ç", ";", "`",
		"\r",

		"Z", // uppercase marks both shift variants plus z
		"\\", "x", "c", "v", "b", "n", "m", ",", ".", "/",
		"\x1b[A",

		"\x01",  // Ctrl chord marks both ctrl variants
		"\x1bq", // Alt chord marks both alt variants
		" ",
		"\x1b[D", "\x1b[B", "\x1b[C",
	}

	chunks := make([][]byte, 0, len(seqs))
	for _, s := range seqs {
		chunks = append(chunks, []byte(s))
	}
	return chunks
}

// Every layout slot must be reachable through decoded terminal input, or
// full coverage could never pass on a real keyboard.
func TestKeyboardLayoutReachableFromTerminal(t *testing.T) {
	kt := diagtest.NewKeyboard(quietPrompter{}, &chunkKeys{chunks: fullLayoutChunks()}, 0)

	require.NoError(t, kt.Initialize(context.Background()))
	require.NoError(t, kt.Execute(context.Background()))

	res := kt.Result()
	require.True(t, res.Success)

	d, ok := res.Details.(diagtest.KeyboardDetails)
	require.True(t, ok)
	assert.Empty(t, d.MissingKeys)
	assert.Equal(t, d.TotalKeys, d.PressedKeys)
}
