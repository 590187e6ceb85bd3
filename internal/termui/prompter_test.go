package termui

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmAnswers(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"NO\n", false},
		{"  y  \n", true},
		{"y\r\n", true},
		{"n\r", false},
	}

	for _, tc := range tests {
		var out bytes.Buffer
		p := NewPrompter(strings.NewReader(tc.input), &out)
		ok, err := p.Confirm("Proceed?")
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, "input %q", tc.input)
		assert.Contains(t, out.String(), "Proceed? [y/n]: ")
	}
}

func TestConfirmRepromptsOnGarbage(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("maybe\nwhat\ny\n"), &out)

	ok, err := p.Confirm("Proceed?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, strings.Count(out.String(), "Proceed? [y/n]: "))
}

// A terminal leaving raw mode hands Confirm a CR-terminated answer with no
// LF and no EOF behind it; the read must still complete.
func TestConfirmCarriageReturnWithoutLineFeed(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	p := NewPrompter(pr, &bytes.Buffer{})

	type answer struct {
		ok  bool
		err error
	}
	done := make(chan answer, 1)
	go func() {
		ok, err := p.Confirm("Proceed?")
		done <- answer{ok, err}
	}()

	_, err := pw.Write([]byte("y\r"))
	require.NoError(t, err)

	select {
	case got := <-done:
		require.NoError(t, got.err)
		assert.True(t, got.ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Confirm did not return on a CR-terminated answer")
	}
}

func TestConfirmEOF(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), &bytes.Buffer{})
	_, err := p.Confirm("Proceed?")
	assert.Error(t, err)
}

func TestReadLine(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  Maria Silva  \n"), &out)

	line, err := p.ReadLine("Technician name")
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", line)
	assert.Contains(t, out.String(), "Technician name: ")
}

func TestNotify(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(""), &out)
	p.Notify("hello")
	assert.Equal(t, "hello\n", out.String())
}
