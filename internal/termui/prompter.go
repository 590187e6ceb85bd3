// Package termui implements the operator-facing terminal interaction: plain
// prompts and raw-mode keyboard capture.
package termui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter asks the operator questions over the terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter builds a prompter over the given streams. Pass os.Stdin and
// os.Stdout for interactive use.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// StdPrompter builds a prompter on the process's standard streams.
func StdPrompter() *Prompter {
	return NewPrompter(os.Stdin, os.Stdout)
}

// Notify prints a message to the operator.
func (p *Prompter) Notify(msg string) {
	fmt.Fprintln(p.out, msg)
}

// Confirm asks a yes/no question and keeps asking until it gets an answer it
// understands. EOF on the input stream is an error.
func (p *Prompter) Confirm(question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s [y/n]: ", question)
		line, err := p.readLine()
		if err != nil {
			return false, fmt.Errorf("read answer: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, `Please answer "y" or "n".`)
	}
}

// ReadLine asks for a free-form answer and returns the trimmed line.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", prompt)
	line, err := p.readLine()
	if err != nil {
		return "", fmt.Errorf("read line: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readLine reads up to the next line terminator. Both LF and a lone CR end
// the line: a terminal that was just in raw mode delivers Enter as CR with no
// LF following.
func (p *Prompter) readLine() (string, error) {
	var b strings.Builder
	for {
		r, _, err := p.in.ReadRune()
		if err != nil {
			if b.Len() > 0 && errors.Is(err, io.EOF) {
				return b.String(), nil
			}
			return "", err
		}
		switch r {
		case '\n':
			return b.String(), nil
		case '\r':
			// Swallow an LF already buffered behind the CR; never block
			// waiting for one that may not come.
			if p.in.Buffered() > 0 {
				if next, _ := p.in.Peek(1); len(next) > 0 && next[0] == '\n' {
					_, _ = p.in.ReadByte()
				}
			}
			return b.String(), nil
		default:
			b.WriteRune(r)
		}
	}
}
