package shell

import (
	"bufio"
	"io"
)

// LineReader supplies input one line at a time, without the trailing newline.
// *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

type scanReader struct {
	scanner *bufio.Scanner
}

// NewScanReader reads lines from a non-interactive source such as a pipe or
// a file; prompts are never shown.
func NewScanReader(r io.Reader) LineReader {
	return &scanReader{scanner: bufio.NewScanner(r)}
}

func (s *scanReader) Readline() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (*scanReader) SetPrompt(string) {}
