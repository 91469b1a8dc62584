package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Interactive reports whether f is a terminal a person can answer prompts on.
func Interactive(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Prompter asks yes/no questions on a line-oriented input. Anything other
// than y or yes is a no, and so is end of input.
type Prompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
	// AssumeYes answers every prompt without reading input.
	AssumeYes bool
}

func NewPrompter(in *bufio.Reader, out io.Writer) *Prompter {
	if out == nil {
		out = io.Discard
	}
	return &Prompter{in: in, out: out}
}

func (p *Prompter) Confirm(prompt string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.AssumeYes {
		return true
	}
	if p.in == nil {
		return false
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
