package prompt

import (
	"errors"
	"io"
	"os"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// Terminal prompts with a readline line editor on an interactive TTY.
type Terminal struct {
	lineAsker
	rl *readline.Instance
}

func NewTerminal(in *os.File, out io.Writer) (*Terminal, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "> ",
		Stdin:                  in,
		Stdout:                 out,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
	})
	if err != nil {
		return nil, err
	}
	t := &Terminal{rl: rl}
	t.lineAsker = lineAsker{
		out: out,
		readLine: func(prompt string) (string, error) {
			t.rl.SetPrompt(prompt)
			line, err := t.rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return "", ErrAborted
			}
			return line, err
		},
	}
	return t, nil
}

func (t *Terminal) Close() error { return t.rl.Close() }

// Open picks the prompter for the process: none when prompting is disabled,
// a line editor on a TTY and a plain line reader otherwise. The returned
// close func releases the terminal.
func Open(in io.Reader, out io.Writer, disabled bool) (Prompter, func() error, error) {
	noop := func() error { return nil }
	if disabled {
		return Disabled{}, noop, nil
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t, err := NewTerminal(f, out)
		if err != nil {
			return nil, noop, err
		}
		return t, t.Close, nil
	}
	return NewLines(in, out), noop, nil
}
