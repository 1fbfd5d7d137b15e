package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// lineAsker renders menus and re-asks on invalid input on top of any
// "print a prompt, read a line" primitive.
type lineAsker struct {
	out      io.Writer
	readLine func(prompt string) (string, error)
}

func (a lineAsker) Input(label string, validate func(string) error) (string, error) {
	for {
		line, err := a.readLine(label + " ")
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if validate == nil {
			return line, nil
		}
		if verr := validate(line); verr != nil {
			_, _ = fmt.Fprintf(a.out, "  invalid input: %v\n", verr)
			continue
		}
		return line, nil
	}
}

// Select lists the options numbered from 1; an empty answer picks the first.
func (a lineAsker) Select(label string, options []string) (int, error) {
	_, _ = fmt.Fprintln(a.out)
	_, _ = fmt.Fprintln(a.out, label)
	for i, opt := range options {
		_, _ = fmt.Fprintf(a.out, "  %d) %s\n", i+1, opt)
	}
	choice := 0
	_, err := a.Input(fmt.Sprintf("Choose 1-%d [1]:", len(options)), func(raw string) error {
		if raw == "" {
			choice = 0
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > len(options) {
			return fmt.Errorf("enter a number between 1 and %d", len(options))
		}
		choice = n - 1
		return nil
	})
	if err != nil {
		return 0, err
	}
	return choice, nil
}

// Lines prompts over a plain line-oriented reader such as piped stdin.
type Lines struct {
	lineAsker
}

func NewLines(in io.Reader, out io.Writer) *Lines {
	reader := bufio.NewReader(in)
	return &Lines{lineAsker{
		out: out,
		readLine: func(prompt string) (string, error) {
			_, _ = fmt.Fprint(out, prompt)
			line, err := reader.ReadString('\n')
			if errors.Is(err, io.EOF) {
				if line == "" {
					return "", ErrAborted
				}
				return line, nil
			}
			return line, err
		},
	}}
}
