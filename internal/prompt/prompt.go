// Package prompt resolves stage values that are either supplied on the
// command line or solicited from the operator.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	clierr "github.com/ggonzalez94/near-cli/internal/errors"
)

// ErrAborted is returned when the operator interrupts or closes a prompt.
var ErrAborted = errors.New("prompt aborted by operator")

// Prompter asks the operator for values. Both calls block until an answer
// passes validation; they only fail when the operator aborts.
type Prompter interface {
	Select(label string, options []string) (int, error)
	Input(label string, validate func(string) error) (string, error)
}

// Args is the ordered chain of values supplied for one session.
type Args struct {
	tokens []string
	pos    int
}

func NewArgs(tokens []string) *Args {
	return &Args{tokens: append([]string(nil), tokens...)}
}

// Take consumes the next supplied value.
func (a *Args) Take() (string, bool) {
	if a == nil || a.pos >= len(a.tokens) {
		return "", false
	}
	v := a.tokens[a.pos]
	a.pos++
	return v, true
}

func (a *Args) peek() (string, bool) {
	if a == nil || a.pos >= len(a.tokens) {
		return "", false
	}
	return a.tokens[a.pos], true
}

func (a *Args) Remaining() []string {
	if a == nil || a.pos >= len(a.tokens) {
		return nil
	}
	return append([]string(nil), a.tokens[a.pos:]...)
}

// Field describes one value: the name used in errors, the prompt label and
// the parsing rule shared by supplied and typed input.
type Field[T any] struct {
	Name  string
	Label string
	Parse func(string) (T, error)
}

// Resolve returns the supplied value when there is one and prompts otherwise.
func Resolve[T any](p Prompter, args *Args, f Field[T]) (T, error) {
	var zero T
	if raw, ok := args.Take(); ok {
		v, err := f.Parse(raw)
		if err != nil {
			return zero, clierr.Wrap(clierr.CodeUsage, fmt.Sprintf("invalid %s %q", f.Name, raw), err)
		}
		return v, nil
	}
	var parsed T
	_, err := p.Input(f.Label, func(raw string) error {
		v, err := f.Parse(raw)
		if err != nil {
			return err
		}
		parsed = v
		return nil
	})
	if err != nil {
		return zero, promptError(f.Name, err)
	}
	return parsed, nil
}

// Entry is one variant of a menu: the tag accepted on the command line, the
// label shown to the operator and the constructor of the variant.
type Entry[T any] struct {
	Tag   string
	Label string
	Build func() (T, error)
}

// Menu is a closed set of variants. The same entries drive the interactive
// list and the mapping from a supplied tag back to a constructor.
type Menu[T any] struct {
	Name    string
	Label   string
	Entries []Entry[T]
}

func (m Menu[T]) Tags() []string {
	tags := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		tags = append(tags, e.Tag)
	}
	return tags
}

// Choose picks a variant and runs its constructor. A single-entry menu is
// picked without prompting and only consumes a supplied token equal to its tag.
func (m Menu[T]) Choose(p Prompter, args *Args) (T, error) {
	var zero T
	if len(m.Entries) == 0 {
		return zero, clierr.New(clierr.CodeInternal, fmt.Sprintf("menu %s has no entries", m.Name))
	}
	if len(m.Entries) == 1 {
		if raw, ok := args.peek(); ok && strings.EqualFold(raw, m.Entries[0].Tag) {
			args.Take()
		}
		return m.Entries[0].Build()
	}
	if raw, ok := args.Take(); ok {
		for _, e := range m.Entries {
			if strings.EqualFold(raw, e.Tag) {
				return e.Build()
			}
		}
		return zero, clierr.New(clierr.CodeUsage, fmt.Sprintf("invalid %s %q (expected %s)", m.Name, raw, strings.Join(m.Tags(), "|")))
	}
	labels := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		labels = append(labels, e.Label)
	}
	idx, err := p.Select(m.Label, labels)
	if err != nil {
		return zero, promptError(m.Name, err)
	}
	if idx < 0 || idx >= len(m.Entries) {
		return zero, clierr.New(clierr.CodeInternal, fmt.Sprintf("prompt returned option %d of %d for %s", idx, len(m.Entries), m.Name))
	}
	return m.Entries[idx].Build()
}

func promptError(name string, err error) error {
	if _, ok := clierr.As(err); ok {
		return err
	}
	if errors.Is(err, ErrAborted) {
		return clierr.Wrap(clierr.CodeAborted, "aborted while resolving "+name, err)
	}
	return clierr.Wrap(clierr.CodeInternal, "prompt for "+name, err)
}
