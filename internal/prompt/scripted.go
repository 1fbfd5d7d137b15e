package prompt

import (
	"fmt"
	"strconv"
	"strings"
)

// Scripted answers prompts from a fixed list and records every label it was
// asked. Select answers may be an option label or a 1-based index. An
// answer rejected by validation is recorded and the next answer is tried.
type Scripted struct {
	Answers  []string
	Prompts  []string
	Rejected []string
}

func NewScripted(answers ...string) *Scripted {
	return &Scripted{Answers: answers}
}

func (s *Scripted) next(label string) (string, error) {
	s.Prompts = append(s.Prompts, label)
	if len(s.Answers) == 0 {
		return "", fmt.Errorf("%w: unexpected prompt %q", ErrAborted, label)
	}
	v := s.Answers[0]
	s.Answers = s.Answers[1:]
	return v, nil
}

func (s *Scripted) Select(label string, options []string) (int, error) {
	answer, err := s.next(label)
	if err != nil {
		return 0, err
	}
	for i, opt := range options {
		if strings.EqualFold(opt, answer) {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return n - 1, nil
	}
	return 0, fmt.Errorf("scripted answer %q matches no option of %q", answer, label)
}

func (s *Scripted) Input(label string, validate func(string) error) (string, error) {
	for {
		answer, err := s.next(label)
		if err != nil {
			return "", err
		}
		if validate != nil {
			if verr := validate(answer); verr != nil {
				s.Rejected = append(s.Rejected, answer)
				continue
			}
		}
		return answer, nil
	}
}
