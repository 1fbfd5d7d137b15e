package prompt

import (
	"fmt"

	clierr "github.com/ggonzalez94/near-cli/internal/errors"
)

// Disabled fails every prompt; it backs --no-prompt scripted runs.
type Disabled struct{}

func (Disabled) Select(label string, _ []string) (int, error) {
	return 0, missing(label)
}

func (Disabled) Input(label string, _ func(string) error) (string, error) {
	return "", missing(label)
}

func missing(label string) error {
	return clierr.New(clierr.CodeUsage, fmt.Sprintf("missing required argument for %q (prompting is disabled)", label))
}
