package near

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	minAccountIDLen = 2
	maxAccountIDLen = 64
)

var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`)

// AccountID is a validated NEAR account name such as "alice.testnet".
type AccountID string

func ParseAccountID(raw string) (AccountID, error) {
	v := strings.TrimSpace(raw)
	if len(v) < minAccountIDLen || len(v) > maxAccountIDLen {
		return "", fmt.Errorf("account id %q must be %d to %d characters long", v, minAccountIDLen, maxAccountIDLen)
	}
	if !accountIDPattern.MatchString(v) {
		return "", fmt.Errorf("account id %q contains invalid characters", v)
	}
	return AccountID(v), nil
}

func (a AccountID) String() string { return string(a) }
