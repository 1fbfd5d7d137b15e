package policy

import (
	"strings"

	clierr "github.com/ggonzalez94/near-cli/internal/errors"
)

// alwaysAllowed commands never touch the network or keys.
var alwaysAllowed = map[string]bool{"version": true, "schema": true}

// CheckCommandAllowed enforces the --enable-commands allowlist. An entry
// allows the command path itself and every command below it.
func CheckCommandAllowed(allowlist []string, commandPath string) error {
	if len(allowlist) == 0 {
		return nil
	}
	normPath := normalize(commandPath)
	if alwaysAllowed[normPath] {
		return nil
	}
	for _, allowed := range allowlist {
		a := normalize(allowed)
		if a == normPath || strings.HasPrefix(normPath, a+" ") {
			return nil
		}
	}
	return clierr.New(clierr.CodeBlocked, "command "+normPath+" blocked by --enable-commands policy")
}

func normalize(v string) string {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(v)))
	return strings.Join(parts, " ")
}
