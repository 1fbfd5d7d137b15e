package builder

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ggonzalez94/near-cli/internal/near"
	"github.com/ggonzalez94/near-cli/internal/prompt"
)

func accountField(name, label string) prompt.Field[near.AccountID] {
	return prompt.Field[near.AccountID]{Name: name, Label: label, Parse: near.ParseAccountID}
}

func publicKeyField(name, label string) prompt.Field[near.PublicKey] {
	return prompt.Field[near.PublicKey]{Name: name, Label: label, Parse: near.ParsePublicKey}
}

var (
	senderField   = accountField("sender", "What is the account ID of the sender?")
	receiverField = accountField("receiver", "What is the account ID of the receiver?")

	nonceField = prompt.Field[uint64]{
		Name:  "nonce",
		Label: "Enter transaction nonce (query the access key information)",
		Parse: func(raw string) (uint64, error) {
			return strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		},
	}

	blockHashField = prompt.Field[near.CryptoHash]{
		Name:  "block hash",
		Label: "Enter recent block hash",
		Parse: near.ParseCryptoHash,
	}

	blockHeightField = prompt.Field[uint64]{
		Name:  "block height",
		Label: "Type the block ID height for this contract",
		Parse: func(raw string) (uint64, error) {
			return strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		},
	}

	allowanceField = prompt.Field[*big.Int]{
		Name:  "allowance",
		Label: "Enter an allowance which is a balance limit to use by this access key to pay for function call gas and transaction fees (e.g. 1.5 NEAR, or 'unlimited')",
		Parse: func(raw string) (*big.Int, error) {
			if strings.EqualFold(strings.TrimSpace(raw), "unlimited") {
				return nil, nil
			}
			return near.ParseAmount(raw)
		},
	}

	methodNamesField = prompt.Field[[]string]{
		Name:  "method names",
		Label: "Enter a comma-separated list of method names that can be used, or '*' for any method",
		Parse: parseMethodNames,
	}

	pathField = prompt.Field[string]{
		Name:  "file path",
		Label: "Where to download the contract file?",
		Parse: func(raw string) (string, error) {
			v := strings.TrimSpace(raw)
			if v == "" {
				return "", fmt.Errorf("path cannot be empty")
			}
			return v, nil
		},
	}
)

func parseMethodNames(raw string) ([]string, error) {
	v := strings.TrimSpace(raw)
	if v == "*" || v == "" {
		return []string{}, nil
	}
	parts := strings.Split(v, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			return nil, fmt.Errorf("empty method name in %q", raw)
		}
		names = append(names, name)
	}
	return names, nil
}

func joinQuoted(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, strconv.Quote(v))
	}
	return strings.Join(quoted, " ")
}
