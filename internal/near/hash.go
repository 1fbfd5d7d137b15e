package near

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

const HashLen = 32

// CryptoHash is a sha256 digest, rendered in base58 by the node and explorer.
type CryptoHash [HashLen]byte

func ParseCryptoHash(raw string) (CryptoHash, error) {
	var h CryptoHash
	buf, err := base58.Decode(strings.TrimSpace(raw))
	if err != nil {
		return h, fmt.Errorf("decode base58 hash: %w", err)
	}
	if len(buf) != HashLen {
		return h, fmt.Errorf("hash must be %d bytes, got %d", HashLen, len(buf))
	}
	copy(h[:], buf)
	return h, nil
}

func HashOf(data []byte) CryptoHash {
	return CryptoHash(sha256.Sum256(data))
}

func (h CryptoHash) IsZero() bool { return h == CryptoHash{} }

func (h CryptoHash) String() string { return base58.Encode(h[:]) }

func (h CryptoHash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *CryptoHash) UnmarshalText(text []byte) error {
	parsed, err := ParseCryptoHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
