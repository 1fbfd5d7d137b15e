package near

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// KeyType is the borsh discriminant of a key curve.
type KeyType uint8

const (
	KeyTypeED25519 KeyType = 0

	ed25519Prefix = "ed25519:"
)

// PublicKey is an ed25519 public key in NEAR's "ed25519:<base58>" form.
type PublicKey struct {
	data [ed25519.PublicKeySize]byte
}

func PublicKeyFromBytes(raw []byte) (PublicKey, error) {
	var pk PublicKey
	if len(raw) != ed25519.PublicKeySize {
		return pk, fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	copy(pk.data[:], raw)
	return pk, nil
}

// ParsePublicKey accepts "ed25519:<base58>" or bare base58, which defaults to ed25519.
func ParsePublicKey(raw string) (PublicKey, error) {
	v := strings.TrimSpace(raw)
	if i := strings.Index(v, ":"); i >= 0 {
		curve := strings.ToLower(v[:i])
		if curve+":" != ed25519Prefix {
			return PublicKey{}, fmt.Errorf("unsupported key type %q", curve)
		}
		v = v[i+1:]
	}
	buf, err := base58.Decode(v)
	if err != nil {
		return PublicKey{}, fmt.Errorf("decode base58 public key: %w", err)
	}
	return PublicKeyFromBytes(buf)
}

func (k PublicKey) Type() KeyType { return KeyTypeED25519 }

func (k PublicKey) Bytes() []byte {
	out := make([]byte, len(k.data))
	copy(out, k.data[:])
	return out
}

func (k PublicKey) IsZero() bool { return k.data == [ed25519.PublicKeySize]byte{} }

func (k PublicKey) Equal(other PublicKey) bool { return k.data == other.data }

func (k PublicKey) String() string { return ed25519Prefix + base58.Encode(k.data[:]) }

func (k PublicKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Signature is an ed25519 signature over a transaction hash.
type Signature struct {
	data [ed25519.SignatureSize]byte
}

func SignatureFromBytes(raw []byte) (Signature, error) {
	var sig Signature
	if len(raw) != ed25519.SignatureSize {
		return sig, fmt.Errorf("ed25519 signature must be %d bytes, got %d", ed25519.SignatureSize, len(raw))
	}
	copy(sig.data[:], raw)
	return sig, nil
}

func (s Signature) Bytes() []byte {
	out := make([]byte, len(s.data))
	copy(out, s.data[:])
	return out
}

func (s Signature) String() string { return ed25519Prefix + base58.Encode(s.data[:]) }
