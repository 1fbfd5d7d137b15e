package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/ggonzalez94/near-cli/internal/near"
)

const secretKeyPrefix = "ed25519:"

// KeyPair is a freshly generated or decoded ed25519 key.
type KeyPair struct {
	PublicKey near.PublicKey
	SecretKey string
	private   ed25519.PrivateKey
}

func GenerateKeyPair() (KeyPair, error) {
	return generateKeyPair(rand.Reader)
}

func generateKeyPair(r io.Reader) (KeyPair, error) {
	_, priv, err := ed25519.GenerateKey(r)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return keyPairFromPrivate(priv)
}

func keyPairFromPrivate(priv ed25519.PrivateKey) (KeyPair, error) {
	pub, err := near.PublicKeyFromBytes(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{
		PublicKey: pub,
		SecretKey: secretKeyPrefix + base58.Encode(priv),
		private:   priv,
	}, nil
}

// ParseSecretKey decodes "ed25519:<base58>" holding either the 64-byte
// expanded secret key or the 32-byte seed. The prefix is optional.
func ParseSecretKey(raw string) (ed25519.PrivateKey, error) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return nil, fmt.Errorf("empty private key")
	}
	if i := strings.IndexByte(clean, ':'); i >= 0 {
		if !strings.EqualFold(clean[:i], "ed25519") {
			return nil, fmt.Errorf("unsupported key type %q (only ed25519)", clean[:i])
		}
		clean = clean[i+1:]
	}
	buf, err := base58.Decode(clean)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	switch len(buf) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(buf), nil
	case ed25519.PrivateKeySize:
		priv := ed25519.NewKeyFromSeed(buf[:ed25519.SeedSize])
		if string(priv[ed25519.SeedSize:]) != string(buf[ed25519.SeedSize:]) {
			return nil, fmt.Errorf("parse private key: public half does not match seed")
		}
		return priv, nil
	default:
		return nil, fmt.Errorf("parse private key: expected 32 or 64 bytes, got %d", len(buf))
	}
}
