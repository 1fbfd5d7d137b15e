package signer

import "github.com/ggonzalez94/near-cli/internal/near"

type Signer interface {
	PublicKey() near.PublicKey
	Sign(message []byte) (near.Signature, error)
}
