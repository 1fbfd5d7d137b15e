package near

import (
	"encoding/base64"
	"fmt"
)

// Transaction is the unsigned transaction skeleton assembled by the builder.
// The With* methods return a new value and leave the receiver untouched.
type Transaction struct {
	SignerID   AccountID  `json:"signer_id"`
	PublicKey  PublicKey  `json:"public_key"`
	Nonce      uint64     `json:"nonce"`
	ReceiverID AccountID  `json:"receiver_id"`
	BlockHash  CryptoHash `json:"block_hash"`
	Actions    []Action   `json:"actions"`
}

func (t Transaction) WithSigner(signer AccountID) Transaction {
	t.Actions = t.copyActions(0)
	t.SignerID = signer
	return t
}

func (t Transaction) WithReceiver(receiver AccountID) Transaction {
	t.Actions = t.copyActions(0)
	t.ReceiverID = receiver
	return t
}

// WithAccessKey anchors the transaction to a signer key, its next nonce and a recent block.
func (t Transaction) WithAccessKey(publicKey PublicKey, nonce uint64, blockHash CryptoHash) Transaction {
	t.Actions = t.copyActions(0)
	t.PublicKey = publicKey
	t.Nonce = nonce
	t.BlockHash = blockHash
	return t
}

func (t Transaction) WithAction(action Action) Transaction {
	actions := t.copyActions(1)
	t.Actions = append(actions, action)
	return t
}

func (t Transaction) copyActions(extra int) []Action {
	out := make([]Action, len(t.Actions), len(t.Actions)+extra)
	copy(out, t.Actions)
	return out
}

func (t Transaction) Encode() ([]byte, error) {
	var e encoder
	if err := e.transaction(t); err != nil {
		return nil, err
	}
	return e.bytes(), nil
}

// Hash is the sha256 of the borsh encoding; it is the message that gets signed
// and, in base58, the transaction id.
func (t Transaction) Hash() (CryptoHash, error) {
	buf, err := t.Encode()
	if err != nil {
		return CryptoHash{}, err
	}
	return HashOf(buf), nil
}

// Base64 is the encoding accepted by offline signers.
func (t Transaction) Base64() (string, error) {
	buf, err := t.Encode()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Validate checks the fields every signable transaction needs.
func (t Transaction) Validate() error {
	if t.SignerID == "" {
		return fmt.Errorf("transaction is missing a signer")
	}
	if t.ReceiverID == "" {
		return fmt.Errorf("transaction is missing a receiver")
	}
	if len(t.Actions) == 0 {
		return fmt.Errorf("transaction has no actions")
	}
	if t.PublicKey.IsZero() {
		return fmt.Errorf("transaction is missing the signer public key")
	}
	if t.BlockHash.IsZero() {
		return fmt.Errorf("transaction is missing a reference block hash")
	}
	return nil
}

type SignedTransaction struct {
	Transaction Transaction `json:"transaction"`
	Signature   Signature   `json:"signature"`
}

func (s SignedTransaction) Encode() ([]byte, error) {
	var e encoder
	if err := e.transaction(s.Transaction); err != nil {
		return nil, err
	}
	e.u8(uint8(KeyTypeED25519))
	e.raw(s.Signature.data[:])
	return e.bytes(), nil
}

func (s SignedTransaction) Base64() (string, error) {
	buf, err := s.Encode()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
