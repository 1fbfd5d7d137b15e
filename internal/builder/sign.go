package builder

import (
	"context"
	"fmt"

	clierr "github.com/ggonzalez94/near-cli/internal/errors"
	"github.com/ggonzalez94/near-cli/internal/history"
	"github.com/ggonzalez94/near-cli/internal/near"
	"github.com/ggonzalez94/near-cli/internal/prompt"
	"github.com/ggonzalez94/near-cli/internal/signer"
)

// signStep completes a transaction whose sign option is resolved. It returns
// the final transaction and, only when it was broadcast, its outcome.
type signStep func(ctx context.Context, record *history.Record) (near.Transaction, *near.FinalExecutionOutcome, error)

func (s *Session) resolveSignOption(tx near.Transaction, mode Mode) (signStep, error) {
	menu := prompt.Menu[signStep]{
		Name:  "sign option",
		Label: "Would you like to sign the transaction?",
		Entries: []prompt.Entry[signStep]{
			{
				Tag:   "sign-with-private-key",
				Label: "Yes, I want to sign the transaction with my private key",
				Build: func() (signStep, error) { return s.signWithPrivateKey(tx, mode) },
			},
			{
				Tag:   "sign-later",
				Label: "No, I want to construct the transaction and sign it somewhere else",
				Build: func() (signStep, error) { return s.signLater(tx, mode) },
			},
		},
	}
	return menu.Choose(s.Prompter, s.Args)
}

func (s *Session) signWithPrivateKey(tx near.Transaction, mode Mode) (signStep, error) {
	sg, err := s.loadSigner()
	if err != nil {
		return nil, err
	}
	if !mode.Online() {
		return func(_ context.Context, record *history.Record) (near.Transaction, *near.FinalExecutionOutcome, error) {
			if !sg.PublicKey().Equal(tx.PublicKey) {
				return near.Transaction{}, nil, clierr.New(clierr.CodeSigner, fmt.Sprintf("signing key %s does not match the signer public key %s", sg.PublicKey(), tx.PublicKey))
			}
			signed, err := signTransaction(tx, sg)
			if err != nil {
				return near.Transaction{}, nil, err
			}
			encoded, err := signed.Base64()
			if err != nil {
				return near.Transaction{}, nil, clierr.Wrap(clierr.CodeInternal, "encode signed transaction", err)
			}
			s.Reporter.Detail("Signed transaction (base64)", encoded)
			record.Status = history.StatusSigned
			record.Payload = encoded
			record.TransactionHash = hashString(tx)
			return tx, nil, nil
		}, nil
	}
	return func(ctx context.Context, record *history.Record) (near.Transaction, *near.FinalExecutionOutcome, error) {
		full, err := s.fillAccessKey(ctx, tx, mode, sg.PublicKey())
		if err != nil {
			return near.Transaction{}, nil, err
		}
		signed, err := signTransaction(full, sg)
		if err != nil {
			return near.Transaction{}, nil, err
		}
		encoded, err := signed.Base64()
		if err != nil {
			return near.Transaction{}, nil, clierr.Wrap(clierr.CodeInternal, "encode signed transaction", err)
		}
		record.Status = history.StatusSubmitted
		record.Payload = encoded
		s.Log.Debug().Str("hash", hashString(full)).Str("network", mode.NetworkName()).Msg("broadcasting transaction")
		s.Reporter.Info("Transaction sent ...")
		outcome, err := mode.Connection.Client.BroadcastTxCommit(ctx, signed)
		if err != nil {
			return near.Transaction{}, nil, err
		}
		return full, &outcome, nil
	}, nil
}

// signLater prints the unsigned transaction. Online it still queries the
// network so the printed transaction carries a current nonce and block hash.
func (s *Session) signLater(tx near.Transaction, mode Mode) (signStep, error) {
	publicKey := tx.PublicKey
	if mode.Online() {
		pk, err := prompt.Resolve(s.Prompter, s.Args, publicKeyField("signer public key", "Enter the signer's public key"))
		if err != nil {
			return nil, err
		}
		publicKey = pk
	}
	return func(ctx context.Context, record *history.Record) (near.Transaction, *near.FinalExecutionOutcome, error) {
		full := tx
		if mode.Online() {
			var err error
			full, err = s.fillAccessKey(ctx, tx, mode, publicKey)
			if err != nil {
				return near.Transaction{}, nil, err
			}
		}
		if err := full.Validate(); err != nil {
			return near.Transaction{}, nil, clierr.Wrap(clierr.CodeUsage, "incomplete transaction", err)
		}
		encoded, err := full.Base64()
		if err != nil {
			return near.Transaction{}, nil, clierr.Wrap(clierr.CodeInternal, "encode transaction", err)
		}
		s.Reporter.Detail("Unsigned transaction (base64)", encoded)
		record.Status = history.StatusUnsigned
		record.Payload = encoded
		record.TransactionHash = hashString(full)
		return full, nil, nil
	}, nil
}

// fillAccessKey sets the key, nonce and block hash from the signer's access
// key as seen at the final block.
func (s *Session) fillAccessKey(ctx context.Context, tx near.Transaction, mode Mode, publicKey near.PublicKey) (near.Transaction, error) {
	ak, err := mode.Connection.Client.ViewAccessKey(ctx, tx.SignerID, publicKey, near.FinalBlock())
	if err != nil {
		return near.Transaction{}, err
	}
	s.Log.Debug().Uint64("nonce", ak.Nonce+1).Str("block_hash", ak.BlockHash.String()).Msg("access key fetched")
	return tx.WithAccessKey(publicKey, ak.Nonce+1, ak.BlockHash), nil
}

func signTransaction(tx near.Transaction, sg signer.Signer) (near.SignedTransaction, error) {
	if err := tx.Validate(); err != nil {
		return near.SignedTransaction{}, clierr.Wrap(clierr.CodeUsage, "incomplete transaction", err)
	}
	hash, err := tx.Hash()
	if err != nil {
		return near.SignedTransaction{}, clierr.Wrap(clierr.CodeInternal, "hash transaction", err)
	}
	sig, err := sg.Sign(hash[:])
	if err != nil {
		return near.SignedTransaction{}, clierr.Wrap(clierr.CodeSigner, "sign transaction", err)
	}
	return near.SignedTransaction{Transaction: tx, Signature: sig}, nil
}

func hashString(tx near.Transaction) string {
	hash, err := tx.Hash()
	if err != nil {
		return ""
	}
	return hash.String()
}
