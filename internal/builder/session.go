// Package builder assembles NEAR transactions stage by stage. Each stage takes
// its value from the supplied argument chain or, when the chain is exhausted,
// from the operator.
package builder

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/ggonzalez94/near-cli/internal/config"
	clierr "github.com/ggonzalez94/near-cli/internal/errors"
	"github.com/ggonzalez94/near-cli/internal/history"
	"github.com/ggonzalez94/near-cli/internal/near"
	"github.com/ggonzalez94/near-cli/internal/prompt"
	"github.com/ggonzalez94/near-cli/internal/report"
	"github.com/ggonzalez94/near-cli/internal/rpc"
	"github.com/ggonzalez94/near-cli/internal/signer"
)

// RPC is the subset of the node API a session uses.
type RPC interface {
	ViewAccessKey(ctx context.Context, account near.AccountID, publicKey near.PublicKey, ref near.BlockReference) (rpc.AccessKeyResult, error)
	ViewCode(ctx context.Context, account near.AccountID, ref near.BlockReference) (rpc.CodeResult, error)
	BroadcastTxCommit(ctx context.Context, tx near.SignedTransaction) (near.FinalExecutionOutcome, error)
}

// Dialer opens an RPC client for an endpoint URL.
type Dialer func(url string) RPC

type FileWriter interface {
	WriteFile(path string, data []byte) error
}

type HistoryStore interface {
	Save(ctx context.Context, record history.Record) error
}

// OSFiles writes to the local filesystem.
type OSFiles struct{}

func (OSFiles) WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return clierr.Wrap(clierr.CodeIO, "failed to write file "+path, err)
	}
	return nil
}

// Session holds the collaborators of one command invocation. Args is consumed
// as stages resolve; a Session must not be reused.
type Session struct {
	Command     string
	Args        *prompt.Args
	Prompter    prompt.Prompter
	Reporter    report.Reporter
	Settings    config.Settings
	Dial        Dialer
	LoadSigner  func() (signer.Signer, error)
	GenerateKey func() (signer.KeyPair, error)
	Files       FileWriter
	History     HistoryStore
	Log         zerolog.Logger
}

func (s *Session) generateKey() (signer.KeyPair, error) {
	if s.GenerateKey != nil {
		return s.GenerateKey()
	}
	return signer.GenerateKeyPair()
}

func (s *Session) files() FileWriter {
	if s.Files != nil {
		return s.Files
	}
	return OSFiles{}
}

func (s *Session) loadSigner() (signer.Signer, error) {
	if s.LoadSigner == nil {
		return nil, clierr.New(clierr.CodeSigner, "no signing key source is configured")
	}
	sg, err := s.LoadSigner()
	if err != nil {
		if _, ok := clierr.As(err); ok {
			return nil, err
		}
		return nil, clierr.Wrap(clierr.CodeSigner, "load signing key", err)
	}
	return sg, nil
}

// saveHistory records a session that produced a transaction. A nil store
// skips recording; a failing store fails the command.
func (s *Session) saveHistory(ctx context.Context, record history.Record) error {
	if s.History == nil {
		return nil
	}
	record.Touch()
	if err := s.History.Save(ctx, record); err != nil {
		return err
	}
	s.Log.Debug().Str("record", record.ID).Str("status", string(record.Status)).Msg("history record saved")
	return nil
}

// finish fails when supplied tokens were left unconsumed.
func (s *Session) finish() error {
	if rest := s.Args.Remaining(); len(rest) > 0 {
		return clierr.New(clierr.CodeUsage, "unexpected extra arguments: "+joinQuoted(rest))
	}
	return nil
}
