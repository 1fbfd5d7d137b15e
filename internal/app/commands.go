package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	clierr "github.com/ggonzalez94/near-cli/internal/errors"
	"github.com/ggonzalez94/near-cli/internal/history"
	"github.com/ggonzalez94/near-cli/internal/model"
	"github.com/ggonzalez94/near-cli/internal/schema"
	"github.com/ggonzalez94/near-cli/internal/signer"
	"github.com/ggonzalez94/near-cli/internal/version"
)

const (
	grammarConstructTransaction = "<mode> <sender> <receiver> <action> {add-action <action>} skip <sign-option>"
	grammarAddAccessKey         = "<mode> <sender> <public-key-mode> <permission> <sign-option>"
	grammarViewContractCode     = "<query-mode> <account> (download <path> | hash) <block-ref>"
	grammarViewNonce            = "<query-mode> <account> <public-key>"
)

func interactive(grammar string) map[string]string {
	return map[string]string{schema.AnnotationGrammar: grammar}
}

func (s *runtimeState) newConstructTransactionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "construct-transaction [tokens...]",
		Short:       "Assemble a transaction action by action, then sign it now or later",
		Args:        cobra.ArbitraryArgs,
		Annotations: interactive(grammarConstructTransaction),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, done, err := s.newSession(cmd, args, true)
			if err != nil {
				return err
			}
			defer done()
			result, err := session.ConstructTransaction(withContext(cmd))
			if err != nil {
				return err
			}
			return s.emitResult(session.Command, result.Record.Network, result)
		},
	}
}

func (s *runtimeState) newAddCommand() *cobra.Command {
	root := &cobra.Command{Use: "add", Short: "Add keys to an account"}
	root.AddCommand(&cobra.Command{
		Use:         "access-key [tokens...]",
		Aliases:     []string{"key"},
		Short:       "Add a full access or function-call key to the sender account",
		Args:        cobra.ArbitraryArgs,
		Annotations: interactive(grammarAddAccessKey),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, done, err := s.newSession(cmd, args, true)
			if err != nil {
				return err
			}
			defer done()
			result, err := session.AddAccessKey(withContext(cmd))
			if err != nil {
				return err
			}
			return s.emitResult(session.Command, result.Record.Network, result)
		},
	})
	return root
}

func (s *runtimeState) newViewCommand() *cobra.Command {
	root := &cobra.Command{Use: "view", Short: "Query account state"}
	root.AddCommand(&cobra.Command{
		Use:         "contract-code [tokens...]",
		Short:       "Download an account's contract or print its hash",
		Args:        cobra.ArbitraryArgs,
		Annotations: interactive(grammarViewContractCode),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, done, err := s.newSession(cmd, args, false)
			if err != nil {
				return err
			}
			defer done()
			view, err := session.ViewContractCode(withContext(cmd))
			if err != nil {
				return err
			}
			return s.emitResult(session.Command, view.Network, view)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:         "nonce [tokens...]",
		Short:       "Print the current nonce of an access key",
		Args:        cobra.ArbitraryArgs,
		Annotations: interactive(grammarViewNonce),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, done, err := s.newSession(cmd, args, false)
			if err != nil {
				return err
			}
			defer done()
			view, err := session.ViewNonce(withContext(cmd))
			if err != nil {
				return err
			}
			return s.emitResult(session.Command, view.Network, view)
		},
	})
	return root
}

func (s *runtimeState) newGenerateKeyCommand() *cobra.Command {
	var savePath string
	var accountID string
	cmd := &cobra.Command{
		Use:   "generate-key",
		Short: "Generate an ed25519 key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, err := signer.GenerateKeyPair()
			if err != nil {
				return clierr.Wrap(clierr.CodeInternal, "generate key pair", err)
			}
			implicit := implicitAccountID(pair.PublicKey.Bytes())
			out := model.GeneratedKey{
				PublicKey:  pair.PublicKey.String(),
				PrivateKey: pair.SecretKey,
				ImplicitID: implicit,
			}
			if savePath != "" {
				if accountID == "" {
					accountID = implicit
				}
				buf, err := signer.CredentialsJSON(pair, accountID)
				if err != nil {
					return clierr.Wrap(clierr.CodeInternal, "encode credentials", err)
				}
				if err := os.MkdirAll(filepath.Dir(savePath), 0o700); err != nil {
					return clierr.Wrap(clierr.CodeIO, "create credentials directory", err)
				}
				if err := os.WriteFile(savePath, buf, 0o600); err != nil {
					return clierr.Wrap(clierr.CodeIO, "write credentials file", err)
				}
				out.SavedTo = savePath
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), "", out)
		},
	}
	cmd.Flags().StringVar(&savePath, "save", "", "Write a credentials file to this path")
	cmd.Flags().StringVar(&accountID, "account", "", "Account id recorded in the credentials file (default: implicit account)")
	return cmd
}

func (s *runtimeState) newTransactionsCommand() *cobra.Command {
	root := &cobra.Command{Use: "transactions", Short: "Inspect locally recorded transactions"}

	var status string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return clierr.New(clierr.CodeUsage, "--limit must be > 0")
			}
			if status != "" && !validStatus(status) {
				return clierr.New(clierr.CodeUsage, fmt.Sprintf("unknown status %q", status))
			}
			store, err := s.openHistory()
			if err != nil {
				return err
			}
			records, err := store.List(withContext(cmd), status, limit)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), "", records)
		},
	}
	list.Flags().StringVar(&status, "status", "", "Filter by status (unsigned|signed|succeeded|failed|pending)")
	list.Flags().IntVar(&limit, "limit", 20, "Maximum records to return")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := s.openHistory()
			if err != nil {
				return err
			}
			record, err := store.Get(withContext(cmd), args[0])
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), record.Network, record)
		},
	}

	root.AddCommand(list)
	root.AddCommand(show)
	return root
}

func validStatus(v string) bool {
	switch history.Status(v) {
	case history.StatusUnsigned, history.StatusSigned, history.StatusSubmitted,
		history.StatusSucceeded, history.StatusFailed, history.StatusPending:
		return true
	}
	return false
}

func (s *runtimeState) newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command path]",
		Short: "Print machine-readable command schema",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schema.Build(s.root, strings.Join(args, " "))
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "build schema", err)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), "", data)
		},
	}
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}
