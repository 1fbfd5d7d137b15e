package app

import (
	"context"
	"encoding/hex"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ggonzalez94/near-cli/internal/builder"
	"github.com/ggonzalez94/near-cli/internal/config"
	clierr "github.com/ggonzalez94/near-cli/internal/errors"
	"github.com/ggonzalez94/near-cli/internal/history"
	"github.com/ggonzalez94/near-cli/internal/httpx"
	"github.com/ggonzalez94/near-cli/internal/logging"
	"github.com/ggonzalez94/near-cli/internal/model"
	"github.com/ggonzalez94/near-cli/internal/out"
	"github.com/ggonzalez94/near-cli/internal/policy"
	"github.com/ggonzalez94/near-cli/internal/prompt"
	"github.com/ggonzalez94/near-cli/internal/report"
	"github.com/ggonzalez94/near-cli/internal/rpc"
	"github.com/ggonzalez94/near-cli/internal/signer"
	"github.com/ggonzalez94/near-cli/internal/version"
)

type Runner struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func NewRunner() *Runner {
	return NewRunnerWithIO(os.Stdin, os.Stdout, os.Stderr)
}

func NewRunnerWithIO(stdin io.Reader, stdout, stderr io.Writer) *Runner {
	return &Runner{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

type runtimeState struct {
	runner      *Runner
	flags       config.GlobalFlags
	settings    config.Settings
	logger      zerolog.Logger
	history     *history.Store
	root        *cobra.Command
	lastCommand string
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r, logger: zerolog.Nop()}
	root := state.newRootCommand()
	state.root = root
	root.SetArgs(args)
	root.SetIn(r.stdin)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := normalizeRunError(root.Execute())
	if state.history != nil {
		_ = state.history.Close()
	}
	if err == nil {
		return 0
	}
	state.renderError(err)
	return clierr.ExitCode(err)
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Build, sign and submit NEAR transactions from supplied arguments or prompts",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "load configuration", err)
			}
			s.settings = settings

			logger, err := logging.New(s.runner.stderr, settings.LogLevel, settings.OutputMode, settings.NoColor)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "configure logging", err)
			}
			path := trimRootPath(cmd.CommandPath())
			s.lastCommand = path
			s.logger = logger.With().Str("command", path).Logger()
			return policy.CheckCommandAllowed(settings.EnableCommands, path)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")
	flags.BoolVar(&s.flags.JSON, "json", false, "Output a JSON envelope")
	flags.BoolVar(&s.flags.Plain, "plain", false, "Output plain text (default)")
	flags.StringVar(&s.flags.Select, "select", "", "Select fields from data (comma-separated)")
	flags.BoolVar(&s.flags.ResultsOnly, "results-only", false, "Output only the data payload")
	flags.BoolVar(&s.flags.NoPrompt, "no-prompt", false, "Fail instead of prompting for a missing argument")
	flags.BoolVar(&s.flags.NoColor, "no-color", false, "Disable colored output")
	flags.StringVar(&s.flags.EnableCommands, "enable-commands", "", "Allowlist command paths (comma-separated)")
	flags.StringVar(&s.flags.Timeout, "timeout", "", "RPC request timeout")
	flags.IntVar(&s.flags.Retries, "retries", -1, "Retries per RPC query (broadcasts are never retried)")
	flags.StringVar(&s.flags.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	flags.BoolVar(&s.flags.NoHistory, "no-history", false, "Do not record transactions in the local history")
	flags.StringVar(&s.flags.KeySource, "key-source", "", "Signing key source (auto|env|file|keystore)")
	flags.StringVar(&s.flags.PrivateKey, "private-key", "", "Signing key as ed25519:<base58>; overrides --key-source")

	cmd.AddCommand(s.newConstructTransactionCommand())
	cmd.AddCommand(s.newAddCommand())
	cmd.AddCommand(s.newViewCommand())
	cmd.AddCommand(s.newGenerateKeyCommand())
	cmd.AddCommand(s.newTransactionsCommand())
	cmd.AddCommand(s.newSchemaCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// interactiveOut carries prompts and reports. JSON mode moves them to stderr
// so stdout holds only the envelope.
func (s *runtimeState) interactiveOut() io.Writer {
	if s.settings.OutputMode == "json" {
		return s.runner.stderr
	}
	return s.runner.stdout
}

// newSession wires a builder session for one interactive command. The
// returned func releases the prompter.
func (s *runtimeState) newSession(cmd *cobra.Command, args []string, recordHistory bool) (*builder.Session, func(), error) {
	w := s.interactiveOut()
	prompter, closePrompter, err := prompt.Open(s.runner.stdin, w, s.settings.NoPrompt)
	if err != nil {
		return nil, nil, clierr.Wrap(clierr.CodeInternal, "open prompt", err)
	}
	session := &builder.Session{
		Command:  trimRootPath(cmd.CommandPath()),
		Args:     prompt.NewArgs(args),
		Prompter: prompter,
		Reporter: report.NewConsole(w, s.settings.NoColor),
		Settings: s.settings,
		Dial:     s.dial,
		LoadSigner: func() (signer.Signer, error) {
			return signer.NewLocalSignerFromInputs(s.settings.KeySource, s.settings.PrivateKey)
		},
		Log: s.logger,
	}
	if recordHistory && s.settings.HistoryEnabled {
		store, err := s.openHistory()
		if err != nil {
			_ = closePrompter()
			return nil, nil, err
		}
		session.History = store
	}
	return session, func() { _ = closePrompter() }, nil
}

func (s *runtimeState) dial(url string) builder.RPC {
	return rpc.New(httpx.New(s.settings.Timeout, s.settings.Retries), url, s.logger)
}

func (s *runtimeState) openHistory() (*history.Store, error) {
	if s.history != nil {
		return s.history, nil
	}
	store, err := history.Open(s.settings.HistoryPath, s.settings.HistoryLockPath)
	if err != nil {
		return nil, err
	}
	s.history = store
	return store, nil
}

// emitResult renders data as an envelope in JSON mode. Plain mode already
// reported through the session, so nothing more is printed.
func (s *runtimeState) emitResult(commandPath, network string, data any) error {
	if s.settings.OutputMode != "json" {
		return nil
	}
	return s.emitSuccess(commandPath, network, data)
}

func (s *runtimeState) emitSuccess(commandPath, network string, data any) error {
	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: true,
		Data:    data,
		Meta: model.EnvelopeMeta{
			RequestID: newRequestID(),
			Timestamp: s.runner.now().UTC(),
			Command:   commandPath,
			Network:   network,
		},
	}
	return out.Render(s.runner.stdout, env, s.settings)
}

func (s *runtimeState) renderError(err error) {
	commandPath := s.lastCommand
	if commandPath == "" {
		commandPath = version.CLIName
	}
	typ := "internal_error"
	if cErr, ok := clierr.As(err); ok {
		typ = clierr.TypeName(cErr.Code)
	}

	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: false,
		Error: &model.ErrorBody{
			Code:    clierr.ExitCode(err),
			Type:    typ,
			Message: err.Error(),
		},
		Meta: model.EnvelopeMeta{
			RequestID: newRequestID(),
			Timestamp: s.runner.now().UTC(),
			Command:   commandPath,
		},
	}
	_ = out.Render(s.runner.stderr, env, s.settings)
}

func newRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// implicitAccountID is the account id derived from an ed25519 public key.
func implicitAccountID(publicKey []byte) string {
	return hex.EncodeToString(publicKey)
}

func trimRootPath(path string) string {
	parts := strings.Fields(path)
	if len(parts) <= 1 {
		return path
	}
	return strings.Join(parts[1:], " ")
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return clierr.Wrap(clierr.CodeUsage, "invalid command input", err)
	}
	return clierr.Wrap(clierr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid args",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func withContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
