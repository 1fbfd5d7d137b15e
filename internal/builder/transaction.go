package builder

import (
	"context"

	"github.com/ggonzalez94/near-cli/internal/history"
	"github.com/ggonzalez94/near-cli/internal/near"
	"github.com/ggonzalez94/near-cli/internal/prompt"
	"github.com/ggonzalez94/near-cli/internal/report"
)

// Result is what a transaction session produced. Outcome is nil unless the
// transaction was broadcast.
type Result struct {
	Transaction near.Transaction            `json:"-"`
	Record      history.Record              `json:"transaction"`
	Outcome     *near.FinalExecutionOutcome `json:"-"`
}

// ConstructTransaction runs mode, sender, receiver, the action chain and the
// sign option, in that order.
func (s *Session) ConstructTransaction(ctx context.Context) (Result, error) {
	mode, err := s.resolveMode()
	if err != nil {
		return Result{}, err
	}
	tx := startTransaction(mode)
	sender, err := prompt.Resolve(s.Prompter, s.Args, senderField)
	if err != nil {
		return Result{}, err
	}
	tx = tx.WithSigner(sender)
	receiver, err := prompt.Resolve(s.Prompter, s.Args, receiverField)
	if err != nil {
		return Result{}, err
	}
	tx = tx.WithReceiver(receiver)
	tx, err = s.resolveActionChain(tx)
	if err != nil {
		return Result{}, err
	}
	return s.finalize(ctx, tx, mode)
}

// AddAccessKey adds one key to the sender's own account. There is no next
// action stage: the single action goes straight to signing.
func (s *Session) AddAccessKey(ctx context.Context) (Result, error) {
	mode, err := s.resolveMode()
	if err != nil {
		return Result{}, err
	}
	tx := startTransaction(mode)
	sender, err := prompt.Resolve(s.Prompter, s.Args, senderField)
	if err != nil {
		return Result{}, err
	}
	tx = tx.WithSigner(sender).WithReceiver(sender)
	action, err := s.resolveAddKey(tx)
	if err != nil {
		return Result{}, err
	}
	tx = tx.WithAction(action)
	return s.finalize(ctx, tx, mode)
}

func startTransaction(mode Mode) near.Transaction {
	var tx near.Transaction
	if !mode.Online() {
		tx = tx.WithAccessKey(mode.SignerPublicKey, mode.Nonce, mode.BlockHash)
	}
	return tx
}

// resolveActionChain appends actions until the operator skips. The chain is
// a loop so its length does not grow the call stack.
func (s *Session) resolveActionChain(tx near.Transaction) (near.Transaction, error) {
	next := prompt.Menu[bool]{
		Name:  "next action",
		Label: "Select an action that you want to add to the transaction",
		Entries: []prompt.Entry[bool]{
			{Tag: "add-action", Label: "Add another action", Build: func() (bool, error) { return true, nil }},
			{Tag: "skip", Label: "Skip adding a new action", Build: func() (bool, error) { return false, nil }},
		},
	}
	for {
		action, err := s.resolveAction(tx)
		if err != nil {
			return near.Transaction{}, err
		}
		tx = tx.WithAction(action)
		s.Log.Debug().Int("actions", len(tx.Actions)).Str("action", action.String()).Msg("action appended")
		more, err := next.Choose(s.Prompter, s.Args)
		if err != nil {
			return near.Transaction{}, err
		}
		if !more {
			return tx, nil
		}
	}
}

// finalize hands the assembled transaction to the sign pipeline, reports the
// outcome when there is one and records the session.
func (s *Session) finalize(ctx context.Context, tx near.Transaction, mode Mode) (Result, error) {
	record := history.NewRecord(s.Command, mode.Name())
	record.Network = mode.NetworkName()
	record.SignerID = tx.SignerID.String()
	record.ReceiverID = tx.ReceiverID.String()
	for _, a := range tx.Actions {
		record.Actions = append(record.Actions, a.String())
	}

	step, err := s.resolveSignOption(tx, mode)
	if err != nil {
		return Result{}, err
	}
	if err := s.finish(); err != nil {
		return Result{}, err
	}
	signed, outcome, err := step(ctx, &record)
	if err != nil {
		return Result{}, err
	}
	if outcome != nil {
		network := mode.Connection.Network
		if err := report.Outcome(s.Reporter, *outcome, signed.Actions[0].Kind, network.Explorer); err != nil {
			return Result{}, err
		}
		record.Status = statusOf(outcome.Status.Kind)
		record.TransactionHash = outcome.TransactionID()
		record.ExplorerURL = report.ExplorerURL(network.Explorer, record.TransactionHash)
	}
	if err := s.saveHistory(ctx, record); err != nil {
		return Result{}, err
	}
	return Result{Transaction: signed, Record: record, Outcome: outcome}, nil
}

func statusOf(kind near.StatusKind) history.Status {
	switch kind {
	case near.StatusSuccessValue:
		return history.StatusSucceeded
	case near.StatusFailure:
		return history.StatusFailed
	default:
		return history.StatusPending
	}
}
