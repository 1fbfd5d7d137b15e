package report

import (
	"fmt"

	clierr "github.com/ggonzalez94/near-cli/internal/errors"
	"github.com/ggonzalez94/near-cli/internal/near"
)

const explorerURLFormat = "https://explorer.%s.near.org/transactions/%s"

// ExplorerURL links a transaction id on the explorer of the named network.
func ExplorerURL(network, transactionID string) string {
	return fmt.Sprintf(explorerURLFormat, network, transactionID)
}

// Outcome reports a final execution outcome of a transaction whose first
// action was expected to be of kind expected. A success whose first confirmed
// action differs is a CodeInvariant error and nothing further is reported.
func Outcome(r Reporter, outcome near.FinalExecutionOutcome, expected near.ActionKind, explorerNetwork string) error {
	switch outcome.Status.Kind {
	case near.StatusNotStarted, near.StatusStarted:
		r.Info("%s", outcome.Status.Kind)
	case near.StatusFailure:
		r.Failure("%s", FormatTxError(outcome.Status.Failure))
	case near.StatusSuccessValue:
		if err := reportSuccess(r, outcome, expected); err != nil {
			return err
		}
	default:
		return clierr.New(clierr.CodeInternal, fmt.Sprintf("unknown execution status %q", outcome.Status.Kind))
	}

	id := outcome.TransactionID()
	r.Detail("Transaction Id", id)
	r.Info("To see the transaction in the transaction explorer, please open this url in your browser:")
	r.Info("%s", ExplorerURL(explorerNetwork, id))
	return nil
}

func reportSuccess(r Reporter, outcome near.FinalExecutionOutcome, expected near.ActionKind) error {
	actions := outcome.Transaction.Actions
	if len(actions) == 0 {
		return clierr.New(clierr.CodeInvariant, "confirmed transaction has no actions")
	}
	first := actions[0]
	if first.Kind != expected {
		return clierr.New(clierr.CodeInvariant, fmt.Sprintf("first confirmed action is %s, expected %s", first.Kind, expected))
	}
	switch first.Kind {
	case near.ActionAddKey:
		if first.AddKey == nil {
			return clierr.New(clierr.CodeInvariant, "confirmed AddKey action has no body")
		}
		kind := "full access"
		if first.AddKey.AccessKey.Permission.Kind == near.PermissionFunctionCall {
			kind = "function-call access"
		}
		r.Success("Added %s key = %s to %s.", kind, first.AddKey.PublicKey, outcome.Transaction.SignerID)
	default:
		r.Success("%s succeeded for %s.", first.Kind, outcome.Transaction.SignerID)
	}
	return nil
}
