package near

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type StatusKind string

const (
	StatusNotStarted   StatusKind = "NotStarted"
	StatusStarted      StatusKind = "Started"
	StatusFailure      StatusKind = "Failure"
	StatusSuccessValue StatusKind = "SuccessValue"
)

// ExecutionStatus is the final status of a submitted transaction. Failure
// holds the node's raw TxExecutionError; SuccessValue the base64 return value.
type ExecutionStatus struct {
	Kind         StatusKind
	Failure      json.RawMessage
	SuccessValue string
}

func (s *ExecutionStatus) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		switch StatusKind(name) {
		case StatusNotStarted, StatusStarted:
			*s = ExecutionStatus{Kind: StatusKind(name)}
			return nil
		}
		return fmt.Errorf("unknown execution status %q", name)
	}
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(b, &tagged); err != nil {
		return fmt.Errorf("decode execution status: %w", err)
	}
	if body, ok := tagged[string(StatusSuccessValue)]; ok {
		var value string
		if err := json.Unmarshal(body, &value); err != nil {
			return fmt.Errorf("decode success value: %w", err)
		}
		*s = ExecutionStatus{Kind: StatusSuccessValue, SuccessValue: value}
		return nil
	}
	if body, ok := tagged[string(StatusFailure)]; ok {
		*s = ExecutionStatus{Kind: StatusFailure, Failure: append(json.RawMessage(nil), body...)}
		return nil
	}
	return fmt.Errorf("unknown execution status %s", bytes.TrimSpace(b))
}

type PermissionView struct {
	Kind         PermissionKind
	FunctionCall *FunctionCallPermissionView
}

type FunctionCallPermissionView struct {
	Allowance   *string  `json:"allowance"`
	ReceiverID  string   `json:"receiver_id"`
	MethodNames []string `json:"method_names"`
}

func (p *PermissionView) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		if PermissionKind(name) != PermissionFullAccess {
			return fmt.Errorf("unknown access key permission %q", name)
		}
		*p = PermissionView{Kind: PermissionFullAccess}
		return nil
	}
	var tagged struct {
		FunctionCall *FunctionCallPermissionView `json:"FunctionCall"`
	}
	if err := json.Unmarshal(b, &tagged); err != nil {
		return fmt.Errorf("decode access key permission: %w", err)
	}
	if tagged.FunctionCall == nil {
		return fmt.Errorf("unknown access key permission %s", bytes.TrimSpace(b))
	}
	*p = PermissionView{Kind: PermissionFunctionCall, FunctionCall: tagged.FunctionCall}
	return nil
}

type AccessKeyView struct {
	Nonce      uint64         `json:"nonce"`
	Permission PermissionView `json:"permission"`
}

type AddKeyView struct {
	PublicKey string        `json:"public_key"`
	AccessKey AccessKeyView `json:"access_key"`
}

// ActionView is one confirmed action as reported by the node. Only AddKey is
// decoded into a typed body; any other kind keeps just its tag and raw JSON.
type ActionView struct {
	Kind   ActionKind
	AddKey *AddKeyView
	Raw    json.RawMessage
}

func (v *ActionView) UnmarshalJSON(b []byte) error {
	raw := append(json.RawMessage(nil), b...)
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*v = ActionView{Kind: ActionKind(name), Raw: raw}
		return nil
	}
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(b, &tagged); err != nil {
		return fmt.Errorf("decode action view: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("action view must have exactly one tag, got %d", len(tagged))
	}
	for tag, body := range tagged {
		*v = ActionView{Kind: ActionKind(tag), Raw: raw}
		if ActionKind(tag) == ActionAddKey {
			var addKey AddKeyView
			if err := json.Unmarshal(body, &addKey); err != nil {
				return fmt.Errorf("decode add key view: %w", err)
			}
			v.AddKey = &addKey
		}
	}
	return nil
}

type TransactionView struct {
	SignerID   string       `json:"signer_id"`
	PublicKey  string       `json:"public_key"`
	Nonce      uint64       `json:"nonce"`
	ReceiverID string       `json:"receiver_id"`
	Actions    []ActionView `json:"actions"`
	Hash       string       `json:"hash"`
}

type ExecutionOutcomeWithID struct {
	ID string `json:"id"`
}

// FinalExecutionOutcome is the result of broadcast_tx_commit.
type FinalExecutionOutcome struct {
	Status             ExecutionStatus        `json:"status"`
	Transaction        TransactionView        `json:"transaction"`
	TransactionOutcome ExecutionOutcomeWithID `json:"transaction_outcome"`
}

// TransactionID is the id used for explorer links.
func (o FinalExecutionOutcome) TransactionID() string {
	if o.TransactionOutcome.ID != "" {
		return o.TransactionOutcome.ID
	}
	return o.Transaction.Hash
}
