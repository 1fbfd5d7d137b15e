package near

import (
	"fmt"
	"math/big"
	"strings"
)

// ActionKind names an action variant; the values match the node's JSON tags.
type ActionKind string

const ActionAddKey ActionKind = "AddKey"

// Borsh discriminants of the node's Action enum.
const actionIndexAddKey uint8 = 5

type PermissionKind string

const (
	PermissionFullAccess   PermissionKind = "FullAccess"
	PermissionFunctionCall PermissionKind = "FunctionCall"
)

// FunctionCallPermission restricts an access key to calls on one receiver.
// A nil Allowance means the key may spend an unlimited amount on gas.
type FunctionCallPermission struct {
	Allowance   *big.Int  `json:"allowance,omitempty"`
	ReceiverID  AccountID `json:"receiver_id"`
	MethodNames []string  `json:"method_names"`
}

type Permission struct {
	Kind         PermissionKind          `json:"kind"`
	FunctionCall *FunctionCallPermission `json:"function_call,omitempty"`
}

func FullAccess() Permission { return Permission{Kind: PermissionFullAccess} }

func FunctionCallAccess(p FunctionCallPermission) Permission {
	methods := append([]string(nil), p.MethodNames...)
	p.MethodNames = methods
	if p.Allowance != nil {
		p.Allowance = new(big.Int).Set(p.Allowance)
	}
	return Permission{Kind: PermissionFunctionCall, FunctionCall: &p}
}

func (p Permission) String() string {
	if p.Kind != PermissionFunctionCall || p.FunctionCall == nil {
		return "full access"
	}
	allowance := "unlimited"
	if p.FunctionCall.Allowance != nil {
		allowance = FormatAmount(p.FunctionCall.Allowance)
	}
	methods := "any method"
	if len(p.FunctionCall.MethodNames) > 0 {
		methods = strings.Join(p.FunctionCall.MethodNames, ",")
	}
	return fmt.Sprintf("function call on %s (%s, allowance %s)", p.FunctionCall.ReceiverID, methods, allowance)
}

type AccessKey struct {
	Nonce      uint64     `json:"nonce"`
	Permission Permission `json:"permission"`
}

type AddKeyAction struct {
	PublicKey PublicKey `json:"public_key"`
	AccessKey AccessKey `json:"access_key"`
}

// Action is one operation of a transaction. Exactly one variant field is set.
type Action struct {
	Kind   ActionKind    `json:"kind"`
	AddKey *AddKeyAction `json:"add_key,omitempty"`
}

func NewAddKey(publicKey PublicKey, nonce uint64, permission Permission) Action {
	return Action{
		Kind: ActionAddKey,
		AddKey: &AddKeyAction{
			PublicKey: publicKey,
			AccessKey: AccessKey{Nonce: nonce, Permission: permission},
		},
	}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionAddKey:
		if a.AddKey == nil {
			return "AddKey(<empty>)"
		}
		return fmt.Sprintf("AddKey(%s, %s)", a.AddKey.PublicKey, a.AddKey.AccessKey.Permission)
	default:
		return string(a.Kind)
	}
}
