package builder

import (
	"math/big"

	"github.com/ggonzalez94/near-cli/internal/near"
	"github.com/ggonzalez94/near-cli/internal/prompt"
)

// resolveAction resolves one action of the kind chosen by the operator.
func (s *Session) resolveAction(tx near.Transaction) (near.Action, error) {
	menu := prompt.Menu[near.Action]{
		Name:  "action",
		Label: "Select an action that you want to add to the transaction",
		Entries: []prompt.Entry[near.Action]{
			{Tag: "add-key", Label: "Add an access key", Build: func() (near.Action, error) { return s.resolveAddKey(tx) }},
		},
	}
	return menu.Choose(s.Prompter, s.Args)
}

// resolveAddKey builds an AddKey action. The new key starts at nonce 0.
func (s *Session) resolveAddKey(tx near.Transaction) (near.Action, error) {
	pk, err := s.resolvePublicKeyMode()
	if err != nil {
		return near.Action{}, err
	}
	perm, err := s.resolvePermission()
	if err != nil {
		return near.Action{}, err
	}
	action := near.NewAddKey(pk, 0, perm)
	s.Reporter.Info("Adding %s key = %s to %s.", perm, pk, tx.SignerID)
	return action, nil
}

func (s *Session) resolvePublicKeyMode() (near.PublicKey, error) {
	menu := prompt.Menu[near.PublicKey]{
		Name:  "public key mode",
		Label: "Do you want to enter a public key or generate a new key pair?",
		Entries: []prompt.Entry[near.PublicKey]{
			{
				Tag:   "public-key",
				Label: "Enter public key",
				Build: func() (near.PublicKey, error) {
					return prompt.Resolve(s.Prompter, s.Args, publicKeyField("public key", "Enter a public key for this access key"))
				},
			},
			{
				Tag:   "generate-keypair",
				Label: "Generate key pair",
				Build: s.generatedPublicKey,
			},
		},
	}
	return menu.Choose(s.Prompter, s.Args)
}

// generatedPublicKey creates a key pair and shows the operator its secret,
// which is not stored anywhere else.
func (s *Session) generatedPublicKey() (near.PublicKey, error) {
	pair, err := s.generateKey()
	if err != nil {
		return near.PublicKey{}, err
	}
	s.Reporter.Detail("Generated public key", pair.PublicKey.String())
	s.Reporter.Detail("Generated secret key", pair.SecretKey)
	return pair.PublicKey, nil
}

func (s *Session) resolvePermission() (near.Permission, error) {
	menu := prompt.Menu[near.Permission]{
		Name:  "permission",
		Label: "Select a permission that you want to add to the access key",
		Entries: []prompt.Entry[near.Permission]{
			{Tag: "full-access", Label: "A permission with full access", Build: func() (near.Permission, error) { return near.FullAccess(), nil }},
			{Tag: "function-call", Label: "A permission with function call", Build: s.resolveFunctionCallPermission},
		},
	}
	return menu.Choose(s.Prompter, s.Args)
}

func (s *Session) resolveFunctionCallPermission() (near.Permission, error) {
	allowance, err := prompt.Resolve[*big.Int](s.Prompter, s.Args, allowanceField)
	if err != nil {
		return near.Permission{}, err
	}
	receiver, err := prompt.Resolve(s.Prompter, s.Args, accountField("contract receiver", "Enter the contract account this access key may call"))
	if err != nil {
		return near.Permission{}, err
	}
	methods, err := prompt.Resolve(s.Prompter, s.Args, methodNamesField)
	if err != nil {
		return near.Permission{}, err
	}
	return near.FunctionCallAccess(near.FunctionCallPermission{
		Allowance:   allowance,
		ReceiverID:  receiver,
		MethodNames: methods,
	}), nil
}
