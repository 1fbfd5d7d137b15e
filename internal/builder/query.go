package builder

import (
	"context"

	"github.com/dustin/go-humanize"

	"github.com/ggonzalez94/near-cli/internal/near"
	"github.com/ggonzalez94/near-cli/internal/prompt"
)

type CodeView struct {
	AccountID   string `json:"account_id"`
	Network     string `json:"network"`
	CodeHash    string `json:"code_hash"`
	SizeBytes   int    `json:"size_bytes"`
	Size        string `json:"size"`
	Path        string `json:"path,omitempty"`
	BlockHeight uint64 `json:"block_height"`
	BlockHash   string `json:"block_hash"`
}

type NonceView struct {
	AccountID   string `json:"account_id"`
	Network     string `json:"network"`
	PublicKey   string `json:"public_key"`
	Nonce       uint64 `json:"nonce"`
	Permission  string `json:"permission"`
	BlockHeight uint64 `json:"block_height"`
	BlockHash   string `json:"block_hash"`
}

// ViewContractCode fetches an account's contract and either writes it to a
// file or reports its hash. Queries at a historical block use the archival
// endpoint of the network.
func (s *Session) ViewContractCode(ctx context.Context) (CodeView, error) {
	mode, err := s.resolveQueryMode()
	if err != nil {
		return CodeView{}, err
	}
	account, err := prompt.Resolve(s.Prompter, s.Args, accountField("contract account", "What is the contract account ID?"))
	if err != nil {
		return CodeView{}, err
	}
	path, err := s.resolveDownloadMode()
	if err != nil {
		return CodeView{}, err
	}
	ref, err := s.resolveBlockReference()
	if err != nil {
		return CodeView{}, err
	}
	if err := s.finish(); err != nil {
		return CodeView{}, err
	}

	network := mode.Connection.Network
	client := mode.Connection.Client
	if !ref.IsFinal() && network.RPCFor(true) != network.RPCURL {
		client = s.Dial(network.RPCFor(true))
	}
	s.Log.Debug().Str("account", account.String()).Str("block", ref.String()).Msg("view contract code")
	res, err := client.ViewCode(ctx, account, ref)
	if err != nil {
		return CodeView{}, err
	}

	view := CodeView{
		AccountID:   account.String(),
		Network:     network.Name,
		CodeHash:    res.Hash.String(),
		SizeBytes:   len(res.Code),
		Size:        humanize.Bytes(uint64(len(res.Code))),
		BlockHeight: res.BlockHeight,
		BlockHash:   res.BlockHash.String(),
	}
	if path != "" {
		if err := s.files().WriteFile(path, res.Code); err != nil {
			return CodeView{}, err
		}
		view.Path = path
		s.Reporter.Success("The file %q was downloaded successfully (%s).", path, view.Size)
		return view, nil
	}
	s.Reporter.Detail("Hash of the contract", view.CodeHash)
	return view, nil
}

// resolveDownloadMode returns the target path, or "" to only report the hash.
func (s *Session) resolveDownloadMode() (string, error) {
	menu := prompt.Menu[string]{
		Name:  "download mode",
		Label: "Choose a mode to view a contract",
		Entries: []prompt.Entry[string]{
			{Tag: "download", Label: "Download a contract file", Build: func() (string, error) { return prompt.Resolve(s.Prompter, s.Args, pathField) }},
			{Tag: "hash", Label: "View a contract hash", Build: func() (string, error) { return "", nil }},
		},
	}
	return menu.Choose(s.Prompter, s.Args)
}

func (s *Session) resolveBlockReference() (near.BlockReference, error) {
	menu := prompt.Menu[near.BlockReference]{
		Name:  "block reference",
		Label: "Choose Block ID",
		Entries: []prompt.Entry[near.BlockReference]{
			{Tag: "at-final-block", Label: "View this contract at final block", Build: func() (near.BlockReference, error) { return near.FinalBlock(), nil }},
			{
				Tag:   "at-block-height",
				Label: "View this contract at block height",
				Build: func() (near.BlockReference, error) {
					h, err := prompt.Resolve(s.Prompter, s.Args, blockHeightField)
					return near.BlockAtHeight(h), err
				},
			},
			{
				Tag:   "at-block-hash",
				Label: "View this contract at block hash",
				Build: func() (near.BlockReference, error) {
					h, err := prompt.Resolve(s.Prompter, s.Args, blockHashField)
					return near.BlockAtHash(h), err
				},
			},
		},
	}
	return menu.Choose(s.Prompter, s.Args)
}

// ViewNonce reports the current nonce of an access key at the final block.
func (s *Session) ViewNonce(ctx context.Context) (NonceView, error) {
	mode, err := s.resolveQueryMode()
	if err != nil {
		return NonceView{}, err
	}
	account, err := prompt.Resolve(s.Prompter, s.Args, accountField("account", "Enter your account ID"))
	if err != nil {
		return NonceView{}, err
	}
	pk, err := prompt.Resolve(s.Prompter, s.Args, publicKeyField("public key", "Enter a public key"))
	if err != nil {
		return NonceView{}, err
	}
	if err := s.finish(); err != nil {
		return NonceView{}, err
	}
	ak, err := mode.Connection.Client.ViewAccessKey(ctx, account, pk, near.FinalBlock())
	if err != nil {
		return NonceView{}, err
	}
	view := NonceView{
		AccountID:   account.String(),
		Network:     mode.NetworkName(),
		PublicKey:   pk.String(),
		Nonce:       ak.Nonce,
		Permission:  string(ak.Permission.Kind),
		BlockHeight: ak.BlockHeight,
		BlockHash:   ak.BlockHash.String(),
	}
	s.Reporter.Info("current nonce: %d for a public key: %s", ak.Nonce, pk)
	return view, nil
}
