package builder

import (
	"strings"

	"github.com/ggonzalez94/near-cli/internal/config"
	"github.com/ggonzalez94/near-cli/internal/near"
	"github.com/ggonzalez94/near-cli/internal/prompt"
)

const (
	modeNameNetwork = "network"
	modeNameOffline = "offline"
)

// Connection is a selected network and an open client for its RPC endpoint.
type Connection struct {
	Network config.Network
	Client  RPC
}

// Mode is fixed once per session. A nil Connection means offline: the
// access key fields were entered by the operator and no RPC call is allowed.
type Mode struct {
	Connection      *Connection
	SignerPublicKey near.PublicKey
	Nonce           uint64
	BlockHash       near.CryptoHash
}

func (m Mode) Online() bool { return m.Connection != nil }

func (m Mode) Name() string {
	if m.Online() {
		return modeNameNetwork
	}
	return modeNameOffline
}

func (m Mode) NetworkName() string {
	if !m.Online() {
		return ""
	}
	return m.Connection.Network.Name
}

// resolveMode picks online or offline completion for a transaction.
func (s *Session) resolveMode() (Mode, error) {
	menu := prompt.Menu[Mode]{
		Name:  "mode",
		Label: "To construct a transaction you will need to provide information about sender (signer) and receiver accounts, and actions that needs to be performed. Do you want to derive some information required for transaction construction automatically querying it online?",
		Entries: []prompt.Entry[Mode]{
			{Tag: modeNameNetwork, Label: "Yes, I keep it simple", Build: s.onlineMode},
			{Tag: modeNameOffline, Label: "No, I want to work in no-network (air-gapped) environment", Build: s.offlineMode},
		},
	}
	mode, err := menu.Choose(s.Prompter, s.Args)
	if err != nil {
		return Mode{}, err
	}
	s.Log.Debug().Str("mode", mode.Name()).Str("network", mode.NetworkName()).Msg("mode resolved")
	return mode, nil
}

// resolveQueryMode is the mode of read-only flows, which only exist online.
func (s *Session) resolveQueryMode() (Mode, error) {
	menu := prompt.Menu[Mode]{
		Name:  "mode",
		Label: "Choose a network connection",
		Entries: []prompt.Entry[Mode]{
			{Tag: modeNameNetwork, Label: "Yes, I keep it simple", Build: s.onlineMode},
		},
	}
	return menu.Choose(s.Prompter, s.Args)
}

func (s *Session) onlineMode() (Mode, error) {
	network, err := prompt.Resolve(s.Prompter, s.Args, s.networkField())
	if err != nil {
		return Mode{}, err
	}
	return Mode{Connection: &Connection{Network: network, Client: s.Dial(network.RPCURL)}}, nil
}

func (s *Session) networkField() prompt.Field[config.Network] {
	return prompt.Field[config.Network]{
		Name:  "network",
		Label: "Select a network (" + strings.Join(s.Settings.NetworkNames(), ", ") + ") or enter an RPC URL",
		Parse: s.Settings.ResolveNetwork,
	}
}

func (s *Session) offlineMode() (Mode, error) {
	pk, err := prompt.Resolve(s.Prompter, s.Args, publicKeyField("signer public key", "Enter the signer's public key"))
	if err != nil {
		return Mode{}, err
	}
	nonce, err := prompt.Resolve(s.Prompter, s.Args, nonceField)
	if err != nil {
		return Mode{}, err
	}
	hash, err := prompt.Resolve(s.Prompter, s.Args, blockHashField)
	if err != nil {
		return Mode{}, err
	}
	return Mode{SignerPublicKey: pk, Nonce: nonce, BlockHash: hash}, nil
}
