package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	clierr "github.com/ggonzalez94/near-cli/internal/errors"
	"github.com/ggonzalez94/near-cli/internal/near"
)

const testPublicKey = "ed25519:6E8sCci9badyRkXb3JoRpBj5p8C6Tw41ELDZoiihKEtp"

func decodeOutcome(t *testing.T, body string) near.FinalExecutionOutcome {
	t.Helper()
	var out near.FinalExecutionOutcome
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestExplorerURL(t *testing.T) {
	require.Equal(t, "https://explorer.testnet.near.org/transactions/abc123", ExplorerURL("testnet", "abc123"))
}

func TestOutcomeSuccessAddKey(t *testing.T) {
	outcome := decodeOutcome(t, `{
		"status":{"SuccessValue":""},
		"transaction":{"signer_id":"alice.testnet","hash":"TX1","actions":[
			{"AddKey":{"public_key":"`+testPublicKey+`","access_key":{"nonce":0,"permission":"FullAccess"}}}
		]},
		"transaction_outcome":{"id":"TX1"}
	}`)
	rec := &Recorder{}
	require.NoError(t, Outcome(rec, outcome, near.ActionAddKey, "testnet"))

	success := rec.Text("success")
	require.Contains(t, success, testPublicKey)
	require.Contains(t, success, "alice.testnet")
	require.Contains(t, success, "Added full access key")
	all := rec.Text()
	require.Contains(t, all, "Transaction Id: TX1")
	require.Contains(t, all, "https://explorer.testnet.near.org/transactions/TX1")
}

func TestOutcomeSuccessFunctionCallKey(t *testing.T) {
	outcome := decodeOutcome(t, `{
		"status":{"SuccessValue":""},
		"transaction":{"signer_id":"alice.testnet","actions":[
			{"AddKey":{"public_key":"`+testPublicKey+`","access_key":{"nonce":0,"permission":{"FunctionCall":{"allowance":null,"receiver_id":"app.testnet","method_names":[]}}}}}
		]},
		"transaction_outcome":{"id":"TX2"}
	}`)
	rec := &Recorder{}
	require.NoError(t, Outcome(rec, outcome, near.ActionAddKey, "testnet"))
	require.Contains(t, rec.Text("success"), "Added function-call access key")
}

func TestOutcomeFailureRendersErrorWithoutSuccess(t *testing.T) {
	outcome := decodeOutcome(t, `{
		"status":{"Failure":{"ActionError":{"index":0,"kind":{"AddKeyAlreadyExists":{"account_id":"alice.testnet","public_key":"`+testPublicKey+`"}}}}},
		"transaction":{"signer_id":"alice.testnet","actions":[]},
		"transaction_outcome":{"id":"TX3"}
	}`)
	rec := &Recorder{}
	require.NoError(t, Outcome(rec, outcome, near.ActionAddKey, "mainnet"))

	require.Empty(t, rec.Text("success"))
	failure := rec.Text("failure")
	require.Contains(t, failure, "AddKeyAlreadyExists")
	require.Contains(t, failure, "action #0")
	require.Contains(t, rec.Text(), "https://explorer.mainnet.near.org/transactions/TX3")
}

func TestOutcomeTransitionalStatus(t *testing.T) {
	for _, status := range []string{"NotStarted", "Started"} {
		outcome := decodeOutcome(t, `{"status":"`+status+`","transaction":{"signer_id":"a.testnet","hash":"TX4","actions":[]},"transaction_outcome":{"id":""}}`)
		rec := &Recorder{}
		require.NoError(t, Outcome(rec, outcome, near.ActionAddKey, "testnet"))
		require.Equal(t, status+"\n", rec.Text("info")[:len(status)+1])
		require.Contains(t, rec.Text(), "transactions/TX4")
	}
}

func TestOutcomeMismatchedFirstActionIsInvariantError(t *testing.T) {
	outcome := decodeOutcome(t, `{
		"status":{"SuccessValue":""},
		"transaction":{"signer_id":"alice.testnet","actions":["CreateAccount"]},
		"transaction_outcome":{"id":"TX5"}
	}`)
	rec := &Recorder{}
	err := Outcome(rec, outcome, near.ActionAddKey, "testnet")
	require.Error(t, err)
	require.True(t, clierr.Is(err, clierr.CodeInvariant))
	require.Equal(t, 22, clierr.ExitCode(err))
	require.Empty(t, rec.Text("success"))
	require.NotContains(t, rec.Text(), "explorer")
}

func TestFormatTxError(t *testing.T) {
	cases := map[string]string{
		`{"InvalidTxError":{"InvalidNonce":{"tx_nonce":5,"ak_nonce":6}}}`: "Transaction is invalid: InvalidNonce {ak_nonce: 6, tx_nonce: 5}",
		`{"InvalidTxError":"Expired"}`:                                     "Transaction is invalid: Expired",
		`{"ActionError":{"kind":{"AccountDoesNotExist":{"account_id":"x"}}}}`: "executing an action: AccountDoesNotExist {account_id: x}",
		`null`: "without details",
	}
	for raw, want := range cases {
		got := FormatTxError(json.RawMessage(raw))
		if !strings.Contains(got, want) {
			t.Fatalf("FormatTxError(%s) = %q, want substring %q", raw, got, want)
		}
	}
}

func TestConsoleWritesPlainWhenColorDisabled(t *testing.T) {
	var buf strings.Builder
	c := NewConsole(&buf, true)
	c.Success("done %d", 1)
	c.Detail("Transaction Id", "abc")
	require.Equal(t, "done 1\nTransaction Id: abc\n", buf.String())
}
