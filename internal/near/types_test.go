package near

import (
	"bytes"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

func TestParsePublicKey(t *testing.T) {
	encoded := base58.Encode(bytes.Repeat([]byte{1}, 32))

	pk, err := ParsePublicKey("ed25519:" + encoded)
	require.NoError(t, err)
	require.Equal(t, "ed25519:"+encoded, pk.String())

	bare, err := ParsePublicKey(encoded)
	require.NoError(t, err)
	require.True(t, pk.Equal(bare))

	_, err = ParsePublicKey("secp256k1:" + encoded)
	require.ErrorContains(t, err, "unsupported key type")

	_, err = ParsePublicKey("ed25519:" + base58.Encode([]byte{1, 2, 3}))
	require.ErrorContains(t, err, "32 bytes")
}

func TestParseAccountID(t *testing.T) {
	for _, ok := range []string{"alice.testnet", "a-b_c.near", "12", "sub.acc.near"} {
		_, err := ParseAccountID(ok)
		require.NoError(t, err, ok)
	}
	for _, bad := range []string{"a", "Alice.near", "alice..near", "-alice", "alice.", ""} {
		_, err := ParseAccountID(bad)
		require.Error(t, err, bad)
	}
}

func TestParseCryptoHash(t *testing.T) {
	raw := bytes.Repeat([]byte{7}, 32)
	h, err := ParseCryptoHash(base58.Encode(raw))
	require.NoError(t, err)
	require.Equal(t, raw, h[:])
	require.Equal(t, base58.Encode(raw), h.String())

	_, err = ParseCryptoHash("0OIl")
	require.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	oneAndHalf, _ := new(big.Int).SetString("1500000000000000000000000", 10)

	got, err := ParseAmount("1.5 NEAR")
	require.NoError(t, err)
	require.Equal(t, 0, got.Cmp(oneAndHalf))

	got, err = ParseAmount("1.5")
	require.NoError(t, err)
	require.Equal(t, 0, got.Cmp(oneAndHalf))

	got, err = ParseAmount("10 yoctoNEAR")
	require.NoError(t, err)
	require.Equal(t, int64(10), got.Int64())

	_, err = ParseAmount("0.0000000000000000000000001")
	require.ErrorContains(t, err, "precision")
	_, err = ParseAmount("-1")
	require.Error(t, err)

	require.Equal(t, "1.5 NEAR", FormatAmount(oneAndHalf))
	require.Equal(t, "0 NEAR", FormatAmount(big.NewInt(0)))
}

func TestBlockReferenceParams(t *testing.T) {
	require.Equal(t, map[string]any{"finality": "final"}, FinalBlock().Params())
	require.Equal(t, map[string]any{"block_id": uint64(42)}, BlockAtHeight(42).Params())
	var h CryptoHash
	h[0] = 1
	require.Equal(t, map[string]any{"block_id": h.String()}, BlockAtHash(h).Params())
}

func TestDecodeFinalExecutionOutcome(t *testing.T) {
	body := []byte(`{
		"status": {"SuccessValue": ""},
		"transaction": {
			"signer_id": "alice.testnet",
			"public_key": "ed25519:abc",
			"nonce": 12,
			"receiver_id": "alice.testnet",
			"hash": "HASH",
			"actions": [
				{"AddKey": {"public_key": "ed25519:new", "access_key": {"nonce": 0, "permission": "FullAccess"}}},
				{"AddKey": {"public_key": "ed25519:fc", "access_key": {"nonce": 0, "permission": {"FunctionCall": {"allowance": null, "receiver_id": "app.testnet", "method_names": []}}}}},
				"CreateAccount"
			]
		},
		"transaction_outcome": {"id": "TXID"}
	}`)
	var out FinalExecutionOutcome
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, StatusSuccessValue, out.Status.Kind)
	require.Equal(t, "TXID", out.TransactionID())
	require.Len(t, out.Transaction.Actions, 3)
	require.Equal(t, ActionAddKey, out.Transaction.Actions[0].Kind)
	require.Equal(t, "ed25519:new", out.Transaction.Actions[0].AddKey.PublicKey)
	require.Equal(t, PermissionFullAccess, out.Transaction.Actions[0].AddKey.AccessKey.Permission.Kind)
	require.Equal(t, PermissionFunctionCall, out.Transaction.Actions[1].AddKey.AccessKey.Permission.Kind)
	require.Equal(t, ActionKind("CreateAccount"), out.Transaction.Actions[2].Kind)
	require.Nil(t, out.Transaction.Actions[2].AddKey)
}

func TestDecodeExecutionStatusVariants(t *testing.T) {
	var s ExecutionStatus
	require.NoError(t, json.Unmarshal([]byte(`"Started"`), &s))
	require.Equal(t, StatusStarted, s.Kind)

	require.NoError(t, json.Unmarshal([]byte(`{"Failure": {"ActionError": {"index": 0}}}`), &s))
	require.Equal(t, StatusFailure, s.Kind)
	require.JSONEq(t, `{"ActionError": {"index": 0}}`, string(s.Failure))

	require.Error(t, json.Unmarshal([]byte(`"Unknown"`), &s))
}
