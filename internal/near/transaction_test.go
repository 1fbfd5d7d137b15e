package near

import (
	"bytes"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey(b byte) PublicKey {
	pk, err := PublicKeyFromBytes(bytes.Repeat([]byte{b}, 32))
	if err != nil {
		panic(err)
	}
	return pk
}

func borshString(s string) []byte {
	out := []byte{byte(len(s)), 0, 0, 0}
	return append(out, s...)
}

func baseTransaction() Transaction {
	var hash CryptoHash
	copy(hash[:], bytes.Repeat([]byte{2}, 32))
	return Transaction{}.
		WithSigner("al").
		WithReceiver("bo").
		WithAccessKey(testKey(1), 7, hash)
}

func TestEncodeFullAccessAddKey(t *testing.T) {
	tx := baseTransaction().WithAction(NewAddKey(testKey(3), 0, FullAccess()))

	var want []byte
	want = append(want, borshString("al")...)
	want = append(want, 0)
	want = append(want, bytes.Repeat([]byte{1}, 32)...)
	want = append(want, 7, 0, 0, 0, 0, 0, 0, 0)
	want = append(want, borshString("bo")...)
	want = append(want, bytes.Repeat([]byte{2}, 32)...)
	want = append(want, 1, 0, 0, 0)
	want = append(want, 5, 0)
	want = append(want, bytes.Repeat([]byte{3}, 32)...)
	want = append(want, make([]byte, 8)...)
	want = append(want, 1)

	got, err := tx.Encode()
	require.NoError(t, err)
	require.Equal(t, want, got)

	hash, err := tx.Hash()
	require.NoError(t, err)
	require.Equal(t, CryptoHash(sha256.Sum256(want)), hash)
}

func TestEncodeFunctionCallPermission(t *testing.T) {
	perm := FunctionCallAccess(FunctionCallPermission{
		Allowance:   big.NewInt(1),
		ReceiverID:  "app.near",
		MethodNames: []string{"vote"},
	})
	tx := baseTransaction().WithAction(NewAddKey(testKey(3), 0, perm))
	got, err := tx.Encode()
	require.NoError(t, err)

	var tail []byte
	tail = append(tail, 0, 1, 1)
	tail = append(tail, make([]byte, 15)...)
	tail = append(tail, borshString("app.near")...)
	tail = append(tail, 1, 0, 0, 0)
	tail = append(tail, borshString("vote")...)
	require.True(t, bytes.HasSuffix(got, tail), "unexpected permission encoding %x", got)
}

func TestEncodeRejectsUnknownAction(t *testing.T) {
	tx := baseTransaction().WithAction(Action{Kind: "Transfer"})
	_, err := tx.Encode()
	require.ErrorContains(t, err, "unsupported action kind")
}

func TestSignedTransactionAppendsSignature(t *testing.T) {
	tx := baseTransaction().WithAction(NewAddKey(testKey(3), 0, FullAccess()))
	sig, err := SignatureFromBytes(bytes.Repeat([]byte{9}, 64))
	require.NoError(t, err)

	unsigned, err := tx.Encode()
	require.NoError(t, err)
	signed, err := SignedTransaction{Transaction: tx, Signature: sig}.Encode()
	require.NoError(t, err)
	require.Equal(t, unsigned, signed[:len(unsigned)])
	require.Equal(t, byte(0), signed[len(unsigned)])
	require.Equal(t, bytes.Repeat([]byte{9}, 64), signed[len(unsigned)+1:])
}

func TestWithActionDoesNotAlias(t *testing.T) {
	base := baseTransaction()
	first := base.WithAction(NewAddKey(testKey(3), 0, FullAccess()))
	second := first.WithAction(NewAddKey(testKey(4), 0, FullAccess()))
	third := first.WithAction(NewAddKey(testKey(5), 0, FullAccess()))

	require.Empty(t, base.Actions)
	require.Len(t, first.Actions, 1)
	require.Len(t, second.Actions, 2)
	require.True(t, second.Actions[1].AddKey.PublicKey.Equal(testKey(4)))
	require.True(t, third.Actions[1].AddKey.PublicKey.Equal(testKey(5)))
}

func TestValidateRequiresActionsAndAnchor(t *testing.T) {
	require.ErrorContains(t, baseTransaction().Validate(), "no actions")
	tx := Transaction{}.WithSigner("al").WithReceiver("bo").WithAction(NewAddKey(testKey(3), 0, FullAccess()))
	require.ErrorContains(t, tx.Validate(), "public key")
	require.NoError(t, baseTransaction().WithAction(NewAddKey(testKey(3), 0, FullAccess())).Validate())
}
