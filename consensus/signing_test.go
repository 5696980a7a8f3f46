package consensus

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyInput(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	var pubkey [32]byte
	copy(pubkey[:], pub)

	tx := &Transaction{
		Version: 1,
		Inputs:  []TxInput{{Prev: OutPoint{TxID: Hash256{0x01}, Index: 0}, Pubkey: pubkey}},
		Outputs: []TxOutput{{Value: 10, PubkeyHash: Hash256{0x02}, ClusterID: Hash256{0x03}}},
	}
	sig := SignInput(tx, 0, priv)
	tx.Inputs[0].Signature = sig

	require.True(t, VerifyInputSignature(tx, 0, pubkey, sig))
}

func TestVerifyInputSignatureRejectsWrongDigest(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	var pubkey [32]byte
	copy(pubkey[:], pub)

	tx := &Transaction{
		Version: 1,
		Inputs:  []TxInput{{Prev: OutPoint{TxID: Hash256{0x01}, Index: 0}, Pubkey: pubkey}},
		Outputs: []TxOutput{{Value: 10, PubkeyHash: Hash256{0x02}, ClusterID: Hash256{0x03}}},
	}
	sig := SignInput(tx, 0, priv)

	tx.Outputs[0].Value = 999 // mutate after signing
	require.False(t, VerifyInputSignature(tx, 0, pubkey, sig))
}

func TestPubkeyHash(t *testing.T) {
	var pub [32]byte
	pub[0] = 0x42
	require.Equal(t, Blake3(pub[:]), PubkeyHash(pub))
}
