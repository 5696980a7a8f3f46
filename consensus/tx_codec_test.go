package consensus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTx() *Transaction {
	return &Transaction{
		Version: 1,
		Inputs: []TxInput{
			{
				Prev:      OutPoint{TxID: Hash256{0xaa}, Index: 3},
				Signature: [64]byte{0x01, 0x02},
				Pubkey:    [32]byte{0x03, 0x04},
			},
		},
		Outputs: []TxOutput{
			{Value: 1000, PubkeyHash: Hash256{0x05}, ClusterID: Hash256{0x06}},
		},
		LockTime: 42,
	}
}

func TestEncodeDecodeTxRoundTrip(t *testing.T) {
	tx := sampleTx()
	encoded := EncodeTx(tx)
	decoded, err := DecodeTx(encoded)
	require.NoError(t, err)
	require.Equal(t, tx, decoded)
}

func TestTxIDStableUnderSignatureMutation(t *testing.T) {
	tx := sampleTx()
	id1 := TxID(tx)

	tx.Inputs[0].Signature[10] = 0xff
	tx.Inputs[0].Pubkey[5] = 0xff
	id2 := TxID(tx)
	require.Equal(t, id1, id2, "txid must not depend on signature or pubkey bytes")
}

func TestTxIDChangesWithOutputMutation(t *testing.T) {
	tx := sampleTx()
	id1 := TxID(tx)

	tx.Outputs[0].Value++
	id2 := TxID(tx)
	require.NotEqual(t, id1, id2)
}

func TestTxIDChangesWithLockTime(t *testing.T) {
	tx := sampleTx()
	id1 := TxID(tx)
	tx.LockTime++
	id2 := TxID(tx)
	require.NotEqual(t, id1, id2)
}

func TestCoinbaseDistinctTxidsAcrossHeights(t *testing.T) {
	mk := func(height uint64) *Transaction {
		return &Transaction{
			Version: 1,
			Inputs:  []TxInput{{Prev: NullOutPoint}},
			Outputs: []TxOutput{{Value: 5_000_000_000, PubkeyHash: Hash256{0x01}, ClusterID: Hash256{0x02}}},
			LockTime: height,
		}
	}
	id1 := TxID(mk(1))
	id2 := TxID(mk(2))
	require.NotEqual(t, id1, id2)
}

func TestDecodeTxRejectsTruncated(t *testing.T) {
	tx := sampleTx()
	encoded := EncodeTx(tx)
	_, err := DecodeTx(encoded[:len(encoded)-1])
	require.Error(t, err)
}

func TestDecodeTxRejectsTrailingBytes(t *testing.T) {
	tx := sampleTx()
	encoded := append(EncodeTx(tx), 0x00)
	_, err := DecodeTx(encoded)
	require.Error(t, err)
}
