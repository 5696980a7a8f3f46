package rpcshim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"rillcoin.dev/node/consensus"
)

func sampleBlock() *consensus.Block {
	coinbase := consensus.Transaction{
		Version: 1,
		Inputs:  []consensus.TxInput{{Prev: consensus.NullOutPoint}},
		Outputs: []consensus.TxOutput{{Value: consensus.BlockSubsidy(1), PubkeyHash: consensus.Hash256{0x01}, ClusterID: consensus.ZeroHash}},
		LockTime: 1,
	}
	spend := consensus.Transaction{
		Version: 1,
		Inputs: []consensus.TxInput{{
			Prev:      consensus.OutPoint{TxID: consensus.Hash256{0xaa}, Index: 0},
			Signature: [64]byte{0x02},
			Pubkey:    [32]byte{0x03},
		}},
		Outputs: []consensus.TxOutput{
			{Value: 500, PubkeyHash: consensus.Hash256{0x04}, ClusterID: consensus.Hash256{0x05}},
			{Value: 250, PubkeyHash: consensus.Hash256{0x06}, ClusterID: consensus.Hash256{0x05}},
		},
	}
	txs := []consensus.Transaction{coinbase, spend}
	return &consensus.Block{
		Header: consensus.BlockHeader{
			Version:          1,
			PrevHash:         consensus.Hash256{0x07},
			MerkleRoot:       consensus.MerkleRoot(txs),
			Timestamp:        1_700_000_000,
			DifficultyTarget: consensus.MaxTarget,
			Nonce:            42,
		},
		Transactions: txs,
	}
}

func TestBlockJSONRoundTripMatchesCoreEncoding(t *testing.T) {
	want := sampleBlock()

	shim := BlockFromCore(want)
	raw, err := json.Marshal(shim)
	require.NoError(t, err)

	var decoded Block
	require.NoError(t, json.Unmarshal(raw, &decoded))

	got, err := decoded.ToCore()
	require.NoError(t, err)

	require.Equal(t, consensus.EncodeBlock(want), consensus.EncodeBlock(got))
}

func TestTransactionJSONRoundTrip(t *testing.T) {
	want := sampleBlock().Transactions[1]

	shim := TransactionFromCore(want)
	raw, err := json.Marshal(shim)
	require.NoError(t, err)

	var decoded Transaction
	require.NoError(t, json.Unmarshal(raw, &decoded))

	got, err := decoded.ToCore()
	require.NoError(t, err)
	require.Equal(t, consensus.EncodeTx(&want), consensus.EncodeTx(&got))
}

func TestHash256JSONIsLowercaseHex(t *testing.T) {
	h := Hash256{0xde, 0xad, 0xbe, 0xef}
	raw, err := json.Marshal(h)
	require.NoError(t, err)
	require.Equal(t, `"deadbeef00000000000000000000000000000000000000000000000000000000"`, string(raw))

	var back Hash256
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, h, back)
}

func TestHash256UnmarshalRejectsWrongLength(t *testing.T) {
	var h Hash256
	err := json.Unmarshal([]byte(`"deadbeef"`), &h)
	require.Error(t, err)
}

func TestDecodeHashRejectsBadLength(t *testing.T) {
	_, err := DecodeHash("ab")
	require.Error(t, err)
}

func TestUtxoEntryFromCore(t *testing.T) {
	entry := consensus.UtxoEntry{
		Value:      12345,
		PubkeyHash: consensus.Hash256{0x01},
		ClusterID:  consensus.Hash256{0x02},
		Height:     7,
		IsCoinbase: true,
	}
	shim := UtxoEntryFromCore(entry)
	require.Equal(t, entry.Value, shim.Value)
	require.Equal(t, Hash256(entry.PubkeyHash), shim.PubkeyHash)
	require.Equal(t, Hash256(entry.ClusterID), shim.ClusterID)
	require.Equal(t, entry.Height, shim.Height)
	require.True(t, shim.IsCoinbase)
}
