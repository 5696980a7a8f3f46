package consensus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func txSet(n int) []Transaction {
	out := make([]Transaction, n)
	for i := 0; i < n; i++ {
		out[i] = coinbaseTx(uint64(i), uint64(1000+i))
	}
	return out
}

func TestMerkleRootEmpty(t *testing.T) {
	require.Equal(t, ZeroHash, MerkleRoot(nil))
}

func TestMerkleRootDeterministicAcrossSizes(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8, 9} {
		txs := txSet(n)
		r1 := MerkleRoot(txs)
		r2 := MerkleRoot(txs)
		require.Equal(t, r1, r2, "n=%d", n)
	}
}

func TestMerkleProofRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 7} {
		txs := txSet(n)
		for i := 0; i < n; i++ {
			proof, root, err := BuildMerkleProof(txs, i)
			require.NoError(t, err)
			require.Equal(t, MerkleRoot(txs), root)
			ok := VerifyMerkleProof(EncodeTx(&txs[i]), proof, root)
			require.True(t, ok, "n=%d i=%d", n, i)
		}
	}
}

func TestMerkleProofRejectsWrongLeaf(t *testing.T) {
	txs := txSet(4)
	proof, root, err := BuildMerkleProof(txs, 1)
	require.NoError(t, err)
	ok := VerifyMerkleProof(EncodeTx(&txs[2]), proof, root)
	require.False(t, ok)
}

func TestMerkleProofOutOfRange(t *testing.T) {
	txs := txSet(2)
	_, _, err := BuildMerkleProof(txs, 5)
	require.Error(t, err)
}
