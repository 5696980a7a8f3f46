package consensus

import "crypto/ed25519"

// SigningDigest computes the per-input signing digest for transaction tx at
// inputIndex (§4.1 step 2): BLAKE3(version || all inputs' outpoints ||
// all outputs || lock_time || input_index). Every input signs over the same
// base preimage, distinguished only by the trailing index, so a signature
// cannot be replayed onto a different input of the same transaction.
func SigningDigest(tx *Transaction, inputIndex uint32) Hash256 {
	w := newWriter(4 + len(tx.Inputs)*36 + len(tx.Outputs)*72 + 8 + 4)
	w.putU32(tx.Version)
	for _, in := range tx.Inputs {
		w.putRaw(in.Prev.TxID[:])
		w.putU32(in.Prev.Index)
	}
	for _, out := range tx.Outputs {
		w.putU64(out.Value)
		w.putRaw(out.PubkeyHash[:])
		w.putRaw(out.ClusterID[:])
	}
	w.putU64(tx.LockTime)
	w.putU32(inputIndex)
	return Blake3(w.bytes())
}

// VerifyInputSignature checks that signature is a valid Ed25519 signature by
// pubkey over SigningDigest(tx, inputIndex).
func VerifyInputSignature(tx *Transaction, inputIndex uint32, pubkey [32]byte, signature [64]byte) bool {
	digest := SigningDigest(tx, inputIndex)
	return ed25519.Verify(pubkey[:], digest[:], signature[:])
}

// SignInput produces the Ed25519 signature a spender places in
// TxInput.Signature for the given input index.
func SignInput(tx *Transaction, inputIndex uint32, priv ed25519.PrivateKey) [64]byte {
	digest := SigningDigest(tx, inputIndex)
	sig := ed25519.Sign(priv, digest[:])
	var out [64]byte
	copy(out[:], sig)
	return out
}

// PubkeyHash is the address payload for a raw Ed25519 public key:
// BLAKE3(pubkey).
func PubkeyHash(pubkey [32]byte) Hash256 {
	return Blake3(pubkey[:])
}
