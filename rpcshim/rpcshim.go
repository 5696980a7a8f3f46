// Package rpcshim defines the JSON forms of core values that cross the
// external boundary (§4.7, C8): thin shims over consensus.Transaction,
// consensus.Block and consensus.UtxoEntry, used by cmd/rillcoind's
// inspection surface to read blocks from files and print chain state. The
// shims never reimplement validation, hashing or the wire codec; every
// field maps directly onto its consensus counterpart, so a block loaded
// from JSON encodes through EncodeBlock to the same bytes as the core
// block it was built from.
package rpcshim

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"rillcoin.dev/node/consensus"
)

// Hash256 is the JSON form of consensus.Hash256: lowercase hex of the 32
// bytes in stored order (the same order as the wire encoding and
// consensus.Hash256.String), with no byte reversal.
type Hash256 consensus.Hash256

func (h Hash256) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h[:]))
}

func (h *Hash256) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("rpcshim: hash256: %w", err)
	}
	if len(raw) != len(h) {
		return fmt.Errorf("rpcshim: hash256: want %d bytes, got %d", len(h), len(raw))
	}
	copy(h[:], raw)
	return nil
}

// OutPoint is the JSON form of consensus.OutPoint.
type OutPoint struct {
	TxID  Hash256 `json:"txid"`
	Index uint32  `json:"index"`
}

func outPointToCore(o OutPoint) consensus.OutPoint {
	return consensus.OutPoint{TxID: consensus.Hash256(o.TxID), Index: o.Index}
}

func outPointFromCore(o consensus.OutPoint) OutPoint {
	return OutPoint{TxID: Hash256(o.TxID), Index: o.Index}
}

// TxInput is the JSON form of consensus.TxInput. Signature and Pubkey are
// hex-encoded fixed-length byte arrays, matching the wire codec's raw
// encoding rather than any DER or base58 convention.
type TxInput struct {
	Prev      OutPoint `json:"prev"`
	Signature string   `json:"signature"`
	Pubkey    string   `json:"pubkey"`
}

func txInputToCore(in TxInput) (consensus.TxInput, error) {
	var out consensus.TxInput
	out.Prev = outPointToCore(in.Prev)
	sig, err := hex.DecodeString(in.Signature)
	if err != nil {
		return out, fmt.Errorf("rpcshim: input signature: %w", err)
	}
	if len(sig) != len(out.Signature) {
		return out, fmt.Errorf("rpcshim: input signature: want %d bytes, got %d", len(out.Signature), len(sig))
	}
	copy(out.Signature[:], sig)
	pub, err := hex.DecodeString(in.Pubkey)
	if err != nil {
		return out, fmt.Errorf("rpcshim: input pubkey: %w", err)
	}
	if len(pub) != len(out.Pubkey) {
		return out, fmt.Errorf("rpcshim: input pubkey: want %d bytes, got %d", len(out.Pubkey), len(pub))
	}
	copy(out.Pubkey[:], pub)
	return out, nil
}

func txInputFromCore(in consensus.TxInput) TxInput {
	return TxInput{
		Prev:      outPointFromCore(in.Prev),
		Signature: hex.EncodeToString(in.Signature[:]),
		Pubkey:    hex.EncodeToString(in.Pubkey[:]),
	}
}

// TxOutput is the JSON form of consensus.TxOutput. Value is denominated in
// rills, the same integer unit the core uses everywhere; no display-only
// RILL conversion happens in this package.
type TxOutput struct {
	Value      uint64  `json:"value"`
	PubkeyHash Hash256 `json:"pubkey_hash"`
	ClusterID  Hash256 `json:"cluster_id"`
}

func txOutputToCore(o TxOutput) consensus.TxOutput {
	return consensus.TxOutput{Value: o.Value, PubkeyHash: consensus.Hash256(o.PubkeyHash), ClusterID: consensus.Hash256(o.ClusterID)}
}

func txOutputFromCore(o consensus.TxOutput) TxOutput {
	return TxOutput{Value: o.Value, PubkeyHash: Hash256(o.PubkeyHash), ClusterID: Hash256(o.ClusterID)}
}

// Transaction is the JSON form of consensus.Transaction.
type Transaction struct {
	Version  uint32     `json:"version"`
	Inputs   []TxInput  `json:"inputs"`
	Outputs  []TxOutput `json:"outputs"`
	LockTime uint64     `json:"lock_time"`
}

// ToCore converts t into the core consensus.Transaction it shims.
func (t Transaction) ToCore() (consensus.Transaction, error) {
	out := consensus.Transaction{Version: t.Version, LockTime: t.LockTime}
	out.Inputs = make([]consensus.TxInput, len(t.Inputs))
	for i, in := range t.Inputs {
		core, err := txInputToCore(in)
		if err != nil {
			return out, fmt.Errorf("rpcshim: transaction input %d: %w", i, err)
		}
		out.Inputs[i] = core
	}
	out.Outputs = make([]consensus.TxOutput, len(t.Outputs))
	for i, o := range t.Outputs {
		out.Outputs[i] = txOutputToCore(o)
	}
	return out, nil
}

// TransactionFromCore builds the JSON shim for a core transaction.
func TransactionFromCore(tx consensus.Transaction) Transaction {
	out := Transaction{Version: tx.Version, LockTime: tx.LockTime}
	out.Inputs = make([]TxInput, len(tx.Inputs))
	for i, in := range tx.Inputs {
		out.Inputs[i] = txInputFromCore(in)
	}
	out.Outputs = make([]TxOutput, len(tx.Outputs))
	for i, o := range tx.Outputs {
		out.Outputs[i] = txOutputFromCore(o)
	}
	return out
}

// BlockHeader is the JSON form of consensus.BlockHeader.
type BlockHeader struct {
	Version          uint32  `json:"version"`
	PrevHash         Hash256 `json:"prev_hash"`
	MerkleRoot       Hash256 `json:"merkle_root"`
	Timestamp        uint64  `json:"timestamp"`
	DifficultyTarget uint64  `json:"difficulty_target"`
	Nonce            uint64  `json:"nonce"`
}

func headerToCore(h BlockHeader) consensus.BlockHeader {
	return consensus.BlockHeader{
		Version:          h.Version,
		PrevHash:         consensus.Hash256(h.PrevHash),
		MerkleRoot:       consensus.Hash256(h.MerkleRoot),
		Timestamp:        h.Timestamp,
		DifficultyTarget: h.DifficultyTarget,
		Nonce:            h.Nonce,
	}
}

func headerFromCore(h consensus.BlockHeader) BlockHeader {
	return BlockHeader{
		Version:          h.Version,
		PrevHash:         Hash256(h.PrevHash),
		MerkleRoot:       Hash256(h.MerkleRoot),
		Timestamp:        h.Timestamp,
		DifficultyTarget: h.DifficultyTarget,
		Nonce:            h.Nonce,
	}
}

// Block is the JSON form of consensus.Block.
type Block struct {
	Header       BlockHeader   `json:"header"`
	Transactions []Transaction `json:"transactions"`
}

// ToCore converts b into the core consensus.Block it shims.
func (b Block) ToCore() (*consensus.Block, error) {
	out := &consensus.Block{Header: headerToCore(b.Header)}
	out.Transactions = make([]consensus.Transaction, len(b.Transactions))
	for i, t := range b.Transactions {
		tx, err := t.ToCore()
		if err != nil {
			return nil, fmt.Errorf("rpcshim: block transaction %d: %w", i, err)
		}
		out.Transactions[i] = tx
	}
	return out, nil
}

// BlockFromCore builds the JSON shim for a core block.
func BlockFromCore(b *consensus.Block) Block {
	out := Block{Header: headerFromCore(b.Header)}
	out.Transactions = make([]Transaction, len(b.Transactions))
	for i, tx := range b.Transactions {
		out.Transactions[i] = TransactionFromCore(tx)
	}
	return out
}

// UtxoEntry is the JSON form of consensus.UtxoEntry, as printed by the
// dump-utxo inspection command.
type UtxoEntry struct {
	Value      uint64  `json:"value"`
	PubkeyHash Hash256 `json:"pubkey_hash"`
	ClusterID  Hash256 `json:"cluster_id"`
	Height     uint64  `json:"height"`
	IsCoinbase bool    `json:"is_coinbase"`
}

// UtxoEntryFromCore builds the JSON shim for a core UTXO entry.
func UtxoEntryFromCore(e consensus.UtxoEntry) UtxoEntry {
	return UtxoEntry{
		Value:      e.Value,
		PubkeyHash: Hash256(e.PubkeyHash),
		ClusterID:  Hash256(e.ClusterID),
		Height:     e.Height,
		IsCoinbase: e.IsCoinbase,
	}
}

// DecodeHash parses a hex string into a consensus.Hash256, as accepted by
// inspection commands that take a hash/txid argument on the command line.
func DecodeHash(s string) (consensus.Hash256, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return consensus.Hash256{}, fmt.Errorf("rpcshim: hash: %w", err)
	}
	var h consensus.Hash256
	if len(raw) != len(h) {
		return h, fmt.Errorf("rpcshim: hash: want %d bytes, got %d", len(h), len(raw))
	}
	copy(h[:], raw)
	return h, nil
}
