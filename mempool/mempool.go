package mempool

import (
	"math/big"
	"sort"

	"github.com/decred/slog"

	"rillcoin.dev/node/consensus"
)

// Log is the mempool subsystem's leveled logger, set by the embedding
// program (mirrors the chain store's per-subsystem slog.Backend wiring).
var Log = slog.Disabled

// Entry is a single pooled transaction together with the fee bookkeeping
// the pool needs for ordering and eviction (§4.4 state).
type Entry struct {
	Tx      *consensus.Transaction
	Txid    consensus.Hash256
	Fee     uint64
	Size    uint64
	FeeRate uint64 // milli-rills per byte: fee*1000/size, computed with a u128 intermediate
}

func feeRate(fee, size uint64) uint64 {
	if size == 0 {
		return 0
	}
	x := new(big.Int).SetUint64(fee)
	x.Mul(x, big.NewInt(1000))
	x.Quo(x, new(big.Int).SetUint64(size))
	if !x.IsUint64() {
		return ^uint64(0)
	}
	return x.Uint64()
}

// Config bounds a Pool's capacity (§4.4 state: max_count, max_bytes).
type Config struct {
	MaxCount int
	MaxBytes uint64
}

// Pool is an in-process, single-owner-threaded transaction pool (§4.4):
// callers needing concurrent access wrap it in their own mutex the way the
// chain store expects callers to serialize writers. It holds admitted
// transactions independently of chain state until a confirming block or an
// explicit removal evicts them.
type Pool struct {
	cfg Config

	entries    map[consensus.Hash256]*Entry
	byOutpoint map[consensus.OutPoint]consensus.Hash256
	totalBytes uint64

	// order holds every pooled txid sorted ascending by (fee_rate, txid),
	// kept current on every Insert/Remove so SelectTransactions and
	// eviction never need to re-sort from scratch.
	order []consensus.Hash256
}

// New creates an empty pool bounded by cfg.
func New(cfg Config) *Pool {
	return &Pool{
		cfg:        cfg,
		entries:    make(map[consensus.Hash256]*Entry),
		byOutpoint: make(map[consensus.OutPoint]consensus.Hash256),
	}
}

func (p *Pool) less(a, b consensus.Hash256) bool {
	ea, eb := p.entries[a], p.entries[b]
	if ea.FeeRate != eb.FeeRate {
		return ea.FeeRate < eb.FeeRate
	}
	return lessHash(a, b)
}

func lessHash(a, b consensus.Hash256) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func (p *Pool) insertOrdered(txid consensus.Hash256) {
	i := sort.Search(len(p.order), func(i int) bool { return p.less(txid, p.order[i]) })
	p.order = append(p.order, consensus.Hash256{})
	copy(p.order[i+1:], p.order[i:])
	p.order[i] = txid
}

func (p *Pool) removeOrdered(txid consensus.Hash256) {
	for i, id := range p.order {
		if id == txid {
			p.order = append(p.order[:i], p.order[i+1:]...)
			return
		}
	}
}

// Count returns the number of pooled transactions.
func (p *Pool) Count() int { return len(p.entries) }

// Bytes returns the total serialized size of every pooled transaction.
func (p *Pool) Bytes() uint64 { return p.totalBytes }

// Get returns the pooled entry for txid, if present.
func (p *Pool) Get(txid consensus.Hash256) (*Entry, bool) {
	e, ok := p.entries[txid]
	return e, ok
}

// Insert admits tx into the pool with the given fee, computed by the caller
// from contextual validation against chain state (§4.4 insert). fee is a
// trusted input: Insert does not re-derive it from a UTXO lookup, matching
// the pool's role as a store independent of chain state. size is the
// length of tx's EncodeTx serialization.
func (p *Pool) Insert(tx *consensus.Transaction, fee uint64) (consensus.Hash256, error) {
	txid := consensus.TxID(tx)

	if _, exists := p.entries[txid]; exists {
		return txid, poolErr(ErrAlreadyExists, "")
	}
	for _, in := range tx.Inputs {
		if _, conflict := p.byOutpoint[in.Prev]; conflict {
			return txid, poolErr(ErrConflict, "")
		}
	}
	if fee < consensus.MinTxFeeRills {
		return txid, poolErr(ErrBelowMinFee, "")
	}

	size := uint64(len(consensus.EncodeTx(tx)))
	entry := &Entry{Tx: tx, Txid: txid, Fee: fee, Size: size, FeeRate: feeRate(fee, size)}

	atCapacity := (p.cfg.MaxCount > 0 && len(p.entries) >= p.cfg.MaxCount) ||
		(p.cfg.MaxBytes > 0 && p.totalBytes+size > p.cfg.MaxBytes)
	if atCapacity {
		if len(p.order) == 0 {
			return txid, poolErr(ErrPoolFull, "")
		}
		lowest := p.entries[p.order[0]]
		if entry.FeeRate <= lowest.FeeRate {
			return txid, poolErr(ErrPoolFull, "")
		}
		p.removeLocked(lowest.Txid)
	}

	p.entries[txid] = entry
	for _, in := range tx.Inputs {
		p.byOutpoint[in.Prev] = txid
	}
	p.insertOrdered(txid)
	p.totalBytes += size

	Log.Debugf("mempool: inserted %s fee=%d size=%d rate=%d", txid, fee, size, entry.FeeRate)
	return txid, nil
}

// Remove evicts txid and all its index entries. A no-op if txid isn't
// pooled.
func (p *Pool) Remove(txid consensus.Hash256) {
	p.removeLocked(txid)
}

func (p *Pool) removeLocked(txid consensus.Hash256) {
	entry, ok := p.entries[txid]
	if !ok {
		return
	}
	for _, in := range entry.Tx.Inputs {
		if owner, ok := p.byOutpoint[in.Prev]; ok && owner == txid {
			delete(p.byOutpoint, in.Prev)
		}
	}
	p.removeOrdered(txid)
	delete(p.entries, txid)
	p.totalBytes -= entry.Size
}

// SelectTransactions returns pooled transactions in descending fee-rate
// order (ties broken by ascending txid), stopping at the first entry whose
// addition would exceed maxBytes (§4.4 select_transactions).
func (p *Pool) SelectTransactions(maxBytes uint64) []*Entry {
	out := make([]*Entry, 0, len(p.order))
	var used uint64
	for i := len(p.order) - 1; i >= 0; i-- {
		entry := p.entries[p.order[i]]
		if used+entry.Size > maxBytes {
			break
		}
		used += entry.Size
		out = append(out, entry)
	}
	return out
}

// RemoveConfirmedBlock evicts every pooled transaction that appears in
// block and every pooled transaction that now conflicts with it by
// outpoint (§4.4 remove_confirmed_block). Coinbases never appear in the
// pool and are skipped.
func (p *Pool) RemoveConfirmedBlock(block *consensus.Block) {
	for i := range block.Transactions {
		txp := &block.Transactions[i]
		if txp.IsCoinbase() {
			continue
		}
		txid := consensus.TxID(txp)
		if _, ok := p.entries[txid]; ok {
			p.removeLocked(txid)
		}
		for _, in := range txp.Inputs {
			if owner, ok := p.byOutpoint[in.Prev]; ok {
				p.removeLocked(owner)
			}
		}
	}
}
