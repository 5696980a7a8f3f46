package consensus

import (
	"encoding/binary"
	"fmt"
)

// writer accumulates a bincode-compatible byte stream: fixed-width little
// endian integers, raw fixed-size arrays, and u64-length-prefixed sequences.
// This mirrors the teacher's hand-rolled byte-level encoder (consensus/wire.go,
// consensus/encode.go) adapted to RillCoin's bincode contract (§4.7) instead
// of the teacher's CompactSize varints — no Go library speaks Rust's bincode,
// so both the teacher and RillCoin hand-roll the wire codec.
type writer struct {
	buf []byte
}

func newWriter(sizeHint int) *writer {
	return &writer{buf: make([]byte, 0, sizeHint)}
}

func (w *writer) bytes() []byte { return w.buf }

func (w *writer) putU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *writer) putU64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *writer) putRaw(b []byte) {
	w.buf = append(w.buf, b...)
}

// putSeqLen writes the bincode-style u64 LE length prefix for a sequence of
// n elements.
func (w *writer) putSeqLen(n int) {
	w.putU64(uint64(n)) // #nosec G115 -- n is always a slice length, non-negative and far below 2^64.
}

// reader consumes a bincode-compatible byte stream produced by writer.
type reader struct {
	b   []byte
	pos int
}

func newReader(b []byte) *reader {
	return &reader{b: b}
}

func (r *reader) remaining() int {
	if r.pos >= len(r.b) {
		return 0
	}
	return len(r.b) - r.pos
}

func (r *reader) takeExact(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("bincode: truncated, need %d have %d", n, r.remaining())
	}
	start := r.pos
	r.pos += n
	return r.b[start:r.pos], nil
}

func (r *reader) getU32() (uint32, error) {
	b, err := r.takeExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) getU64() (uint64, error) {
	b, err := r.takeExact(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) getHash256() (Hash256, error) {
	b, err := r.takeExact(32)
	if err != nil {
		return Hash256{}, err
	}
	var h Hash256
	copy(h[:], b)
	return h, nil
}

// getSeqLen reads a u64 LE sequence length and bounds it against a maximum
// to avoid a hostile length field forcing an enormous allocation before the
// caller has validated the overall message size.
func (r *reader) getSeqLen(max uint64) (uint64, error) {
	n, err := r.getU64()
	if err != nil {
		return 0, err
	}
	if n > max {
		return 0, fmt.Errorf("bincode: sequence length %d exceeds bound %d", n, max)
	}
	return n, nil
}

func (r *reader) atEnd() bool { return r.pos == len(r.b) }
