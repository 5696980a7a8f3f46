package mempool

import "fmt"

// ErrorCode enumerates MempoolError's fixed taxonomy (§7).
type ErrorCode string

const (
	ErrAlreadyExists ErrorCode = "AlreadyExists"
	ErrConflict      ErrorCode = "Conflict"
	ErrBelowMinFee   ErrorCode = "BelowMinFee"
	ErrPoolFull      ErrorCode = "PoolFull"
	ErrInternal      ErrorCode = "Internal"
)

// MempoolError is the typed failure returned by Pool.Insert.
type MempoolError struct {
	Code ErrorCode
	Msg  string
}

func (e *MempoolError) Error() string {
	if e == nil {
		return "<nil MempoolError>"
	}
	if e.Msg == "" {
		return "mempool: " + string(e.Code)
	}
	return fmt.Sprintf("mempool: %s: %s", e.Code, e.Msg)
}

func poolErr(code ErrorCode, msg string) *MempoolError {
	return &MempoolError{Code: code, Msg: msg}
}
