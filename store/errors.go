package store

import "fmt"

// ChainStateErrorCode enumerates ChainStateError's fixed taxonomy (§7).
type ChainStateErrorCode string

const (
	ErrHeightMismatch  ChainStateErrorCode = "HeightMismatch"
	ErrDuplicateBlock  ChainStateErrorCode = "DuplicateBlock"
	ErrEmptyChain      ChainStateErrorCode = "EmptyChain"
	ErrUndoDataMissing ChainStateErrorCode = "UndoDataMissing"
	ErrBlockNotFound   ChainStateErrorCode = "BlockNotFound"
)

// ChainStateError is the typed failure returned by the chain store's
// mutating operations. A connect or disconnect that fails with this error
// leaves the store exactly at its pre-call state (§4.5 failure model).
type ChainStateError struct {
	Code ChainStateErrorCode
	Msg  string
}

func (e *ChainStateError) Error() string {
	if e == nil {
		return "<nil ChainStateError>"
	}
	if e.Msg == "" {
		return "chainstate: " + string(e.Code)
	}
	return fmt.Sprintf("chainstate: %s: %s", e.Code, e.Msg)
}

func chainErr(code ChainStateErrorCode, msg string) *ChainStateError {
	return &ChainStateError{Code: code, Msg: msg}
}
