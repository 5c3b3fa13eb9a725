package ledger

import "fmt"

// InputError reports a caller mistake: unknown ids, bad selections, or an
// operation aimed at an entry in the wrong state.
type InputError struct {
	Msg string
}

func (e InputError) Error() string {
	return e.Msg
}

func inputf(format string, args ...any) InputError {
	return InputError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError reports that the live working set no longer satisfies the
// preconditions an operation was built on, e.g. a suggestion that went stale
// while awaiting review. The failed operation performs no mutation.
type ConflictError struct {
	TransactionID string
	ReceiptID     string
	Reason        string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s/%s: %s", e.TransactionID, e.ReceiptID, e.Reason)
}
