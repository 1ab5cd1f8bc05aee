package ledger

import "errors"

// Events and their transactions are immutable once written. There is no
// partial-update path; the only way to correct a mistake is a new,
// compensating event.
var (
	ErrEventImmutable       = errors.New("event updates are not supported")
	ErrTransactionImmutable = errors.New("transaction updates are not supported")
)

// ValidationError reports the first invariant violated by a payload.
// Field is empty for whole-payload errors (empty transaction list,
// unbalanced totals).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
