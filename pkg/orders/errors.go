package orders

import (
	"errors"
	"fmt"
)

var (
	ErrStoreUnavailable = errors.New("order store unavailable")
	ErrMalformedRecord  = errors.New("malformed order record")
	ErrPartialWrite     = errors.New("order header written but line items failed")
	ErrNotFound         = errors.New("order not found")
	ErrNoItems          = errors.New("order must contain at least one item")
	ErrAuditUnavailable = errors.New("audit trail not configured")
)

// ErrorKind is the error classification kept in the cache state.
type ErrorKind string

const (
	KindStoreUnavailable ErrorKind = "store_unavailable"
	KindMalformedRecord  ErrorKind = "malformed_record"
	KindPartialWrite     ErrorKind = "partial_write"
	KindNotFound         ErrorKind = "not_found"
)

// MalformedRecordError reports a record whose required identity is missing.
type MalformedRecordError struct {
	Field string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed order record: missing %s", e.Field)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// KindOf classifies err. Anything unrecognised is treated as the store being
// unavailable.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrMalformedRecord):
		return KindMalformedRecord
	case errors.Is(err, ErrPartialWrite):
		return KindPartialWrite
	default:
		return KindStoreUnavailable
	}
}
