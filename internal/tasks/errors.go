package tasks

import (
	"errors"
	"fmt"
)

// ErrNoHeader is wrapped by [SchemaError] when the input has no header row.
var ErrNoHeader = errors.New("missing header")

// DecodeError means the uploaded bytes could not be read as a table at all. It fails the whole batch.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failed: %s: %v", e.Reason, e.Err)
	}
	return "decode failed: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// SchemaError means the table is unusable as a whole, e.g. there is no header row. It fails the whole batch.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string { return "invalid table: " + e.Err.Error() }

func (e *SchemaError) Unwrap() error { return e.Err }

// RowError is a failure confined to one row. The batch records it and moves on.
type RowError struct {
	Row    int
	Reason string
	Err    error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %s", e.Row, e.Detail()) }

// Detail is the message without the row prefix, as recorded in a row's outcome.
func (e *RowError) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *RowError) Unwrap() error { return e.Err }

// IsBatchError reports whether err aborts a whole import.
func IsBatchError(err error) bool {
	var de *DecodeError
	var se *SchemaError
	return errors.As(err, &de) || errors.As(err, &se)
}
