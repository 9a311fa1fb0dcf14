package models

import (
	"errors"
	"fmt"
)

// ErrNotImplemented marks paths that are deliberately unsupported. Returning
// it is preferred over returning a wrong answer.
var ErrNotImplemented = errors.New("not implemented")

// IntegrityError reports a required field that is null or malformed in a way
// the pricing engine cannot process. It identifies the offending entity so
// the bad row can be found in the source database.
type IntegrityError struct {
	Entity string // entity kind, e.g. "discount"
	Key    string // uuid or primary key of the offending row, when known
	Field  string
	Reason string
}

func (e *IntegrityError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("data integrity: %s %s: field %s: %s",
			e.Entity, e.Key, e.Field, e.Reason)
	}
	return fmt.Sprintf("data integrity: %s: field %s: %s",
		e.Entity, e.Field, e.Reason)
}
