package repository

import (
	"errors"

	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// newID returns a time-sortable unique id
func newID() string {
	return ulid.Make().String()
}
