package repositories

import "errors"

// ErrNotFound is returned when an identifier does not resolve to an existing,
// non-soft-deleted record. Callers test with errors.Is.
var ErrNotFound = errors.New("record not found")
