package repositories

import "errors"

// ErrNotFound is returned by all repositories when the requested record does
// not exist. Implementations wrap it with context; callers test with errors.Is.
var ErrNotFound = errors.New("record not found")
