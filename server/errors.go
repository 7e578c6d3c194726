package server

import "errors"

// ErrServiceRequired is returned when a notes service is not provided.
var ErrServiceRequired = errors.New("notes service required")
