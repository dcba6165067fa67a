package credentials

import "errors"

var (
	ErrEmptyPath  = errors.New("credentials: database path cannot be empty")
	ErrEmptyToken = errors.New("credentials: token cannot be empty")
	ErrOpenStore  = errors.New("credentials: failed to open store")
	ErrClosed     = errors.New("credentials: store is closed")
)
