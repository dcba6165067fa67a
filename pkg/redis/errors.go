package redis

import "errors"

var (
	ErrNoURL       = errors.New("redis: no connection URL configured")
	ErrInvalidURL  = errors.New("redis: cannot parse connection URL")
	ErrNotReady    = errors.New("redis: server did not answer PING before the connect deadline")
	ErrUnreachable = errors.New("redis: health ping failed")
)
