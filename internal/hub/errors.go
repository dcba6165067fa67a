package hub

import "errors"

var (
	ErrMissingJWTSecret = errors.New("hub: HUB_JWT_SECRET is required")
	ErrForbidden        = errors.New("hub: admin role required")
	ErrInvalidBody      = errors.New("hub: invalid request body")
	ErrInvalidQuery     = errors.New("hub: invalid query parameter")
)
