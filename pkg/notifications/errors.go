package notifications

import "errors"

var (
	// ErrNotificationNotFound is returned when a notification does not exist for the user.
	ErrNotificationNotFound = errors.New("notification not found")
	ErrMissingID            = errors.New("notification ID is required")
	ErrMissingUserID        = errors.New("user ID is required")
	ErrMissingTitle         = errors.New("notification title is required")
	ErrInvalidPriority      = errors.New("invalid notification priority")
	ErrDeliveryFailed       = errors.New("notification delivery failed")
)
