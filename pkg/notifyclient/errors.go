package notifyclient

import "errors"

var (
	ErrNoCredential         = errors.New("notifyclient: no stored credential")
	ErrNoDialer             = errors.New("notifyclient: no transport dialer configured")
	ErrNoServerURL          = errors.New("notifyclient: server url is empty")
	ErrRequestFailed        = errors.New("notifyclient: request failed")
	ErrUnexpectedStatus     = errors.New("notifyclient: unexpected response status")
	ErrMalformedResponse    = errors.New("notifyclient: malformed response")
	ErrNotificationNotFound = errors.New("notifyclient: notification not found")
	ErrUnauthorized         = errors.New("notifyclient: unauthorized")
)
