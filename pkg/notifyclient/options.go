package notifyclient

import (
	"log/slog"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(c *Client) { c.cfg = cfg }
}

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithCredentials sets the durable token store read by Init.
func WithCredentials(store CredentialStore) Option {
	return func(c *Client) {
		if store != nil {
			c.creds = store
		}
	}
}

// WithAPI sets the REST backend. Without it the client talks to
// Config.ServerURL through HTTPAPI.
func WithAPI(api API) Option {
	return func(c *Client) {
		if api != nil {
			c.api = api
		}
	}
}

// WithDialer sets the transport factory used by Init.
func WithDialer(d Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithPresenter sets where toasts go.
func WithPresenter(p Presenter) Option {
	return func(c *Client) {
		if p != nil {
			c.presenter = p
		}
	}
}

// WithClientClock overrides the time source used for placeholder data.
func WithClientClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}
