package notifyclient

import "time"

// Config holds client settings, loadable with config.Load.
type Config struct {
	ServerURL         string        `env:"NOTIFY_SERVER_URL" envDefault:"http://localhost:8080"`
	ReconnectAttempts int           `env:"NOTIFY_RECONNECT_ATTEMPTS" envDefault:"5"`
	ReconnectDelay    time.Duration `env:"NOTIFY_RECONNECT_DELAY" envDefault:"3s"`
	ConnectTimeout    time.Duration `env:"NOTIFY_CONNECT_TIMEOUT" envDefault:"10s"`
	ToastDuration     time.Duration `env:"NOTIFY_TOAST_DURATION" envDefault:"5s"`
	RequestTimeout    time.Duration `env:"NOTIFY_REQUEST_TIMEOUT" envDefault:"10s"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		ServerURL:         "http://localhost:8080",
		ReconnectAttempts: 5,
		ReconnectDelay:    3 * time.Second,
		ConnectTimeout:    10 * time.Second,
		ToastDuration:     5 * time.Second,
		RequestTimeout:    10 * time.Second,
	}
}

func (c Config) transportOptions() TransportOptions {
	return TransportOptions{
		ReconnectAttempts: c.ReconnectAttempts,
		ReconnectDelay:    c.ReconnectDelay,
		Timeout:           c.ConnectTimeout,
	}
}
