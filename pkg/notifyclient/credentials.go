package notifyclient

import "context"

// CredentialStore is the durable home of the bearer token. Token returns
// ErrNoCredential (or an empty string) when nobody is logged in.
type CredentialStore interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

type noCredentials struct{}

func (noCredentials) Token(context.Context) (string, error) { return "", ErrNoCredential }
func (noCredentials) Clear(context.Context) error           { return nil }

// StaticToken is a read-only CredentialStore for a token known up front.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", ErrNoCredential
	}
	return string(t), nil
}

func (StaticToken) Clear(context.Context) error { return nil }
