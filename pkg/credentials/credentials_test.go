package credentials_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/credentials"
	"github.com/dmitrymomot/storefront/pkg/notifyclient"
)

type tokenStore interface {
	notifyclient.CredentialStore
	SetToken(ctx context.Context, token string) error
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) tokenStore{
		"sqlite": func(t *testing.T) tokenStore {
			s, err := credentials.NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "creds.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"memory": func(*testing.T) tokenStore { return credentials.NewMemoryStore("") },
	}

	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := build(t)

			_, err := s.Token(ctx)
			assert.ErrorIs(t, err, notifyclient.ErrNoCredential)

			assert.ErrorIs(t, s.SetToken(ctx, ""), credentials.ErrEmptyToken)

			require.NoError(t, s.SetToken(ctx, "first"))
			require.NoError(t, s.SetToken(ctx, "second"))
			token, err := s.Token(ctx)
			require.NoError(t, err)
			assert.Equal(t, "second", token)

			require.NoError(t, s.Clear(ctx))
			require.NoError(t, s.Clear(ctx))
			_, err = s.Token(ctx)
			assert.ErrorIs(t, err, notifyclient.ErrNoCredential)
		})
	}
}

func TestSQLiteStore_PersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creds.db")

	s, err := credentials.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SetToken(ctx, "durable"))
	require.NoError(t, s.Close())

	s, err = credentials.Open(credentials.Config{Path: path})
	require.NoError(t, err)
	defer s.Close()

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "durable", token)
}

func TestSQLiteStore_Profiles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creds.db")

	staging, err := credentials.NewSQLiteStore(path, credentials.WithProfile("staging"))
	require.NoError(t, err)
	defer staging.Close()
	prod, err := credentials.NewSQLiteStore(path, credentials.WithProfile("prod"))
	require.NoError(t, err)
	defer prod.Close()

	require.NoError(t, staging.SetToken(ctx, "s-token"))
	_, err = prod.Token(ctx)
	assert.ErrorIs(t, err, notifyclient.ErrNoCredential)

	require.NoError(t, prod.SetToken(ctx, "p-token"))
	require.NoError(t, staging.Clear(ctx))

	token, err := prod.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p-token", token)
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	_, err := credentials.NewSQLiteStore("  ")
	assert.ErrorIs(t, err, credentials.ErrEmptyPath)
}

func TestConfig_ResolvedPath(t *testing.T) {
	assert.Equal(t, "/tmp/x.db", credentials.Config{Path: "/tmp/x.db"}.ResolvedPath())
	assert.Equal(t, credentials.DefaultPath(), credentials.Config{}.ResolvedPath())
	assert.Equal(t, "credentials.db", filepath.Base(credentials.DefaultPath()))
}

func TestClientInitWithoutStoredToken(t *testing.T) {
	store := credentials.NewMemoryStore("")
	dialed := false
	c := notifyclient.New(
		notifyclient.WithCredentials(store),
		notifyclient.WithDialer(func(string, notifyclient.TransportOptions) (notifyclient.Transport, error) {
			dialed = true
			return nil, nil
		}),
	)

	require.NoError(t, c.Init(context.Background(), "http://hub.test"))
	assert.False(t, dialed)
	assert.Equal(t, notifyclient.StatusDisconnected, c.Status())
}
