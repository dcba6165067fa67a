package pg_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/pg"
)

func TestErrorClassifiers(t *testing.T) {
	t.Parallel()

	wrappedNoRows := fmt.Errorf("get notification: %w", pgx.ErrNoRows)
	dup := &pgconn.PgError{Code: "23505"}
	other := &pgconn.PgError{Code: "42P01"}

	assert.True(t, pg.IsNotFoundError(wrappedNoRows))
	assert.False(t, pg.IsNotFoundError(nil))
	assert.False(t, pg.IsNotFoundError(errors.New("boom")))

	assert.True(t, pg.IsDuplicateKeyError(fmt.Errorf("insert: %w", dup)))
	assert.False(t, pg.IsDuplicateKeyError(other))
	assert.False(t, pg.IsDuplicateKeyError(nil))
}

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{})
	require.ErrorIs(t, err, pg.ErrEmptyConnectionString)

	_, err = pg.Connect(context.Background(), pg.Config{ConnectionString: "postgres://%zz"})
	require.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}

func TestMigrate_NilFS(t *testing.T) {
	t.Parallel()

	err := pg.Migrate(context.Background(), nil, nil, ".", pg.Config{}, nil)
	require.ErrorIs(t, err, pg.ErrMigrationsNotProvided)
	assert.ErrorIs(t, err, pg.ErrFailedToApplyMigrations)
}
