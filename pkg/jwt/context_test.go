package jwt_test

import (
	"context"
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/jwt"
)

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, ok := jwt.GetToken(ctx)
	assert.False(t, ok)
	_, ok = jwt.GetClaims(ctx)
	assert.False(t, ok)
	_, ok = jwt.UserID(ctx)
	assert.False(t, ok)

	ctx = jwt.SetToken(ctx, "raw-token")
	ctx = jwt.SetClaims(ctx, &jwt.Claims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "user-7"}})

	token, ok := jwt.GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "raw-token", token)

	claims, ok := jwt.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-7", claims.Subject)

	userID, ok := jwt.UserID(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-7", userID)
}

func TestContextHelpers_NilClaims(t *testing.T) {
	t.Parallel()

	ctx := jwt.SetClaims(context.Background(), nil)
	_, ok := jwt.GetClaims(ctx)
	assert.False(t, ok)
	_, ok = jwt.UserID(ctx)
	assert.False(t, ok)
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := jwt.LoggerExtractor()
	_, ok := extract(context.Background())
	assert.False(t, ok)

	ctx := jwt.SetClaims(context.Background(), &jwt.Claims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "user-7"}})
	attr, ok := extract(ctx)
	require.True(t, ok)
	assert.Equal(t, "user_id", attr.Key)
	assert.Equal(t, "user-7", attr.Value.String())
}
