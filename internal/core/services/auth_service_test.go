package services_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/core/services"
	"github.com/gestionale-jos/jos_backend/internal/platform/config"
	"github.com/gestionale-jos/jos_backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "auth-test-secret",
		JWTIssuer:          "jos-test",
		JWTExpiryDuration:  2 * time.Hour,
		GoogleClientID:     "client-id.apps.googleusercontent.com",
		GoogleClientSecret: "shh",
		GoogleRedirectURL:  "http://localhost:5173/auth/google/callback",
	}
}

func TestTokenService_GenerateAccessToken(t *testing.T) {
	svc := services.NewTokenService(authConfig())

	token, expiresAt, err := svc.GenerateAccessToken(context.Background(), &domain.User{UserID: "user-42"})
	require.NoError(t, err)

	claims, err := utils.ParseAndValidateJWT(token, "auth-test-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)
	assert.Equal(t, "jos-test", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expiresAt, time.Minute)
}

func TestTokenService_RequiresUser(t *testing.T) {
	svc := services.NewTokenService(authConfig())

	_, _, err := svc.GenerateAccessToken(context.Background(), &domain.User{})

	assert.Error(t, err)
}

func TestGoogleOAuth_LoginURL(t *testing.T) {
	svc := services.NewGoogleOAuthHandlerService(authConfig())
	ctx := context.Background()

	state, err := svc.GenerateStateString(ctx)
	require.NoError(t, err)
	assert.Len(t, state, 32)

	u, err := url.Parse(svc.GetGoogleLoginURL(ctx, state))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, "client-id.apps.googleusercontent.com", q.Get("client_id"))
	assert.Equal(t, "select_account", q.Get("prompt"))
	assert.Equal(t, "openid email", q.Get("scope"))
}

func TestGoogleOAuth_ValidateWithoutClientID(t *testing.T) {
	cfg := authConfig()
	cfg.GoogleClientID = ""
	svc := services.NewGoogleOAuthHandlerService(cfg)

	_, err := svc.ValidateGoogleIDToken(context.Background(), "whatever")

	assert.ErrorContains(t, err, "not configured")
}
