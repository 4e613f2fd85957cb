package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/platform/config"
	"github.com/gestionale-jos/jos_backend/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// oauthStateBytes is the entropy of the CSRF state; it encodes to 32 characters.
const oauthStateBytes = 24

// tokenService issues the access tokens handed to the till frontend.
type tokenService struct {
	BaseService
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service signing with the configured JWT secret.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{
		secret: cfg.JWTSecret,
		issuer: cfg.JWTIssuer,
		ttl:    cfg.JWTExpiryDuration,
		now:    time.Now,
	}
}

// GenerateAccessToken signs a token for user valid for one configured session length.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	if user == nil || user.UserID == "" {
		return "", time.Time{}, errors.New("cannot issue a token without a user")
	}
	expiresAt := s.now().Add(s.ttl)
	token, err := utils.GenerateJWT(user.UserID, s.secret, s.ttl, s.issuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign access token", slog.String("user_id", user.UserID))
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	s.LogDebug(ctx, "Access token issued",
		slog.String("user_id", user.UserID),
		slog.Time("expires_at", expiresAt))
	return token, expiresAt, nil
}

// googleOAuthHandlerService drives the "Accedi con Google" flow. Only the email
// and subject of the ID token are used; accounts must already exist.
type googleOAuthHandlerService struct {
	clientID     string
	oauth2Config *oauth2.Config
}

// NewGoogleOAuthHandlerService creates the Google OAuth service from config.
func NewGoogleOAuthHandlerService(cfg *config.Config) portssvc.GoogleOAuthHandlerSvcFacade {
	return &googleOAuthHandlerService{
		clientID: cfg.GoogleClientID,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (s *googleOAuthHandlerService) GenerateStateString(ctx context.Context) (string, error) {
	state, err := utils.RandomURLToken(oauthStateBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	return state, nil
}

// GetGoogleLoginURL always shows the account chooser, since the shop PC is shared by several operators.
func (s *googleOAuthHandlerService) GetGoogleLoginURL(ctx context.Context, state string) string {
	return s.oauth2Config.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (s *googleOAuthHandlerService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code for token: %w", err)
	}
	return token, nil
}

// ValidateGoogleIDToken checks signature, audience and expiry of a Google ID token.
func (s *googleOAuthHandlerService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	if s.clientID == "" {
		return nil, errors.New("google login is not configured")
	}
	payload, err := idtoken.Validate(ctx, idTokenString, s.clientID)
	if err != nil {
		return nil, fmt.Errorf("google ID token validation failed: %w", err)
	}
	return payload, nil
}
