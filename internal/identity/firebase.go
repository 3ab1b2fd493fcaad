// Package identity adapts Firebase Authentication to the session layer.
package identity

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/models"
)

// ErrInvalidToken is returned when an ID token is malformed, expired or revoked.
// Other verification failures are returned as they are.
var ErrInvalidToken = errors.New("invalid or expired authentication token")

// AuthClient is the subset of *auth.Client used here.
type AuthClient interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseProvider verifies ID tokens and revokes sessions through Firebase Auth.
type FirebaseProvider struct {
	client AuthClient
	logger *zap.Logger
}

// NewFirebaseProvider creates a FirebaseProvider.
func NewFirebaseProvider(client AuthClient, logger *zap.Logger) (*FirebaseProvider, error) {
	if client == nil {
		return nil, errors.New("firebase auth client is not initialized for FirebaseProvider")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirebaseProvider{client: client, logger: logger}, nil
}

// Verify checks idToken and returns the identity it carries.
func (p *FirebaseProvider) Verify(ctx context.Context, idToken string) (*models.Identity, error) {
	if idToken == "" {
		return nil, ErrInvalidToken
	}
	token, err := p.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !rejected(err) {
			return nil, fmt.Errorf("verify ID token: %w", err)
		}
		p.logger.Debug("ID token rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identityFromToken(token), nil
}

// SignOut revokes every refresh token issued to identity.
func (p *FirebaseProvider) SignOut(ctx context.Context, identity models.Identity) error {
	if err := p.client.RevokeRefreshTokens(ctx, identity.ID); err != nil {
		return fmt.Errorf("revoke refresh tokens for '%s': %w", identity.ID, err)
	}
	p.logger.Info("Refresh tokens revoked", zap.String("user_id", identity.ID))
	return nil
}

// rejected reports whether err is Firebase refusing the token itself, as
// opposed to failing to reach its key or user endpoints.
func rejected(err error) bool {
	return auth.IsIDTokenInvalid(err) ||
		auth.IsIDTokenExpired(err) ||
		auth.IsIDTokenRevoked(err) ||
		auth.IsUserDisabled(err) ||
		auth.IsUserNotFound(err)
}

func identityFromToken(token *auth.Token) *models.Identity {
	id := &models.Identity{ID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.DisplayName = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		id.PhotoURL = picture
	}
	return id
}
