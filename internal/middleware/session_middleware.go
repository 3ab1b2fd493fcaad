package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/identity"
	"sokrate-backend-go/internal/models"
	"sokrate-backend-go/internal/session"
)

// SessionCookie carries the client-instance ID that keys the session registry.
const SessionCookie = "sokrate_sid"

const storeKey = "sessionStore"

// TokenVerifier turns an ID token into an identity; satisfied by *identity.FirebaseProvider.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*models.Identity, error)
}

// SessionMiddleware binds every request to its client's session Store.
type SessionMiddleware struct {
	registry *session.Registry
	verifier TokenVerifier
	secure   bool
	maxAge   time.Duration
	logger   *zap.Logger
}

// NewSessionMiddleware creates a SessionMiddleware. maxAge sets the cookie lifetime.
func NewSessionMiddleware(registry *session.Registry, verifier TokenVerifier, secure bool, maxAge time.Duration, logger *zap.Logger) *SessionMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionMiddleware{registry: registry, verifier: verifier, secure: secure, maxAge: maxAge, logger: logger}
}

// Attach resolves the client's Store from the session cookie, issuing a new
// cookie when needed. A bearer token on the request is treated as an
// auth-state report from the identity provider.
func (m *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		store, _ := m.registry.Get(id)
		if store.ID() != id {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, store.ID(), int(m.maxAge.Seconds()), "/", "", m.secure, true)
		}
		SetStore(c, store)

		if token, ok := BearerToken(c); ok {
			m.Report(c.Request.Context(), store, token)
		}
		c.Next()
	}
}

// Report verifies token and feeds the result into store. An empty token means
// the provider reports nobody signed in. A rejected token signs the client out;
// verification failures unrelated to the token leave the session untouched.
func (m *SessionMiddleware) Report(ctx context.Context, store *session.Store, token string) error {
	if token == "" {
		store.Apply(session.SignedOut())
		return nil
	}
	id, err := m.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			store.Apply(session.SignedOut())
		} else {
			m.logger.Warn("Token verification unavailable", zap.String("session_id", store.ID()), zap.Error(err))
		}
		return err
	}
	store.Apply(session.SignedIn(*id))
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// SetStore binds store to the request.
func SetStore(c *gin.Context, store *session.Store) {
	c.Set(storeKey, store)
}

// Store returns the session store attached by Attach, or nil.
func Store(c *gin.Context) *session.Store {
	v, ok := c.Get(storeKey)
	if !ok {
		return nil
	}
	store, _ := v.(*session.Store)
	return store
}

// CurrentSession returns the client's session snapshot. Requests without a
// store count as Unresolved.
func CurrentSession(c *gin.Context) session.Session {
	if store := Store(c); store != nil {
		return store.Current()
	}
	return session.Session{State: session.Unresolved}
}

// RequireIdentity aborts with 401 unless the request's session is Authenticated.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c).Identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
			return
		}
		c.Next()
	}
}
