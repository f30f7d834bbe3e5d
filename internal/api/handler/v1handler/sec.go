package v1handler

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"mailtrust/internal/config"
	"mailtrust/pkg/domain"
	"mailtrust/pkg/logger"
	"mailtrust/pkg/serrors"

	"go.uber.org/zap"
)

type userIDContextKey struct{}

// SecHandlerOptions configures bearer token verification.
type SecHandlerOptions struct {
	// PublicKey is the PEM-encoded RSA public key tokens are verified against.
	PublicKey string
}

// NewSecHandlerOptions constructs SecHandlerOptions from the application config.
func NewSecHandlerOptions(cfg *config.Config) *SecHandlerOptions {
	return &SecHandlerOptions{
		PublicKey: cfg.JWT.PublicKey,
	}
}

// SecHandler verifies RS256 bearer tokens and resolves the calling user.
// The token subject must be the user's UUID.
type SecHandler struct {
	publicKey *rsa.PublicKey
}

// NewSecHandler parses the configured public key and returns a SecHandler.
func NewSecHandler(opts *SecHandlerOptions) (*SecHandler, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return &SecHandler{publicKey: key}, nil
}

// authenticate extracts and verifies the bearer token, returning the user ID
// encoded in its subject.
func (s *SecHandler) authenticate(r *http.Request) (domain.UserID, error) {
	header := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return domain.UserID{}, serrors.With(serrors.ErrUnauthorized, "missing bearer token")
	}

	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return domain.UserID{}, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.UserID{}, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token subject")
	}

	return domain.UserID(userID), nil
}

// Middleware rejects unauthenticated requests and stores the user ID in the
// request context for downstream handlers.
func (s *SecHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.authenticate(r)
		if err != nil {
			respondError(w, r, err)

			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey{}, userID)
		ctx = logger.WithFields(ctx, zap.Stringer("userID", uuid.UUID(userID)))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext returns the authenticated user ID stored by Middleware.
func GetUserIDFromContext(ctx context.Context) domain.UserID {
	userID, _ := ctx.Value(userIDContextKey{}).(domain.UserID)

	return userID
}
