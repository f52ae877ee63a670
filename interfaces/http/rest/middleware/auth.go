package middleware

import (
	"errors"
	"net/http"
	"strings"

	"journeymap/pkg/auth"
	pkgerrors "journeymap/pkg/errors"

	"go.uber.org/zap"
)

// AnonymousUserID owns every journey when authentication is disabled
const AnonymousUserID = "anonymous"

// AuthConfig configures the authentication middleware
type AuthConfig struct {
	// Validator checks bearer tokens. Nil disables authentication.
	Validator *auth.JWTValidator
	// TrustGateway accepts identities that the Lambda adapter copied from
	// the API Gateway JWT authorizer into X-User-* headers.
	TrustGateway bool
	Errors       *pkgerrors.ErrorHandler
	Logger       *zap.Logger
}

// Authenticate resolves the caller and stores it with auth.SetUserInContext
func Authenticate(cfg AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveUser(cfg, r)
			if err != nil {
				cfg.Logger.Debug("Authentication failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				cfg.Errors.Handle(w, r, pkgerrors.NewUnauthorizedError(unauthorizedMessage(err)))
				return
			}

			ctx := auth.SetUserInContext(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveUser(cfg AuthConfig, r *http.Request) (*auth.UserContext, error) {
	if cfg.TrustGateway && r.Header.Get("X-API-Gateway-Authorized") == "true" {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			return nil, errors.New("missing user context from API Gateway")
		}
		roles := []string{"authenticated"}
		if v := r.Header.Get("X-User-Roles"); v != "" {
			roles = strings.Split(v, ",")
		}
		return &auth.UserContext{UserID: userID, Email: r.Header.Get("X-User-Email"), Roles: roles}, nil
	}

	if cfg.Validator == nil {
		return &auth.UserContext{UserID: AnonymousUserID, Roles: []string{"anonymous"}}, nil
	}

	token := extractToken(r)
	if token == "" {
		return nil, auth.ErrMissingToken
	}
	claims, err := cfg.Validator.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &auth.UserContext{UserID: claims.UserID, Email: claims.Email, Roles: claims.Roles}, nil
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "Missing authentication token"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "Invalid token signature"
	default:
		return "Invalid token"
	}
}

// extractToken reads the bearer token from the Authorization header or,
// for EventSource clients that cannot set headers, the token query parameter
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
