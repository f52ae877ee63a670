package middleware

import (
	"net/http"

	"journeymap/pkg/auth"
	pkgerrors "journeymap/pkg/errors"

	"go.uber.org/zap"
)

// RateLimit limits requests per authenticated user. It must run after
// Authenticate.
func RateLimit(limiter auth.RateLimiter, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.GetUserFromContext(r.Context())
			if err != nil {
				errs.Handle(w, r, pkgerrors.NewUnauthorizedError("Unauthorized"))
				return
			}

			allowed, err := limiter.Allow(r.Context(), user.UserID)
			if err != nil {
				logger.Error("Rate limiter error", zap.Error(err))
				errs.Handle(w, r, err)
				return
			}
			if !allowed {
				logger.Info("Rate limit exceeded",
					zap.String("userID", user.UserID),
					zap.String("path", r.URL.Path),
				)
				errs.Handle(w, r, pkgerrors.ErrRateLimitExceeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
