package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/visionhut/optica-backend/api/responses"
	pkgAuth "github.com/visionhut/optica-backend/pkg/auth"
	"github.com/visionhut/optica-backend/pkg/config"
	"github.com/visionhut/optica-backend/pkg/db/models"
	pkgerrors "github.com/visionhut/optica-backend/pkg/errors"
	"github.com/visionhut/optica-backend/pkg/logger"
)

// BlacklistChecker reports whether an access token has been revoked.
type BlacklistChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
	BlacklistKey(token string) string
}

// PrincipalLoader re-checks the token's subject against the user store so a
// deactivated user is cut off before their token expires.
type PrincipalLoader interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, blacklist BlacklistChecker, principals PrincipalLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeAuthRequired, "missing credentials"))
				return
			}

			if blacklist != nil {
				revoked, err := blacklist.Exists(r.Context(), blacklist.BlacklistKey(token))
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeServer, err, "checking token revocation"))
					return
				}
				if revoked {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeTokenRevoked, "token revoked"))
					return
				}
			}

			claims, err := pkgAuth.ParseAccess(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeAuthFailed, err, "invalid token"))
				return
			}

			if principals != nil {
				if _, err := principals.FindActiveByID(r.Context(), claims.UserID); err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUserInactive, "user inactive"))
						return
					}
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeServer, err, "loading user"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxUserCode, claims.UserCode)
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
			ctx = context.WithValue(ctx, ctxStoreID, claims.StoreID.String())
			if len(claims.Permissions) > 0 {
				ctx = context.WithValue(ctx, ctxPermissions, claims.Permissions)
			}

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    claims.UserID.String(),
					"actor_role": string(claims.Role),
					"store_id":   claims.StoreID.String(),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken pulls the raw token out of the Authorization header, accepting
// the value with or without the bearer scheme prefix.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
