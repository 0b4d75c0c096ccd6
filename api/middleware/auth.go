package middleware

import (
	"net/http"

	"github.com/angelmondragon/postoko-backend/api/responses"
	pkgAuth "github.com/angelmondragon/postoko-backend/pkg/auth"
	"github.com/angelmondragon/postoko-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/postoko-backend/pkg/errors"
	"github.com/angelmondragon/postoko-backend/pkg/logger"
)

// Auth validates the session cookie and seeds the request context with the user id.
// Every failure produces the same 401 so callers cannot tell which check failed.
func Auth(jwtCfg config.JWTConfig, cookieCfg config.CookieConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := pkgAuth.TokenFromRequest(cookieCfg, r)
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session cookie"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(jwtCfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session token"))
				return
			}

			ctx := withUserID(r.Context(), claims.UserID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
