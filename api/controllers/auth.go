package controllers

import (
	"net/http"

	"github.com/angelmondragon/postoko-backend/api/responses"
	"github.com/angelmondragon/postoko-backend/api/validators"
	"github.com/angelmondragon/postoko-backend/internal/auth"
	pkgAuth "github.com/angelmondragon/postoko-backend/pkg/auth"
	"github.com/angelmondragon/postoko-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/postoko-backend/pkg/errors"
	"github.com/angelmondragon/postoko-backend/pkg/logger"
)

// AuthRegister creates a user account. It does not start a session.
func AuthRegister(reg auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := reg.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Register successful", user)
	}
}

// AuthLogin verifies credentials and sets the session cookie.
func AuthLogin(svc auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, pkgAuth.SessionCookie(cfg.Cookie, cfg.JWT, result.Token, pkgAuth.RequestIsSecure(r)))
		if logg != nil {
			logg.Info(logg.WithUserID(r.Context(), result.UserID.String()), "auth.login")
		}
		responses.WriteSuccess(w, "Login Successful", result)
	}
}

// AuthLogout expires the session cookie. It succeeds with or without a session.
func AuthLogout(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, pkgAuth.ClearSessionCookie(cfg.Cookie, pkgAuth.RequestIsSecure(r)))
		responses.WriteSuccess(w, "Logout successful", nil)
	}
}
