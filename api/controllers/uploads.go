package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/postoko-backend/api/responses"
	"github.com/angelmondragon/postoko-backend/internal/media"
	pkgerrors "github.com/angelmondragon/postoko-backend/pkg/errors"
	"github.com/angelmondragon/postoko-backend/pkg/logger"
)

// Uploads serves stored images read-only. Anything that is not a regular file
// in the upload directory is answered with a 404 envelope.
func Uploads(store *media.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		notFound := pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Image not found: %s", name))
		if store == nil {
			responses.WriteError(r.Context(), logg, w, notFound)
			return
		}

		f, info, err := store.Open(name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, notFound)
			return
		}
		defer f.Close()

		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}
