package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/postoko-backend/api/responses"
	"github.com/angelmondragon/postoko-backend/api/validators"
	"github.com/angelmondragon/postoko-backend/internal/media"
	product "github.com/angelmondragon/postoko-backend/internal/products"
	pkgerrors "github.com/angelmondragon/postoko-backend/pkg/errors"
	"github.com/angelmondragon/postoko-backend/pkg/logger"
)

const (
	productImageField     = "image"
	productDescriptionMax = 2000
)

func ProductList(svc product.Service, trustProxy bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		rows, err := svc.List(r.Context(), media.BaseURLFromRequest(r, trustProxy))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(rows) == 0 {
			responses.WriteSuccess(w, "No product yet", rows)
			return
		}
		responses.WriteSuccess(w, "Get all products", rows)
	}
}

func ProductGet(svc product.Service, trustProxy bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		row, err := svc.Get(r.Context(), chi.URLParam(r, "id"), media.BaseURLFromRequest(r, trustProxy))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Get product by id", row)
	}
}

// ProductCreate accepts multipart/form-data with an image part.
func ProductCreate(svc product.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		form, file, err := readProductForm(w, r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer file.Close()

		row, err := svc.Create(r.Context(), form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Product created", row)
	}
}

// ProductUpdate accepts multipart/form-data; the image part is optional.
func ProductUpdate(svc product.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		form, file, err := readProductForm(w, r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer file.Close()

		row, err := svc.Update(r.Context(), chi.URLParam(r, "id"), form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Product updated", row)
	}
}

func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		row, err := svc.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Product deleted", row)
	}
}

// readProductForm returns the raw fields and the optional image part. The
// returned file is safe to Close when nil.
func readProductForm(w http.ResponseWriter, r *http.Request, maxUploadBytes int64) (product.Form, *validators.FormFile, error) {
	if err := validators.ParseMultipartForm(w, r, maxUploadBytes); err != nil {
		return product.Form{}, nil, err
	}
	file, err := validators.OptionalFile(r, productImageField)
	if err != nil {
		return product.Form{}, nil, err
	}

	form := product.Form{
		InventoryID: validators.FormValue(r, "inventoryId"),
		Name:        validators.FormValue(r, "name"),
		Description: validators.SanitizeString(validators.FormValue(r, "description"), productDescriptionMax),
		Price:       validators.FormValue(r, "price"),
		Stock:       validators.FormValue(r, "stock"),
	}
	if file != nil {
		form.Image = &media.Upload{Filename: file.Filename, Reader: file.File}
	}
	return form, file, nil
}
