package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/postoko-backend/pkg/errors"
)

// multipartOverhead covers the non-file parts and boundaries of a form.
const multipartOverhead = 1 << 20

// FormFile is an optional file part. Close releases the underlying temp file.
type FormFile struct {
	Filename string
	File     multipart.File
}

func (f *FormFile) Close() error {
	if f == nil || f.File == nil {
		return nil
	}
	return f.File.Close()
}

// ParseMultipartForm parses a multipart body no larger than maxFileBytes plus
// a small allowance for the text fields.
func ParseMultipartForm(w http.ResponseWriter, r *http.Request, maxFileBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxFileBytes); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large")
		case errors.Is(err, http.ErrNotMultipart):
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "expected multipart/form-data")
		default:
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
		}
	}
	return nil
}

// OptionalFile returns the named file part, or nil when the form has none.
func OptionalFile(r *http.Request, field string) (*FormFile, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field+" upload")
	}
	return &FormFile{Filename: header.Filename, File: file}, nil
}

// FormValue returns a text field from a parsed multipart form.
func FormValue(r *http.Request, field string) string {
	if r.MultipartForm == nil {
		return r.FormValue(field)
	}
	if values := r.MultipartForm.Value[field]; len(values) > 0 {
		return values[0]
	}
	return ""
}
