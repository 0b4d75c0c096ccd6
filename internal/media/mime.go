package media

import (
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/angelmondragon/postoko-backend/pkg/errors"
)

var imageExtensions = map[string][]string{
	"image/png":  {".png"},
	"image/jpeg": {".jpg", ".jpeg"},
	"image/webp": {".webp"},
	"image/gif":  {".gif"},
}

// DetectImage sniffs data and returns its mime type and the canonical extension.
// Anything other than png, jpeg, webp or gif is a validation error.
func DetectImage(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "Product image is empty")
	}
	detected := mimetype.Detect(data)
	for mt := range imageExtensions {
		if detected.Is(mt) {
			return mt, imageExtensions[mt][0], nil
		}
	}
	return "", "", pkgerrors.New(pkgerrors.CodeValidation, "Product image must be one of "+allowedList()).
		WithDetails(map[string]any{"image": detected.String()})
}

// extensionFor keeps the uploaded extension when it agrees with the sniffed type.
func extensionFor(original, mimeType, fallback string) string {
	ext := strings.ToLower(strings.TrimSpace(original))
	for _, allowed := range imageExtensions[mimeType] {
		if ext == allowed {
			return ext
		}
	}
	return fallback
}

func allowedList() string {
	names := make([]string, 0, len(imageExtensions))
	for mt := range imageExtensions {
		names = append(names, strings.TrimPrefix(mt, "image/"))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
