package validators

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/mediagallery-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
)

// ParseIDParam reads a positive integer route parameter.
func ParseIDParam(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").WithDetails(map[string]any{"field": key})
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a positive integer").WithDetails(map[string]any{"field": key, "value": raw})
	}
	return value, nil
}

// ParseNameParam reads a URL-escaped string route parameter.
func ParseNameParam(r *http.Request, key string) (string, error) {
	raw := chi.URLParam(r, key)
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid path parameter").WithDetails(map[string]any{"field": key})
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}
