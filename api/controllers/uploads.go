package controllers

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/angelmondragon/mediagallery-backend/api/responses"
	pkgerrors "github.com/angelmondragon/mediagallery-backend/pkg/errors"
	"github.com/angelmondragon/mediagallery-backend/pkg/logger"
	"github.com/angelmondragon/mediagallery-backend/pkg/storage"
	"github.com/go-chi/chi/v5"
)

// ServeUpload streams a stored upload. Seekable backends get range support.
func ServeUpload(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "storage unavailable"))
			return
		}

		name, err := url.PathUnescape(chi.URLParam(r, "*"))
		if err != nil {
			name = ""
		}
		key := path.Base(path.Clean("/" + name))
		if key == "/" || key == "." || strings.HasPrefix(key, ".") {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "file not found"))
			return
		}

		rc, err := store.GetObject(ctx, key)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "file not found"))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read upload"))
			return
		}
		defer rc.Close()

		contentType := mime.TypeByExtension(strings.ToLower(path.Ext(key)))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=86400")

		if seeker, ok := rc.(io.ReadSeeker); ok {
			http.ServeContent(w, r, key, time.Time{}, seeker)
			return
		}
		if _, err := io.Copy(w, rc); err != nil && logg != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "upload.stream_failed")
		}
	}
}
