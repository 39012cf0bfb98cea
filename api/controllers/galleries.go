package controllers

import (
	"net/http"

	"github.com/angelmondragon/mediagallery-backend/api/responses"
	"github.com/angelmondragon/mediagallery-backend/api/validators"
	"github.com/angelmondragon/mediagallery-backend/internal/media"
	"github.com/angelmondragon/mediagallery-backend/pkg/logger"
)

func ListGalleries(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		names, err := svc.ListGalleries(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, names)
	}
}

// GalleryOverview returns every gallery with its members plus the
// ungrouped bucket.
func GalleryOverview(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		groups, err := svc.GalleryOverview(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}

func ListGalleryMedia(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		name, err := validators.ParseNameParam(r, "galleryName")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		assets, err := svc.ListByGallery(r.Context(), name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assets)
	}
}

// ClearGallery detaches every member from the gallery. Partial failures
// answer 503 with the per-item results as details.
func ClearGallery(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		name, err := validators.ParseNameParam(r, "galleryName")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ClearGallery(r.Context(), name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func RenameGallery(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		name, err := validators.ParseNameParam(r, "galleryName")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload galleryRenameRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.RenameGallery(r.Context(), name, payload.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
