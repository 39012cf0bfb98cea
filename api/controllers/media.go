package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/angelmondragon/mediagallery-backend/api/responses"
	"github.com/angelmondragon/mediagallery-backend/api/validators"
	"github.com/angelmondragon/mediagallery-backend/internal/media"
	pkgerrors "github.com/angelmondragon/mediagallery-backend/pkg/errors"
	"github.com/angelmondragon/mediagallery-backend/pkg/logger"
)

const (
	multipartMemory   = 32 << 20
	multipartOverhead = 1 << 20
	maxFormValueRunes = 2048
)

type mediaLinkRequest struct {
	Title       string `json:"title" validate:"max=200"`
	Description string `json:"description" validate:"max=500"`
	FilePath    string `json:"filePath" validate:"required,max=500"`
	Gallery     string `json:"gallery" validate:"max=100"`
}

type mediaUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	FileName    *string `json:"fileName"`
	FilePath    *string `json:"filePath"`
	FileType    *string `json:"fileType"`
	FileSize    *int64  `json:"fileSize"`
	MediaType   *string `json:"mediaType"`
	Gallery     *string `json:"gallery"`
}

func (r mediaUpdateRequest) toPatch() media.AssetPatch {
	return media.AssetPatch{
		Title:       r.Title,
		Description: r.Description,
		FileName:    r.FileName,
		FilePath:    r.FilePath,
		FileType:    r.FileType,
		FileSize:    r.FileSize,
		MediaType:   r.MediaType,
		Gallery:     r.Gallery,
	}
}

type galleryAssignRequest struct {
	Gallery *string `json:"gallery" validate:"required"`
}

type galleryRenameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func mediaLocation(id int64) string {
	return fmt.Sprintf("/api/media/%d", id)
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
}

// ListMedia returns every asset, newest first.
func ListMedia(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		assets, err := svc.ListMedia(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assets)
	}
}

func GetMedia(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asset, err := svc.GetMedia(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

// CreateMedia accepts multipart form data carrying either a file part or a
// filePath link.
func CreateMedia(svc media.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		ctx := r.Context()

		if maxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+multipartOverhead)
		}
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			responses.WriteError(ctx, logg, w, multipartError(err, maxUploadBytes))
			return
		}
		defer r.MultipartForm.RemoveAll()

		title := formValue(r, "title")
		description := formValue(r, "description")
		gallery := formValue(r, "gallery")

		var upload *media.UploadInput
		file, header, err := r.FormFile("file")
		switch {
		case err == nil:
			defer file.Close()
			upload = uploadInput(file, header, title, description, gallery)
		case errors.Is(err, http.ErrMissingFile):
		default:
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file part"))
			return
		}

		link := media.LinkInput{
			Title:       title,
			Description: description,
			URL:         firstNonEmpty(formValue(r, "filePath"), formValue(r, "FilePath")),
			Gallery:     gallery,
		}

		src, err := media.ResolveSource(upload, link)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		asset, err := svc.Ingest(ctx, src)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, mediaLocation(asset.ID), asset)
	}
}

// CreateMediaLink creates an asset from a JSON link payload.
func CreateMediaLink(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		var payload mediaLinkRequest
		if err := validators.DecodeJSONBodyAllowUnknown(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.IngestLink(r.Context(), media.LinkInput{
			Title:       payload.Title,
			Description: payload.Description,
			URL:         payload.FilePath,
			Gallery:     payload.Gallery,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, mediaLocation(asset.ID), asset)
	}
}

// UpdateMedia applies a sparse update. Unknown fields such as id or
// createdAt are ignored so clients may echo the full resource back.
func UpdateMedia(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload mediaUpdateRequest
		if err := validators.DecodeJSONBodyAllowUnknown(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asset, err := svc.UpdateMedia(r.Context(), id, payload.toPatch())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

func MoveMediaToGallery(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload galleryAssignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asset, err := svc.MoveToGallery(r.Context(), id, *payload.Gallery)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

func DeleteMedia(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteMedia(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func uploadInput(file multipart.File, header *multipart.FileHeader, title, description, gallery string) *media.UploadInput {
	return &media.UploadInput{
		Body:        file,
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Title:       title,
		Description: description,
		Gallery:     gallery,
	}
}

func multipartError(err error, maxUploadBytes int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return pkgerrors.Wrap(pkgerrors.CodePayloadTooLarge, err, "file too large").
			WithDetails(map[string]any{"maxBytes": maxUploadBytes})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
}

func formValue(r *http.Request, key string) string {
	if r.MultipartForm == nil {
		return validators.SanitizeString(r.FormValue(key), maxFormValueRunes)
	}
	if values := r.MultipartForm.Value[key]; len(values) > 0 {
		return validators.SanitizeString(values[0], maxFormValueRunes)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
