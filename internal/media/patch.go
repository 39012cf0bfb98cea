package media

import (
	"strings"

	"github.com/angelmondragon/mediagallery-backend/pkg/db/models"
	"github.com/angelmondragon/mediagallery-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mediagallery-backend/pkg/errors"
)

// AssetPatch is a sparse update. A nil field means "leave unchanged".
// Only Gallery can be cleared, by sending an empty string.
type AssetPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	FileName    *string `json:"fileName,omitempty"`
	FilePath    *string `json:"filePath,omitempty"`
	FileType    *string `json:"fileType,omitempty"`
	FileSize    *int64  `json:"fileSize,omitempty"`
	MediaType   *string `json:"mediaType,omitempty"`
	Gallery     *string `json:"gallery,omitempty"`
}

// GalleryPatch returns a patch that only assigns the gallery.
func GalleryPatch(name string) AssetPatch {
	return AssetPatch{Gallery: &name}
}

// Validate rejects media types outside the enum and oversized fields.
func (p AssetPatch) Validate() error {
	if p.MediaType != nil && strings.TrimSpace(*p.MediaType) != "" {
		if _, err := enums.ParseMediaType(*p.MediaType); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid mediaType").
				WithDetails(map[string]any{"mediaType": *p.MediaType, "allowed": []enums.MediaType{enums.MediaTypeImage, enums.MediaTypeVideo, enums.MediaTypeOther}})
		}
	}
	if p.FileSize != nil && *p.FileSize < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "fileSize must not be negative")
	}
	fields := map[string]*string{
		"title":       p.Title,
		"description": p.Description,
		"fileName":    p.FileName,
		"filePath":    p.FilePath,
		"fileType":    p.FileType,
		"gallery":     p.Gallery,
	}
	for name, value := range fields {
		if value == nil {
			continue
		}
		if err := checkLength(name, *value); err != nil {
			return err
		}
	}
	return nil
}

// ApplyTo merges the patch into asset. Validate must be called first.
func (p AssetPatch) ApplyTo(asset *models.Asset) {
	if asset == nil {
		return
	}
	if nonEmpty(p.Title) {
		asset.Title = *p.Title
	}
	if nonEmpty(p.Description) {
		asset.Description = *p.Description
	}
	if nonEmpty(p.FileName) {
		asset.FileName = stringPtr(*p.FileName)
	}
	if nonEmpty(p.FilePath) {
		asset.FilePath = stringPtr(*p.FilePath)
	}
	if nonEmpty(p.FileType) {
		asset.FileType = stringPtr(*p.FileType)
	}
	if p.FileSize != nil && *p.FileSize > 0 {
		asset.FileSize = *p.FileSize
	}
	if nonEmpty(p.MediaType) {
		if mt, err := enums.ParseMediaType(*p.MediaType); err == nil {
			asset.MediaType = mt
		}
	}
	if p.Gallery != nil {
		asset.Gallery = strings.TrimSpace(*p.Gallery)
	}
}

func nonEmpty(v *string) bool {
	return v != nil && *v != ""
}

func stringPtr(v string) *string {
	return &v
}
