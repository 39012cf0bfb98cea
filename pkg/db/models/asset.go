package models

import (
	"time"

	"github.com/angelmondragon/mediagallery-backend/pkg/enums"
)

// Asset is a single media item, either an uploaded file or a remote link.
// Gallery is a free-form tag; an empty value means the asset is ungrouped.
type Asset struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string          `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description string          `gorm:"column:description;type:varchar(500);not null" json:"description"`
	FileName    *string         `gorm:"column:file_name;type:varchar(300)" json:"fileName"`
	FilePath    *string         `gorm:"column:file_path;type:varchar(500)" json:"filePath"`
	FileType    *string         `gorm:"column:file_type;type:varchar(100)" json:"fileType"`
	FileSize    int64           `gorm:"column:file_size;not null" json:"fileSize"`
	MediaType   enums.MediaType `gorm:"column:media_type;type:varchar(50);not null" json:"mediaType"`
	Gallery     string          `gorm:"column:gallery;type:varchar(100);not null;index:idx_assets_gallery" json:"gallery"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime;index:idx_assets_created_at" json:"createdAt"`
}

// TableName pins the table name used by migrations.
func (Asset) TableName() string {
	return "assets"
}

// StoredPath returns the file path or an empty string when unset.
func (a Asset) StoredPath() string {
	if a.FilePath == nil {
		return ""
	}
	return *a.FilePath
}
