package media

import (
	"context"
	"fmt"

	"github.com/angelmondragon/mediagallery-backend/pkg/db/models"
	"github.com/angelmondragon/mediagallery-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes asset persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an asset repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every asset, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Asset, error) {
	var assets []models.Asset
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// ListByGallery returns the members of one gallery, newest first. An empty
// name never matches.
func (r *Repository) ListByGallery(ctx context.Context, gallery string) ([]models.Asset, error) {
	if gallery == "" {
		return []models.Asset{}, nil
	}
	var assets []models.Asset
	if err := r.db.WithContext(ctx).
		Where("gallery = ?", gallery).
		Order("created_at DESC").
		Order("id DESC").
		Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// ListGalleries returns the distinct non-empty gallery names ordered by
// their most recent member.
func (r *Repository) ListGalleries(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Select("gallery").
		Where("gallery <> ''").
		Group("gallery").
		Order("MAX(created_at) DESC").
		Order("gallery ASC").
		Pluck("gallery", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// FindByID retrieves an asset; gorm.ErrRecordNotFound when absent.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Asset, error) {
	var asset models.Asset
	if err := r.db.WithContext(ctx).First(&asset, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// Create persists a new asset, assigning its id and creation time.
func (r *Repository) Create(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	if asset == nil {
		return nil, fmt.Errorf("asset is required")
	}
	if asset.MediaType == "" {
		asset.MediaType = enums.MediaTypeOther
	}
	if err := r.db.WithContext(ctx).Create(asset).Error; err != nil {
		return nil, err
	}
	return asset, nil
}

// FindByIDWithTx loads an asset using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id int64) (*models.Asset, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var asset models.Asset
	if err := tx.First(&asset, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// SaveWithTx writes every column of asset using the provided transaction, so
// zero values such as an empty gallery are persisted.
func (r *Repository) SaveWithTx(tx *gorm.DB, asset *models.Asset) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if asset == nil {
		return fmt.Errorf("asset is required")
	}
	return tx.Save(asset).Error
}

// Delete removes an asset; gorm.ErrRecordNotFound when nothing matched.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Asset{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
