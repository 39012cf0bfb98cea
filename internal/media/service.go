package media

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/mediagallery-backend/pkg/db"
	"github.com/angelmondragon/mediagallery-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/mediagallery-backend/pkg/errors"
	"github.com/angelmondragon/mediagallery-backend/pkg/logger"
	"github.com/angelmondragon/mediagallery-backend/pkg/metrics"
	"github.com/angelmondragon/mediagallery-backend/pkg/storage"
	"gorm.io/gorm"
)

var maxFieldLengths = map[string]int{
	"title":       200,
	"description": 500,
	"fileName":    300,
	"filePath":    500,
	"fileType":    100,
	"gallery":     100,
}

type assetRepository interface {
	List(ctx context.Context) ([]models.Asset, error)
	ListByGallery(ctx context.Context, gallery string) ([]models.Asset, error)
	ListGalleries(ctx context.Context) ([]string, error)
	FindByID(ctx context.Context, id int64) (*models.Asset, error)
	Create(ctx context.Context, asset *models.Asset) (*models.Asset, error)
	FindByIDWithTx(tx *gorm.DB, id int64) (*models.Asset, error)
	SaveWithTx(tx *gorm.DB, asset *models.Asset) error
	Delete(ctx context.Context, id int64) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes media ingestion, editing and gallery semantics.
type Service interface {
	Ingest(ctx context.Context, src Source) (*models.Asset, error)
	IngestUpload(ctx context.Context, input UploadInput) (*models.Asset, error)
	IngestLink(ctx context.Context, input LinkInput) (*models.Asset, error)

	ListMedia(ctx context.Context) ([]models.Asset, error)
	GetMedia(ctx context.Context, id int64) (*models.Asset, error)
	UpdateMedia(ctx context.Context, id int64, patch AssetPatch) (*models.Asset, error)
	DeleteMedia(ctx context.Context, id int64) error

	ListGalleries(ctx context.Context) ([]string, error)
	ListByGallery(ctx context.Context, name string) ([]models.Asset, error)
	GalleryOverview(ctx context.Context) ([]GalleryGroup, error)
	MoveToGallery(ctx context.Context, id int64, name string) (*models.Asset, error)
	ClearGallery(ctx context.Context, name string) (*BatchResult, error)
	RenameGallery(ctx context.Context, from, to string) (*BatchResult, error)
}

// ServiceParams packages the dependencies of the media service.
type ServiceParams struct {
	Repo    assetRepository
	Tx      txRunner
	Store   storage.Storage
	Policy  Policy
	Metrics *metrics.MediaMetrics
	Logger  *logger.Logger
	// PublicPrefix is the URL prefix stored in filePath for uploads.
	PublicPrefix string
}

type service struct {
	repo         assetRepository
	tx           txRunner
	store        storage.Storage
	policy       Policy
	metrics      *metrics.MediaMetrics
	logg         *logger.Logger
	publicPrefix string
}

// NewService constructs a media service backed by the provided repository and storage.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("asset repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("storage required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	policy := params.Policy
	if policy.images == nil && policy.videos == nil {
		policy = DefaultPolicy()
	}
	prefix := strings.TrimRight(strings.TrimSpace(params.PublicPrefix), "/")
	if prefix == "" {
		prefix = "/uploads"
	}
	return &service{
		repo:         params.Repo,
		tx:           params.Tx,
		store:        params.Store,
		policy:       policy,
		metrics:      params.Metrics,
		logg:         logg,
		publicPrefix: prefix,
	}, nil
}

func (s *service) ListMedia(ctx context.Context) ([]models.Asset, error) {
	assets, err := s.repo.List(ctx)
	if err != nil {
		return nil, repoError(err, "list media")
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	return assets, nil
}

func (s *service) GetMedia(ctx context.Context, id int64) (*models.Asset, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "id must be positive")
	}
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "load media")
	}
	return asset, nil
}

// UpdateMedia merges patch into the stored asset inside one transaction.
func (s *service) UpdateMedia(ctx context.Context, id int64, patch AssetPatch) (*models.Asset, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "id must be positive")
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var updated *models.Asset
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		asset, err := s.repo.FindByIDWithTx(tx, id)
		if err != nil {
			return err
		}
		patch.ApplyTo(asset)
		if err := s.repo.SaveWithTx(tx, asset); err != nil {
			return err
		}
		updated = asset
		return nil
	})
	if err != nil {
		return nil, repoError(err, "update media")
	}

	s.logg.Info(s.logg.WithAssetID(ctx, id), "media.updated")
	return updated, nil
}

// DeleteMedia removes the record and then, best effort, the stored file.
// Remote links never touch storage.
func (s *service) DeleteMedia(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "id must be positive")
	}
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return repoError(err, "load media")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "delete media")
	}

	ctx = s.logg.WithAssetID(ctx, id)
	removed := s.removeStoredFile(ctx, asset.StoredPath())
	s.metrics.IncDeleted(removed)
	s.logg.Info(s.logg.WithField(ctx, "file_removed", removed), "media.deleted")
	return nil
}

func (s *service) removeStoredFile(ctx context.Context, filePath string) bool {
	key, ok := storageKeyFor(filePath)
	if !ok {
		return false
	}
	ctx = s.logg.WithField(ctx, "storage_key", key)

	exists, err := s.store.ObjectExists(ctx, key)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "media.cleanup_stat_failed")
		return false
	}
	if !exists {
		return false
	}
	if err := s.store.DeleteObject(ctx, key); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "media.cleanup_failed")
		return false
	}
	return true
}

// storageKeyFor derives the object key of a locally stored upload. Remote URLs
// and empty paths have no key.
func storageKeyFor(filePath string) (string, bool) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" || IsRemoteURL(filePath) {
		return "", false
	}
	key := path.Base(filePath)
	if key == "." || key == "/" || key == "" {
		return "", false
	}
	return key, true
}

// IsRemoteURL reports whether value is an absolute URL with a host.
func IsRemoteURL(value string) bool {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

func (s *service) storedPath(name string) string {
	return s.publicPrefix + "/" + name
}

// repoError maps persistence failures onto the public error taxonomy.
func repoError(err error, action string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "media not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func checkLength(field, value string) error {
	limit, ok := maxFieldLengths[field]
	if !ok {
		return nil
	}
	if n := utf8.RuneCountInString(value); n > limit {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be at most %d characters", field, limit)).
			WithDetails(map[string]any{"field": field, "max": limit, "length": n})
	}
	return nil
}

func truncate(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit])
}
