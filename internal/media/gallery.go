package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/mediagallery-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/mediagallery-backend/pkg/errors"
	"go.uber.org/multierr"
)

// GalleryGroup is one bucket of the gallery overview. The ungrouped bucket
// has an empty name and Ungrouped set.
type GalleryGroup struct {
	Name      string         `json:"name"`
	Ungrouped bool           `json:"ungrouped"`
	Count     int            `json:"count"`
	Assets    []models.Asset `json:"assets"`
}

// BatchItemResult reports the outcome for a single gallery member.
type BatchItemResult struct {
	ID    int64  `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BatchResult summarises a bulk gallery update. It is not transactional:
// successful items stay applied when others fail.
type BatchResult struct {
	Gallery   string            `json:"gallery"`
	Target    string            `json:"target"`
	Items     []BatchItemResult `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`

	err error
}

// Err returns every item failure combined, or nil.
func (r *BatchResult) Err() error {
	if r == nil {
		return nil
	}
	return r.err
}

// Galleries returns the distinct non-empty gallery names in discovery order.
func Galleries(assets []models.Asset) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, asset := range assets {
		if asset.Gallery == "" {
			continue
		}
		if _, ok := seen[asset.Gallery]; ok {
			continue
		}
		seen[asset.Gallery] = struct{}{}
		names = append(names, asset.Gallery)
	}
	return names
}

// FilterByGallery keeps assets whose gallery equals name exactly.
func FilterByGallery(assets []models.Asset, name string) []models.Asset {
	out := make([]models.Asset, 0)
	if name == "" {
		return out
	}
	for _, asset := range assets {
		if asset.Gallery == name {
			out = append(out, asset)
		}
	}
	return out
}

// Group buckets assets by gallery in discovery order, with the ungrouped
// bucket last when it has members.
func Group(assets []models.Asset) []GalleryGroup {
	names := Galleries(assets)
	groups := make([]GalleryGroup, 0, len(names)+1)
	for _, name := range names {
		members := FilterByGallery(assets, name)
		groups = append(groups, GalleryGroup{Name: name, Count: len(members), Assets: members})
	}

	ungrouped := make([]models.Asset, 0)
	for _, asset := range assets {
		if asset.Gallery == "" {
			ungrouped = append(ungrouped, asset)
		}
	}
	if len(ungrouped) > 0 {
		groups = append(groups, GalleryGroup{Ungrouped: true, Count: len(ungrouped), Assets: ungrouped})
	}
	return groups
}

func (s *service) ListGalleries(ctx context.Context) ([]string, error) {
	names, err := s.repo.ListGalleries(ctx)
	if err != nil {
		return nil, repoError(err, "list galleries")
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *service) ListByGallery(ctx context.Context, name string) ([]models.Asset, error) {
	name, err := requireGalleryName(name, "gallery name is required")
	if err != nil {
		return nil, err
	}
	assets, err := s.repo.ListByGallery(ctx, name)
	if err != nil {
		return nil, repoError(err, "list gallery media")
	}
	return assets, nil
}

func (s *service) GalleryOverview(ctx context.Context) ([]GalleryGroup, error) {
	assets, err := s.repo.List(ctx)
	if err != nil {
		return nil, repoError(err, "list media")
	}
	return Group(assets), nil
}

// MoveToGallery assigns one asset to name; an empty name removes it from
// its gallery.
func (s *service) MoveToGallery(ctx context.Context, id int64, name string) (*models.Asset, error) {
	return s.UpdateMedia(ctx, id, GalleryPatch(strings.TrimSpace(name)))
}

// ClearGallery removes every member from the gallery, which makes the
// gallery disappear.
func (s *service) ClearGallery(ctx context.Context, name string) (*BatchResult, error) {
	name, err := requireGalleryName(name, "gallery name is required")
	if err != nil {
		return nil, err
	}
	return s.retagGallery(s.logg.WithGallery(ctx, name), name, "")
}

// RenameGallery moves every member of from into to.
func (s *service) RenameGallery(ctx context.Context, from, to string) (*BatchResult, error) {
	from, err := requireGalleryName(from, "gallery name is required")
	if err != nil {
		return nil, err
	}
	to, err = requireGalleryName(to, "new gallery name is required")
	if err != nil {
		return nil, err
	}
	if from == to {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new gallery name must differ from the current one")
	}
	return s.retagGallery(s.logg.WithGallery(ctx, from), from, to)
}

func (s *service) retagGallery(ctx context.Context, from, to string) (*BatchResult, error) {
	members, err := s.repo.ListByGallery(ctx, from)
	if err != nil {
		return nil, repoError(err, "list gallery media")
	}
	if len(members) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gallery not found").
			WithDetails(map[string]any{"gallery": from})
	}

	result := &BatchResult{Gallery: from, Target: to, Items: make([]BatchItemResult, 0, len(members))}
	patch := GalleryPatch(to)
	for _, member := range members {
		if _, err := s.UpdateMedia(ctx, member.ID, patch); err != nil {
			result.Failed++
			result.Items = append(result.Items, BatchItemResult{ID: member.ID, Error: err.Error()})
			result.err = multierr.Append(result.err, fmt.Errorf("asset %d: %w", member.ID, err))
			continue
		}
		result.Succeeded++
		result.Items = append(result.Items, BatchItemResult{ID: member.ID, OK: true})
	}

	fields := map[string]any{"target": to, "succeeded": result.Succeeded, "failed": result.Failed}
	if result.err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, fields), "gallery.retag_partial")
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, result.err, "gallery update partially failed").
			WithDetails(result)
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "gallery.retagged")
	return result, nil
}

func requireGalleryName(name, message string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, message)
	}
	if err := checkLength("gallery", name); err != nil {
		return "", err
	}
	return name, nil
}
