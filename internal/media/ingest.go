package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/angelmondragon/mediagallery-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/mediagallery-backend/pkg/errors"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultLinkTitle is used for link assets created without a title.
const DefaultLinkTitle = "Arquivo via link"

const (
	sourceUpload = "upload"
	sourceLink   = "link"

	octetStream = "application/octet-stream"
	sniffBytes  = 3072
)

var errNoSource = pkgerrors.New(pkgerrors.CodeValidation, "no file or valid link provided")

// UploadInput describes a file streamed by the client.
type UploadInput struct {
	Body        io.Reader
	FileName    string
	Size        int64
	ContentType string
	Title       string
	Description string
	Gallery     string
}

// LinkInput describes an asset that points at a remote URL.
type LinkInput struct {
	Title       string
	Description string
	URL         string
	Gallery     string
}

// Source is either an UploadSource or a LinkSource.
type Source interface {
	kind() string
}

type UploadSource struct{ UploadInput }

type LinkSource struct{ LinkInput }

func (UploadSource) kind() string { return sourceUpload }
func (LinkSource) kind() string   { return sourceLink }

// ResolveSource picks the ingestion path: a non-empty upload wins, then a
// non-blank link, otherwise the request is invalid.
func ResolveSource(upload *UploadInput, link LinkInput) (Source, error) {
	if upload != nil && upload.Body != nil && upload.Size > 0 {
		return UploadSource{UploadInput: *upload}, nil
	}
	if strings.TrimSpace(link.URL) != "" {
		return LinkSource{LinkInput: link}, nil
	}
	return nil, errNoSource
}

// Ingest dispatches src to the matching ingestion path. Untyped failures and
// panics surface as internal errors.
func (s *service) Ingest(ctx context.Context, src Source) (asset *models.Asset, err error) {
	defer func() {
		if r := recover(); r != nil {
			asset = nil
			err = pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("media ingestion failed: %v", r))
		}
		if err != nil && pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "media ingestion failed")
		}
	}()

	switch v := src.(type) {
	case UploadSource:
		return s.IngestUpload(ctx, v.UploadInput)
	case *UploadSource:
		if v == nil {
			return nil, errNoSource
		}
		return s.IngestUpload(ctx, v.UploadInput)
	case LinkSource:
		return s.IngestLink(ctx, v.LinkInput)
	case *LinkSource:
		if v == nil {
			return nil, errNoSource
		}
		return s.IngestLink(ctx, v.LinkInput)
	default:
		return nil, errNoSource
	}
}

// IngestUpload validates, stores and records an uploaded file. Nothing
// touches storage until every check has passed, and a failed insert removes
// the stored object again.
func (s *service) IngestUpload(ctx context.Context, input UploadInput) (*models.Asset, error) {
	asset, err := s.ingestUpload(ctx, input)
	if err != nil {
		s.metrics.IncRejected(string(pkgerrors.CodeOf(err)))
		return nil, err
	}
	return asset, nil
}

func (s *service) ingestUpload(ctx context.Context, input UploadInput) (*models.Asset, error) {
	if input.Body == nil || input.Size <= 0 {
		return nil, errNoSource
	}
	if err := checkLength("title", input.Title); err != nil {
		return nil, err
	}
	if err := checkLength("description", input.Description); err != nil {
		return nil, err
	}
	gallery := strings.TrimSpace(input.Gallery)
	if err := checkLength("gallery", gallery); err != nil {
		return nil, err
	}

	maxBytes := s.policy.MaxUploadBytes()
	if input.Size > maxBytes {
		return nil, tooLarge(maxBytes, input.Size)
	}

	originalName := baseFileName(input.FileName)
	ext := extensionOf(originalName)
	if !s.policy.IsAllowedUpload(ext) {
		return nil, pkgerrors.New(pkgerrors.CodeUnsupportedMediaType, "file type not allowed").
			WithDetails(map[string]any{"extension": ext, "allowed": s.policy.AllowedExtensions()})
	}

	body := input.Body
	contentType := strings.TrimSpace(input.ContentType)
	if contentType == "" || strings.EqualFold(contentType, octetStream) {
		detected, replay, err := sniffContentType(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read upload")
		}
		contentType, body = detected, replay
	}

	storedName := uuid.NewString() + ext
	ctx = s.logg.WithFields(ctx, map[string]any{"storage_key": storedName, "file_name": originalName})

	counter := &countingReader{r: io.LimitReader(body, maxBytes+1)}
	if err := s.store.PutObject(ctx, storedName, counter, contentType, input.Size); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "write upload")
	}
	if counter.n > maxBytes {
		s.discardObject(ctx, storedName)
		return nil, tooLarge(maxBytes, counter.n)
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = defaultUploadTitle(originalName)
	}
	mediaType := s.policy.ClassifyByExtension(ext)
	asset := &models.Asset{
		Title:       title,
		Description: input.Description,
		FileName:    stringPtr(storedName),
		FilePath:    stringPtr(s.storedPath(storedName)),
		FileType:    stringPtr(truncate(contentType, maxFieldLengths["fileType"])),
		FileSize:    counter.n,
		MediaType:   mediaType,
		Gallery:     gallery,
	}

	created, err := s.repo.Create(ctx, asset)
	if err != nil {
		s.discardObject(ctx, storedName)
		return nil, repoError(err, "persist media")
	}

	s.metrics.IncIngested(sourceUpload, mediaType.String())
	s.metrics.AddUploadBytes(counter.n)
	s.logg.Info(s.logg.WithAssetID(ctx, created.ID), "media.stored")
	return created, nil
}

// IngestLink records an asset that references a remote URL. No bytes are
// fetched or stored.
func (s *service) IngestLink(ctx context.Context, input LinkInput) (*models.Asset, error) {
	asset, err := s.ingestLink(ctx, input)
	if err != nil {
		s.metrics.IncRejected(string(pkgerrors.CodeOf(err)))
		return nil, err
	}
	return asset, nil
}

func (s *service) ingestLink(ctx context.Context, input LinkInput) (*models.Asset, error) {
	raw := strings.TrimSpace(input.URL)
	if raw == "" {
		return nil, errNoSource
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "filePath must be an absolute URL").
			WithDetails(map[string]any{"filePath": raw})
	}
	for field, value := range map[string]string{"filePath": raw, "title": input.Title, "description": input.Description} {
		if err := checkLength(field, value); err != nil {
			return nil, err
		}
	}
	gallery := strings.TrimSpace(input.Gallery)
	if err := checkLength("gallery", gallery); err != nil {
		return nil, err
	}

	var fileName *string
	if seg := path.Base(u.Path); seg != "" && seg != "." && seg != "/" {
		fileName = stringPtr(truncate(seg, maxFieldLengths["fileName"]))
	}

	ext := ""
	if fileName != nil {
		ext = extensionOf(*fileName)
	}
	mediaType := s.policy.ClassifyByExtension(ext)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = DefaultLinkTitle
	}

	asset := &models.Asset{
		Title:       title,
		Description: input.Description,
		FileName:    fileName,
		FilePath:    stringPtr(raw),
		FileType:    stringPtr(InferFileTypeFromURL(raw)),
		FileSize:    0,
		MediaType:   mediaType,
		Gallery:     gallery,
	}

	created, err := s.repo.Create(ctx, asset)
	if err != nil {
		return nil, repoError(err, "persist media")
	}

	s.metrics.IncIngested(sourceLink, mediaType.String())
	s.logg.Info(s.logg.WithAssetID(ctx, created.ID), "media.linked")
	return created, nil
}

func (s *service) discardObject(ctx context.Context, key string) {
	if err := s.store.DeleteObject(ctx, key); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "media.discard_failed")
	}
}

func tooLarge(maxBytes, size int64) error {
	return pkgerrors.New(pkgerrors.CodePayloadTooLarge, "file too large").
		WithDetails(map[string]any{"maxBytes": maxBytes, "size": size})
}

// sniffContentType detects the type from the leading bytes and returns a
// reader that replays them.
func sniffContentType(body io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	head = head[:n]
	detected := mimetype.Detect(head).String()
	return detected, io.MultiReader(bytes.NewReader(head), body), nil
}

// baseFileName strips any client supplied directory components.
func baseFileName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

func defaultUploadTitle(fileName string) string {
	title := strings.TrimSpace(strings.TrimSuffix(fileName, path.Ext(fileName)))
	if title == "" {
		title = fileName
	}
	return truncate(title, maxFieldLengths["title"])
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
