package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"
	"testing"

	"github.com/angelmondragon/mediagallery-backend/pkg/db/models"
	"github.com/angelmondragon/mediagallery-backend/pkg/storage/local"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&models.Asset{}))
	return conn
}

// memStorage is an in-memory storage backend that records calls.
type memStorage struct {
	mu       sync.Mutex
	objects  map[string][]byte
	puts     int
	deletes  []string
	putErr   error
	existErr error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.objects[key] = body
	return nil
}

func (m *memStorage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[key]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (m *memStorage) DeleteObject(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, key)
	delete(m.objects, key)
	return nil
}

func (m *memStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existErr != nil {
		return false, m.existErr
	}
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memStorage) Ping(ctx context.Context) error { return nil }

func (m *memStorage) Type() string { return "memory" }

func (m *memStorage) calls() (int, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts, append([]string(nil), m.deletes...)
}

// flakyRepo wraps the real repository and fails selected operations.
type flakyRepo struct {
	*Repository
	createErr error
	saveErrFor map[int64]error
}

func (f *flakyRepo) Create(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.Repository.Create(ctx, asset)
}

func (f *flakyRepo) SaveWithTx(tx *gorm.DB, asset *models.Asset) error {
	if err, ok := f.saveErrFor[asset.ID]; ok {
		return err
	}
	return f.Repository.SaveWithTx(tx, asset)
}

type fixture struct {
	db      *gorm.DB
	repo    *Repository
	store   *memStorage
	service Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	store := newMemStorage()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Tx:     gormTxRunner{db: conn},
		Store:  store,
		Policy: DefaultPolicy(),
	})
	require.NoError(t, err)
	return &fixture{db: conn, repo: repo, store: store, service: svc}
}

func (f *fixture) withRepo(t *testing.T, repo assetRepository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Tx:     gormTxRunner{db: f.db},
		Store:  f.store,
		Policy: DefaultPolicy(),
	})
	require.NoError(t, err)
	return svc
}

func (f *fixture) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Asset{}).Count(&n).Error)
	return n
}

func (f *fixture) seed(t *testing.T, title, gallery, filePath string) *models.Asset {
	t.Helper()
	asset := &models.Asset{Title: title, Gallery: gallery, FilePath: stringPtr(filePath)}
	created, err := f.repo.Create(context.Background(), asset)
	require.NoError(t, err)
	return created
}

func newLocalStorage(t *testing.T) *local.Storage {
	t.Helper()
	store, err := local.New(t.TempDir())
	require.NoError(t, err)
	return store
}

var errBoom = errors.New("boom")

// infiniteReader yields zero bytes forever.
type infiniteReader struct{}

func (infiniteReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
