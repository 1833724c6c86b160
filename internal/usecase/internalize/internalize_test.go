package internalize

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/mercatto/catalog-sync/internal/entity"
	"github.com/mercatto/catalog-sync/internal/repo"
	"github.com/mercatto/catalog-sync/internal/usecase/ingest"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const _managedHost = "cdn.example.com"

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})       {}
func (nopLogger) Warn(string, ...interface{})       {}
func (nopLogger) Error(interface{}, ...interface{}) {}
func (nopLogger) Fatal(interface{}, ...interface{}) {}

type productRepoStub struct {
	repo.ProductRepo

	syncedID   uuid.UUID
	syncedNote string
	synced     bool

	failedID  uuid.UUID
	failedMsg string

	internalizedID   uuid.UUID
	internalizedPath string
	internalizedURL  string
}

func (s *productRepoStub) MarkSynced(_ context.Context, id uuid.UUID, note string) error {
	s.syncedID = id
	s.syncedNote = note
	s.synced = true
	return nil
}

func (s *productRepoStub) MarkFailed(_ context.Context, id uuid.UUID, message string) error {
	s.failedID = id
	s.failedMsg = message
	return nil
}

func (s *productRepoStub) SetInternalized(_ context.Context, id uuid.UUID, storagePath, publicURL string) error {
	s.internalizedID = id
	s.internalizedPath = storagePath
	s.internalizedURL = publicURL
	return nil
}

type imageRepoStub struct {
	repo.ProductImageRepo

	internalizedID   uuid.UUID
	internalizedPath string
}

func (s *imageRepoStub) SetInternalized(_ context.Context, id uuid.UUID, storagePath, optimizedURL string) error {
	s.internalizedID = id
	s.internalizedPath = storagePath
	return nil
}

type storageStub struct {
	repo.ObjectStorage

	destExists bool

	uploadedPath        string
	uploadedContentType string
}

func (s *storageStub) Upload(_ context.Context, path string, _ []byte, contentType string, upsert bool) error {
	if upsert {
		return fmt.Errorf("internalize must never overwrite")
	}
	if s.destExists {
		return errs.ErrObjectExists
	}
	s.uploadedPath = path
	s.uploadedContentType = contentType
	return nil
}

func (s *storageStub) PublicURL(path string) string {
	return "https://" + _managedHost + "/" + path
}

type fetcherStub struct {
	data    []byte
	err     error
	fetched []string
}

func (s *fetcherStub) Fetch(_ context.Context, url string) ([]byte, error) {
	s.fetched = append(s.fetched, url)
	return s.data, s.err
}

type transcoderStub struct{}

func (transcoderStub) Normalize(_ context.Context, data []byte) ([]byte, string, error) {
	return data, "image/jpeg", nil
}

func TestInternalizeProduct_ExternalURL(t *testing.T) {
	t.Parallel()

	products := &productRepoStub{}
	storage := &storageStub{}
	fetcher := &fetcherStub{data: []byte("raw")}
	uc := New(products, &imageRepoStub{}, storage, fetcher, transcoderStub{}, _managedHost, nopLogger{})

	product := &entity.Product{
		ID:               uuid.New(),
		TenantID:         uuid.New(),
		ExternalImageURL: "https://supplier.example.net/42.png",
	}

	err := uc.InternalizeProduct(context.Background(), product)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://supplier.example.net/42.png"}, fetcher.fetched)

	wantPath := ProductPath(product.TenantID, product.ID)
	assert.Equal(t, wantPath, storage.uploadedPath)
	assert.Equal(t, "image/jpeg", storage.uploadedContentType)

	assert.Equal(t, product.ID, products.internalizedID)
	assert.Equal(t, wantPath, products.internalizedPath)
	assert.Equal(t, storage.PublicURL(wantPath), products.internalizedURL)
}

func TestInternalizeProduct_EmptyURLIsSyncedWithNote(t *testing.T) {
	t.Parallel()

	products := &productRepoStub{}
	fetcher := &fetcherStub{}
	uc := New(products, &imageRepoStub{}, &storageStub{}, fetcher, transcoderStub{}, _managedHost, nopLogger{})

	product := &entity.Product{ID: uuid.New(), TenantID: uuid.New()}

	err := uc.InternalizeProduct(context.Background(), product)

	require.NoError(t, err)
	assert.True(t, products.synced)
	assert.Equal(t, ingest.NoURLNote, products.syncedNote)
	assert.Empty(t, fetcher.fetched, "nothing to internalize, nothing to fetch")
}

func TestInternalizeProduct_ManagedURLNeedsNoWork(t *testing.T) {
	t.Parallel()

	products := &productRepoStub{}
	fetcher := &fetcherStub{}
	uc := New(products, &imageRepoStub{}, &storageStub{}, fetcher, transcoderStub{}, _managedHost, nopLogger{})

	product := &entity.Product{
		ID:               uuid.New(),
		TenantID:         uuid.New(),
		ExternalImageURL: "https://cdn.example.com/t1/products/a.jpg",
	}

	err := uc.InternalizeProduct(context.Background(), product)

	require.NoError(t, err)
	assert.True(t, products.synced)
	assert.Empty(t, products.syncedNote)
	assert.Empty(t, fetcher.fetched)
}

func TestInternalizeProduct_FetchFailureMarksFailed(t *testing.T) {
	t.Parallel()

	products := &productRepoStub{}
	fetcher := &fetcherStub{err: fmt.Errorf("connection refused")}
	uc := New(products, &imageRepoStub{}, &storageStub{}, fetcher, transcoderStub{}, _managedHost, nopLogger{})

	product := &entity.Product{
		ID:               uuid.New(),
		TenantID:         uuid.New(),
		ExternalImageURL: "https://supplier.example.net/42.png",
	}

	err := uc.InternalizeProduct(context.Background(), product)

	require.Error(t, err)
	assert.Equal(t, product.ID, products.failedID)
	assert.Contains(t, products.failedMsg, "connection refused")
	assert.Equal(t, uuid.Nil, products.internalizedID)
}

func TestInternalizeProduct_ExistingObjectStillUpdatesRecord(t *testing.T) {
	t.Parallel()

	products := &productRepoStub{}
	storage := &storageStub{destExists: true}
	uc := New(products, &imageRepoStub{}, storage, &fetcherStub{data: []byte("raw")}, transcoderStub{}, _managedHost, nopLogger{})

	product := &entity.Product{
		ID:               uuid.New(),
		TenantID:         uuid.New(),
		ExternalImageURL: "https://supplier.example.net/42.png",
	}

	err := uc.InternalizeProduct(context.Background(), product)

	require.NoError(t, err)
	assert.Equal(t, product.ID, products.internalizedID, "an earlier upload that got through must not block the record update")
}

func TestInternalizeImage_UsesGalleryPath(t *testing.T) {
	t.Parallel()

	images := &imageRepoStub{}
	storage := &storageStub{}
	uc := New(&productRepoStub{}, images, storage, &fetcherStub{data: []byte("raw")}, transcoderStub{}, _managedHost, nopLogger{})

	tenant := uuid.New()
	img := &entity.ProductImage{
		ID:  uuid.New(),
		URL: "https://supplier.example.net/g1.png",
	}

	err := uc.InternalizeImage(context.Background(), tenant, img)

	require.NoError(t, err)
	assert.Equal(t, GalleryPath(tenant, img.ID), images.internalizedPath)
	assert.Equal(t, img.ID, images.internalizedID)
}
