package cleanup

import (
	"context"
	"testing"

	"github.com/mercatto/catalog-sync/internal/repo"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})       {}
func (nopLogger) Warn(string, ...interface{})       {}
func (nopLogger) Error(interface{}, ...interface{}) {}
func (nopLogger) Fatal(interface{}, ...interface{}) {}

type productPathsStub struct {
	repo.ProductRepo
	paths []string
}

func (s *productPathsStub) ListStoragePaths(context.Context) ([]string, error) {
	return s.paths, nil
}

type imagePathsStub struct {
	repo.ProductImageRepo
	paths []string
}

func (s *imagePathsStub) ListStoragePaths(context.Context) ([]string, error) {
	return s.paths, nil
}

type stagingPathsStub struct {
	repo.StagingImageRepo
	paths []string
}

func (s *stagingPathsStub) ListStoragePaths(context.Context) ([]string, error) {
	return s.paths, nil
}

type refCountStub struct {
	count int
}

func (s *refCountStub) CountReferences(context.Context, string) (int, error) {
	return s.count, nil
}

type storageStub struct {
	repo.ObjectStorage
	base    string
	objects []string
	deleted [][]string
}

func (s *storageStub) List(context.Context, string) ([]string, error) {
	return s.objects, nil
}

func (s *storageStub) DeleteBatch(_ context.Context, paths []string) error {
	s.deleted = append(s.deleted, paths)
	return nil
}

func (s *storageStub) PublicURL(path string) string {
	return s.base + "/" + path
}

func newUseCase(products *productPathsStub, images *imagePathsStub, staging *stagingPathsStub, refs *refCountStub, storage *storageStub) *UseCase {
	return New(products, images, staging, refs, storage, nopLogger{})
}

func TestSafeDelete_DeclinesWhenReferenced(t *testing.T) {
	t.Parallel()

	storage := &storageStub{}
	uc := newUseCase(&productPathsStub{}, &imagePathsStub{}, &stagingPathsStub{}, &refCountStub{count: 2}, storage)

	err := uc.SafeDelete(context.Background(), "t1/products/a.jpg")

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrImageInUse)
	assert.Empty(t, storage.deleted, "a referenced object must never be deleted")
}

func TestSafeDelete_DeletesUnreferenced(t *testing.T) {
	t.Parallel()

	storage := &storageStub{}
	uc := newUseCase(&productPathsStub{}, &imagePathsStub{}, &stagingPathsStub{}, &refCountStub{count: 0}, storage)

	err := uc.SafeDelete(context.Background(), "t1/products/a.jpg")

	require.NoError(t, err)
	require.Len(t, storage.deleted, 1)
	assert.Equal(t, []string{"t1/products/a.jpg"}, storage.deleted[0])
}

func TestFindOrphans(t *testing.T) {
	t.Parallel()

	storage := &storageStub{
		base: "https://cdn.example.com",
		objects: []string{
			"t1/products/a.jpg",
			"t1/products/gallery/b.jpg",
			"t1/products/orphan.jpg",
			"t1/folder/",
			"t1/folder/.emptyFolderPlaceholder",
		},
	}

	uc := newUseCase(
		&productPathsStub{paths: []string{"t1/products/a.jpg"}},
		// gallery entries are stored as full public URLs and must still match
		&imagePathsStub{paths: []string{"https://cdn.example.com/t1/products/gallery/b.jpg"}},
		&stagingPathsStub{},
		&refCountStub{},
		storage,
	)

	orphans, err := uc.FindOrphans(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"t1/products/orphan.jpg"}, orphans)
}

func TestCleanup_SparesStagingReferencedObjects(t *testing.T) {
	t.Parallel()

	storage := &storageStub{
		base: "https://cdn.example.com",
		objects: []string{
			"t1/staging/upload.jpg",
			"t1/products/orphan.jpg",
		},
	}

	// the same path the reference count protects from SafeDelete must also
	// survive a live reconciliation run
	staging := &stagingPathsStub{paths: []string{"t1/staging/upload.jpg"}}
	uc := newUseCase(&productPathsStub{}, &imagePathsStub{}, staging, &refCountStub{count: 1}, storage)

	err := uc.SafeDelete(context.Background(), "t1/staging/upload.jpg")
	require.ErrorIs(t, err, errs.ErrImageInUse)

	orphans, deleted, err := uc.Cleanup(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, []string{"t1/products/orphan.jpg"}, orphans)
	assert.Equal(t, 1, deleted)
	require.Len(t, storage.deleted, 1)
	assert.NotContains(t, storage.deleted[0], "t1/staging/upload.jpg")
}

func TestCleanup_DryRunDeletesNothing(t *testing.T) {
	t.Parallel()

	storage := &storageStub{
		base:    "https://cdn.example.com",
		objects: []string{"t1/products/orphan.jpg"},
	}
	uc := newUseCase(&productPathsStub{}, &imagePathsStub{}, &stagingPathsStub{}, &refCountStub{}, storage)

	orphans, deleted, err := uc.Cleanup(context.Background(), true)

	require.NoError(t, err)
	assert.Equal(t, []string{"t1/products/orphan.jpg"}, orphans)
	assert.Zero(t, deleted)
	assert.Empty(t, storage.deleted)
}

func TestCleanup_RemovesOrphansInOneBatch(t *testing.T) {
	t.Parallel()

	storage := &storageStub{
		base:    "https://cdn.example.com",
		objects: []string{"t1/products/orphan.jpg", "t1/products/orphan2.jpg"},
	}
	uc := newUseCase(&productPathsStub{}, &imagePathsStub{}, &stagingPathsStub{}, &refCountStub{}, storage)

	orphans, deleted, err := uc.Cleanup(context.Background(), false)

	require.NoError(t, err)
	assert.Len(t, orphans, 2)
	assert.Equal(t, 2, deleted)
	require.Len(t, storage.deleted, 1)
	assert.Equal(t, orphans, storage.deleted[0])
}
