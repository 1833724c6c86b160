package clone

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mercatto/catalog-sync/internal/entity"
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

type transactorStub struct{}

func (transactorStub) WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	return f(ctx)
}

type productRepoStub struct {
	repo.ProductRepo

	sources []*entity.Product
	targets []*entity.Product

	upserted   []*entity.Product
	deletedIDs []uuid.UUID
}

func (s *productRepoStub) ListByBrand(context.Context, uuid.UUID, string) ([]*entity.Product, error) {
	return s.sources, nil
}

func (s *productRepoStub) UpsertClones(_ context.Context, products []*entity.Product) error {
	s.upserted = products
	return nil
}

func (s *productRepoStub) GetByReferenceCodes(context.Context, uuid.UUID, []string) ([]*entity.Product, error) {
	return s.targets, nil
}

func (s *productRepoStub) DeleteByIDs(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (int64, error) {
	s.deletedIDs = ids
	return int64(len(ids)), nil
}

type imageRepoStub struct {
	repo.ProductImageRepo

	byProduct map[uuid.UUID][]*entity.ProductImage
	inserted  []*entity.ProductImage
}

func (s *imageRepoStub) ListByProduct(_ context.Context, productID uuid.UUID) ([]*entity.ProductImage, error) {
	return s.byProduct[productID], nil
}

func (s *imageRepoStub) InsertBatch(_ context.Context, images []*entity.ProductImage) error {
	s.inserted = append(s.inserted, images...)
	return nil
}

type recordRepoStub struct {
	repo.CloneRecordRepo

	records []*entity.CatalogCloneRecord

	inserted         []*entity.CatalogCloneRecord
	deletedRecordIDs []uuid.UUID
}

func (s *recordRepoStub) InsertBatch(_ context.Context, records []*entity.CatalogCloneRecord) error {
	s.inserted = records
	return nil
}

func (s *recordRepoStub) ListByPair(context.Context, uuid.UUID, uuid.UUID, string) ([]*entity.CatalogCloneRecord, error) {
	return s.records, nil
}

func (s *recordRepoStub) DeleteByIDs(_ context.Context, ids []uuid.UUID) error {
	s.deletedRecordIDs = ids
	return nil
}

func TestClone_CopiesProductsGalleryAndAudit(t *testing.T) {
	t.Parallel()

	sourceTenant := uuid.New()
	targetTenant := uuid.New()

	source := &entity.Product{
		ID:            uuid.New(),
		TenantID:      sourceTenant,
		ReferenceCode: "SKU-1",
		Brand:         "acme",
		SyncStatus:    entity.SyncSynced,
	}
	target := &entity.Product{
		ID:            uuid.New(),
		TenantID:      targetTenant,
		ReferenceCode: "SKU-1",
	}

	sourceImage := &entity.ProductImage{
		ID:          uuid.New(),
		ProductID:   source.ID,
		URL:         "https://cdn.example.com/src/gallery/1.jpg",
		StoragePath: strPtr("src/gallery/1.jpg"),
		Position:    1,
	}

	products := &productRepoStub{sources: []*entity.Product{source}, targets: []*entity.Product{target}}
	images := &imageRepoStub{byProduct: map[uuid.UUID][]*entity.ProductImage{
		source.ID: {sourceImage},
	}}
	records := &recordRepoStub{}

	uc := New(products, images, records, transactorStub{}, nopLogger{})

	cloned, err := uc.Clone(context.Background(), sourceTenant, targetTenant, "acme")

	require.NoError(t, err)
	assert.Equal(t, 1, cloned)

	require.Len(t, products.upserted, 1)
	assert.Equal(t, targetTenant, products.upserted[0].TenantID)
	assert.Equal(t, "SKU-1", products.upserted[0].ReferenceCode)

	require.Len(t, images.inserted, 1)
	replica := images.inserted[0]
	assert.Equal(t, target.ID, replica.ProductID)
	assert.Equal(t, sourceImage.StoragePath, replica.StoragePath)
	assert.True(t, replica.Shared, "cloned gallery rows still point at the source tenant's objects")

	require.Len(t, records.inserted, 1)
	assert.Equal(t, source.ID, records.inserted[0].SourceProductID)
	assert.Equal(t, target.ID, records.inserted[0].TargetProductID)
}

func TestClone_RerunDoesNotDuplicateGallery(t *testing.T) {
	t.Parallel()

	sourceTenant := uuid.New()
	targetTenant := uuid.New()

	source := &entity.Product{ID: uuid.New(), TenantID: sourceTenant, ReferenceCode: "SKU-1"}
	target := &entity.Product{ID: uuid.New(), TenantID: targetTenant, ReferenceCode: "SKU-1"}

	products := &productRepoStub{sources: []*entity.Product{source}, targets: []*entity.Product{target}}
	images := &imageRepoStub{byProduct: map[uuid.UUID][]*entity.ProductImage{
		source.ID: {{ID: uuid.New(), ProductID: source.ID}},
		target.ID: {{ID: uuid.New(), ProductID: target.ID}},
	}}

	uc := New(products, images, &recordRepoStub{}, transactorStub{}, nopLogger{})

	_, err := uc.Clone(context.Background(), sourceTenant, targetTenant, "acme")

	require.NoError(t, err)
	assert.Empty(t, images.inserted, "a target with gallery rows must be left alone")
}

func TestClone_NoSourceProducts(t *testing.T) {
	t.Parallel()

	products := &productRepoStub{}
	uc := New(products, &imageRepoStub{}, &recordRepoStub{}, transactorStub{}, nopLogger{})

	cloned, err := uc.Clone(context.Background(), uuid.New(), uuid.New(), "acme")

	require.NoError(t, err)
	assert.Zero(t, cloned)
	assert.Nil(t, products.upserted)
}

func TestUndo_RemovesExactlyTheRecordedRows(t *testing.T) {
	t.Parallel()

	targetProductID := uuid.New()
	recordID := uuid.New()

	products := &productRepoStub{}
	records := &recordRepoStub{records: []*entity.CatalogCloneRecord{
		{ID: recordID, TargetProductID: targetProductID},
	}}

	uc := New(products, &imageRepoStub{}, records, transactorStub{}, nopLogger{})

	removed, err := uc.Undo(context.Background(), uuid.New(), uuid.New(), "acme")

	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []uuid.UUID{targetProductID}, products.deletedIDs)
	assert.Equal(t, []uuid.UUID{recordID}, records.deletedRecordIDs)
}

func TestUndo_WithoutCloneLogIsRejected(t *testing.T) {
	t.Parallel()

	products := &productRepoStub{}
	uc := New(products, &imageRepoStub{}, &recordRepoStub{}, transactorStub{}, nopLogger{})

	_, err := uc.Undo(context.Background(), uuid.New(), uuid.New(), "acme")

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrCloneLogNotFound)
	assert.Nil(t, products.deletedIDs, "nothing may be deleted without the audit trail")
}

func strPtr(s string) *string {
	return &s
}
