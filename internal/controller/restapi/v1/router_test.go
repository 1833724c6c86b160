package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mercatto/catalog-sync/internal/dto"
	"github.com/mercatto/catalog-sync/internal/entity"
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

type syncStub struct {
	job    *entity.SyncJob
	getErr error
}

func (s *syncStub) RunBatch(_ context.Context, tenantID uuid.UUID, _ dto.SyncFilters) (*entity.SyncJob, error) {
	return &entity.SyncJob{ID: uuid.New(), TenantID: tenantID, Status: entity.JobProcessing}, nil
}

func (s *syncStub) GetJob(context.Context, uuid.UUID) (*entity.SyncJob, error) {
	return s.job, s.getErr
}

func (s *syncStub) ReprocessProduct(context.Context, uuid.UUID) (*entity.SyncJob, error) {
	return s.job, s.getErr
}

func (s *syncStub) ReprocessFailed(_ context.Context, tenantID uuid.UUID, _ string) (*entity.SyncJob, error) {
	return &entity.SyncJob{ID: uuid.New(), TenantID: tenantID, Status: entity.JobProcessing}, nil
}

func (s *syncStub) ProcessBacklog(context.Context, dto.SyncRequested) error { return nil }

type cloneStub struct {
	cloned  int
	removed int
	undoErr error
}

func (s *cloneStub) Clone(context.Context, uuid.UUID, uuid.UUID, string) (int, error) {
	return s.cloned, nil
}

func (s *cloneStub) Undo(context.Context, uuid.UUID, uuid.UUID, string) (int, error) {
	return s.removed, s.undoErr
}

type cleanupStub struct {
	orphans   []string
	inUse     map[string]bool
	deletions []string
}

func (s *cleanupStub) SafeDelete(_ context.Context, path string) error {
	if s.inUse[path] {
		return fmt.Errorf("2 references to %s: %w", path, errs.ErrImageInUse)
	}
	s.deletions = append(s.deletions, path)
	return nil
}

func (s *cleanupStub) FindOrphans(context.Context) ([]string, error) {
	return s.orphans, nil
}

func (s *cleanupStub) Cleanup(context.Context, bool) ([]string, int, error) {
	return s.orphans, 0, nil
}

type publisherStub struct {
	forks       []dto.ForkRequested
	brandCopies []dto.BrandCopyRequested
}

func (s *publisherStub) PublishSyncRequested(context.Context, dto.SyncRequested) error { return nil }

func (s *publisherStub) PublishForkRequested(_ context.Context, event dto.ForkRequested) error {
	s.forks = append(s.forks, event)
	return nil
}

func (s *publisherStub) PublishBrandCopyRequested(_ context.Context, event dto.BrandCopyRequested) error {
	s.brandCopies = append(s.brandCopies, event)
	return nil
}

func (s *publisherStub) Close() error { return nil }

func newTestApp(sync *syncStub, clone *cloneStub, cleanup *cleanupStub, publisher *publisherStub) *fiber.App {
	app := fiber.New()
	NewCatalogRoutes(app.Group("/v1"), sync, clone, cleanup, publisher, nopLogger{})
	return app
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestRunBatchSync(t *testing.T) {
	t.Parallel()

	app := newTestApp(&syncStub{}, &cloneStub{}, &cleanupStub{}, &publisherStub{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/v1/sync/products", map[string]string{
		"tenant_id": uuid.NewString(),
		"brand":     "acme",
	}))

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestRunBatchSync_InvalidTenant(t *testing.T) {
	t.Parallel()

	app := newTestApp(&syncStub{}, &cloneStub{}, &cleanupStub{}, &publisherStub{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/v1/sync/products", map[string]string{
		"tenant_id": "not-a-uuid",
	}))

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetJob(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	app := newTestApp(&syncStub{job: &entity.SyncJob{ID: jobID, Status: entity.JobDone}}, &cloneStub{}, &cleanupStub{}, &publisherStub{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/sync/jobs/"+jobID.String(), nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, jobID.String(), body["job_id"])
	assert.Equal(t, string(entity.JobDone), body["status"])
}

func TestGetJob_NotFound(t *testing.T) {
	t.Parallel()

	app := newTestApp(&syncStub{getErr: fmt.Errorf("wrap: %w", errs.ErrRecordNotFound)}, &cloneStub{}, &cleanupStub{}, &publisherStub{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/sync/jobs/"+uuid.NewString(), nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestForkImage_PublishesEvent(t *testing.T) {
	t.Parallel()

	publisher := &publisherStub{}
	app := newTestApp(&syncStub{}, &cloneStub{}, &cleanupStub{}, publisher)

	entityID := uuid.New()
	resp, err := app.Test(jsonRequest(http.MethodPost, "/v1/images/fork", map[string]string{
		"source_path":      "src/products/a.jpg",
		"target_tenant_id": uuid.NewString(),
		"entity_id":        entityID.String(),
	}))

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Len(t, publisher.forks, 1)
	assert.Equal(t, entityID, publisher.forks[0].EntityID)
	assert.Empty(t, publisher.brandCopies)
}

func TestForkImage_RequiresTarget(t *testing.T) {
	t.Parallel()

	app := newTestApp(&syncStub{}, &cloneStub{}, &cleanupStub{}, &publisherStub{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/v1/images/fork", map[string]string{
		"source_path":      "src/products/a.jpg",
		"target_tenant_id": uuid.NewString(),
	}))

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCloneCatalog(t *testing.T) {
	t.Parallel()

	app := newTestApp(&syncStub{}, &cloneStub{cloned: 7}, &cleanupStub{}, &publisherStub{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/v1/catalog/clone", map[string]string{
		"source_tenant_id": uuid.NewString(),
		"target_tenant_id": uuid.NewString(),
		"brand":            "acme",
	}))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.EqualValues(t, 7, body["cloned_count"])
}

func TestUndoClone_NoLog(t *testing.T) {
	t.Parallel()

	clone := &cloneStub{undoErr: fmt.Errorf("wrap: %w", errs.ErrCloneLogNotFound)}
	app := newTestApp(&syncStub{}, clone, &cleanupStub{}, &publisherStub{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/v1/catalog/clone/undo", map[string]string{
		"source_tenant_id": uuid.NewString(),
		"target_tenant_id": uuid.NewString(),
		"brand":            "acme",
	}))

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSafeDelete_PerPathResults(t *testing.T) {
	t.Parallel()

	cleanup := &cleanupStub{inUse: map[string]bool{"t1/used.jpg": true}}
	app := newTestApp(&syncStub{}, &cloneStub{}, cleanup, &publisherStub{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/v1/storage/delete", map[string][]string{
		"paths": {"t1/used.jpg", "t1/free.jpg"},
	}))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Results []struct {
			Path    string `json:"path"`
			Deleted bool   `json:"deleted"`
			Error   string `json:"error"`
		} `json:"results"`
	}
	decodeBody(t, resp, &body)

	require.Len(t, body.Results, 2)
	assert.False(t, body.Results[0].Deleted)
	assert.Equal(t, "image in use", body.Results[0].Error)
	assert.True(t, body.Results[1].Deleted)
	assert.Equal(t, []string{"t1/free.jpg"}, cleanup.deletions)
}
