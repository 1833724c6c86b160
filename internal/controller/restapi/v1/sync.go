package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mercatto/catalog-sync/internal/controller/restapi/v1/response"
	"github.com/mercatto/catalog-sync/internal/dto"
	"github.com/mercatto/catalog-sync/internal/entity"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
)

type runBatchSyncRequest struct {
	TenantID string `json:"tenant_id"`
	Brand    string `json:"brand"`
	Status   string `json:"status"`
}

func (r *V1) runBatchSync(ctx *fiber.Ctx) error {
	var req runBatchSyncRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid tenant_id")
	}

	job, err := r.sync.RunBatch(ctx.UserContext(), tenantID, dto.SyncFilters{
		Brand:  req.Brand,
		Status: req.Status,
	})
	if err != nil {
		r.logger.Error(err, "restapi - v1 - runBatchSync")

		return errorResponse(ctx, http.StatusInternalServerError, "could not start sync")
	}

	return ctx.Status(http.StatusAccepted).JSON(jobResponse(job))
}

func (r *V1) reprocessProduct(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	job, err := r.sync.ReprocessProduct(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "product not found")
		}
		r.logger.Error(err, "restapi - v1 - reprocessProduct")

		return errorResponse(ctx, http.StatusInternalServerError, "could not start reprocess")
	}

	return ctx.Status(http.StatusAccepted).JSON(jobResponse(job))
}

type reprocessFailedRequest struct {
	TenantID string `json:"tenant_id"`
	Brand    string `json:"brand"`
}

func (r *V1) reprocessFailed(ctx *fiber.Ctx) error {
	var req reprocessFailedRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid tenant_id")
	}

	job, err := r.sync.ReprocessFailed(ctx.UserContext(), tenantID, req.Brand)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - reprocessFailed")

		return errorResponse(ctx, http.StatusInternalServerError, "could not start reprocess")
	}

	return ctx.Status(http.StatusAccepted).JSON(jobResponse(job))
}

func (r *V1) getJob(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	job, err := r.sync.GetJob(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "job not found")
		}
		r.logger.Error(err, "restapi - v1 - getJob")

		return errorResponse(ctx, http.StatusInternalServerError, "could not load job")
	}

	return ctx.Status(http.StatusOK).JSON(jobResponse(job))
}

func jobResponse(job *entity.SyncJob) response.SyncJob {
	resp := response.SyncJob{
		JobID:          job.ID.String(),
		TenantID:       job.TenantID.String(),
		Status:         string(job.Status),
		TotalCount:     job.TotalCount,
		CompletedCount: job.CompletedCount,
		CreatedAt:      job.CreatedAt.Format(time.RFC3339),
	}
	if job.FinishedAt != nil {
		resp.FinishedAt = job.FinishedAt.Format(time.RFC3339)
	}

	return resp
}
