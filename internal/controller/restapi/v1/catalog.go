package v1

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mercatto/catalog-sync/internal/controller/restapi/v1/response"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
)

type cloneRequest struct {
	SourceTenantID string `json:"source_tenant_id"`
	TargetTenantID string `json:"target_tenant_id"`
	Brand          string `json:"brand"`
}

func (r *V1) cloneCatalog(ctx *fiber.Ctx) error {
	var req cloneRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	source, target, msg := req.tenantPair()
	if msg != "" {
		return errorResponse(ctx, http.StatusBadRequest, msg)
	}

	cloned, err := r.clone.Clone(ctx.UserContext(), source, target, req.Brand)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - cloneCatalog")

		return errorResponse(ctx, http.StatusInternalServerError, "clone failed")
	}

	return ctx.Status(http.StatusOK).JSON(response.CloneResult{ClonedCount: cloned})
}

func (r *V1) undoClone(ctx *fiber.Ctx) error {
	var req cloneRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	source, target, msg := req.tenantPair()
	if msg != "" {
		return errorResponse(ctx, http.StatusBadRequest, msg)
	}

	removed, err := r.clone.Undo(ctx.UserContext(), source, target, req.Brand)
	if err != nil {
		if errors.Is(err, errs.ErrCloneLogNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "no clone to undo for this pair")
		}
		r.logger.Error(err, "restapi - v1 - undoClone")

		return errorResponse(ctx, http.StatusInternalServerError, "undo failed")
	}

	return ctx.Status(http.StatusOK).JSON(response.UndoCloneResult{RemovedCount: removed})
}

// tenantPair validates the request and returns a non-empty message on the
// first violation.
func (req cloneRequest) tenantPair() (uuid.UUID, uuid.UUID, string) {
	source, err := uuid.Parse(req.SourceTenantID)
	if err != nil {
		return uuid.Nil, uuid.Nil, "invalid source_tenant_id"
	}

	target, err := uuid.Parse(req.TargetTenantID)
	if err != nil {
		return uuid.Nil, uuid.Nil, "invalid target_tenant_id"
	}

	if req.Brand == "" {
		return uuid.Nil, uuid.Nil, "brand is required"
	}

	return source, target, ""
}
