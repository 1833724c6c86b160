package v1

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mercatto/catalog-sync/internal/controller/restapi/v1/response"
	"github.com/mercatto/catalog-sync/internal/dto"
)

type forkImageRequest struct {
	SourcePath     string `json:"source_path"`
	TargetTenantID string `json:"target_tenant_id"`
	EntityID       string `json:"entity_id"`
	BrandID        string `json:"brand_id"`
	AssetKind      string `json:"asset_kind"`
}

// forkImage publishes the fork event and returns; the actual copy runs on the
// worker side. With entity_id the fork repoints a gallery row, with brand_id
// only the brand asset object is copied.
func (r *V1) forkImage(ctx *fiber.Ctx) error {
	var req forkImageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	if req.SourcePath == "" {
		return errorResponse(ctx, http.StatusBadRequest, "source_path is required")
	}

	targetTenantID, err := uuid.Parse(req.TargetTenantID)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid target_tenant_id")
	}

	switch {
	case req.EntityID != "":
		entityID, err := uuid.Parse(req.EntityID)
		if err != nil {
			return errorResponse(ctx, http.StatusBadRequest, "invalid entity_id")
		}

		err = r.publisher.PublishForkRequested(ctx.UserContext(), dto.ForkRequested{
			SourcePath:     req.SourcePath,
			TargetTenantID: targetTenantID,
			EntityID:       entityID,
			AssetKind:      req.AssetKind,
		})
		if err != nil {
			r.logger.Error(err, "restapi - v1 - forkImage")

			return errorResponse(ctx, http.StatusInternalServerError, "could not enqueue fork")
		}

		return ctx.Status(http.StatusAccepted).JSON(response.ForkAccepted{
			EventType: string(dto.EventForkRequested),
			Status:    "accepted",
		})

	case req.BrandID != "":
		brandID, err := uuid.Parse(req.BrandID)
		if err != nil {
			return errorResponse(ctx, http.StatusBadRequest, "invalid brand_id")
		}

		err = r.publisher.PublishBrandCopyRequested(ctx.UserContext(), dto.BrandCopyRequested{
			SourcePath:     req.SourcePath,
			TargetTenantID: targetTenantID,
			BrandID:        brandID,
			AssetKind:      req.AssetKind,
		})
		if err != nil {
			r.logger.Error(err, "restapi - v1 - forkImage")

			return errorResponse(ctx, http.StatusInternalServerError, "could not enqueue brand copy")
		}

		return ctx.Status(http.StatusAccepted).JSON(response.ForkAccepted{
			EventType: string(dto.EventBrandCopyRequested),
			Status:    "accepted",
		})

	default:
		return errorResponse(ctx, http.StatusBadRequest, "entity_id or brand_id is required")
	}
}
