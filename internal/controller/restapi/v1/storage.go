package v1

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/mercatto/catalog-sync/internal/controller/restapi/v1/response"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
)

func (r *V1) cleanupStorage(ctx *fiber.Ctx) error {
	dryRun := ctx.QueryBool("dry_run", true)

	orphans, deleted, err := r.cleanup.Cleanup(ctx.UserContext(), dryRun)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - cleanupStorage")

		return errorResponse(ctx, http.StatusInternalServerError, "cleanup failed")
	}

	if orphans == nil {
		orphans = []string{}
	}

	return ctx.Status(http.StatusOK).JSON(response.CleanupResult{
		DryRun:       dryRun,
		Orphans:      orphans,
		DeletedCount: deleted,
	})
}

type safeDeleteRequest struct {
	Paths []string `json:"paths"`
}

// safeDelete runs the reference check per path; a declined delete shows up in
// the per-path result, never as a request-level failure.
func (r *V1) safeDelete(ctx *fiber.Ctx) error {
	var req safeDeleteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	if len(req.Paths) == 0 {
		return errorResponse(ctx, http.StatusBadRequest, "paths is required")
	}

	results := make([]response.DeleteItem, 0, len(req.Paths))

	for _, path := range req.Paths {
		item := response.DeleteItem{Path: path, Deleted: true}

		err := r.cleanup.SafeDelete(ctx.UserContext(), path)
		switch {
		case errors.Is(err, errs.ErrImageInUse):
			item.Deleted = false
			item.Error = "image in use"
		case err != nil:
			r.logger.Error(err, "restapi - v1 - safeDelete")
			item.Deleted = false
			item.Error = "storage problems"
		}

		results = append(results, item)
	}

	return ctx.Status(http.StatusOK).JSON(response.DeleteResult{Results: results})
}
