package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mercatto/catalog-sync/internal/infrastructure"
	"github.com/mercatto/catalog-sync/internal/usecase"
	"github.com/mercatto/catalog-sync/pkg/logger"
)

func NewCatalogRoutes(
	apiV1Group fiber.Router,
	syncUC usecase.SyncUseCase,
	cloneUC usecase.CloneUseCase,
	cleanupUC usecase.CleanupUseCase,
	publisher infrastructure.EventPublisher,
	l logger.Interface,
) {
	r := &V1{
		sync:      syncUC,
		clone:     cloneUC,
		cleanup:   cleanupUC,
		publisher: publisher,
		logger:    l,
	}

	{
		// sync
		apiV1Group.Post("/sync/products", r.runBatchSync)
		apiV1Group.Post("/sync/products/:id/reprocess", r.reprocessProduct)
		apiV1Group.Post("/sync/reprocess-failed", r.reprocessFailed)
		apiV1Group.Get("/sync/jobs/:id", r.getJob)

		// copy-on-write fork
		apiV1Group.Post("/images/fork", r.forkImage)

		// cross-tenant clone
		apiV1Group.Post("/catalog/clone", r.cloneCatalog)
		apiV1Group.Post("/catalog/clone/undo", r.undoClone)

		// storage maintenance
		apiV1Group.Post("/storage/cleanup", r.cleanupStorage)
		apiV1Group.Post("/storage/delete", r.safeDelete)
	}
}
