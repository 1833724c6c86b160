package restapi

import (
	"github.com/gofiber/fiber/v2"
	v1 "github.com/mercatto/catalog-sync/internal/controller/restapi/v1"
	"github.com/mercatto/catalog-sync/internal/infrastructure"
	"github.com/mercatto/catalog-sync/internal/usecase"
	"github.com/mercatto/catalog-sync/pkg/logger"
)

func NewRouter(
	app *fiber.App,
	syncUC usecase.SyncUseCase,
	cloneUC usecase.CloneUseCase,
	cleanupUC usecase.CleanupUseCase,
	publisher infrastructure.EventPublisher,
	l logger.Interface,
) {
	apiV1Group := app.Group("/v1")
	{
		v1.NewCatalogRoutes(apiV1Group, syncUC, cloneUC, cleanupUC, publisher, l)
	}
}
