package v1

import (
	"github.com/mercatto/catalog-sync/internal/infrastructure"
	"github.com/mercatto/catalog-sync/internal/usecase"
	"github.com/mercatto/catalog-sync/pkg/logger"
)

type V1 struct {
	sync      usecase.SyncUseCase
	clone     usecase.CloneUseCase
	cleanup   usecase.CleanupUseCase
	publisher infrastructure.EventPublisher
	logger    logger.Interface
}
