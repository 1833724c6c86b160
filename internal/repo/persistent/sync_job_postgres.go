package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mercatto/catalog-sync/internal/entity"
	"github.com/mercatto/catalog-sync/pkg/postgres"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
)

const (
	// Table
	syncJobsTable = "sync_jobs"

	// Columns
	jobIDColumn         = "id"
	jobTenantIDColumn   = "tenant_id"
	totalCountColumn    = "total_count"
	completedColumn     = "completed_count"
	jobStatusColumn     = "status"
	jobCreatedAtColumn  = "created_at"
	jobFinishedAtColumn = "finished_at"
)

type SyncJobRepo struct {
	*postgres.Postgres
}

func NewSyncJobRepo(pg *postgres.Postgres) *SyncJobRepo {
	return &SyncJobRepo{pg}
}

func (r *SyncJobRepo) Create(ctx context.Context, job *entity.SyncJob) error {
	sql, args, err := r.Builder.
		Insert(syncJobsTable).
		Columns(
			jobIDColumn,
			jobTenantIDColumn,
			totalCountColumn,
			completedColumn,
			jobStatusColumn,
			jobCreatedAtColumn,
		).
		Values(
			job.ID,
			job.TenantID,
			job.TotalCount,
			job.CompletedCount,
			job.Status,
			job.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("SyncJobRepo - Create - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("SyncJobRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *SyncJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.SyncJob, error) {
	sql, args, err := r.Builder.
		Select(
			jobIDColumn,
			jobTenantIDColumn,
			totalCountColumn,
			completedColumn,
			jobStatusColumn,
			jobCreatedAtColumn,
			jobFinishedAtColumn,
		).
		From(syncJobsTable).
		Where(squirrel.Eq{jobIDColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("SyncJobRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var job entity.SyncJob
	err = executor.QueryRow(ctx, sql, args...).Scan(
		&job.ID,
		&job.TenantID,
		&job.TotalCount,
		&job.CompletedCount,
		&job.Status,
		&job.CreatedAt,
		&job.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("SyncJobRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("SyncJobRepo - GetByID - executor.QueryRow: %w", err)
	}

	return &job, nil
}

func (r *SyncJobRepo) SetTotal(ctx context.Context, id uuid.UUID, total int) error {
	return r.update(ctx, "SetTotal", id, func(q squirrel.UpdateBuilder) squirrel.UpdateBuilder {
		return q.Set(totalCountColumn, total)
	})
}

func (r *SyncJobRepo) IncrementCompleted(ctx context.Context, id uuid.UUID, delta int) error {
	return r.update(ctx, "IncrementCompleted", id, func(q squirrel.UpdateBuilder) squirrel.UpdateBuilder {
		return q.Set(completedColumn, squirrel.Expr(completedColumn+" + ?", delta))
	})
}

func (r *SyncJobRepo) Finish(ctx context.Context, id uuid.UUID, status entity.JobStatus) error {
	return r.update(ctx, "Finish", id, func(q squirrel.UpdateBuilder) squirrel.UpdateBuilder {
		return q.Set(jobStatusColumn, status).Set(jobFinishedAtColumn, squirrel.Expr("now()"))
	})
}

func (r *SyncJobRepo) update(ctx context.Context, method string, id uuid.UUID, set func(squirrel.UpdateBuilder) squirrel.UpdateBuilder) error {
	sql, args, err := set(r.Builder.Update(syncJobsTable)).
		Where(squirrel.Eq{jobIDColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("SyncJobRepo - %s - r.Builder.ToSql: %w", method, err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("SyncJobRepo - %s - executor.Exec: %w", method, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("SyncJobRepo - %s: %w", method, errs.ErrRecordNotFound)
	}

	return nil
}
