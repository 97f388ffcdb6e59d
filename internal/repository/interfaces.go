package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wanbao-hr/agency-api/internal/model"
	"github.com/wanbao-hr/agency-api/internal/service/compliance"
)

// WorkerRepository reads worker identity for display joins. Never mutated
// by the compliance subsystem.
type WorkerRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Worker, error)
}

// CandidateRepository reads candidate identity and passport data.
type CandidateRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
}

// EntryFilingRepository stores one filing record per worker. GetByWorkerID
// returns (nil, nil) when no record exists: absence is an expected state the
// service turns into a default stub, not an error.
type EntryFilingRepository interface {
	GetByWorkerID(ctx context.Context, workerID uuid.UUID) (*model.EntryFiling, error)
	Upsert(ctx context.Context, filing *model.EntryFiling) error
	List(ctx context.Context, filters *model.EntryFilingFilters, page model.Pagination) ([]*model.EntryFiling, int, error)
	CountAll(ctx context.Context) (int, error)
	CountByCompliance(ctx context.Context, status compliance.Status) (int, error)
}

// OverseasProgressRepository stores one progress record per candidate; same
// (nil, nil) absence contract as EntryFilingRepository.
type OverseasProgressRepository interface {
	GetByCandidateID(ctx context.Context, candidateID uuid.UUID) (*model.OverseasProgress, error)
	Upsert(ctx context.Context, progress *model.OverseasProgress) error
	List(ctx context.Context, filters *model.OverseasProgressFilters, page model.Pagination) ([]*model.OverseasProgress, int, error)
}

// MedicalExceptionRepository stores reportable-disease cases, many per worker.
type MedicalExceptionRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.MedicalException, error)
	Create(ctx context.Context, exc *model.MedicalException) error
	Update(ctx context.Context, exc *model.MedicalException) error
	List(ctx context.Context, filters *model.MedicalExceptionFilters, page model.Pagination) ([]*model.MedicalException, int, error)
	CountAll(ctx context.Context) (int, error)
	CountByTreatmentStatus(ctx context.Context, status model.TreatmentStatus) (int, error)
}

// OutboxRepository stores integration events written in the request path and
// drained by the worker process. GetPendingEventsWithLock claims a batch
// under FOR UPDATE SKIP LOCKED so concurrent worker replicas never publish
// the same row twice.
type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
