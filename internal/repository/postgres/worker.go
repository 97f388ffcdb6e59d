package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wanbao-hr/agency-api/internal/model"
	"github.com/wanbao-hr/agency-api/internal/repository"
	apperrors "github.com/wanbao-hr/agency-api/pkg/errors"
)

type workerRepository struct {
	BaseRepository
}

func NewWorkerRepository(base BaseRepository) repository.WorkerRepository {
	return &workerRepository{base}
}

func (r *workerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	query := `
		SELECT id, name, english_name, nationality, status, created_at, updated_at
		FROM workers
		WHERE id = $1
	`
	var worker model.Worker
	if err := r.GetDB().GetContext(ctx, &worker, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("worker", err)
		}
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return &worker, nil
}

type candidateRepository struct {
	BaseRepository
}

func NewCandidateRepository(base BaseRepository) repository.CandidateRepository {
	return &candidateRepository{base}
}

func (r *candidateRepository) Get(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	query := `
		SELECT id, name, english_name, passport_no, passport_expiry, nationality, created_at, updated_at
		FROM candidates
		WHERE id = $1
	`
	var candidate model.Candidate
	if err := r.GetDB().GetContext(ctx, &candidate, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("candidate", err)
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return &candidate, nil
}
