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

type medicalExceptionRepository struct {
	BaseRepository
}

func NewMedicalExceptionRepository(base BaseRepository) repository.MedicalExceptionRepository {
	return &medicalExceptionRepository{base}
}

const medicalExceptionColumns = `
	me.id, me.worker_id, me.health_check_id, me.diagnosis_date, me.disease_type, me.description,
	me.health_dept_notified, me.health_dept_notify_date,
	me.employer_notified, me.employer_notify_date,
	me.treatment_status, me.resolution_date, me.remarks,
	me.created_at, me.updated_at,
	w.name AS worker_name, w.english_name AS worker_english_name
`

func (r *medicalExceptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalException, error) {
	query := `
		SELECT ` + medicalExceptionColumns + `
		FROM medical_exceptions me
		JOIN workers w ON w.id = me.worker_id
		WHERE me.id = $1
	`
	var exc model.MedicalException
	if err := r.GetDB().GetContext(ctx, &exc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get medical exception: %w", err)
	}
	return &exc, nil
}

func (r *medicalExceptionRepository) Create(ctx context.Context, exc *model.MedicalException) error {
	query := `
		INSERT INTO medical_exceptions (
			id, worker_id, health_check_id, diagnosis_date, disease_type, description,
			health_dept_notified, health_dept_notify_date,
			employer_notified, employer_notify_date,
			treatment_status, resolution_date, remarks,
			created_at, updated_at
		) VALUES (
			:id, :worker_id, :health_check_id, :diagnosis_date, :disease_type, :description,
			:health_dept_notified, :health_dept_notify_date,
			:employer_notified, :employer_notify_date,
			:treatment_status, :resolution_date, :remarks,
			:created_at, :updated_at
		)
	`
	if _, err := r.GetDB().NamedExecContext(ctx, query, exc); err != nil {
		return fmt.Errorf("failed to create medical exception: %w", err)
	}
	return nil
}

func (r *medicalExceptionRepository) Update(ctx context.Context, exc *model.MedicalException) error {
	query := `
		UPDATE medical_exceptions SET
			disease_type = :disease_type,
			description = :description,
			health_dept_notified = :health_dept_notified,
			health_dept_notify_date = :health_dept_notify_date,
			employer_notified = :employer_notified,
			employer_notify_date = :employer_notify_date,
			treatment_status = :treatment_status,
			resolution_date = :resolution_date,
			remarks = :remarks,
			updated_at = :updated_at
		WHERE id = :id
	`
	result, err := r.GetDB().NamedExecContext(ctx, query, exc)
	if err != nil {
		return fmt.Errorf("failed to update medical exception: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("medical exception", nil)
	}
	return nil
}

func (r *medicalExceptionRepository) List(ctx context.Context, filters *model.MedicalExceptionFilters, page model.Pagination) ([]*model.MedicalException, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if filters != nil {
		if filters.TreatmentStatus != "" {
			where += fmt.Sprintf(" AND me.treatment_status = $%d", len(args)+1)
			args = append(args, filters.TreatmentStatus)
		}
		if filters.DiseaseType != "" {
			where += fmt.Sprintf(" AND me.disease_type = $%d", len(args)+1)
			args = append(args, filters.DiseaseType)
		}
		if filters.Search != "" {
			where += fmt.Sprintf(" AND (w.name ILIKE $%d OR w.english_name ILIKE $%d)", len(args)+1, len(args)+1)
			args = append(args, "%"+filters.Search+"%")
		}
	}

	countQuery := `
		SELECT COUNT(*)
		FROM medical_exceptions me
		JOIN workers w ON w.id = me.worker_id
	` + where
	var total int
	if err := r.GetDB().GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count medical exceptions: %w", err)
	}

	query := `
		SELECT ` + medicalExceptionColumns + `
		FROM medical_exceptions me
		JOIN workers w ON w.id = me.worker_id
	` + where + fmt.Sprintf(" ORDER BY me.diagnosis_date DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset())

	var records []*model.MedicalException
	if err := r.GetDB().SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list medical exceptions: %w", err)
	}
	return records, total, nil
}

func (r *medicalExceptionRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.GetDB().GetContext(ctx, &count, `SELECT COUNT(*) FROM medical_exceptions`); err != nil {
		return 0, fmt.Errorf("failed to count medical exceptions: %w", err)
	}
	return count, nil
}

func (r *medicalExceptionRepository) CountByTreatmentStatus(ctx context.Context, status model.TreatmentStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM medical_exceptions WHERE treatment_status = $1`
	if err := r.GetDB().GetContext(ctx, &count, query, status); err != nil {
		return 0, fmt.Errorf("failed to count medical exceptions by status: %w", err)
	}
	return count, nil
}
