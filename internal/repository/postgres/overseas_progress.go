package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wanbao-hr/agency-api/internal/model"
	"github.com/wanbao-hr/agency-api/internal/repository"
)

type overseasProgressRepository struct {
	BaseRepository
}

func NewOverseasProgressRepository(base BaseRepository) repository.OverseasProgressRepository {
	return &overseasProgressRepository{base}
}

const overseasProgressColumns = `
	op.id, op.candidate_id,
	op.medical_exam_date, op.medical_exam_result, op.medical_exam_remark,
	op.police_check_date, op.police_check_status, op.police_check_remark,
	op.passport_checked, op.passport_expiry_ok, op.passport_remark,
	op.arc_checked, op.arc_has_issues, op.arc_remark,
	op.overall_status, op.created_at, op.updated_at,
	c.name AS candidate_name, c.english_name AS candidate_english_name,
	c.passport_no AS candidate_passport_no
`

func (r *overseasProgressRepository) GetByCandidateID(ctx context.Context, candidateID uuid.UUID) (*model.OverseasProgress, error) {
	query := `
		SELECT ` + overseasProgressColumns + `
		FROM overseas_progress op
		JOIN candidates c ON c.id = op.candidate_id
		WHERE op.candidate_id = $1
	`
	var progress model.OverseasProgress
	if err := r.GetDB().GetContext(ctx, &progress, query, candidateID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get overseas progress: %w", err)
	}
	return &progress, nil
}

func (r *overseasProgressRepository) Upsert(ctx context.Context, progress *model.OverseasProgress) error {
	query := `
		INSERT INTO overseas_progress (
			id, candidate_id,
			medical_exam_date, medical_exam_result, medical_exam_remark,
			police_check_date, police_check_status, police_check_remark,
			passport_checked, passport_expiry_ok, passport_remark,
			arc_checked, arc_has_issues, arc_remark,
			overall_status, created_at, updated_at
		) VALUES (
			:id, :candidate_id,
			:medical_exam_date, :medical_exam_result, :medical_exam_remark,
			:police_check_date, :police_check_status, :police_check_remark,
			:passport_checked, :passport_expiry_ok, :passport_remark,
			:arc_checked, :arc_has_issues, :arc_remark,
			:overall_status, :created_at, :updated_at
		)
		ON CONFLICT (candidate_id) DO UPDATE SET
			medical_exam_date = EXCLUDED.medical_exam_date,
			medical_exam_result = EXCLUDED.medical_exam_result,
			medical_exam_remark = EXCLUDED.medical_exam_remark,
			police_check_date = EXCLUDED.police_check_date,
			police_check_status = EXCLUDED.police_check_status,
			police_check_remark = EXCLUDED.police_check_remark,
			passport_checked = EXCLUDED.passport_checked,
			passport_expiry_ok = EXCLUDED.passport_expiry_ok,
			passport_remark = EXCLUDED.passport_remark,
			arc_checked = EXCLUDED.arc_checked,
			arc_has_issues = EXCLUDED.arc_has_issues,
			arc_remark = EXCLUDED.arc_remark,
			overall_status = EXCLUDED.overall_status,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.GetDB().NamedExecContext(ctx, query, progress); err != nil {
		return fmt.Errorf("failed to upsert overseas progress: %w", err)
	}
	return nil
}

func (r *overseasProgressRepository) List(ctx context.Context, filters *model.OverseasProgressFilters, page model.Pagination) ([]*model.OverseasProgress, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if filters != nil {
		if filters.Status != "" {
			where += fmt.Sprintf(" AND op.overall_status = $%d", len(args)+1)
			args = append(args, filters.Status)
		}
		if filters.Search != "" {
			where += fmt.Sprintf(" AND (c.name ILIKE $%d OR c.english_name ILIKE $%d OR c.passport_no ILIKE $%d)",
				len(args)+1, len(args)+1, len(args)+1)
			args = append(args, "%"+filters.Search+"%")
		}
	}

	countQuery := `
		SELECT COUNT(*)
		FROM overseas_progress op
		JOIN candidates c ON c.id = op.candidate_id
	` + where
	var total int
	if err := r.GetDB().GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count overseas progress: %w", err)
	}

	query := `
		SELECT ` + overseasProgressColumns + `
		FROM overseas_progress op
		JOIN candidates c ON c.id = op.candidate_id
	` + where + fmt.Sprintf(" ORDER BY op.updated_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset())

	var records []*model.OverseasProgress
	if err := r.GetDB().SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list overseas progress: %w", err)
	}
	return records, total, nil
}
