package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wanbao-hr/agency-api/internal/model"
	"github.com/wanbao-hr/agency-api/internal/repository"
	"github.com/wanbao-hr/agency-api/internal/service/compliance"
)

type entryFilingRepository struct {
	BaseRepository
}

func NewEntryFilingRepository(base BaseRepository) repository.EntryFilingRepository {
	return &entryFilingRepository{base}
}

const entryFilingColumns = `
	ef.id, ef.worker_id, ef.entry_date, ef.flight_no, ef.visa_no,
	ef.entry_report_date, ef.entry_report_ref_no, ef.entry_report_status,
	ef.initial_exam_date, ef.initial_exam_hospital, ef.initial_exam_result, ef.initial_exam_status,
	ef.arc_apply_date, ef.arc_receipt_no, ef.arc_no, ef.arc_status,
	ef.permit_apply_date, ef.permit_receipt_no, ef.permit_no, ef.permit_status,
	ef.overall_compliance, ef.created_at, ef.updated_at,
	w.name AS worker_name, w.english_name AS worker_english_name
`

func (r *entryFilingRepository) GetByWorkerID(ctx context.Context, workerID uuid.UUID) (*model.EntryFiling, error) {
	query := `
		SELECT ` + entryFilingColumns + `
		FROM entry_filings ef
		JOIN workers w ON w.id = ef.worker_id
		WHERE ef.worker_id = $1
	`
	var filing model.EntryFiling
	if err := r.GetDB().GetContext(ctx, &filing, query, workerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get entry filing: %w", err)
	}
	return &filing, nil
}

// Upsert writes the merged record in one statement. Concurrent writers for
// the same worker resolve to last-write-wins with no partial-field state.
func (r *entryFilingRepository) Upsert(ctx context.Context, filing *model.EntryFiling) error {
	query := `
		INSERT INTO entry_filings (
			id, worker_id, entry_date, flight_no, visa_no,
			entry_report_date, entry_report_ref_no, entry_report_status,
			initial_exam_date, initial_exam_hospital, initial_exam_result, initial_exam_status,
			arc_apply_date, arc_receipt_no, arc_no, arc_status,
			permit_apply_date, permit_receipt_no, permit_no, permit_status,
			overall_compliance, created_at, updated_at
		) VALUES (
			:id, :worker_id, :entry_date, :flight_no, :visa_no,
			:entry_report_date, :entry_report_ref_no, :entry_report_status,
			:initial_exam_date, :initial_exam_hospital, :initial_exam_result, :initial_exam_status,
			:arc_apply_date, :arc_receipt_no, :arc_no, :arc_status,
			:permit_apply_date, :permit_receipt_no, :permit_no, :permit_status,
			:overall_compliance, :created_at, :updated_at
		)
		ON CONFLICT (worker_id) DO UPDATE SET
			entry_date = EXCLUDED.entry_date,
			flight_no = EXCLUDED.flight_no,
			visa_no = EXCLUDED.visa_no,
			entry_report_date = EXCLUDED.entry_report_date,
			entry_report_ref_no = EXCLUDED.entry_report_ref_no,
			entry_report_status = EXCLUDED.entry_report_status,
			initial_exam_date = EXCLUDED.initial_exam_date,
			initial_exam_hospital = EXCLUDED.initial_exam_hospital,
			initial_exam_result = EXCLUDED.initial_exam_result,
			initial_exam_status = EXCLUDED.initial_exam_status,
			arc_apply_date = EXCLUDED.arc_apply_date,
			arc_receipt_no = EXCLUDED.arc_receipt_no,
			arc_no = EXCLUDED.arc_no,
			arc_status = EXCLUDED.arc_status,
			permit_apply_date = EXCLUDED.permit_apply_date,
			permit_receipt_no = EXCLUDED.permit_receipt_no,
			permit_no = EXCLUDED.permit_no,
			permit_status = EXCLUDED.permit_status,
			overall_compliance = EXCLUDED.overall_compliance,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.GetDB().NamedExecContext(ctx, query, filing); err != nil {
		return fmt.Errorf("failed to upsert entry filing: %w", err)
	}
	return nil
}

func (r *entryFilingRepository) List(ctx context.Context, filters *model.EntryFilingFilters, page model.Pagination) ([]*model.EntryFiling, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if filters != nil {
		if filters.Status != "" {
			where += fmt.Sprintf(" AND ef.overall_compliance = $%d", len(args)+1)
			args = append(args, filters.Status)
		}
		if filters.Search != "" {
			where += fmt.Sprintf(" AND (w.name ILIKE $%d OR w.english_name ILIKE $%d)", len(args)+1, len(args)+1)
			args = append(args, "%"+filters.Search+"%")
		}
	}

	countQuery := `
		SELECT COUNT(*)
		FROM entry_filings ef
		JOIN workers w ON w.id = ef.worker_id
	` + where
	var total int
	if err := r.GetDB().GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count entry filings: %w", err)
	}

	query := `
		SELECT ` + entryFilingColumns + `
		FROM entry_filings ef
		JOIN workers w ON w.id = ef.worker_id
	` + where + fmt.Sprintf(" ORDER BY ef.entry_date DESC NULLS LAST LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset())

	var filings []*model.EntryFiling
	if err := r.GetDB().SelectContext(ctx, &filings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list entry filings: %w", err)
	}
	return filings, total, nil
}

func (r *entryFilingRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.GetDB().GetContext(ctx, &count, `SELECT COUNT(*) FROM entry_filings`); err != nil {
		return 0, fmt.Errorf("failed to count entry filings: %w", err)
	}
	return count, nil
}

func (r *entryFilingRepository) CountByCompliance(ctx context.Context, status compliance.Status) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM entry_filings WHERE overall_compliance = $1`
	if err := r.GetDB().GetContext(ctx, &count, query, status); err != nil {
		return 0, fmt.Errorf("failed to count entry filings by compliance: %w", err)
	}
	return count, nil
}
