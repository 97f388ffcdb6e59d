package entryfiling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanbao-hr/agency-api/internal/model"
	"github.com/wanbao-hr/agency-api/internal/service/compliance"
	apperrors "github.com/wanbao-hr/agency-api/pkg/errors"
)

type fakeWorkerRepo struct {
	workers map[uuid.UUID]*model.Worker
}

func (r *fakeWorkerRepo) Get(_ context.Context, id uuid.UUID) (*model.Worker, error) {
	w, ok := r.workers[id]
	if !ok {
		return nil, apperrors.NotFound("worker", nil)
	}
	return w, nil
}

type fakeFilingRepo struct {
	filings map[uuid.UUID]*model.EntryFiling
}

func newFakeFilingRepo() *fakeFilingRepo {
	return &fakeFilingRepo{filings: make(map[uuid.UUID]*model.EntryFiling)}
}

func (r *fakeFilingRepo) GetByWorkerID(_ context.Context, workerID uuid.UUID) (*model.EntryFiling, error) {
	f, ok := r.filings[workerID]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFilingRepo) Upsert(_ context.Context, filing *model.EntryFiling) error {
	cp := *filing
	r.filings[filing.WorkerID] = &cp
	return nil
}

func (r *fakeFilingRepo) List(_ context.Context, _ *model.EntryFilingFilters, _ model.Pagination) ([]*model.EntryFiling, int, error) {
	out := make([]*model.EntryFiling, 0, len(r.filings))
	for _, f := range r.filings {
		out = append(out, f)
	}
	return out, len(out), nil
}

func (r *fakeFilingRepo) CountAll(_ context.Context) (int, error) {
	return len(r.filings), nil
}

func (r *fakeFilingRepo) CountByCompliance(_ context.Context, status compliance.Status) (int, error) {
	n := 0
	for _, f := range r.filings {
		if f.OverallCompliance == status {
			n++
		}
	}
	return n, nil
}

func newTestService(now time.Time) (*Service, *fakeFilingRepo, uuid.UUID) {
	workerID := uuid.New()
	workerRepo := &fakeWorkerRepo{workers: map[uuid.UUID]*model.Worker{
		workerID: {Name: "阮氏梅", EnglishName: "NGUYEN THI MAI"},
	}}
	repo := newFakeFilingRepo()
	svc := NewService(repo, workerRepo)
	svc.now = func() time.Time { return now }
	return svc, repo, workerID
}

func strPtr(s string) *string { return &s }

func TestGetReturnsDefaultStubWhenNothingFiled(t *testing.T) {
	now := time.Date(2025, 6, 21, 10, 0, 0, 0, time.UTC)
	svc, _, workerID := newTestService(now)

	filing, err := svc.Get(context.Background(), workerID)
	require.NoError(t, err)

	assert.Equal(t, workerID, filing.WorkerID)
	assert.Nil(t, filing.EntryDate)
	assert.Equal(t, compliance.StatusPending, filing.EntryReportStatus)
	assert.Equal(t, compliance.StatusPending, filing.InitialExamStatus)
	assert.Equal(t, compliance.StatusPending, filing.ArcStatus)
	assert.Equal(t, compliance.StatusPending, filing.PermitStatus)
	assert.Equal(t, compliance.StatusPending, filing.OverallCompliance)
	assert.Equal(t, "阮氏梅", filing.WorkerName)
}

func TestGetUnknownWorker(t *testing.T) {
	now := time.Date(2025, 6, 21, 10, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpsertAllDeadlinesBreached(t *testing.T) {
	now := time.Date(2025, 6, 21, 10, 0, 0, 0, time.UTC)
	svc, _, workerID := newTestService(now)

	// Entered 20 days ago, nothing filed since.
	filing, err := svc.Upsert(context.Background(), workerID, &model.UpsertEntryFilingRequest{
		EntryDate: "2025-06-01",
	})
	require.NoError(t, err)

	assert.Equal(t, compliance.StatusOverdue, filing.EntryReportStatus)
	assert.Equal(t, compliance.StatusOverdue, filing.InitialExamStatus)
	assert.Equal(t, compliance.StatusOverdue, filing.ArcStatus)
	assert.Equal(t, compliance.StatusOverdue, filing.PermitStatus)
	assert.Equal(t, compliance.StatusOverdue, filing.OverallCompliance)
}

func TestUpsertEvidenceEverywhereIsCompliant(t *testing.T) {
	now := time.Date(2025, 6, 21, 10, 0, 0, 0, time.UTC)
	svc, repo, workerID := newTestService(now)

	// Receipts and a passed exam override the 20 elapsed days entirely.
	filing, err := svc.Upsert(context.Background(), workerID, &model.UpsertEntryFilingRequest{
		EntryDate:         "2025-06-01",
		EntryReportRefNo:  strPtr("NIA-2025-0601"),
		InitialExamResult: strPtr("PASS"),
		ArcNo:             strPtr("AC12345678"),
		PermitNo:          strPtr("WP-990011"),
	})
	require.NoError(t, err)

	assert.Equal(t, compliance.StatusCompliant, filing.EntryReportStatus)
	assert.Equal(t, compliance.StatusCompliant, filing.InitialExamStatus)
	assert.Equal(t, compliance.StatusCompliant, filing.ArcStatus)
	assert.Equal(t, compliance.StatusCompliant, filing.PermitStatus)
	assert.Equal(t, compliance.StatusCompliant, filing.OverallCompliance)

	stored, err := repo.GetByWorkerID(context.Background(), workerID)
	require.NoError(t, err)
	assert.Equal(t, compliance.StatusCompliant, stored.OverallCompliance)
}

func TestUpsertWarningWindow(t *testing.T) {
	now := time.Date(2025, 6, 21, 10, 0, 0, 0, time.UTC)
	svc, _, workerID := newTestService(now)

	// 14 days in: the 3-day items carry evidence, the 15-day items enter
	// the warning window.
	filing, err := svc.Upsert(context.Background(), workerID, &model.UpsertEntryFilingRequest{
		EntryDate:         "2025-06-07",
		EntryReportRefNo:  strPtr("NIA-2025-0607"),
		InitialExamResult: strPtr("PASS"),
	})
	require.NoError(t, err)

	assert.Equal(t, compliance.StatusWarning, filing.ArcStatus)
	assert.Equal(t, compliance.StatusWarning, filing.PermitStatus)
	assert.Equal(t, compliance.StatusWarning, filing.OverallCompliance)
}

func TestUpsertEntryDateImmutable(t *testing.T) {
	now := time.Date(2025, 6, 21, 10, 0, 0, 0, time.UTC)
	svc, _, workerID := newTestService(now)

	first, err := svc.Upsert(context.Background(), workerID, &model.UpsertEntryFilingRequest{
		EntryDate: "2025-06-01",
	})
	require.NoError(t, err)
	require.NotNil(t, first.EntryDate)

	second, err := svc.Upsert(context.Background(), workerID, &model.UpsertEntryFilingRequest{
		EntryDate: "2025-06-10",
		FlightNo:  strPtr("BR392"),
	})
	require.NoError(t, err)

	assert.Equal(t, *first.EntryDate, *second.EntryDate)
	assert.Equal(t, "BR392", *second.FlightNo)
}

func TestUpsertRejectsMalformedDate(t *testing.T) {
	now := time.Date(2025, 6, 21, 10, 0, 0, 0, time.UTC)
	svc, _, workerID := newTestService(now)

	_, err := svc.Upsert(context.Background(), workerID, &model.UpsertEntryFilingRequest{
		EntryDate:       "2025-06-01",
		EntryReportDate: strPtr("06/15/2025"),
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.NotEmpty(t, appErr.Details)
}

func TestDashboardEmptyStore(t *testing.T) {
	now := time.Date(2025, 6, 21, 10, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)

	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, dashboard.Total)
	assert.Equal(t, 0, dashboard.ComplianceRate)
}

func TestDashboardRoundsComplianceRate(t *testing.T) {
	now := time.Date(2025, 6, 21, 10, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestService(now)

	for _, status := range []compliance.Status{
		compliance.StatusCompliant,
		compliance.StatusCompliant,
		compliance.StatusOverdue,
	} {
		repo.filings[uuid.New()] = &model.EntryFiling{
			Base:              model.Base{ID: uuid.New()},
			OverallCompliance: status,
		}
	}

	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, dashboard.Total)
	assert.Equal(t, 2, dashboard.Compliant)
	assert.Equal(t, 1, dashboard.Overdue)
	assert.Equal(t, 67, dashboard.ComplianceRate)
}
