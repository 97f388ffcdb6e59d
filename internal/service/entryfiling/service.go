package entryfiling

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/wanbao-hr/agency-api/internal/model"
	"github.com/wanbao-hr/agency-api/internal/repository"
	"github.com/wanbao-hr/agency-api/internal/service/compliance"
	apperrors "github.com/wanbao-hr/agency-api/pkg/errors"
)

const dashboardCacheKey = "entry_filing_dashboard"

type EntryFilingService interface {
	Get(ctx context.Context, workerID uuid.UUID) (*model.EntryFiling, error)
	Upsert(ctx context.Context, workerID uuid.UUID, req *model.UpsertEntryFilingRequest) (*model.EntryFiling, error)
	List(ctx context.Context, filters *model.EntryFilingFilters, page model.Pagination) ([]*model.EntryFiling, int, error)
	Dashboard(ctx context.Context) (*model.ComplianceDashboard, error)
}

type Service struct {
	repo       repository.EntryFilingRepository
	workerRepo repository.WorkerRepository
	cache      *gocache.Cache
	now        func() time.Time
}

func NewService(repo repository.EntryFilingRepository, workerRepo repository.WorkerRepository) *Service {
	return &Service{
		repo:       repo,
		workerRepo: workerRepo,
		cache:      gocache.New(30*time.Second, time.Minute),
		now:        time.Now,
	}
}

// Get returns the filing record for a worker, or a default PENDING stub when
// none exists yet. Absence is not an error: a worker with no filing simply
// has nothing filed.
func (s *Service) Get(ctx context.Context, workerID uuid.UUID) (*model.EntryFiling, error) {
	worker, err := s.workerRepo.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}

	filing, err := s.repo.GetByWorkerID(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry filing: %w", err)
	}
	if filing == nil {
		return s.defaultStub(workerID, worker), nil
	}
	return filing, nil
}

// Upsert merges the supplied fields over the stored record, recomputes every
// derived status and writes the result in one atomic statement. The entry
// date anchors all deadline math and is immutable once set.
func (s *Service) Upsert(ctx context.Context, workerID uuid.UUID, req *model.UpsertEntryFilingRequest) (*model.EntryFiling, error) {
	worker, err := s.workerRepo.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByWorkerID(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry filing: %w", err)
	}

	now := s.now()
	filing := existing
	if filing == nil {
		filing = &model.EntryFiling{
			Base:     model.Base{ID: uuid.New(), CreatedAt: now},
			WorkerID: workerID,
		}
	}

	if err := s.applyRequest(filing, req); err != nil {
		return nil, err
	}
	if filing.EntryDate == nil {
		return nil, apperrors.Validation("entry date is required", []string{"entry_date: required"})
	}

	s.deriveStatuses(filing, now)
	filing.UpdatedAt = now

	if err := s.repo.Upsert(ctx, filing); err != nil {
		return nil, fmt.Errorf("failed to upsert entry filing: %w", err)
	}
	s.cache.Delete(dashboardCacheKey)

	filing.WorkerName = worker.Name
	filing.WorkerEnglishName = worker.EnglishName
	return filing, nil
}

func (s *Service) List(ctx context.Context, filters *model.EntryFilingFilters, page model.Pagination) ([]*model.EntryFiling, int, error) {
	page.Normalize()
	return s.repo.List(ctx, filters, page)
}

// Dashboard runs four independent count queries; results are cached briefly
// since the landing page polls this endpoint.
func (s *Service) Dashboard(ctx context.Context) (*model.ComplianceDashboard, error) {
	if cached, ok := s.cache.Get(dashboardCacheKey); ok {
		return cached.(*model.ComplianceDashboard), nil
	}

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count filings: %w", err)
	}
	compliant, err := s.repo.CountByCompliance(ctx, compliance.StatusCompliant)
	if err != nil {
		return nil, fmt.Errorf("failed to count compliant filings: %w", err)
	}
	overdue, err := s.repo.CountByCompliance(ctx, compliance.StatusOverdue)
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue filings: %w", err)
	}
	pending, err := s.repo.CountByCompliance(ctx, compliance.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending filings: %w", err)
	}

	rate := 0
	if total > 0 {
		rate = int(math.Round(float64(compliant) / float64(total) * 100))
	}

	dashboard := &model.ComplianceDashboard{
		Total:          total,
		Compliant:      compliant,
		Overdue:        overdue,
		Pending:        pending,
		ComplianceRate: rate,
	}
	s.cache.Set(dashboardCacheKey, dashboard, gocache.DefaultExpiration)
	return dashboard, nil
}

func (s *Service) defaultStub(workerID uuid.UUID, worker *model.Worker) *model.EntryFiling {
	return &model.EntryFiling{
		WorkerID:          workerID,
		EntryReportStatus: compliance.StatusPending,
		InitialExamStatus: compliance.StatusPending,
		ArcStatus:         compliance.StatusPending,
		PermitStatus:      compliance.StatusPending,
		OverallCompliance: compliance.StatusPending,
		WorkerRef: model.WorkerRef{
			WorkerName:        worker.Name,
			WorkerEnglishName: worker.EnglishName,
		},
	}
}

func (s *Service) applyRequest(filing *model.EntryFiling, req *model.UpsertEntryFilingRequest) error {
	entryDate, err := parseDate(req.EntryDate)
	if err != nil {
		return err
	}
	// Immutable anchor: the first entry date recorded wins.
	if filing.EntryDate == nil {
		filing.EntryDate = &entryDate
	}

	if req.FlightNo != nil {
		filing.FlightNo = req.FlightNo
	}
	if req.VisaNo != nil {
		filing.VisaNo = req.VisaNo
	}

	if err := applyDate(&filing.EntryReportDate, req.EntryReportDate); err != nil {
		return err
	}
	if req.EntryReportRefNo != nil {
		filing.EntryReportRefNo = req.EntryReportRefNo
	}

	if err := applyDate(&filing.InitialExamDate, req.InitialExamDate); err != nil {
		return err
	}
	if req.InitialExamHospital != nil {
		filing.InitialExamHospital = req.InitialExamHospital
	}
	if req.InitialExamResult != nil {
		filing.InitialExamResult = req.InitialExamResult
	}

	if err := applyDate(&filing.ArcApplyDate, req.ArcApplyDate); err != nil {
		return err
	}
	if req.ArcReceiptNo != nil {
		filing.ArcReceiptNo = req.ArcReceiptNo
	}
	if req.ArcNo != nil {
		filing.ArcNo = req.ArcNo
	}

	if err := applyDate(&filing.PermitApplyDate, req.PermitApplyDate); err != nil {
		return err
	}
	if req.PermitReceiptNo != nil {
		filing.PermitReceiptNo = req.PermitReceiptNo
	}
	if req.PermitNo != nil {
		filing.PermitNo = req.PermitNo
	}

	return nil
}

func (s *Service) deriveStatuses(filing *model.EntryFiling, now time.Time) {
	daysElapsed := compliance.DaysSince(*filing.EntryDate, now)

	// The initial exam carries no receipt number; a PASS result is its
	// completion evidence.
	examCert := ""
	if filing.InitialExamResult != nil && *filing.InitialExamResult == string(model.ExamResultPass) {
		examCert = *filing.InitialExamResult
	}

	filing.EntryReportStatus = compliance.EvaluateItem(
		filing.EntryReportDate, deref(filing.EntryReportRefNo), "",
		daysElapsed, model.EntryReportDeadlineDays)
	filing.InitialExamStatus = compliance.EvaluateItem(
		filing.InitialExamDate, "", examCert,
		daysElapsed, model.InitialExamDeadlineDays)
	filing.ArcStatus = compliance.EvaluateItem(
		filing.ArcApplyDate, deref(filing.ArcReceiptNo), deref(filing.ArcNo),
		daysElapsed, model.ArcDeadlineDays)
	filing.PermitStatus = compliance.EvaluateItem(
		filing.PermitApplyDate, deref(filing.PermitReceiptNo), deref(filing.PermitNo),
		daysElapsed, model.PermitDeadlineDays)

	filing.OverallCompliance = compliance.Aggregate([]compliance.Status{
		filing.EntryReportStatus,
		filing.InitialExamStatus,
		filing.ArcStatus,
		filing.PermitStatus,
	})
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(model.DateOnly, value)
	if err != nil {
		return time.Time{}, apperrors.Validation("invalid date", []string{fmt.Sprintf("%q is not a valid YYYY-MM-DD date", value)})
	}
	return t, nil
}

func applyDate(dst **time.Time, value *string) error {
	if value == nil {
		return nil
	}
	t, err := parseDate(*value)
	if err != nil {
		return err
	}
	*dst = &t
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
