package overseas

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wanbao-hr/agency-api/internal/model"
	"github.com/wanbao-hr/agency-api/internal/repository"
	apperrors "github.com/wanbao-hr/agency-api/pkg/errors"
)

// Passport validity margin required before deployment.
const passportMinValidityMonths = 6

type OverseasProgressService interface {
	Get(ctx context.Context, candidateID uuid.UUID) (*model.OverseasProgress, error)
	Upsert(ctx context.Context, candidateID uuid.UUID, req *model.UpsertOverseasProgressRequest) (*model.OverseasProgress, error)
	List(ctx context.Context, filters *model.OverseasProgressFilters, page model.Pagination) ([]*model.OverseasProgress, int, error)
	Report(ctx context.Context, candidateID uuid.UUID) (*model.ProgressReport, error)
}

type Service struct {
	repo          repository.OverseasProgressRepository
	candidateRepo repository.CandidateRepository
	now           func() time.Time
}

func NewService(repo repository.OverseasProgressRepository, candidateRepo repository.CandidateRepository) *Service {
	return &Service{
		repo:          repo,
		candidateRepo: candidateRepo,
		now:           time.Now,
	}
}

// Get returns the progress record for a candidate, or an IN_PROGRESS stub
// when nothing has been recorded yet.
func (s *Service) Get(ctx context.Context, candidateID uuid.UUID) (*model.OverseasProgress, error) {
	candidate, err := s.candidateRepo.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	progress, err := s.repo.GetByCandidateID(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get overseas progress: %w", err)
	}
	if progress == nil {
		return s.defaultStub(candidateID, candidate), nil
	}
	return progress, nil
}

// Upsert merges the supplied checkpoint fields, recomputes the passport
// validity flag from the candidate's passport expiry, derives the overall
// status and persists everything atomically.
func (s *Service) Upsert(ctx context.Context, candidateID uuid.UUID, req *model.UpsertOverseasProgressRequest) (*model.OverseasProgress, error) {
	candidate, err := s.candidateRepo.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByCandidateID(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get overseas progress: %w", err)
	}

	now := s.now()
	progress := existing
	if progress == nil {
		progress = &model.OverseasProgress{
			Base:        model.Base{ID: uuid.New(), CreatedAt: now},
			CandidateID: candidateID,
		}
	}

	if err := applyRequest(progress, req); err != nil {
		return nil, err
	}

	// The passport flag is derived, not trusted: whenever the check is done
	// and an expiry date is on file, the stored value is recomputed and any
	// caller-supplied value discarded.
	if progress.PassportChecked && candidate.PassportExpiry != nil {
		ok := candidate.PassportExpiry.After(now.AddDate(0, passportMinValidityMonths, 0))
		progress.PassportOk = &ok
	}

	progress.OverallStatus = deriveOverallStatus(progress)
	progress.UpdatedAt = now

	if err := s.repo.Upsert(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to upsert overseas progress: %w", err)
	}

	progress.CandidateName = candidate.Name
	progress.CandidateEnglishName = candidate.EnglishName
	progress.CandidatePassportNo = candidate.PassportNo
	return progress, nil
}

func (s *Service) List(ctx context.Context, filters *model.OverseasProgressFilters, page model.Pagination) ([]*model.OverseasProgress, int, error) {
	page.Normalize()
	return s.repo.List(ctx, filters, page)
}

// Report builds the fixed four-checkpoint summary. Unlike Get, a missing
// record is an error here: there is nothing to report on.
func (s *Service) Report(ctx context.Context, candidateID uuid.UUID) (*model.ProgressReport, error) {
	progress, err := s.repo.GetByCandidateID(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get overseas progress: %w", err)
	}
	if progress == nil {
		return nil, apperrors.NotFound("overseas progress record", nil)
	}

	report := &model.ProgressReport{
		CandidateID:   candidateID,
		CandidateName: progress.CandidateName,
		PassportNo:    derefStr(progress.CandidatePassportNo),
		OverallStatus: progress.OverallStatus,
		GeneratedAt:   s.now(),
		Checkpoints: []model.ProgressCheckpoint{
			{
				Name:   "Medical examination",
				Status: medicalCheckpointStatus(progress),
				Remark: derefStr(progress.MedicalExamRemark),
			},
			{
				Name:   "Police clearance",
				Status: policeCheckpointStatus(progress),
				Remark: derefStr(progress.PoliceCheckRemark),
			},
			{
				Name:   "Passport check",
				Status: passportCheckpointStatus(progress),
				Remark: derefStr(progress.PassportRemark),
			},
			{
				Name:   "Previous ARC check",
				Status: arcCheckpointStatus(progress),
				Remark: derefStr(progress.ArcRemark),
			},
		},
	}
	return report, nil
}

func (s *Service) defaultStub(candidateID uuid.UUID, candidate *model.Candidate) *model.OverseasProgress {
	return &model.OverseasProgress{
		CandidateID:   candidateID,
		OverallStatus: model.ProgressInProgress,
		CandidateRef: model.CandidateRef{
			CandidateName:        candidate.Name,
			CandidateEnglishName: candidate.EnglishName,
			CandidatePassportNo:  candidate.PassportNo,
		},
	}
}

func applyRequest(progress *model.OverseasProgress, req *model.UpsertOverseasProgressRequest) error {
	if err := applyDate(&progress.MedicalExamDate, req.MedicalExamDate); err != nil {
		return err
	}
	if req.MedicalExamResult != nil {
		progress.MedicalExamResult = req.MedicalExamResult
	}
	if req.MedicalExamRemark != nil {
		progress.MedicalExamRemark = req.MedicalExamRemark
	}

	if err := applyDate(&progress.PoliceCheckDate, req.PoliceCheckDate); err != nil {
		return err
	}
	if req.PoliceCheckStatus != nil {
		progress.PoliceCheckStatus = req.PoliceCheckStatus
	}
	if req.PoliceCheckRemark != nil {
		progress.PoliceCheckRemark = req.PoliceCheckRemark
	}

	if req.PassportChecked != nil {
		progress.PassportChecked = *req.PassportChecked
	}
	if req.PassportOk != nil {
		progress.PassportOk = req.PassportOk
	}
	if req.PassportRemark != nil {
		progress.PassportRemark = req.PassportRemark
	}

	if req.ArcChecked != nil {
		progress.ArcChecked = *req.ArcChecked
	}
	if req.ArcHasIssues != nil {
		progress.ArcHasIssues = *req.ArcHasIssues
	}
	if req.ArcRemark != nil {
		progress.ArcRemark = req.ArcRemark
	}

	return nil
}

// deriveOverallStatus applies the pre-arrival rule set: any blocking
// condition forces BLOCKED; completion requires every checkpoint positive.
// Deliberately separate from the entry-filing aggregator, which follows a
// different statutory policy.
func deriveOverallStatus(p *model.OverseasProgress) model.ProgressStatus {
	medicalFailed := p.MedicalExamResult != nil && *p.MedicalExamResult == string(model.MedicalExamFail)
	policeRejected := p.PoliceCheckStatus != nil && *p.PoliceCheckStatus == string(model.PoliceCheckRejected)
	passportBad := p.PassportOk != nil && !*p.PassportOk

	if medicalFailed || policeRejected || passportBad || p.ArcHasIssues {
		return model.ProgressBlocked
	}

	medicalPassed := p.MedicalExamResult != nil && *p.MedicalExamResult == string(model.MedicalExamPass)
	policeIssued := p.PoliceCheckStatus != nil && *p.PoliceCheckStatus == string(model.PoliceCheckIssued)
	passportOk := p.PassportOk != nil && *p.PassportOk

	if medicalPassed && policeIssued && passportOk {
		return model.ProgressCompleted
	}
	return model.ProgressInProgress
}

func medicalCheckpointStatus(p *model.OverseasProgress) string {
	if p.MedicalExamResult == nil {
		if p.MedicalExamDate == nil {
			return "not scheduled"
		}
		return "awaiting result"
	}
	switch *p.MedicalExamResult {
	case string(model.MedicalExamPass):
		return "passed"
	case string(model.MedicalExamFail):
		return "failed"
	default:
		return "awaiting result"
	}
}

func policeCheckpointStatus(p *model.OverseasProgress) string {
	if p.PoliceCheckStatus == nil {
		return "not applied"
	}
	switch *p.PoliceCheckStatus {
	case string(model.PoliceCheckIssued):
		return "issued"
	case string(model.PoliceCheckRejected):
		return "rejected"
	default:
		return "pending"
	}
}

func passportCheckpointStatus(p *model.OverseasProgress) string {
	if !p.PassportChecked {
		return "not checked"
	}
	if p.PassportOk != nil && *p.PassportOk {
		return "valid, more than 6 months remaining"
	}
	if p.PassportOk != nil {
		return "expiring within 6 months"
	}
	return "checked, expiry unknown"
}

func arcCheckpointStatus(p *model.OverseasProgress) string {
	if !p.ArcChecked {
		return "not checked"
	}
	if p.ArcHasIssues {
		return "issues found"
	}
	return "no issues"
}

func applyDate(dst **time.Time, value *string) error {
	if value == nil {
		return nil
	}
	t, err := time.Parse(model.DateOnly, *value)
	if err != nil {
		return apperrors.Validation("invalid date", []string{fmt.Sprintf("%q is not a valid YYYY-MM-DD date", *value)})
	}
	*dst = &t
	return nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
