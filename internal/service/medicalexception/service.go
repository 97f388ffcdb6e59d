package medicalexception

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wanbao-hr/agency-api/internal/email"
	"github.com/wanbao-hr/agency-api/internal/model"
	"github.com/wanbao-hr/agency-api/internal/repository"
	apperrors "github.com/wanbao-hr/agency-api/pkg/errors"
)

type MedicalExceptionService interface {
	Create(ctx context.Context, req *model.CreateMedicalExceptionRequest) (*model.MedicalException, error)
	Get(ctx context.Context, id uuid.UUID) (*model.MedicalException, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateMedicalExceptionRequest) (*model.MedicalException, error)
	MarkHealthDeptNotified(ctx context.Context, id uuid.UUID) (*model.MedicalException, error)
	MarkEmployerNotified(ctx context.Context, id uuid.UUID) (*model.MedicalException, error)
	List(ctx context.Context, filters *model.MedicalExceptionFilters, page model.Pagination) ([]*model.MedicalException, int, error)
	Dashboard(ctx context.Context) (*model.MedicalExceptionDashboard, error)
}

type Service struct {
	repo       repository.MedicalExceptionRepository
	workerRepo repository.WorkerRepository
	mailer     email.Service
	notifyAddr string
	now        func() time.Time
}

// NewService wires the exception store. mailer may be nil when SMTP is not
// configured; notification marks then skip the courtesy email.
func NewService(repo repository.MedicalExceptionRepository, workerRepo repository.WorkerRepository, mailer email.Service, notifyAddr string) *Service {
	return &Service{
		repo:       repo,
		workerRepo: workerRepo,
		mailer:     mailer,
		notifyAddr: notifyAddr,
		now:        time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateMedicalExceptionRequest) (*model.MedicalException, error) {
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return nil, apperrors.Validation("invalid worker id", []string{"worker_id: must be a UUID"})
	}
	worker, err := s.workerRepo.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}

	diagnosisDate, err := time.Parse(model.DateOnly, req.DiagnosisDate)
	if err != nil {
		return nil, apperrors.Validation("invalid diagnosis date", []string{fmt.Sprintf("%q is not a valid YYYY-MM-DD date", req.DiagnosisDate)})
	}

	now := s.now()
	exc := &model.MedicalException{
		Base:            model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		WorkerID:        workerID,
		DiagnosisDate:   diagnosisDate,
		DiseaseType:     req.DiseaseType,
		Description:     req.Description,
		TreatmentStatus: model.TreatmentPending,
		Remarks:         req.Remarks,
	}
	if req.TreatmentStatus != nil {
		exc.TreatmentStatus = model.TreatmentStatus(*req.TreatmentStatus)
	}
	if req.HealthCheckID != nil {
		hcID, err := uuid.Parse(*req.HealthCheckID)
		if err != nil {
			return nil, apperrors.Validation("invalid health check id", []string{"health_check_id: must be a UUID"})
		}
		exc.HealthCheckID = &hcID
	}

	if err := s.repo.Create(ctx, exc); err != nil {
		return nil, fmt.Errorf("failed to create medical exception: %w", err)
	}

	exc.WorkerName = worker.Name
	exc.WorkerEnglishName = worker.EnglishName
	return exc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.MedicalException, error) {
	exc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get medical exception: %w", err)
	}
	if exc == nil {
		return nil, apperrors.NotFound("medical exception", nil)
	}
	return exc, nil
}

// Update merges only the supplied fields over the stored case.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateMedicalExceptionRequest) (*model.MedicalException, error) {
	exc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DiseaseType != nil {
		exc.DiseaseType = *req.DiseaseType
	}
	if req.Description != nil {
		exc.Description = req.Description
	}
	if req.TreatmentStatus != nil {
		exc.TreatmentStatus = model.TreatmentStatus(*req.TreatmentStatus)
	}
	if req.ResolutionDate != nil {
		t, err := time.Parse(model.DateOnly, *req.ResolutionDate)
		if err != nil {
			return nil, apperrors.Validation("invalid resolution date", []string{fmt.Sprintf("%q is not a valid YYYY-MM-DD date", *req.ResolutionDate)})
		}
		exc.ResolutionDate = &t
	}
	if req.Remarks != nil {
		exc.Remarks = req.Remarks
	}

	exc.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, exc); err != nil {
		return nil, fmt.Errorf("failed to update medical exception: %w", err)
	}
	return exc, nil
}

// MarkHealthDeptNotified sets the health-department flag and re-stamps its
// timestamp. Idempotent: marking twice is harmless.
func (s *Service) MarkHealthDeptNotified(ctx context.Context, id uuid.UUID) (*model.MedicalException, error) {
	return s.mark(ctx, id, func(exc *model.MedicalException, now time.Time) {
		exc.HealthDeptNotified = true
		exc.HealthDeptNotifyDate = &now
	})
}

// MarkEmployerNotified is the employer-side counterpart of
// MarkHealthDeptNotified.
func (s *Service) MarkEmployerNotified(ctx context.Context, id uuid.UUID) (*model.MedicalException, error) {
	return s.mark(ctx, id, func(exc *model.MedicalException, now time.Time) {
		exc.EmployerNotified = true
		exc.EmployerNotifyDate = &now
	})
}

func (s *Service) mark(ctx context.Context, id uuid.UUID, apply func(*model.MedicalException, time.Time)) (*model.MedicalException, error) {
	exc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	apply(exc, now)
	exc.UpdatedAt = now

	if err := s.repo.Update(ctx, exc); err != nil {
		return nil, fmt.Errorf("failed to update medical exception: %w", err)
	}

	s.sendCourtesyMail(ctx, exc)
	return exc, nil
}

// sendCourtesyMail is best effort: a failed mail never fails the request.
func (s *Service) sendCourtesyMail(ctx context.Context, exc *model.MedicalException) {
	if s.mailer == nil || s.notifyAddr == "" {
		return
	}
	if err := s.mailer.SendDiseaseNotification(ctx, s.notifyAddr, exc.WorkerName, exc.DiseaseType, exc.DiagnosisDate); err != nil {
		log.Warn().Err(err).Str("exception_id", exc.ID.String()).Msg("failed to send notification email")
	}
}

func (s *Service) List(ctx context.Context, filters *model.MedicalExceptionFilters, page model.Pagination) ([]*model.MedicalException, int, error) {
	page.Normalize()
	return s.repo.List(ctx, filters, page)
}

// Dashboard runs five independent counts by treatment status.
func (s *Service) Dashboard(ctx context.Context) (*model.MedicalExceptionDashboard, error) {
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count exceptions: %w", err)
	}

	dashboard := &model.MedicalExceptionDashboard{Total: total}
	counts := []struct {
		status model.TreatmentStatus
		dst    *int
	}{
		{model.TreatmentPending, &dashboard.Pending},
		{model.TreatmentInTreatment, &dashboard.InTreatment},
		{model.TreatmentRecovered, &dashboard.Recovered},
		{model.TreatmentDeported, &dashboard.Deported},
	}
	for _, c := range counts {
		n, err := s.repo.CountByTreatmentStatus(ctx, c.status)
		if err != nil {
			return nil, fmt.Errorf("failed to count exceptions by status: %w", err)
		}
		*c.dst = n
	}
	return dashboard, nil
}
