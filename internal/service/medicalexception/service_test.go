package medicalexception

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanbao-hr/agency-api/internal/model"
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

type fakeExceptionRepo struct {
	records map[uuid.UUID]*model.MedicalException

	// vanishAfterGet drops the record once it has been read, standing in
	// for another request deleting the row mid-flight.
	vanishAfterGet bool
}

func newFakeExceptionRepo() *fakeExceptionRepo {
	return &fakeExceptionRepo{records: make(map[uuid.UUID]*model.MedicalException)}
}

func (r *fakeExceptionRepo) Get(_ context.Context, id uuid.UUID) (*model.MedicalException, error) {
	e, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	if r.vanishAfterGet {
		delete(r.records, id)
	}
	return &cp, nil
}

func (r *fakeExceptionRepo) Create(_ context.Context, exc *model.MedicalException) error {
	cp := *exc
	r.records[exc.ID] = &cp
	return nil
}

func (r *fakeExceptionRepo) Update(_ context.Context, exc *model.MedicalException) error {
	if _, ok := r.records[exc.ID]; !ok {
		return apperrors.NotFound("medical exception", nil)
	}
	cp := *exc
	r.records[exc.ID] = &cp
	return nil
}

func (r *fakeExceptionRepo) List(_ context.Context, _ *model.MedicalExceptionFilters, _ model.Pagination) ([]*model.MedicalException, int, error) {
	out := make([]*model.MedicalException, 0, len(r.records))
	for _, e := range r.records {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (r *fakeExceptionRepo) CountAll(_ context.Context) (int, error) {
	return len(r.records), nil
}

func (r *fakeExceptionRepo) CountByTreatmentStatus(_ context.Context, status model.TreatmentStatus) (int, error) {
	n := 0
	for _, e := range r.records {
		if e.TreatmentStatus == status {
			n++
		}
	}
	return n, nil
}

type fakeMailer struct {
	sent int
}

func (m *fakeMailer) SendDiseaseNotification(_ context.Context, _, _, _ string, _ time.Time) error {
	m.sent++
	return nil
}

func strPtr(s string) *string { return &s }

func newTestService(now time.Time) (*Service, *fakeExceptionRepo, *fakeMailer, uuid.UUID) {
	workerID := uuid.New()
	workerRepo := &fakeWorkerRepo{workers: map[uuid.UUID]*model.Worker{
		workerID: {Name: "李文雄", EnglishName: "LE VAN HUNG"},
	}}
	repo := newFakeExceptionRepo()
	mailer := &fakeMailer{}
	svc := NewService(repo, workerRepo, mailer, "compliance@agency.example.com")
	svc.now = func() time.Time { return now }
	return svc, repo, mailer, workerID
}

func TestCreateDefaultsToPendingTreatment(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, _, _, workerID := newTestService(now)

	exc, err := svc.Create(context.Background(), &model.CreateMedicalExceptionRequest{
		WorkerID:      workerID.String(),
		DiagnosisDate: "2025-05-08",
		DiseaseType:   model.DiseaseTuberculosis,
	})
	require.NoError(t, err)

	assert.Equal(t, model.TreatmentPending, exc.TreatmentStatus)
	assert.False(t, exc.HealthDeptNotified)
	assert.False(t, exc.EmployerNotified)
	assert.Equal(t, "李文雄", exc.WorkerName)
	assert.Equal(t, time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC), exc.DiagnosisDate)
}

func TestCreateRejectsBadWorkerID(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, _, _, _ := newTestService(now)

	_, err := svc.Create(context.Background(), &model.CreateMedicalExceptionRequest{
		WorkerID:      "not-a-uuid",
		DiagnosisDate: "2025-05-08",
		DiseaseType:   model.DiseaseSyphilis,
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
}

func TestCreateUnknownWorker(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, _, _, _ := newTestService(now)

	_, err := svc.Create(context.Background(), &model.CreateMedicalExceptionRequest{
		WorkerID:      uuid.New().String(),
		DiagnosisDate: "2025-05-08",
		DiseaseType:   model.DiseaseOther,
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetMissingExceptionIsNotFound(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, _, _, _ := newTestService(now)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMarkHealthDeptNotifiedIsIdempotent(t *testing.T) {
	first := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, _, mailer, workerID := newTestService(first)

	exc, err := svc.Create(context.Background(), &model.CreateMedicalExceptionRequest{
		WorkerID:      workerID.String(),
		DiagnosisDate: "2025-05-08",
		DiseaseType:   model.DiseaseTuberculosis,
	})
	require.NoError(t, err)

	marked, err := svc.MarkHealthDeptNotified(context.Background(), exc.ID)
	require.NoError(t, err)
	assert.True(t, marked.HealthDeptNotified)
	require.NotNil(t, marked.HealthDeptNotifyDate)
	assert.Equal(t, first, *marked.HealthDeptNotifyDate)

	// Marking again keeps the flag and re-stamps the timestamp.
	second := first.Add(48 * time.Hour)
	svc.now = func() time.Time { return second }

	marked, err = svc.MarkHealthDeptNotified(context.Background(), exc.ID)
	require.NoError(t, err)
	assert.True(t, marked.HealthDeptNotified)
	assert.Equal(t, second, *marked.HealthDeptNotifyDate)
	assert.Equal(t, 2, mailer.sent)
}

func TestNotificationFlagsAreIndependent(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, _, _, workerID := newTestService(now)

	exc, err := svc.Create(context.Background(), &model.CreateMedicalExceptionRequest{
		WorkerID:      workerID.String(),
		DiagnosisDate: "2025-05-08",
		DiseaseType:   model.DiseaseHIV,
	})
	require.NoError(t, err)

	marked, err := svc.MarkEmployerNotified(context.Background(), exc.ID)
	require.NoError(t, err)

	assert.True(t, marked.EmployerNotified)
	assert.False(t, marked.HealthDeptNotified)
	assert.Nil(t, marked.HealthDeptNotifyDate)
}

func TestMarkWithoutMailerConfigured(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, _, _, workerID := newTestService(now)
	svc.mailer = nil

	exc, err := svc.Create(context.Background(), &model.CreateMedicalExceptionRequest{
		WorkerID:      workerID.String(),
		DiagnosisDate: "2025-05-08",
		DiseaseType:   model.DiseaseMalaria,
	})
	require.NoError(t, err)

	marked, err := svc.MarkHealthDeptNotified(context.Background(), exc.ID)
	require.NoError(t, err)
	assert.True(t, marked.HealthDeptNotified)
}

func TestMarkOnCaseDeletedMidFlightIsNotFound(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, repo, mailer, workerID := newTestService(now)

	exc, err := svc.Create(context.Background(), &model.CreateMedicalExceptionRequest{
		WorkerID:      workerID.String(),
		DiagnosisDate: "2025-05-08",
		DiseaseType:   model.DiseaseHansen,
	})
	require.NoError(t, err)

	// Another request deletes the case between the read and the write; the
	// write's absence must surface as not-found, not as an internal error.
	repo.vanishAfterGet = true

	_, err = svc.MarkHealthDeptNotified(context.Background(), exc.ID)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, 0, mailer.sent)
}

func TestUpdateMergesOnlySuppliedFields(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, _, _, workerID := newTestService(now)

	exc, err := svc.Create(context.Background(), &model.CreateMedicalExceptionRequest{
		WorkerID:      workerID.String(),
		DiagnosisDate: "2025-05-08",
		DiseaseType:   model.DiseaseTuberculosis,
		Description:   strPtr("sputum smear positive"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), exc.ID, &model.UpdateMedicalExceptionRequest{
		TreatmentStatus: strPtr("IN_TREATMENT"),
		ResolutionDate:  strPtr("2025-08-01"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.TreatmentInTreatment, updated.TreatmentStatus)
	require.NotNil(t, updated.ResolutionDate)
	assert.Equal(t, "sputum smear positive", *updated.Description)
	assert.Equal(t, model.DiseaseTuberculosis, updated.DiseaseType)
}

func TestDashboardCountsByTreatmentStatus(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newTestService(now)

	for _, status := range []model.TreatmentStatus{
		model.TreatmentPending,
		model.TreatmentPending,
		model.TreatmentInTreatment,
		model.TreatmentRecovered,
	} {
		repo.records[uuid.New()] = &model.MedicalException{
			Base:            model.Base{ID: uuid.New()},
			TreatmentStatus: status,
		}
	}

	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, dashboard.Total)
	assert.Equal(t, 2, dashboard.Pending)
	assert.Equal(t, 1, dashboard.InTreatment)
	assert.Equal(t, 1, dashboard.Recovered)
	assert.Equal(t, 0, dashboard.Deported)
}
