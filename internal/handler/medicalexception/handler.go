package medicalexception

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wanbao-hr/agency-api/internal/handler"
	"github.com/wanbao-hr/agency-api/internal/model"
	"github.com/wanbao-hr/agency-api/internal/repository"
	"github.com/wanbao-hr/agency-api/internal/service/medicalexception"
	apperrors "github.com/wanbao-hr/agency-api/pkg/errors"
	"github.com/wanbao-hr/agency-api/pkg/httputil"
)

type Handler struct {
	service    medicalexception.MedicalExceptionService
	outboxRepo repository.OutboxRepository
}

func NewHandler(service medicalexception.MedicalExceptionService, outboxRepo repository.OutboxRepository) *Handler {
	return &Handler{
		service:    service,
		outboxRepo: outboxRepo,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	exceptions := r.Group("/medical-exceptions")
	{
		exceptions.POST("", h.CreateException)
		exceptions.GET("", h.ListExceptions)
		exceptions.GET("/dashboard", h.GetDashboard)
		exceptions.GET("/:id", h.GetException)
		exceptions.PUT("/:id", h.UpdateException)
		exceptions.POST("/:id/notify-health-dept", h.NotifyHealthDept)
		exceptions.POST("/:id/notify-employer", h.NotifyEmployer)
	}
}

func (h *Handler) CreateException(c *gin.Context) {
	var req model.CreateMedicalExceptionRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	exc, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.createOutboxEvent(c, model.EventMedicalExceptionCreated, exc)
	httputil.RespondWithCreated(c, exc)
}

func (h *Handler) GetException(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid exception ID", err))
		return
	}

	exc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, exc)
}

func (h *Handler) UpdateException(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid exception ID", err))
		return
	}

	var req model.UpdateMedicalExceptionRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	exc, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, exc)
}

func (h *Handler) NotifyHealthDept(c *gin.Context) {
	h.notify(c, h.service.MarkHealthDeptNotified)
}

func (h *Handler) NotifyEmployer(c *gin.Context) {
	h.notify(c, h.service.MarkEmployerNotified)
}

func (h *Handler) notify(c *gin.Context, mark func(ctx context.Context, id uuid.UUID) (*model.MedicalException, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid exception ID", err))
		return
	}

	exc, err := mark(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.createOutboxEvent(c, model.EventMedicalExceptionNotified, exc)
	httputil.RespondWithSuccess(c, exc)
}

func (h *Handler) ListExceptions(c *gin.Context) {
	var page model.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid pagination parameters", err))
		return
	}
	page.Normalize()

	filters := &model.MedicalExceptionFilters{
		TreatmentStatus: model.TreatmentStatus(c.Query("status")),
		DiseaseType:     c.Query("disease_type"),
		Search:          c.Query("search"),
	}

	records, total, err := h.service.List(c.Request.Context(), filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, records, page.Page, page.Limit, total)
}

func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, dashboard)
}

func (h *Handler) createOutboxEvent(c *gin.Context, eventType string, exc *model.MedicalException) {
	payload, err := json.Marshal(exc)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal medical exception for event")
		return
	}
	if err := h.outboxRepo.Create(c.Request.Context(), &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to create outbox event")
	}
}
