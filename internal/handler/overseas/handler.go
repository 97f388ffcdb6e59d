package overseas

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wanbao-hr/agency-api/internal/handler"
	"github.com/wanbao-hr/agency-api/internal/model"
	"github.com/wanbao-hr/agency-api/internal/repository"
	"github.com/wanbao-hr/agency-api/internal/service/overseas"
	apperrors "github.com/wanbao-hr/agency-api/pkg/errors"
	"github.com/wanbao-hr/agency-api/pkg/httputil"
)

type Handler struct {
	service    overseas.OverseasProgressService
	outboxRepo repository.OutboxRepository
}

func NewHandler(service overseas.OverseasProgressService, outboxRepo repository.OutboxRepository) *Handler {
	return &Handler{
		service:    service,
		outboxRepo: outboxRepo,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	progress := r.Group("/overseas-progress")
	{
		progress.GET("", h.ListProgress)
		progress.GET("/:candidateId", h.GetProgress)
		progress.PUT("/:candidateId", h.UpsertProgress)
		progress.GET("/:candidateId/report", h.GetReport)
	}
}

func (h *Handler) GetProgress(c *gin.Context) {
	candidateID, err := uuid.Parse(c.Param("candidateId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid candidate ID", err))
		return
	}

	progress, err := h.service.Get(c.Request.Context(), candidateID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, progress)
}

func (h *Handler) UpsertProgress(c *gin.Context) {
	candidateID, err := uuid.Parse(c.Param("candidateId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid candidate ID", err))
		return
	}

	var req model.UpsertOverseasProgressRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	progress, err := h.service.Upsert(c.Request.Context(), candidateID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.createOutboxEvent(c, progress)
	httputil.RespondWithSuccess(c, progress)
}

func (h *Handler) ListProgress(c *gin.Context) {
	var page model.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid pagination parameters", err))
		return
	}
	page.Normalize()

	filters := &model.OverseasProgressFilters{
		Status: model.ProgressStatus(c.Query("status")),
		Search: c.Query("search"),
	}

	records, total, err := h.service.List(c.Request.Context(), filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, records, page.Page, page.Limit, total)
}

func (h *Handler) GetReport(c *gin.Context) {
	candidateID, err := uuid.Parse(c.Param("candidateId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid candidate ID", err))
		return
	}

	report, err := h.service.Report(c.Request.Context(), candidateID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, report)
}

func (h *Handler) createOutboxEvent(c *gin.Context, progress *model.OverseasProgress) {
	payload, err := json.Marshal(progress)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal overseas progress for event")
		return
	}
	if err := h.outboxRepo.Create(c.Request.Context(), &model.OutboxEvent{
		EventType: model.EventOverseasProgressUpsert,
		Payload:   payload,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to create outbox event")
	}
}
