package entryfiling

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wanbao-hr/agency-api/internal/handler"
	"github.com/wanbao-hr/agency-api/internal/model"
	"github.com/wanbao-hr/agency-api/internal/repository"
	"github.com/wanbao-hr/agency-api/internal/service/compliance"
	"github.com/wanbao-hr/agency-api/internal/service/entryfiling"
	apperrors "github.com/wanbao-hr/agency-api/pkg/errors"
	"github.com/wanbao-hr/agency-api/pkg/httputil"
)

type Handler struct {
	service    entryfiling.EntryFilingService
	outboxRepo repository.OutboxRepository
}

func NewHandler(service entryfiling.EntryFilingService, outboxRepo repository.OutboxRepository) *Handler {
	return &Handler{
		service:    service,
		outboxRepo: outboxRepo,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	filings := r.Group("/entry-filings")
	{
		filings.GET("", h.ListFilings)
		filings.GET("/dashboard", h.GetDashboard)
		filings.GET("/:workerId", h.GetFiling)
		filings.PUT("/:workerId", h.UpsertFiling)
	}
}

func (h *Handler) GetFiling(c *gin.Context) {
	workerID, err := uuid.Parse(c.Param("workerId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid worker ID", err))
		return
	}

	filing, err := h.service.Get(c.Request.Context(), workerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, filing)
}

func (h *Handler) UpsertFiling(c *gin.Context) {
	workerID, err := uuid.Parse(c.Param("workerId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid worker ID", err))
		return
	}

	var req model.UpsertEntryFilingRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filing, err := h.service.Upsert(c.Request.Context(), workerID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.createOutboxEvent(c, filing)
	httputil.RespondWithSuccess(c, filing)
}

func (h *Handler) ListFilings(c *gin.Context) {
	var page model.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid pagination parameters", err))
		return
	}
	page.Normalize()

	filters := &model.EntryFilingFilters{
		Status: compliance.Status(c.Query("status")),
		Search: c.Query("search"),
	}

	filings, total, err := h.service.List(c.Request.Context(), filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, filings, page.Page, page.Limit, total)
}

func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, dashboard)
}

func (h *Handler) createOutboxEvent(c *gin.Context, filing *model.EntryFiling) {
	payload, err := json.Marshal(filing)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal entry filing for event")
		return
	}
	if err := h.outboxRepo.Create(c.Request.Context(), &model.OutboxEvent{
		EventType: model.EventEntryFilingUpsert,
		Payload:   payload,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to create outbox event")
	}
}
