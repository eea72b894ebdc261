package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	"github.com/husseinvr97/fasee7System-sub002/internal/service"
	appErrors "github.com/husseinvr97/fasee7System-sub002/pkg/errors"
	"github.com/husseinvr97/fasee7System-sub002/pkg/response"
)

type behaviorService interface {
	Record(ctx context.Context, req service.RecordIncidentRequest) (*service.RecordIncidentResult, error)
	List(ctx context.Context, req service.BehaviorListRequest) ([]models.BehaviorIncident, *models.Pagination, error)
}

// BehaviorHandler exposes behavioral incident endpoints.
type BehaviorHandler struct {
	service behaviorService
}

// NewBehaviorHandler constructs the handler.
func NewBehaviorHandler(service behaviorService) *BehaviorHandler {
	return &BehaviorHandler{service: service}
}

// Record godoc
// @Summary Record a behavioral incident
// @Tags Behavior
// @Accept json
// @Produce json
// @Param payload body service.RecordIncidentRequest true "Incident"
// @Success 201 {object} response.Envelope
// @Router /behavior-incidents [post]
func (h *BehaviorHandler) Record(c *gin.Context) {
	var req service.RecordIncidentRequest
	if !bindJSON(c, &req) {
		return
	}
	req.RecordedBy = actorID(c)
	result, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List behavioral incidents, newest first
// @Tags Behavior
// @Produce json
// @Param studentId query string false "Student ID"
// @Param kind query string false "Comma separated incident kinds"
// @Param dateFrom query string false "YYYY-MM-DD"
// @Param dateTo query string false "YYYY-MM-DD"
// @Param page query int false "Page"
// @Param limit query int false "Page size, default 50, at most 200"
// @Success 200 {object} response.Envelope
// @Router /behavior-incidents [get]
func (h *BehaviorHandler) List(c *gin.Context) {
	req := service.BehaviorListRequest{StudentID: c.Query("studentId")}
	if kinds := strings.TrimSpace(c.Query("kind")); kinds != "" {
		for _, kind := range strings.Split(kinds, ",") {
			if kind = strings.TrimSpace(kind); kind != "" {
				req.IncidentKinds = append(req.IncidentKinds, kind)
			}
		}
	}
	var err error
	if req.DateFrom, err = parseDateQuery(c, "dateFrom"); err != nil {
		response.Error(c, err)
		return
	}
	if req.DateTo, err = parseDateQuery(c, "dateTo"); err != nil {
		response.Error(c, err)
		return
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		req.Page = page
	}
	if size, err := strconv.Atoi(c.Query("limit")); err == nil {
		req.PageSize = size
	}

	incidents, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, incidents, pagination)
}

func parseDateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+key)
	}
	return &parsed, nil
}
