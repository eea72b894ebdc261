package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	appErrors "github.com/husseinvr97/fasee7System-sub002/pkg/errors"
	"github.com/husseinvr97/fasee7System-sub002/pkg/response"
)

type consecutivityQueries interface {
	Summary(ctx context.Context, studentID string) (*models.ConsecutivitySummary, error)
	GetConsecutiveCount(ctx context.Context, studentID string, kind models.TrackingKind) (int, error)
	HasReachedWarningThreshold(ctx context.Context, studentID string, kind models.TrackingKind) (bool, error)
	HasReachedArchivalThreshold(ctx context.Context, studentID string) (bool, error)
}

// ConsecutivityHandler serves read-only streak views.
type ConsecutivityHandler struct {
	service consecutivityQueries
}

// NewConsecutivityHandler builds the handler.
func NewConsecutivityHandler(service consecutivityQueries) *ConsecutivityHandler {
	return &ConsecutivityHandler{service: service}
}

// Summary godoc
// @Summary Get both streaks of a student
// @Tags Consecutivity
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/consecutivity [get]
func (h *ConsecutivityHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// Count godoc
// @Summary Get one streak of a student
// @Tags Consecutivity
// @Produce json
// @Param id path string true "Student ID"
// @Param kind path string true "absence or behavioral"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/consecutivity/{kind} [get]
func (h *ConsecutivityHandler) Count(c *gin.Context) {
	kind, ok := models.ParseTrackingKind(c.Param("kind"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown tracking kind"))
		return
	}
	ctx := c.Request.Context()
	studentID := pathID(c, "id")

	count, err := h.service.GetConsecutiveCount(ctx, studentID, kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	warning, err := h.service.HasReachedWarningThreshold(ctx, studentID, kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload := models.ConsecutiveCount{StudentID: studentID, Kind: kind, Count: count, WarningReached: warning}
	if kind == models.TrackingKindAbsence {
		archival, err := h.service.HasReachedArchivalThreshold(ctx, studentID)
		if err != nil {
			response.Error(c, err)
			return
		}
		payload.ArchivalReached = &archival
	}
	response.OK(c, payload)
}
