package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	"github.com/husseinvr97/fasee7System-sub002/internal/service"
	"github.com/husseinvr97/fasee7System-sub002/pkg/response"
)

type attendanceService interface {
	CompleteLesson(ctx context.Context, req service.CompleteLessonRequest) ([]models.LessonAttendanceResult, error)
	LessonAttendance(ctx context.Context, lessonID string) ([]models.LessonAttendance, error)
}

// AttendanceHandler exposes the lesson completion endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Complete godoc
// @Summary Complete a lesson with its attendance marks
// @Description Status codes: H present, S sick, I excused, A absent. Only H and A move the absence streak.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Param payload body service.CompleteLessonRequest true "Marks"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lessons/{lessonId}/attendance [post]
func (h *AttendanceHandler) Complete(c *gin.Context) {
	var req service.CompleteLessonRequest
	if !bindJSON(c, &req) {
		return
	}
	req.LessonID = pathID(c, "lessonId")
	results, err := h.service.CompleteLesson(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, results)
}

// List godoc
// @Summary List attendance marks of a lesson
// @Tags Attendance
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{lessonId}/attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	rows, err := h.service.LessonAttendance(c.Request.Context(), pathID(c, "lessonId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}
