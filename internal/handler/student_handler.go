package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	"github.com/husseinvr97/fasee7System-sub002/pkg/response"
)

type studentService interface {
	Get(ctx context.Context, id string) (*models.Student, error)
	Archive(ctx context.Context, id string) (*models.Student, error)
	Restore(ctx context.Context, id string) (*models.Student, error)
}

// StudentHandler exposes student lifecycle endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Archive godoc
// @Summary Archive student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/archive [post]
func (h *StudentHandler) Archive(c *gin.Context) {
	student, err := h.students.Archive(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Restore godoc
// @Summary Restore an archived student and reset its streaks
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/restore [post]
func (h *StudentHandler) Restore(c *gin.Context) {
	student, err := h.students.Restore(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}
