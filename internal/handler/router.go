package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/husseinvr97/fasee7System-sub002/internal/middleware"
	"github.com/husseinvr97/fasee7System-sub002/internal/models"
)

// Handlers groups the HTTP handlers mounted under the API prefix.
type Handlers struct {
	Consecutivity *ConsecutivityHandler
	Students      *StudentHandler
	Attendance    *AttendanceHandler
	Behavior      *BehaviorHandler
	Metrics       *MetricsHandler
}

// RegisterRoutes mounts health checks at the root and the JWT protected API under prefix.
// Mutating routes are audited through auditLog.
func RegisterRoutes(r *gin.Engine, prefix string, tokens middleware.TokenValidator, auditLog *zap.Logger, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix, middleware.JWT(tokens))
	staff := middleware.RBAC(models.RoleAdmin, models.RoleTeacher)
	admin := middleware.RBAC(models.RoleAdmin)

	students := api.Group("/students/:id")
	students.GET("", staff, h.Students.Get)
	students.GET("/consecutivity", staff, h.Consecutivity.Summary)
	students.GET("/consecutivity/:kind", staff, h.Consecutivity.Count)
	students.POST("/archive", admin, middleware.Audit(auditLog, "ARCHIVE", "student"), h.Students.Archive)
	students.POST("/restore", admin, middleware.Audit(auditLog, "RESTORE", "student"), h.Students.Restore)

	lessons := api.Group("/lessons/:lessonId", staff)
	lessons.POST("/attendance", middleware.Audit(auditLog, "COMPLETE", "lesson"), h.Attendance.Complete)
	lessons.GET("/attendance", h.Attendance.List)

	incidents := api.Group("/behavior-incidents", staff)
	incidents.POST("", middleware.Audit(auditLog, "CREATE", "behavior_incident"), h.Behavior.Record)
	incidents.GET("", h.Behavior.List)
}
