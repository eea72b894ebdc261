package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Fasee7 Consecutivity API",
        "description": "Consecutive absence and behavioral incident tracking",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Consecutivity", "description": "Live streak counters and thresholds"},
        {"name": "Students", "description": "Archive and restore"},
        {"name": "Attendance", "description": "Lesson completion"},
        {"name": "Behavior", "description": "Behavioral incidents"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "security": [],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "security": [],
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/api/v1/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/consecutivity": {
            "get": {
                "tags": ["Consecutivity"],
                "summary": "Get both streaks of a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ConsecutivitySummary"}}
                }
            }
        },
        "/api/v1/students/{id}/consecutivity/{kind}": {
            "get": {
                "tags": ["Consecutivity"],
                "summary": "Get one streak of a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "kind", "in": "path", "required": true, "type": "string", "enum": ["absence", "behavioral"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ConsecutiveCount"}},
                    "400": {"description": "Unknown kind", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/archive": {
            "post": {
                "tags": ["Students"],
                "summary": "Archive student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/restore": {
            "post": {
                "tags": ["Students"],
                "summary": "Restore student and reset every streak",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/lessons/{lessonId}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List marks of a lesson",
                "parameters": [
                    {"name": "lessonId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Complete a lesson",
                "description": "H present, S sick, I excused, A absent. Only H and A move the absence streak. Resubmitting a stored mark unchanged is a no-op; changing it is a conflict.",
                "parameters": [
                    {"name": "lessonId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CompleteLessonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A student already has a different mark for this lesson", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/behavior-incidents": {
            "get": {
                "tags": ["Behavior"],
                "summary": "List incidents, newest first",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "kind", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string", "format": "date"},
                    {"name": "dateTo", "in": "query", "type": "string", "format": "date"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Behavior"],
                "summary": "Record incident",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordIncidentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ConsecutivitySummary": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "absence_count": {"type": "integer"},
                "behavioral_count": {"type": "integer"},
                "absence_warning": {"type": "boolean"},
                "absence_archival": {"type": "boolean"},
                "behavioral_warning": {"type": "boolean"}
            }
        },
        "ConsecutiveCount": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "tracking_kind": {"type": "string", "enum": ["ABSENCE", "BEHAVIORAL_INCIDENT"]},
                "count": {"type": "integer"},
                "warning_reached": {"type": "boolean"},
                "archival_reached": {"type": "boolean"}
            }
        },
        "LessonMark": {
            "type": "object",
            "required": ["student_id", "status"],
            "properties": {
                "student_id": {"type": "string"},
                "status": {"type": "string", "enum": ["H", "S", "I", "A"]},
                "notes": {"type": "string"}
            }
        },
        "CompleteLessonRequest": {
            "type": "object",
            "required": ["marks"],
            "properties": {
                "marks": {"type": "array", "items": {"$ref": "#/definitions/LessonMark"}}
            }
        },
        "RecordIncidentRequest": {
            "type": "object",
            "required": ["student_id", "lesson_id", "incident_kind"],
            "properties": {
                "student_id": {"type": "string"},
                "lesson_id": {"type": "string"},
                "incident_kind": {"type": "string"},
                "description": {"type": "string"},
                "occurred_at": {"type": "string", "format": "date-time"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "request_id": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
