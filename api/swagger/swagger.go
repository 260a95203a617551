package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Period API",
        "description": "Examination periods, project weeks and NRW holidays for TH Köln semesters",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "ExamPeriods", "description": "Generated examination plans"},
        {"name": "Periods", "description": "Lecture periods and project weeks"},
        {"name": "PlanSnapshots", "description": "Versioned plan snapshots"},
        {"name": "Exports", "description": "Asynchronous plan exports"},
        {"name": "System", "description": "Probes and metrics"}
    ],
    "paths": {
        "/exam-periods": {
            "get": {
                "tags": ["ExamPeriods"],
                "summary": "Generate the exam plan",
                "parameters": [
                    {"name": "horizon", "in": "query", "type": "integer", "minimum": 0, "maximum": 10},
                    {"name": "semester", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Period source unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exam-periods/export": {
            "get": {
                "tags": ["ExamPeriods"],
                "summary": "Download the exam plan",
                "produces": ["text/markdown", "text/calendar", "application/pdf", "text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["md", "ics", "pdf", "csv", "xlsx"]},
                    {"name": "horizon", "in": "query", "type": "integer"},
                    {"name": "semester", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/holidays/{year}": {
            "get": {
                "tags": ["ExamPeriods"],
                "summary": "List weekday holidays of a year",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid year", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/periods": {
            "get": {
                "tags": ["Periods"],
                "summary": "List stored semester periods",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Periods"],
                "summary": "Create or replace a semester period",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertPeriodRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/periods/sync": {
            "post": {
                "tags": ["Periods"],
                "summary": "Scrape periods and store them",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PeriodSyncResponse"}},
                    "502": {"description": "Period source unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plan-snapshots": {
            "get": {
                "tags": ["PlanSnapshots"],
                "summary": "List plan snapshots",
                "parameters": [
                    {"name": "horizon", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["PlanSnapshots"],
                "summary": "Store the current plan as a new version",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/CreatePlanSnapshotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plan-snapshots/{id}": {
            "get": {
                "tags": ["PlanSnapshots"],
                "summary": "Get a plan snapshot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue an export job",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Queue unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Get export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid token"},
                    "410": {"description": "Expired"}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["System"],
                "summary": "Aggregated service metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "UpsertPeriodRequest": {
            "type": "object",
            "required": ["name", "lecture_start", "lecture_end"],
            "properties": {
                "name": {"type": "string", "example": "Wintersemester 2025/26"},
                "lecture_start": {"type": "string", "format": "date"},
                "lecture_end": {"type": "string", "format": "date"},
                "hip_start": {"type": "string", "format": "date"},
                "hip_end": {"type": "string", "format": "date"}
            }
        },
        "PeriodSyncResponse": {
            "type": "object",
            "properties": {
                "semesters": {"type": "array", "items": {"type": "string"}},
                "lectures": {"type": "integer"},
                "hips": {"type": "integer"}
            }
        },
        "CreatePlanSnapshotRequest": {
            "type": "object",
            "properties": {
                "horizon_years": {"type": "integer"},
                "note": {"type": "string"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["md", "ics", "pdf", "csv", "xlsx"]},
                "horizon_years": {"type": "integer"},
                "semester": {"type": "string"}
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
                "meta": {"type": "object"}
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
