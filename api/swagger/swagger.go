package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Planner API",
        "description": "Timetable rendering and conflict-minimising auto scheduling for course sections",
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
        {"name": "Planner", "description": "Timetable rendering and auto scheduling"},
        {"name": "Catalogs", "description": "Stored semester catalogs"},
        {"name": "Observability", "description": "Request, cache and planner statistics"}
    ],
    "paths": {
        "/planner/calendar": {
            "post": {
                "tags": ["Planner"],
                "summary": "Render the timetable for the current selections",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/PlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rendered grid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Body too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/auto": {
            "post": {
                "tags": ["Planner"],
                "summary": "Pick the least conflicting class per displayed subject",
                "description": "Results are deterministic for a given request; cyclicIndex walks the ranked candidates.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/AutoPlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "Chosen combination and grid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "504": {"description": "Search timed out", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/export": {
            "post": {
                "tags": ["Planner"],
                "summary": "Download the rendered timetable",
                "consumes": ["application/json"],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/PlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "File download", "schema": {"type": "file"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/jobs": {
            "post": {
                "tags": ["Planner"],
                "summary": "Queue a manual or auto planner run",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/PlanJobRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Queue full or jobs disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/jobs/{id}": {
            "get": {
                "tags": ["Planner"],
                "summary": "Planner job status and result",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or expired job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalogs": {
            "get": {
                "tags": ["Catalogs"],
                "summary": "List stored catalogs",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "pageSize", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Catalog summaries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Catalogs"],
                "summary": "Import a catalog produced by the spreadsheet ETL",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CatalogImportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid catalog", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not an administrator", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalogs/{id}": {
            "get": {
                "tags": ["Catalogs"],
                "summary": "Catalog with its subject graph",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Catalog", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Catalogs"],
                "summary": "Delete a catalog",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Aggregated request, cache and planner statistics",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Segment": {
            "type": "object",
            "properties": {
                "startDate": {"type": "string", "example": "2025-09-01"},
                "endDate": {"type": "string", "example": "2025-12-01"},
                "dayOfWeek": {"type": "integer", "minimum": 0, "maximum": 6},
                "startSession": {"type": "integer", "minimum": 1, "maximum": 16},
                "endSession": {"type": "integer", "minimum": 1, "maximum": 16}
            }
        },
        "Class": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "teacher": {"type": "string"},
                "majors": {"type": "array", "items": {"type": "string"}},
                "segments": {"type": "array", "items": {"$ref": "#/definitions/Segment"}}
            }
        },
        "Subject": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "displayOnCalendar": {"type": "boolean"},
                "selectedClass": {"type": "string"},
                "classes": {"type": "array", "items": {"$ref": "#/definitions/Class"}}
            }
        },
        "Major": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/Subject"}}
            }
        },
        "Selection": {
            "type": "object",
            "properties": {
                "major": {"type": "string"},
                "subject": {"type": "string"},
                "displayOnCalendar": {"type": "boolean"},
                "selectedClass": {"type": "string"}
            }
        },
        "PlanRequest": {
            "type": "object",
            "properties": {
                "catalogId": {"type": "string", "format": "uuid"},
                "majors": {"type": "array", "items": {"$ref": "#/definitions/Major"}},
                "selections": {"type": "array", "items": {"$ref": "#/definitions/Selection"}},
                "dates": {
                    "type": "object",
                    "properties": {
                        "from": {"type": "string"},
                        "to": {"type": "string"}
                    }
                },
                "sessions": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "AutoPlanRequest": {
            "allOf": [
                {"$ref": "#/definitions/PlanRequest"},
                {
                    "type": "object",
                    "properties": {
                        "band": {"type": "string", "enum": ["none", "morning", "afternoon", "evening"]},
                        "cyclicIndex": {"type": "integer", "minimum": 0}
                    }
                }
            ]
        },
        "PlanJobRequest": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "enum": ["manual", "auto"]},
                "clientSequence": {"type": "integer"},
                "request": {"$ref": "#/definitions/AutoPlanRequest"}
            }
        },
        "CatalogImportRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "minDate": {"type": "integer", "example": 20250901},
                "maxDate": {"type": "integer", "example": 20251231},
                "majors": {"type": "object", "description": "major -> subject -> class code -> {teacher, schedules}"}
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
