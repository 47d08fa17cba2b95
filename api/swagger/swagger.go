package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Roster & AI Advisor API",
        "description": "Roster CRUD, bulk import/export and Gemini-backed advisor endpoints",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Roster record management"},
        {"name": "Transfer", "description": "Bulk import and export"},
        {"name": "Roster", "description": "Destructive roster operations"},
        {"name": "Advisor", "description": "AI questions and performance reviews"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/api/v1/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string", "description": "Substring match on name or student id"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Add a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing required fields"},
                    "409": {"description": "Duplicate student id"}
                }
            }
        },
        "/api/v1/students/{studentId}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get one student",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Replace a student record by its prior student id",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"},
                    "409": {"description": "New student id already exists"}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete a student (missing ids succeed silently)",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/api/v1/students/import": {
            "post": {
                "tags": ["Transfer"],
                "summary": "Bulk import students from a JSON array or JSONL body",
                "responses": {
                    "200": {"description": "Import summary", "schema": {"$ref": "#/definitions/ImportSummary"}},
                    "400": {"description": "Payload is not a sequence of objects"}
                }
            }
        },
        "/api/v1/students/export": {
            "get": {
                "tags": ["Transfer"],
                "summary": "Export the full roster",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "json", "jsonl", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Rendered export file"}
                }
            }
        },
        "/api/v1/roster/clear": {
            "post": {
                "tags": ["Roster"],
                "summary": "Request a roster clear (step one of two)",
                "responses": {
                    "202": {"description": "Pending confirmation", "schema": {"$ref": "#/definitions/ClearTicket"}}
                }
            }
        },
        "/api/v1/roster/clear/confirm": {
            "post": {
                "tags": ["Roster"],
                "summary": "Confirm a pending roster clear",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClearConfirm"}}
                ],
                "responses": {
                    "200": {"description": "Executed"},
                    "400": {"description": "Unknown or expired token"}
                }
            }
        },
        "/api/v1/roster/clear/cancel": {
            "post": {
                "tags": ["Roster"],
                "summary": "Cancel a pending roster clear",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClearConfirm"}}
                ],
                "responses": {
                    "200": {"description": "Cancelled"},
                    "400": {"description": "Unknown or expired token"}
                }
            }
        },
        "/api/v1/advisor/ask": {
            "post": {
                "tags": ["Advisor"],
                "summary": "Ask a question about the roster",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AskRequest"}}
                ],
                "responses": {
                    "200": {"description": "Answer", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Provider failure"},
                    "503": {"description": "Advisor disabled (no API key)"}
                }
            }
        },
        "/api/v1/advisor/reviews/{studentId}": {
            "post": {
                "tags": ["Advisor"],
                "summary": "Generate a performance review",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Review", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/v1/advisor/sessions/{sessionId}": {
            "get": {
                "tags": ["Advisor"],
                "summary": "Fetch a session transcript",
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Transcript", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "StudentPayload": {
            "type": "object",
            "required": ["name", "student_id"],
            "properties": {
                "name": {"type": "string"},
                "student_id": {"type": "string"},
                "course": {"type": "string"},
                "gpa": {"type": "number"},
                "email": {"type": "string"}
            }
        },
        "ImportSummary": {
            "type": "object",
            "properties": {
                "imported": {"type": "integer"},
                "failed": {"type": "integer"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ClearTicket": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "state": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "ClearConfirm": {
            "type": "object",
            "required": ["token"],
            "properties": {
                "token": {"type": "string"}
            }
        },
        "AskRequest": {
            "type": "object",
            "required": ["question"],
            "properties": {
                "session_id": {"type": "string"},
                "question": {"type": "string"}
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
