package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Biomed Admin API",
        "description": "Reporting and export API for biomedical equipment and patient survey data",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Login and session management"},
        {"name": "Surveys", "description": "Patient survey listings"},
        {"name": "Equipment", "description": "Biomedical equipment roster"},
        {"name": "Export", "description": "Bulk PDF download"},
        {"name": "Dashboard", "description": "Aggregated survey statistics"},
        {"name": "Admin", "description": "Administrative maintenance jobs"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid token", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/encuestas": {
            "get": {
                "tags": ["Surveys"],
                "summary": "List surveys",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "tipo", "in": "query", "type": "string"},
                    {"name": "servicio", "in": "query", "type": "string", "description": "Service name, or 'all'"},
                    {"name": "start", "in": "query", "type": "string", "description": "Inclusive start date"},
                    {"name": "end", "in": "query", "type": "string", "description": "Inclusive end date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/servicios": {
            "get": {
                "tags": ["Surveys"],
                "summary": "List distinct services",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "tipo", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/equipos": {
            "get": {
                "tags": ["Equipment"],
                "summary": "List equipment or look up one device by serial",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sn", "in": "query", "type": "string", "description": "Serial number"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/export/download": {
            "get": {
                "tags": ["Export"],
                "summary": "Download survey PDFs as a zip archive",
                "security": [{"BearerAuth": []}],
                "produces": ["application/zip"],
                "parameters": [
                    {"name": "tipo", "in": "query", "type": "string"},
                    {"name": "servicio", "in": "query", "type": "string", "description": "Service name, or 'all'"},
                    {"name": "start", "in": "query", "type": "string"},
                    {"name": "end", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Zip archive stream"},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "No downloadable files match the filters", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/dashboard/summary": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Aggregated survey counts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "tipo", "in": "query", "type": "string"},
                    {"name": "servicio", "in": "query", "type": "string"},
                    {"name": "periodo", "in": "query", "type": "string", "enum": ["mensual", "trimestral", "semestral", "anual"]},
                    {"name": "start", "in": "query", "type": "string"},
                    {"name": "end", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid period", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/dashboard/export": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Download the dashboard summary as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "required": true, "enum": ["csv", "pdf"]},
                    {"name": "tipo", "in": "query", "type": "string"},
                    {"name": "servicio", "in": "query", "type": "string"},
                    {"name": "periodo", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "400": {"description": "Invalid format", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/admin/backfill": {
            "post": {
                "tags": ["Admin"],
                "summary": "Backfill missing survey file references",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "description": "Maximum rows to scan (default 200)"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "403": {"description": "Admin role required", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "Survey": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "tipo": {"type": "string"},
                "servicio": {"type": "string"},
                "fecha": {"type": "string"},
                "operator_name": {"type": "string"},
                "payload": {"type": "object"},
                "pdf_drive_path": {"type": "string"}
            }
        },
        "Equipment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "nombre": {"type": "string"},
                "marca": {"type": "string"},
                "modelo": {"type": "string"},
                "numero_serie": {"type": "string"},
                "ubicacion": {"type": "string"},
                "ciudad": {"type": "string"},
                "clase_riesgo": {"type": "string"},
                "estado": {"type": "string"},
                "imagen_url": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "BackfillResult": {
            "type": "object",
            "properties": {
                "updated": {"type": "integer"},
                "missing": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "meta": {"type": "object"}
            }
        },
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"}
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
