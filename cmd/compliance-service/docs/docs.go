// Package docs registers the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@example.com"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/rules": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rules"],
                "summary": "List compliance rules",
                "parameters": [
                    {"type": "string", "name": "country_code", "in": "query"},
                    {"type": "string", "name": "company_type", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rules"],
                "summary": "Create a compliance rule",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/rules/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rules"],
                "summary": "Get a compliance rule by ID",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rules"],
                "summary": "Update a compliance rule",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["rules"],
                "summary": "Delete a compliance rule",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/rules/countries": {
            "get": {
                "produces": ["application/json"],
                "tags": ["lookups"],
                "summary": "List countries present in the rule store",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rules/company-types": {
            "get": {
                "produces": ["application/json"],
                "tags": ["lookups"],
                "summary": "List company types present in the rule store",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rules/designations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["lookups"],
                "summary": "List professional-designation labels",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rules/import": {
            "post": {
                "consumes": ["multipart/form-data", "text/csv"],
                "produces": ["application/json"],
                "tags": ["rules"],
                "summary": "Bulk-import compliance rules from CSV",
                "parameters": [{"type": "file", "name": "file", "in": "formData", "required": false}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/rules/import/sample": {
            "get": {
                "produces": ["text/csv"],
                "tags": ["rules"],
                "summary": "Download the import template CSV",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rules/import/reports": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rules"],
                "summary": "List recent bulk-import reports",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rules/import/reports/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rules"],
                "summary": "Get one bulk-import report",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/countries": {
            "get": {
                "produces": ["application/json"],
                "tags": ["countries"],
                "summary": "List registered countries",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["countries"],
                "summary": "Register a country with its designation labels",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/countries/{code}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["countries"],
                "summary": "Get a registered country by code",
                "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/countries/{code}/designation": {
            "get": {
                "produces": ["application/json"],
                "tags": ["countries"],
                "summary": "Resolve CA/CS designation labels for a country",
                "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/submissions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["submissions"],
                "summary": "List submissions",
                "parameters": [{"type": "string", "name": "status", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["submissions"],
                "summary": "Propose a compliance obligation",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/submissions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["submissions"],
                "summary": "Get a submission by ID",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["submissions"],
                "summary": "Delete a submission",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/submissions/{id}/review": {
            "post": {
                "produces": ["application/json"],
                "tags": ["submissions"],
                "summary": "Move a pending submission to under_review",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/submissions/{id}/approve": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["submissions"],
                "summary": "Approve a submission and promote it into the rule store",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/submissions/{id}/reject": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["submissions"],
                "summary": "Reject a submission",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/submissions/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["submissions"],
                "summary": "Aggregate submission counts by status",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/audit/logs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "List rule audit log entries",
                "parameters": [
                    {"type": "integer", "name": "rule_id", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Compass Compliance Service API",
	Description:      "REST API for managing compliance rules, user submissions, and country designation lookups",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
