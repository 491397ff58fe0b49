// Package docs registers the OpenAPI description served by the Swagger UI.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/documents": {
            "get": {
                "summary": "List documents with filters and pagination",
                "tags": ["documents"],
                "parameters": [
                    {"name": "title", "in": "query", "type": "string"},
                    {"name": "start_date", "in": "query", "type": "string"},
                    {"name": "end_date", "in": "query", "type": "string"},
                    {"name": "categories", "in": "query", "type": "string"},
                    {"name": "tags", "in": "query", "type": "string"},
                    {"name": "owner_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "summary": "Create a document with its initial version",
                "tags": ["documents"],
                "consumes": ["multipart/form-data"],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/documents/{id}": {
            "get": {
                "summary": "Get a document with its version history",
                "tags": ["documents"],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "summary": "Update document metadata",
                "tags": ["documents"],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "summary": "Delete a document and all its versions",
                "tags": ["documents"],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/documents/{id}/versions": {
            "get": {
                "summary": "List a document's versions, newest first",
                "tags": ["versions"],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "summary": "Append a new version",
                "tags": ["versions"],
                "consumes": ["multipart/form-data"],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}
            }
        },
        "/documents/{id}/revert": {
            "post": {
                "summary": "Revert to a prior version by appending a copy of it",
                "tags": ["versions"],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/reports/storage": {
            "get": {"summary": "Storage breakdown by canonical tag bucket", "tags": ["reports"], "responses": {"200": {"description": "OK"}}}
        },
        "/reports/departments": {
            "get": {"summary": "Document counts and shares per department", "tags": ["reports"], "responses": {"200": {"description": "OK"}}}
        },
        "/reports/activity": {
            "get": {"summary": "Monthly upload and storage series", "tags": ["reports"], "responses": {"200": {"description": "OK"}}}
        },
        "/notifications": {
            "get": {"summary": "List the acting user's notifications", "tags": ["notifications"], "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "DMS API",
	Description:      "Document management backend: versioned documents, filtered listings and usage reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
