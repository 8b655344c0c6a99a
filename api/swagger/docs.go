// Package swagger registers the OpenAPI document served under /swagger.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/token/": {
            "post": {
                "tags": ["auth"],
                "summary": "Obtain access and refresh tokens",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/service.LoginRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/token/refresh/": {
            "post": {
                "tags": ["auth"],
                "summary": "Rotate refresh token",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/service.RefreshRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/logout/": {
            "post": {
                "tags": ["auth"],
                "summary": "Revoke refresh token",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/audit-logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["audit"],
                "summary": "List audit logs",
                "parameters": [
                    {"type": "string", "name": "action", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/sales/customers/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["customers"],
                "summary": "List customers",
                "parameters": [
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["customers"],
                "summary": "Create customer",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/service.CreateCustomerRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/sales/sales-persons/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["customers"],
                "summary": "List sales persons",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["customers"],
                "summary": "Create sales person",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/sales/TDS/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tax"],
                "summary": "List TDS options",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/sales/TCS/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tax"],
                "summary": "List TCS options",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tax"],
                "summary": "Create TCS option",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/service.CreateTaxOptionRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/sales/delivery-challans/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["delivery-challans"],
                "summary": "List delivery challans",
                "parameters": [
                    {"type": "string", "name": "customer", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/sales/delivery-challans/create/": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["delivery-challans"],
                "summary": "Create delivery challan",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/sales/delivery-challans/{id}/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["delivery-challans"],
                "summary": "Get delivery challan",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/sales/delivery-challans/{id}/pdf": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["delivery-challans"],
                "summary": "Delivery challan PDF",
                "produces": ["application/pdf"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/sales/recurring-invoices/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["recurring-invoices"],
                "summary": "List recurring invoices",
                "parameters": [{"type": "string", "name": "status", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/sales/recurring-invoices/create/": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["recurring-invoices"],
                "summary": "Create recurring invoice",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/sales/recurring-invoices/{id}/generate/": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["recurring-invoices"],
                "summary": "Generate invoice now",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/sales/invoices/unpaid/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "List unpaid invoices of a customer",
                "parameters": [{"type": "string", "name": "customer", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/sales/invoices/create/": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Create invoice",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/v1/sales/invoices/{id}/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Get invoice",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/sales/payments/create/": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["payments"],
                "summary": "Record payment",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/sales/reports/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["reports"],
                "summary": "Sales summary",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/sales/reports/documents.xlsx": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["reports"],
                "summary": "Export documents",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "service.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "service.RefreshRequest": {
            "type": "object",
            "required": ["refresh"],
            "properties": {"refresh": {"type": "string"}}
        },
        "service.CreateCustomerRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "phone": {"type": "string"}}
        },
        "service.CreateTaxOptionRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}, "rate": {"type": "string", "example": "1.00"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Salesdesk API",
	Description:      "Delivery challans, recurring invoices and customer payments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
