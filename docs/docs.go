// Package docs registers the OpenAPI description of the splitsmart API with swag.
//
// Regenerate from the handler annotations with `go generate ./cmd/api`.
package docs

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
        "/members": {
            "get": {
                "produces": ["application/json"],
                "tags": ["members"],
                "summary": "List members",
                "parameters": [
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Items per page", "name": "per_page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["members"],
                "summary": "Register a member",
                "parameters": [
                    {"description": "Member to register", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/member.CreateMemberRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/members/{email}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["members"],
                "summary": "Get a member",
                "parameters": [
                    {"type": "string", "description": "Member e-mail", "name": "email", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/groups": {
            "get": {
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "List my groups",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "Create a group",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true},
                    {"description": "Group to create", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/group.CreateGroupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/groups/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "Get a group with its members",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true},
                    {"type": "integer", "description": "Group ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/groups/{id}/members": {
            "get": {
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "List group members",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true},
                    {"type": "integer", "description": "Group ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "Add a member to a group",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true},
                    {"type": "integer", "description": "Group ID", "name": "id", "in": "path", "required": true},
                    {"description": "Member to add", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/group.AddMemberRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/expenses": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Record an expense",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true},
                    {"description": "Expense to record", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/expense.CreateExpenseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/expenses/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Get an expense",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true},
                    {"type": "integer", "description": "Expense ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/expenses/group/{groupId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "List a group's ledger, newest first",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true},
                    {"type": "integer", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Items per page", "name": "per_page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/settlements/overview": {
            "get": {
                "produces": ["application/json"],
                "tags": ["settlements"],
                "summary": "My overview",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/settlements/group/{groupId}/balances": {
            "get": {
                "produces": ["application/json"],
                "tags": ["settlements"],
                "summary": "Group balances",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true},
                    {"type": "integer", "description": "Group ID", "name": "groupId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/settlements/group/{groupId}/debts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["settlements"],
                "summary": "Simplified debts",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true},
                    {"type": "integer", "description": "Group ID", "name": "groupId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/settlements/group/{groupId}/summary": {
            "get": {
                "produces": ["application/json"],
                "tags": ["settlements"],
                "summary": "Group summary",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true},
                    {"type": "integer", "description": "Group ID", "name": "groupId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/settlements/group/{groupId}/settle-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settlements"],
                "summary": "Settle up",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true},
                    {"type": "integer", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"description": "Payment to record", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/settlement.SettleUpRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "List my notifications",
                "parameters": [
                    {"type": "string", "description": "Acting member", "name": "X-Member-Email", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        }
    },
    "definitions": {
        "response.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"$ref": "#/definitions/response.APIError"},
                "meta": {"$ref": "#/definitions/response.Meta"}
            }
        },
        "response.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "response.Meta": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "member.CreateMemberRequest": {
            "type": "object",
            "required": ["email", "name"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "group.CreateGroupRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "group.AddMemberRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "MEMBER"]}
            }
        },
        "expense.ParticipantRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "percentage": {"type": "string"},
                "amount": {"type": "string"}
            }
        },
        "expense.CreateExpenseRequest": {
            "type": "object",
            "required": ["group_id", "amount", "split_type", "participants"],
            "properties": {
                "group_id": {"type": "integer"},
                "paid_by": {"type": "string"},
                "description": {"type": "string"},
                "amount": {"type": "string"},
                "split_type": {"type": "string", "enum": ["EQUAL", "PERCENTAGE", "EXACT"]},
                "participants": {"type": "array", "items": {"$ref": "#/definitions/expense.ParticipantRequest"}}
            }
        },
        "settlement.SettleUpRequest": {
            "type": "object",
            "required": ["to_email"],
            "properties": {
                "to_email": {"type": "string"},
                "amount": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "SplitSmart API",
	Description:      "Shared expense ledger with balances and simplified debts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
