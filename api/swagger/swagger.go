package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Service Desk API",
        "description": "Repair request tracking for school facilities",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, tokens and passwords"},
        {"name": "RepairRequests", "description": "Teacher-facing repair requests"},
        {"name": "Electrician", "description": "Quoting work queue"},
        {"name": "AdminRepairRequests", "description": "Back-office listing and decisions"},
        {"name": "AdminMenus", "description": "Menu catalogue management"},
        {"name": "RoleMenus", "description": "Role to menu assignments"},
        {"name": "Menus", "description": "Per-user navigation"},
        {"name": "Identity", "description": "Users and roles"},
        {"name": "Permissions", "description": "Permission grants"}
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
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/app/repair-request": {
            "post": {
                "tags": ["RepairRequests"],
                "summary": "Submit repair request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRepairRequestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/app/repair-request/{id}": {
            "put": {
                "tags": ["RepairRequests"],
                "summary": "Edit repair request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Invalid state"}
                }
            }
        },
        "/app/repair-request/{id}/cancel": {
            "post": {
                "tags": ["RepairRequests"],
                "summary": "Cancel repair request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Invalid state"}
                }
            }
        },
        "/app/repair-request/my-list": {
            "get": {
                "tags": ["RepairRequests"],
                "summary": "List own repair requests",
                "parameters": [
                    {"name": "skipCount", "in": "query", "type": "integer"},
                    {"name": "maxResultCount", "in": "query", "type": "integer"},
                    {"name": "sorting", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/app/repair-request/{id}/detail": {
            "get": {
                "tags": ["RepairRequests"],
                "summary": "Repair request detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/app/electrician-repair-request": {
            "get": {
                "tags": ["Electrician"],
                "summary": "Electrician work queue",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/app/electrician-repair-request/{id}/quote": {
            "put": {
                "tags": ["Electrician"],
                "summary": "Quote repair request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/QuoteRepairRequestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Invalid state"}
                }
            }
        },
        "/app/admin-repair-request": {
            "get": {
                "tags": ["AdminRepairRequests"],
                "summary": "Admin repair request listing",
                "parameters": [
                    {"name": "approvalStatus", "in": "query", "type": "string"},
                    {"name": "isCancelled", "in": "query", "type": "boolean"},
                    {"name": "building", "in": "query", "type": "string"},
                    {"name": "room", "in": "query", "type": "string"},
                    {"name": "skipCount", "in": "query", "type": "integer"},
                    {"name": "maxResultCount", "in": "query", "type": "integer"},
                    {"name": "sorting", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/app/admin-repair-request/approvals": {
            "get": {
                "tags": ["AdminRepairRequests"],
                "summary": "Approval queue",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/app/admin-repair-request/export": {
            "get": {
                "tags": ["AdminRepairRequests"],
                "summary": "Export repair requests",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/app/admin-repair-request/{id}/approve": {
            "post": {
                "tags": ["AdminRepairRequests"],
                "summary": "Approve repair request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Invalid state"}
                }
            }
        },
        "/app/admin-repair-request/{id}/reject": {
            "post": {
                "tags": ["AdminRepairRequests"],
                "summary": "Reject repair request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Invalid state"}
                }
            }
        },
        "/app/admin-menu": {
            "get": {
                "tags": ["AdminMenus"],
                "summary": "List menus",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["AdminMenus"],
                "summary": "Create menu",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate code"}
                }
            }
        },
        "/app/admin-menu/{id}": {
            "put": {
                "tags": ["AdminMenus"],
                "summary": "Update menu",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["AdminMenus"],
                "summary": "Delete menu",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/app/admin-role-menu/by-role/{roleId}": {
            "get": {
                "tags": ["RoleMenus"],
                "summary": "Menus assigned to role",
                "parameters": [
                    {"name": "roleId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/app/admin-role-menu/save": {
            "post": {
                "tags": ["RoleMenus"],
                "summary": "Save role menus",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/app/menu/my-menus": {
            "get": {
                "tags": ["Menus"],
                "summary": "Current user's menus",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/identity/users": {
            "get": {
                "tags": ["Identity"],
                "summary": "List users",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Identity"],
                "summary": "Create user",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/identity/users/{id}": {
            "get": {
                "tags": ["Identity"],
                "summary": "Get user",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Identity"],
                "summary": "Update user",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Identity"],
                "summary": "Deactivate user",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/identity/users/{id}/roles": {
            "get": {
                "tags": ["Identity"],
                "summary": "Get user roles",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Identity"],
                "summary": "Set user roles",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/identity/roles": {
            "get": {
                "tags": ["Identity"],
                "summary": "List roles",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Identity"],
                "summary": "Create role",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/identity/roles/{id}": {
            "get": {
                "tags": ["Identity"],
                "summary": "Get role",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Identity"],
                "summary": "Update role",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Identity"],
                "summary": "Delete role",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/permission-management/permissions": {
            "get": {
                "tags": ["Permissions"],
                "summary": "Get permission grants",
                "parameters": [
                    {"name": "providerType", "in": "query", "required": true, "type": "string"},
                    {"name": "providerKey", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Permissions"],
                "summary": "Update permission grants",
                "parameters": [
                    {"name": "providerType", "in": "query", "required": true, "type": "string"},
                    {"name": "providerKey", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateRepairRequestRequest": {
            "type": "object",
            "required": ["title", "description", "building", "room"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "building": {"type": "string"},
                "room": {"type": "string"}
            }
        },
        "QuoteRepairRequestRequest": {
            "type": "object",
            "required": ["amount"],
            "properties": {
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
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
