// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a customer account",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/transport.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/transport.RegisterResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Exchange credentials for a session token",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/transport.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/transport.LoginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/transport.UserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}}
                }
            }
        },
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List active products",
                "parameters": [
                    {"type": "integer", "description": "Category id", "name": "category", "in": "query"},
                    {"type": "number", "description": "Minimum effective price", "name": "minPrice", "in": "query"},
                    {"type": "number", "description": "Maximum effective price", "name": "maxPrice", "in": "query"},
                    {"type": "string", "description": "id, name, mrp, quantity or price", "name": "sortBy", "in": "query"},
                    {"type": "string", "description": "asc or desc", "name": "order", "in": "query"},
                    {"type": "integer", "description": "Page, enables pagination", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size, at most 100", "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.ProductView"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}}
                }
            }
        },
        "/products/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List active categories",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Category"}}}
                }
            }
        },
        "/products/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Full-text product search",
                "parameters": [
                    {"type": "string", "description": "Query", "name": "q", "in": "query", "required": true},
                    {"type": "integer", "description": "Page", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.SearchResult"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get an active product",
                "parameters": [
                    {"type": "integer", "description": "Product id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ProductView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}}
                }
            }
        },
        "/admin/products": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Create a product",
                "parameters": [
                    {"type": "string", "description": "SKU", "name": "sku", "in": "formData", "required": true},
                    {"type": "string", "description": "Name", "name": "name", "in": "formData", "required": true},
                    {"type": "integer", "description": "Category id", "name": "category_id", "in": "formData", "required": true},
                    {"type": "number", "description": "List price", "name": "mrp", "in": "formData", "required": true},
                    {"type": "number", "description": "Discount percentage", "name": "discount", "in": "formData"},
                    {"type": "integer", "description": "Stock", "name": "quantity", "in": "formData"},
                    {"type": "file", "description": "Product image", "name": "image", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}}
                }
            }
        },
        "/admin/products/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Replace a product",
                "parameters": [
                    {"type": "integer", "description": "Product id", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "Product image", "name": "image", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Deactivate a product",
                "parameters": [
                    {"type": "integer", "description": "Product id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/transport.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}}
                }
            }
        },
        "/admin/categories": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Create a category",
                "parameters": [
                    {"description": "Category", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/transport.CategoryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Category"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}}
                }
            }
        },
        "/admin/categories/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Replace a category",
                "parameters": [
                    {"type": "integer", "description": "Category id", "name": "id", "in": "path", "required": true},
                    {"description": "Category", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/transport.CategoryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Category"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Deactivate a category",
                "parameters": [
                    {"type": "integer", "description": "Category id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/transport.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/transport.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.Category": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "is_active": {"type": "boolean"},
                "name": {"type": "string"}
            }
        },
        "models.Product": {
            "type": "object",
            "properties": {
                "category_id": {"type": "integer"},
                "discount": {"type": "number"},
                "id": {"type": "integer"},
                "image_url": {"type": "string"},
                "is_active": {"type": "boolean"},
                "mrp": {"type": "number"},
                "name": {"type": "string"},
                "quantity": {"type": "integer"},
                "sku": {"type": "string"}
            }
        },
        "models.ProductView": {
            "type": "object",
            "properties": {
                "category_id": {"type": "integer"},
                "category_name": {"type": "string"},
                "discount": {"type": "number"},
                "effective_price": {"type": "number"},
                "id": {"type": "integer"},
                "image_url": {"type": "string"},
                "is_active": {"type": "boolean"},
                "mrp": {"type": "number"},
                "name": {"type": "string"},
                "quantity": {"type": "integer"},
                "sku": {"type": "string"}
            }
        },
        "service.SearchResult": {
            "type": "object",
            "properties": {
                "products": {"type": "array", "items": {"$ref": "#/definitions/models.ProductView"}},
                "total": {"type": "integer"}
            }
        },
        "transport.CategoryRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "is_active": {"type": "boolean"},
                "name": {"type": "string"}
            }
        },
        "transport.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "transport.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "transport.LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/transport.UserResponse"}
            }
        },
        "transport.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "transport.RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "transport.RegisterResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "user": {"$ref": "#/definitions/transport.UserResponse"}
            }
        },
        "transport.UserResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "integer"},
                "role": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the session token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Storefront API",
	Description:      "Catalog, accounts and admin management for the storefront.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
