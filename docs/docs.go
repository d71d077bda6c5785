// Package docs содержит swagger-описание HTTP API для /docs.
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
        "/auth/login": {
            "post": {
                "description": "Проверяет учетные данные и выдает bearer-токен. Поле username содержит email.",
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Вход по email и паролю",
                "parameters": [
                    {"type": "string", "description": "Email пользователя", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "Пароль", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/login.TokenResponse"}},
                    "400": {"description": "Учетная запись отключена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Неверный email или пароль", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Слишком много попыток", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "503": {"description": "Хранилище недоступно", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Текущий пользователь",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/users.UserResponse"}},
                    "400": {"description": "Учетная запись отключена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Токен не прошёл проверку", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Список пользователей",
                "parameters": [
                    {"type": "integer", "default": 0, "description": "Сколько записей пропустить", "name": "skip", "in": "query"},
                    {"type": "integer", "default": 100, "description": "Размер страницы", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/users.PageResponse"}},
                    "401": {"description": "Токен не прошёл проверку", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Недостаточно прав", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Регистрация пользователя",
                "parameters": [
                    {"description": "Данные нового пользователя", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UserCreate"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/users.UserResponse"}},
                    "400": {"description": "Email уже занят", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "503": {"description": "Хранилище недоступно", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Пользователь по id",
                "parameters": [
                    {"type": "string", "description": "ID пользователя", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/users.UserResponse"}},
                    "401": {"description": "Токен не прошёл проверку", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Недостаточно прав", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Частичное обновление: отсутствующие поля не меняются.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Обновление пользователя",
                "parameters": [
                    {"type": "string", "description": "ID пользователя", "name": "id", "in": "path", "required": true},
                    {"description": "Изменяемые поля", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UserUpdate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/users.UserResponse"}},
                    "400": {"description": "Email уже занят", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Токен не прошёл проверку", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Недостаточно прав", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "login.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string", "example": "bearer"}
            }
        },
        "models.UserCreate": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "full_name": {"type": "string", "maxLength": 100},
                "password": {"type": "string", "minLength": 8, "maxLength": 72}
            }
        },
        "models.UserUpdate": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "full_name": {"type": "string", "maxLength": 100},
                "is_active": {"type": "boolean"},
                "password": {"type": "string", "minLength": 8, "maxLength": 72}
            }
        },
        "models.UserRead": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"},
                "full_name": {"type": "string", "example": "Alice Liddell"},
                "id": {"type": "string"},
                "is_active": {"type": "boolean", "example": true},
                "is_superuser": {"type": "boolean", "example": false}
            }
        },
        "list.Page": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "users": {"type": "array", "items": {"$ref": "#/definitions/models.UserRead"}}
            }
        },
        "users.UserResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "OK"},
                "data": {"$ref": "#/definitions/models.UserRead"}
            }
        },
        "users.PageResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "OK"},
                "data": {"$ref": "#/definitions/list.Page"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid request body"},
                "status": {"type": "string", "example": "Error"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "User Service API",
	Description:      "Регистрация, вход и управление учётными записями пользователей",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
