// Package docs регистрирует описание API для swaggo/http-swagger.
// Пересобирается командой swag init -g cmd/gifshop/main.go.
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
        "/register": {"post": {"tags": ["Auth"], "summary": "Регистрация пользователя", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}},
        "/login": {"post": {"tags": ["Auth"], "summary": "Авторизация пользователя", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/plans": {"get": {"tags": ["Catalog"], "summary": "Список планов", "responses": {"200": {"description": "OK"}}}},
        "/products": {"get": {"tags": ["Catalog"], "summary": "Список товаров", "responses": {"200": {"description": "OK"}}}},
        "/products/{id}": {"get": {"tags": ["Catalog"], "summary": "Товар по ID", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/products/{id}/access": {"get": {"security": [{"BearerAuth": []}], "tags": ["Downloads"], "summary": "Проверка доступа к товару", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/products/{id}/download": {"post": {"security": [{"BearerAuth": []}], "tags": ["Downloads"], "summary": "Скачивание товара", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}},
        "/subscription": {"get": {"security": [{"BearerAuth": []}], "tags": ["Subscription"], "summary": "Моя подписка", "responses": {"200": {"description": "OK"}}}},
        "/admin/plans/{name}": {"put": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Создать или обновить план", "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}, "delete": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Удалить тарифный план", "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/admin/products": {"post": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Создать товар", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}},
        "/admin/products/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Удалить товар", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/admin/products/{id}/file": {"post": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Загрузить изображение или файл товара", "consumes": ["multipart/form-data"], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "kind", "in": "formData", "required": true}, {"type": "file", "name": "file", "in": "formData", "required": true}], "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/admin/subscriptions": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Список подписок", "parameters": [{"type": "string", "name": "status", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}, {"type": "integer", "name": "offset", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/admin/subscriptions/{user_uid}": {"put": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Назначить подписку", "parameters": [{"type": "string", "name": "user_uid", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}}},
        "/admin/downloads": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Журнал скачиваний", "parameters": [{"type": "string", "name": "date", "in": "query"}, {"type": "string", "name": "user_uid", "in": "query"}, {"type": "string", "name": "q", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/admin/users/{user_uid}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Удалить пользователя", "parameters": [{"type": "string", "name": "user_uid", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}, "patch": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Включить или отключить пользователя", "parameters": [{"type": "string", "name": "user_uid", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}}}
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
	Title:            "Gifshop API",
	Description:      "Каталог товаров по подписке с дневной квотой скачиваний",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
