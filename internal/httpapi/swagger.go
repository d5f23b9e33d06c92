//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/version": {"get": {"produces": ["application/json"], "summary": "Client and server API versions", "responses": {"200": {"description": "OK"}}}},
        "/status": {"get": {"produces": ["application/json"], "summary": "Last device status snapshot", "responses": {"200": {"description": "OK"}}}},
        "/filenames": {"get": {"produces": ["application/json"], "summary": "Filename list or a status alias", "responses": {"200": {"description": "OK"}}}},
        "/images": {"get": {"produces": ["application/json"], "summary": "Bulk image list or a status alias", "responses": {"200": {"description": "OK"}}}},
        "/nextImage": {"get": {"produces": ["application/json"], "summary": "Next image record or a status alias", "responses": {"200": {"description": "OK"}}}},
        "/image": {"get": {"produces": ["application/json"], "summary": "Load an image", "parameters": [{"type": "string", "name": "imageName", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/eject": {"get": {"produces": ["application/json"], "summary": "Eject the loaded image", "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "zulubridge API",
	Description:      "HTTP control surface for the image-loading peer.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// MountSwagger serves the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
