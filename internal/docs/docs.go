// Package docs mantiene el documento OpenAPI a mano (sin codegen) y lo
// registra para que el UI de swagger lo sirva.
package docs

import "github.com/swaggo/swag"

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
        "/medicines": {
            "get": {
                "summary": "Lista los medicamentos de la partición de la sesión",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "summary": "Crea un medicamento, resuelve ocurrencias y agenda alarmas",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Creado, con resumen de agendado"},
                    "400": {"description": "Entrada inválida"}
                }
            }
        },
        "/medicines/{medID}": {
            "get": {
                "summary": "Trae un medicamento por id",
                "responses": {"200": {"description": "OK"}, "404": {"description": "No existe"}}
            },
            "put": {
                "summary": "Edita un medicamento: cancela alarmas viejas y reagenda",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Entrada inválida"}}
            },
            "delete": {
                "summary": "Elimina el medicamento y cancela sus alarmas",
                "responses": {"204": {"description": "Eliminado"}}
            }
        },
        "/medicines/{medID}/alarm-actions": {
            "post": {
                "summary": "Aplica tomar/posponer/cancelar sobre una alarma disparada",
                "responses": {"200": {"description": "OK"}, "404": {"description": "No existe"}}
            }
        },
        "/catalog": {
            "get": {
                "summary": "Catálogo completo ordenado por nombre",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Catálogo no disponible"}}
            }
        },
        "/catalog/search": {
            "get": {
                "summary": "Búsqueda con ranking de dos niveles, tope 2 resultados",
                "parameters": [{"name": "q", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/catalog/seed": {
            "post": {
                "summary": "Siembra el catálogo (no-op sin sesión autenticada)",
                "responses": {"204": {"description": "OK"}}
            }
        },
        "/history": {
            "get": {
                "summary": "Historial de adherencia, más reciente primero",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health": {
            "get": {"summary": "Liveness", "responses": {"200": {"description": "ok"}}}
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "medication-reminder API",
	Description:      "Recordatorios de medicación: catálogo, agendado de alarmas e historial de adherencia.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
