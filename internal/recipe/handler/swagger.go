package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the recipe API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>cocktails API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "cocktails", "version": "v0.1.0" },
  "paths": {
    "/api/recipes": {
      "get": {
        "summary": "List recipes sorted by name",
        "parameters": [{ "name": "ingredient", "in": "query", "schema": { "type": "string" }, "description": "only recipes using this ingredient" }],
        "responses": { "200": { "description": "recipes" } }
      }
    },
    "/api/recipes/top": {
      "get": {
        "summary": "Highest reviewed recipes",
        "parameters": [
          { "name": "n", "in": "query", "schema": { "type": "integer", "default": 10 } },
          { "name": "rounded", "in": "query", "schema": { "type": "boolean" }, "description": "round ratings to the nearest half star" }
        ],
        "responses": { "200": { "description": "recipes with reviews and rating" } }
      }
    },
    "/api/recipes/{name}": {
      "get": { "summary": "Get a recipe by name", "responses": { "200": { "description": "recipe" }, "404": { "description": "not found" } } }
    },
    "/api/recipes/{name}/reviews": {
      "post": {
        "summary": "Add a review",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"rating":{"type":"integer","minimum":0,"maximum":5},"when":{"type":"string","format":"date-time"}}}}}},
        "responses": { "201": { "description": "review stored" }, "404": { "description": "recipe not found" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
