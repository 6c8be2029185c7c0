// Package openapi serves an OpenAPI 3.0 document and a Swagger UI page for
// the routes the server registers.
package openapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Param is a documented query parameter.
type Param struct {
	Name        string
	Required    bool
	Description string
}

// Operation documents one route. Path uses echo syntax (":id").
type Operation struct {
	Method    string
	Path      string
	Summary   string
	Tag       string
	Query     []Param
	Body      string            // component schema name, empty when none
	Responses map[string]string // status code -> description
}

// Generator builds an OpenAPI 3.0 spec from registered operations.
type Generator struct {
	title   string
	version string
	ops     []Operation
	schemas map[string]interface{}
}

func NewGenerator(title, version string) *Generator {
	return &Generator{
		title:   title,
		version: version,
		schemas: map[string]interface{}{"Error": errorSchema()},
	}
}

func (g *Generator) Add(ops ...Operation) {
	g.ops = append(g.ops, ops...)
}

// Schema registers a component schema referenced by Operation.Body.
func (g *Generator) Schema(name string, schema map[string]interface{}) {
	g.schemas[name] = schema
}

// Documented reports whether method and path have an operation.
func (g *Generator) Documented(method, path string) bool {
	for _, op := range g.ops {
		if op.Method == method && op.Path == path {
			return true
		}
	}
	return false
}

// GenerateSpec produces the OpenAPI 3.0 spec as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	paths := make(map[string]interface{})
	for _, op := range g.ops {
		path, pathParams := pathTemplate(op.Path)
		item, _ := paths[path].(map[string]interface{})
		if item == nil {
			item = make(map[string]interface{})
			paths[path] = item
		}
		item[strings.ToLower(op.Method)] = g.buildOperation(op, pathParams)
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   g.title,
			"version": g.version,
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": g.schemas,
		},
	}
}

func (g *Generator) buildOperation(op Operation, pathParams []string) map[string]interface{} {
	params := make([]map[string]interface{}, 0, len(pathParams)+len(op.Query))
	for _, name := range pathParams {
		params = append(params, map[string]interface{}{
			"name": name, "in": "path", "required": true,
			"schema": map[string]string{"type": "string"},
		})
	}
	for _, q := range op.Query {
		p := map[string]interface{}{
			"name": q.Name, "in": "query", "required": q.Required,
			"schema": map[string]string{"type": "string"},
		}
		if q.Description != "" {
			p["description"] = q.Description
		}
		params = append(params, p)
	}

	out := map[string]interface{}{
		"summary":     op.Summary,
		"operationId": operationID(op),
		"parameters":  params,
		"responses":   buildResponses(op.Responses),
	}
	if op.Tag != "" {
		out["tags"] = []string{op.Tag}
	}
	if op.Body != "" {
		out["requestBody"] = map[string]interface{}{
			"required": true,
			"content": map[string]interface{}{
				echo.MIMEApplicationJSON: map[string]interface{}{
					"schema": map[string]string{"$ref": "#/components/schemas/" + op.Body},
				},
			},
		}
	}
	return out
}

func buildResponses(responses map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(responses))
	for code, desc := range responses {
		r := map[string]interface{}{"description": desc}
		if code[0] == '4' || code[0] == '5' {
			r["content"] = map[string]interface{}{
				echo.MIMEApplicationJSON: map[string]interface{}{
					"schema": map[string]string{"$ref": "#/components/schemas/Error"},
				},
			}
		}
		out[code] = r
	}
	return out
}

// pathTemplate converts "/person/:id" into "/person/{id}" and returns the
// parameter names in order.
func pathTemplate(p string) (string, []string) {
	segs := strings.Split(p, "/")
	var names []string
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			names = append(names, s[1:])
			segs[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segs, "/"), names
}

// operationID derives a stable identifier like "put_person_id".
func operationID(op Operation) string {
	r := strings.NewReplacer("/", "_", ":", "", "{", "", "}", "")
	return strings.ToLower(op.Method) + strings.TrimRight(r.Replace(op.Path), "_")
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"type", "status", "code", "message"},
		"properties": map[string]interface{}{
			"type":     map[string]string{"type": "string"},
			"status":   map[string]string{"type": "integer"},
			"code":     map[string]string{"type": "string"},
			"message":  map[string]string{"type": "string"},
			"metadata": map[string]string{"type": "object"},
		},
	}
}

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>SafetyNet Alerts API - Swagger UI</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" >
  <style>
    html { box-sizing: border-box; overflow-y: scroll; }
    *, *:before, *:after { box-sizing: inherit; }
    body { margin: 0; background: #fafafa; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/openapi.json",
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [
        SwaggerUIBundle.presets.apis,
        SwaggerUIBundle.SwaggerUIStandalonePreset
      ],
      layout: "BaseLayout"
    })
  </script>
</body>
</html>`

// RegisterRoutes registers the OpenAPI endpoints.
func (g *Generator) RegisterRoutes(e *echo.Echo) {
	e.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.GenerateSpec())
	})
	e.GET("/docs", func(c echo.Context) error {
		return c.HTML(http.StatusOK, swaggerUIHTML)
	})
}
