package autorouter

import (
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/elysium/handler"
	"github.com/dmitrymomot/elysium/pkg/logger"
)

// OpenAPI is a minimal OpenAPI 3 document listing registered routes.
type OpenAPI struct {
	OpenAPI string                          `json:"openapi"`
	Info    OpenAPIInfo                     `json:"info"`
	Paths   map[string]map[string]Operation `json:"paths"`
}

// OpenAPIInfo is the document info object.
type OpenAPIInfo struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

// Operation describes one method on a path.
type Operation struct {
	OperationID string              `json:"operationId"`
	Summary     string              `json:"summary,omitempty"`
	Tags        []string            `json:"tags"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
	Responses   map[string]Response `json:"responses"`
}

// Parameter is a path parameter.
type Parameter struct {
	Name     string            `json:"name"`
	In       string            `json:"in"`
	Required bool              `json:"required"`
	Schema   map[string]string `json:"schema"`
}

// Response is an operation response.
type Response struct {
	Description string `json:"description"`
}

// anyMethods expands routes registered for every method.
var anyMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// OpenAPI builds a document from the routes registered so far. Pages are
// tagged "page" and module routes "api".
func (t *Table) OpenAPI(title, version string) OpenAPI {
	catchAll := make(map[string]string)
	kinds := make(map[string]Kind)
	for _, d := range t.Descriptors() {
		kinds[d.File] = d.Kind
		if d.CatchAll != "" {
			catchAll[d.File] = d.CatchAll
		}
	}

	doc := OpenAPI{
		OpenAPI: "3.0.3",
		Info:    OpenAPIInfo{Title: title, Version: version},
		Paths:   make(map[string]map[string]Operation),
	}
	for _, route := range t.Routes() {
		rest := catchAll[route.File]
		if rest == "" {
			rest = "path"
		}
		path, params := openAPIPath(route.Pattern, rest)

		tag := "api"
		if kinds[route.File] == KindPage {
			tag = "page"
		}

		methods := []string{route.Method}
		if route.Method == "*" {
			methods = anyMethods
		}
		ops := doc.Paths[path]
		if ops == nil {
			ops = make(map[string]Operation)
			doc.Paths[path] = ops
		}
		for _, m := range methods {
			ops[strings.ToLower(m)] = Operation{
				OperationID: operationID(m, path),
				Summary:     route.File,
				Tags:        []string{tag},
				Parameters:  params,
				Responses:   map[string]Response{"default": {Description: "JSON envelope or HTML page"}},
			}
		}
	}
	return doc
}

// OpenAPIHandler serves the document as JSON.
func (t *Table) OpenAPIHandler(title, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := handler.JSON(t.OpenAPI(title, version), http.StatusOK).Render(w, r); err != nil {
			t.cfg.log.ErrorContext(r.Context(), "openapi document not written", logger.Error(err))
		}
	}
}

// openAPIPath turns a chi pattern into an OpenAPI path template: {name}
// stays, a trailing * becomes {rest}.
func openAPIPath(pattern, rest string) (string, []Parameter) {
	var params []Parameter
	parts := strings.Split(pattern, "/")
	for i, p := range parts {
		name := ""
		switch {
		case p == "*":
			name = rest
			parts[i] = "{" + rest + "}"
		case strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}"):
			name = strings.Trim(p, "{}")
			if n, _, ok := strings.Cut(name, ":"); ok {
				name = n
				parts[i] = "{" + n + "}"
			}
		}
		if name != "" && !slices.ContainsFunc(params, func(q Parameter) bool { return q.Name == name }) {
			params = append(params, Parameter{Name: name, In: "path", Required: true, Schema: map[string]string{"type": "string"}})
		}
	}
	path := strings.Join(parts, "/")
	if path == "" {
		path = "/"
	}
	return path, params
}

func operationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}")
		if seg == "" {
			continue
		}
		b.WriteByte('_')
		b.WriteString(strings.ReplaceAll(seg, "-", "_"))
	}
	return b.String()
}
