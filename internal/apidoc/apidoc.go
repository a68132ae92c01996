// Package apidoc assembles the OpenAPI document that publishes the entry
// route contracts.
package apidoc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/entryd/entryd/internal/handler"
	"github.com/entryd/entryd/internal/schema"
)

// Info describes the published API.
type Info struct {
	Title       string
	Version     string
	Description string
	MountPath   string
}

// Build returns the OpenAPI document for routes mounted under
// info.MountPath. The document is validated before it is returned.
func Build(ctx context.Context, info Info, routes []handler.Route) (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       info.Title,
			Version:     info.Version,
			Description: info.Description,
		},
		Paths: openapi3.NewPaths(),
	}

	for _, rt := range routes {
		doc.AddOperation(JoinPath(info.MountPath, rt.Path), rt.Method, operation(rt))
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

func operation(rt handler.Route) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = rt.OperationID
	op.Summary = rt.Summary
	op.Description = rt.Description
	op.Responses = openapi3.NewResponsesWithCapacity(len(rt.ErrorStatuses) + 1)

	for _, p := range rt.PathParams {
		op.AddParameter(openapi3.NewPathParameter(p.Name).
			WithDescription(p.Description).
			WithRequired(true).
			WithSchema(p.Schema))
	}

	if rt.RequestBody != nil {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithJSONSchema(rt.RequestBody),
		}
	}

	op.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription(http.StatusText(http.StatusOK)).
		WithJSONSchema(rt.Response))

	for _, status := range rt.ErrorStatuses {
		op.AddResponse(status, openapi3.NewResponse().
			WithDescription(http.StatusText(status)).
			WithJSONSchema(schema.ErrorBody()))
	}

	return op
}

// JoinPath joins a mount path and a route path. A mount path of "/" or ""
// leaves the route path unchanged.
func JoinPath(mount, path string) string {
	mount = strings.TrimSuffix(mount, "/")
	return mount + path
}

// Handler serves doc as JSON.
func Handler(doc *openapi3.T) http.HandlerFunc {
	body, err := json.Marshal(doc)
	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			http.Error(w, `{"error":"openapi document unavailable"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}
