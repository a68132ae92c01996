package handler

import (
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/entryd/entryd/internal/schema"
)

// PathParam documents one path parameter of a route.
type PathParam struct {
	Name        string
	Description string
	Schema      *openapi3.Schema
}

// Route is the contract of one entry route: where it is mounted, what it
// accepts and what it returns. The same values drive chi registration and
// the published OpenAPI document.
type Route struct {
	Method      string
	Path        string // relative to the mount path
	OperationID string
	Summary     string
	Description string
	PathParams  []PathParam
	RequestBody *openapi3.Schema
	Response    *openapi3.Schema
	// ErrorStatuses lists the non-200 statuses the route can answer with.
	ErrorStatuses []int
	Handler       http.HandlerFunc
}

// EntryRoutes returns the three entry routes served by h.
func EntryRoutes(h *EntryHandler) []Route {
	collection := h.Collection()

	return []Route{
		{
			Method:        http.MethodGet,
			Path:          "/entries",
			OperationID:   "listEntries",
			Summary:       "List entries",
			Description:   fmt.Sprintf("Assembles a list of the entries in the %q collection.", collection),
			Response:      schema.DocumentList(),
			ErrorStatuses: []int{http.StatusInternalServerError},
			Handler:       h.List,
		},
		{
			Method:        http.MethodPost,
			Path:          "/entries",
			OperationID:   "createEntries",
			Summary:       "Store entry or entries",
			Description:   fmt.Sprintf("Store a single entry or multiple entries in the %q collection.", collection),
			RequestBody:   schema.CreateBody(),
			Response:      schema.CreateResult(),
			ErrorStatuses: []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusInternalServerError},
			Handler:       h.Create,
		},
		{
			Method:      http.MethodGet,
			Path:        "/entries/{key}",
			OperationID: "getEntry",
			Summary:     "Retrieve an entry",
			Description: fmt.Sprintf("Retrieves an entry from the %q collection by key.", collection),
			PathParams: []PathParam{
				{Name: "key", Description: "Key of the entry.", Schema: schema.Key()},
			},
			Response:      schema.Document(),
			ErrorStatuses: []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError},
			Handler:       h.Get,
		},
	}
}

// Register mounts routes on r.
func Register(r chi.Router, routes []Route) {
	for _, rt := range routes {
		r.Method(rt.Method, rt.Path, rt.Handler)
	}
}
