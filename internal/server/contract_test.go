package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// contractRouter resolves requests against the published document.
func contractRouter(t *testing.T, doc *openapi3.T, baseURL string) routers.Router {
	t.Helper()

	doc.Servers = openapi3.Servers{{URL: baseURL}}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		t.Fatalf("Failed to create router from document: %v", err)
	}
	return router
}

// TestResponsesMatchPublishedContract sends real requests through the
// router and validates every answer against the OpenAPI document served
// on /openapi.json.
func TestResponsesMatchPublishedContract(t *testing.T) {
	srv, doc := newTestStack(t, "/api/v1")
	router := contractRouter(t, doc, srv.URL)

	created := doRequest(t, http.MethodPost, srv.URL+"/api/v1/entries", `{"name":"Ann","age":30}`)
	key := extractKey(t, created)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"list", http.MethodGet, "/api/v1/entries", "", http.StatusOK},
		{"create single", http.MethodPost, "/api/v1/entries", `{"name":"Bob","age":41,"city":"Oslo"}`, http.StatusOK},
		{"create batch", http.MethodPost, "/api/v1/entries", `[{"name":"A","age":1},{"name":"B","age":2}]`, http.StatusOK},
		{"create empty batch", http.MethodPost, "/api/v1/entries", `[]`, http.StatusOK},
		{"create invalid", http.MethodPost, "/api/v1/entries", `[{"name":"A","age":1},{"name":"B","age":"x"}]`, http.StatusBadRequest},
		{"create malformed", http.MethodPost, "/api/v1/entries", `{"name":`, http.StatusBadRequest},
		{"create too large", http.MethodPost, "/api/v1/entries", `{"name":"` + strings.Repeat("a", 2048) + `","age":1}`, http.StatusRequestEntityTooLarge},
		{"get", http.MethodGet, "/api/v1/entries/" + key, "", http.StatusOK},
		{"get missing", http.MethodGet, "/api/v1/entries/doesnotexist", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, body)
			if err != nil {
				t.Fatalf("Failed to create request: %v", err)
			}
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}

			route, pathParams, err := router.FindRoute(req)
			if err != nil {
				t.Fatalf("Could not find route in document: %v", err)
			}

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("%s %s: %v", tt.method, tt.path, err)
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("Failed to read response body: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, resp.StatusCode, respBody)
			}

			input := &openapi3filter.ResponseValidationInput{
				RequestValidationInput: &openapi3filter.RequestValidationInput{
					Request:    req,
					PathParams: pathParams,
					Route:      route,
				},
				Status: resp.StatusCode,
				Header: resp.Header,
				Body:   io.NopCloser(bytes.NewReader(respBody)),
			}
			if err := openapi3filter.ValidateResponse(context.Background(), input); err != nil {
				t.Errorf("Response validation failed: %v\nBody: %s", err, respBody)
			}
		})
	}
}

// TestValidRequestsMatchPublishedContract checks that the bodies the
// service accepts are also accepted by the published request schema.
func TestValidRequestsMatchPublishedContract(t *testing.T) {
	srv, doc := newTestStack(t, "/api/v1")
	router := contractRouter(t, doc, srv.URL)

	for _, body := range []string{
		`{"name":"Ann","age":30}`,
		`{"name":"Ann","age":30.5,"tags":["a"]}`,
		`[{"name":"A","age":1},{"name":"B","age":2}]`,
	} {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/entries", strings.NewReader(body))
		if err != nil {
			t.Fatalf("Failed to create request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")

		route, pathParams, err := router.FindRoute(req)
		if err != nil {
			t.Fatalf("Could not find route in document: %v", err)
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		}
		if err := openapi3filter.ValidateRequest(context.Background(), input); err != nil {
			t.Errorf("request %s rejected by document: %v", body, err)
		}
	}
}

func doRequest(t *testing.T, method, url, body string) []byte {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.StatusCode, data)
	}
	return data
}

func extractKey(t *testing.T, body []byte) string {
	t.Helper()

	var created struct {
		Key string `json:"_key"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created entry: %v", err)
	}
	if created.Key == "" {
		t.Fatalf("created entry has no key: %s", body)
	}
	return created.Key
}
