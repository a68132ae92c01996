// Package schema declares the shapes accepted and returned by the entry
// routes and validates decoded JSON values against them.
//
// Schemas are kin-openapi schema objects, so the same definitions drive
// request validation, response validation and the published OpenAPI document.
package schema

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/entryd/entryd/internal/model"
)

// Entry is the input shape of a single entry: a required non-empty string
// name, a required number age and any additional fields.
func Entry() *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty(model.FieldName, openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty(model.FieldAge, openapi3.NewFloat64Schema()).
		WithRequired([]string{model.FieldName, model.FieldAge}).
		WithAnyAdditionalProperties()
	s.Title = "Entry"
	return s
}

// CreateBody accepts either one entry or an array of entries.
func CreateBody() *openapi3.Schema {
	return openapi3.NewOneOfSchema(
		Entry(),
		openapi3.NewArraySchema().WithItems(Entry()),
	)
}

// Document is the shape of a stored document. Stored data is not
// re-validated against Entry, so any JSON object passes.
func Document() *openapi3.Schema {
	s := openapi3.NewObjectSchema().WithAnyAdditionalProperties()
	s.Title = "Document"
	return s
}

// DocumentList is the response of the list route.
func DocumentList() *openapi3.Schema {
	return openapi3.NewArraySchema().WithItems(Document())
}

// CreateResult mirrors CreateBody: one document or an array of documents.
func CreateResult() *openapi3.Schema {
	return openapi3.NewOneOfSchema(
		Document(),
		DocumentList(),
	)
}

// Key is the shape of the key path parameter.
func Key() *openapi3.Schema {
	return openapi3.NewStringSchema().WithMinLength(1)
}

// ErrorBody is the shape of every error response written by the handlers.
func ErrorBody() *openapi3.Schema {
	fieldError := openapi3.NewObjectSchema().
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("error", openapi3.NewStringSchema())

	return openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("code", openapi3.NewStringSchema()).
		WithProperty("details", openapi3.NewArraySchema().WithItems(fieldError)).
		WithRequired([]string{"error", "code"})
}
