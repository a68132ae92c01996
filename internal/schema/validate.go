package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/entryd/entryd/internal/model"
)

// ErrInvalidJSON is returned when a body cannot be parsed as JSON.
var ErrInvalidJSON = errors.New("invalid JSON body")

// FieldError describes one schema violation. Field is a JSON pointer into
// the validated value ("/" for the value itself).
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError is returned when a value does not match its schema.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Error
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// Validate checks value against s and reports every violation.
// Value must be in the form produced by encoding/json (maps, slices,
// strings, json.Number or float64, bools, nil).
func Validate(s *openapi3.Schema, value any, opts ...openapi3.SchemaValidationOption) error {
	opts = append(opts, openapi3.MultiErrors())
	if err := s.VisitJSON(value, opts...); err != nil {
		return &ValidationError{
			Message: "Validation failed",
			Fields:  fieldErrors(err, "", nil),
		}
	}
	return nil
}

// ValidateResponse encodes payload, decodes it back into generic JSON values
// and validates the result against s. It returns the encoded bytes so the
// caller writes exactly what was validated.
func ValidateResponse(s *openapi3.Schema, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}

	value, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if err := Validate(s, value, openapi3.VisitAsResponse()); err != nil {
		return nil, err
	}
	return data, nil
}

// DecodeCreateRequest parses a create body and resolves it once into a
// single entry or a batch. Every element is validated before anything is
// returned, so an invalid element rejects the whole body.
func DecodeCreateRequest(body []byte) (model.CreateRequest, error) {
	value, err := decode(body)
	if err != nil {
		return model.CreateRequest{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	entrySchema := Entry()

	switch v := value.(type) {
	case map[string]any:
		entry, fields := decodeEntry(entrySchema, v, "")
		if len(fields) > 0 {
			return model.CreateRequest{}, &ValidationError{Message: "Validation failed", Fields: fields}
		}
		return model.SingleEntry(entry), nil

	case []any:
		var fields []FieldError
		entries := make([]model.Entry, 0, len(v))
		for i, item := range v {
			prefix := "/" + strconv.Itoa(i)
			obj, ok := item.(map[string]any)
			if !ok {
				fields = append(fields, FieldError{Field: prefix, Error: "value must be an object"})
				continue
			}
			entry, errs := decodeEntry(entrySchema, obj, prefix)
			if len(errs) > 0 {
				fields = append(fields, errs...)
				continue
			}
			entries = append(entries, entry)
		}
		if len(fields) > 0 {
			return model.CreateRequest{}, &ValidationError{Message: "Validation failed", Fields: fields}
		}
		return model.EntryBatch(entries), nil

	default:
		return model.CreateRequest{}, &ValidationError{
			Message: "Validation failed",
			Fields: []FieldError{{
				Field: "/",
				Error: "body must be an entry object or an array of entry objects",
			}},
		}
	}
}

func decodeEntry(s *openapi3.Schema, obj map[string]any, prefix string) (model.Entry, []FieldError) {
	if err := s.VisitJSON(obj, openapi3.MultiErrors(), openapi3.VisitAsRequest()); err != nil {
		return model.Entry{}, fieldErrors(err, prefix, nil)
	}
	entry, err := model.EntryFromMap(obj)
	if err != nil {
		return model.Entry{}, []FieldError{{Field: pointer(prefix, nil), Error: err.Error()}}
	}
	return entry, nil
}

// decode parses exactly one JSON value, keeping numbers as json.Number.
func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return value, nil
}

func fieldErrors(err error, prefix string, out []FieldError) []FieldError {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, inner := range e {
			out = fieldErrors(inner, prefix, out)
		}
	case *openapi3.SchemaError:
		reason := e.Reason
		if reason == "" {
			reason = e.Error()
		}
		out = append(out, FieldError{Field: pointer(prefix, e.JSONPointer()), Error: reason})
	default:
		out = append(out, FieldError{Field: pointer(prefix, nil), Error: err.Error()})
	}
	return out
}

func pointer(prefix string, path []string) string {
	p := prefix
	for _, seg := range path {
		p += "/" + seg
	}
	if p == "" {
		return "/"
	}
	return p
}
