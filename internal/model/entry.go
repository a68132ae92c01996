// Package model defines domain entities for the application.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Reserved document fields assigned by the storage layer.
const (
	FieldKey = "_key"
	FieldRev = "_rev"
)

// Entry field names.
const (
	FieldName = "name"
	FieldAge  = "age"
)

// ErrNotAnObject is returned when a document payload is not a JSON object.
var ErrNotAnObject = errors.New("document must be a JSON object")

// Meta is the storage envelope assigned to a document when it is saved.
type Meta struct {
	Key string `json:"_key"`
	Rev string `json:"_rev"`
}

// Entry is a record submitted by a client.
// Name and Age are required; every other field is carried in Extra verbatim.
type Entry struct {
	Name  string
	Age   json.Number
	Extra map[string]any
}

// EntryFromMap builds an Entry from a decoded JSON object.
// Numbers are expected as json.Number (decoder.UseNumber) but float64 is accepted.
func EntryFromMap(m map[string]any) (Entry, error) {
	var e Entry

	name, ok := m[FieldName].(string)
	if !ok {
		return e, fmt.Errorf("field %q must be a string", FieldName)
	}
	e.Name = name

	switch age := m[FieldAge].(type) {
	case json.Number:
		if _, err := age.Float64(); err != nil {
			return e, fmt.Errorf("field %q is not a valid number: %w", FieldAge, err)
		}
		e.Age = age
	case float64:
		e.Age = json.Number(strconv.FormatFloat(age, 'f', -1, 64))
	default:
		return e, fmt.Errorf("field %q must be a number", FieldAge)
	}

	for k, v := range m {
		if k == FieldName || k == FieldAge {
			continue
		}
		if e.Extra == nil {
			e.Extra = make(map[string]any, len(m)-2)
		}
		e.Extra[k] = v
	}

	return e, nil
}

// Document returns the entry as a storable document.
func (e Entry) Document() Document {
	doc := make(Document, len(e.Extra)+2)
	for k, v := range e.Extra {
		doc[k] = v
	}
	doc[FieldName] = e.Name
	doc[FieldAge] = e.Age
	return doc
}

// MarshalJSON flattens Extra next to name and age.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Document())
}

// UnmarshalJSON decodes an object into the known fields and the Extra bag.
func (e *Entry) UnmarshalJSON(data []byte) error {
	doc, err := DecodeDocument(data)
	if err != nil {
		return err
	}
	entry, err := EntryFromMap(doc)
	if err != nil {
		return err
	}
	*e = entry
	return nil
}

// Document is a stored JSON object. Stored documents are not re-validated
// against the Entry shape, so only the reserved meta fields are typed.
type Document map[string]any

// DecodeDocument parses a JSON object, keeping numbers as json.Number.
func DecodeDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotAnObject
	}
	return doc, nil
}

// Key returns the storage key, or "" if the document has none.
func (d Document) Key() string {
	key, _ := d[FieldKey].(string)
	return key
}

// Rev returns the revision marker, or "" if the document has none.
func (d Document) Rev() string {
	rev, _ := d[FieldRev].(string)
	return rev
}

// WithMeta returns a copy of the document with the meta fields merged in.
// Meta fields overwrite caller-supplied fields of the same name.
func (d Document) WithMeta(meta Meta) Document {
	out := make(Document, len(d)+2)
	for k, v := range d {
		out[k] = v
	}
	out[FieldKey] = meta.Key
	out[FieldRev] = meta.Rev
	return out
}

// CreateRequest is the decoded body of a create call: either a single entry
// or a batch. The response mirrors the shape of the request.
type CreateRequest struct {
	batch   bool
	entries []Entry
}

// SingleEntry wraps one entry submitted as a bare object.
func SingleEntry(e Entry) CreateRequest {
	return CreateRequest{entries: []Entry{e}}
}

// EntryBatch wraps entries submitted as an array. An empty batch is valid.
func EntryBatch(entries []Entry) CreateRequest {
	if entries == nil {
		entries = []Entry{}
	}
	return CreateRequest{batch: true, entries: entries}
}

// IsBatch reports whether the body was an array.
func (r CreateRequest) IsBatch() bool {
	return r.batch
}

// Entries returns the submitted entries in input order.
func (r CreateRequest) Entries() []Entry {
	return r.entries
}
