// Package decoder provides payload line decoders for the reasoning stream
// pipeline: plain JSON and JSON-schema validated variants.
package decoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/mudler/thinkstream/pkg/reasoning/stream"
	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON    = errors.New("invalid JSON")
	ErrSchemaMismatch = errors.New("payload does not match schema")
)

// JSON decodes each payload line into a T.
func JSON[T any]() stream.Decoder[T] {
	return func(line string) (T, error) {
		var out T
		raw, err := validJSON(line)
		if err != nil {
			return out, err
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return out, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		return out, nil
	}
}

// Map decodes each payload line into a generic JSON object.
func Map() stream.Decoder[map[string]any] {
	return JSON[map[string]any]()
}

// Schema decodes lines into T after validating them against schema.
func Schema[T any](schema *jsonschema.Schema) (stream.Decoder[T], error) {
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil, fmt.Errorf("resolving payload schema: %w", err)
	}

	return func(line string) (T, error) {
		var out T
		raw, err := validJSON(line)
		if err != nil {
			return out, err
		}

		var instance any
		if err := json.Unmarshal(raw, &instance); err != nil {
			return out, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		if err := resolved.Validate(instance); err != nil {
			return out, fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
		}

		if err := json.Unmarshal(raw, &out); err != nil {
			return out, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		return out, nil
	}, nil
}

// For infers the schema from T itself.
func For[T any]() (stream.Decoder[T], error) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("inferring payload schema: %w", err)
	}
	return Schema[T](schema)
}

// FromFile loads a JSON schema document and returns a decoder producing
// generic values that satisfy it.
func FromFile(path string) (stream.Decoder[any], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	schema := &jsonschema.Schema{}
	if err := json.Unmarshal(data, schema); err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", path, err)
	}
	return Schema[any](schema)
}

func validJSON(line string) ([]byte, error) {
	trimmed := strings.TrimSpace(line)
	if !gjson.Valid(trimmed) {
		return nil, ErrInvalidJSON
	}
	return []byte(trimmed), nil
}
