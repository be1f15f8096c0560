package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ParseError reports where and why a response does not match a Schema.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid response at %s: %s", e.Path, e.Reason)
}

const rootPath = "$"

// Validate checks that raw is exactly one JSON value conforming to s. Leading
// and trailing whitespace is allowed; prose, markdown fences or a second
// value are not. The error is always a *ParseError.
func Validate(s *Schema, raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return &ParseError{Path: rootPath, Reason: "response is empty"}
	}
	if bytes.HasPrefix(trimmed, []byte("```")) {
		return &ParseError{Path: rootPath, Reason: "response is wrapped in a markdown code fence"}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return &ParseError{Path: rootPath, Reason: fmt.Sprintf("response is not valid JSON: %v", err)}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &ParseError{Path: rootPath, Reason: "unexpected content after the JSON value"}
	}

	return check(s, v, rootPath)
}

func check(s *Schema, v any, path string) error {
	if v == nil {
		return &ParseError{Path: path, Reason: fmt.Sprintf("expected %s, got null", s.Type)}
	}

	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return typeMismatch(s, v, path)
		}
		return checkObject(s, obj, path)

	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return typeMismatch(s, v, path)
		}
		if s.Items == nil {
			return nil
		}
		for i, item := range arr {
			if err := check(s.Items, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil

	case TypeString:
		str, ok := v.(string)
		if !ok {
			return typeMismatch(s, v, path)
		}
		if s.NonEmpty && strings.TrimSpace(str) == "" {
			return &ParseError{Path: path, Reason: "must not be empty"}
		}
		if len(s.Enum) > 0 && !contains(s.Enum, str) {
			return &ParseError{Path: path, Reason: fmt.Sprintf("%q is not one of %s", str, strings.Join(s.Enum, ", "))}
		}
		return nil

	case TypeInteger:
		num, ok := v.(json.Number)
		if !ok {
			return typeMismatch(s, v, path)
		}
		i, err := num.Int64()
		if err != nil {
			return &ParseError{Path: path, Reason: fmt.Sprintf("expected integer, got %s", num)}
		}
		return checkBounds(s, float64(i), path)

	case TypeNumber:
		num, ok := v.(json.Number)
		if !ok {
			return typeMismatch(s, v, path)
		}
		f, err := num.Float64()
		if err != nil {
			return &ParseError{Path: path, Reason: fmt.Sprintf("expected number, got %s", num)}
		}
		return checkBounds(s, f, path)

	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return typeMismatch(s, v, path)
		}
		return nil
	}

	return &ParseError{Path: path, Reason: fmt.Sprintf("unsupported schema type %q", s.Type)}
}

func checkObject(s *Schema, obj map[string]any, path string) error {
	for _, name := range s.Required {
		if _, ok := obj[name]; !ok {
			return &ParseError{Path: path, Reason: fmt.Sprintf("missing required field %q", name)}
		}
	}

	// Sorted so the reported error is stable across runs.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		child := s.Property(k)
		if child == nil {
			return &ParseError{Path: path, Reason: fmt.Sprintf("unexpected field %q", k)}
		}
		if err := check(child, obj[k], path+"."+k); err != nil {
			return err
		}
	}
	return nil
}

func checkBounds(s *Schema, f float64, path string) error {
	if s.Minimum != nil && f < *s.Minimum {
		return &ParseError{Path: path, Reason: fmt.Sprintf("%s is below the minimum of %s", formatFloat(f), formatFloat(*s.Minimum))}
	}
	if s.Maximum != nil && f > *s.Maximum {
		return &ParseError{Path: path, Reason: fmt.Sprintf("%s is above the maximum of %s", formatFloat(f), formatFloat(*s.Maximum))}
	}
	return nil
}

func typeMismatch(s *Schema, v any, path string) error {
	return &ParseError{Path: path, Reason: fmt.Sprintf("expected %s, got %s", s.Type, jsonType(v))}
}

func jsonType(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
