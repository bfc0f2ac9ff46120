package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// Form submissions deliver every value as a string, so the product and brand
// documents are built from field types that accept both the string encoding
// and the native JSON encoding of their value. Decoding an already decoded
// document yields the same document.

// Flag is a boolean that also accepts "true"/"false" strings (any case) and
// otherwise falls back to truthiness.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	*f = Flag(truthy(raw))
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true")
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		return true
	}
}

// Number is a float that also accepts numeric strings. Empty strings and null
// leave the current value untouched.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	switch v := raw.(type) {
	case nil:
		return nil
	case float64:
		*n = Number(v)
	case bool:
		if v {
			*n = 1
		} else {
			*n = 0
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return fmt.Errorf("%w: %q is not a number", ErrValidation, v)
		}
		*n = Number(parsed)
	default:
		return fmt.Errorf("%w: expected a number", ErrValidation)
	}
	return nil
}

func (n Number) Float() float64 {
	return float64(n)
}

// Date accepts RFC 3339 timestamps or plain YYYY-MM-DD dates. The zero Date
// encodes as null.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	s, ok := raw.(string)
	if !ok {
		if raw == nil {
			return nil
		}
		return fmt.Errorf("%w: expected a date string", ErrValidation)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			d.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not a date", ErrValidation, s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.UTC().Format(time.RFC3339Nano))
}

// StringList is a list of strings that also accepts a JSON-encoded list, a
// comma separated string or a single bare value.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if raw == nil {
		return nil
	}
	items, err := coerceStringList(raw, true)
	if err != nil {
		return err
	}
	*l = items
	return nil
}

func coerceStringList(raw any, parseStrings bool) (StringList, error) {
	switch v := raw.(type) {
	case nil:
		return StringList{}, nil
	case []any:
		out := make(StringList, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			s, ok := scalarString(item)
			if !ok {
				return nil, fmt.Errorf("%w: list items must be strings", ErrValidation)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		if parseStrings {
			var inner any
			if err := json.Unmarshal([]byte(v), &inner); err == nil {
				return coerceStringList(inner, false)
			}
		}
		return splitListString(v), nil
	case map[string]any:
		return nil, fmt.Errorf("%w: expected a list", ErrValidation)
	default:
		s, _ := scalarString(v)
		return StringList{s}, nil
	}
}

func splitListString(s string) StringList {
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		out := make(StringList, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}
	if strings.TrimSpace(s) == "" {
		return StringList{}
	}
	return StringList{s}
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// decodeSection fills target from either a JSON object or a string holding a
// JSON object. A string that does not parse leaves target untouched.
func decodeSection(data []byte, field string, target any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		if err := json.Unmarshal(trimmed, target); err != nil {
			return sectionError(field, err)
		}
		return nil
	}

	var encoded string
	if err := json.Unmarshal(trimmed, &encoded); err != nil {
		return sectionError(field, err)
	}
	if strings.TrimSpace(encoded) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), target); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			slog.Default().Warn("unparseable section left unchanged",
				"module", "domain.payload",
				"layer", "domain",
				"operation", "decode_section",
				"outcome", "warning",
				"field", field,
				"error", err,
			)
			return nil
		}
		return sectionError(field, err)
	}
	return nil
}

// decodeRecordList decodes a list of objects. Strings are parsed as JSON and
// anything that is not a list ends up as an empty list.
func decodeRecordList[T any](data []byte, field string) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	items := []T{}
	if len(trimmed) == 0 {
		return items, nil
	}
	switch trimmed[0] {
	case '"':
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return items, nil
		}
		var parsed []T
		if err := json.Unmarshal([]byte(encoded), &parsed); err != nil || parsed == nil {
			return items, nil
		}
		return parsed, nil
	case '[':
		var parsed []T
		if err := json.Unmarshal(trimmed, &parsed); err != nil {
			return nil, sectionError(field, err)
		}
		if parsed == nil {
			return items, nil
		}
		return parsed, nil
	default:
		return items, nil
	}
}

func sectionError(field string, err error) error {
	if errors.Is(err, ErrValidation) {
		return fmt.Errorf("%s: %w", field, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrValidation, field, err)
}
