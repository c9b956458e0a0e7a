package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// UnmarshalRaw decodes model output held as json.RawMessage.
func UnmarshalRaw(raw json.RawMessage, v any) error {
	return UnmarshalFlex([]byte(raw), v)
}

// UnmarshalFlex decodes JSON produced by a language model with best effort:
// 1) direct unmarshal
// 2) normalize double-escaped unicode sequences and retry
// Models occasionally return payloads that went through one HTML-escape or
// string-quote round too many; the second pass recovers those.
func UnmarshalFlex(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	norm, err := NormalizeUnicode(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(norm, v)
}

// MarshalNoEscape encodes v into JSON without escaping <, >, & into \u003c etc.
// Enriched instructions embed URLs and code snippets that must
// survive round-trips byte for byte.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// NormalizeUnicode parses JSON bytes and recursively unescapes remaining
// double-escaped unicode sequences (e.g. "\\u003e") inside string values.
// Also unwraps payloads that arrive as a JSON string containing JSON.
func NormalizeUnicode(raw []byte) ([]byte, error) {
	var anyVal any
	if err := json.Unmarshal(raw, &anyVal); err != nil {
		var s string
		if err2 := json.Unmarshal(raw, &s); err2 != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(s), &anyVal); err != nil {
			return nil, errors.New("jsonutil: cannot parse JSON payload")
		}
	}
	if s, ok := anyVal.(string); ok {
		// Still a string after one unwrap: try one more level.
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err == nil {
			anyVal = inner
		}
	}
	return MarshalNoEscape(deepUnescape(anyVal))
}

// unescapeString converts unicode escapes like "\u003e" into actual
// characters, tolerating double-escaped input.
func unescapeString(s string) (string, error) {
	esc := strings.ReplaceAll(s, `\`, `\\`)
	esc = strings.ReplaceAll(esc, `"`, `\"`)
	var out string
	if err := json.Unmarshal([]byte(`"`+esc+`"`), &out); err != nil {
		return "", err
	}
	return out, nil
}

func deepUnescape(v any) any {
	switch x := v.(type) {
	case string:
		if s, err := unescapeString(x); err == nil {
			return s
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = deepUnescape(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = deepUnescape(vv)
		}
		return out
	default:
		return v
	}
}
