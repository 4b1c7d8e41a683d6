package redisdb

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"
)

// EncodeValue converts a go-redis reply into JSON-encodable data. Strings
// that are not valid UTF-8 cannot survive a JSON round trip, so they come
// back as a {"type": "binary", "base64": …} envelope; everything else maps
// structurally.
func EncodeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return encodeString(t)
	case []byte:
		return encodeString(string(t))
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = EncodeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = EncodeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[stringify(k)] = EncodeValue(item)
		}
		return out
	default:
		// int64, float64, bool pass straight through.
		return v
	}
}

func encodeString(s string) any {
	if utf8.ValidString(s) {
		return s
	}
	return map[string]any{
		"type":   "binary",
		"base64": base64.StdEncoding.EncodeToString([]byte(s)),
	}
}

func encodeStrings(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = encodeString(s)
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
