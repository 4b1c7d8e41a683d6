package output

import "strings"

// RedactedValue replaces secret-bearing fields in table output.
const RedactedValue = "***REDACTED***"

// Redact walks a decoded JSON value and masks fields whose key names a
// secret: any key containing "secret" or "password" (case-insensitive), or
// exactly "key"/"api_key". Only table rendering applies this; JSON and YAML
// show the stored value.
func Redact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			if secretKey(k) {
				out[k] = RedactedValue
				continue
			}
			out[k] = Redact(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Redact(item)
		}
		return out
	default:
		return v
	}
}

func secretKey(key string) bool {
	k := strings.ToLower(key)
	if strings.Contains(k, "secret") || strings.Contains(k, "password") {
		return true
	}
	return k == "key" || k == "api_key"
}
