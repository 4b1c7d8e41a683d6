package handlers

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

// stdin is swapped by tests feeding `--data -`.
var stdin io.Reader = os.Stdin

// ReadData interprets a --data value: inline JSON, @file, or - for stdin.
// The payload must parse as JSON; it is passed to the API verbatim.
func ReadData(value string) (json.RawMessage, error) {
	if value == "" {
		return nil, nil
	}
	var raw []byte
	switch {
	case value == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errdefs.IOWrap(err, "failed to read request body from stdin")
		}
		raw = b
	case strings.HasPrefix(value, "@"):
		b, err := os.ReadFile(value[1:]) // #nosec G304 -- the user names their own payload file
		if err != nil {
			return nil, errdefs.IOWrap(err, "failed to read request body file %s", value[1:])
		}
		raw = b
	default:
		raw = []byte(value)
	}
	if !json.Valid(raw) {
		return nil, errdefs.Validationf("request body is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

// dataObject decodes a --data payload into a generic object, preserving
// number precision. Non-object payloads are rejected.
func dataObject(value string) (map[string]any, error) {
	raw, err := ReadData(value)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, errdefs.Validationf("request body must be a JSON object")
	}
	return m, nil
}
