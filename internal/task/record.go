package task

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one observation of a task or action, normalized from the
// platforms' heterogeneous response shapes.
type Record struct {
	ID     string
	Status string
	State  State

	Description string
	Progress    string
	CreatedAt   string
	UpdatedAt   string

	// ResourceID is the created resource's identifier, present on terminal
	// success of creation tasks.
	ResourceID string
	// Err is the extracted failure message, present when State is Failure.
	Err string

	// Doc is the decoded response the record was parsed from.
	Doc map[string]any
}

// ExtractTaskID probes a Cloud write response for its task handle. Precedence
// is taskId, then task_id, then response.id; the first present value wins.
// Numeric identifiers are stringified. A false return means the operation
// completed synchronously.
func ExtractTaskID(doc map[string]any) (string, bool) {
	if id, ok := stringField(doc, "taskId"); ok {
		return id, true
	}
	if id, ok := stringField(doc, "task_id"); ok {
		return id, true
	}
	if resp, ok := doc["response"].(map[string]any); ok {
		if id, ok := stringField(resp, "id"); ok {
			return id, true
		}
	}
	return "", false
}

// ExtractActionUID probes an Enterprise response for its action handle.
func ExtractActionUID(doc map[string]any) (string, bool) {
	if id, ok := stringField(doc, "action_uid"); ok {
		return id, true
	}
	if id, ok := stringField(doc, "uid"); ok {
		return id, true
	}
	if id, ok := stringField(doc, "task_id"); ok {
		return id, true
	}
	return "", false
}

// ParseRecord normalizes one poll response. It never fails: a shape it does
// not recognize yields a Pending record, which keeps the wait loop going.
func ParseRecord(raw json.RawMessage) *Record {
	rec := &Record{}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return rec
	}
	rec.Doc = doc

	if id, ok := ExtractTaskID(doc); ok {
		rec.ID = id
	} else if id, ok := ExtractActionUID(doc); ok {
		rec.ID = id
	}

	// Status probes "status" then "state"; first present wins.
	if s, ok := stringField(doc, "status"); ok {
		rec.Status = s
	} else if s, ok := stringField(doc, "state"); ok {
		rec.Status = s
	}
	rec.State = ClassifyState(rec.Status)

	rec.Description, _ = stringField(doc, "description")
	if p, ok := doc["progress"]; ok {
		rec.Progress = progressString(p)
	}
	rec.CreatedAt = firstString(doc, "createdAt", "created_at", "creation_time")
	rec.UpdatedAt = firstString(doc, "updatedAt", "updated_at", "last_updated")

	rec.ResourceID = extractResourceID(doc)
	if rec.State == StateFailure {
		rec.Err = extractError(doc, rec.ID)
	}
	return rec
}

// extractResourceID pulls the created resource's id from the two shapes the
// Cloud API has used: response.resourceId and response.resource.id.
func extractResourceID(doc map[string]any) string {
	resp, ok := doc["response"].(map[string]any)
	if !ok {
		return ""
	}
	if id, ok := stringField(resp, "resourceId"); ok {
		return id
	}
	if resource, ok := resp["resource"].(map[string]any); ok {
		if id, ok := stringField(resource, "id"); ok {
			return id
		}
	}
	return ""
}

// extractError normalizes the failure surface. response.error may be an
// object {type, status, description} or a bare string; older shapes use a
// top-level error or errorMessage. The single extraction site keeps the
// polymorphism out of everything downstream.
func extractError(doc map[string]any, id string) string {
	if resp, ok := doc["response"].(map[string]any); ok {
		switch e := resp["error"].(type) {
		case map[string]any:
			return joinErrorObject(e)
		case string:
			if e != "" {
				return e
			}
		}
	}
	if msg, ok := stringField(doc, "error"); ok {
		return msg
	}
	if msg, ok := stringField(doc, "errorMessage"); ok {
		return msg
	}
	if id != "" {
		return fmt.Sprintf("task %s failed", id)
	}
	return "task failed"
}

func joinErrorObject(e map[string]any) string {
	var parts []string
	if t, ok := stringField(e, "type"); ok {
		parts = append(parts, t)
	}
	if s, ok := stringField(e, "status"); ok {
		parts = append(parts, "("+s+")")
	}
	if d, ok := stringField(e, "description"); ok {
		parts = append(parts, d)
	}
	if len(parts) == 0 {
		raw, _ := json.Marshal(e)
		return string(raw)
	}
	return strings.Join(parts, " ")
}

// stringField fetches a field as a non-empty string, stringifying numbers.
func stringField(doc map[string]any, key string) (string, bool) {
	v, ok := doc[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		return formatNumber(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

func firstString(doc map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := stringField(doc, k); ok {
			return s
		}
	}
	return ""
}

func progressString(v any) string {
	switch t := v.(type) {
	case float64:
		return formatNumber(t) + "%"
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
