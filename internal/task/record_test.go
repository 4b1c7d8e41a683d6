package task

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestExtractTaskIDPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{
			name:   "taskId wins over task_id and response.id",
			raw:    `{"taskId":"a","task_id":"b","response":{"id":"c"}}`,
			want:   "a",
			wantOK: true,
		},
		{
			name:   "task_id wins over response.id",
			raw:    `{"task_id":"b","response":{"id":"c"}}`,
			want:   "b",
			wantOK: true,
		},
		{
			name:   "response.id as last resort",
			raw:    `{"response":{"id":"c"}}`,
			want:   "c",
			wantOK: true,
		},
		{
			name:   "numeric id stringified",
			raw:    `{"taskId":12345}`,
			want:   "12345",
			wantOK: true,
		},
		{
			name:   "no identifier means synchronous",
			raw:    `{"subscriptionId":42,"status":"active"}`,
			wantOK: false,
		},
		{
			name:   "empty string does not count",
			raw:    `{"taskId":"","task_id":"b"}`,
			want:   "b",
			wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractTaskID(decode(t, tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractActionUID(t *testing.T) {
	got, ok := ExtractActionUID(decode(t, `{"action_uid":"a1"}`))
	require.True(t, ok)
	assert.Equal(t, "a1", got)

	got, ok = ExtractActionUID(decode(t, `{"uid":"u1"}`))
	require.True(t, ok)
	assert.Equal(t, "u1", got)

	_, ok = ExtractActionUID(decode(t, `{"name":"bdb"}`))
	assert.False(t, ok)
}

func TestParseRecordStatusThenState(t *testing.T) {
	rec := ParseRecord(json.RawMessage(`{"taskId":"t1","status":"processing","state":"ignored"}`))
	assert.Equal(t, "processing", rec.Status)
	assert.Equal(t, StateRunning, rec.State)

	rec = ParseRecord(json.RawMessage(`{"taskId":"t1","state":"completed"}`))
	assert.Equal(t, "completed", rec.Status)
	assert.Equal(t, StateSuccess, rec.State)
}

func TestParseRecordFields(t *testing.T) {
	rec := ParseRecord(json.RawMessage(`{
		"taskId": "t1",
		"status": "processing-completed",
		"description": "Create subscription",
		"progress": 100,
		"createdAt": "2024-05-01T10:00:00Z",
		"updatedAt": "2024-05-01T10:05:00Z",
		"response": {"resourceId": 42}
	}`))
	assert.Equal(t, "t1", rec.ID)
	assert.Equal(t, StateSuccess, rec.State)
	assert.Equal(t, "Create subscription", rec.Description)
	assert.Equal(t, "100%", rec.Progress)
	assert.Equal(t, "2024-05-01T10:00:00Z", rec.CreatedAt)
	assert.Equal(t, "2024-05-01T10:05:00Z", rec.UpdatedAt)
	assert.Equal(t, "42", rec.ResourceID)
	assert.Empty(t, rec.Err)
}

func TestResourceIDBothShapes(t *testing.T) {
	rec := ParseRecord(json.RawMessage(`{"taskId":"t","status":"completed","response":{"resourceId":7}}`))
	assert.Equal(t, "7", rec.ResourceID)

	rec = ParseRecord(json.RawMessage(`{"taskId":"t","status":"completed","response":{"resource":{"id":9}}}`))
	assert.Equal(t, "9", rec.ResourceID)

	// resourceId wins when both are present.
	rec = ParseRecord(json.RawMessage(`{"taskId":"t","status":"completed","response":{"resourceId":7,"resource":{"id":9}}}`))
	assert.Equal(t, "7", rec.ResourceID)
}

func TestErrorExtraction(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "error object joins type status description",
			raw:  `{"taskId":"t1","status":"processing-error","response":{"error":{"type":"Validation","status":"400","description":"bad region"}}}`,
			want: "Validation (400) bad region",
		},
		{
			name: "error string",
			raw:  `{"taskId":"t1","status":"failed","response":{"error":"quota exceeded"}}`,
			want: "quota exceeded",
		},
		{
			name: "top-level error",
			raw:  `{"taskId":"t1","status":"failed","error":"boom"}`,
			want: "boom",
		},
		{
			name: "errorMessage fallback",
			raw:  `{"taskId":"t1","status":"failed","errorMessage":"wrapped boom"}`,
			want: "wrapped boom",
		},
		{
			name: "generic when nothing extractable",
			raw:  `{"taskId":"t1","status":"failed"}`,
			want: "task t1 failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ParseRecord(json.RawMessage(tt.raw))
			assert.Equal(t, StateFailure, rec.State)
			assert.Equal(t, tt.want, rec.Err)
		})
	}
}

func TestErrorNotExtractedOnSuccess(t *testing.T) {
	rec := ParseRecord(json.RawMessage(`{"taskId":"t1","status":"completed","error":"leftover field"}`))
	assert.Empty(t, rec.Err)
}

func TestParseRecordToleratesGarbage(t *testing.T) {
	rec := ParseRecord(json.RawMessage(`not json`))
	assert.Equal(t, StatePending, rec.State)
	assert.Empty(t, rec.ID)

	rec = ParseRecord(json.RawMessage(`[1,2,3]`))
	assert.Equal(t, StatePending, rec.State)
}

func TestProgressString(t *testing.T) {
	rec := ParseRecord(json.RawMessage(`{"taskId":"t","status":"processing","progress":62.5}`))
	assert.Equal(t, "62.5%", rec.Progress)

	rec = ParseRecord(json.RawMessage(`{"taskId":"t","status":"processing","progress":"rebalancing shards"}`))
	assert.Equal(t, "rebalancing shards", rec.Progress)
}
