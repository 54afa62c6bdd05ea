package model_test

import (
	"dashboard/internal/model"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_IDAcceptsStringOrNumber(t *testing.T) {
	tests := []struct {
		name string
		body string
		want model.ID
	}{
		{name: "string", body: `{"id":"7","role":"D"}`, want: "7"},
		{name: "number", body: `{"id":42,"role":"D"}`, want: "42"},
		{name: "uuid", body: `{"id":"0b7e2f1c-2f4e-4b7a-9a43-0f1f3b7a1c55"}`, want: "0b7e2f1c-2f4e-4b7a-9a43-0f1f3b7a1c55"},
		{name: "null", body: `{"id":null}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u model.User
			require.NoError(t, json.Unmarshal([]byte(tt.body), &u))
			assert.Equal(t, tt.want, u.ID)
		})
	}
}

func TestUser_IDRejectsObject(t *testing.T) {
	var u model.User
	require.Error(t, json.Unmarshal([]byte(`{"id":{"n":1}}`), &u))
}

func TestUser_IDWrittenAsString(t *testing.T) {
	var u model.User
	require.NoError(t, json.Unmarshal([]byte(`{"id":42}`), &u))

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"id":"42"`)
}
