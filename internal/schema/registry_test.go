package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvsink/pkg/errors"
)

var userSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"id":   {"type": "integer"},
		"name": {"type": "string"}
	},
	"required": ["id"]
}`)

func TestValidateBeforeDeclareFails(t *testing.T) {
	r := NewRegistry()

	err := r.Validate("users", json.RawMessage(`{"id":1}`))
	require.Error(t, err)
	assert.True(t, errors.IsUnknownStream(err))

	_, err = r.ValidatorFor("users")
	require.Error(t, err)
	assert.True(t, errors.IsUnknownStream(err))
}

func TestDeclareAndValidate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Declare("users", userSchema, []string{"id"}))

	assert.True(t, r.Declared("users"))
	assert.Equal(t, []string{"id"}, r.KeyProperties("users"))

	tests := []struct {
		name      string
		record    string
		wantError bool
	}{
		{
			name:      "valid record",
			record:    `{"id":1,"name":"ada"}`,
			wantError: false,
		},
		{
			name:      "extra fields pass validation",
			record:    `{"id":1,"name":"ada","color":"green"}`,
			wantError: false,
		},
		{
			name:      "wrong type",
			record:    `{"id":"not-a-number"}`,
			wantError: true,
		},
		{
			name:      "missing required",
			record:    `{"name":"ada"}`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Validate("users", json.RawMessage(tt.record))
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, errors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeclareReplacesPriorSchema(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Declare("users", userSchema, []string{"id"}))
	require.NoError(t, r.Validate("users", json.RawMessage(`{"id":1}`)))

	stricter := json.RawMessage(`{
		"type": "object",
		"properties": {"id": {"type": "integer"}},
		"required": ["id", "email"]
	}`)
	require.NoError(t, r.Declare("users", stricter, []string{"id", "email"}))

	err := r.Validate("users", json.RawMessage(`{"id":1}`))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, []string{"id", "email"}, r.KeyProperties("users"))
}

func TestDeclareBadSchema(t *testing.T) {
	r := NewRegistry()

	err := r.Declare("users", json.RawMessage(`{"type": 12}`), nil)
	assert.Error(t, err)
}
