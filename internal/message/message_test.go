package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvsink/pkg/errors"
)

func TestDecodeSchema(t *testing.T) {
	line := `{"type":"SCHEMA","stream":"users","schema":{"type":"object","properties":{"id":{"type":"integer"}}},"key_properties":["id"]}`

	msg, err := Decode(line)
	require.NoError(t, err)

	schema, ok := msg.(Schema)
	require.True(t, ok)
	assert.Equal(t, "users", schema.Stream)
	assert.Equal(t, []string{"id"}, schema.KeyProperties)
	assert.JSONEq(t, `{"type":"object","properties":{"id":{"type":"integer"}}}`, string(schema.Schema))
}

func TestDecodeRecordPreservesFieldOrder(t *testing.T) {
	line := `{"type":"RECORD","stream":"users","record":{"zebra":1,"apple":2,"mango":3}}`

	msg, err := Decode(line)
	require.NoError(t, err)

	record, ok := msg.(Record)
	require.True(t, ok)
	assert.Equal(t, "users", record.Stream)

	var order []string
	for pair := record.Fields.Oldest(); pair != nil; pair = pair.Next() {
		order = append(order, pair.Key)
	}
	assert.Equal(t, []string{"zebra", "apple", "mango"}, order)
}

func TestDecodeRecordNestedObjectsStayOrdered(t *testing.T) {
	line := `{"type":"RECORD","stream":"users","record":{"a":{"z":1,"b":2}}}`

	msg, err := Decode(line)
	require.NoError(t, err)

	record, ok := msg.(Record)
	require.True(t, ok)

	value, found := record.Fields.Get("a")
	require.True(t, found)

	nested, ok := value.(*Fields)
	require.True(t, ok, "nested objects must decode as ordered fields, got %T", value)

	var order []string
	for pair := nested.Oldest(); pair != nil; pair = pair.Next() {
		order = append(order, pair.Key)
	}
	assert.Equal(t, []string{"z", "b"}, order)
}

func TestDecodeState(t *testing.T) {
	msg, err := Decode(`{"type":"STATE","value":{"bookmark":42}}`)
	require.NoError(t, err)

	state, ok := msg.(State)
	require.True(t, ok)
	assert.JSONEq(t, `{"bookmark":42}`, string(state.Value))
}

func TestDecodeUnknownType(t *testing.T) {
	line := `{"type":"ACTIVATE_VERSION","stream":"users"}`

	msg, err := Decode(line)
	require.NoError(t, err)

	unknown, ok := msg.(Unknown)
	require.True(t, ok)
	assert.Equal(t, "ACTIVATE_VERSION", unknown.Type)
	assert.Equal(t, line, unknown.Raw)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{
			name: "malformed json",
			line: `{"type":"RECORD","stream":`,
		},
		{
			name: "empty line",
			line: "",
		},
		{
			name: "record payload not an object",
			line: `{"type":"RECORD","stream":"users","record":[1,2,3]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.line)
			require.Error(t, err)
			assert.True(t, errors.IsDecode(err))
		})
	}
}
