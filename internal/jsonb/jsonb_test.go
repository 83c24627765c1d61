package jsonb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsJSON(t *testing.T) {
	assert.True(t, IsJSON(`{"a": 1}`))
	assert.True(t, IsJSON(`  [1, 2, 3] `))
	assert.False(t, IsJSON(`{"a": `))
	assert.False(t, IsJSON(`42`))
	assert.False(t, IsJSON(`true`))
	assert.False(t, IsJSON(``))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "object", Kind(`{}`))
	assert.Equal(t, "array", Kind(`[]`))
	assert.Equal(t, "number", Kind(`1.5`))
	assert.Equal(t, "boolean", Kind(`false`))
	assert.Equal(t, "null", Kind(`null`))
	assert.Equal(t, "string", Kind(`"x"`))
	assert.Equal(t, "unknown", Kind(`{`))
}

func TestFormatAndCompact(t *testing.T) {
	pretty, err := Format(`{"a":[1,2],"b":{"c":null}}`)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": {\n    \"c\": null\n  }\n}", pretty)

	compact, err := Compact(pretty)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,2],"b":{"c":null}}`, compact)

	_, err = Format(`{bad`)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, `{"a":1}`, Truncate(`{"a":1}`, 20))
	assert.Equal(t, `{"name":"alice",...`, Truncate(`{"name":"alice","role":"admin"}`, 20))
	assert.Equal(t, `{"`, Truncate(`{"name":"alice"}`, 2))
}
