package sheetdata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_String(t *testing.T) {
	assert.Equal(t, "5", NumberValue(5).String())
	assert.Equal(t, "0.5", NumberValue(0.5).String())
	assert.Equal(t, "-12.25", NumberValue(-12.25).String())
	assert.Equal(t, "1234567", NumberValue(1234567).String())
	assert.Equal(t, "1e+21", NumberValue(1e21).String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "hello", StringValue("hello").String())
}

func TestValue_IsEmpty(t *testing.T) {
	assert.True(t, StringValue("").IsEmpty())
	assert.False(t, StringValue(" ").IsEmpty())
	assert.False(t, NumberValue(0).IsEmpty())
	assert.False(t, BoolValue(false).IsEmpty())
}

func TestValue_Accessors(t *testing.T) {
	n, ok := NumberValue(3).Number()
	assert.True(t, ok)
	assert.Equal(t, 3.0, n)

	_, ok = NumberValue(3).Str()
	assert.False(t, ok)

	b, ok := BoolValue(true).Bool()
	assert.True(t, ok)
	assert.True(t, b)

	assert.Equal(t, KindNumber, NumberValue(1).Kind())
	assert.Equal(t, "boolean", KindBoolean.String())
}

func TestValue_JSONKeepsNativeType(t *testing.T) {
	data, err := json.Marshal([]Value{NumberValue(42), BoolValue(true), StringValue("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `[42, true, "x"]`, string(data))

	var decoded []Value
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, KindNumber, decoded[0].Kind())
	assert.Equal(t, KindBoolean, decoded[1].Kind())
	assert.Equal(t, KindString, decoded[2].Kind())
}
