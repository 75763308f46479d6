package delta

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeltaCanonicalization(t *testing.T) {
	d := New(InsertText("Hello", nil), InsertText(" world", nil), Retain(3, Attrs{"bold": true}), Retain(2, Attrs{"bold": true}))
	require.Equal(t, 2, d.Len())
	assert.Equal(t, "Hello world", d.Ops()[0].Text())
	assert.Equal(t, 5, d.Ops()[1].Len())
}

func TestDeltaTrailingRetainElided(t *testing.T) {
	d := New(InsertText("hi", nil), Retain(4, nil))
	require.Equal(t, 1, d.Len())
	assert.True(t, d.Ops()[0].IsInsert())
}

func TestDeltaDeletePrecedesInsert(t *testing.T) {
	d := New(Delete(2), InsertText("x", nil))
	require.Equal(t, 2, d.Len())
	assert.True(t, d.Ops()[0].IsDelete())
	assert.True(t, d.Ops()[1].IsInsert())
}

func TestDeltaIsDocument(t *testing.T) {
	assert.True(t, New(InsertText("a", nil)).IsDocument())
	assert.False(t, New(Retain(1, nil)).IsDocument())
}

func TestDeltaJSONRoundTrip(t *testing.T) {
	d := New(InsertText("hi", Attrs{"bold": true}), Retain(2, nil), Delete(1))
	data, err := json.Marshal(d)
	require.NoError(t, err)

	var out Delta
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, d.Equal(out))
}

func TestDeltaJSONEmptyArray(t *testing.T) {
	var d Delta
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestOpUnmarshalNullAttribute(t *testing.T) {
	var o Op
	require.NoError(t, json.Unmarshal([]byte(`{"retain":3,"attributes":{"bold":null}}`), &o))
	v, ok := o.Attrs()["bold"]
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestOpConstructorsPanicOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { Retain(0, nil) })
	assert.Panics(t, func() { Delete(-1) })
}
