package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeInsertAndRetain(t *testing.T) {
	base := New(InsertText("Hello world!\n", Attrs{"node_id": "hello"}))
	change := New(Retain(12, nil), InsertText("!", Attrs{"node_id": "hello"}))
	got := Compose(base, change)
	want := New(InsertText("Hello world!!\n", Attrs{"node_id": "hello"}))
	assert.True(t, want.Equal(got), "got %+v", got.Ops())
}

func TestComposeDeleteCancelsInsert(t *testing.T) {
	a := New(InsertText("abc", nil))
	b := New(Delete(3))
	got := Compose(a, b)
	assert.Equal(t, 0, got.Len())
}

func TestComposeAttributeMerge(t *testing.T) {
	a := New(InsertText("x", Attrs{"bold": true}))
	b := New(Retain(1, Attrs{"italic": true}))
	got := Compose(a, b)
	op := got.Ops()[0]
	assert.Equal(t, "x", op.Text())
	assert.Equal(t, true, op.Attrs()["bold"])
	assert.Equal(t, true, op.Attrs()["italic"])
}

func TestComposeNullAttributeRemovesKey(t *testing.T) {
	a := New(Retain(3, Attrs{"bold": true}))
	b := New(Retain(3, Attrs{"bold": nil, "italic": true}))
	got := Compose(a, b)
	_, ok := got.Ops()[0].Attrs()["bold"]
	assert.False(t, ok)
}

func TestComposeAssociative(t *testing.T) {
	a := New(InsertText("abc", nil))                                        // length 3, base 0
	b := New(Retain(1, nil), InsertText("X", nil), Retain(2, nil))          // base 3, length 4
	c := New(Retain(2, nil), Delete(1), InsertText("Y", nil), Retain(1, nil)) // base 4, length 4

	left := Compose(Compose(a, b), c)
	right := Compose(a, Compose(b, c))
	assert.True(t, left.Equal(right), "left=%+v right=%+v", left.Ops(), right.Ops())
}
