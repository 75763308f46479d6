package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformConcurrentInsertServerWins(t *testing.T) {
	a := New(InsertText("A", nil))
	b := New(InsertText("B", nil))
	got := Transform(a, b, true)
	want := New(Retain(1, nil), InsertText("B", nil))
	assert.True(t, want.Equal(got), "got %+v", got.Ops())
}

func TestTransformConcurrentInsertClientWins(t *testing.T) {
	a := New(InsertText("A", nil))
	b := New(InsertText("B", nil))
	got := Transform(a, b, false)
	want := New(InsertText("B", nil))
	assert.True(t, want.Equal(got), "got %+v", got.Ops())
}

func TestTransformDeleteVsRetain(t *testing.T) {
	// a deletes the first 2 chars; b retains everything.
	a := New(Delete(2))
	b := New(Retain(5, nil))
	got := Transform(a, b, true)
	want := New(Retain(3, nil))
	assert.True(t, want.Equal(got), "got %+v", got.Ops())
}

func TestTransformBothDelete(t *testing.T) {
	a := New(Delete(3))
	b := New(Delete(3))
	got := Transform(a, b, true)
	assert.Equal(t, 0, got.Len())
}

func TestTransformRetainAttributePriority(t *testing.T) {
	a := New(Retain(3, Attrs{"bold": true}))
	b := New(Retain(3, Attrs{"bold": false, "italic": true}))
	got := Transform(a, b, true)
	op := got.Ops()[0]
	_, hasBold := op.Attrs()["bold"]
	assert.False(t, hasBold)
	assert.Equal(t, true, op.Attrs()["italic"])
}

func TestTransformTP1Convergence(t *testing.T) {
	base := New(InsertText("Hello world!\n", Attrs{"node_id": "hello"}))
	a := New(InsertText("A", nil))
	b := New(InsertText("B", nil))

	left := Compose(Compose(base, a), Transform(a, b, false))
	right := Compose(Compose(base, b), Transform(b, a, true))
	assert.True(t, left.Equal(right), "left=%+v right=%+v", left.Ops(), right.Ops())
}
