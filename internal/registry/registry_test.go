package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/pkg/delta"
)

func TestGetCreatesOnce(t *testing.T) {
	r := New()
	defer r.Close()

	a1 := r.Get("doc1")
	a2 := r.Get("doc1")
	assert.Same(t, a1, a2)
}

func TestGetIsolatesDocuments(t *testing.T) {
	r := New()
	defer r.Close()

	a1 := r.Get("doc1")
	a2 := r.Get("doc2")
	require.NotSame(t, a1, a2)

	_, contents1, err := a1.Get(context.Background())
	require.NoError(t, err)
	_, contents2, err := a2.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, contents1.Equal(contents2))
}

func TestRestartReseeds(t *testing.T) {
	r := New()
	defer r.Close()

	a1 := r.Get("doc1")
	version, _, err := a1.Update(context.Background(), 0, delta.New(delta.InsertText("x", nil)))
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	a2 := r.Restart("doc1")
	require.NotSame(t, a1, a2)
	version, _, err = a2.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, version)
}
