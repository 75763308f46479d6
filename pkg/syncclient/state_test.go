package syncclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/pkg/delta"
)

type recordedSend struct {
	version int
	change  delta.Delta
}

type fakeTransport struct {
	calls []recordedSend
}

func (f *fakeTransport) SendUpdate(_ context.Context, version int, change delta.Delta) error {
	f.calls = append(f.calls, recordedSend{version: version, change: change})
	return nil
}

func newTestState(transport *fakeTransport) (*State, *[]delta.Delta, *error) {
	var changes []delta.Delta
	var fatal error
	s := New(transport,
		nil,
		func(_ delta.Delta, change delta.Delta) { changes = append(changes, change) },
		func(err error) { fatal = err },
	)
	return s, &changes, &fatal
}

func TestPushLocalSendsImmediatelyWhenIdle(t *testing.T) {
	transport := &fakeTransport{}
	s, _, _ := newTestState(transport)
	s.HandleOpen(0, delta.New(delta.InsertText("ac\n", nil)))

	require.NoError(t, s.OnLocalDocumentChanged(context.Background(), delta.New(delta.InsertText("axc\n", nil))))

	require.Len(t, transport.calls, 1)
	assert.Equal(t, 0, transport.calls[0].version)
	assert.Equal(t, 1, s.Version())
	assert.Equal(t, "axc\n", string(s.CurrentDocument().DocText()))
}

func TestPushLocalQueuesWhileInFlight(t *testing.T) {
	transport := &fakeTransport{}
	s, _, _ := newTestState(transport)
	ctx := context.Background()
	s.HandleOpen(0, delta.New(delta.InsertText("ac\n", nil)))

	require.NoError(t, s.OnLocalDocumentChanged(ctx, delta.New(delta.InsertText("axc\n", nil))))
	require.Len(t, transport.calls, 1)

	require.NoError(t, s.OnLocalDocumentChanged(ctx, delta.New(delta.InsertText("axyc\n", nil))))
	require.Len(t, transport.calls, 1, "second local edit must not send while the first is in flight")

	require.NoError(t, s.HandleAck(ctx))
	require.Len(t, transport.calls, 2, "the queued change is sent once the in-flight update acks")
	assert.Equal(t, 1, transport.calls[1].version)
	assert.Equal(t, 2, s.Version())
}

func TestOnRemoteUpdateWithNoInFlight(t *testing.T) {
	transport := &fakeTransport{}
	s, changes, _ := newTestState(transport)
	s.HandleOpen(0, delta.New(delta.InsertText("ac\n", nil)))

	s.OnRemoteUpdate(delta.New(delta.InsertText("z", nil)))

	assert.Equal(t, 1, s.Version())
	assert.Equal(t, "zac\n", string(s.CurrentDocument().DocText()))
	require.Len(t, *changes, 1)
}

func TestOnRemoteUpdateTransformsAgainstInFlight(t *testing.T) {
	transport := &fakeTransport{}
	s, _, _ := newTestState(transport)
	ctx := context.Background()
	s.HandleOpen(0, delta.New(delta.InsertText("ac\n", nil)))

	require.NoError(t, s.OnLocalDocumentChanged(ctx, delta.New(delta.InsertText("axc\n", nil))))
	require.Equal(t, "axc\n", string(s.CurrentDocument().DocText()))

	// Remote peer deleted the original leading "a" concurrently.
	s.OnRemoteUpdate(delta.New(delta.Delete(1)))

	assert.Equal(t, "xc\n", string(s.CurrentDocument().DocText()))
}

func TestHandleAckErrorDocumentCorruptedIsFatal(t *testing.T) {
	transport := &fakeTransport{}
	s, _, fatal := newTestState(transport)
	ctx := context.Background()
	s.HandleOpen(0, delta.New(delta.InsertText("ac\n", nil)))
	require.NoError(t, s.OnLocalDocumentChanged(ctx, delta.New(delta.InsertText("axc\n", nil))))

	s.HandleAckError("document_corrupted")

	require.ErrorIs(t, *fatal, ErrDocumentCorrupted)
}

func TestHandleAckErrorOtherReasonIsNotFatal(t *testing.T) {
	transport := &fakeTransport{}
	s, _, fatal := newTestState(transport)
	ctx := context.Background()
	s.HandleOpen(0, delta.New(delta.InsertText("ac\n", nil)))
	require.NoError(t, s.OnLocalDocumentChanged(ctx, delta.New(delta.InsertText("axc\n", nil))))

	s.HandleAckError("server_behind")

	assert.NoError(t, *fatal)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	transport := &fakeTransport{}
	s, _, _ := newTestState(transport)
	ctx := context.Background()
	s.HandleOpen(0, delta.New(delta.InsertText("ac\n", nil)))

	require.NoError(t, s.OnLocalDocumentChanged(ctx, delta.New(delta.InsertText("axc\n", nil))))
	require.NoError(t, s.HandleAck(ctx))

	changed, err := s.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "ac\n", string(s.CurrentDocument().DocText()))

	changed, err = s.Redo(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "axc\n", string(s.CurrentDocument().DocText()))
}

func TestUndoWithEmptyStackIsNoop(t *testing.T) {
	transport := &fakeTransport{}
	s, _, _ := newTestState(transport)
	s.HandleOpen(0, delta.New(delta.InsertText("ac\n", nil)))

	changed, err := s.Undo(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestOnLocalDocumentChangedRejectsNonInsertOnly(t *testing.T) {
	transport := &fakeTransport{}
	s, _, _ := newTestState(transport)
	s.HandleOpen(0, delta.New(delta.InsertText("ac\n", nil)))

	err := s.OnLocalDocumentChanged(context.Background(), delta.New(delta.Retain(1, nil)))
	require.ErrorIs(t, err, ErrNotInsertOnly)
}
