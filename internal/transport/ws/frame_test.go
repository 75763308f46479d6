package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/pkg/delta"
)

func TestTopicForAndBack(t *testing.T) {
	topic := topicFor("doc-42")
	assert.Equal(t, "document:doc-42", topic)

	id, err := documentIDFromTopic(topic)
	require.NoError(t, err)
	assert.Equal(t, "doc-42", id)
}

func TestDocumentIDFromTopicRejectsUnknownPrefix(t *testing.T) {
	_, err := documentIDFromTopic("room:doc-42")
	require.Error(t, err)
}

func TestNewFrameRoundTripsPayload(t *testing.T) {
	d := delta.New(delta.InsertText("hi", nil))
	f := newFrame("doc-1", eventOpen, openPayload{Version: 3, Contents: d})

	assert.Equal(t, "document:doc-1", f.Topic)
	assert.Equal(t, eventOpen, f.Event)

	var p openPayload
	require.NoError(t, json.Unmarshal(f.Payload, &p))
	assert.Equal(t, 3, p.Version)
	assert.True(t, d.Equal(p.Contents))
}

func TestUpdatePayloadRoundTrip(t *testing.T) {
	change := delta.New(delta.Retain(2, nil), delta.InsertText("!", nil))
	raw, err := json.Marshal(updatePayload{Version: 5, Change: change})
	require.NoError(t, err)

	var p updatePayload
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, 5, p.Version)
	assert.True(t, change.Equal(p.Change))
}
