package handlers

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSESinkFrameFormat(t *testing.T) {
	var buf bytes.Buffer
	sink := &sseSink{w: bufio.NewWriter(&buf)}

	require.NoError(t, sink.WriteFrame("NewChat", []byte(`{"id":1}`)))
	assert.Equal(t, "event: NewChat\ndata: {\"id\":1}\n\n", buf.String())
}

func TestSSESinkHeartbeatIsComment(t *testing.T) {
	var buf bytes.Buffer
	sink := &sseSink{w: bufio.NewWriter(&buf)}

	require.NoError(t, sink.WriteHeartbeat())

	// Comment lines are ignored by EventSource clients; they carry no
	// event payload.
	assert.Equal(t, ": keep-alive\n\n", buf.String())
}

func TestSSESinkFlushesEachFrame(t *testing.T) {
	var buf bytes.Buffer
	sink := &sseSink{w: bufio.NewWriter(&buf)}

	require.NoError(t, sink.WriteFrame("NewMessage", []byte(`{}`)))
	first := buf.Len()
	require.NotZero(t, first, "frame must reach the transport immediately")

	require.NoError(t, sink.WriteFrame("resync", []byte(`{}`)))
	assert.Greater(t, buf.Len(), first)
}
