package events

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	ev := Event{
		Type:       TypeDocumentTagged,
		DocumentID: "doc-1",
		OwnerID:    "owner-1",
		Data:       map[string]any{"tags": []string{"go"}},
		At:         time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	require.NoError(t, WriteSSE(&buf, ev))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "event: document.tagged\ndata: {"))
	assert.True(t, strings.HasSuffix(out, "}\n\n"))
	assert.Contains(t, out, `"document_id":"doc-1"`)
	assert.Contains(t, out, `"tags":["go"]`)
}

func TestDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComment(&buf, "ping"))
	assert.Equal(t, ": ping\n\n", buf.String())

	ev, err := decode(`{"type":"document.uploaded","document_id":"d","owner_id":"o","at":"2026-01-02T03:04:05Z"}`)
	require.NoError(t, err)
	assert.Equal(t, TypeDocumentUploaded, ev.Type)
	assert.Equal(t, "o", ev.OwnerID)

	_, err = decode("not json")
	assert.Error(t, err)
}

func TestHubFiltersByOwner(t *testing.T) {
	h := NewHub()
	alice := h.Subscribe("alice")
	bob := h.Subscribe("bob")
	assert.Equal(t, 2, h.Len())

	require.NoError(t, h.Publish(context.Background(), Event{Type: TypeDocumentUploaded, OwnerID: "alice", DocumentID: "d1"}))

	select {
	case ev := <-alice.Events():
		assert.Equal(t, "d1", ev.DocumentID)
	case <-time.After(time.Second):
		t.Fatal("alice did not receive her event")
	}
	select {
	case ev := <-bob.Events():
		t.Fatalf("bob received %v", ev)
	default:
	}

	h.Unsubscribe(alice)
	h.Unsubscribe(alice)
	_, open := <-alice.Events()
	assert.False(t, open)
	assert.Equal(t, 1, h.Len())
}

func TestHubDropsForSlowClients(t *testing.T) {
	h := NewHub()
	c := h.Subscribe("alice")

	for i := 0; i < clientBuffer+5; i++ {
		h.Broadcast(Event{OwnerID: "alice"})
	}

	assert.Len(t, c.Events(), clientBuffer)
	assert.Equal(t, uint64(5), h.Dropped())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	a := h.Subscribe("alice")
	b := h.Subscribe("bob")

	h.Close()

	_, openA := <-a.Events()
	_, openB := <-b.Events()
	assert.False(t, openA)
	assert.False(t, openB)
	assert.Zero(t, h.Len())

	// Unsubscribe after Close must not double-close.
	h.Unsubscribe(a)
}
