// Package events broadcasts document lifecycle notifications to connected clients.
// Producers publish onto a Redis channel; every API process forwards that channel
// into its local Hub, which fans events out to SSE subscribers by owner.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

const (
	TypeDocumentUploaded  = "document.uploaded"
	TypeDocumentVersioned = "document.versioned"
	TypeDocumentTagged    = "document.tagged"
	TypeDocumentDeleted   = "document.deleted"
)

// Event is a single notification. OwnerID scopes delivery.
type Event struct {
	Type       string         `json:"type"`
	DocumentID string         `json:"document_id"`
	OwnerID    string         `json:"owner_id"`
	Data       map[string]any `json:"data,omitempty"`
	At         time.Time      `json:"at"`
}

// Publisher sends events to every listening process.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// WriteSSE frames ev as a server-sent event.
func WriteSSE(w io.Writer, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, raw)
	return err
}

// WriteComment writes an SSE comment line, used as a keep-alive.
func WriteComment(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", text)
	return err
}
