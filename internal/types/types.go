package types

import (
	"autosales-assistant-backend/internal/assistant"
	"autosales-assistant-backend/internal/catalog"
)

type MessageRequest struct {
	UserID    int64  `json:"userId"`
	Locale    string `json:"locale,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	Text      string `json:"text"`
}

type MessageResponse struct {
	UserID   int64               `json:"userId"`
	Segments []assistant.Segment `json:"segments"`
}

// StreamEvent is one NDJSON line of /api/messages/stream.
type StreamEvent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Markdown bool   `json:"markdown,omitempty"`
	UserID   int64  `json:"userId,omitempty"`
}

const (
	EventTyping      = "typing"
	EventStatus      = "status"
	EventStatusClear = "status_clear"
	EventSegment     = "segment"
	EventDone        = "done"
)

type ClientResponse struct {
	Known   bool                  `json:"known"`
	Profile catalog.ClientProfile `json:"profile"`
}

type DemoClientRequest struct {
	UserID    int64  `json:"userId"`
	FirstName string `json:"firstName,omitempty"`
}

type DemoClientResponse struct {
	Created bool                  `json:"created"`
	Profile catalog.ClientProfile `json:"profile"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
