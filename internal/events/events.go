// Package events decodes raw bot lifecycle events into typed variants.
package events

import (
	"encoding/json"
	"errors"
	"time"
)

// Kind identifies the lifecycle event type as stored in the "type" field
type Kind string

// Event kinds emitted by the bot runtime
const (
	KindConversationStarted   Kind = "conversation_started"
	KindMessageReceived       Kind = "message_received"
	KindConversationCompleted Kind = "conversation_completed"
	KindTokenUsage            Kind = "ai_token_usage"
)

var (
	// ErrUnrecognizedEventKind is returned when the type field matches no known kind
	ErrUnrecognizedEventKind = errors.New("unrecognized event kind")
	// ErrMalformedPayload is returned when kind-specific required fields are missing
	ErrMalformedPayload = errors.New("malformed event payload")
)

// Raw is an undecoded event as returned by the event store
type Raw struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Timestamp   time.Time       `json:"timestamp"`
	BotID       string          `json:"botId"`
	WorkspaceID string          `json:"workspaceId"`
	Payload     json.RawMessage `json:"payload"`
}

// Event is a classified lifecycle event. Exactly one of the payload pointers
// is set, matching Kind.
type Event struct {
	Kind        Kind
	ID          string
	Timestamp   time.Time
	BotID       string
	WorkspaceID string

	Started   *ConversationStarted
	Message   *MessageReceived
	Completed *ConversationCompleted
	Usage     *TokenUsage
}

// ConversationStarted marks the beginning of a conversation
type ConversationStarted struct {
	ConversationID string
	UserID         string
	Channel        string
}

// MessageReceived is a single inbound user message
type MessageReceived struct {
	ConversationID string
	MessageID      string
	Text           string
	UserID         string
}

// ConversationMetrics summarises a finished conversation
type ConversationMetrics struct {
	MessageCount     int   `json:"messageCount"`
	UserMessageCount int   `json:"userMessageCount"`
	BotMessageCount  int   `json:"botMessageCount"`
	DurationMs       int64 `json:"durationMs"`
}

// ConversationCompleted marks the end of a conversation
type ConversationCompleted struct {
	ConversationID string
	Metrics        ConversationMetrics
}

// TokenUsage records one AI model call
type TokenUsage struct {
	ConversationID string
	Tokens         int64
	Cost           float64
	Model          string
}
