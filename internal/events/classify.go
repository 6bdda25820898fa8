package events

import (
	"encoding/json"
	"fmt"
)

type startedPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	Channel        string `json:"channel"`
}

type messagePayload struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
	Text           string `json:"text"`
	UserID         string `json:"userId"`
}

type completedPayload struct {
	ConversationID string               `json:"conversationId"`
	Metrics        *ConversationMetrics `json:"metrics"`
}

type usagePayload struct {
	ConversationID string   `json:"conversationId"`
	Tokens         *int64   `json:"tokens"`
	Cost           *float64 `json:"cost"`
	Model          string   `json:"model"`
}

// Classify decodes a raw event into its typed variant
func Classify(raw Raw) (Event, error) {
	ev := Event{
		Kind:        Kind(raw.Type),
		ID:          raw.ID,
		Timestamp:   raw.Timestamp,
		BotID:       raw.BotID,
		WorkspaceID: raw.WorkspaceID,
	}

	if raw.Timestamp.IsZero() {
		return Event{}, fmt.Errorf("%w: event %s has no timestamp", ErrMalformedPayload, raw.ID)
	}

	switch ev.Kind {
	case KindConversationStarted:
		var p startedPayload
		if err := decode(raw, &p); err != nil {
			return Event{}, err
		}
		if p.ConversationID == "" || p.UserID == "" {
			return Event{}, missing(raw, "conversationId, userId")
		}
		ev.Started = &ConversationStarted{
			ConversationID: p.ConversationID,
			UserID:         p.UserID,
			Channel:        p.Channel,
		}

	case KindMessageReceived:
		var p messagePayload
		if err := decode(raw, &p); err != nil {
			return Event{}, err
		}
		if p.ConversationID == "" || p.UserID == "" {
			return Event{}, missing(raw, "conversationId, userId")
		}
		ev.Message = &MessageReceived{
			ConversationID: p.ConversationID,
			MessageID:      p.MessageID,
			Text:           p.Text,
			UserID:         p.UserID,
		}

	case KindConversationCompleted:
		var p completedPayload
		if err := decode(raw, &p); err != nil {
			return Event{}, err
		}
		if p.ConversationID == "" || p.Metrics == nil {
			return Event{}, missing(raw, "conversationId, metrics")
		}
		m := *p.Metrics
		if m.MessageCount < 0 || m.UserMessageCount < 0 || m.BotMessageCount < 0 || m.DurationMs < 0 {
			return Event{}, fmt.Errorf("%w: event %s has negative metrics", ErrMalformedPayload, raw.ID)
		}
		ev.Completed = &ConversationCompleted{
			ConversationID: p.ConversationID,
			Metrics:        m,
		}

	case KindTokenUsage:
		var p usagePayload
		if err := decode(raw, &p); err != nil {
			return Event{}, err
		}
		if p.Tokens == nil || p.Cost == nil {
			return Event{}, missing(raw, "tokens, cost")
		}
		if *p.Tokens < 0 || *p.Cost < 0 {
			return Event{}, fmt.Errorf("%w: event %s has negative tokens or cost", ErrMalformedPayload, raw.ID)
		}
		ev.Usage = &TokenUsage{
			ConversationID: p.ConversationID,
			Tokens:         *p.Tokens,
			Cost:           *p.Cost,
			Model:          p.Model,
		}

	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnrecognizedEventKind, raw.Type)
	}

	return ev, nil
}

// UserID returns the participant id carried by the event, if any
func (e Event) UserID() string {
	switch {
	case e.Message != nil:
		return e.Message.UserID
	case e.Started != nil:
		return e.Started.UserID
	}
	return ""
}

func decode(raw Raw, dest interface{}) error {
	if len(raw.Payload) == 0 {
		return fmt.Errorf("%w: event %s has no payload", ErrMalformedPayload, raw.ID)
	}
	if err := json.Unmarshal(raw.Payload, dest); err != nil {
		return fmt.Errorf("%w: event %s: %v", ErrMalformedPayload, raw.ID, err)
	}
	return nil
}

func missing(raw Raw, fields string) error {
	return fmt.Errorf("%w: %s event %s requires %s", ErrMalformedPayload, raw.Type, raw.ID, fields)
}
