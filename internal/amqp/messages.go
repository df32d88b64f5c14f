package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"calorie/internal/core"
	"calorie/internal/tracker"
)

// TrackerEventMessage is the wire form of one committed tracker change.
type TrackerEventMessage struct {
	Session string        `json:"session"`
	Kind    string        `json:"kind"`
	Entry   *EntryPayload `json:"entry,omitempty"`
	Limit   int64         `json:"limit"`
	Total   int64         `json:"total"`
	At      time.Time     `json:"at"`
}

// EntryPayload describes the meal or workout an event refers to.
type EntryPayload struct {
	Kind     core.EntryKind `json:"kind"`
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Calories int64          `json:"calories"`
}

func NewTrackerEventMessage(session string, ev tracker.Event) *TrackerEventMessage {
	msg := &TrackerEventMessage{
		Session: session,
		Kind:    ev.Kind.String(),
		Limit:   ev.Summary.Limit,
		Total:   ev.Summary.Total,
		At:      time.Now().UTC(),
	}
	if kind := ev.EntryKind(); kind != "" {
		id, name, calories := ev.Entry()
		msg.Entry = &EntryPayload{Kind: kind, ID: id, Name: name, Calories: calories}
	}
	return msg
}

func (m *TrackerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TrackerEventMessageFromJSON decodes and checks a message body.
func TrackerEventMessageFromJSON(data []byte) (*TrackerEventMessage, error) {
	var msg TrackerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Session == "" || msg.Kind == "" {
		return nil, fmt.Errorf("tracker event message missing session or kind")
	}
	if msg.Entry != nil && !msg.Entry.Kind.IsValid() {
		return nil, fmt.Errorf("tracker event message has unknown entry kind %q", msg.Entry.Kind)
	}
	return &msg, nil
}

// JournalEntry converts the message to the row the worker records.
func (m *TrackerEventMessage) JournalEntry() core.JournalEntry {
	e := core.JournalEntry{
		Session:   m.Session,
		Event:     m.Kind,
		Limit:     m.Limit,
		Total:     m.Total,
		CreatedAt: m.At,
	}
	if m.Entry != nil {
		e.Kind = m.Entry.Kind
		e.EntryID = m.Entry.ID
		e.Name = m.Entry.Name
		e.Calories = m.Entry.Calories
	}
	return e
}
