package queue

import (
	"encoding/json"
	"time"
)

// Event types, also used as AMQP routing keys.
const (
	EventReportCreated = "report.created"
	EventReportDeleted = "report.deleted"
)

const eventVersion = 1

// Event is the payload sent to downstream consumers.
type Event struct {
	Type       string `json:"type"`
	ReportID   string `json:"reportId"`
	FileName   string `json:"fileName,omitempty"`
	FitScore   *int   `json:"fitScore,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
	OccurredAt string `json:"occurredAt"`
	Version    int    `json:"version"`
}

// NewEvent stamps an event with the current schema version and time.
func NewEvent(eventType, reportID string, now time.Time) Event {
	return Event{
		Type:       eventType,
		ReportID:   reportID,
		OccurredAt: now.UTC().Format(time.RFC3339Nano),
		Version:    eventVersion,
	}
}

// EncodeEvent returns the JSON representation of an event.
func EncodeEvent(evt Event) ([]byte, error) {
	return json.Marshal(evt)
}

// DecodeEvent parses a JSON payload into an Event.
func DecodeEvent(payload []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}
