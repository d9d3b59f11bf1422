package amqp

import (
	"encoding/json"
	"time"
)

// Actions a report export message can carry.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// ReportExportMessage asks the export worker to regenerate the artifacts for
// one report. It carries only the id and the action; the worker fetches the
// current report state itself so stale messages cannot overwrite fresh data.
type ReportExportMessage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReportExportMessage creates an export message stamped with the current time.
func NewReportExportMessage(id, action string) *ReportExportMessage {
	return &ReportExportMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ReportExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportExportMessageFromJSON creates a message from JSON bytes.
func ReportExportMessageFromJSON(data []byte) (*ReportExportMessage, error) {
	var msg ReportExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errEmptyMessageID
	}
	return &msg, nil
}
