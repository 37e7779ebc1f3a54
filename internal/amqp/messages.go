package amqp

import (
	"encoding/json"
	"time"
)

// LedgerEventMessage notifies the backup mirror that a profile's ledger
// changed. It carries only identifiers; the worker re-reads the profile's
// state from storage, so stale or duplicate deliveries are harmless.
type LedgerEventMessage struct {
	Kind      string    `json:"kind"`
	ProfileID string    `json:"profile_id"`
	RefID     string    `json:"ref_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(kind, profileID, refID string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:      kind,
		ProfileID: profileID,
		RefID:     refID,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
