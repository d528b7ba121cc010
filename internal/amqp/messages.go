package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// MemberEventMessage announces a change to one member. Consumers fetch the
// member itself if they need more than the identifiers.
type MemberEventMessage struct {
	Kind      string    `json:"kind"`
	MemberID  string    `json:"memberId"`
	RecordID  string    `json:"recordId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

var errIncompleteMessage = errors.New("member event requires kind and memberId")

func NewMemberEventMessage(kind, memberID, recordID string) *MemberEventMessage {
	return &MemberEventMessage{
		Kind:      kind,
		MemberID:  memberID,
		RecordID:  recordID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *MemberEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MemberEventMessageFromJSON decodes a message and rejects ones missing
// their kind or member id.
func MemberEventMessageFromJSON(data []byte) (*MemberEventMessage, error) {
	var msg MemberEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" || msg.MemberID == "" {
		return nil, errIncompleteMessage
	}
	return &msg, nil
}
