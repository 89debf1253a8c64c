package amqp

import (
	"encoding/json"
	"time"

	"github.com/diewo77/program-ledger/internal/models"
)

// AuditEventMessage mirrors one committed AuditRecord for downstream
// consumers (reporting, notification fan-out). It is emitted after the
// owning transaction commits, never before.
type AuditEventMessage struct {
	TableName    string    `json:"table_name"`
	RecordID     uint      `json:"record_id"`
	FieldChanged string    `json:"field_changed"`
	OldValue     *string   `json:"old_value"`
	NewValue     *string   `json:"new_value"`
	EditedBy     string    `json:"edited_by"`
	EditedAt     time.Time `json:"edited_at"`
}

func NewAuditEventMessage(rec *models.AuditRecord) *AuditEventMessage {
	return &AuditEventMessage{
		TableName:    rec.TableName,
		RecordID:     rec.RecordID,
		FieldChanged: rec.FieldChanged,
		OldValue:     rec.OldValue,
		NewValue:     rec.NewValue,
		EditedBy:     rec.EditedBy,
		EditedAt:     rec.EditedAt,
	}
}

// ToJSON converts the message to JSON bytes
func (m *AuditEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AuditEventMessageFromJSON creates a message from JSON bytes
func AuditEventMessageFromJSON(data []byte) (*AuditEventMessage, error) {
	var msg AuditEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
