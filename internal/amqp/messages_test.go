package amqp

import (
	"testing"
	"time"

	"github.com/diewo77/program-ledger/internal/models"
)

func TestAuditEventMessageRoundTrip(t *testing.T) {
	oldVal := "Dana"
	newVal := "Lee"
	rec := &models.AuditRecord{
		TableName:    "programs",
		RecordID:     7,
		FieldChanged: "manager",
		OldValue:     &oldVal,
		NewValue:     &newVal,
		EditedBy:     "pm@example.com",
		EditedAt:     time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC),
	}
	data, err := NewAuditEventMessage(rec).ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	msg, err := AuditEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.TableName != "programs" || msg.RecordID != 7 || msg.FieldChanged != "manager" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.OldValue == nil || *msg.OldValue != "Dana" || msg.NewValue == nil || *msg.NewValue != "Lee" {
		t.Errorf("values: %+v", msg)
	}
	if !msg.EditedAt.Equal(rec.EditedAt) {
		t.Errorf("edited_at = %v", msg.EditedAt)
	}
}

func TestAuditEventMessageNilValues(t *testing.T) {
	rec := &models.AuditRecord{TableName: "programs", FieldChanged: "description", EditedBy: "system"}
	data, err := NewAuditEventMessage(rec).ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	msg, err := AuditEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.OldValue != nil || msg.NewValue != nil {
		t.Errorf("expected nil values, got %+v", msg)
	}
}
