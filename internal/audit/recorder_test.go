package audit

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/program-ledger/internal/db"
	"github.com/diewo77/program-ledger/internal/models"
	"github.com/diewo77/program-ledger/internal/store"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbConn
}

func setupStore(t *testing.T) (*store.Store, *gorm.DB) {
	t.Helper()
	dbConn := setupTestDB(t)
	st := store.New(dbConn)
	st.RegisterPreCommitHook(NewRecorder())
	return st, dbConn
}

func TestUpdateProducesOneRecordPerChangedField(t *testing.T) {
	st, dbConn := setupStore(t)
	program := models.Program{Name: "Apollo", Code: "AP1", Manager: "Dana", Status: "Active"}
	if err := dbConn.Create(&program).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	uow := st.Begin()
	var loaded models.Program
	if err := uow.First(context.Background(), &loaded, program.ID); err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.Name = "Artemis"
	if err := uow.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	var records []models.AuditRecord
	if err := dbConn.Find(&records).Error; err != nil {
		t.Fatalf("read records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly 1 audit record, got %d: %+v", len(records), records)
	}
	rec := records[0]
	if rec.FieldChanged != "name" {
		t.Errorf("field_changed = %q, want name", rec.FieldChanged)
	}
	if rec.OldValue == nil || *rec.OldValue != "Apollo" {
		t.Errorf("old_value = %v, want Apollo", rec.OldValue)
	}
	if rec.NewValue == nil || *rec.NewValue != "Artemis" {
		t.Errorf("new_value = %v, want Artemis", rec.NewValue)
	}
	if rec.RecordID != program.ID {
		t.Errorf("record_id = %d, want %d", rec.RecordID, program.ID)
	}
	if rec.TableName != "programs" {
		t.Errorf("table_name = %q, want programs", rec.TableName)
	}
	if rec.EditedBy != SystemActor {
		t.Errorf("edited_by = %q, want %q", rec.EditedBy, SystemActor)
	}
}

func TestSetToSameValueProducesNoRecords(t *testing.T) {
	st, dbConn := setupStore(t)
	program := models.Program{Name: "Apollo", Code: "AP1", Manager: "Dana", Status: "Active"}
	if err := dbConn.Create(&program).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	uow := st.Begin()
	var loaded models.Program
	if err := uow.First(context.Background(), &loaded, program.ID); err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.Name = "Apollo" // touched but unchanged
	if err := uow.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	var count int64
	dbConn.Model(&models.AuditRecord{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected zero audit records, got %d", count)
	}
}

func TestActorPropagatesFromContext(t *testing.T) {
	st, dbConn := setupStore(t)
	program := models.Program{Name: "Apollo", Code: "AP1", Manager: "Dana", Status: "Active"}
	if err := dbConn.Create(&program).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	ctx := WithActor(context.Background(), "pm@example.com")
	uow := st.Begin()
	var loaded models.Program
	if err := uow.First(ctx, &loaded, program.ID); err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.Manager = "Lee"
	if err := uow.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	var rec models.AuditRecord
	if err := dbConn.First(&rec).Error; err != nil {
		t.Fatalf("read record: %v", err)
	}
	if rec.EditedBy != "pm@example.com" {
		t.Errorf("edited_by = %q, want pm@example.com", rec.EditedBy)
	}
}

func TestNewEntityGetsRecordIDZero(t *testing.T) {
	st, dbConn := setupStore(t)

	uow := st.Begin()
	var program models.Program
	if err := uow.Track(context.Background(), &program); err != nil {
		t.Fatalf("track: %v", err)
	}
	program.Name = "Apollo"
	program.Code = "AP1"
	program.Manager = "Dana"
	program.Status = "Active"
	if err := uow.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if program.ID == 0 {
		t.Fatalf("program should have been persisted")
	}
	var records []models.AuditRecord
	if err := dbConn.Find(&records).Error; err != nil {
		t.Fatalf("read records: %v", err)
	}
	if len(records) == 0 {
		t.Fatalf("expected audit records for the tracked new entity")
	}
	for _, rec := range records {
		if rec.RecordID != 0 {
			t.Errorf("record_id = %d, want 0 for entity created in the same flush", rec.RecordID)
		}
		if rec.OldValue != nil {
			t.Errorf("old_value should be absent for newly set field %s, got %q", rec.FieldChanged, *rec.OldValue)
		}
	}
}

type captureAppender struct{ rows []any }

func (c *captureAppender) Append(row any) { c.rows = append(c.rows, row) }

func TestAuditRecordTypeIsNeverAudited(t *testing.T) {
	oldValue := "a"
	newValue := "b"
	change := store.EntityChange{
		Entity:   &models.AuditRecord{ID: 7, FieldChanged: "name"},
		Previous: map[string]any{"id": uint(7), "field_changed": oldValue},
		Pending:  map[string]any{"id": uint(7), "field_changed": newValue},
	}
	app := &captureAppender{}
	if err := NewRecorder().BeforeCommit(context.Background(), []store.EntityChange{change}, app); err != nil {
		t.Fatalf("hook: %v", err)
	}
	if len(app.rows) != 0 {
		t.Fatalf("audit record changes must not spawn further records, got %d", len(app.rows))
	}
}
