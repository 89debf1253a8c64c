package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/diewo77/program-ledger/internal/models"
	"github.com/diewo77/program-ledger/internal/store"
)

// Recorder is the pre-commit hook that writes the change history. For every
// dirty entity carrying the models.Auditable marker it diffs the previous
// and pending snapshots and appends one AuditRecord per changed field, so
// the records commit atomically with the change they describe. AuditRecord
// does not implement the marker, so the hook never feeds itself.
type Recorder struct {
	now func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) BeforeCommit(ctx context.Context, changes []store.EntityChange, appender store.Appender) error {
	actor := ActorFromContext(ctx)
	for _, change := range changes {
		entity, ok := change.Entity.(models.Auditable)
		if !ok {
			continue
		}
		diffs := DiffSnapshots(change.Previous, change.Pending)
		if len(diffs) == 0 {
			continue
		}
		id := recordID(change.Previous)
		for _, diff := range diffs {
			slog.DebugContext(ctx, "field change detected",
				"table", entity.AuditTable(),
				"record_id", id,
				"field", diff.Field)
			appender.Append(&models.AuditRecord{
				EditedBy:     actor,
				EditedAt:     r.now().UTC(),
				FieldChanged: diff.Field,
				OldValue:     diff.Old,
				NewValue:     diff.New,
				RecordID:     id,
				TableName:    entity.AuditTable(),
			})
		}
	}
	return nil
}

// recordID reads the row identifier out of a snapshot. 0 means the entity
// had no assigned id at commit time (created in the same flush); consumers
// must treat it as unknown, not as a real key.
func recordID(snap map[string]any) uint {
	switch id := snap["id"].(type) {
	case uint:
		return id
	case uint64:
		return uint(id)
	case int64:
		if id > 0 {
			return uint(id)
		}
	case int:
		if id > 0 {
			return uint(id)
		}
	}
	return 0
}
