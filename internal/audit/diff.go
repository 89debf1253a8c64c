// Package audit turns unit-of-work entity diffs into append-only
// AuditRecord rows, one per changed scalar field.
package audit

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// FieldChange is one scalar attribute whose printable value differs between
// the pre-modification snapshot and the pending state. Old is nil when the
// attribute had no previous value, New when it is being cleared.
type FieldChange struct {
	Field string
	Old   *string
	New   *string
}

// DiffSnapshots compares two column-keyed snapshots and returns the changed
// fields in column-name order. Values are compared in their printable form,
// which is also what gets persisted.
func DiffSnapshots(before, after map[string]any) []FieldChange {
	names := make([]string, 0, len(after))
	for name := range after {
		names = append(names, name)
	}
	sort.Strings(names)

	var changes []FieldChange
	for _, name := range names {
		oldValue := Stringify(before[name])
		newValue := Stringify(after[name])
		if equalValues(oldValue, newValue) {
			continue
		}
		changes = append(changes, FieldChange{Field: name, Old: oldValue, New: newValue})
	}
	return changes
}

func equalValues(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Stringify coerces an attribute value to its printable form, or nil for
// absent values (nil, nil pointers, invalid SQL-null wrappers). It must not
// panic on odd values: anything unrecognized goes through fmt, which renders
// even misbehaving types defensively.
func Stringify(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return &t
	case decimal.NullDecimal:
		if !t.Valid {
			return nil
		}
		return strPtr(t.Decimal.String())
	case decimal.Decimal:
		return strPtr(t.String())
	case time.Time:
		return strPtr(t.UTC().Format(time.RFC3339))
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return Stringify(rv.Elem().Interface())
	}
	return strPtr(fmt.Sprintf("%v", v))
}

func strPtr(s string) *string { return &s }
