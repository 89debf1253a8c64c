package store

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm/schema"
)

// snapshot reads the current value of every scalar database field of entity,
// keyed by column name. Relationship and ignored fields have no column and
// are skipped, which keeps the audit surface to flat attributes only.
func (s *Store) snapshot(ctx context.Context, entity any) (map[string]any, error) {
	sch, err := schema.Parse(entity, s.schemaCache, s.namer)
	if err != nil {
		return nil, fmt.Errorf("parse schema for %T: %w", entity, err)
	}
	rv := reflect.ValueOf(entity)
	snap := make(map[string]any, len(sch.Fields))
	for _, field := range sch.Fields {
		if field.DBName == "" {
			continue
		}
		value, _ := field.ValueOf(ctx, rv)
		snap[field.DBName] = value
	}
	return snap, nil
}

func snapshotsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for name, av := range a {
		if !reflect.DeepEqual(av, b[name]) {
			return false
		}
	}
	return true
}
