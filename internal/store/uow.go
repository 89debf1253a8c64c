package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// UnitOfWork groups the writes of one request into a single transaction.
// Entities loaded through it are snapshotted at load time; Commit recomputes
// the pending state, runs the pre-commit hooks, and flushes everything
// all-or-nothing.
type UnitOfWork struct {
	store    *Store
	creates  []any
	deletes  []any
	tracked  []trackedEntity
	appended []any
}

type trackedEntity struct {
	entity   any
	previous map[string]any
}

func (s *Store) Begin() *UnitOfWork {
	return &UnitOfWork{store: s}
}

// First loads the first row matching conds into dest and registers it for
// dirty tracking.
func (u *UnitOfWork) First(ctx context.Context, dest any, conds ...any) error {
	if err := u.store.db.WithContext(ctx).First(dest, conds...).Error; err != nil {
		return err
	}
	return u.Track(ctx, dest)
}

// Track registers an already-loaded entity; its current field values become
// the pre-modification snapshot the hooks diff against.
func (u *UnitOfWork) Track(ctx context.Context, entity any) error {
	snap, err := u.store.snapshot(ctx, entity)
	if err != nil {
		return err
	}
	u.tracked = append(u.tracked, trackedEntity{entity: entity, previous: snap})
	return nil
}

// Create enqueues a new row.
func (u *UnitOfWork) Create(entity any) { u.creates = append(u.creates, entity) }

// Delete enqueues a row removal.
func (u *UnitOfWork) Delete(entity any) { u.deletes = append(u.deletes, entity) }

// Append enqueues a hook-produced row. Satisfies Appender.
func (u *UnitOfWork) Append(row any) { u.appended = append(u.appended, row) }

// Commit diffs the tracked entities, runs the pre-commit hooks, and writes
// creates, updates, deletes and appended rows in one transaction. A hook
// error or any write error rolls back everything, including the audit trail.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	changes := make([]EntityChange, 0, len(u.tracked))
	dirty := make([]any, 0, len(u.tracked))
	for _, t := range u.tracked {
		pending, err := u.store.snapshot(ctx, t.entity)
		if err != nil {
			return fmt.Errorf("pending snapshot for %T: %w", t.entity, err)
		}
		if snapshotsEqual(t.previous, pending) {
			// touched but unchanged: no write, and hooks see nothing
			continue
		}
		changes = append(changes, EntityChange{Entity: t.entity, Previous: t.previous, Pending: pending})
		dirty = append(dirty, t.entity)
	}
	for _, hook := range u.store.hooks {
		if err := hook.BeforeCommit(ctx, changes, u); err != nil {
			return fmt.Errorf("pre-commit hook: %w", err)
		}
	}
	err := u.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entity := range u.creates {
			if err := tx.Create(entity).Error; err != nil {
				return err
			}
		}
		for _, entity := range dirty {
			if err := tx.Save(entity).Error; err != nil {
				return err
			}
		}
		for _, entity := range u.deletes {
			if err := tx.Delete(entity).Error; err != nil {
				return err
			}
		}
		for _, row := range u.appended {
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if u.store.afterCommit != nil && len(u.appended) > 0 {
		u.store.afterCommit(ctx, u.appended)
	}
	return nil
}
