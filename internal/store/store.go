// Package store wraps the gorm handle in an explicit unit-of-work. Entities
// loaded for mutation are snapshotted, and registered pre-commit hooks see
// every (entity, previous, pending) tuple before anything is written, so a
// hook can enqueue extra rows that commit atomically with the change.
package store

import (
	"context"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// EntityChange is one pending-modified entity handed to pre-commit hooks,
// with its scalar column values as of load time (Previous) and as of commit
// time (Pending), keyed by column name. Previous and Pending always carry
// the same key set.
type EntityChange struct {
	Entity   any
	Previous map[string]any
	Pending  map[string]any
}

// Appender lets a pre-commit hook enqueue additional rows into the unit of
// work so they commit in the same transaction as the triggering change.
type Appender interface {
	Append(row any)
}

// PreCommitHook runs exactly once per unit-of-work commit, after the dirty
// set and its snapshots are known but before any write is issued. Returning
// an error aborts the entire transaction.
type PreCommitHook interface {
	BeforeCommit(ctx context.Context, changes []EntityChange, appender Appender) error
}

// Store holds the gorm handle plus the hooks shared by all units of work.
type Store struct {
	db          *gorm.DB
	hooks       []PreCommitHook
	afterCommit func(ctx context.Context, appended []any)
	schemaCache *sync.Map
	namer       schema.Namer
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, schemaCache: &sync.Map{}, namer: schema.NamingStrategy{}}
}

// DB exposes the underlying handle for read-only queries that do not need
// dirty tracking.
func (s *Store) DB() *gorm.DB { return s.db }

// RegisterPreCommitHook adds a hook invoked on every subsequent commit.
// Not safe to call concurrently with commits; wire hooks at startup.
func (s *Store) RegisterPreCommitHook(h PreCommitHook) {
	s.hooks = append(s.hooks, h)
}

// SetAfterCommit installs a best-effort callback receiving the hook-appended
// rows once their transaction has durably committed.
func (s *Store) SetAfterCommit(fn func(ctx context.Context, appended []any)) {
	s.afterCommit = fn
}
