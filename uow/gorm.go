package uow

import (
	"context"
	"database/sql"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	ss "github.com/kestrelworks/shopstream"
)

type changeKind int

const (
	changeSave changeKind = iota
	changeDelete
)

type change struct {
	kind   changeKind
	source ss.EventSource
}

// GormStore is a WriteStore over a gorm connection. Request handling code
// registers the aggregates it mutated with Save and Delete; the unit of
// work flushes the registered change set inside one read committed
// transaction. A store instance belongs to a single unit of work.
type GormStore struct {
	db       *gorm.DB
	strategy ExecutionStrategy

	lk      sync.Mutex
	changes []change
}

type GormOption func(*GormStore)

func WithStrategy(strategy ExecutionStrategy) GormOption {
	return func(s *GormStore) {
		s.strategy = strategy
	}
}

func NewGormStore(db *gorm.DB, options ...GormOption) *GormStore {
	store := &GormStore{
		db:       db,
		strategy: NewRetryStrategy(),
	}

	for _, option := range options {
		option(store)
	}

	return store
}

// OpenPostgres connects a production write store.
func OpenPostgres(dsn string, options ...GormOption) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return NewGormStore(db, options...), nil
}

func (s *GormStore) Save(source ss.EventSource) {
	s.lk.Lock()
	defer s.lk.Unlock()

	s.changes = append(s.changes, change{kind: changeSave, source: source})
}

func (s *GormStore) Delete(source ss.EventSource) {
	s.lk.Lock()
	defer s.lk.Unlock()

	s.changes = append(s.changes, change{kind: changeDelete, source: source})
}

func (s *GormStore) Tracked() []ss.EventSource {
	s.lk.Lock()
	defer s.lk.Unlock()

	tracked := make([]ss.EventSource, len(s.changes))
	for i, c := range s.changes {
		tracked[i] = c.source
	}

	return tracked
}

func (s *GormStore) Strategy() ExecutionStrategy {
	return s.strategy
}

func (s *GormStore) Begin(ctx context.Context) (Tx, error) {
	tx := s.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if tx.Error != nil {
		return nil, tx.Error
	}

	return &gormTx{id: NewTxID(), tx: tx, store: s}, nil
}

func (s *GormStore) clear() {
	s.lk.Lock()
	defer s.lk.Unlock()

	s.changes = nil
}

func (s *GormStore) snapshot() []change {
	s.lk.Lock()
	defer s.lk.Unlock()

	changes := make([]change, len(s.changes))
	copy(changes, s.changes)

	return changes
}

func (s *GormStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}

	return db.Close()
}

type gormTx struct {
	id    TxID
	tx    *gorm.DB
	store *GormStore
}

func (t *gormTx) ID() TxID {
	return t.id
}

func (t *gormTx) Flush(ctx context.Context) error {
	for _, c := range t.store.snapshot() {
		switch c.kind {
		case changeSave:
			if err := t.tx.Save(c.source).Error; err != nil {
				return err
			}
		case changeDelete:
			if err := t.tx.Delete(c.source).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func (t *gormTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit().Error; err != nil {
		return err
	}

	t.store.clear()

	return nil
}

func (t *gormTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback().Error
}
