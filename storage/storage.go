// Package storage assembles the durable store, the overlay cache, and the
// unit-of-work abstraction the transaction pipeline and API layer use to
// read and mutate replicated state (spec §4.5).
package storage

import (
	"context"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/ground-x/feedscore/storage/cache"
	"github.com/ground-x/feedscore/storage/repo"
)

// UnitOfWork is either a readonly snapshot (possibly stale-but-consistent)
// or a writable transaction. Every write method uses a writable UoW exactly
// once and commits (spec §4.5).
type UnitOfWork struct {
	Reader repo.Reader
	writer repo.Writer // nil on a readonly UoW
}

func (u *UnitOfWork) Writer() repo.Writer { return u.writer }

func (u *UnitOfWork) IsWritable() bool { return u.writer != nil }

// Service is the storage facade: createReadOnly()/createWritable() plus the
// overlay cache, wired from configuration at startup.
type Service struct {
	db      *gorm.DB
	durable *repo.GormRepo
	overlay *cache.Overlay
}

func NewService(durable *repo.GormRepo, db *gorm.DB, overlay *cache.Overlay) *Service {
	return &Service{db: db, durable: durable, overlay: overlay}
}

func (s *Service) Overlay() *cache.Overlay { return s.overlay }

// CreateReadOnly returns a UoW backed by the cache-fronted reader; it may
// return stale-but-consistent snapshots (spec §4.5).
func (s *Service) CreateReadOnly(ctx context.Context) *UnitOfWork {
	return &UnitOfWork{Reader: cache.NewCachedReader(s.durable, s.overlay)}
}

// CreateWritable opens a single gorm transaction, rolled back on any error
// returned from fn and committed otherwise — so "every write method uses a
// writable UoW exactly once and commits" holds by construction.
func (s *Service) CreateWritable(ctx context.Context, fn func(rw repo.ReaderWriter) error) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "begin transaction")
	}
	txRepo := s.durable.WithTx(tx)

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return errors.Wrapf(err, "rollback also failed: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}
