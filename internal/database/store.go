package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"paidlinks-api/internal/apperrors"
)

// Store groups the queries used by the services. A Store returned to a
// WithinTx callback runs every query inside that transaction.
type Store struct {
	db *gorm.DB
}

// NewStore wraps a gorm handle
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithinTx runs fn in a single database transaction. fn must only use the
// Store it is given.
func (s *Store) WithinTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// notFound converts gorm's missing-row error into the app taxonomy
func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource)
	}
	return err
}

// IsDuplicate reports whether err is a unique constraint violation
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
