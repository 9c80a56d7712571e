package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/homeshare/backend/internal/application/finance"
)

// GormUnitOfWork implements finance.UnitOfWork over a gorm transaction.
// The repositories handed to fn are bound to the transaction, so row locks
// taken inside fn live until it returns.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn inside a transaction, committing on nil and rolling back
// on error
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, r finance.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, finance.Repos{
			Entries:  NewGormEntryRepository(tx),
			Bills:    NewGormBillRepository(tx),
			Payments: NewGormPaymentRepository(tx),
		})
	})
}
