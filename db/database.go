package db

import (
	"context"

	"gorm.io/gorm"
)

// Database is the process-wide store handle. Request code never holds on to
// the root *gorm.DB; it asks for a session bound to the request context.
type Database interface {
	GetDB() *gorm.DB
	Session(ctx context.Context) *gorm.DB
	WithTx(ctx context.Context, fn func(tx Database) error) error
	Close() error
}

type GormDatabase struct {
	DB *gorm.DB
}

func (g *GormDatabase) GetDB() *gorm.DB { return g.DB }

// Session returns a handle scoped to ctx; it is released with the request.
func (g *GormDatabase) Session(ctx context.Context) *gorm.DB {
	return g.DB.WithContext(ctx)
}

// WithTx runs fn inside a single transaction. The transaction is rolled back
// when fn returns an error or panics, and committed otherwise.
func (g *GormDatabase) WithTx(ctx context.Context, fn func(tx Database) error) error {
	return g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormDatabase{DB: tx})
	})
}

func (g *GormDatabase) Close() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
