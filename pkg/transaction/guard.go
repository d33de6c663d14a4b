// Package transaction provides the schema-scoped savepoint discipline used
// by every tenant-facing unit of work.
package transaction

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/costmgmt/koku/pkg/db"
	"github.com/costmgmt/koku/pkg/tenant"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var savepointSeq uint64

// Guard wraps units of work in a savepoint bound to a tenant schema. Schema
// selection uses SET LOCAL, so the session's prior search path is restored on
// every exit path, including errors.
type Guard struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGuard(conn *gorm.DB, log *zap.Logger) *Guard {
	return &Guard{db: conn, log: log.Named("transaction")}
}

// WithTx returns a Guard bound to an already-open transaction. Savepoints
// created by the returned guard nest inside it.
func (g *Guard) WithTx(tx *gorm.DB) *Guard {
	return &Guard{db: tx, log: g.log}
}

// RunInSchema opens a savepoint scoped to schema and invokes fn. If fn
// returns an error the savepoint is rolled back and the error is returned
// unchanged; otherwise the savepoint is committed with the enclosing
// transaction.
func (g *Guard) RunInSchema(ctx context.Context, schema tenant.Schema, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applySchema(tx, schema); err != nil {
			return err
		}

		name := nextSavepoint()
		if err := tx.SavePoint(name).Error; err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			if rbErr := tx.RollbackTo(name).Error; rbErr != nil {
				g.log.Error("savepoint rollback failed",
					zap.String("schema", schema.String()),
					zap.String("savepoint", name),
					zap.Error(rbErr),
				)
			}
			return err
		}
		return nil
	})
}

// Attempt runs fn in its own savepoint and absorbs store-level integrity
// violations: the savepoint is rolled back, a warning is logged, and applied
// is false. Used for best-effort secondary writes only; every other error
// propagates unchanged.
func (g *Guard) Attempt(ctx context.Context, schema tenant.Schema, fn func(tx *gorm.DB) error) (applied bool, err error) {
	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applySchema(tx, schema); err != nil {
			return err
		}

		name := nextSavepoint()
		if err := tx.SavePoint(name).Error; err != nil {
			return err
		}
		if fnErr := fn(tx); fnErr != nil {
			if rbErr := tx.RollbackTo(name).Error; rbErr != nil {
				return rbErr
			}
			if db.IsIntegrityViolationErr(fnErr) {
				g.log.Warn("query transaction failed",
					zap.String("schema", schema.String()),
					zap.Error(fnErr),
				)
				return nil
			}
			return fnErr
		}
		applied = true
		return nil
	})
	return applied, err
}

// applySchema narrows the transaction to the tenant schema. Only postgres has
// a search path; on other dialects all queries already use qualified table
// names, so this is a no-op.
func applySchema(tx *gorm.DB, schema tenant.Schema) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	// Schema names are validated identifiers; SET LOCAL does not accept bind
	// parameters for them.
	return tx.Exec(fmt.Sprintf("SET LOCAL search_path TO %s, public", schema)).Error
}

func nextSavepoint() string {
	return fmt.Sprintf("sp_%d", atomic.AddUint64(&savepointSeq, 1))
}
