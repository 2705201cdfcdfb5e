package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gradebook/importer/internal/domain/gradebook"
	"github.com/gradebook/importer/internal/domain/shared"
)

// txRunner is the part of *Connection the executor needs.
type txRunner interface {
	WithTx(ctx context.Context, opts TxOptions, fn func(pgx.Tx) error) error
}

// Executor writes lowered queries to PostgreSQL.
type Executor struct {
	db      txRunner
	timeout time.Duration
}

// NewExecutor creates an Executor. A positive timeout bounds each Apply.
func NewExecutor(conn *Connection, timeout time.Duration) *Executor {
	return &Executor{db: conn, timeout: timeout}
}

// Apply inserts every query inside one transaction: either the whole
// import is stored or none of it is.
func (e *Executor) Apply(ctx context.Context, queries []gradebook.Query) error {
	if len(queries) == 0 {
		return nil
	}

	batch, err := BuildBatch(queries)
	if err != nil {
		return shared.WrapError("postgres", "Apply", shared.ErrInvalidInput, "cannot build batch", err)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	err = e.db.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for i, q := range queries {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("insert %s %d (%s): %w", q.Kind, i, q.ID(), err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return shared.WrapError("postgres", "Apply", shared.ErrExternalService, describe(err), err)
	}

	return nil
}

// describe names the constraint class behind err, if any.
func describe(err error) string {
	switch {
	case IsUniqueViolation(err):
		return "import conflicts with stored data"
	case IsForeignKeyViolation(err):
		return "import references a missing parent row"
	case IsCheckViolation(err):
		return "import violates a table constraint"
	default:
		return "transaction failed"
	}
}
