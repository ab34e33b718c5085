// package repositories provides persistence layer implementations for all model types.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/founders/internal/shared"
)

// Querier is the subset of [sql.DB] and [sql.Tx] the repositories use.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// withTx runs fn inside a transaction when q is a connection pool, or directly when q already is one.
func withTx(q Querier, fn func(Querier) error) error {
	db, ok := q.(*sql.DB)
	if !ok {
		return fn(q)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// RunInTx runs fn against a transaction on db, committing when fn returns nil.
func RunInTx(ctx context.Context, db *sql.DB, fn func(Querier) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide human-readable ordering for entities (e.g., founder #42).
func NextSequence(q Querier, table string) (int, error) {
	var sequence int
	err := withTx(q, func(q Querier) error {
		sequenceTable := table + "_sequence"

		if _, err := q.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
			return fmt.Errorf("failed to increment sequence: %w", err)
		}

		if err := q.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence); err != nil {
			return fmt.Errorf("failed to get sequence value: %w", err)
		}
		return nil
	})
	return sequence, err
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// notFound converts sql.ErrNoRows into [shared.ErrNotFound].
func notFound(err error, entity, key string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, entity, key)
	}
	return fmt.Errorf("failed to query %s: %w", entity, err)
}

func checkAffected(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, entity, id)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// pagination reads "limit" and "offset" from criteria, defaulting to no limit.
func pagination(criteria map[string]any) string {
	limit, _ := criteria["limit"].(int)
	offset, _ := criteria["offset"].(int)
	if limit <= 0 {
		if offset <= 0 {
			return ""
		}
		limit = -1
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, max(offset, 0))
}
