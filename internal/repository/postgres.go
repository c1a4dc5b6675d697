package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/krbank/backoffice/internal/sentinel"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const defaultTxTimeout = 5 * time.Second

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore is the PostgreSQL-backed Store.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, timeout: defaultTxTimeout}
}

func (s *PostgresStore) Employees() EmployeeRepository { return &pgEmployeeRepository{db: s.db} }
func (s *PostgresStore) Customers() CustomerRepository { return &pgCustomerRepository{db: s.db} }
func (s *PostgresStore) Accounts() AccountRepository   { return &pgAccountRepository{db: s.db} }

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError(err, "failed to commit transaction")
	}
	return nil
}

type pgTx struct {
	tx *sql.Tx
}

func (t pgTx) Employees() EmployeeRepository { return &pgEmployeeRepository{db: t.tx} }
func (t pgTx) Customers() CustomerRepository { return &pgCustomerRepository{db: t.tx} }
func (t pgTx) Accounts() AccountRepository   { return &pgAccountRepository{db: t.tx} }

// mapError converts driver errors into sentinel errors. Unique violations
// become ErrConflict and foreign-key violations ErrDependency.
func mapError(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%s: %s: %w", msg, pqErr.Constraint, sentinel.ErrConflict)
		case "23503":
			return fmt.Errorf("%s: %s: %w", msg, pqErr.Constraint, sentinel.ErrDependency)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func notFound(entity, key string) error {
	return fmt.Errorf("%s %s: %w", entity, key, sentinel.ErrNotFound)
}

func checkAffected(result sql.Result, entity, key string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return notFound(entity, key)
	}
	return nil
}

func countRows(ctx context.Context, db dbtx, query string, args ...any) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

func exists(ctx context.Context, db dbtx, query string, args ...any) (bool, error) {
	var ok bool
	if err := db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return ok, nil
}

// likePattern builds a substring LIKE pattern with the wildcard characters in
// term escaped.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(term)) + "%"
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
