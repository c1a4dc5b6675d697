package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/krbank/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, account_number, account_type, balance, interest_rate, credit_limit, status,
	customer_id, created_by_employee_id, created_at, updated_at`

type pgAccountRepository struct {
	db dbtx
}

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	var createdBy sql.NullString
	err := row.Scan(&a.ID, &a.AccountNumber, &a.AccountType, &a.Balance, &a.InterestRate,
		&a.CreditLimit, &a.Status, &a.CustomerID, &createdBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if createdBy.Valid {
		id := createdBy.String
		a.CreatedByEmployeeID = &id
	}
	return &a, nil
}

func (r *pgAccountRepository) Create(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.AccountNumber, a.AccountType, a.Balance, a.InterestRate, a.CreditLimit, a.Status,
		a.CustomerID, nullString(a.CreatedByEmployeeID), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "failed to create account")
	}
	return nil
}

func (r *pgAccountRepository) getOne(ctx context.Context, key, query string) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("account", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func (r *pgAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, id, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`)
}

func (r *pgAccountRepository) GetForUpdate(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, id, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`)
}

func (r *pgAccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	return r.getOne(ctx, accountNumber, `SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`)
}

func (r *pgAccountRepository) list(ctx context.Context, where string, args ...any) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ` + where + ` ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (r *pgAccountRepository) List(ctx context.Context) ([]models.Account, error) {
	return r.list(ctx, "")
}

func (r *pgAccountRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Account, error) {
	return r.list(ctx, `WHERE customer_id = $1`, customerID)
}

func (r *pgAccountRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.Account, error) {
	return r.list(ctx, `WHERE created_by_employee_id = $1`, employeeID)
}

func (r *pgAccountRepository) ListByType(ctx context.Context, accountType models.AccountType) ([]models.Account, error) {
	return r.list(ctx, `WHERE account_type = $1`, accountType)
}

func (r *pgAccountRepository) ListByStatus(ctx context.Context, status models.AccountStatus) ([]models.Account, error) {
	return r.list(ctx, `WHERE status = $1`, status)
}

func (r *pgAccountRepository) Update(ctx context.Context, a *models.Account) error {
	query := `
		UPDATE accounts
		SET balance = $2, interest_rate = $3, credit_limit = $4, status = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		a.ID, a.Balance, a.InterestRate, a.CreditLimit, a.Status, a.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "failed to update account")
	}
	return checkAffected(result, "account", a.ID)
}

func (r *pgAccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "failed to delete account")
	}
	return checkAffected(result, "account", id)
}

func (r *pgAccountRepository) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM accounts`)
}

func (r *pgAccountRepository) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM accounts WHERE customer_id = $1`, customerID)
}

func (r *pgAccountRepository) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM accounts WHERE created_by_employee_id = $1`, employeeID)
}

func (r *pgAccountRepository) SumBalanceByStatus(ctx context.Context, status models.AccountStatus) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE status = $1`, status,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum balances: %w", err)
	}
	return sum, nil
}

func (r *pgAccountRepository) groupCount(ctx context.Context, column string) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM accounts GROUP BY `+column)
	if err != nil {
		return nil, fmt.Errorf("failed to group accounts by %s: %w", column, err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("failed to scan group count: %w", err)
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

func (r *pgAccountRepository) CountByType(ctx context.Context) (map[models.AccountType]int64, error) {
	raw, err := r.groupCount(ctx, "account_type")
	if err != nil {
		return nil, err
	}
	counts := make(map[models.AccountType]int64, len(raw))
	for k, n := range raw {
		counts[models.AccountType(k)] = n
	}
	return counts, nil
}

func (r *pgAccountRepository) CountByStatus(ctx context.Context) (map[models.AccountStatus]int64, error) {
	raw, err := r.groupCount(ctx, "status")
	if err != nil {
		return nil, err
	}
	counts := make(map[models.AccountStatus]int64, len(raw))
	for k, n := range raw {
		counts[models.AccountStatus(k)] = n
	}
	return counts, nil
}
