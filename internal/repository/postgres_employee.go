package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/krbank/backoffice/internal/models"
)

const employeeColumns = `id, username, password_hash, first_name, last_name, email, role, created_at, updated_at`

type pgEmployeeRepository struct {
	db dbtx
}

func scanEmployee(row interface{ Scan(...any) error }) (*models.Employee, error) {
	var e models.Employee
	err := row.Scan(&e.ID, &e.Username, &e.PasswordHash, &e.FirstName, &e.LastName,
		&e.Email, &e.Role, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *pgEmployeeRepository) Create(ctx context.Context, e *models.Employee) error {
	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Username, e.PasswordHash, e.FirstName, e.LastName,
		e.Email, e.Role, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "failed to create employee")
	}
	return nil
}

func (r *pgEmployeeRepository) getOne(ctx context.Context, key, query string, args ...any) (*models.Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("employee", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (r *pgEmployeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	return r.getOne(ctx, id, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
}

func (r *pgEmployeeRepository) GetForUpdate(ctx context.Context, id string) (*models.Employee, error) {
	return r.getOne(ctx, id, `SELECT `+employeeColumns+` FROM employees WHERE id = $1 FOR UPDATE`, id)
}

func (r *pgEmployeeRepository) GetForShare(ctx context.Context, id string) (*models.Employee, error) {
	return r.getOne(ctx, id, `SELECT `+employeeColumns+` FROM employees WHERE id = $1 FOR SHARE`, id)
}

func (r *pgEmployeeRepository) GetByUsername(ctx context.Context, username string) (*models.Employee, error) {
	return r.getOne(ctx, username, `SELECT `+employeeColumns+` FROM employees WHERE username = $1`, username)
}

func (r *pgEmployeeRepository) list(ctx context.Context, query string, args ...any) ([]models.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

func (r *pgEmployeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY created_at, id`)
}

func (r *pgEmployeeRepository) ListByRole(ctx context.Context, role models.Role) ([]models.Employee, error) {
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees WHERE role = $1 ORDER BY created_at, id`, role)
}

func (r *pgEmployeeRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM employees WHERE username = $1)`, username)
}

func (r *pgEmployeeRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM employees WHERE email = $1)`, email)
}

func (r *pgEmployeeRepository) Update(ctx context.Context, e *models.Employee) error {
	query := `
		UPDATE employees
		SET username = $2, first_name = $3, last_name = $4, email = $5, role = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		e.ID, e.Username, e.FirstName, e.LastName, e.Email, e.Role, e.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "failed to update employee")
	}
	return checkAffected(result, "employee", e.ID)
}

func (r *pgEmployeeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "failed to delete employee")
	}
	return checkAffected(result, "employee", id)
}

func (r *pgEmployeeRepository) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM employees`)
}

func (r *pgEmployeeRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM employees WHERE role = $1`, role)
}
