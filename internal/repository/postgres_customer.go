package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/krbank/backoffice/internal/models"
)

const customerColumns = `id, first_name, last_name, email, phone_number, address, date_of_birth, ssn,
	created_by_employee_id, created_at, updated_at`

type pgCustomerRepository struct {
	db dbtx
}

func scanCustomer(row interface{ Scan(...any) error }) (*models.Customer, error) {
	var c models.Customer
	var dob sql.NullTime
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber, &c.Address,
		&dob, &c.SSN, &c.CreatedByEmployeeID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		t := dob.Time
		c.DateOfBirth = &t
	}
	return &c, nil
}

func (r *pgCustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Address,
		nullTime(c.DateOfBirth), c.SSN, c.CreatedByEmployeeID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "failed to create customer")
	}
	return nil
}

func (r *pgCustomerRepository) getOne(ctx context.Context, id, query string) (*models.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("customer", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

func (r *pgCustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	return r.getOne(ctx, id, `SELECT `+customerColumns+` FROM customers WHERE id = $1`)
}

func (r *pgCustomerRepository) GetForUpdate(ctx context.Context, id string) (*models.Customer, error) {
	return r.getOne(ctx, id, `SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR UPDATE`)
}

func (r *pgCustomerRepository) GetForShare(ctx context.Context, id string) (*models.Customer, error) {
	return r.getOne(ctx, id, `SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR SHARE`)
}

func (r *pgCustomerRepository) list(ctx context.Context, query string, args ...any) ([]models.Customer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (r *pgCustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	return r.list(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC, id`)
}

func (r *pgCustomerRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.Customer, error) {
	return r.list(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE created_by_employee_id = $1
		ORDER BY created_at DESC, id`, employeeID)
}

func (r *pgCustomerRepository) Search(ctx context.Context, term string) ([]models.Customer, error) {
	return r.list(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE LOWER(first_name) LIKE $1
		   OR LOWER(last_name) LIKE $1
		   OR LOWER(email) LIKE $1
		ORDER BY created_at DESC, id`, likePattern(term))
}

func (r *pgCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM customers WHERE email = $1)`, email)
}

func (r *pgCustomerRepository) ExistsBySSN(ctx context.Context, ssn string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM customers WHERE ssn = $1)`, ssn)
}

func (r *pgCustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	query := `
		UPDATE customers
		SET first_name = $2, last_name = $3, email = $4, phone_number = $5, address = $6,
			date_of_birth = $7, ssn = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Address,
		nullTime(c.DateOfBirth), c.SSN, c.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "failed to update customer")
	}
	return checkAffected(result, "customer", c.ID)
}

func (r *pgCustomerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "failed to delete customer")
	}
	return checkAffected(result, "customer", id)
}

func (r *pgCustomerRepository) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM customers`)
}

func (r *pgCustomerRepository) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM customers WHERE created_by_employee_id = $1`, employeeID)
}
