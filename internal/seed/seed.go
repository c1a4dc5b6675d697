// Package seed creates the first ADMIN and EMPLOYEE accounts of an empty
// identity registry.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/krbank/backoffice/internal/config"
	dErrors "github.com/krbank/backoffice/internal/domainerrors"
	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/repository"
	"github.com/krbank/backoffice/internal/utils"
)

type Hasher interface {
	Hash(secret string) (string, error)
}

// Bootstrap seeds one ADMIN and one EMPLOYEE when cfg is enabled and the
// registry holds no employees. It is safe to call on every start: a non-empty
// registry is left untouched. Both records are written in one transaction.
// Returns whether anything was created.
func Bootstrap(ctx context.Context, store repository.Store, hasher Hasher, cfg config.Seed, logger *slog.Logger) (bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		return false, nil
	}
	if cfg.AdminPassword == "" || cfg.EmployeePassword == "" {
		logger.WarnContext(ctx, "seeding enabled without passwords, skipping")
		return false, nil
	}

	seeds := []struct {
		username, password, email string
		first, last               string
		role                      models.Role
	}{
		{cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail, "System", "Administrator", models.RoleAdmin},
		{cfg.EmployeeUsername, cfg.EmployeePassword, cfg.EmployeeEmail, "Default", "Employee", models.RoleEmployee},
	}

	employees := make([]*models.Employee, 0, len(seeds))
	now := time.Now().UTC()
	for _, sd := range seeds {
		digest, err := hasher.Hash(sd.password)
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return false, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("%s seed password must be at most 72 bytes", sd.role))
		}
		if err != nil {
			return false, fmt.Errorf("hashing %s password: %w", sd.role, err)
		}
		employees = append(employees, &models.Employee{
			ID:           utils.GenerateID(utils.EmployeeIDPrefix),
			Username:     sd.username,
			PasswordHash: digest,
			FirstName:    sd.first,
			LastName:     sd.last,
			Email:        sd.email,
			Role:         sd.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	created := false
	err := store.RunInTx(ctx, func(tx repository.Tx) error {
		n, err := tx.Employees().Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, e := range employees {
			if err := tx.Employees().Create(ctx, e); err != nil {
				return fmt.Errorf("creating %s: %w", e.Username, err)
			}
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seeding employees: %w", err)
	}
	if created {
		for _, e := range employees {
			logger.InfoContext(ctx, "seeded default employee", "username", e.Username, "role", e.Role)
		}
	}
	return created, nil
}
