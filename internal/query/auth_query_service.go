package query

import (
	"context"
	"errors"
	"time"

	"github.com/krbank/backoffice/internal/cqrs"
	dErrors "github.com/krbank/backoffice/internal/domainerrors"
	"github.com/krbank/backoffice/internal/middleware"
	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/repository"
	"github.com/krbank/backoffice/internal/sentinel"
)

// Verifier is the credential side of the hashing service.
type Verifier interface {
	Verify(secret, digest string) bool
}

// AuthResult is returned by login and refresh. The embedded view never
// carries the password digest.
type AuthResult struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	Employee  models.EmployeeView `json:"employee"`
}

// AuthQueryService handles login and token refresh. There's no CommandService
// for auth because these operations don't mutate application state.
type AuthQueryService struct {
	store    repository.Store
	verifier Verifier
	tokens   *middleware.TokenManager
	deps
}

func NewAuthQueryService(store repository.Store, verifier Verifier, tokens *middleware.TokenManager, opts ...Option) *AuthQueryService {
	return &AuthQueryService{store: store, verifier: verifier, tokens: tokens, deps: newDeps(opts)}
}

// VerifyCredentials reports whether username exists and password matches its
// digest. Always reads the store, never the cache.
func (s *AuthQueryService) VerifyCredentials(ctx context.Context, username, password string) (*models.Employee, bool, error) {
	employee, err := s.store.Employees().GetByUsername(ctx, username)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, dErrors.FromStore(err, "failed to load employee")
	}
	if !s.verifier.Verify(password, employee.PasswordHash) {
		return nil, false, nil
	}
	return employee, true, nil
}

func (s *AuthQueryService) Login(ctx context.Context, cmd cqrs.LoginCommand) (*AuthResult, error) {
	employee, ok, err := s.VerifyCredentials(ctx, cmd.Username, cmd.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.IncrementLoginFailures()
		s.logger.WarnContext(ctx, "login rejected", "username", cmd.Username)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	return s.issue(ctx, employee)
}

// RefreshToken re-issues a token for a still-valid one. The employee is
// reloaded so a deleted employee cannot refresh and role changes apply.
func (s *AuthQueryService) RefreshToken(ctx context.Context, cmd cqrs.RefreshTokenCommand) (*AuthResult, error) {
	claims, err := s.tokens.Parse(cmd.Token)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}
	employee, err := s.store.Employees().GetByID(ctx, claims.EmployeeID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}
	if err != nil {
		return nil, dErrors.FromStore(err, "failed to load employee")
	}
	return s.issue(ctx, employee)
}

func (s *AuthQueryService) issue(ctx context.Context, employee *models.Employee) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(employee)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate token")
	}
	customers, err := s.store.Customers().CountByEmployee(ctx, employee.ID)
	if err != nil {
		return nil, dErrors.FromStore(err, "failed to count customers")
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Employee:  models.NewEmployeeView(*employee, customers),
	}, nil
}
