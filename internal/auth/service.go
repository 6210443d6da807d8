package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/emberlog/emberlog/internal/rbac"
	"github.com/emberlog/emberlog/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	registry *rbac.Registry
}

// NewService constructs a new Service.
func NewService(repo Repository, registry *rbac.Registry) *Service {
	return &Service{repo: repo, registry: registry}
}

// Register creates an owner account with the registry's default role.
func (s *Service) Register(ctx context.Context, email, password string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	acct := &Account{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         s.registry.DefaultRole().Name,
		CreatedAt:    time.Now().UTC(),
	}
	acct.UpdatedAt = acct.CreatedAt
	if err := s.repo.CreateAccount(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// Authenticate validates email/password credentials. Tombstoned owners
// cannot log in.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	acct, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if acct.Deleted {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return acct, nil
}
