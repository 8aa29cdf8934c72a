package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aegis-iam/aegis-iam/internal/identity"
	"github.com/aegis-iam/aegis-iam/internal/shared"
	"github.com/aegis-iam/aegis-iam/internal/token"
)

// IdentityMirror registers credentials with the hosted identity provider.
type IdentityMirror interface {
	SignUp(ctx context.Context, email, password string) (identity.ExternalIdentity, error)
}

// Service wraps registration and authentication business rules.
type Service struct {
	repo   Repository
	tokens *token.Service
	mirror IdentityMirror
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *token.Service, mirror IdentityMirror) *Service {
	return &Service{repo: repo, tokens: tokens, mirror: mirror}
}

// Register creates a local account, mirrors it to the identity provider and
// issues a token for the new user. The row insert and the mirror call share
// one transaction: a mirror failure rolls the local row back, so no orphaned
// accounts are left behind.
func (s *Service) Register(ctx context.Context, email, password string, fullName *string) (*Credentials, error) {
	// Fast-path check only. The unique index enforced in CreateUser is the
	// authority under concurrent registration.
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("auth: email already registered: %w", shared.ErrConflict)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	var user *User
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := tx.CreateUser(ctx, NewUser{
			Email:        email,
			PasswordHash: string(hash),
			FullName:     fullName,
		})
		if err != nil {
			return err
		}
		if _, err := s.mirror.SignUp(ctx, email, password); err != nil {
			return fmt.Errorf("%w: %s", shared.ErrExternalProvider, err)
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth: issue token: %w", err)
	}
	return &Credentials{Token: signed, UserID: user.ID, Email: user.Email}, nil
}

// Login validates email/password credentials, records the login time and
// issues a token. Unknown email, inactive account and wrong password all
// yield the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*Credentials, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	user, err = s.repo.TouchLastLogin(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth: issue token: %w", err)
	}
	return &Credentials{Token: signed, UserID: user.ID, Email: user.Email}, nil
}

// GetUser fetches a user by id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
