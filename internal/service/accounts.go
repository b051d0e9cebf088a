package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/geocoder89/pupsorders/internal/auth"
	"github.com/geocoder89/pupsorders/internal/domain/user"
	"github.com/geocoder89/pupsorders/internal/security"
)

type AccountService struct {
	users   UserStore
	hasher  *security.Hasher
	tokens  *auth.Manager
	timeout time.Duration

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(users UserStore, hasher *security.Hasher, tokens *auth.Manager, timeout time.Duration) *AccountService {
	return &AccountService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		timeout: timeout,
	}
}

// Register creates the user and returns a token for immediate sign-in. If
// issuing the token fails the user row is kept and the error is returned.
func (s *AccountService) Register(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if err := checkPasswordLength(password); err != nil {
		return "", err
	}

	cctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.users.GetByEmail(cctx, email)
	switch {
	case err == nil:
		return "", ErrAlreadyRegistered
	case !errors.Is(err, user.ErrNotFound):
		return "", storeErr(err)
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	wctx, wcancel := withStoreTimeout(ctx, s.timeout)
	defer wcancel()

	// the unique index still decides when two registrations race past the pre-check
	u, err := s.users.Create(wctx, email, hash)
	if err != nil {
		return "", storeErr(err)
	}

	token, err := s.tokens.Issue(auth.Identity{Email: u.Email})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// Login returns ErrUnauthorized for an unknown email and for a wrong password alike.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)

	cctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.users.GetByEmail(cctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// pay the same bcrypt cost as a real comparison
			s.hasher.CheckPassword(s.dummy(), password)
			return "", ErrUnauthorized
		}
		return "", storeErr(err)
	}

	if !s.hasher.CheckPassword(u.PasswordHash, password) {
		return "", ErrUnauthorized
	}

	token, err := s.tokens.Issue(auth.Identity{Email: u.Email})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if err := checkPasswordLength(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	cctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	return storeErr(s.users.UpdatePasswordHash(cctx, userID, hash))
}

// checkPasswordLength enforces bcrypt's byte limit; binding tags count characters.
func checkPasswordLength(password string) error {
	if len(password) > security.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, security.MaxPasswordBytes)
	}
	return nil
}

func (s *AccountService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.HashPassword("pupsorders-login-dummy")
	})
	return s.dummyHash
}
