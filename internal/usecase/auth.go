package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/diary-service/internal/domain"
	"github.com/ErlanBelekov/diary-service/internal/metrics"
	"github.com/ErlanBelekov/diary-service/internal/password"
	"github.com/ErlanBelekov/diary-service/internal/repository"
)

// TokenIssuer is satisfied by *token.Service.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

type AuthUsecase struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

func NewAuthUsecase(users repository.UserRepository, tokens TokenIssuer) *AuthUsecase {
	return &AuthUsecase{users: users, tokens: tokens}
}

// Register creates the account. The password is stored as a bcrypt hash only.
func (u *AuthUsecase) Register(ctx context.Context, email, plain string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.Validationf("email is required")
	}
	if plain == "" {
		return nil, domain.Validationf("password is required")
	}
	if password.IsTooLong(plain) {
		return nil, domain.Validationf("password must be at most 72 bytes")
	}

	hash, err := password.Hash(plain)
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.AuthEventsTotal.WithLabelValues("register", "success").Inc()
	return user, nil
}

// Login returns a signed access token. An unknown email and a wrong password
// both yield domain.ErrInvalidCredentials.
func (u *AuthUsecase) Login(ctx context.Context, email, plain string) (string, error) {
	user, err := u.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			password.Burn(plain)
			metrics.AuthEventsTotal.WithLabelValues("login", "failure").Inc()
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if !password.Verify(plain, user.PasswordHash) {
		metrics.AuthEventsTotal.WithLabelValues("login", "failure").Inc()
		return "", domain.ErrInvalidCredentials
	}

	signed, err := u.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", err
	}
	metrics.AuthEventsTotal.WithLabelValues("login", "success").Inc()
	return signed, nil
}

// DeleteAccount removes the user and, through the store, all of their diaries.
func (u *AuthUsecase) DeleteAccount(ctx context.Context, userID int64) error {
	if err := u.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
