package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/tx"
	"partsledger/pkg/logger"
)

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Service handles authentication.
type Service struct {
	repo      Repository
	jwt       *JWTService
	txManager tx.Manager
}

// NewService creates an auth service.
func NewService(repo Repository, jwt *JWTService, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		jwt:       jwt,
		txManager: txManager,
	}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password, displayName string) (*User, error) {
	if len(password) < 8 {
		return nil, apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	user := NewUser(username, string(hash))
	user.DisplayName = displayName
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByUsername(ctx, username); err == nil {
			return apperror.NewDuplicate("user", "username", username)
		} else if !apperror.IsNotFound(err) {
			return err
		}
		return s.repo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "username", username)
	return user, nil
}

// Login verifies credentials and issues an access token. Failed attempts
// count toward a temporary lockout.
func (s *Service) Login(ctx context.Context, username, password string) (*Token, *User, error) {
	invalid := apperror.NewUnauthorized("invalid username or password")
	now := time.Now().UTC()

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, invalid
		}
		return nil, nil, err
	}

	if err := user.CanLogin(now); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		user.RecordFailedLogin(now)
		if updErr := s.repo.Update(ctx, user); updErr != nil {
			logger.Warn(ctx, "failed to record login failure", "error", updErr)
		}
		return nil, nil, invalid
	}

	user.RecordSuccessfulLogin(now)
	if err := s.repo.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login success", "error", err)
	}

	tokenString, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "user logged in", "username", username)
	return &Token{AccessToken: tokenString, ExpiresAt: expiresAt}, user, nil
}

// ChangePassword verifies the current password and sets a new one.
func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperror.NewUnauthorized("current password does not match")
	}
	if len(next) < 8 {
		return apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal(err)
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}
