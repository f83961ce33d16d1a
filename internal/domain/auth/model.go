// Package auth provides authentication for the ledger API.
package auth

import (
	"context"
	"time"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
)

// Lockout policy.
const (
	MaxFailedLogins = 5
	LockDuration    = 15 * time.Minute
)

// User represents an API user.
type User struct {
	ID           id.ID      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	DisplayName  string     `db:"display_name" json:"displayName,omitempty"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	IsAdmin      bool       `db:"is_admin" json:"isAdmin"`
	FailedLogins int        `db:"failed_logins" json:"-"`
	LockedUntil  *time.Time `db:"locked_until" json:"-"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// NewUser creates an active user.
func NewUser(username, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		Username:     username,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate implements entity.Validatable.
func (u *User) Validate(ctx context.Context) error {
	if u.Username == "" {
		return apperror.NewValidation("username is required").WithDetail("field", "username")
	}
	if u.PasswordHash == "" {
		return apperror.NewValidation("password hash is required").WithDetail("field", "password")
	}
	return nil
}

// IsLocked reports whether the account is temporarily locked.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// CanLogin checks account state before password verification.
func (u *User) CanLogin(now time.Time) error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked(now) {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments the failure counter and locks the account
// once the threshold is reached.
func (u *User) RecordFailedLogin(now time.Time) {
	u.FailedLogins++
	if u.FailedLogins >= MaxFailedLogins {
		until := now.Add(LockDuration)
		u.LockedUntil = &until
	}
	u.UpdatedAt = now
}

// RecordSuccessfulLogin resets the failure counter.
func (u *User) RecordSuccessfulLogin(now time.Time) {
	u.FailedLogins = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Repository defines persistence for users.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
}
