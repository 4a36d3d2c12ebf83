package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodhub-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByVerificationToken(ctx context.Context, code string, now time.Time) (*User, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (*User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, p UpdateProfileParams) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, fullname, email, password_hash, contact, address, city, country,
	profile_picture, admin, is_verified, last_login,
	verification_token, verification_token_expires_at,
	reset_password_token, reset_password_expires_at,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Fullname, &u.Email, &u.PasswordHash, &u.Contact, &u.Address, &u.City, &u.Country,
		&u.ProfilePicture, &u.Admin, &u.IsVerified, &u.LastLogin,
		&u.VerificationToken, &u.VerificationTokenExpiresAt,
		&u.ResetPasswordToken, &u.ResetPasswordExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, u *User) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (
			id, fullname, email, password_hash, contact, admin,
			verification_token, verification_token_expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`,
		u.ID, u.Fullname, u.Email, u.PasswordHash, u.Contact, u.Admin,
		u.VerificationToken, u.VerificationTokenExpiresAt,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrEmailExists
		}
		log.Error("db: failed to insert user", zap.String("email", u.Email), zap.Error(err))
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
}

func (r *repository) FindByVerificationToken(ctx context.Context, code string, now time.Time) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		WHERE verification_token = $1 AND verification_token_expires_at > $2`,
		code, now))
}

func (r *repository) FindByResetToken(ctx context.Context, token string, now time.Time) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		WHERE reset_password_token = $1 AND reset_password_expires_at > $2`,
		token, now))
}

func (r *repository) exec(ctx context.Context, method, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("db: user update failed",
			zap.String("layer", "repository"),
			zap.String("method", method),
			zap.Error(err),
		)
		return fmt.Errorf("%s: %w", method, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.exec(ctx, "UpdateLastLogin",
		`UPDATE users SET last_login = $2, updated_at = now() WHERE id = $1`, id, at)
}

func (r *repository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, "MarkVerified", `
		UPDATE users
		SET is_verified = true, verification_token = NULL,
			verification_token_expires_at = NULL, updated_at = now()
		WHERE id = $1`, id)
}

func (r *repository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return r.exec(ctx, "SetResetToken", `
		UPDATE users
		SET reset_password_token = $2, reset_password_expires_at = $3, updated_at = now()
		WHERE id = $1`, id, token, expiresAt)
}

func (r *repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.exec(ctx, "UpdatePassword", `
		UPDATE users
		SET password_hash = $2, reset_password_token = NULL,
			reset_password_expires_at = NULL, updated_at = now()
		WHERE id = $1`, id, passwordHash)
}

func (r *repository) UpdateProfile(ctx context.Context, id uuid.UUID, p UpdateProfileParams) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users SET
			fullname        = COALESCE($2, fullname),
			address         = COALESCE($3, address),
			city            = COALESCE($4, city),
			country         = COALESCE($5, country),
			contact         = COALESCE($6, contact),
			profile_picture = COALESCE($7, profile_picture),
			updated_at      = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, p.Fullname, p.Address, p.City, p.Country, p.Contact, p.ProfilePicture,
	))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		logger.FromCtx(ctx).Error("db: failed to update profile",
			zap.String("layer", "repository"),
			zap.String("method", "UpdateProfile"),
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
	}
	return u, err
}
