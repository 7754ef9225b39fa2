package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/business-directory/internal/entity"
)

// ErrVerificationNotFound is returned when no passcode was issued for the email.
var ErrVerificationNotFound = errors.New("email verification not found")

// EmailVerificationRepository stores one passcode per email.
type EmailVerificationRepository interface {
	Upsert(ctx context.Context, email, otp string, createdAt time.Time) error
	Find(ctx context.Context, email string) (*entity.EmailVerification, error)
	Delete(ctx context.Context, email string) error
}

// PGXEmailVerificationRepository implements EmailVerificationRepository with pgx.
type PGXEmailVerificationRepository struct {
	pool pgxPool
}

// NewPGXEmailVerificationRepository instantiates the repository.
func NewPGXEmailVerificationRepository(pool *pgxpool.Pool) *PGXEmailVerificationRepository {
	return &PGXEmailVerificationRepository{pool: pool}
}

// Upsert stores the code for email, overwriting any previous one.
func (r *PGXEmailVerificationRepository) Upsert(ctx context.Context, email, otp string, createdAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO email_verification (email, otp, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (email) DO UPDATE SET
            otp = EXCLUDED.otp,
            created_at = EXCLUDED.created_at
    `, email, otp, createdAt)
	if err != nil {
		return fmt.Errorf("upsert email verification: %w", err)
	}
	return nil
}

// Find returns the stored code for email.
func (r *PGXEmailVerificationRepository) Find(ctx context.Context, email string) (*entity.EmailVerification, error) {
	row := r.pool.QueryRow(ctx, `SELECT email, otp, created_at FROM email_verification WHERE email = $1`, email)

	var v entity.EmailVerification
	if err := row.Scan(&v.Email, &v.OTP, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVerificationNotFound
		}
		return nil, fmt.Errorf("query email verification: %w", err)
	}
	return &v, nil
}

// Delete drops the stored code for email. Missing rows are not an error.
func (r *PGXEmailVerificationRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM email_verification WHERE email = $1`, email); err != nil {
		return fmt.Errorf("delete email verification: %w", err)
	}
	return nil
}
