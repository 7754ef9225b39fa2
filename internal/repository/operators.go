package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/business-directory/internal/entity"
)

// ErrOperatorNotFound is returned when no operator matches the lookup criteria.
var ErrOperatorNotFound = errors.New("operator not found")

// OperatorsRepository declares operations for admin operators.
type OperatorsRepository interface {
	FindByUsername(ctx context.Context, username string) (*entity.Operator, error)
	Upsert(ctx context.Context, username, passwordHash, role string) (*entity.Operator, error)
}

// PGXOperatorsRepository implements OperatorsRepository with pgx.
type PGXOperatorsRepository struct {
	pool pgxPool
}

// NewPGXOperatorsRepository instantiates an operators repository.
func NewPGXOperatorsRepository(pool *pgxpool.Pool) *PGXOperatorsRepository {
	return &PGXOperatorsRepository{pool: pool}
}

// FindByUsername fetches an operator by username if present.
func (r *PGXOperatorsRepository) FindByUsername(ctx context.Context, username string) (*entity.Operator, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, username, password_hash, role, created_at, updated_at FROM operators WHERE username = $1`, username)

	var op entity.Operator
	if err := row.Scan(&op.ID, &op.Username, &op.PasswordHash, &op.Role, &op.CreatedAt, &op.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOperatorNotFound
		}
		return nil, fmt.Errorf("query operator by username: %w", err)
	}
	return &op, nil
}

// Upsert creates the operator or refreshes its password and role.
func (r *PGXOperatorsRepository) Upsert(ctx context.Context, username, passwordHash, role string) (*entity.Operator, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO operators (id, username, password_hash, role)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (username) DO UPDATE SET
            password_hash = EXCLUDED.password_hash,
            role = EXCLUDED.role,
            updated_at = NOW()
        RETURNING id, username, password_hash, role, created_at, updated_at
    `, uuid.New(), username, passwordHash, role)

	var op entity.Operator
	if err := row.Scan(&op.ID, &op.Username, &op.PasswordHash, &op.Role, &op.CreatedAt, &op.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert operator: %w", err)
	}
	return &op, nil
}
