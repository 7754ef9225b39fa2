package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/business-directory/internal/entity"
)

var (
	// ErrIndustryNotFound is returned when no industry matches the lookup.
	ErrIndustryNotFound = errors.New("industry not found")
	// ErrIndustryDuplicate is returned when the slug is already taken.
	ErrIndustryDuplicate = errors.New("industry_type already exists")
)

// IndustriesRepository declares persistence operations for industries.
type IndustriesRepository interface {
	List(ctx context.Context) ([]entity.Industry, error)
	FindByID(ctx context.Context, id int64) (*entity.Industry, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Industry, error)
	Create(ctx context.Context, name, slug string) (int64, error)
	Update(ctx context.Context, id int64, name, slug string) error
	Delete(ctx context.Context, id int64) error
}

// PGXIndustriesRepository implements IndustriesRepository with pgx.
type PGXIndustriesRepository struct {
	pool pgxPool
}

// NewPGXIndustriesRepository instantiates an industries repository.
func NewPGXIndustriesRepository(pool *pgxpool.Pool) *PGXIndustriesRepository {
	return &PGXIndustriesRepository{pool: pool}
}

// List returns every industry ordered by display name.
func (r *PGXIndustriesRepository) List(ctx context.Context) ([]entity.Industry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, industry_type FROM industries ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list industries: %w", err)
	}
	defer rows.Close()

	industries := make([]entity.Industry, 0)
	for rows.Next() {
		var industry entity.Industry
		if err := rows.Scan(&industry.ID, &industry.Name, &industry.IndustryType); err != nil {
			return nil, fmt.Errorf("scan industry row: %w", err)
		}
		industries = append(industries, industry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate industries: %w", err)
	}
	return industries, nil
}

// FindByID retrieves an industry by identifier.
func (r *PGXIndustriesRepository) FindByID(ctx context.Context, id int64) (*entity.Industry, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, industry_type FROM industries WHERE id = $1`, id)
	return scanIndustry(row, "query industry by id")
}

// FindBySlug retrieves an industry by its industry_type, ignoring case.
func (r *PGXIndustriesRepository) FindBySlug(ctx context.Context, slug string) (*entity.Industry, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, industry_type FROM industries WHERE LOWER(industry_type) = LOWER($1)`, slug)
	return scanIndustry(row, "query industry by slug")
}

func scanIndustry(row pgx.Row, op string) (*entity.Industry, error) {
	var industry entity.Industry
	if err := row.Scan(&industry.ID, &industry.Name, &industry.IndustryType); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIndustryNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &industry, nil
}

// Create inserts a new industry row.
func (r *PGXIndustriesRepository) Create(ctx context.Context, name, slug string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO industries (name, industry_type) VALUES ($1, $2) RETURNING id`, name, slug).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrIndustryDuplicate, slug)
		}
		return 0, fmt.Errorf("insert industry: %w", err)
	}
	return id, nil
}

// Update replaces the name and slug of an industry.
func (r *PGXIndustriesRepository) Update(ctx context.Context, id int64, name, slug string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE industries SET name = $1, industry_type = $2 WHERE id = $3`, name, slug, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrIndustryDuplicate, slug)
		}
		return fmt.Errorf("update industry: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrIndustryNotFound
	}
	return nil
}

// Delete removes an industry by id.
func (r *PGXIndustriesRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM industries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete industry: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrIndustryNotFound
	}
	return nil
}
