package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/entity"
)

// ErrBusinessNotFound is returned when no business matches the id.
var ErrBusinessNotFound = errors.New("business not found")

// BusinessesRepository describes persistence operations for businesses.
type BusinessesRepository interface {
	List(ctx context.Context, filter dto.BusinessFilter) ([]entity.Business, int, error)
	Get(ctx context.Context, id int64) (*entity.Business, error)
	Create(ctx context.Context, business *entity.Business) (int64, error)
	Update(ctx context.Context, id int64, changes []Assignment) error
	Delete(ctx context.Context, id int64) error
	BulkInsert(ctx context.Context, records []entity.Business) (int, error)
	CountByIndustry(ctx context.Context, industryID int64) (int, error)
}

// Assignment is a single column write of a sparse update. Field uses the
// payload key (for example "minPrice"), not the column name.
type Assignment struct {
	Field string
	Value any
}

// PGXBusinessesRepository implements BusinessesRepository using pgx.
type PGXBusinessesRepository struct {
	pool pgxPool
}

// NewPGXBusinessesRepository wires a pgx backed repository.
func NewPGXBusinessesRepository(pool *pgxpool.Pool) *PGXBusinessesRepository {
	return &PGXBusinessesRepository{pool: pool}
}

const businessSelectColumns = `
            id,
            name,
            category,
            industry_type,
            status,
            mobile_number,
            email_id,
            website,
            facebook_profile,
            instagram_profile,
            twitter_profile,
            linkedin_profile,
            address,
            location,
            plus_code,
            closing_hours,
            latitude,
            longitude,
            min_price,
            max_price,
            review_count,
            rating,
            thumbnail,
            created_at`

// businessColumns maps payload keys to their column.
var businessColumns = map[string]string{
	dto.FieldName:             "name",
	dto.FieldCategory:         "category",
	dto.FieldIndustryType:     "industry_type",
	dto.FieldStatus:           "status",
	dto.FieldMobileNumber:     "mobile_number",
	dto.FieldEmailID:          "email_id",
	dto.FieldWebsite:          "website",
	dto.FieldFacebookProfile:  "facebook_profile",
	dto.FieldInstagramProfile: "instagram_profile",
	dto.FieldTwitterProfile:   "twitter_profile",
	dto.FieldLinkedinProfile:  "linkedin_profile",
	dto.FieldAddress:          "address",
	dto.FieldLocation:         "location",
	dto.FieldPlusCode:         "plus_code",
	dto.FieldClosingHours:     "closing_hours",
	dto.FieldLatitude:         "latitude",
	dto.FieldLongitude:        "longitude",
	dto.FieldMinPrice:         "min_price",
	dto.FieldMaxPrice:         "max_price",
	dto.FieldReviewCount:      "review_count",
	dto.FieldRating:           "rating",
	dto.FieldThumbnail:        "thumbnail",
}

// businessPredicate renders the WHERE clause shared by the count and data
// queries of List. Placeholders start at $1.
func businessPredicate(filter dto.BusinessFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	next := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if name := strings.TrimSpace(filter.Name); name != "" {
		clauses = append(clauses, "name ILIKE "+next("%"+escapeLike(name)+"%"))
	}
	if filter.IndustryType != nil {
		clauses = append(clauses, "industry_type = "+next(*filter.IndustryType))
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = "+next(filter.Status))
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		clauses = append(clauses, "location = "+next(location))
	}
	clauses = append(clauses,
		"(min_price IS NULL OR min_price >= "+next(filter.MinPrice)+")",
		"(max_price IS NULL OR max_price <= "+next(filter.MaxPrice)+")",
	)

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

// List returns one page of businesses matching filter together with the
// total number of matching rows.
func (r *PGXBusinessesRepository) List(ctx context.Context, filter dto.BusinessFilter) ([]entity.Business, int, error) {
	where, args := businessPredicate(filter)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM businesses"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count businesses: %w", err)
	}

	query := strings.Builder{}
	query.WriteString("SELECT")
	query.WriteString(businessSelectColumns)
	query.WriteString(" FROM businesses")
	query.WriteString(where)
	query.WriteString(" ORDER BY created_at DESC, id DESC")
	query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	businesses, err := scanBusinesses(rows)
	if err != nil {
		return nil, 0, err
	}
	return businesses, total, nil
}

// Get fetches a single business.
func (r *PGXBusinessesRepository) Get(ctx context.Context, id int64) (*entity.Business, error) {
	row := r.pool.QueryRow(ctx, "SELECT"+businessSelectColumns+" FROM businesses WHERE id = $1", id)

	var b entity.Business
	if err := row.Scan(businessScanTargets(&b)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("query business by id: %w", err)
	}
	b.MapURL = b.BuildMapURL()
	return &b, nil
}

const insertBusinessSQL = `
        INSERT INTO businesses (
            name,
            category,
            industry_type,
            status,
            mobile_number,
            email_id,
            website,
            facebook_profile,
            instagram_profile,
            twitter_profile,
            linkedin_profile,
            address,
            location,
            plus_code,
            closing_hours,
            latitude,
            longitude,
            min_price,
            max_price,
            review_count,
            rating,
            thumbnail
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
            $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
        )
        RETURNING id, created_at
    `

func insertArgs(b *entity.Business) []any {
	return []any{
		b.Name,
		b.Category,
		b.IndustryType,
		b.Status,
		b.MobileNumber,
		b.EmailID,
		b.Website,
		b.FacebookProfile,
		b.InstagramProfile,
		b.TwitterProfile,
		b.LinkedinProfile,
		b.Address,
		b.Location,
		b.PlusCode,
		b.ClosingHours,
		b.Latitude,
		b.Longitude,
		b.MinPrice,
		b.MaxPrice,
		b.ReviewCount,
		b.Rating,
		b.Thumbnail,
	}
}

// Create inserts a business in a single statement and fills in its id and
// created_at.
func (r *PGXBusinessesRepository) Create(ctx context.Context, business *entity.Business) (int64, error) {
	if business == nil {
		return 0, fmt.Errorf("business payload is nil")
	}

	if err := r.pool.QueryRow(ctx, insertBusinessSQL, insertArgs(business)...).Scan(&business.ID, &business.CreatedAt); err != nil {
		return 0, fmt.Errorf("insert business: %w", err)
	}
	return business.ID, nil
}

// Update applies a sparse set of column writes.
func (r *PGXBusinessesRepository) Update(ctx context.Context, id int64, changes []Assignment) error {
	if len(changes) == 0 {
		_, err := r.Get(ctx, id)
		return err
	}

	setClauses := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes)+1)
	for _, change := range changes {
		column, ok := businessColumns[change.Field]
		if !ok {
			return fmt.Errorf("update business: unknown field %q", change.Field)
		}
		args = append(args, change.Value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE businesses SET %s WHERE id = $%d", strings.Join(setClauses, ", "), len(args))
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update business: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrBusinessNotFound
	}
	return nil
}

// Delete removes a business by id.
func (r *PGXBusinessesRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrBusinessNotFound
	}
	return nil
}

// BulkInsert persists a batch of businesses in one transaction. Either every
// record is stored or none is.
func (r *PGXBusinessesRepository) BulkInsert(ctx context.Context, records []entity.Business) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("start bulk insert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for i := range records {
		record := &records[i]
		if err := tx.QueryRow(ctx, insertBusinessSQL, insertArgs(record)...).Scan(&record.ID, &record.CreatedAt); err != nil {
			return 0, fmt.Errorf("bulk insert business %q: %w", record.Name, err)
		}
		inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit bulk insert tx: %w", err)
	}
	return inserted, nil
}

// CountByIndustry returns how many businesses reference the industry id.
func (r *PGXBusinessesRepository) CountByIndustry(ctx context.Context, industryID int64) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM businesses WHERE industry_type = $1`, industryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count businesses by industry: %w", err)
	}
	return count, nil
}

func businessScanTargets(b *entity.Business) []any {
	return []any{
		&b.ID,
		&b.Name,
		&b.Category,
		&b.IndustryType,
		&b.Status,
		&b.MobileNumber,
		&b.EmailID,
		&b.Website,
		&b.FacebookProfile,
		&b.InstagramProfile,
		&b.TwitterProfile,
		&b.LinkedinProfile,
		&b.Address,
		&b.Location,
		&b.PlusCode,
		&b.ClosingHours,
		&b.Latitude,
		&b.Longitude,
		&b.MinPrice,
		&b.MaxPrice,
		&b.ReviewCount,
		&b.Rating,
		&b.Thumbnail,
		&b.CreatedAt,
	}
}

func scanBusinesses(rows pgx.Rows) ([]entity.Business, error) {
	businesses := make([]entity.Business, 0)
	for rows.Next() {
		var b entity.Business
		if err := rows.Scan(businessScanTargets(&b)...); err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		b.MapURL = b.BuildMapURL()
		businesses = append(businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate businesses: %w", err)
	}
	return businesses, nil
}
