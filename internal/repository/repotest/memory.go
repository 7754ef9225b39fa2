// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/entity"
	"github.com/octobees/business-directory/internal/repository"
)

// Store is an in-memory stand-in for the PostgreSQL repositories. Tests may
// seed and inspect the exported maps directly.
type Store struct {
	mu     sync.Mutex
	nextID int64

	Businesses    map[int64]entity.Business
	Industries    map[int64]entity.Industry
	Verifications map[string]entity.EmailVerification
	Operators     map[string]entity.Operator
	// LastFilter is the filter of the most recent business List call.
	LastFilter dto.BusinessFilter
}

// NewStore returns an empty store. Ids handed out by Create start above 100.
func NewStore() *Store {
	return &Store{
		nextID:        100,
		Businesses:    map[int64]entity.Business{},
		Industries:    map[int64]entity.Industry{},
		Verifications: map[string]entity.EmailVerification{},
		Operators:     map[string]entity.Operator{},
	}
}

type businesses struct{ *Store }

func (m businesses) List(ctx context.Context, filter dto.BusinessFilter) ([]entity.Business, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastFilter = filter
	ids := make([]int64, 0, len(m.Businesses))
	for id, b := range m.Businesses {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.IndustryType != nil && (b.IndustryType == nil || *b.IndustryType != *filter.IndustryType) {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Location != "" && (b.Location == nil || *b.Location != filter.Location) {
			continue
		}
		if b.MinPrice != nil && *b.MinPrice < filter.MinPrice {
			continue
		}
		if b.MaxPrice != nil && *b.MaxPrice > filter.MaxPrice {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	out := make([]entity.Business, 0)
	for i, id := range ids {
		if i >= filter.Offset() && len(out) < filter.Limit {
			b := m.Businesses[id]
			b.MapURL = b.BuildMapURL()
			out = append(out, b)
		}
	}
	return out, len(ids), nil
}

func (m businesses) Get(ctx context.Context, id int64) (*entity.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Businesses[id]
	if !ok {
		return nil, repository.ErrBusinessNotFound
	}
	return &b, nil
}

func (m businesses) Create(ctx context.Context, business *entity.Business) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	business.ID = m.nextID
	business.CreatedAt = time.Now()
	m.Businesses[business.ID] = *business
	return business.ID, nil
}

func (m businesses) Update(ctx context.Context, id int64, changes []repository.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Businesses[id]
	if !ok {
		return repository.ErrBusinessNotFound
	}
	for _, change := range changes {
		assign(&b, change.Field, change.Value)
	}
	m.Businesses[id] = b
	return nil
}

func (m businesses) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Businesses[id]; !ok {
		return repository.ErrBusinessNotFound
	}
	delete(m.Businesses, id)
	return nil
}

func (m businesses) BulkInsert(ctx context.Context, records []entity.Business) (int, error) {
	for i := range records {
		if _, err := m.Create(ctx, &records[i]); err != nil {
			return 0, err
		}
	}
	return len(records), nil
}

func (m businesses) CountByIndustry(ctx context.Context, industryID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, b := range m.Businesses {
		if b.IndustryType != nil && *b.IndustryType == industryID {
			count++
		}
	}
	return count, nil
}

type industries struct{ *Store }

func (m industries) List(ctx context.Context) ([]entity.Industry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Industry, 0, len(m.Industries))
	for _, industry := range m.Industries {
		out = append(out, industry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m industries) FindByID(ctx context.Context, id int64) (*entity.Industry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	industry, ok := m.Industries[id]
	if !ok {
		return nil, repository.ErrIndustryNotFound
	}
	return &industry, nil
}

func (m industries) FindBySlug(ctx context.Context, slug string) (*entity.Industry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, industry := range m.Industries {
		if industry.IndustryType == slug {
			return &industry, nil
		}
	}
	return nil, repository.ErrIndustryNotFound
}

func (m industries) Create(ctx context.Context, name, slug string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, industry := range m.Industries {
		if industry.IndustryType == slug {
			return 0, repository.ErrIndustryDuplicate
		}
	}
	m.nextID++
	m.Industries[m.nextID] = entity.Industry{ID: m.nextID, Name: name, IndustryType: slug}
	return m.nextID, nil
}

func (m industries) Update(ctx context.Context, id int64, name, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Industries[id]; !ok {
		return repository.ErrIndustryNotFound
	}
	m.Industries[id] = entity.Industry{ID: id, Name: name, IndustryType: slug}
	return nil
}

func (m industries) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Industries[id]; !ok {
		return repository.ErrIndustryNotFound
	}
	delete(m.Industries, id)
	return nil
}

type verifications struct{ *Store }

func (m verifications) Upsert(ctx context.Context, email, otp string, createdAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Verifications[email] = entity.EmailVerification{Email: email, OTP: otp, CreatedAt: createdAt}
	return nil
}

func (m verifications) Find(ctx context.Context, email string) (*entity.EmailVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Verifications[email]
	if !ok {
		return nil, repository.ErrVerificationNotFound
	}
	return &v, nil
}

func (m verifications) Delete(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Verifications, email)
	return nil
}

type operators struct{ *Store }

func (m operators) FindByUsername(ctx context.Context, username string) (*entity.Operator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	op, ok := m.Operators[username]
	if !ok {
		return nil, repository.ErrOperatorNotFound
	}
	return &op, nil
}

func (m operators) Upsert(ctx context.Context, username, passwordHash, role string) (*entity.Operator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	op := entity.Operator{ID: uuid.New(), Username: username, PasswordHash: passwordHash, Role: role}
	m.Operators[username] = op
	return &op, nil
}

// BusinessesRepository returns the business repository view of the store.
func (s *Store) BusinessesRepository() repository.BusinessesRepository { return businesses{s} }

// IndustriesRepository returns the industry repository view of the store.
func (s *Store) IndustriesRepository() repository.IndustriesRepository { return industries{s} }

// VerificationRepository returns the OTP repository view of the store.
func (s *Store) VerificationRepository() repository.EmailVerificationRepository {
	return verifications{s}
}

// OperatorsRepository returns the operator repository view of the store.
func (s *Store) OperatorsRepository() repository.OperatorsRepository { return operators{s} }

// assign mirrors the column writes of the PostgreSQL Update.
func assign(b *entity.Business, field string, value any) {
	str, _ := value.(*string)
	num, _ := value.(*float64)
	switch field {
	case dto.FieldName:
		if str != nil {
			b.Name = *str
		}
	case dto.FieldStatus:
		b.Status, _ = value.(string)
	case dto.FieldIndustryType:
		b.IndustryType, _ = value.(*int64)
	case dto.FieldRating:
		b.Rating, _ = value.(float64)
	case dto.FieldReviewCount:
		b.ReviewCount, _ = value.(int)
	case dto.FieldCategory:
		b.Category = str
	case dto.FieldMobileNumber:
		b.MobileNumber = str
	case dto.FieldEmailID:
		b.EmailID = str
	case dto.FieldWebsite:
		b.Website = str
	case dto.FieldFacebookProfile:
		b.FacebookProfile = str
	case dto.FieldInstagramProfile:
		b.InstagramProfile = str
	case dto.FieldTwitterProfile:
		b.TwitterProfile = str
	case dto.FieldLinkedinProfile:
		b.LinkedinProfile = str
	case dto.FieldAddress:
		b.Address = str
	case dto.FieldLocation:
		b.Location = str
	case dto.FieldPlusCode:
		b.PlusCode = str
	case dto.FieldClosingHours:
		b.ClosingHours = str
	case dto.FieldThumbnail:
		b.Thumbnail = str
	case dto.FieldLatitude:
		b.Latitude = num
	case dto.FieldLongitude:
		b.Longitude = num
	case dto.FieldMinPrice:
		b.MinPrice = num
	case dto.FieldMaxPrice:
		b.MaxPrice = num
	}
}
