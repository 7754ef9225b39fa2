package service

import (
	"context"
	"errors"
	"time"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/entity"
	"github.com/octobees/business-directory/internal/media"
	"github.com/octobees/business-directory/internal/notify"
	"github.com/octobees/business-directory/internal/repository"
)

type mockBusinessesRepository struct {
	list            func(ctx context.Context, filter dto.BusinessFilter) ([]entity.Business, int, error)
	get             func(ctx context.Context, id int64) (*entity.Business, error)
	create          func(ctx context.Context, business *entity.Business) (int64, error)
	update          func(ctx context.Context, id int64, changes []repository.Assignment) error
	delete          func(ctx context.Context, id int64) error
	bulkInsert      func(ctx context.Context, records []entity.Business) (int, error)
	countByIndustry func(ctx context.Context, industryID int64) (int, error)
}

func (m *mockBusinessesRepository) List(ctx context.Context, filter dto.BusinessFilter) ([]entity.Business, int, error) {
	if m.list != nil {
		return m.list(ctx, filter)
	}
	return nil, 0, errors.New("list not implemented")
}

func (m *mockBusinessesRepository) Get(ctx context.Context, id int64) (*entity.Business, error) {
	if m.get != nil {
		return m.get(ctx, id)
	}
	return nil, errors.New("get not implemented")
}

func (m *mockBusinessesRepository) Create(ctx context.Context, business *entity.Business) (int64, error) {
	if m.create != nil {
		return m.create(ctx, business)
	}
	return 0, errors.New("create not implemented")
}

func (m *mockBusinessesRepository) Update(ctx context.Context, id int64, changes []repository.Assignment) error {
	if m.update != nil {
		return m.update(ctx, id, changes)
	}
	return errors.New("update not implemented")
}

func (m *mockBusinessesRepository) Delete(ctx context.Context, id int64) error {
	if m.delete != nil {
		return m.delete(ctx, id)
	}
	return errors.New("delete not implemented")
}

func (m *mockBusinessesRepository) BulkInsert(ctx context.Context, records []entity.Business) (int, error) {
	if m.bulkInsert != nil {
		return m.bulkInsert(ctx, records)
	}
	return 0, errors.New("bulk insert not implemented")
}

func (m *mockBusinessesRepository) CountByIndustry(ctx context.Context, industryID int64) (int, error) {
	if m.countByIndustry != nil {
		return m.countByIndustry(ctx, industryID)
	}
	return 0, errors.New("count not implemented")
}

// mockIndustriesRepository serves a fixed catalogue unless overridden.
type mockIndustriesRepository struct {
	items  []entity.Industry
	create func(ctx context.Context, name, slug string) (int64, error)
	update func(ctx context.Context, id int64, name, slug string) error
	delete func(ctx context.Context, id int64) error
}

func (m *mockIndustriesRepository) List(ctx context.Context) ([]entity.Industry, error) {
	return m.items, nil
}

func (m *mockIndustriesRepository) FindByID(ctx context.Context, id int64) (*entity.Industry, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, repository.ErrIndustryNotFound
}

func (m *mockIndustriesRepository) FindBySlug(ctx context.Context, slug string) (*entity.Industry, error) {
	for i := range m.items {
		if m.items[i].IndustryType == slug {
			return &m.items[i], nil
		}
	}
	return nil, repository.ErrIndustryNotFound
}

func (m *mockIndustriesRepository) Create(ctx context.Context, name, slug string) (int64, error) {
	if m.create != nil {
		return m.create(ctx, name, slug)
	}
	return 0, errors.New("create not implemented")
}

func (m *mockIndustriesRepository) Update(ctx context.Context, id int64, name, slug string) error {
	if m.update != nil {
		return m.update(ctx, id, name, slug)
	}
	return errors.New("update not implemented")
}

func (m *mockIndustriesRepository) Delete(ctx context.Context, id int64) error {
	if m.delete != nil {
		return m.delete(ctx, id)
	}
	return errors.New("delete not implemented")
}

type memoryVerificationRepository struct {
	records map[string]entity.EmailVerification
	deleted []string
	err     error
}

func newMemoryVerificationRepository() *memoryVerificationRepository {
	return &memoryVerificationRepository{records: map[string]entity.EmailVerification{}}
}

func (m *memoryVerificationRepository) Upsert(ctx context.Context, email, otp string, createdAt time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.records[email] = entity.EmailVerification{Email: email, OTP: otp, CreatedAt: createdAt}
	return nil
}

func (m *memoryVerificationRepository) Find(ctx context.Context, email string) (*entity.EmailVerification, error) {
	if m.err != nil {
		return nil, m.err
	}
	record, ok := m.records[email]
	if !ok {
		return nil, repository.ErrVerificationNotFound
	}
	return &record, nil
}

func (m *memoryVerificationRepository) Delete(ctx context.Context, email string) error {
	delete(m.records, email)
	m.deleted = append(m.deleted, email)
	return nil
}

type stubUploader struct {
	uploaded []media.Image
	deleted  []string
	url      string
	err      error
	delErr   error
}

func (s *stubUploader) Upload(ctx context.Context, img media.Image) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploaded = append(s.uploaded, img)
	return s.url, nil
}

func (s *stubUploader) Delete(ctx context.Context, hostedURL string) error {
	s.deleted = append(s.deleted, hostedURL)
	return s.delErr
}

type recordingMailer struct {
	sent []notify.Message
	err  error
}

func (r *recordingMailer) Send(ctx context.Context, msg notify.Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// pngDataURI is a 1x1 transparent png.
const pngDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

var testIndustries = []entity.Industry{
	{ID: 1, Name: "Real Estate", IndustryType: "real-estate"},
	{ID: 2, Name: "Restaurants", IndustryType: "restaurants"},
}

func entityVerification(email, otp string, createdAt time.Time) entity.EmailVerification {
	return entity.EmailVerification{Email: email, OTP: otp, CreatedAt: createdAt}
}
