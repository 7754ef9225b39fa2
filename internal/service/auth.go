package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/business-directory/internal/auth"
	"github.com/octobees/business-directory/internal/metrics"
	"github.com/octobees/business-directory/internal/repository"
)

// RoleAdmin is the role granted to directory operators.
const RoleAdmin = "admin"

// unknownOperatorHash is compared against when the username does not exist so
// that both failure paths pay for one bcrypt comparison.
var unknownOperatorHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("unknown-operator"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// AuthService coordinates credential validation and token issuance.
type AuthService struct {
	operators repository.OperatorsRepository
	jwt       *auth.JWTManager
	metrics   *metrics.Metrics
	compare   func(hash, password []byte) error
}

// NewAuthService constructs a new AuthService.
func NewAuthService(operators repository.OperatorsRepository, jwtManager *auth.JWTManager, m *metrics.Metrics) *AuthService {
	return &AuthService{
		operators: operators,
		jwt:       jwtManager,
		metrics:   m,
		compare:   bcrypt.CompareHashAndPassword,
	}
}

// Login validates credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", &ValidationError{
			Message: "Username and password are required",
			Fields:  missingFields(map[string]string{"username": username, "password": password}),
		}
	}

	operator, err := s.operators.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrOperatorNotFound) {
			_ = s.compare(unknownOperatorHash(), []byte(password))
			s.metrics.RecordLoginAttempt(false)
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := s.compare([]byte(operator.PasswordHash), []byte(password)); err != nil {
		s.metrics.RecordLoginAttempt(false)
		return "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(operator.ID.String(), operator.Username, operator.Role)
	if err != nil {
		return "", err
	}
	s.metrics.RecordLoginAttempt(true)
	return token, nil
}

// EnsureOperator creates the operator or resets its password.
func (s *AuthService) EnsureOperator(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return errors.New("operator username and password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.operators.Upsert(ctx, username, string(hash), RoleAdmin)
	return err
}
