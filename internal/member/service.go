package member

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

// Common errors
var (
	ErrMemberNotFound    = errors.New("member not found")
	ErrEmailAlreadyInUse = errors.New("email already in use")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrNameRequired      = errors.New("name is required")
)

// Service handles member business logic
type Service struct {
	repo *Repository
}

// NewService creates a new member service with repository dependency injected
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// NormalizeEmail validates an address and returns its canonical lower-case form
func NormalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

// Create registers a new member
func (s *Service) Create(ctx context.Context, req *CreateMemberRequest) (*Member, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyInUse
	}

	return s.repo.Create(ctx, name, email)
}

// GetByEmail retrieves a member by e-mail
func (s *Service) GetByEmail(ctx context.Context, email string) (*Member, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrMemberNotFound
	}

	m, err := s.repo.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}
	return m, nil
}

// List retrieves all members with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Member, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}
