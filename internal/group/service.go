package group

import (
	"context"
	"errors"
	"strings"

	"github.com/fkhayef/splitsmart/internal/member"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("member is already in this group")
	ErrNotGroupMember      = errors.New("not a member of this group")
	ErrNameRequired        = errors.New("group name is required")
	ErrInvalidRole         = errors.New("invalid member role")
)

// MemberDirectory looks up registered members
type MemberDirectory interface {
	GetByEmail(ctx context.Context, email string) (*member.Member, error)
}

// Service handles group business logic
type Service struct {
	repo    *Repository
	members MemberDirectory
}

// NewService creates a new group service
func NewService(repo *Repository, members MemberDirectory) *Service {
	return &Service{repo: repo, members: members}
}

// Create creates a new group with the creator as its admin
func (s *Service) Create(ctx context.Context, creatorEmail string, req *CreateGroupRequest) (*Group, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, ErrNameRequired
	}

	creator, err := s.lookup(ctx, creatorEmail)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateWithAdmin(ctx, req, creator.Email)
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetByIDWithMembers retrieves a group with all its members
func (s *Service) GetByIDWithMembers(ctx context.Context, id int64) (*Group, []*GroupMember, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// ListByMember retrieves the groups a member belongs to
func (s *Service) ListByMember(ctx context.Context, email string, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByMember(ctx, email, perPage, offset)
}

// GroupIDsByMember lists every group id the member belongs to
func (s *Service) GroupIDsByMember(ctx context.Context, email string) ([]int64, error) {
	return s.repo.GroupIDsByMember(ctx, email)
}

// AddMember adds a registered member to a group
func (s *Service) AddMember(ctx context.Context, groupID int64, req *AddMemberRequest) (*GroupMember, error) {
	if req.Role != "" && req.Role != MemberRoleAdmin && req.Role != MemberRoleMember {
		return nil, ErrInvalidRole
	}
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	m, err := s.lookup(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetMember(ctx, groupID, m.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMemberAlreadyExists
	}

	added, err := s.repo.AddMember(ctx, groupID, m.Email, req.Role)
	if err != nil {
		return nil, err
	}
	added.Name = m.Name
	return added, nil
}

// GetMembers retrieves all members of a group in join order
func (s *Service) GetMembers(ctx context.Context, groupID int64) ([]*GroupMember, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.GetMembers(ctx, groupID)
}

// MemberEmails returns the group's roster keys in join order
func (s *Service) MemberEmails(ctx context.Context, groupID int64) ([]string, error) {
	members, err := s.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	emails := make([]string, len(members))
	for i, m := range members {
		emails[i] = m.MemberEmail
	}
	return emails, nil
}

// RequireMember fails with ErrNotGroupMember unless email is on the roster
func (s *Service) RequireMember(ctx context.Context, groupID int64, email string) error {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return err
	}

	m, err := s.repo.GetMember(ctx, groupID, email)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNotGroupMember
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, email string) (*member.Member, error) {
	m, err := s.members.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return m, nil
}
