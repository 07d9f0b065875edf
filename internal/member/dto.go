package member

// CreateMemberRequest represents the request body for registering a member
type CreateMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MemberResponse represents the response for a single member
type MemberResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
