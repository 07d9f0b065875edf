package group

import "time"

// MemberRole represents the role of a group member
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

// Group is a set of members sharing one ledger
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupMember represents a member's place on a group roster
type GroupMember struct {
	ID          int64      `json:"id"`
	GroupID     int64      `json:"group_id"`
	MemberEmail string     `json:"member_email"`
	Role        MemberRole `json:"role"`
	JoinedAt    time.Time  `json:"joined_at"`

	// Populated from JOIN
	Name string `json:"name,omitempty"`
}
