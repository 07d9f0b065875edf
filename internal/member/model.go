package member

import "time"

// Member is a person who can join groups and share expenses. The e-mail is
// the key every ledger entry refers to.
type Member struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
