package middleware

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"github.com/fkhayef/splitsmart/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// MemberEmailKey is the context key for the acting member's e-mail
	MemberEmailKey ContextKey = "member_email"

	// MemberHeader carries the acting member on every request
	MemberHeader = "X-Member-Email"
)

// MemberIdentity reads the acting member from the X-Member-Email header.
// Requests without the header pass through anonymously; a malformed address
// is rejected.
func MemberIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(MemberHeader))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		addr, err := mail.ParseAddress(raw)
		if err != nil || addr.Name != "" {
			response.BadRequest(w, "Invalid "+MemberHeader+" header")
			return
		}

		ctx := WithMemberEmail(r.Context(), strings.ToLower(addr.Address))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireMember rejects requests that carry no member identity
func RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetMemberEmail(r.Context()); !ok {
			response.Unauthorized(w, MemberHeader+" header required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithMemberEmail stores the acting member in ctx
func WithMemberEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, MemberEmailKey, email)
}

// GetMemberEmail extracts the acting member from the request context
func GetMemberEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(MemberEmailKey).(string)
	return email, ok && email != ""
}
