package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func echoMember(w http.ResponseWriter, r *http.Request) {
	email, ok := GetMemberEmail(r.Context())
	if !ok {
		w.Write([]byte("anonymous"))
		return
	}
	w.Write([]byte(email))
}

func TestMemberIdentity(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"no header", "", http.StatusOK, "anonymous"},
		{"plain address", "alice@example.com", http.StatusOK, "alice@example.com"},
		{"normalized", "  Alice@Example.COM ", http.StatusOK, "alice@example.com"},
		{"malformed", "not-an-email", http.StatusBadRequest, ""},
		{"display name", "Alice <alice@example.com>", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(MemberHeader, tt.header)
			}
			rec := httptest.NewRecorder()

			MemberIdentity(http.HandlerFunc(echoMember)).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRequireMember(t *testing.T) {
	h := MemberIdentity(RequireMember(http.HandlerFunc(echoMember)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous request: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(MemberHeader, "bob@example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "bob@example.com" {
		t.Errorf("identified request: status = %d body = %q", rec.Code, rec.Body.String())
	}
}
