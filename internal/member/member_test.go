package member

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fkhayef/splitsmart/internal/database/databasetest"
	"github.com/fkhayef/splitsmart/pkg/response"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewRepository(databasetest.Open(t)))
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"alice@example.com", "alice@example.com", false},
		{" Bob@Example.com ", "bob@example.com", false},
		{"", "", true},
		{"nope", "", true},
		{"Carol <carol@example.com>", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeEmail(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEmail) {
					t.Errorf("expected ErrInvalidEmail, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestService_CreateAndGet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &CreateMemberRequest{Name: "Alice", Email: "Alice@Example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 || created.Email != "alice@example.com" {
		t.Errorf("unexpected member: %+v", created)
	}

	got, err := svc.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != created.ID || got.Name != "Alice" {
		t.Errorf("got %+v, want %+v", got, created)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at drifted: %v vs %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestService_CreateErrors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &CreateMemberRequest{Name: "Alice", Email: "alice@example.com"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		req  CreateMemberRequest
		want error
	}{
		{"duplicate email", CreateMemberRequest{Name: "Other", Email: "ALICE@example.com"}, ErrEmailAlreadyInUse},
		{"bad email", CreateMemberRequest{Name: "Bob", Email: "bob"}, ErrInvalidEmail},
		{"blank name", CreateMemberRequest{Name: "  ", Email: "bob@example.com"}, ErrNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, &tt.req); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestService_GetByEmail_NotFound(t *testing.T) {
	svc := newService(t)
	if _, err := svc.GetByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestService_List(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if _, err := svc.Create(ctx, &CreateMemberRequest{Name: email, Email: email}); err != nil {
			t.Fatal(err)
		}
	}

	members, total, err := svc.List(ctx, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(members) != 1 || members[0].Email != "c@example.com" {
		t.Errorf("second page = %+v", members)
	}
}

func TestHandler(t *testing.T) {
	h := NewHandler(newService(t)).Routes()

	body, _ := json.Marshal(CreateMemberRequest{Name: "Dana", Email: "dana@example.com"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dana@example.com", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var env struct {
		Data MemberResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	if env.Data.Name != "Dana" {
		t.Errorf("name = %q", env.Data.Name)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nobody@example.com", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing member status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?per_page=10", nil))
	var list response.APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Meta == nil || list.Meta.Total != 1 || list.Meta.PerPage != 10 {
		t.Errorf("meta = %+v", list.Meta)
	}
}
