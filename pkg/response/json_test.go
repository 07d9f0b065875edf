package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"name": "trip"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var body APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Error != nil {
		t.Errorf("unexpected envelope: %+v", body)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, string)
		status int
		code   string
	}{
		{"bad request", BadRequest, http.StatusBadRequest, "BAD_REQUEST"},
		{"not found", NotFound, http.StatusNotFound, "NOT_FOUND"},
		{"conflict", Conflict, http.StatusConflict, "CONFLICT"},
		{"unprocessable", UnprocessableEntity, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"},
		{"internal", InternalError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec, "boom")

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var body APIResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Success || body.Error == nil || body.Error.Code != tt.code || body.Error.Message != "boom" {
				t.Errorf("unexpected envelope: %+v", body)
			}
		})
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		query       string
		page, limit int
	}{
		{"", 1, DefaultPerPage},
		{"?page=3&per_page=5", 3, 5},
		{"?page=-1&per_page=0", 1, DefaultPerPage},
		{"?page=abc", 1, DefaultPerPage},
		{"?per_page=1000", 1, MaxPerPage},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, perPage := Pagination(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			if page != tt.page || perPage != tt.limit {
				t.Errorf("got (%d, %d), want (%d, %d)", page, perPage, tt.page, tt.limit)
			}
		})
	}
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(2, 20, 41)
	if m.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", m.TotalPages)
	}
	if m := NewMeta(1, 20, 0); m.TotalPages != 0 {
		t.Errorf("empty listing TotalPages = %d, want 0", m.TotalPages)
	}
}
