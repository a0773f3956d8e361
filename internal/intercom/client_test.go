package intercom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchPage_RequestShape(t *testing.T) {
	var gotQuery map[string]string
	var gotAuth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for k, v := range r.URL.Query() {
			gotQuery[k] = v[0]
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [{"id": "c1", "email": "a@x.com", "name": "Ada Ly"}],
			"pages": {"next": {"starting_after": "p2"}},
			"total_count": 3
		}`))
	}))
	defer ts.Close()

	client := NewClient("tok-123", ts.URL, 100)

	since := time.Unix(1700000000, 0)
	page, err := client.FetchPage(context.Background(), PageRequest{
		PerPage:       50,
		StartingAfter: "abc",
		UpdatedSince:  &since,
	})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer tok-123")
	}
	if gotQuery["per_page"] != "50" {
		t.Errorf("per_page = %q, want %q", gotQuery["per_page"], "50")
	}
	if gotQuery["starting_after"] != "abc" {
		t.Errorf("starting_after = %q, want %q", gotQuery["starting_after"], "abc")
	}
	if gotQuery["updated_since"] != "1700000000" {
		t.Errorf("updated_since = %q, want %q", gotQuery["updated_since"], "1700000000")
	}

	if len(page.Contacts) != 1 || page.Contacts[0].Email != "a@x.com" {
		t.Errorf("unexpected contacts: %+v", page.Contacts)
	}
	if page.NextCursor != "p2" {
		t.Errorf("NextCursor = %q, want %q", page.NextCursor, "p2")
	}
	if page.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", page.TotalCount)
	}
}

func TestFetchPage_OmitsOptionalParams(t *testing.T) {
	var rawQuery string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"data": [], "pages": {}, "total_count": 0}`))
	}))
	defer ts.Close()

	client := NewClient("tok", ts.URL, 100)

	page, err := client.FetchPage(context.Background(), PageRequest{PerPage: 25})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}

	if rawQuery != "per_page=25" {
		t.Errorf("query = %q, want %q", rawQuery, "per_page=25")
	}
	if len(page.Contacts) != 0 {
		t.Errorf("expected empty page, got %+v", page.Contacts)
	}
	if page.NextCursor != "" {
		t.Errorf("NextCursor = %q, want empty", page.NextCursor)
	}
}

func TestFetchPage_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient("tok", ts.URL, 100)

	if _, err := client.FetchPage(context.Background(), PageRequest{PerPage: 10}); err == nil {
		t.Fatal("FetchPage() expected error for 500 response")
	}
}

func TestFetchPage_MissingToken(t *testing.T) {
	client := NewClient("", "http://localhost:0", 100)

	if client.Configured() {
		t.Error("Configured() = true, want false without token")
	}

	if _, err := client.FetchPage(context.Background(), PageRequest{PerPage: 10}); err == nil {
		t.Fatal("FetchPage() expected configuration error without token")
	}
}
