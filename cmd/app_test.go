package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookcart/config"
	"bookcart/domain/catalog"
)

type staticBookSource struct {
	books map[int64]catalog.BookSnapshot
}

func (s *staticBookSource) Get(ctx context.Context, bookID int64) (*catalog.BookSnapshot, error) {
	b, ok := s.books[bookID]
	if !ok {
		return nil, catalog.ErrBookNotFound
	}
	copied := b
	return &copied, nil
}

func (s *staticBookSource) Catalog(ctx context.Context) ([]catalog.BookSnapshot, error) {
	out := make([]catalog.BookSnapshot, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	return out, nil
}

type allowAllIdentity struct{}

func (allowAllIdentity) Exists(ctx context.Context, customerID int64) (bool, error) {
	return true, nil
}

func buildTestApp(t *testing.T) *App {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	cfg.App.Env = "production"
	cfg.Server.RateLimit.Enabled = false

	books := &staticBookSource{books: map[int64]catalog.BookSnapshot{
		1: {ID: 1, Title: "Go in Action", Author: "Kennedy", Price: 30.00, Stock: 4},
	}}

	return NewBuilder(cfg).
		UseMockStore().
		WithBookSource(books).
		WithIdentitySource(allowAllIdentity{}).
		Build()
}

func TestBuild_ServesHealthAndInfo(t *testing.T) {
	app := buildTestApp(t)
	engine := app.GetEngine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected healthy without a database, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected ready, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected root info route, got %d", w.Code)
	}
	var info map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to decode info: %v", err)
	}
	if info["name"] != "bookcart" {
		t.Errorf("Expected app name in info route, got %v", info["name"])
	}
}

func TestBuild_FullCartFlow(t *testing.T) {
	app := buildTestApp(t)
	engine := app.GetEngine()

	payload, _ := json.Marshal(map[string]interface{}{"book_id": 1, "quantity": 2})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/customer/7/add", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a request id header on every response")
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/carts/customer/7", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Items []struct {
				Quantity int `json:"quantity"`
			} `json:"items"`
			Total float64 `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Failed to decode view: %v", err)
	}
	if !envelope.Success || len(envelope.Data.Items) != 1 {
		t.Fatalf("Unexpected view: %s", w.Body.String())
	}
	if envelope.Data.Items[0].Quantity != 2 || envelope.Data.Total != 60.00 {
		t.Errorf("Expected quantity 2 and total 60.00, got %+v", envelope.Data)
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/books/catalog", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from catalog, got %d", w.Code)
	}
}
