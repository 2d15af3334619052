package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookcart/domain/identity"
)

func TestCustomerClient_Exists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/customers/7/":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success": true, "data": {"id": 7, "name": "Ada"}}`))
		case "/customers/404/":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success": false, "error": "NOT_FOUND"}`))
		case "/customers/500/":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewCustomerClient(server.URL, 2*time.Second)
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		exists, err := client.Exists(ctx, 7)
		if err != nil {
			t.Fatalf("Exists failed: %v", err)
		}
		if !exists {
			t.Error("Expected customer 7 to exist")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		exists, err := client.Exists(ctx, 404)
		if err != nil {
			t.Fatalf("A clean 404 is an answer, not an error: %v", err)
		}
		if exists {
			t.Error("Expected customer 404 to not exist")
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		_, err := client.Exists(ctx, 500)
		if !errors.Is(err, identity.ErrSourceUnavailable) {
			t.Fatalf("Expected ErrSourceUnavailable for 500, got %v", err)
		}
	})
}

func TestCustomerClient_ExistsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := server.URL
	server.Close()

	client := NewCustomerClient(deadURL, time.Second)

	exists, err := client.Exists(context.Background(), 7)
	if !errors.Is(err, identity.ErrSourceUnavailable) {
		t.Fatalf("Expected ErrSourceUnavailable, got %v", err)
	}
	// An outage must not read as "customer does not exist"
	if err == nil && !exists {
		t.Fatal("Outage must not map to a definitive non-existence answer")
	}
}

func TestCustomerClient_ExistsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewCustomerClient(server.URL, 20*time.Millisecond)

	_, err := client.Exists(context.Background(), 7)
	if !errors.Is(err, identity.ErrSourceUnavailable) {
		t.Fatalf("Expected ErrSourceUnavailable on timeout, got %v", err)
	}
}
