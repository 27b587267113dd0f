package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskdesk.org/internal/todo"
)

func TestHTTPGatewaySendsCredentialVerbatim(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]todo.Todo{})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "allow")
	if _, err := gw.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if gotAuth != "allow" {
		t.Fatalf("credential not sent verbatim: %q", gotAuth)
	}
}

func TestHTTPGatewayCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/todos" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(todo.Todo{ID: "t1", Title: body["title"]})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "Bearer tok")
	created, err := gw.Create(context.Background(), "Buy milk", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "t1" || created.Title != "Buy milk" {
		t.Fatalf("unexpected record: %+v", created)
	}
}

func TestHTTPGatewayDecodesErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "todo not found", "request_id": "req-1"})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "Bearer tok")
	_, err := gw.Update(context.Background(), "missing", todo.Patch{})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "todo not found" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}

func TestHTTPGatewayDeleteNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/v1/todos/t1" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "Bearer tok")
	if err := gw.Delete(context.Background(), "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestHTTPGatewayNonJSONErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusBadGateway)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "Bearer tok")
	_, err := gw.List(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", apiErr.Status)
	}
}
