package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSend(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer key-123" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewResendClient("key-123", srv.URL, "crm@clientflow.example")
	if err := c.Send(context.Background(), "jane@acme.example", "Checking in", "Hi Jane"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["from"] != "crm@clientflow.example" {
		t.Errorf("unexpected from %v", got["from"])
	}
	to, _ := got["to"].([]interface{})
	if len(to) != 1 || to[0] != "jane@acme.example" {
		t.Errorf("unexpected to %v", got["to"])
	}
	if got["subject"] != "Checking in" || got["text"] != "Hi Jane" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestSendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid from"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewResendClient("key-123", srv.URL, "bad")
	if err := c.Send(context.Background(), "jane@acme.example", "s", "b"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSendMissingKey(t *testing.T) {
	c := NewResendClient("", "", "crm@clientflow.example")
	if err := c.Send(context.Background(), "jane@acme.example", "s", "b"); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestSendEmptyRecipient(t *testing.T) {
	c := NewResendClient("key", "", "crm@clientflow.example")
	if err := c.Send(context.Background(), "", "s", "b"); err == nil {
		t.Fatal("expected error for empty recipient")
	}
}
