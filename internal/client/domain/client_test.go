package domain

import "testing"

func TestClient_Validate(t *testing.T) {
	c := &Client{UserID: "u1", Name: "Acme Contact"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Status != ClientStatusLead {
		t.Errorf("Status defaulted to %q, want lead", c.Status)
	}
}

func TestClient_ValidateMissingName(t *testing.T) {
	c := &Client{UserID: "u1"}
	if err := c.Validate(); err == nil {
		t.Fatal("Validate should fail without name")
	}
}

func TestClient_ValidateInvalidStatus(t *testing.T) {
	c := &Client{UserID: "u1", Name: "x", Status: "archived"}
	if err := c.Validate(); err == nil {
		t.Fatal("Validate should fail for unknown status")
	}
}

func TestClient_EffectiveEmail(t *testing.T) {
	c := &Client{Email: "new@example.com", ContactEmail: "old@example.com"}
	if got := c.EffectiveEmail(); got != "new@example.com" {
		t.Errorf("EffectiveEmail = %q, want new@example.com", got)
	}
	c = &Client{ContactEmail: "old@example.com"}
	if got := c.EffectiveEmail(); got != "old@example.com" {
		t.Errorf("EffectiveEmail fallback = %q, want old@example.com", got)
	}
	c = &Client{}
	if got := c.EffectiveEmail(); got != "" {
		t.Errorf("EffectiveEmail empty = %q, want empty", got)
	}
}
