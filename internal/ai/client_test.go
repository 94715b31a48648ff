package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key", srv.URL, "chat-model", "vision-model")
	return srv, c
}

func TestComplete(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "chat-model" {
			t.Errorf("expected chat model, got %s", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Hello Jane"}},
			},
		})
	})

	out, err := c.Complete(context.Background(), "You write emails.", "Draft a follow-up.")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Hello Jane" {
		t.Errorf("unexpected content %q", out)
	}
}

func TestCompleteRetriesOnRateLimit(t *testing.T) {
	calls := 0
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	})

	out, err := c.Complete(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "ok" {
		t.Errorf("unexpected content %q", out)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestCompleteNoRetryOnClientError(t *testing.T) {
	calls := 0
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad prompt"}}`))
	})

	if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestCompleteMissingKey(t *testing.T) {
	c := NewClient("", "http://localhost", "m", "v")
	if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestScoreDocument(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "vision-model" {
			t.Errorf("expected vision model, got %s", req.Model)
		}
		parts, ok := req.Messages[0].Content.([]any)
		if !ok || len(parts) != 2 {
			t.Fatalf("expected two content parts, got %+v", req.Messages[0].Content)
		}
		img := parts[1].(map[string]any)
		if img["type"] != "image_url" {
			t.Errorf("expected image_url part, got %v", img["type"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "```json\n{\"score\": 85, \"rationale\": \"Signed contract for this client.\"}\n```"}},
			},
		})
	})

	score, err := c.ScoreDocument(context.Background(), "https://files.example.com/doc.pdf", "Acme Corp (active)")
	if err != nil {
		t.Fatalf("ScoreDocument: %v", err)
	}
	if score.Score != 85 {
		t.Errorf("expected score 85, got %d", score.Score)
	}
	if score.Rationale == "" {
		t.Error("expected rationale")
	}
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"bare json", `{"score": 40, "rationale": "r"}`, 40, false},
		{"surrounded by prose", `Sure! {"score": 10, "rationale": "r"} Hope that helps.`, 10, false},
		{"clamped high", `{"score": 150, "rationale": "r"}`, 100, false},
		{"clamped low", `{"score": -5, "rationale": "r"}`, 0, false},
		{"no json", `I cannot rate this.`, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseScore(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseScore: %v", err)
			}
			if got.Score != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got.Score)
			}
		})
	}
}
