// Package ai calls an OpenAI-compatible API for chat completions (follow-up emails,
// client summaries) and vision-based document scoring.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	maxRetries   = 3
	initialDelay = 1 * time.Second
)

// Client handles chat and vision calls against an OpenAI-compatible endpoint.
type Client struct {
	apiKey      string
	baseURL     string
	chatModel   string
	visionModel string
	client      *http.Client
}

// NewClient creates a new AI client. baseURL is the API root (e.g. https://api.openai.com/v1).
func NewClient(apiKey, baseURL, chatModel, visionModel string) *Client {
	return &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		chatModel:   chatModel,
		visionModel: visionModel,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete sends a chat completion with the given system and user prompts and
// returns the assistant message content.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}
	return c.chat(ctx, req)
}

// DocumentScore is the result of scoring a document image for a client.
type DocumentScore struct {
	Score     int    `json:"score"`     // 0-100 relevance
	Rationale string `json:"rationale"` // one or two sentences
}

// ScoreDocument asks the vision model to rate how relevant the document image is
// to the given client and returns the parsed score.
func (c *Client) ScoreDocument(ctx context.Context, docURL, clientContext string) (*DocumentScore, error) {
	prompt := fmt.Sprintf(
		"Rate how relevant this document is to the CRM client %s on a 0-100 scale. "+
			`Reply with JSON only: {"score": <int>, "rationale": "<short reason>"}`, clientContext)
	req := chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: docURL}},
			}},
		},
	}
	content, err := c.chat(ctx, req)
	if err != nil {
		return nil, err
	}
	score, err := parseScore(content)
	if err != nil {
		return nil, fmt.Errorf("parse score from model output: %w", err)
	}
	return score, nil
}

// chat posts the request to /chat/completions with retry and returns the first choice content.
func (c *Client) chat(ctx context.Context, req chatRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("AI_API_KEY not set")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	// Retry with exponential backoff: 1s, 2s, 4s
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * initialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var aerr apiError
			if json.Unmarshal(respBody, &aerr) == nil && aerr.Error.Message != "" {
				lastErr = fmt.Errorf("AI API error (%d): %s", resp.StatusCode, aerr.Error.Message)
			} else {
				lastErr = fmt.Errorf("AI API error (%d): %s", resp.StatusCode, string(respBody))
			}
			// Retry on rate limit (429) or server errors (5xx)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return "", lastErr
		}

		var chatResp chatResponse
		if err := json.Unmarshal(respBody, &chatResp); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		if len(chatResp.Choices) == 0 {
			return "", fmt.Errorf("no choices returned")
		}
		return chatResp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("AI request failed after %d attempts: %w", maxRetries, lastErr)
}

// parseScore extracts the JSON score object from model output, tolerating
// surrounding prose or markdown fences.
func parseScore(content string) (*DocumentScore, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in %q", content)
	}
	var score DocumentScore
	if err := json.Unmarshal([]byte(content[start:end+1]), &score); err != nil {
		return nil, err
	}
	if score.Score < 0 {
		score.Score = 0
	}
	if score.Score > 100 {
		score.Score = 100
	}
	return &score, nil
}
