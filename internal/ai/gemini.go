// Package ai drafts commit messages and explains rebase conflicts with Gemini.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/chmouel/worktrees/internal/log"
)

const (
	geminiEndpoint    = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	geminiHTTPTimeout = 60 * time.Second

	// maxDiffBytes bounds the diff embedded in a prompt.
	maxDiffBytes = 60_000
)

// ErrNoAPIKey is returned when no key is configured.
var ErrNoAPIKey = errors.New("gemini API key not found; set it with 'worktrees config --key <KEY>' or the GEMINI_API_KEY environment variable")

// Client is a minimal Gemini REST client.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient returns a client talking to the public Gemini endpoint.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: geminiHTTPTimeout},
		endpoint:   geminiEndpoint,
	}
}

// NewClientWithEndpoint returns a client using httpClient and endpoint (for testing).
func NewClientWithEndpoint(httpClient *http.Client, endpoint string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: geminiHTTPTimeout}
	}
	if endpoint == "" {
		endpoint = geminiEndpoint
	}
	return &Client{httpClient: httpClient, endpoint: endpoint}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// CommitMessage drafts a one-line conventional commit message for diff.
func (c *Client) CommitMessage(ctx context.Context, key, diff, branch string) (string, error) {
	prompt := fmt.Sprintf(`You are an expert developer. Generate a short, concise, professional conventional commit message based on the following git diff and branch name.
Follow the format: <type>(<scope>): <description>
Do not include any conversational filler, markdown blocks, or explanations. Just the message.

Branch: %s

Diff:
%s`, branch, clip(diff))

	msg, err := c.generate(ctx, key, prompt, &generationConfig{
		Temperature:     0.2,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 100,
	})
	if err != nil {
		return "", err
	}
	return strings.Trim(msg, "`\n "), nil
}

// ExplainConflict summarizes what conflicts in diff and how to resolve it.
func (c *Client) ExplainConflict(ctx context.Context, key, diff string) (string, error) {
	prompt := fmt.Sprintf(`You are an expert developer helping with a failed git rebase.
Explain briefly which changes conflict in the following diff and suggest how to resolve them.
Answer in plain text, at most a few short paragraphs.

Diff:
%s`, clip(diff))

	return c.generate(ctx, key, prompt, &generationConfig{
		Temperature:     0.2,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 512,
	})
}

func (c *Client) generate(ctx context.Context, key, prompt string, cfg *generationConfig) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrNoAPIKey
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.endpoint + "?key=" + url.QueryEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("ai: POST %s (%d bytes)", c.endpoint, len(body))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// the error may carry the URL, and with it the key
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", fmt.Errorf("failed to send request to Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse Gemini API response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response text found in Gemini response")
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}

func clip(diff string) string {
	if len(diff) <= maxDiffBytes {
		return diff
	}
	return diff[:maxDiffBytes] + "\n[diff truncated]"
}
