package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	contentTypeHeader = "Content-Type"
	applicationJSON   = "application/json"
	httpClientTimeout = 60 * time.Second

	// emptyPromptReply is returned locally when there is nothing to ask,
	// so a silent turn never burns a model request.
	emptyPromptReply = "I didn't receive any input. How can I help you?"
)

// Gemini API request/response structures.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// Client talks to the Gemini generateContent REST endpoint.
type Client struct {
	model      string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGemini builds a client for the given model. An empty apiKey yields a
// client that reports KindUnavailable without touching the network, which
// keeps the conversation loop alive when no credential is configured.
func NewGemini(model, baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: httpClientTimeout},
		logger:     logger,
	}
}

// Respond sends one user prompt and extracts the reply text. Failures are
// folded into the Reply rather than returned as errors.
func (c *Client) Respond(ctx context.Context, prompt string) Reply {
	if strings.TrimSpace(prompt) == "" {
		return replyOk(emptyPromptReply)
	}
	if c.apiKey == "" {
		return Reply{Kind: KindUnavailable}
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
	})
	if err != nil {
		return Reply{Kind: KindFailed}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Reply{Kind: KindFailed}
	}
	req.Header.Set(contentTypeHeader, applicationJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("model request failed", slog.String("error", err.Error()))
		return Reply{Kind: KindFailed}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("model response unreadable", slog.String("error", err.Error()))
		return Reply{Kind: KindFailed}
	}

	// KindUnavailable is reserved for the missing-credential client; every
	// request-level failure reads as KindFailed.
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("model request rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("model", c.model))
		return Reply{Kind: KindFailed}
	}

	return parseReply(respBody, c.logger)
}

func parseReply(respBody []byte, logger *slog.Logger) Reply {
	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		logger.Warn("model response malformed", slog.String("error", err.Error()))
		return Reply{Kind: KindFailed}
	}

	// A block reason takes precedence over whatever candidates carry.
	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		logger.Warn("prompt blocked by model",
			slog.String("reason", parsed.PromptFeedback.BlockReason))
		return Reply{Kind: KindBlocked, BlockReason: parsed.PromptFeedback.BlockReason}
	}

	if len(parsed.Candidates) == 0 {
		return Reply{Kind: KindEmpty}
	}

	text := candidateText(parsed.Candidates[0])
	if text == "" {
		return Reply{Kind: KindEmpty}
	}
	return replyOk(text)
}

// candidateText joins the non-empty text parts of one candidate.
func candidateText(candidate geminiCandidate) string {
	var parts []string
	for _, part := range candidate.Content.Parts {
		if trimmed := strings.TrimSpace(part.Text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
