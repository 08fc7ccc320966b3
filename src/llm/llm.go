package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Config struct {
	APIKey    string
	Model     string
	Providers []string
}

// OpenRouter API structures
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ProviderPreferences struct {
	Order          []string `json:"order,omitempty"`
	Quantizations  []string `json:"quantizations,omitempty"`
	AllowFallbacks *bool    `json:"allow_fallbacks,omitempty"`
}

type ChatRequest struct {
	Model       string               `json:"model"`
	Messages    []Message            `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
	Provider    *ProviderPreferences `json:"provider,omitempty"`
}

type ChatResponse struct {
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

type Choice struct {
	Message ResponseMessage `json:"message"`
}

type ResponseMessage struct {
	Content string `json:"content"`
}

type APIError struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"` // Can be string or number
}

const (
	DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	maxRetries      = 3
	initialDelay    = 1 * time.Second
	noTextMarker    = "NO_TEXT_FOUND"
	ocrPrompt       = "Perform OCR on this image. Return ONLY the raw extracted text with:\n" +
		"- No formatting\n" +
		"- No XML/HTML tags\n" +
		"- No markdown\n" +
		"- No explanations\n" +
		"- Preserve line breaks accurately from the visual layout.\n" +
		"If no text found, return '" + noTextMarker + "'"
)

// ErrNoText is returned when the model reports that the image holds no text.
var ErrNoText = errors.New("no text detected in image")

// Client talks to an OpenRouter compatible chat completions endpoint.
type Client struct {
	cfg      Config
	endpoint string
	http     *http.Client
	delay    time.Duration
}

// New returns a client for cfg using DefaultEndpoint.
func New(cfg Config) *Client {
	return &Client{
		cfg:      cfg,
		endpoint: DefaultEndpoint,
		http:     &http.Client{Timeout: 45 * time.Second},
		delay:    initialDelay,
	}
}

// WithEndpoint returns a copy of c posting to url instead.
func (c *Client) WithEndpoint(url string) *Client {
	cp := *c
	cp.endpoint = url
	return &cp
}

func (c *Client) validate() error {
	if c == nil {
		return fmt.Errorf("LLM client not initialized")
	}
	if c.cfg.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if c.cfg.Model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

// getProviderPreferences returns provider preferences based on config
func (c *Client) getProviderPreferences() *ProviderPreferences {
	if len(c.cfg.Providers) == 0 {
		return nil
	}
	allowFallbacks := false
	return &ProviderPreferences{
		Order:          c.cfg.Providers,
		AllowFallbacks: &allowFallbacks,
	}
}

// Ping sends a tiny text-only request to verify credentials and model.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.validate(); err != nil {
		return err
	}
	request := ChatRequest{
		Model: c.cfg.Model,
		Messages: []Message{{
			Role:    "user",
			Content: []Content{{Type: "text", Text: "ping"}},
		}},
		MaxTokens: 1,
		Provider:  c.getProviderPreferences(),
	}
	_, err := c.makeAPIRequest(ctx, request)
	return err
}

// QueryVision sends a PNG image to the vision model and returns the text it reads.
func (c *Client) QueryVision(ctx context.Context, imageData []byte) (string, error) {
	if err := c.validate(); err != nil {
		return "", err
	}

	imageURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(imageData)
	request := ChatRequest{
		Model: c.cfg.Model,
		Messages: []Message{
			{
				Role: "user",
				Content: []Content{
					{Type: "text", Text: ocrPrompt},
					{Type: "image_url", ImageURL: &ImageURL{URL: imageURL}},
				},
			},
		},
		Temperature: 0.1,
		MaxTokens:   2000,
		Provider:    c.getProviderPreferences(),
	}

	// Retry logic with linear backoff
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(c.delay) * (1.5 * float64(attempt)))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		response, err := c.makeAPIRequest(ctx, request)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			continue
		}

		if len(response.Choices) == 0 {
			lastErr = fmt.Errorf("no choices in API response")
			continue
		}

		extractedText := strings.TrimSpace(response.Choices[0].Message.Content)
		if extractedText == "" || extractedText == noTextMarker {
			return "", ErrNoText
		}
		return cleanExtractedText(extractedText), nil
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) makeAPIRequest(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("X-Title", "imgpaste")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("API error: %s (type: %s, code: %v)", response.Error.Message, response.Error.Type, response.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return &response, nil
}

func cleanExtractedText(text string) string {
	text = strings.TrimSuffix(text, "</image>")
	return strings.TrimSpace(text)
}
