// Package vision extracts structured product listings from catalog images via
// a vision-capable chat-completions API.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Scanner failure modes, all surfaced to the caller as external service errors.
var (
	ErrMissingAPIKey       = errors.New("vision model API key is not configured")
	ErrEmptyResponse       = errors.New("vision model returned an empty response")
	ErrMalformedResponse   = errors.New("vision model response contains no JSON object")
	ErrInvalidProductShape = errors.New("vision model response does not match the product list schema")
)

// ScannedProduct is one product row extracted from a catalog image.
type ScannedProduct struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Specifications string `json:"specifications"`
	SKU            string `json:"sku"`
	Price          string `json:"price"`
	Category       string `json:"category"`
}

// scanPrompt instructs the model to answer with a single JSON object.
const scanPrompt = `You are reading a page from a medical supplies catalog. ` +
	`Extract every distinct product on the page and respond with exactly one JSON object of the form ` +
	`{"products":[{"name":"...","description":"...","specifications":"...","sku":"...","price":"...","category":"..."}]}. ` +
	`Use empty strings for fields that are not visible. Respond with the JSON object only.`

// Client calls the vision model API.
type Client struct {
	APIKey     string       // Provider API key
	BaseURL    string       // Provider API base URL
	Model      string       // Model name
	HTTPClient *http.Client // Underlying HTTP client
}

// New builds a Client with a timeout suited to vision inference.
func New(apiKey, baseURL, model string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Model:      model,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// chat-completions request/response shapes, reduced to the fields used here.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ScanCatalogImage sends the image to the model and returns the validated
// product list. Single attempt, no retries.
func (c *Client) ScanCatalogImage(ctx context.Context, imgURL string) ([]ScannedProduct, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: scanPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: imgURL}},
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode scan request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build scan request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision model request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("vision model returned status %d: %s", resp.StatusCode, string(snippet))
	}
	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode vision model response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyResponse
	}
	return ExtractProducts(parsed.Choices[0].Message.Content)
}

// jsonObjectRe matches the first top-level {...} block in the model output.
// Models often wrap the object in prose or a code fence.
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractProducts pulls the JSON object out of the raw model content, parses
// it and validates the shape before anything is returned. A response with no
// object, a products key of the wrong type, or a product without a name is
// rejected wholesale; there are no partial results.
func ExtractProducts(content string) ([]ScannedProduct, error) {
	block := jsonObjectRe.FindString(content)
	if block == "" {
		return nil, ErrMalformedResponse
	}
	var payload struct {
		Products []ScannedProduct `json:"products"`
	}
	dec := json.NewDecoder(strings.NewReader(block))
	dec.DisallowUnknownFields() // Schema check: only the agreed shape is accepted
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProductShape, err)
	}
	if payload.Products == nil {
		return nil, ErrInvalidProductShape
	}
	for _, p := range payload.Products {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("%w: product with empty name", ErrInvalidProductShape)
		}
	}
	return payload.Products, nil
}
