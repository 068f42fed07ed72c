package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"pocketchat/internal/model"
)

// CompletionClient defines the interface for the remote generation service.
// It takes an ordered message history and returns a single generated reply.
type CompletionClient interface {
	Generate(ctx context.Context, history []model.Message) (string, error)
}

// ErrMalformedResponse is returned when the endpoint reports success but the
// body carries no usable candidate text. Callers are expected to catch it
// like any other generation failure.
var ErrMalformedResponse = errors.New("malformed completion response")

// The provider expects the assistant role under a different name.
const roleModel = "model"

// Generation parameters are fixed constants, not user-configurable.
const (
	genTemperature     = 0.7
	genTopK            = 40
	genTopP            = 0.95
	genMaxOutputTokens = 1024
)

type geminiClient struct {
	client *http.Client
	url    string
	apiKey string
}

// NewGeminiClient returns a CompletionClient talking to a Gemini
// generateContent endpoint. The API key is passed as a query parameter on
// each request. No client-side timeout is set; requests rely on
// transport-level give-up and on cancellation of the given context.
func NewGeminiClient(endpoint, apiKey string) CompletionClient {
	return &geminiClient{
		client: &http.Client{},
		url:    endpoint,
		apiKey: apiKey,
	}
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role"`
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []contentPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *geminiClient) Generate(ctx context.Context, history []model.Message) (string, error) {
	reqBody := generateRequest{
		Contents: formatHistory(history),
		GenerationConfig: generationConfig{
			Temperature:     genTemperature,
			TopK:            genTopK,
			TopP:            genTopP,
			MaxOutputTokens: genMaxOutputTokens,
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("could not marshal request: %w", err)
	}

	endpoint := c.url + "?key=" + url.QueryEscape(c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("api returned status %d: %s", resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("api returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidate text", ErrMalformedResponse)
	}
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// formatHistory maps transcript messages to the provider's wire shape.
// Pending placeholders are excluded, the assistant role is relabeled to the
// provider's name for it, and only message text is transmitted. Attachment
// content is not sent to the endpoint.
func formatHistory(history []model.Message) []content {
	contents := make([]content, 0, len(history))
	for _, msg := range history {
		if msg.Pending {
			continue
		}
		role := string(msg.Role)
		if msg.Role == model.RoleAssistant {
			role = roleModel
		}
		contents = append(contents, content{
			Role:  role,
			Parts: []contentPart{{Text: msg.Content}},
		})
	}
	return contents
}
