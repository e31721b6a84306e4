package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/smathur/findocs/internal/analysis"
)

const defaultTogetherModel = "meta-llama/Llama-3.2-11B-Vision-Instruct-Turbo"

// Together implements the Extractor interface against the Together AI
// chat completions API (OpenAI-compatible).
type Together struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewTogether creates a new Together Extractor instance.
func NewTogether(apiKey string, modelName string) (*Together, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("together api key is required")
	}
	if modelName == "" {
		modelName = defaultTogetherModel
	}

	return &Together{
		baseURL: "https://api.together.xyz",
		apiKey:  apiKey,
		model:   modelName,
		// Model calls block the interaction until the API answers;
		// cancellation comes from the request context only.
		client: &http.Client{},
	}, nil
}

// NewTogetherWithBaseURL creates a Together instance against a custom
// endpoint, used by tests and OpenAI-compatible proxies.
func NewTogetherWithBaseURL(baseURL, apiKey, modelName string) (*Together, error) {
	t, err := NewTogether(apiKey, modelName)
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		t.baseURL = baseURL
	}
	return t, nil
}

type togetherImageURL struct {
	URL string `json:"url"`
}

type togetherContentPart struct {
	Type     string            `json:"type"`
	Text     string            `json:"text,omitempty"`
	ImageURL *togetherImageURL `json:"image_url,omitempty"`
}

type togetherMessage struct {
	Role    string                `json:"role"`
	Content []togetherContentPart `json:"content"`
}

type togetherChatRequest struct {
	Model       string            `json:"model"`
	Messages    []togetherMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature"`
}

type togetherChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// complete sends one text+image message and returns the completion text.
func (t *Together) complete(ctx context.Context, prompt string, imageData []byte, contentType string, maxTokens int) (string, error) {
	jpegData, err := prepareImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	encoded := base64.StdEncoding.EncodeToString(jpegData)
	reqBody := togetherChatRequest{
		Model:       t.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []togetherMessage{
			{
				Role: "user",
				Content: []togetherContentPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &togetherImageURL{
						URL: "data:image/jpeg;base64," + encoded,
					}},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", t.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling together API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return "", fmt.Errorf("together API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp togetherChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("together error: %s: %s", chatResp.Error.Type, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from together")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// ExtractParameters runs the fixed prompt for the document type and
// parses the reply into rows.
func (t *Together) ExtractParameters(ctx context.Context, imageData []byte, contentType string, docType DocumentType) ([]analysis.Row, string, error) {
	text, err := t.complete(ctx, docType.Prompt(), imageData, contentType, extractMaxTokens)
	if err != nil {
		return nil, "", fmt.Errorf("extracting parameters: %w", err)
	}

	rows, err := ParseParameters(text)
	if err != nil {
		return nil, text, err
	}
	return rows, text, nil
}

// Query asks a free-form question about the image.
func (t *Together) Query(ctx context.Context, imageData []byte, contentType string, question string) (string, error) {
	answer, err := t.complete(ctx, question, imageData, contentType, queryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("querying document: %w", err)
	}
	return answer, nil
}

// Close closes the Together client (no-op for HTTP client).
func (t *Together) Close() error {
	return nil
}
