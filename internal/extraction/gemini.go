package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/smathur/findocs/internal/analysis"
)

// Gemini implements the Extractor interface using Google Gemini.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Extractor instance.
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

// complete sends the prompt plus image and returns the text reply.
func (g *Gemini) complete(ctx context.Context, prompt string, imageData []byte, contentType string, maxTokens int32) (string, error) {
	jpegData, err := prepareImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	g.model.SetMaxOutputTokens(maxTokens)

	parts := []genai.Part{
		genai.ImageData("jpeg", jpegData),
		genai.Text(prompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	return responseText.String(), nil
}

// ExtractParameters runs the fixed prompt for the document type and
// parses the reply into rows.
func (g *Gemini) ExtractParameters(ctx context.Context, imageData []byte, contentType string, docType DocumentType) ([]analysis.Row, string, error) {
	text, err := g.complete(ctx, docType.Prompt(), imageData, contentType, extractMaxTokens)
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
func (g *Gemini) Query(ctx context.Context, imageData []byte, contentType string, question string) (string, error) {
	answer, err := g.complete(ctx, question, imageData, contentType, queryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("querying document: %w", err)
	}
	return answer, nil
}

// Close closes the Gemini client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
