package extraction

import (
	"context"

	"github.com/smathur/findocs/internal/analysis"
)

// Token budgets for the two kinds of model call.
const (
	extractMaxTokens = 300
	queryMaxTokens   = 500
	temperature      = 0.3
)

// Extractor sends a document image to a hosted vision-language model and
// turns the reply into extraction rows.
type Extractor interface {
	// ExtractParameters runs the fixed prompt for the document type
	// against the image. It returns the parsed rows together with the
	// raw model reply; when nothing parses the error is a
	// *NoParametersError carrying that raw text.
	ExtractParameters(ctx context.Context, imageData []byte, contentType string, docType DocumentType) ([]analysis.Row, string, error)

	// Query asks a free-form question about the image and returns the
	// model's answer verbatim.
	Query(ctx context.Context, imageData []byte, contentType string, question string) (string, error)

	// Close releases provider resources.
	Close() error
}
