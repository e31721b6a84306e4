package document

import (
	"time"

	"github.com/smathur/findocs/internal/analysis"
)

// DefaultDocumentLabel tags the table when a session holds exactly one
// document.
const DefaultDocumentLabel = "Default Document"

// StoredImage is the raw upload kept on disk for follow-up questions and
// ZIP export. For PDFs this is the original file; rasterization happens
// again at query time.
type StoredImage struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
}

// Session accumulates the extraction results of one interactive session.
// Tables, images, warnings, and errors all reset together; nothing
// survives an explicit reset.
type Session struct {
	ID        string           `json:"id"`
	Tables    []analysis.Table `json:"tables"`
	Images    []StoredImage    `json:"images"`
	Warnings  []string         `json:"warnings,omitempty"`
	Errors    []string         `json:"errors,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Combined flattens the session's tables into one document-tagged table.
// A session with a single document reports it under the constant
// placeholder label instead of the filename.
func (s *Session) Combined() []analysis.Entry {
	if len(s.Tables) == 1 {
		t := s.Tables[0]
		t.Document = DefaultDocumentLabel
		return analysis.Combine([]analysis.Table{t})
	}
	return analysis.Combine(s.Tables)
}
