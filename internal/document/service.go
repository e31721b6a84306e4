package document

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/smathur/findocs/internal/analysis"
	"github.com/smathur/findocs/internal/extraction"
)

// IDGenerator generates unique IDs for sessions and stored files.
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time.
type TimeSource interface {
	Now() time.Time
}

type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service orchestrates sessions: it stores uploads, runs extraction,
// accumulates per-document tables, and produces the derived views
// (combined table, common parameters, charts, exports).
type Service struct {
	db          DB
	extractor   extraction.Extractor
	storage     Storage
	fetcher     *Fetcher
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source.
func NewService(db DB, extractor extraction.Extractor, storage Storage) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		storage:     storage,
		fetcher:     NewFetcher(),
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing.
func NewServiceWithDeps(db DB, extractor extraction.Extractor, storage Storage, fetcher *Fetcher, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		storage:     storage,
		fetcher:     fetcher,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters
// and truncating length.
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")

	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	if base == "" {
		base = "document"
	}

	return base + ext
}

// CreateSession starts a new empty session.
func (s *Service) CreateSession() (*Session, error) {
	now := s.timeSource.Now()
	session := &Session{
		ID:        s.idGenerator.Generate(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.SaveSession(session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return session, nil
}

// GetSession retrieves a session by ID.
func (s *Service) GetSession(id string) (*Session, error) {
	session, err := s.db.GetSession(id)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return session, nil
}

// ProcessDocument stores one uploaded document, runs extraction against
// it, and appends the resulting table to the session. Failures degrade:
// a model error or an unparseable reply is recorded on the session and
// the session stays usable for further documents.
func (s *Service) ProcessDocument(ctx context.Context, sessionID, filename string, data []byte, contentType string, docType extraction.DocumentType) (*Session, error) {
	session, err := s.db.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	id := s.idGenerator.Generate()
	cleanFilename := sanitizeFilename(filename)

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, cleanFilename), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	rows, raw, err := s.extractor.ExtractParameters(ctx, data, contentType, docType)
	now := s.timeSource.Now()
	session.UpdatedAt = now

	var noParams *extraction.NoParametersError
	switch {
	case errors.As(err, &noParams):
		// Not an error condition: the raw reply is surfaced to the
		// user in place of a table. The image stays available for
		// follow-up questions.
		slog.Warn("No parameters found in model reply",
			"filename", filename,
			"document_type", docType.String(),
		)
		session.Warnings = append(session.Warnings, fmt.Sprintf("No parameters found for %s. Model reply: %s", filename, raw))
		session.Images = append(session.Images, StoredImage{
			Name:        cleanFilename,
			Path:        savedPath,
			ContentType: contentType,
		})
	case err != nil:
		slog.Error("Failed to extract parameters",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		if delErr := s.storage.Delete(savedPath); delErr != nil {
			slog.Warn("Failed to delete file", "filename", savedPath, "error", delErr)
		}
		session.Errors = append(session.Errors, fmt.Sprintf("Error processing %s: %v", filename, err))
	default:
		session.Tables = append(session.Tables, analysis.Table{
			Document: filename,
			Rows:     rows,
		})
		session.Images = append(session.Images, StoredImage{
			Name:        cleanFilename,
			Path:        savedPath,
			ContentType: contentType,
		})
	}

	if err := s.db.SaveSession(session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return session, nil
}

// FetchDocument downloads an image by URL and processes it like an
// upload. The filename is taken from the URL path.
func (s *Service) FetchDocument(ctx context.Context, sessionID, url string, docType extraction.DocumentType) (*Session, error) {
	data, contentType, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching document: %w", err)
	}

	filename := filepath.Base(url)
	if filename == "." || filename == "/" {
		filename = "document"
	}
	return s.ProcessDocument(ctx, sessionID, filename, data, contentType, docType)
}

// CombinedTable returns the session's accumulated table across all
// processed documents.
func (s *Service) CombinedTable(sessionID string) ([]analysis.Entry, error) {
	session, err := s.db.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return session.Combined(), nil
}

// CommonParameters returns the parameters present in every document of
// the session.
func (s *Service) CommonParameters(sessionID string) ([]string, error) {
	entries, err := s.CombinedTable(sessionID)
	if err != nil {
		return nil, err
	}
	return analysis.Compare(entries).CommonParameters, nil
}

// QueryDocument asks a free-form question about one of the session's
// stored images, addressed by upload order.
func (s *Service) QueryDocument(ctx context.Context, sessionID string, index int, question string) (string, error) {
	session, err := s.db.GetSession(sessionID)
	if err != nil {
		return "", fmt.Errorf("getting session: %w", err)
	}
	if index < 0 || index >= len(session.Images) {
		return "", fmt.Errorf("no document at index %d", index)
	}

	img := session.Images[index]
	data, err := s.storage.Get(img.Path)
	if err != nil {
		return "", fmt.Errorf("getting document image: %w", err)
	}

	answer, err := s.extractor.Query(ctx, data, img.ContentType, question)
	if err != nil {
		return "", fmt.Errorf("querying document: %w", err)
	}
	return answer, nil
}

// ExportCSV serializes the session's combined table as CSV with
// Parameter, Value, Document columns.
func (s *Service) ExportCSV(sessionID string) ([]byte, error) {
	entries, err := s.CombinedTable(sessionID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := analysis.WriteCSV(&buf, entries); err != nil {
		return nil, fmt.Errorf("exporting csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportImagesZIP bundles the session's raw images into a ZIP archive.
func (s *Service) ExportImagesZIP(sessionID string) ([]byte, error) {
	session, err := s.db.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	if len(session.Images) == 0 {
		return nil, fmt.Errorf("no images in session %s", sessionID)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, img := range session.Images {
		data, err := s.storage.Get(img.Path)
		if err != nil {
			return nil, fmt.Errorf("getting image %s: %w", img.Name, err)
		}
		f, err := zw.Create(img.Name)
		if err != nil {
			return nil, fmt.Errorf("adding %s to zip: %w", img.Name, err)
		}
		if _, err := f.Write(data); err != nil {
			return nil, fmt.Errorf("writing %s to zip: %w", img.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing zip: %w", err)
	}
	return buf.Bytes(), nil
}

// DeleteSession removes a session entirely: its stored image files and
// the session record itself.
func (s *Service) DeleteSession(sessionID string) error {
	session, err := s.db.GetSession(sessionID)
	if err != nil {
		return fmt.Errorf("getting session: %w", err)
	}

	for _, img := range session.Images {
		if err := s.storage.Delete(img.Path); err != nil {
			slog.Warn("Failed to delete file", "filename", img.Path, "error", err)
		}
	}

	if err := s.db.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// ResetSession discards all of a session's accumulated state: tables,
// warnings, errors, and the stored image files.
func (s *Service) ResetSession(sessionID string) (*Session, error) {
	session, err := s.db.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	for _, img := range session.Images {
		if err := s.storage.Delete(img.Path); err != nil {
			slog.Warn("Failed to delete file", "filename", img.Path, "error", err)
		}
	}

	session.Tables = nil
	session.Images = nil
	session.Warnings = nil
	session.Errors = nil
	session.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveSession(session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return session, nil
}
