package document

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smathur/findocs/internal/analysis"
	"github.com/smathur/findocs/internal/extraction"
)

// corsError writes an error response with CORS headers set.
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error body with CORS headers set.
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// setCORSHeaders sets CORS headers on a response.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleIndex serves the HTML interface.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleListDocumentTypes returns the supported document type names.
func (s *Server) handleListDocumentTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, extraction.DocumentTypes())
}

// handleCreateSession starts a new session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.CreateSession()
	if err != nil {
		slog.Error("Error creating session", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// handleGetSession returns a session's accumulated state.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.PathValue("id"))
	if err != nil {
		corsError(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleResetSession discards all accumulated session data but keeps the
// session itself usable.
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	if _, err := s.service.ResetSession(r.PathValue("id")); err != nil {
		corsError(w, "Session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteSession removes the session and its stored files entirely.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteSession(r.PathValue("id")); err != nil {
		corsError(w, "Session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fetchRequest is the JSON body for upload-by-URL.
type fetchRequest struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// handleUploadDocuments accepts either a multipart form with one or more
// files and a `type` field, or a JSON body naming a URL to fetch. Files
// are processed one at a time; per-file failures are recorded on the
// session and do not abort the batch.
func (s *Server) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		s.handleFetchDocument(w, r, sessionID)
		return
	}

	maxFormSize := int64(50 << 20) // 50MB
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			errorMsg = "File is too large. Maximum size is 50MB."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	docType, err := extraction.ParseDocumentType(r.FormValue("type"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "No files were selected. Please choose at least one file to upload.", http.StatusBadRequest)
		return
	}

	var session *Session
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			slog.Error("Error opening uploaded file", "filename", header.Filename, "error", err)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			slog.Error("Error reading file data", "filename", header.Filename, "error", err)
			continue
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = contentTypeFromExt(header.Filename)
		}
		contentType = strings.ToLower(strings.TrimSpace(contentType))

		session, err = s.service.ProcessDocument(r.Context(), sessionID, header.Filename, data, contentType, docType)
		if err != nil {
			slog.Error("Error processing document", "filename", header.Filename, "error", err)
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if session == nil {
		jsonError(w, "None of the uploaded files could be read.", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// handleFetchDocument processes a document downloaded from a URL.
func (s *Server) handleFetchDocument(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	docType, err := extraction.ParseDocumentType(req.Type)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := s.service.FetchDocument(r.Context(), sessionID, req.URL, docType)
	if err != nil {
		slog.Error("Error fetching document", "url", req.URL, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// contentTypeFromExt guesses a MIME type from the filename extension.
func contentTypeFromExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleCombinedTable returns the session's combined table.
func (s *Server) handleCombinedTable(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.CombinedTable(r.PathValue("id"))
	if err != nil {
		corsError(w, "Session not found", http.StatusNotFound)
		return
	}
	if entries == nil {
		entries = []analysis.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleCommonParameters returns the parameters common to all documents
// in the session.
func (s *Server) handleCommonParameters(w http.ResponseWriter, r *http.Request) {
	params, err := s.service.CommonParameters(r.PathValue("id"))
	if err != nil {
		corsError(w, "Session not found", http.StatusNotFound)
		return
	}
	if params == nil {
		params = []string{}
	}
	writeJSON(w, http.StatusOK, params)
}

// renderChart writes a chart page, mapping the no-data sentinel to a 404
// JSON warning rather than an empty chart.
func renderChart(w http.ResponseWriter, chart analysis.Chart, err error) {
	if err != nil {
		if errors.Is(err, analysis.ErrNoData) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		slog.Error("Error building chart", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.Render(w); err != nil {
		slog.Error("Error rendering chart", "error", err)
	}
}

// handleBarChart renders the bar chart for the session's common
// parameters.
func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.CombinedTable(r.PathValue("id"))
	if err != nil {
		corsError(w, "Session not found", http.StatusNotFound)
		return
	}
	chart, err := analysis.BarChart(entries)
	renderChart(w, chart, err)
}

// handlePieChart renders the pie chart; with multiple documents the
// `parameter` query argument picks the slice source.
func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.CombinedTable(r.PathValue("id"))
	if err != nil {
		corsError(w, "Session not found", http.StatusNotFound)
		return
	}
	chart, err := analysis.PieChart(entries, r.URL.Query().Get("parameter"))
	renderChart(w, chart, err)
}

// handleExportCSV downloads the combined table as CSV.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportCSV(r.PathValue("id"))
	if err != nil {
		corsError(w, "Session not found", http.StatusNotFound)
		return
	}
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="parameters.csv"`)
	w.Write(data)
}

// handleExportZIP downloads the session's raw images as a ZIP archive.
func (s *Server) handleExportZIP(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportImagesZIP(r.PathValue("id"))
	if err != nil {
		corsError(w, "No images to export", http.StatusNotFound)
		return
	}
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="images.zip"`)
	w.Write(data)
}

// queryRequest is the JSON body for a free-form document question.
type queryRequest struct {
	Document int    `json:"document"`
	Question string `json:"question"`
}

// handleQueryDocument answers a free-text question about one of the
// session's documents.
func (s *Server) handleQueryDocument(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		jsonError(w, "A question is required", http.StatusBadRequest)
		return
	}

	answer, err := s.service.QueryDocument(r.Context(), r.PathValue("id"), req.Document, req.Question)
	if err != nil {
		slog.Error("Error processing query", "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"answer": answer,
		"index":  strconv.Itoa(req.Document),
	})
}
