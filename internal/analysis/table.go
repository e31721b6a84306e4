package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Row is one (Parameter, Value) pair extracted from a single document.
type Row struct {
	Parameter string `json:"parameter"`
	Value     Value  `json:"value"`
}

// Table is the ordered extraction result for one document. Parameter
// names are not required to be unique within a table.
type Table struct {
	Document string `json:"document"`
	Rows     []Row  `json:"rows"`
}

// Entry is one row of the combined, document-tagged table for a session.
type Entry struct {
	Parameter string `json:"parameter"`
	Value     Value  `json:"value"`
	Document  string `json:"document"`
}

// Combine flattens per-document tables into one combined table,
// preserving processing order.
func Combine(tables []Table) []Entry {
	var entries []Entry
	for _, t := range tables {
		for _, r := range t.Rows {
			entries = append(entries, Entry{
				Parameter: r.Parameter,
				Value:     r.Value,
				Document:  t.Document,
			})
		}
	}
	return entries
}

// Documents returns the distinct document labels in first-seen order.
func Documents(entries []Entry) []string {
	var docs []string
	seen := make(map[string]bool)
	for _, e := range entries {
		if !seen[e.Document] {
			seen[e.Document] = true
			docs = append(docs, e.Document)
		}
	}
	return docs
}

// Parameters returns the distinct parameter names in first-seen order.
func Parameters(entries []Entry) []string {
	var params []string
	seen := make(map[string]bool)
	for _, e := range entries {
		if !seen[e.Parameter] {
			seen[e.Parameter] = true
			params = append(params, e.Parameter)
		}
	}
	return params
}

// WriteCSV serializes the combined table with a Parameter,Value,Document
// header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Parameter", "Value", "Document"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Parameter, e.Value.String(), e.Document}); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table previously produced by WriteCSV.
func ReadCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv")
	}
	header := records[0]
	if len(header) != 3 || header[0] != "Parameter" || header[1] != "Value" || header[2] != "Document" {
		return nil, fmt.Errorf("unexpected csv header: %v", header)
	}
	entries := make([]Entry, 0, len(records)-1)
	for _, rec := range records[1:] {
		entries = append(entries, Entry{
			Parameter: rec[0],
			Value:     ParseValue(rec[1]),
			Document:  rec[2],
		})
	}
	return entries, nil
}
