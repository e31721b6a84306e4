package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/smathur/findocs/internal/analysis"
)

// NoParametersError reports that a model reply contained no parseable
// "Label: value" lines. It carries the raw reply so callers can show the
// model output to the user instead of an empty table.
type NoParametersError struct {
	Raw string
}

func (e *NoParametersError) Error() string {
	return fmt.Sprintf("no parameters found in text: %s", e.Raw)
}

// valueCleanRe matches every character that is not a digit, comma,
// hyphen, or period.
var valueCleanRe = regexp.MustCompile(`[^\d,\-.]`)

// ParseParameters extracts (label, value) rows from the model's
// free-text reply. The reply is nominally five "Label: value" lines but
// the parser is deliberately permissive: lines without a colon are
// skipped, markdown emphasis is stripped from labels, and values that do
// not clean up into a number are kept as text.
func ParseParameters(text string) ([]analysis.Row, error) {
	body := stripCodeFence(text)

	var rows []analysis.Row
	for _, line := range strings.Split(body, "\n") {
		label, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		label = strings.Trim(strings.TrimSpace(label), "*")

		cleaned := valueCleanRe.ReplaceAllString(strings.TrimSpace(value), "")
		cleaned = strings.ReplaceAll(cleaned, ",", "")

		rows = append(rows, analysis.Row{
			Parameter: label,
			Value:     analysis.ParseValue(cleaned),
		})
	}

	if len(rows) == 0 {
		return nil, &NoParametersError{Raw: text}
	}
	return rows, nil
}

var codeFenceRe = regexp.MustCompile("(?s)^```(?:[a-z]*)?\\s*(.*?)\\s*```$")

// stripCodeFence removes a markdown code fence wrapping the whole reply,
// which some models emit despite the prompt.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}
