package analysis_test

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smathur/findocs/internal/analysis"
)

var _ = Describe("Value", func() {
	It("renders numbers without trailing zeros", func() {
		Expect(analysis.Numeric(5000.50).String()).To(Equal("5000.5"))
		Expect(analysis.Numeric(150).String()).To(Equal("150"))
	})

	It("renders fallback text as-is", func() {
		Expect(analysis.Raw("March 2024").String()).To(Equal("March 2024"))
	})

	It("parses numeric text into a number", func() {
		v := analysis.ParseValue("5000.50")
		n, ok := v.Number()
		Expect(ok).To(BeTrue())
		Expect(n).To(Equal(5000.50))
	})

	It("keeps non-numeric text as a fallback", func() {
		v := analysis.ParseValue("")
		Expect(v.IsNumeric()).To(BeFalse())
	})

	It("marshals numbers as JSON numbers and text as JSON strings", func() {
		data, err := json.Marshal([]analysis.Value{analysis.Numeric(42.5), analysis.Raw("n/a")})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(MatchJSON(`[42.5, "n/a"]`))
	})

	It("round-trips through JSON", func() {
		var values []analysis.Value
		Expect(json.Unmarshal([]byte(`[42.5, "n/a"]`), &values)).To(Succeed())
		Expect(values).To(Equal([]analysis.Value{analysis.Numeric(42.5), analysis.Raw("n/a")}))
	})
})

var _ = Describe("Combine", func() {
	It("preserves processing order and tags rows with their document", func() {
		entries := analysis.Combine([]analysis.Table{
			{Document: "a.pdf", Rows: []analysis.Row{{Parameter: "X", Value: analysis.Numeric(1)}}},
			{Document: "b.pdf", Rows: []analysis.Row{{Parameter: "Y", Value: analysis.Numeric(2)}}},
		})
		Expect(entries).To(Equal([]analysis.Entry{
			{Parameter: "X", Value: analysis.Numeric(1), Document: "a.pdf"},
			{Parameter: "Y", Value: analysis.Numeric(2), Document: "b.pdf"},
		}))
	})
})

var _ = Describe("CSV export", func() {
	var entries []analysis.Entry

	BeforeEach(func() {
		entries = []analysis.Entry{
			{Parameter: "Total Balance", Value: analysis.Numeric(5000.50), Document: "a.pdf"},
			{Parameter: "Cheque Date", Value: analysis.Raw("March 2024"), Document: "a.pdf"},
			{Parameter: "Total Balance", Value: analysis.Numeric(1200), Document: "b.pdf"},
		}
	})

	It("writes a header plus one line per entry", func() {
		var buf bytes.Buffer
		Expect(analysis.WriteCSV(&buf, entries)).To(Succeed())
		Expect(buf.String()).To(HavePrefix("Parameter,Value,Document\n"))
		Expect(bytes.Count(buf.Bytes(), []byte("\n"))).To(Equal(4))
	})

	It("round-trips every row with identical fields", func() {
		var buf bytes.Buffer
		Expect(analysis.WriteCSV(&buf, entries)).To(Succeed())

		parsed, err := analysis.ReadCSV(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed).To(Equal(entries))
	})

	It("rejects input without the expected header", func() {
		_, err := analysis.ReadCSV(bytes.NewBufferString("a,b\n1,2\n"))
		Expect(err).To(HaveOccurred())
	})
})
