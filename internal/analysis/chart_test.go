package analysis_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smathur/findocs/internal/analysis"
)

var _ = Describe("BarChart", func() {
	When("the table is empty", func() {
		It("returns the no-data signal", func() {
			_, err := analysis.BarChart(nil)
			Expect(err).To(MatchError(analysis.ErrNoData))
		})
	})

	When("a single document is present", func() {
		It("renders one bar per parameter", func() {
			chart, err := analysis.BarChart([]analysis.Entry{
				{Parameter: "Total Balance", Value: analysis.Numeric(5000.50), Document: "Default Document"},
				{Parameter: "Net Salary", Value: analysis.Numeric(27000), Document: "Default Document"},
			})
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(chart.Render(&buf)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("Total Balance"))
			Expect(buf.String()).To(ContainSubstring("Net Salary"))
		})
	})

	When("multiple documents are present", func() {
		It("renders one series per document over the common parameters", func() {
			chart, err := analysis.BarChart([]analysis.Entry{
				{Parameter: "Total Balance", Value: analysis.Numeric(100), Document: "a.pdf"},
				{Parameter: "Only In A", Value: analysis.Numeric(1), Document: "a.pdf"},
				{Parameter: "Total Balance", Value: analysis.Numeric(200), Document: "b.pdf"},
			})
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(chart.Render(&buf)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("a.pdf"))
			Expect(buf.String()).To(ContainSubstring("b.pdf"))
			Expect(buf.String()).To(ContainSubstring("Total Balance"))
			Expect(buf.String()).NotTo(ContainSubstring("Only In A"))
		})
	})

	When("documents share no parameters", func() {
		It("returns the no-data signal", func() {
			_, err := analysis.BarChart([]analysis.Entry{
				{Parameter: "X", Value: analysis.Numeric(1), Document: "a.pdf"},
				{Parameter: "Y", Value: analysis.Numeric(2), Document: "b.pdf"},
			})
			Expect(err).To(MatchError(analysis.ErrNoData))
		})
	})
})

var _ = Describe("PieChart", func() {
	When("the table is empty", func() {
		It("returns the no-data signal", func() {
			_, err := analysis.PieChart(nil, "")
			Expect(err).To(MatchError(analysis.ErrNoData))
		})
	})

	When("a single document is present", func() {
		It("renders one slice per parameter", func() {
			chart, err := analysis.PieChart([]analysis.Entry{
				{Parameter: "Basic Salary", Value: analysis.Numeric(30000), Document: "Default Document"},
				{Parameter: "Total Allowances", Value: analysis.Numeric(5000), Document: "Default Document"},
			}, "")
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(chart.Render(&buf)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("Basic Salary"))
			Expect(buf.String()).To(ContainSubstring("Total Allowances"))
		})
	})

	When("multiple documents are present", func() {
		entries := []analysis.Entry{
			{Parameter: "Total Balance", Value: analysis.Numeric(100), Document: "a.pdf"},
			{Parameter: "Total Balance", Value: analysis.Numeric(200), Document: "b.pdf"},
		}

		It("renders one slice per document for the selected parameter", func() {
			chart, err := analysis.PieChart(entries, "Total Balance")
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(chart.Render(&buf)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("a.pdf"))
			Expect(buf.String()).To(ContainSubstring("b.pdf"))
		})

		It("returns the no-data signal for a parameter outside the common set", func() {
			_, err := analysis.PieChart(entries, "Net Salary")
			Expect(err).To(MatchError(analysis.ErrNoData))
		})

		It("returns the no-data signal when no parameter is selected", func() {
			_, err := analysis.PieChart(entries, "")
			Expect(err).To(MatchError(analysis.ErrNoData))
		})
	})
})
