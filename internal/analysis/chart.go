package analysis

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ErrNoData is returned instead of a chart when there is nothing to
// draw: an empty table, no common parameters, or a requested parameter
// with no rows. Callers show a warning rather than an empty chart.
var ErrNoData = errors.New("no data available for visualization")

// Chart is a renderable chart page.
type Chart interface {
	Render(w io.Writer) error
}

// documentPalette assigns one explicit color per document series.
var documentPalette = []string{
	"#5470c6", "#91cc75", "#fac858", "#ee6666", "#73c0de",
	"#3ba272", "#fc8452", "#9a60b4", "#ea7ccc",
}

const chartHeight = "500px"

func chartValue(v Value) float64 {
	n, _ := v.Number()
	return n
}

// BarChart builds a bar chart over the parameters common to all
// documents: one bar per parameter for a single document, grouped bars
// (one series per document, color-coded) otherwise.
func BarChart(entries []Entry) (Chart, error) {
	if len(entries) == 0 {
		return nil, ErrNoData
	}
	comp := Compare(entries)
	if len(comp.CommonParameters) == 0 {
		return nil, ErrNoData
	}
	docs := Documents(comp.Entries)

	bar := charts.NewBar()
	title := "Financial Parameters Analysis"
	if len(docs) > 1 {
		title = "Comparative Parameters Analysis (Common Parameters)"
	}
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Height: chartHeight}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"}}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(docs) > 1)}),
	)
	bar.SetXAxis(comp.CommonParameters)

	for i, doc := range docs {
		values := make([]opts.BarData, 0, len(comp.CommonParameters))
		for _, p := range comp.CommonParameters {
			values = append(values, opts.BarData{Value: chartValue(PivotFirst(comp.Entries, p)[doc])})
		}
		bar.AddSeries(doc, values,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: documentPalette[i%len(documentPalette)]}),
		)
	}
	return bar, nil
}

// PieChart builds a donut chart. For a single document each common
// parameter becomes a slice of the total. For multiple documents the
// caller names one parameter and each document becomes a slice of that
// parameter's value.
func PieChart(entries []Entry, parameter string) (Chart, error) {
	if len(entries) == 0 {
		return nil, ErrNoData
	}
	comp := Compare(entries)
	if len(comp.CommonParameters) == 0 {
		return nil, ErrNoData
	}
	docs := Documents(comp.Entries)

	var title string
	var data []opts.PieData

	if len(docs) == 1 {
		title = "Proportion of Financial Parameters"
		for _, p := range comp.CommonParameters {
			data = append(data, opts.PieData{Name: p, Value: chartValue(PivotFirst(comp.Entries, p)[docs[0]])})
		}
	} else {
		if parameter == "" {
			return nil, fmt.Errorf("a parameter is required to compare documents: %w", ErrNoData)
		}
		values := PivotFirst(comp.Entries, parameter)
		if len(values) == 0 {
			return nil, ErrNoData
		}
		title = fmt.Sprintf("Proportion of %s", parameter)
		for _, d := range docs {
			if v, ok := values[d]; ok {
				data = append(data, opts.PieData{Name: d, Value: chartValue(v)})
			}
		}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Height: chartHeight}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("documents", data).SetSeriesOptions(
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"30%", "60%"}}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
	)
	return pie, nil
}
