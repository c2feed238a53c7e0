// Package charts derives chart series from sellout records and renders them
// with go-echarts.
package charts

import (
	"cmp"
	"slices"
	"strconv"

	"sellout-dashboard/internal/models"
)

const (
	// LineWindow bounds how many periods the line charts plot.
	LineWindow = 25
	// TopN is the size of the distribution chart.
	TopN = 10
	// UnknownColorist labels top sellers without a name.
	UnknownColorist = "Unknown"
)

// Provisional multipliers. The upstream does not supply invoice, target,
// return, PSO or direct-invoice figures yet, so these series are derived
// from the sellout measures until it does.
const (
	InvoiceFactor       = 0.8
	TargetFactor        = 1.1
	ReturnFactor        = 0.05
	PSOFactor           = 0.03
	DirectInvoiceFactor = 0.1
)

// Series is one named line or slice set.
type Series struct {
	Name   string    `json:"name"`
	Color  string    `json:"color"`
	Values []float64 `json:"values"`
}

// LineBundle feeds a line chart.
type LineBundle struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// DistributionBundle feeds the top-N donut chart.
type DistributionBundle struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Bundle groups the inputs for all three dashboard charts.
type Bundle struct {
	Daily      LineBundle         `json:"daily"`
	Cumulative LineBundle         `json:"cumulative"`
	Top        DistributionBundle `json:"top"`
}

// Empty reports whether the bundle carries nothing to draw.
func (b Bundle) Empty() bool {
	return len(b.Daily.Labels) == 0 && len(b.Cumulative.Labels) == 0 && len(b.Top.Labels) == 0
}

// Build derives the daily, cumulative and top-N chart inputs from records.
// An empty input yields an empty Bundle.
func Build(records []models.Sellout) Bundle {
	if len(records) == 0 {
		return Bundle{}
	}

	ordered := SortByPeriod(records)
	window := ordered[:min(len(ordered), LineWindow)]
	labels := windowLabels(len(window))

	return Bundle{
		Daily:      LineBundle{Labels: labels, Series: dailySeries(window)},
		Cumulative: LineBundle{Labels: slices.Clone(labels), Series: cumulativeSeries(window)},
		Top:        TopSellers(records, TopN),
	}
}

// SortByPeriod returns a copy of records ordered by year, month and then id.
func SortByPeriod(records []models.Sellout) []models.Sellout {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, comparePeriod)
	return sorted
}

func comparePeriod(a, b models.Sellout) int {
	if c := cmp.Compare(a.Year, b.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Month, b.Month); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func windowLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}
	return labels
}

func dailySeries(window []models.Sellout) []Series {
	total := make([]float64, len(window))
	tt := make([]float64, len(window))
	rm := make([]float64, len(window))
	invoice := make([]float64, len(window))
	target := make([]float64, len(window))

	for i, r := range window {
		total[i] = r.Total()
		tt[i] = r.TT()
		rm[i] = r.RM()
		invoice[i] = r.Total() * InvoiceFactor
		target[i] = r.Total() * TargetFactor
	}

	return []Series{
		{Name: "SO Daily MTD", Color: "#2563eb", Values: total},
		{Name: "SO JT", Color: "#fb923c", Values: tt},
		{Name: "SJ", Color: "#10b981", Values: rm},
		{Name: "Tagihan", Color: "#8b5cf6", Values: invoice},
		{Name: "Target", Color: "#ef4444", Values: target},
	}
}

// cumulativeSeries accumulates in window order; reordering the window
// changes every value after the first moved record.
func cumulativeSeries(window []models.Sellout) []Series {
	var sumTotal, sumTT, sumReturn, sumPSO, sumDirect float64

	total := make([]float64, 0, len(window))
	tt := make([]float64, 0, len(window))
	returns := make([]float64, 0, len(window))
	pso := make([]float64, 0, len(window))
	direct := make([]float64, 0, len(window))

	for _, r := range window {
		sumTotal += r.Total()
		sumTT += r.TT()
		sumReturn += r.RM() * ReturnFactor
		sumPSO += r.Total() * PSOFactor
		sumDirect += r.Total() * DirectInvoiceFactor

		total = append(total, sumTotal)
		tt = append(tt, sumTT)
		returns = append(returns, sumReturn)
		pso = append(pso, sumPSO)
		direct = append(direct, sumDirect)
	}

	return []Series{
		{Name: "SO Last + SO JT", Color: "#38bdf8", Values: total},
		{Name: "Faktur now + Faktur Last", Color: "#22c55e", Values: tt},
		{Name: "Retur", Color: "#f97316", Values: returns},
		{Name: "PSO", Color: "#eab308", Values: pso},
		{Name: "Faktur Langsung", Color: "#ec4899", Values: direct},
	}
}

// TopSellers ranks records with a positive total_sellout, highest first.
// Ties keep their input order.
func TopSellers(records []models.Sellout, n int) DistributionBundle {
	positive := make([]models.Sellout, 0, len(records))
	for _, r := range records {
		if r.Total() > 0 {
			positive = append(positive, r)
		}
	}
	slices.SortStableFunc(positive, func(a, b models.Sellout) int {
		return cmp.Compare(b.Total(), a.Total())
	})
	positive = positive[:min(len(positive), n)]

	out := DistributionBundle{
		Labels: make([]string, len(positive)),
		Values: make([]float64, len(positive)),
	}
	for i, r := range positive {
		out.Labels[i] = r.ColoristName
		if out.Labels[i] == "" {
			out.Labels[i] = UnknownColorist
		}
		out.Values[i] = r.Total()
	}
	return out
}

// DonutColors are assigned to the top-N slices in rank order.
var DonutColors = []string{
	"#2563eb", "#0ea5e9", "#fb923c", "#facc15", "#10b981",
	"#8b5cf6", "#ec4899", "#ef4444", "#22c55e", "#64748b",
}
