package charts

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// DefaultAssetsHost is where go-echarts loads echarts.min.js from unless
// WithAssetsHost overrides it.
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// Name identifies one of the dashboard charts.
type Name string

const (
	Daily      Name = "daily"
	Cumulative Name = "cumulative"
	Top10      Name = "top10"
)

// Names lists the charts in page order.
var Names = []Name{Daily, Cumulative, Top10}

func ParseName(s string) (Name, bool) {
	switch Name(s) {
	case Daily, Cumulative, Top10:
		return Name(s), true
	default:
		return "", false
	}
}

// Title is the heading shown above the chart.
func (n Name) Title() string {
	switch n {
	case Daily:
		return "Sellout Harian"
	case Cumulative:
		return "Akumulasi Sellout"
	case Top10:
		return "Top 10 Colorist"
	default:
		return string(n)
	}
}

// Renderer draws bundles as standalone go-echarts HTML documents.
type Renderer struct {
	theme      string
	assetsHost string
	cache      RenderCache
}

// RendererOption customizes a Renderer.
type RendererOption func(*Renderer)

// WithTheme sets the echarts theme (defaults to Westeros).
func WithTheme(theme string) RendererOption {
	return func(r *Renderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithAssetsHost rewrites where the echarts script is loaded from.
func WithAssetsHost(host string) RendererOption {
	return func(r *Renderer) {
		r.assetsHost = host
	}
}

// WithCache memoizes rendered output.
func WithCache(cache RenderCache) RendererOption {
	return func(r *Renderer) {
		r.cache = cache
	}
}

func NewRenderer(options ...RendererOption) *Renderer {
	r := &Renderer{theme: types.ThemeWesteros}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// AssetsHost is the host the rendered pages load their scripts from.
func (r *Renderer) AssetsHost() string {
	if r.assetsHost == "" {
		return DefaultAssetsHost
	}
	return r.assetsHost
}

// Render returns the HTML for the named chart. When a cache is configured
// and key is non-empty the result is memoized under key.
func (r *Renderer) Render(key string, name Name, b Bundle) (string, error) {
	renderFn := func() (string, error) {
		return r.render(name, b)
	}
	if r.cache == nil || key == "" {
		return renderFn()
	}
	return r.cache.GetOrRender(fmt.Sprintf("%s:%s", key, name), renderFn)
}

func (r *Renderer) render(name Name, b Bundle) (string, error) {
	switch name {
	case Daily:
		return r.renderLine(name.Title(), b.Daily)
	case Cumulative:
		return r.renderLine(name.Title(), b.Cumulative)
	case Top10:
		return r.renderDonut(name.Title(), b.Top)
	default:
		return "", fmt.Errorf("unsupported chart: %s", name)
	}
}

func (r *Renderer) renderLine(title string, bundle LineBundle) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalOptions(title)...)
	line.SetXAxis(bundle.Labels)
	for _, s := range bundle.Series {
		line.AddSeries(s.Name, toLineData(s.Values),
			charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
		)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return renderChart(line)
}

func (r *Renderer) renderDonut(title string, bundle DistributionBundle) (string, error) {
	pie := charts.NewPie()
	global := append(r.globalOptions(title),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Orient: "vertical", Right: "0"}),
	)
	pie.SetGlobalOptions(global...)
	pie.AddSeries("Total Sellout", toPieData(bundle),
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"45%", "70%"}}),
	)
	return renderChart(pie)
}

func (r *Renderer) globalOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		PageTitle: title,
		Theme:     r.theme,
		Width:     "100%",
		Height:    defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toLineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}

func toPieData(bundle DistributionBundle) []opts.PieData {
	data := make([]opts.PieData, len(bundle.Values))
	for i, v := range bundle.Values {
		data[i] = opts.PieData{
			Name:      bundle.Labels[i],
			Value:     v,
			ItemStyle: &opts.ItemStyle{Color: DonutColors[i%len(DonutColors)]},
		}
	}
	return data
}
