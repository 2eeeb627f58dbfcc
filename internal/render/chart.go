package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/coverage.planner/internal/coverage"
	"github.com/banshee-data/coverage.planner/internal/geom"
)

// DefaultAssetsHost serves the echarts javascript.
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

func lineData(pts []geom.Point) []opts.LineData {
	data := make([]opts.LineData, 0, len(pts))
	for _, p := range pts {
		data = append(data, opts.LineData{Value: []interface{}{p.X, p.Y}})
	}
	return data
}

// PathChart builds an interactive chart of the boundary and the path.
func PathChart(title string, boundary geom.Boundary, res *coverage.Result, assetsHost string) *charts.Line {
	if assetsHost == "" {
		assetsHost = DefaultAssetsHost
	}
	subtitle := "no path"
	if res != nil {
		subtitle = fmt.Sprintf("waypoints=%d steps=%d stop=%s", len(res.Path), res.Steps, res.Stop)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "900px", AssetsHost: assetsHost}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "x (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	line.AddSeries("boundary", lineData(closedRing(boundary)),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: "#282828", Width: 2}),
	)
	if res != nil && len(res.Path) > 0 {
		line.AddSeries("path", lineData(res.Path),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "#dc1e1e", Width: 1}),
		)
		line.AddSeries("last position", lineData(res.Path[len(res.Path)-1:]),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true), SymbolSize: 12, Symbol: "diamond"}),
		)
	}
	return line
}

// WriteChart renders the path chart as an HTML page to w.
func WriteChart(w io.Writer, title string, boundary geom.Boundary, res *coverage.Result, assetsHost string) error {
	if err := PathChart(title, boundary, res, assetsHost).Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
