package insights

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
)

const (
	chartWidth  = 1024
	chartHeight = 512
)

// ErrNotChartable means the rows cannot be drawn as the plan asked.
var ErrNotChartable = errors.New("result cannot be charted")

type point struct {
	label string
	value float64
}

func points(plan Plan, res Result) ([]point, error) {
	if !hasColumn(res.Columns, plan.X) || !hasColumn(res.Columns, plan.Y) {
		return nil, ErrNotChartable
	}
	out := make([]point, 0, len(res.Rows))
	for _, row := range res.Rows {
		v, ok := toFloat(row[plan.Y])
		if !ok {
			return nil, ErrNotChartable
		}
		out = append(out, point{label: fmt.Sprint(row[plan.X]), value: v})
	}
	if len(out) == 0 {
		return nil, ErrNotChartable
	}
	if plan.Chart == ChartPie {
		total := 0.0
		for _, p := range out {
			if p.value < 0 {
				return nil, ErrNotChartable
			}
			total += p.value
		}
		if total == 0 {
			return nil, ErrNotChartable
		}
	}
	return out, nil
}

// yRange always includes zero and is never empty.
func yRange(pts []point) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, p := range pts {
		lo = min(lo, p.value)
		hi = max(hi, p.value)
	}
	if hi == lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// Render draws res as a PNG according to plan.
func Render(plan Plan, res Result) ([]byte, error) {
	pts, err := points(plan, res)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch plan.Chart {
	case ChartPie:
		err = renderPie(&buf, plan.Title, pts)
	case ChartLine:
		if len(pts) < 2 {
			err = renderBar(&buf, plan.Title, pts)
		} else {
			err = renderLine(&buf, plan, pts)
		}
	default:
		err = renderBar(&buf, plan.Title, pts)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s chart: %w", plan.Chart, err)
	}
	return buf.Bytes(), nil
}

func values(pts []point) []chart.Value {
	vals := make([]chart.Value, len(pts))
	for i, p := range pts {
		vals[i] = chart.Value{Label: p.label, Value: p.value}
	}
	return vals
}

func renderBar(buf *bytes.Buffer, title string, pts []point) error {
	graph := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth(len(pts)),
		YAxis:      chart.YAxis{Range: yRange(pts)},
		Bars:       values(pts),
	}
	return graph.Render(chart.PNG, buf)
}

func barWidth(n int) int {
	w := (chartWidth - 100) / (n + 1)
	switch {
	case w > 80:
		return 80
	case w < 4:
		return 4
	}
	return w
}

func renderPie(buf *bytes.Buffer, title string, pts []point) error {
	graph := chart.PieChart{
		Title:  title,
		Width:  chartHeight,
		Height: chartHeight,
		Values: values(pts),
	}
	return graph.Render(chart.PNG, buf)
}

func renderLine(buf *bytes.Buffer, plan Plan, pts []point) error {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	ticks := make([]chart.Tick, len(pts))
	for i, p := range pts {
		xs[i] = float64(i)
		ys[i] = p.value
		ticks[i] = chart.Tick{Value: float64(i), Label: p.label}
	}

	graph := chart.Chart{
		Title:  plan.Title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Name: plan.X, Ticks: ticks},
		YAxis:  chart.YAxis{Name: plan.Y, Range: yRange(pts)},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: plan.Y, XValues: xs, YValues: ys},
		},
	}
	return graph.Render(chart.PNG, buf)
}

func hasColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case decimal.Decimal:
		f, _ := t.Float64()
		return f, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}
