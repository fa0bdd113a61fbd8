// Package charts renders the dashboard graphs as PNG images.
package charts

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/victordebonilla/Guardian-domestico/internal/ledger"
	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// Generator builds the dashboard charts. A method returns nil bytes and no
// error when there is nothing to draw.
type Generator struct{}

// NewGenerator creates a chart generator.
func NewGenerator() *Generator {
	return &Generator{}
}

var (
	colorIncome  = chart.ColorGreen
	colorExpense = chart.ColorRed
	colorBalance = chart.ColorBlue
	colorNeutral = drawing.ColorFromHex("7f8c8d")
)

func defaultBackground() chart.Style {
	return chart.Style{
		Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
		FillColor: chart.ColorWhite,
	}
}

func axisStyle() chart.Style {
	return chart.Style{FontSize: 12, FontColor: chart.ColorBlack}
}

func moneyFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("$%.0f", f)
	}
	return ""
}

func percentFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f%%", f)
	}
	return ""
}

// valueRange always includes zero and never collapses to a single value.
func valueRange(values ...float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.1
	if lo < 0 {
		lo -= pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + pad}
}

func render(r interface {
	Render(chart.RendererProvider, io.Writer) error
}, name string) ([]byte, error) {
	buffer := bytes.NewBuffer([]byte{})
	if err := r.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buffer.Bytes(), nil
}

// AccountBalances draws the current balance of every account.
func (g *Generator) AccountBalances(balances []ledger.AccountBalance) ([]byte, error) {
	if len(balances) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(balances))
	values := make([]float64, 0, len(balances))
	for _, b := range balances {
		v := b.CurrentBalance.InexactFloat64()
		color := colorBalance
		if v < 0 {
			color = colorExpense
		}
		bars = append(bars, chart.Value{
			Label: b.Name,
			Value: v,
			Style: chart.Style{StrokeColor: color, FillColor: color},
		})
		values = append(values, v)
	}

	graph := chart.BarChart{
		Title:        "Saldo actual por cuenta",
		TitleStyle:   axisStyle(),
		Width:        1000,
		Height:       600,
		BarWidth:     60,
		Background:   defaultBackground(),
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			ValueFormatter: moneyFormatter,
			Style:          axisStyle(),
			Range:          valueRange(values...),
		},
		Bars: bars,
	}
	return render(graph, "account balances")
}

// CategoryUsage draws spend against cap for every capped category.
func (g *Generator) CategoryUsage(usage []ledger.CategoryUsage) ([]byte, error) {
	if len(usage) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(usage))
	values := []float64{100}
	for _, u := range usage {
		v := u.Percent.InexactFloat64()
		color := colorIncome
		if u.Exceeded {
			color = colorExpense
		}
		bars = append(bars, chart.Value{
			Label: u.Category,
			Value: v,
			Style: chart.Style{StrokeColor: color, FillColor: color},
		})
		values = append(values, v)
	}

	graph := chart.BarChart{
		Title:      "Uso del presupuesto por categoría",
		TitleStyle: axisStyle(),
		Width:      1000,
		Height:     600,
		BarWidth:   60,
		Background: defaultBackground(),
		YAxis: chart.YAxis{
			ValueFormatter: percentFormatter,
			Style:          axisStyle(),
			Range:          valueRange(values...),
		},
		Bars: bars,
	}
	return render(graph, "category usage")
}

// Distribution draws a pie of category totals. Slices under 1% are left out.
func (g *Generator) Distribution(title string, totals []ledger.CategoryTotal) ([]byte, error) {
	total := 0.0
	for _, c := range totals {
		total += c.Amount.InexactFloat64()
	}
	if total <= 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(totals))
	for _, c := range totals {
		amount := c.Amount.InexactFloat64()
		percentage := amount / total * 100
		if percentage <= 1.0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: $%.0f (%.1f%%)", c.Category, amount, percentage),
			Value: amount,
			Style: axisStyle(),
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Title:      title,
		Width:      800,
		Height:     800,
		Values:     values,
		Background: defaultBackground(),
	}
	return render(pie, "distribution")
}

// CashFlow draws daily income and expense with the running balance and a
// seven day expense trend.
func (g *Generator) CashFlow(flow []ledger.DailyFlow) ([]byte, error) {
	if len(flow) < 2 {
		return nil, nil
	}

	xValues := make([]time.Time, len(flow))
	income := make([]float64, len(flow))
	expense := make([]float64, len(flow))
	cumulative := make([]float64, len(flow))
	for i, f := range flow {
		xValues[i] = f.Date
		income[i] = f.Income.InexactFloat64()
		expense[i] = f.Expense.InexactFloat64()
		cumulative[i] = f.Cumulative.InexactFloat64()
	}
	all := append(append(append([]float64{}, income...), expense...), cumulative...)

	graph := chart.Chart{
		Width:      1200,
		Height:     600,
		Background: defaultBackground(),
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02/01"),
			Style:          axisStyle(),
		},
		YAxis: chart.YAxis{
			ValueFormatter: moneyFormatter,
			Style:          axisStyle(),
			Range:          valueRange(all...),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Ingresos",
				XValues: xValues,
				YValues: income,
				Style:   chart.Style{StrokeColor: colorIncome, StrokeWidth: 2},
			},
			chart.TimeSeries{
				Name:    "Gastos",
				XValues: xValues,
				YValues: expense,
				Style:   chart.Style{StrokeColor: colorExpense, StrokeWidth: 2},
			},
			chart.TimeSeries{
				Name:    "Balance acumulado",
				XValues: xValues,
				YValues: cumulative,
				Style:   chart.Style{StrokeColor: colorBalance, StrokeWidth: 3},
			},
			chart.TimeSeries{
				Name:    "Tendencia de gastos (7 días)",
				XValues: xValues,
				YValues: movingAverage(expense, 7),
				Style: chart.Style{
					StrokeColor:     colorExpense.WithAlpha(100),
					StrokeWidth:     2,
					StrokeDashArray: []float64{5.0, 5.0},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph, axisStyle())}
	return render(graph, "cash flow")
}

// Goals draws the progress of every goal as a percentage of its target.
func (g *Generator) Goals(goals []model.Goal) ([]byte, error) {
	if len(goals) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(goals))
	values := []float64{100}
	for _, goal := range goals {
		v := goal.Progress().InexactFloat64()
		color := colorBalance
		if v >= 100 {
			color = colorIncome
		}
		bars = append(bars, chart.Value{
			Label: goal.Name,
			Value: v,
			Style: chart.Style{StrokeColor: color, FillColor: color},
		})
		values = append(values, v)
	}

	graph := chart.BarChart{
		Title:      "Progreso de metas",
		TitleStyle: axisStyle(),
		Width:      1000,
		Height:     600,
		BarWidth:   60,
		Background: defaultBackground(),
		YAxis: chart.YAxis{
			ValueFormatter: percentFormatter,
			Style:          axisStyle(),
			Range:          valueRange(values...),
		},
		Bars: bars,
	}
	return render(graph, "goals")
}

// Weekday draws the mean expense of each weekday.
func (g *Generator) Weekday(pattern []ledger.WeekdayAverage) ([]byte, error) {
	if len(pattern) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(pattern))
	values := make([]float64, 0, len(pattern))
	for _, w := range pattern {
		v := w.Average.InexactFloat64()
		bars = append(bars, chart.Value{
			Label: w.Day,
			Value: v,
			Style: chart.Style{StrokeColor: colorNeutral, FillColor: colorNeutral},
		})
		values = append(values, v)
	}

	graph := chart.BarChart{
		Title:      "Gasto promedio por día de la semana",
		TitleStyle: axisStyle(),
		Width:      1000,
		Height:     600,
		BarWidth:   60,
		Background: defaultBackground(),
		YAxis: chart.YAxis{
			ValueFormatter: moneyFormatter,
			Style:          axisStyle(),
			Range:          valueRange(values...),
		},
		Bars: bars,
	}
	return render(graph, "weekday pattern")
}

func movingAverage(values []float64, window int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		sum := 0.0
		count := 0
		for j := max(0, i-window+1); j <= i; j++ {
			sum += values[j]
			count++
		}
		result[i] = sum / float64(count)
	}
	return result
}
