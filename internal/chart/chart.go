// Package chart renders leaderboard and player history graphs as PNG.
package chart

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/maxviazov/mahjong-score-service/internal/model"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	width  = 800
	height = 400
)

// Palette holds the chart colors as hex strings without the leading '#'.
type Palette struct {
	Background string
	Text       string
	Primary    string
	Ranks      [4]string // gold, silver, bronze, last
}

// DefaultPalette mirrors the score sheet colors.
func DefaultPalette() Palette {
	return Palette{
		Background: "ffffff",
		Text:       "1f2937",
		Primary:    "3b82f6",
		Ranks:      [4]string{"fbbf24", "c0c0c0", "cd7f32", "1f2937"},
	}
}

func hex(c string) drawing.Color { return drawing.ColorFromHex(c) }

func (p Palette) frame() (gochart.Style, gochart.Style) {
	bg := gochart.Style{FillColor: hex(p.Background)}
	return bg, bg
}

// AverageScores draws one bar per player in leaderboard order.
func AverageScores(rows []model.RankingEntry, p Palette) ([]byte, error) {
	if len(rows) == 0 {
		return noData(p, "No ranking data")
	}
	bars := make([]gochart.Value, 0, len(rows))
	for _, r := range rows {
		bars = append(bars, gochart.Value{
			Label: r.Name,
			Value: r.AvgScore,
			Style: gochart.Style{FillColor: hex(p.Primary), StrokeColor: hex(p.Primary)},
		})
	}
	bg, canvas := p.frame()
	graph := gochart.BarChart{
		Title:        "Average score",
		Width:        width,
		Height:       height,
		BarWidth:     40,
		Background:   bg,
		Canvas:       canvas,
		UseBaseValue: true,
		BaseValue:    0,
		XAxis:        gochart.Style{FontColor: hex(p.Text)},
		YAxis: gochart.YAxis{
			Style:          gochart.Style{FontColor: hex(p.Text)},
			ValueFormatter: scoreFormatter,
			Range:          barRange(values(bars)),
		},
		Bars: bars,
	}
	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render average score chart: %w", err)
	}
	return buf.Bytes(), nil
}

// RankDistribution stacks 1st..4th place finishes per player.
func RankDistribution(standings []model.PlayerStanding, p Palette) ([]byte, error) {
	if len(standings) == 0 {
		return noData(p, "No rank data")
	}
	bars := make([]gochart.StackedBar, 0, len(standings))
	for _, s := range standings {
		values := make([]gochart.Value, 0, 4)
		for rank := 1; rank <= 4; rank++ {
			n := s.Stats.RankDistribution[rank]
			if n == 0 {
				continue
			}
			c := hex(p.Ranks[rank-1])
			values = append(values, gochart.Value{
				Label: strconv.Itoa(rank),
				Value: float64(n),
				Style: gochart.Style{FillColor: c, StrokeColor: c},
			})
		}
		bars = append(bars, gochart.StackedBar{Name: s.Name, Width: 40, Values: values})
	}
	bg, canvas := p.frame()
	graph := gochart.StackedBarChart{
		Title:      "Rank distribution",
		Width:      width,
		Height:     height,
		Background: bg,
		Canvas:     canvas,
		XAxis:      gochart.Style{FontColor: hex(p.Text)},
		YAxis:      gochart.Style{FontColor: hex(p.Text)},
		Bars:       bars,
	}
	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render rank distribution chart: %w", err)
	}
	return buf.Bytes(), nil
}

// ScoreTrend plots a player's per-game score against the game number.
func ScoreTrend(name string, trend []model.TrendPoint, p Palette) ([]byte, error) {
	if len(trend) == 0 {
		return noData(p, "No games for "+name)
	}
	xs := make([]float64, 0, len(trend))
	ys := make([]float64, 0, len(trend))
	for i, t := range trend {
		xs = append(xs, float64(i+1))
		ys = append(ys, t.Score)
	}
	if len(trend) == 1 {
		// a single point has no x range to draw
		xs = append(xs, 2)
		ys = append(ys, ys[0])
	}
	series := gochart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: gochart.Style{
			StrokeColor: hex(p.Primary),
			StrokeWidth: 2,
			DotWidth:    4,
			DotColor:    hex(p.Primary),
		},
	}
	bg, canvas := p.frame()
	graph := gochart.Chart{
		Title:      name + " score trend",
		Width:      width,
		Height:     height,
		Background: bg,
		Canvas:     canvas,
		XAxis: gochart.XAxis{
			Name:           "Game",
			Style:          gochart.Style{FontColor: hex(p.Text)},
			ValueFormatter: gameFormatter,
		},
		YAxis: gochart.YAxis{
			Name:           "Score",
			Style:          gochart.Style{FontColor: hex(p.Text)},
			ValueFormatter: scoreFormatter,
			Range:          degenerateRange(ys...),
		},
		Series: []gochart.Series{series},
	}
	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render score trend chart: %w", err)
	}
	return buf.Bytes(), nil
}

func values(vs []gochart.Value) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Value)
	}
	return out
}

// barRange spans the bars and the zero base line. The renderer scans bar values
// only, so a single bar or equal bars would leave it with a zero y delta.
func barRange(vs []float64) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range vs {
		lo, hi = min(lo, v), max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

// degenerateRange pads a flat series so the renderer has a non-zero y delta.
// It returns nil when the data already spans a range.
func degenerateRange(vs ...float64) gochart.Range {
	if len(vs) == 0 {
		return nil
	}
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo, hi = min(lo, v), max(hi, v)
	}
	if lo != hi {
		return nil
	}
	return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

func scoreFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return ""
}

func gameFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(f))
	}
	return ""
}

func noData(p Palette, msg string) ([]byte, error) {
	bg, canvas := p.frame()
	hidden := gochart.Style{Hidden: true}
	graph := gochart.Chart{
		Width:      400,
		Height:     200,
		Background: bg,
		Canvas:     canvas,
		XAxis:      gochart.XAxis{Style: hidden},
		YAxis:      gochart.YAxis{Style: hidden},
		// the renderer refuses a chart without series
		Series: []gochart.Series{gochart.ContinuousSeries{
			XValues: []float64{0, 1},
			YValues: []float64{0, 1},
			Style:   hidden,
		}},
		Elements: []gochart.Renderable{
			func(r gochart.Renderer, cb gochart.Box, _ gochart.Style) {
				r.SetFontColor(hex(p.Text))
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				r.Text(msg, (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
			},
		},
	}
	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render placeholder: %w", err)
	}
	return buf.Bytes(), nil
}
