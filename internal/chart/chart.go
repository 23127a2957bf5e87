// Package chart provides ASCII terminal chart rendering for queue time series.
// Two renderers are available:
//
//   - Bar: horizontal bar chart, one bar per hourly bucket — best for hourly
//     averages and short windows
//   - Plot: multi-line ASCII chart with labeled axes — best for longer history
//     and forecast curves
//
// Both renderers require no external dependencies beyond the Go standard
// library.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/eEQK/queue-ai/internal/model"
)

// ─── Bar ─────────────────────────────────────────────────────────────────────

// BarOptions controls horizontal bar chart rendering.
type BarOptions struct {
	// Width is the total character width available for the chart.
	// If 0, auto-detects from $COLUMNS, falls back to 80.
	Width int
	// MaxBars is the maximum number of bars to render. If the series has
	// more points than MaxBars, the most recent ones are kept. If 0, no
	// limit is applied.
	MaxBars int
}

// Bar renders a horizontal bar chart of points to w, one bar per point.
//
// Output example:
//
//	queue length  03-02 08:00 – 03-02 20:00
//	03-02 08:00  14  ████████████
//	03-02 09:00  21  ████████████████████
//	03-02 10:00  16  ███████████████
func Bar(w io.Writer, title string, points []model.TimePoint, opts BarOptions) error {
	totalWidth := opts.Width
	if totalWidth <= 0 {
		totalWidth = termWidth()
	}
	if len(points) < 1 {
		return fmt.Errorf("chart bar: no points to render")
	}

	// Take the last N bars if over the limit
	if opts.MaxBars > 0 && len(points) > opts.MaxBars {
		points = points[len(points)-opts.MaxBars:]
	}

	minVal, maxVal := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		if p.Value < minVal {
			minVal = p.Value
		}
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}

	dateFmt := timeLabelFormat(points)
	dateWidth := len(points[0].Timestamp.Format(dateFmt))

	valWidth := 0
	for _, p := range points {
		if l := len(formatFloat(p.Value)); l > valWidth {
			valWidth = l
		}
	}

	// Bar area width = totalWidth - dateWidth - valWidth - separators (4 chars)
	barAreaWidth := totalWidth - dateWidth - valWidth - 4
	if barAreaWidth < 4 {
		barAreaWidth = 4
	}

	valRange := maxVal - minVal
	if valRange == 0 {
		valRange = 1 // avoid divide-by-zero for flat series
	}

	first := points[0].Timestamp.Format(dateFmt)
	last := points[len(points)-1].Timestamp.Format(dateFmt)
	fmt.Fprintf(w, "%s  %s – %s\n", title, first, last)

	for _, p := range points {
		barLen := int(math.Round((p.Value - minVal) / valRange * float64(barAreaWidth)))
		if barLen < 1 {
			barLen = 1 // minimum 1 block so every bar is visible
		}
		if barLen > barAreaWidth {
			barLen = barAreaWidth
		}

		fmt.Fprintf(w, "%-*s  %*s  %s\n",
			dateWidth, p.Timestamp.Format(dateFmt),
			valWidth, formatFloat(p.Value),
			strings.Repeat("█", barLen),
		)
	}

	return nil
}

// ─── Plot ─────────────────────────────────────────────────────────────────────

// PlotOptions controls multi-line ASCII plot rendering.
type PlotOptions struct {
	// Width is the total character width of the chart (including Y-axis label).
	// If 0, auto-detects from $COLUMNS, falls back to 80.
	Width int
	// Height is the number of data rows in the chart body (not counting axis labels).
	// If 0, defaults to 12.
	Height int
}

// Plot renders a multi-line ASCII chart of points to w.
func Plot(w io.Writer, title string, points []model.TimePoint, opts PlotOptions) error {
	width := opts.Width
	if width <= 0 {
		width = termWidth()
	}
	height := opts.Height
	if height <= 0 {
		height = 12
	}

	if len(points) < 2 {
		return fmt.Errorf("chart plot: need at least 2 points (got %d)", len(points))
	}

	minVal, maxVal := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		if p.Value < minVal {
			minVal = p.Value
		}
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}

	// Y-axis label width: measure the widest tick label
	ticks := yTicks(minVal, maxVal, height)
	yLabelWidth := 0
	for _, t := range ticks {
		if l := len(formatFloat(t)); l > yLabelWidth {
			yLabelWidth = l
		}
	}
	yAxisWidth := yLabelWidth + 2 // label + " ┤" or " ┼"

	plotWidth := width - yAxisWidth
	if plotWidth < 10 {
		plotWidth = 10
	}

	cols := sampleCols(points, plotWidth)

	// grid[row][col]: row 0 = top (maxVal), row height-1 = bottom (minVal)
	grid := buildGrid(cols, minVal, maxVal, height)

	dateFmt := timeLabelFormat(points)
	fmt.Fprintf(w, "%s  (%s to %s)\n", title,
		points[0].Timestamp.Format(dateFmt),
		points[len(points)-1].Timestamp.Format(dateFmt))

	for row := 0; row < height; row++ {
		// Y-axis label: print on rows that have a tick
		label := ""
		for _, t := range ticks {
			if math.Abs(rowForValue(t, minVal, maxVal, height)-float64(row)) < 0.5 {
				label = formatFloat(t)
				break
			}
		}
		labelPadded := fmt.Sprintf("%*s", yLabelWidth, label)

		axisCh := "┤"
		if label != "" && math.Abs(minVal) < 1e-9 && row == height-1 {
			axisCh = "┼"
		} else if label == "" {
			axisCh = " "
		}

		var rowSB strings.Builder
		for col := 0; col < plotWidth; col++ {
			rowSB.WriteRune(grid[row][col])
		}

		fmt.Fprintf(w, "%s%s%s\n", labelPadded, axisCh, rowSB.String())
	}

	bottomLine := strings.Repeat("─", plotWidth)
	fmt.Fprintf(w, "%s└%s\n", strings.Repeat(" ", yLabelWidth), bottomLine)

	// X-axis labels: start, middle, end
	xLabels := xAxisLabels(points, plotWidth, dateFmt)
	fmt.Fprintf(w, "%s %s\n", strings.Repeat(" ", yLabelWidth), xLabels)

	return nil
}

// ─── Grid building ────────────────────────────────────────────────────────────

// sampleCols reduces points to exactly n columns, each holding the average of
// its bucket.
func sampleCols(points []model.TimePoint, n int) []float64 {
	total := len(points)
	cols := make([]float64, n)
	for col := 0; col < n; col++ {
		lo := col * total / n
		hi := (col+1)*total/n - 1
		if hi >= total {
			hi = total - 1
		}
		sum, count := 0.0, 0
		for i := lo; i <= hi; i++ {
			sum += points[i].Value
			count++
		}
		if count == 0 {
			cols[col] = math.NaN()
		} else {
			cols[col] = sum / float64(count)
		}
	}
	return cols
}

// rowForValue returns the float row index (0=top=max) for a given value.
func rowForValue(v, minVal, maxVal float64, height int) float64 {
	if maxVal == minVal {
		return float64(height) / 2
	}
	return (maxVal - v) / (maxVal - minVal) * float64(height-1)
}

// buildGrid renders columns into a height×width rune grid using
// box-drawing characters to connect adjacent data points.
func buildGrid(cols []float64, minVal, maxVal float64, height int) [][]rune {
	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = make([]rune, len(cols))
		for c := range grid[r] {
			grid[r][c] = ' '
		}
	}

	rowOf := make([]int, len(cols))
	for col, v := range cols {
		if math.IsNaN(v) {
			rowOf[col] = -1 // sentinel: gap
		} else {
			r := int(math.Round(rowForValue(v, minVal, maxVal, height)))
			if r < 0 {
				r = 0
			}
			if r >= height {
				r = height - 1
			}
			rowOf[col] = r
		}
	}

	for col := 0; col < len(cols); col++ {
		r := rowOf[col]
		if r < 0 {
			continue // gap
		}

		prevRow := -2
		if col > 0 {
			prevRow = rowOf[col-1]
		}
		nextRow := -2
		if col < len(cols)-1 {
			nextRow = rowOf[col+1]
		}

		if prevRow == -2 && nextRow == -2 {
			// Isolated point
			grid[r][col] = '·'
			continue
		}

		// Horizontal run
		if (prevRow < 0 || prevRow == r) && (nextRow < 0 || nextRow == r) {
			grid[r][col] = '─'
			continue
		}

		goingUp := (nextRow >= 0 && nextRow < r) || (prevRow >= 0 && prevRow < r)
		goingDown := (nextRow >= 0 && nextRow > r) || (prevRow >= 0 && prevRow > r)

		switch {
		case prevRow >= 0 && prevRow < r && nextRow >= 0 && nextRow < r:
			grid[r][col] = '─'
		case prevRow >= 0 && prevRow > r && nextRow >= 0 && nextRow > r:
			// Both neighbours below: peak
			grid[r][col] = '─'
		case (prevRow < 0 || prevRow < r) && nextRow >= 0 && nextRow > r:
			grid[r][col] = '╭'
		case (prevRow < 0 || prevRow > r) && nextRow >= 0 && nextRow < r:
			grid[r][col] = '╰'
		case prevRow >= 0 && prevRow < r && (nextRow < 0 || nextRow > r):
			grid[r][col] = '╮'
		case prevRow >= 0 && prevRow > r && (nextRow < 0 || nextRow < r):
			grid[r][col] = '╯'
		default:
			if goingUp || goingDown {
				grid[r][col] = '│'
			} else {
				grid[r][col] = '─'
			}
		}

		// Fill vertical connectors between this row and previous column's row
		if prevRow >= 0 && prevRow != r {
			lo, hi := r, prevRow
			if lo > hi {
				lo, hi = hi, lo
			}
			for fill := lo + 1; fill < hi; fill++ {
				if grid[fill][col] == ' ' {
					grid[fill][col] = '│'
				}
			}
		}
	}

	return grid
}

// ─── Axis helpers ─────────────────────────────────────────────────────────────

// yTicks returns 3–5 evenly-spaced tick values for the Y axis.
func yTicks(minVal, maxVal float64, height int) []float64 {
	if maxVal == minVal {
		return []float64{minVal}
	}
	nTicks := 4
	if height <= 6 {
		nTicks = 3
	}
	ticks := make([]float64, nTicks)
	for i := 0; i < nTicks; i++ {
		ticks[i] = minVal + float64(i)*(maxVal-minVal)/float64(nTicks-1)
	}
	return ticks
}

// xAxisLabels builds a padded string with start, middle, and end time labels.
func xAxisLabels(points []model.TimePoint, plotWidth int, dateFmt string) string {
	if len(points) == 0 {
		return ""
	}
	startLabel := points[0].Timestamp.Format(dateFmt)
	endLabel := points[len(points)-1].Timestamp.Format(dateFmt)
	midLabel := points[len(points)/2].Timestamp.Format(dateFmt)

	midPos := plotWidth/2 - len(midLabel)/2
	endPos := plotWidth - len(endLabel)

	buf := []rune(strings.Repeat(" ", plotWidth))

	writeAt := func(pos int, s string) {
		for i, ch := range s {
			if pos+i >= 0 && pos+i < len(buf) {
				buf[pos+i] = ch
			}
		}
	}

	writeAt(0, startLabel)
	writeAt(midPos, midLabel)
	writeAt(endPos, endLabel)

	return string(buf)
}

// timeLabelFormat picks a label format for the series span: hour-of-day for a
// single day, day+hour up to a week, date beyond that.
func timeLabelFormat(points []model.TimePoint) string {
	if len(points) < 2 {
		return "01-02 15:04"
	}
	span := points[len(points)-1].Timestamp.Sub(points[0].Timestamp)
	switch {
	case span <= 24*time.Hour:
		return "15:04"
	case span <= 7*24*time.Hour:
		return "01-02 15:04"
	default:
		return "2006-01-02"
	}
}

// ─── Utilities ────────────────────────────────────────────────────────────────

// formatFloat formats a float for axis labels: no unnecessary trailing zeros,
// at least one decimal place, compact notation for large numbers.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "."
	}
	abs := math.Abs(v)
	var s string
	switch {
	case abs == 0:
		return "0"
	case abs >= 1e6:
		s = strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case abs >= 1e3:
		s = strconv.FormatFloat(v/1e3, 'f', 1, 64) + "K"
	case abs >= 100:
		s = strconv.FormatFloat(v, 'f', 1, 64)
	default:
		s = strconv.FormatFloat(v, 'f', 2, 64)
	}
	// Trim trailing zeros after decimal point, keep at least one decimal
	if strings.Contains(s, ".") && !strings.Contains(s, "M") && !strings.Contains(s, "K") {
		s = strings.TrimRight(s, "0")
		if strings.HasSuffix(s, ".") {
			s += "0"
		}
	}
	return s
}

// termWidth returns the terminal width from $COLUMNS, defaulting to 80.
func termWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 20 {
			return n
		}
	}
	return 80
}
