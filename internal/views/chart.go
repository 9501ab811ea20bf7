package views

import (
	"fmt"
	"strings"

	"github.com/i474232898/airsense/internal/airquality"
)

// Chart canvas size and inner padding, in SVG user units.
const (
	chartWidth   = 720
	chartHeight  = 300
	chartPadLeft = 56
	chartPadX    = 20
	chartPadY    = 24
)

// ChartPoint is one vertex of the line in canvas coordinates.
type ChartPoint struct {
	X, Y  float64
	Label string
}

// LineChart is a precomputed SVG line chart of PM2.5 against time.
type LineChart struct {
	Title  string
	Width  int
	Height int

	// Plot area edges.
	Left, Right, Top, Bottom float64

	Points   []ChartPoint
	Polyline string

	YMinLabel, YMaxLabel   string
	XStartLabel, XEndLabel string
}

// NewLineChart lays out readings in source order. It returns nil for no readings.
func NewLineChart(title string, readings []airquality.Reading) *LineChart {
	if len(readings) == 0 {
		return nil
	}

	c := &LineChart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Left:   chartPadLeft,
		Right:  chartWidth - chartPadX,
		Top:    chartPadY,
		Bottom: chartHeight - chartPadY,
	}

	tMin, tMax := readings[0].Time, readings[0].Time
	yMin, yMax := readings[0].PM25, readings[0].PM25
	for _, r := range readings[1:] {
		if r.Time.Before(tMin) {
			tMin = r.Time
		}
		if r.Time.After(tMax) {
			tMax = r.Time
		}
		if r.PM25 < yMin {
			yMin = r.PM25
		}
		if r.PM25 > yMax {
			yMax = r.PM25
		}
	}
	if yMax == yMin {
		yMin--
		yMax++
	}
	span := tMax.Sub(tMin).Seconds()

	pts := make([]string, 0, len(readings))
	for _, r := range readings {
		x := (c.Left + c.Right) / 2
		if span > 0 {
			x = c.Left + (r.Time.Sub(tMin).Seconds()/span)*(c.Right-c.Left)
		}
		y := c.Bottom - ((r.PM25-yMin)/(yMax-yMin))*(c.Bottom-c.Top)

		c.Points = append(c.Points, ChartPoint{
			X:     x,
			Y:     y,
			Label: fmt.Sprintf("%s: %s", r.Time.Format("2006-01-02 15:04"), airquality.FormatPM25(r.PM25)),
		})
		pts = append(pts, fmt.Sprintf("%.1f,%.1f", x, y))
	}

	c.Polyline = strings.Join(pts, " ")
	c.YMinLabel = fmt.Sprintf("%.1f", yMin)
	c.YMaxLabel = fmt.Sprintf("%.1f", yMax)
	c.XStartLabel = tMin.Format("15:04")
	c.XEndLabel = tMax.Format("15:04")
	return c
}
