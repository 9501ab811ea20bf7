package airquality

import "fmt"

// Unit is the display unit for PM2.5 concentrations.
const Unit = "µg/m³"

// FormatPM25 renders a concentration with two decimals and its unit.
func FormatPM25(v float64) string {
	return fmt.Sprintf("%.2f %s", v, Unit)
}
