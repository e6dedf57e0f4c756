package cost

import "fmt"

// FormatUSD formats a cost for display.
func FormatUSD(cost float64) string {
	return fmt.Sprintf("$%.2f", cost)
}

// FormatRate formats an hourly rate for display.
func FormatRate(rate float64) string {
	return fmt.Sprintf("$%.2f/hr", rate)
}
