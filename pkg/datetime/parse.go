// Package datetime provides date utility functions for forecast labels.
package datetime

import (
	"strings"
	"time"

	"github.com/medipredict/forecast-dashboard/pkg/constants"
)

const (
	// DateLabelLayout is the layout of backend date labels.
	DateLabelLayout = constants.DateLabelLayout

	// TickLayout is the short layout used on chart axes.
	TickLayout = "Jan 02"
)

// TickLabel shortens a backend date label for an axis tick. Labels that are
// not dates are returned trimmed but otherwise unchanged.
func TickLabel(label string) string {
	trimmed := strings.TrimSpace(label)
	t, err := time.Parse(DateLabelLayout, trimmed)
	if err != nil {
		return trimmed
	}
	return t.Format(TickLayout)
}

// TickStep returns the label stride that keeps at most maxTicks labels on an
// axis holding n points.
func TickStep(n, maxTicks int) int {
	if n <= 0 || maxTicks <= 0 || n <= maxTicks {
		return 1
	}
	step := n / maxTicks
	if n%maxTicks != 0 {
		step++
	}
	return step
}

// Span returns the first and last labels of a date sequence, parsed. ok is
// false when the sequence is empty or either end is not a date.
func Span(labels []string) (first, last time.Time, ok bool) {
	if len(labels) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, err := time.Parse(DateLabelLayout, strings.TrimSpace(labels[0]))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	last, err = time.Parse(DateLabelLayout, strings.TrimSpace(labels[len(labels)-1]))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return first, last, true
}
