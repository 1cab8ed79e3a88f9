package workhours

import (
	"fmt"
	"strings"
	"time"
)

// DisplayOptions controls how FormatDuration renders a duration.
type DisplayOptions struct {
	Ticking        bool    // show seconds
	Paused         bool    // clock is outside working hours
	SLAHoursPerDay float64 // when > 0, append the decimal-day equivalent
}

// FormatDuration renders d as "{h}h {m}m", optionally with seconds, a
// decimal-day equivalent and a "(paused)" marker.
func FormatDuration(d time.Duration, opts DisplayOptions) string {
	if d < 0 {
		d = -d
	}

	hours := int(d / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	var b strings.Builder
	fmt.Fprintf(&b, "%dh %dm", hours, minutes)
	if opts.Ticking && !opts.Paused {
		fmt.Fprintf(&b, " %ds", int(d%time.Minute/time.Second))
	}
	if opts.SLAHoursPerDay > 0 {
		days := d.Minutes() / (opts.SLAHoursPerDay * 60)
		fmt.Fprintf(&b, " — %.1f days", days)
	}
	if opts.Paused {
		b.WriteString(" (paused)")
	}
	return b.String()
}
