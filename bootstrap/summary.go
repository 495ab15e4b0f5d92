package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/fetchkit/component"
)

// Summary renders the startup report: program, version, startup time and
// one line per registered component with its live health.
type Summary struct {
	name            string
	version         string
	startupDuration time.Duration
}

// NewSummary creates a summary for the named program.
func NewSummary(name, version string) *Summary {
	return &Summary{name: name, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Write prints the summary to w.
func (s *Summary) Write(ctx context.Context, w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "%s %s started in %.2fs\n", s.name, s.version, s.startupDuration.Seconds())
	if registry == nil {
		return
	}

	descriptions := map[string]component.Description{}
	for _, d := range registry.Describe() {
		descriptions[d.Name] = d
	}
	health := registry.HealthAll(ctx)
	if len(health) == 0 {
		fmt.Fprintf(w, "   └── no components registered\n")
		return
	}

	for i, h := range health {
		prefix := "├──"
		if i == len(health)-1 {
			prefix = "└──"
		}
		line := fmt.Sprintf("   %s %s %s", prefix, statusMark(h.Status), h.Name)
		if d, ok := descriptions[h.Name]; ok {
			line += fmt.Sprintf(" [%s]", d.Type)
			if d.Details != "" {
				line += " " + d.Details
			}
		}
		line += ": " + strings.ToLower(string(h.Status))
		if h.Message != "" {
			line += " (" + h.Message + ")"
		}
		fmt.Fprintln(w, line)
	}
}

func statusMark(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✓"
	case component.StatusDegraded:
		return "!"
	default:
		return "✗"
	}
}
