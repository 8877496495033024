package services

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"reservation-monitor/models"

	"github.com/jedib0t/go-pretty/v6/table"
)

// NotifyPrefix starts the machine-readable summary line read by the alerting wrapper
const NotifyPrefix = "NOTIFY:"

// Reporter renders progress, findings and the NOTIFY line
type Reporter struct {
	out io.Writer
}

// NewReporter creates a Reporter writing to out
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// PrintHeader opens the run output
func (r *Reporter) PrintHeader(startedAt time.Time, targets, dates int) {
	fmt.Fprintf(r.out, "\n🍺 Reservation Check — %s\n", startedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(r.out, "Checking %d targets × %d dates...\n\n", targets, dates)
}

// CheckStarted writes the first half of a per-check line
func (r *Reporter) CheckStarted(target models.Target, date string) {
	fmt.Fprintf(r.out, "  Checking %s on %s... ", target.Label(), date)
}

// CheckFinished completes the per-check line with a marker and the slots
func (r *Reporter) CheckFinished(slots []string) {
	if len(slots) == 0 {
		fmt.Fprintln(r.out, "❌ None")
		return
	}
	fmt.Fprintf(r.out, "✅ %d slot(s): %s\n", len(slots), strings.Join(slots, ", "))
}

// PrintSummary renders the run counters as a table
func (r *Reporter) PrintSummary(summary *models.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("RUN SUMMARY")
	t.AppendHeader(table.Row{"Target", "Slots seen"})

	labels := make([]string, 0, len(summary.SlotsByTarget))
	for label := range summary.SlotsByTarget {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		t.AppendRow(table.Row{label, summary.SlotsByTarget[label]})
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("checks %d / failed %d / with slots %d", summary.Checks, summary.Failures, summary.ChecksWithSlots),
		fmt.Sprintf("findings %d", summary.Findings),
	})
	t.SetStyle(table.StyleRounded)
	fmt.Fprintln(r.out)
	t.Render()
}

// PrintFindings renders the end-of-run block followed by the NOTIFY line.
// The NOTIFY line is always the last thing written.
func (r *Reporter) PrintFindings(findings []models.Finding) {
	if len(findings) == 0 {
		fmt.Fprintln(r.out, "\nNo new availability found.")
		fmt.Fprintln(r.out, NotifyLine(nil))
		return
	}

	fmt.Fprint(r.out, "\n🎉 NEW AVAILABILITY FOUND:\n\n")
	for _, f := range findings {
		fmt.Fprintf(r.out, "  🍽️  %s (%s) — %s\n", f.Target.Name, f.Target.Area, LongDateLabel(f.Date))
		fmt.Fprintf(r.out, "     Platform: %s\n", f.Target.Platform)
		fmt.Fprintf(r.out, "     Times: %s\n", strings.Join(f.Slots, ", "))
		fmt.Fprintln(r.out)
	}
	fmt.Fprintln(r.out, NotifyLine(findings))
}

// NotifyLine builds "NOTIFY:<a>; <b>" or "NOTIFY:none"
func NotifyLine(findings []models.Finding) string {
	if len(findings) == 0 {
		return NotifyPrefix + "none"
	}
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		parts = append(parts, fmt.Sprintf("%s on %s (%s) via %s",
			f.Target.Name, ShortDateLabel(f.Date), strings.Join(f.Slots, "/"), f.Target.Platform))
	}
	return NotifyPrefix + strings.Join(parts, "; ")
}

// LongDateLabel formats 2026-02-28 as "Saturday 28 February" (en-GB order)
func LongDateLabel(date string) string {
	return dateLabel(date, "Monday 2 January")
}

// ShortDateLabel formats 2026-02-28 as "Sat 28 Feb"
func ShortDateLabel(date string) string {
	return dateLabel(date, "Mon 2 Jan")
}

func dateLabel(date, layout string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.Format(layout)
}
