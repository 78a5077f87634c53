package alert

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/RAVBLACK/sentiguard/internal/db"
	"github.com/RAVBLACK/sentiguard/internal/history"
)

// Report is the guardian-facing mood report for one fired alert.
type Report struct {
	Subject  string
	Markdown string
}

// BuildReport assembles the markdown mood report for a fired alert. summary
// and trend are optional context; zero values render a minimal report.
func BuildReport(rec db.AlertRow, summary history.Summary, trend []history.Bucket) Report {
	var b strings.Builder

	fmt.Fprintf(&b, "# Mood Alert\n\n")
	fmt.Fprintf(&b, "SentiGuard detected a sustained negative mood pattern.\n\n")
	fmt.Fprintf(&b, "- **When:** %s\n", rec.Timestamp.Format("Mon, 02 Jan 2006 15:04"))
	fmt.Fprintf(&b, "- **Negative messages since last alert:** %d\n", rec.BreachCount)
	fmt.Fprintf(&b, "- **Alert ID:** %s\n\n", rec.ID)

	if len(rec.SampleLines) > 0 {
		b.WriteString("## Sample messages\n\n")
		for _, line := range rec.SampleLines {
			fmt.Fprintf(&b, "> %s\n>\n", line)
		}
		b.WriteString("\n")
	}

	if summary.Total > 0 {
		b.WriteString("## Recent mood\n\n")
		fmt.Fprintf(&b, "Across the last %d messages the average score was %.2f", summary.Total, summary.Average)
		fmt.Fprintf(&b, " (%d positive, %d negative, %d neutral).\n\n", summary.Positive, summary.Negative, summary.Neutral)
	}

	if n := len(trend); n > 0 {
		b.WriteString("## Daily trend\n\n")
		for _, bucket := range tail(trend, 7) {
			if bucket.Count == 0 {
				fmt.Fprintf(&b, "- %s: no data\n", bucket.Label)
				continue
			}
			fmt.Fprintf(&b, "- %s: %.2f (%d messages)\n", bucket.Label, bucket.Mean, bucket.Count)
		}
		b.WriteString("\n")
	}

	b.WriteString("Please check in with them when you can.\n")

	return Report{
		Subject:  fmt.Sprintf("SentiGuard alert: %d negative messages detected", rec.BreachCount),
		Markdown: b.String(),
	}
}

// HTML renders the report body for the email's HTML part.
func (r Report) HTML() (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(r.Markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func tail(buckets []history.Bucket, n int) []history.Bucket {
	if len(buckets) <= n {
		return buckets
	}
	return buckets[len(buckets)-n:]
}
