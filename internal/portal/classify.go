package portal

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dharani043/result-bot/internal/monitor"
)

// maintenanceKeywords mark pages the portal serves while its backing
// database is down. Checked only when no result table is present.
var maintenanceKeywords = []string{
	"database",
	"error",
	"not available",
	"connection",
}

// Classify inspects a rendered portal page and decides which outcome it
// represents: a result table becomes OutcomeText with "Subject: marks"
// lines, a maintenance page becomes OutcomePortalError, and anything
// else is OutcomeNoResult.
func Classify(html string) monitor.Outcome {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return monitor.NoResult()
	}

	// Table presence decides the branch: a page that renders a table is
	// the portal answering, even when the table carries no rows yet.
	if doc.Find("table").Length() > 0 {
		if text := extractResult(doc.Find("table tr")); text != "" {
			return monitor.TextOutcome(text)
		}
		return monitor.NoResult()
	}

	lower := strings.ToLower(html)
	for _, keyword := range maintenanceKeywords {
		if strings.Contains(lower, keyword) {
			return monitor.PortalError()
		}
	}
	return monitor.NoResult()
}

// extractResult flattens result rows into "Subject: marks" lines,
// skipping the header row and rows without at least two cells.
func extractResult(rows *goquery.Selection) string {
	var lines []string
	rows.Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cols := row.Find("td")
		if cols.Length() < 2 {
			return
		}
		subject := strings.TrimSpace(cols.Eq(0).Text())
		marks := strings.TrimSpace(cols.Eq(1).Text())
		lines = append(lines, subject+": "+marks)
	})
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
