package tools

import (
	"fmt"
	"strings"
)

// FormatSearchPage renders a page for the model. The next-offset hint is a
// page index, matching SearchQuery.Offset.
func FormatSearchPage(page *SearchPage) string {
	if page == nil || len(page.Results) == 0 {
		q := ""
		if page != nil {
			q = page.Query
		}
		return fmt.Sprintf("No results for: %s", q)
	}
	header := fmt.Sprintf("Results for: %s", page.Query)
	if page.Offset > 0 {
		header += fmt.Sprintf(" (offset %d)", page.Offset)
	}
	lines := []string{header + "\n"}
	for i, it := range page.Results {
		title := it.Title
		if title == "" {
			title = "(no title)"
		}
		lines = append(lines, fmt.Sprintf("%d. %s\n   %s", i+1, title, it.URL))
		if it.Snippet != "" {
			lines = append(lines, "   "+it.Snippet)
		}
	}
	if page.MoreAvailable {
		lines = append(lines, fmt.Sprintf("\nMore results available (next offset: %d).", page.Offset+1))
	}
	return strings.Join(lines, "\n")
}
