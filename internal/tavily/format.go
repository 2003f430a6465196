package tavily

import (
	"fmt"
	"strings"
)

const maxFormattedResults = 5

// FormatResults renders a search response as human-readable text: the
// AI-generated summary first, then the ranked source list with relevance
// scores, snippets, and URLs.
func FormatResults(resp *SearchResponse) string {
	var sb strings.Builder

	if resp.Answer != "" {
		sb.WriteString("**AI Summary:**\n")
		sb.WriteString(resp.Answer)
		sb.WriteString("\n\n")
	}

	if len(resp.Results) > 0 {
		sb.WriteString("**Sources:**\n")
		for i, r := range resp.Results {
			if i >= maxFormattedResults {
				break
			}
			title := r.Title
			if title == "" {
				title = "No title"
			}
			fmt.Fprintf(&sb, "%d. **%s** (Relevance: %.2f)\n", i+1, title, r.Score)
			fmt.Fprintf(&sb, "   %s\n", r.Content)
			fmt.Fprintf(&sb, "   Source: %s\n\n", r.URL)
		}
	}

	return strings.TrimSpace(sb.String())
}
