package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/TaylorDurden/rank-everything/internal/domain/evaluations"
)

// Markdown renders an AnalysisResult as a markdown report. It is pure:
// identical input and timestamp produce byte-identical output.
type Markdown struct{}

func (Markdown) Render(r *evaluations.AnalysisResult, assetName, templateName string, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Evaluation Report: %s\n\n", assetName)
	fmt.Fprintf(&b, "**Overall Score:** %d/100\n\n", r.OverallScore)

	b.WriteString("## Dimension Scores\n\n")
	b.WriteString("| Dimension | Score | Rationale |\n")
	b.WriteString("|---|---|---|\n")
	for _, d := range r.DimensionScores {
		fmt.Fprintf(&b, "| %s | %d/100 | %s |\n", d.Key, d.Score, sanitizeCell(d.Rationale))
	}
	b.WriteString("\n")

	if len(r.Findings) > 0 {
		b.WriteString("## Key Findings\n\n")
		for _, f := range r.Findings {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n")
	}

	if len(r.Risks) > 0 {
		b.WriteString("## Risks\n\n")
		for _, risk := range r.Risks {
			fmt.Fprintf(&b, "- %s\n", risk)
		}
		b.WriteString("\n")
	}

	if len(r.Projections) > 0 {
		b.WriteString("## Projections\n\n")
		for _, p := range r.Projections {
			fmt.Fprintf(&b, "### %s\n\n", p.Scenario)
			if p.Description != "" {
				fmt.Fprintf(&b, "%s\n\n", p.Description)
			}
			if p.Outcome != "" {
				fmt.Fprintf(&b, "- Outcome: %s\n", p.Outcome)
			}
			if p.Probability != "" {
				fmt.Fprintf(&b, "- Probability: %s\n", p.Probability)
			}
			b.WriteString("\n")
		}
	}

	if len(r.Actions) > 0 {
		b.WriteString("## Action Plan\n\n")
		for i, a := range r.Actions {
			fmt.Fprintf(&b, "%d. **%s**", i+1, a.Title)
			if a.Rationale != "" {
				fmt.Fprintf(&b, " - %s", a.Rationale)
			}
			var details []string
			if a.Impact != "" {
				details = append(details, "Impact: "+a.Impact)
			}
			if a.Effort != "" {
				details = append(details, "Effort: "+a.Effort)
			}
			if a.Owner != "" {
				details = append(details, "Owner: "+a.Owner)
			}
			if a.ETA != "" {
				details = append(details, "ETA: "+a.ETA)
			}
			if len(details) > 0 {
				fmt.Fprintf(&b, " (%s)", strings.Join(details, "; "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "### %s\n\n", rec.Category)
			for _, item := range rec.Items {
				fmt.Fprintf(&b, "- %s\n", item)
			}
			b.WriteString("\n")
		}
	}

	if r.Comparison != nil {
		b.WriteString("## Historical Comparison\n\n")
		fmt.Fprintf(&b, "%s\n\n", r.Comparison.Summary)
		if len(r.Comparison.Improvements) > 0 {
			b.WriteString("**Improvements**\n\n")
			for _, s := range r.Comparison.Improvements {
				fmt.Fprintf(&b, "- %s\n", s)
			}
			b.WriteString("\n")
		}
		if len(r.Comparison.Regressions) > 0 {
			b.WriteString("**Regressions**\n\n")
			for _, s := range r.Comparison.Regressions {
				fmt.Fprintf(&b, "- %s\n", s)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "_Template: %s · Generated at %s_\n", templateName, generatedAt.UTC().Format(time.RFC3339))

	return b.String()
}

// sanitizeCell keeps rationale text from breaking the markdown table.
func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
