package render

import (
	"fmt"
	"strings"

	"gocausal/app"
	"gocausal/domain/effect"
)

// Markdown renders the run as a standalone markdown document.
func Markdown(res *app.RunResult) []byte {
	var b strings.Builder

	m := res.Manifest
	b.WriteString("# Causal Inference Lessons\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", m.RunID)
	fmt.Fprintf(&b, "- Seed: %d\n", m.Seed)
	fmt.Fprintf(&b, "- Code: %s\n", m.CodeVersion)
	fmt.Fprintf(&b, "- Fingerprint: `%s`\n", m.Fingerprint)
	fmt.Fprintf(&b, "- Lessons: %s\n", strings.Join(m.Lessons, ", "))

	for _, rep := range res.Reports {
		fmt.Fprintf(&b, "\n## %s\n\n", rep.Title)

		if rep.Failed() {
			fmt.Fprintf(&b, "**Failed:** %s\n", rep.Err)
			continue
		}

		for _, p := range rep.Narrative {
			fmt.Fprintf(&b, "%s\n\n", p)
		}

		if len(rep.Estimates) > 0 {
			b.WriteString("| Method | Label | Estimate | SE | 95% CI | p | N |\n")
			b.WriteString("|---|---|---|---|---|---|---|\n")
			for _, e := range rep.Estimates {
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %d |\n",
					e.Method, escapeCell(e.Label), formatValue(e.Value), formatValue(e.SE),
					formatInterval(e), formatP(e.P), e.N)
			}
			b.WriteString("\n")
		}

		for _, tbl := range rep.Tables {
			writeMarkdownTable(&b, tbl)
		}
	}

	return []byte(b.String())
}

func writeMarkdownTable(b *strings.Builder, tbl effect.Table) {
	fmt.Fprintf(b, "### %s\n\n", tbl.Title)
	cells := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		cells[i] = escapeCell(c)
	}
	fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
	b.WriteString("|" + strings.Repeat("---|", len(tbl.Columns)) + "\n")
	for _, row := range tbl.Rows {
		cells = cells[:0]
		for _, c := range row {
			cells = append(cells, escapeCell(c))
		}
		fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
