package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gocausal/app"
)

// Text writes a console rendering of the run: the manifest header, then
// one section per lesson with narrative, estimates and tables.
func Text(w io.Writer, res *app.RunResult) error {
	if res == nil || res.Manifest == nil {
		return fmt.Errorf("render: nothing to render")
	}

	m := res.Manifest
	fmt.Fprintf(w, "Causal inference lessons\n")
	fmt.Fprintf(w, "run %s  seed %d  code %s\n", m.RunID, m.Seed, m.CodeVersion)
	fmt.Fprintf(w, "fingerprint %s\n", m.Fingerprint)

	for _, rep := range res.Reports {
		header := fmt.Sprintf("%s (%s)", rep.Title, rep.LessonName)
		fmt.Fprintf(w, "\n%s\n%s\n\n", header, strings.Repeat("-", len(header)))

		if rep.Failed() {
			fmt.Fprintf(w, "failed: %s\n", rep.Err)
			continue
		}

		for _, p := range rep.Narrative {
			fmt.Fprintf(w, "%s\n\n", p)
		}

		if len(rep.Estimates) > 0 {
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "method\tlabel\testimate\tse\t95% ci\tp\tn")
			for _, e := range rep.Estimates {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
					e.Method, e.Label, formatValue(e.Value), formatValue(e.SE),
					formatInterval(e), formatP(e.P), e.N)
			}
			if err := tw.Flush(); err != nil {
				return fmt.Errorf("render: %w", err)
			}
		}

		for _, tbl := range rep.Tables {
			fmt.Fprintf(w, "\n%s\n", tbl.Title)
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, strings.Join(tbl.Columns, "\t"))
			for _, row := range tbl.Rows {
				fmt.Fprintln(tw, strings.Join(row, "\t"))
			}
			if err := tw.Flush(); err != nil {
				return fmt.Errorf("render: %w", err)
			}
		}
	}
	return nil
}
