package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/plannerbench/internal/collection"
	"github.com/signalnine/plannerbench/internal/config"
)

const (
	FormatLatex    = "latex"
	FormatMarkdown = "markdown"
	FormatTable    = "table"
	FormatJSON     = "json"
)

var Formats = []string{FormatLatex, FormatMarkdown, FormatTable, FormatJSON}

// Generate loads every summary under root, scores the planners and writes
// the report in the requested format.
func Generate(root string, cfg *config.Config, title, format string, w io.Writer) error {
	set, planners, err := collection.LoadAll(root, cfg)
	if err != nil {
		return err
	}
	doc, err := Build(title, set, planners, cfg.Thresholds)
	if err != nil {
		return err
	}
	return Render(doc, format, w)
}

func Render(doc *Document, format string, w io.Writer) error {
	switch format {
	case FormatLatex:
		return writeLatex(doc, w)
	case FormatMarkdown:
		return writeMarkdown(doc, w)
	case FormatTable:
		return writeTable(doc, w)
	case FormatJSON:
		return writeJSON(doc, w)
	default:
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

func writeTable(doc *Document, w io.Writer) error {
	fmt.Fprintln(w, doc.Title)
	for _, t := range doc.Tables {
		fmt.Fprintf(w, "\n%s\n", t.Title)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PLANNER\t"+strings.Join(t.Columns, "\t"))
		fmt.Fprintln(tw, strings.Repeat("-", 80))
		for _, r := range t.Rows {
			cells := make([]string, len(r.Cells))
			for i, c := range r.Cells {
				cells[i] = plainCell(c)
				switch c.Emphasis {
				case TopTier:
					cells[i] += " **"
				case NearTop:
					cells[i] += " *"
				}
			}
			fmt.Fprintln(tw, r.Label+"\t"+strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdown(doc *Document, w io.Writer) error {
	fmt.Fprintf(w, "# %s\n", doc.Title)
	for _, t := range doc.Tables {
		fmt.Fprintf(w, "\n## %s\n\n", t.Title)
		fmt.Fprintln(w, "| Planner | "+strings.Join(t.Columns, " | ")+" |")
		fmt.Fprintln(w, "|---"+strings.Repeat("|---", len(t.Columns))+"|")
		for _, r := range t.Rows {
			cells := make([]string, len(r.Cells))
			for i, c := range r.Cells {
				text := plainCell(c)
				switch c.Emphasis {
				case TopTier:
					text = "***" + text + "***"
				case NearTop:
					text = "**" + text + "**"
				}
				cells[i] = text
			}
			fmt.Fprintln(w, "| "+r.Label+" | "+strings.Join(cells, " | ")+" |")
		}
	}
	return nil
}

func writeJSON(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func plainCell(c Cell) string {
	if c.Confidence != nil && !c.Missing {
		return fmt.Sprintf("%s ± %s", c.Text(), formatNumber(*c.Confidence))
	}
	return c.Text()
}
