package report

import (
	"fmt"
	"io"
	"strings"
)

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

func writeLatex(doc *Document, w io.Writer) error {
	var b strings.Builder
	b.WriteString(`\documentclass{article}` + "\n")
	b.WriteString(`\usepackage[a3paper,margin=2.5cm,landscape]{geometry}` + "\n")
	for _, pkg := range []string{"scrtime", "amsmath", "amssymb", "color", "colortbl"} {
		fmt.Fprintf(&b, "\\usepackage{%s}\n", pkg)
	}
	b.WriteString(`\setlength{\parindent}{0cm}` + "\n")
	b.WriteString(`\begin{document}` + "\n")
	fmt.Fprintf(&b, "\\section*{%s: \\today\\ \\thistime}\n", latexEscaper.Replace(doc.Title))

	for _, t := range doc.Tables {
		fmt.Fprintf(&b, "\\subsection*{%s}\n", latexEscaper.Replace(t.Title))
		writeLatexTable(&b, t)
		b.WriteString("\\bigskip\n\n")
	}
	b.WriteString(`\end{document}` + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Each data column is an r@{$\pm$}r pair so reward and confidence line up;
// every cell spans both halves.
func writeLatexTable(b *strings.Builder, t Table) {
	colFmt := "|l|" + strings.Repeat(`r@{$\pm$}r`, len(t.Columns)) + "|"
	fmt.Fprintf(b, "\\begin{tabular}{%s}\n\\hline\n", colFmt)

	head := []string{""}
	for _, c := range t.Columns {
		head = append(head, fmt.Sprintf("\\multicolumn{2}{c}{%s}", latexEscaper.Replace(c)))
	}
	b.WriteString(strings.Join(head, " & ") + " \\\\\n\\hline\n\\hline\n")

	for _, r := range t.Rows {
		cells := []string{latexEscaper.Replace(r.Label)}
		for _, c := range r.Cells {
			cells = append(cells, fmt.Sprintf("\\multicolumn{2}{c}{%s}", latexCell(c)))
		}
		b.WriteString(strings.Join(cells, " & ") + " \\\\\n")
	}
	b.WriteString("\\hline\n\\end{tabular}\n")
}

func latexCell(c Cell) string {
	if c.Missing {
		return "n/a"
	}
	text := c.Text()
	if c.Confidence != nil {
		text = fmt.Sprintf("$%s(\\pm%s)$", text, formatNumber(*c.Confidence))
	}
	switch c.Emphasis {
	case TopTier:
		return "\\textbf{\\textcolor{red}{" + text + "}}"
	case NearTop:
		return "\\textbf{" + text + "}"
	default:
		return text
	}
}
