package report_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signalnine/plannerbench/internal/collection"
	"github.com/signalnine/plannerbench/internal/config"
	"github.com/signalnine/plannerbench/internal/report"
	"github.com/signalnine/plannerbench/internal/result"
)

func writeSummary(t *testing.T, dir string, doc *result.PlannerResult) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := result.WriteSummary(dir, doc); err != nil {
		t.Fatal(err)
	}
}

func planner(name string, total float64, nav []float64, navTime float64) *result.PlannerResult {
	doc := &result.PlannerResult{PlannerName: name, BenchmarkSet: "IPPC2011", NumberOfRuns: 100, Time: total}
	d := result.DomainResult{DomainName: "nav", Time: navTime}
	for i, r := range nav {
		d.Problems = append(d.Problems, result.ProblemResult{
			ProblemName:  []string{"1", "2", "10"}[i],
			AvgReward:    r,
			Confidence95: 0.5,
			Time:         navTime / 3,
		})
	}
	doc.Domains = []result.DomainResult{d}
	return doc
}

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeSummary(t, filepath.Join(root, "min"), planner("min", 0, []float64{-100, -100, -100}, 0))
	writeSummary(t, filepath.Join(root, "beta"), planner("beta", 600, []float64{-40, -96.5, 0}, 600))
	writeSummary(t, filepath.Join(root, "alpha"), planner("alpha", -1, []float64{-50, -30, -10}, -1))
	return root
}

func build(t *testing.T) *report.Document {
	t.Helper()
	set, planners, err := collection.LoadAll(fixture(t), config.Default())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	doc, err := report.Build("PROST", set, planners, config.DefaultThresholds)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return doc
}

func TestBuildStructure(t *testing.T) {
	doc := build(t)
	var titles []string
	for _, tb := range doc.Tables {
		titles = append(titles, tb.Title)
	}
	want := []string{"Rewards: nav", "IPPC Scores: nav", "Total Time (in minutes)", "IPPC Scores: Total"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}

	scores := doc.Tables[1]
	if diff := cmp.Diff([]string{"1", "2", "10"}, scores.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if scores.Rows[0].Label != "alpha" || scores.Rows[1].Label != "beta" {
		t.Errorf("rows not sorted by planner name: %q, %q", scores.Rows[0].Label, scores.Rows[1].Label)
	}
	for _, r := range scores.Rows {
		for _, c := range r.Cells {
			if c.Value < 0 || c.Value > 1 {
				t.Errorf("%s: score %v out of range", r.Label, c.Value)
			}
		}
	}

	// Instance 2: min -100 (baseline), alpha -30 is max, beta -96.5 scores 0.05.
	alpha, beta := scores.Rows[0].Cells, scores.Rows[1].Cells
	if alpha[1].Value != 1 || alpha[1].Emphasis != report.TopTier {
		t.Errorf("alpha instance 2: %+v", alpha[1])
	}
	if beta[1].Value != 0.05 || beta[1].Emphasis != report.Plain {
		t.Errorf("beta instance 2: %+v", beta[1])
	}
	// Instance 1: min -100, max -40, alpha -50 → 50/60 = 0.83.
	if alpha[0].Value != 0.83 {
		t.Errorf("alpha instance 1: got %v", alpha[0].Value)
	}

	rewards := doc.Tables[0]
	c := rewards.Rows[0].Cells[1]
	if c.Value != -30 || c.Confidence == nil || *c.Confidence != 0.5 || c.Emphasis != report.TopTier {
		t.Errorf("reward cell: %+v", c)
	}
}

func TestTotalTables(t *testing.T) {
	doc := build(t)
	times := doc.Tables[2]
	if diff := cmp.Diff([]string{"nav", "Total"}, times.Columns); diff != "" {
		t.Errorf("time columns mismatch (-want +got):\n%s", diff)
	}
	alpha, beta := times.Rows[0].Cells, times.Rows[1].Cells
	if !alpha[0].Missing || !alpha[1].Missing {
		t.Errorf("negative times must be n/a: %+v", alpha)
	}
	if beta[0].Value != 10 || beta[1].Value != 10 {
		t.Errorf("beta minutes: %+v", beta)
	}

	totals := doc.Tables[3]
	// alpha: 0.83, 1, 0.9 → 0.91; beta: 1, 0.05, 1 → 0.68
	a, b := totals.Rows[0].Cells, totals.Rows[1].Cells
	if a[0].Value != 0.91 || a[0].Emphasis != report.NearTop {
		t.Errorf("alpha domain average: %+v", a[0])
	}
	if a[1].Value != 0.91 || a[1].Emphasis != report.NearTop {
		t.Errorf("alpha overall: %+v", a[1])
	}
	if b[1].Value != 0.68 || b[1].Emphasis != report.Plain {
		t.Errorf("beta overall: %+v", b[1])
	}
}

func TestBuildRequiresFinalize(t *testing.T) {
	set := collection.NewDomainSet()
	set.AddInstance("nav", "1")
	if _, err := report.Build("x", set, nil, config.DefaultThresholds); err == nil {
		t.Error("expected error for unfinalized set")
	}
}

func TestMissingResultRendersNA(t *testing.T) {
	root := fixture(t)
	partial := planner("gamma", 60, []float64{-10}, 60)
	writeSummary(t, filepath.Join(root, "gamma"), partial)

	var buf bytes.Buffer
	if err := report.Generate(root, config.Default(), "PROST", report.FormatTable, &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(buf.String(), "n/a") {
		t.Error("expected n/a for instances gamma never ran")
	}
}

func TestRenderFormats(t *testing.T) {
	doc := build(t)
	tests := []struct {
		format string
		want   []string
	}{
		{report.FormatLatex, []string{
			`\documentclass{article}`,
			`\section*{PROST: \today\ \thistime}`,
			`\subsection*{IPPC Scores: nav}`,
			`\textbf{\textcolor{red}{1.0}}`,
			`$-30.0(\pm0.5)$`,
			`\end{document}`,
		}},
		{report.FormatMarkdown, []string{"# PROST", "## Rewards: nav", "| Planner | 1 | 2 | 10 |", "***1.0***"}},
		{report.FormatTable, []string{"Total Time (in minutes)", "alpha", "-30.0 ± 0.5 **"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := report.Render(doc, tt.format, &buf); err != nil {
				t.Fatalf("Render: %v", err)
			}
			for _, s := range tt.want {
				if !strings.Contains(buf.String(), s) {
					t.Errorf("output missing %q", s)
				}
			}
		})
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := report.Render(build(t), report.FormatJSON, &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	var decoded struct {
		Tables []struct {
			Kind string `json:"kind"`
			Rows []struct {
				Cells []struct {
					Emphasis string `json:"emphasis"`
				} `json:"cells"`
			} `json:"rows"`
		} `json:"tables"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(decoded.Tables) != 4 || decoded.Tables[1].Kind != "scores" {
		t.Fatalf("unexpected tables: %+v", decoded.Tables)
	}
	if decoded.Tables[1].Rows[0].Cells[1].Emphasis != "top_tier" {
		t.Errorf("emphasis: got %q", decoded.Tables[1].Rows[0].Cells[1].Emphasis)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if err := report.Render(&report.Document{}, "pdf", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown format")
	}
}
