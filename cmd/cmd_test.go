package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalnine/plannerbench/internal/result"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeLog(t *testing.T, path string, reward float64, rounds ...float64) {
	t.Helper()
	var b strings.Builder
	for i, r := range rounds {
		fmt.Fprintf(&b, ">>> END OF ROUND %d -- REWARD RECEIVED: %v\n", i+1, r)
	}
	fmt.Fprintf(&b, ">>>          AVERAGE REWARD: %v\n", reward)
	b.WriteString(">>> END OF SESSION\n")
	b.WriteString("PROST complete running time: 120.0s\n")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

// resultsTree mirrors the nav scenario: a baseline and two planners over
// two nav instances.
func resultsTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeLog(t, filepath.Join(root, "min", "nav_inst_mdp__1.log"), -50, -50, -50)
	writeLog(t, filepath.Join(root, "min", "nav_inst_mdp__2.log"), -30, -30, -30)
	writeLog(t, filepath.Join(root, "PROST_A", "nav_inst_mdp__1.log"), -40, -38, -42)
	writeLog(t, filepath.Join(root, "PROST_A", "nav_inst_mdp__2.log"), -30, -30, -30)
	writeLog(t, filepath.Join(root, "PROST_B", "nav_inst_mdp__1.log"), -50, -50, -50)
	writeLog(t, filepath.Join(root, "PROST_B", "nav_inst_mdp__2.log"), -20, -20, -20)
	if err := os.MkdirAll(filepath.Join(root, "serverLogs"), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestSummarizeThenAnalyze(t *testing.T) {
	root := resultsTree(t)

	out, err := execute(t, "summarize", root, "--runs", "2", "--notar")
	if err != nil {
		t.Fatalf("summarize: %v\n%s", err, out)
	}
	if !strings.Contains(out, "written:") {
		t.Errorf("expected tally in output:\n%s", out)
	}
	for _, d := range []string{"min", "PROST_A", "PROST_B"} {
		if !result.HasSummary(filepath.Join(root, d)) {
			t.Errorf("missing summary in %s", d)
		}
	}

	reportPath := filepath.Join(t.TempDir(), "report.md")
	if out, err := execute(t, "analyze", root, reportPath, "--format", "markdown"); err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		"## IPPC Scores: nav",
		"| PROST A | ***1.0*** | 0.0 |",
		"| PROST B | 0.0 | ***1.0*** |",
		"## IPPC Scores: Total",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "| min |") {
		t.Error("baseline must not appear as a planner")
	}
}

func TestAnalyzeWithTarArchives(t *testing.T) {
	root := resultsTree(t)
	cfgPath := filepath.Join(t.TempDir(), "plannerbench.yaml")
	if err := os.WriteFile(cfgPath, []byte("number_of_runs: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", cfgPath, "analyze", root, "-", "--tar", "--format", "json")
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"kind": "total_score"`) {
		t.Errorf("expected json report on stdout:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(root, "PROST_A", result.ArchiveFile)); err != nil {
		t.Errorf("expected archive after --tar: %v", err)
	}
}

func TestAnalyzeMissingBaseline(t *testing.T) {
	root := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "report.tex")
	if _, err := execute(t, "analyze", root, reportPath); err == nil {
		t.Fatal("expected error without baseline")
	}
	if _, err := os.Stat(reportPath); !os.IsNotExist(err) {
		t.Error("no report may be written when analysis fails")
	}
}

func TestListCommand(t *testing.T) {
	root := resultsTree(t)
	if _, err := execute(t, "summarize", root, "--runs", "2", "--notar"); err != nil {
		t.Fatalf("summarize: %v", err)
	}
	out, err := execute(t, "list", root)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"min (baseline)", "PROST A", "IPPC2011"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "serverLogs") {
		t.Errorf("serverLogs must be skipped:\n%s", out)
	}
}

func TestArgValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"summarize without dir", []string{"summarize"}},
		{"summarize too many", []string{"summarize", "a", "b"}},
		{"analyze missing out", []string{"analyze", "dir"}},
		{"analyze too many", []string{"analyze", "a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("expected error for %v", tt.args)
			}
		})
	}
}

func TestUnknownFormat(t *testing.T) {
	root := resultsTree(t)
	if _, err := execute(t, "summarize", root, "--runs", "2", "--notar"); err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if _, err := execute(t, "analyze", root, "-", "--format", "pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
}
