package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/signalnine/plannerbench/internal/report"
	"github.com/signalnine/plannerbench/internal/summarize"
	"github.com/spf13/cobra"
)

var (
	flagTar    bool
	flagFormat string
	flagTitle  string
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <results-dir> <out-file>",
		Short: "Score every planner against the baseline and write the report",
		Long: "Load the baseline summary (the min directory) and every planner summary under results-dir, " +
			"compute IPPC scores per instance and write reward, score and time tables to out-file (- for stdout).",
		Args: cobra.ExactArgs(2),
		RunE: runAnalyze,
	}
	cmd.Flags().BoolVar(&flagTar, "tar", false, "summarize and archive planner directories before analyzing")
	cmd.Flags().StringVar(&flagFormat, "format", report.FormatLatex, "output format ("+strings.Join(report.Formats, ", ")+")")
	cmd.Flags().StringVar(&flagTitle, "title", "", "report title (defaults to the planner label)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root, outPath := args[0], args[1]

	if flagTar {
		cfg.SetCompress(true)
		rep, err := summarize.All(root, cfg)
		if err != nil {
			return err
		}
		printTally(cmd, rep)
	}

	title := flagTitle
	if title == "" {
		title = cfg.PlannerLabel
	}

	if outPath == "-" {
		return report.Generate(root, cfg, title, flagFormat, cmd.OutOrStdout())
	}

	// Render into memory first so a failed analysis leaves no partial report.
	var buf bytes.Buffer
	if err := report.Generate(root, cfg, title, flagFormat, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", outPath)
	return nil
}
