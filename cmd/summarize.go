package cmd

import (
	"fmt"

	"github.com/signalnine/plannerbench/internal/summarize"
	"github.com/spf13/cobra"
)

var (
	flagNoTar        bool
	flagRuns         int
	flagBenchmarkSet string
	flagPlannerLabel string
	flagParallel     int
)

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize <results-dir>",
		Short: "Write result.xml for every planner directory and archive the raw logs",
		Args:  cobra.ExactArgs(1),
		RunE:  runSummarize,
	}
	cmd.Flags().BoolVar(&flagNoTar, "notar", false, "keep raw logs instead of archiving them into results.bz2")
	cmd.Flags().IntVar(&flagRuns, "runs", 0, "override the expected number of rounds per log")
	cmd.Flags().StringVar(&flagBenchmarkSet, "benchmark-set", "", "override the benchmark set label")
	cmd.Flags().StringVar(&flagPlannerLabel, "planner-label", "", "override the planner name printed before \"complete running time\"")
	cmd.Flags().IntVar(&flagParallel, "parallel", 0, "max directories summarized concurrently")
	return cmd
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagNoTar {
		cfg.SetCompress(false)
	}
	if flagRuns > 0 {
		cfg.NumberOfRuns = flagRuns
	}
	if flagBenchmarkSet != "" {
		cfg.BenchmarkSet = flagBenchmarkSet
	}
	if flagPlannerLabel != "" {
		cfg.PlannerLabel = flagPlannerLabel
	}
	if flagParallel > 0 {
		cfg.Parallel = flagParallel
	}

	rep, err := summarize.All(args[0], cfg)
	if err != nil {
		return err
	}
	printTally(cmd, rep)
	return nil
}

func printTally(cmd *cobra.Command, rep *summarize.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n--- Summary ---\n")
	for _, o := range []summarize.Outcome{summarize.Written, summarize.Archived, summarize.AlreadySummarized} {
		fmt.Fprintf(out, "%-20s %d\n", o.String()+":", rep.Count(o))
	}
	failed := rep.Failed()
	fmt.Fprintf(out, "%-20s %d\n", "failed:", len(failed))
	for _, d := range failed {
		fmt.Fprintf(out, "  %s: %v\n", d.Dir, d.Err)
	}
}
