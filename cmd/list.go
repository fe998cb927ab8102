package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/signalnine/plannerbench/internal/result"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <results-dir>",
		Short: "List planner summaries found in a results directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			entries, err := os.ReadDir(args[0])
			if err != nil {
				return fmt.Errorf("listing results dir: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DIR\tPLANNER\tBENCHMARK SET\tRUNS\tDOMAINS\tPROBLEMS\tARCHIVED")
			for _, e := range entries {
				if !e.IsDir() || e.Name() == cfg.Results.ServerLogsDir {
					continue
				}
				dir := filepath.Join(args[0], e.Name())
				if !result.HasSummary(dir) {
					fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t-\n", e.Name())
					continue
				}
				doc, err := result.ReadSummary(dir)
				if err != nil {
					return err
				}
				_, statErr := os.Stat(filepath.Join(dir, result.ArchiveFile))
				name := e.Name()
				if name == cfg.Results.BaselineDir {
					name += " (baseline)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%t\n",
					name, doc.PlannerName, doc.BenchmarkSet, doc.NumberOfRuns,
					len(doc.Domains), doc.ProblemCount(), statErr == nil)
			}
			return tw.Flush()
		},
	}
}
