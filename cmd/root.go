package cmd

import (
	"github.com/signalnine/plannerbench/internal/config"
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "plannerbench",
		Short:        "Summarize planner benchmark logs and report IPPC scores",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (defaults apply when empty)")
	root.AddCommand(newSummarizeCmd())
	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newListCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}
