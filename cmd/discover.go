package cmd

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var discoverSources []string

// discoverCmd triggers one discovery run for a brand and prints the outcome.
var discoverCmd = &cobra.Command{
	Use:   "discover <brand-id>",
	Short: "Run idea discovery for a brand once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(GetConfig())
		if err != nil {
			return err
		}
		defer p.Close()

		run, err := p.orch.Run(cmd.Context(), args[0], discoverSources)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		status := color.New(color.FgGreen)
		switch run.Status {
		case "partial":
			status = color.New(color.FgYellow)
		case "failed":
			status = color.New(color.FgRed)
		}
		fmt.Fprintf(out, "run %s: %s\n", run.ID, status.Sprint(string(run.Status)))

		names := make([]string, 0, len(run.SourceStats))
		for name := range run.SourceStats {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			stat := run.SourceStats[name]
			if stat.Error != "" {
				fmt.Fprintf(out, "  %-10s %3d found  %s\n", name, stat.Found, color.RedString(stat.Error))
			} else {
				fmt.Fprintf(out, "  %-10s %3d found\n", name, stat.Found)
			}
		}
		fmt.Fprintf(out, "persisted %d, duplicates %d, below min score %d, capped %d, excluded %d\n",
			run.Persisted, run.Duplicates, run.BelowMinScore, run.Capped, run.Excluded)
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringSliceVar(&discoverSources, "sources", nil,
		"sources to poll (default: all enabled for the brand)")
	rootCmd.AddCommand(discoverCmd)
}
