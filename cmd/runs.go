package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ideascout/internal/model"
	"ideascout/internal/storage"
)

var runsLimit int

// runsCmd lists past discovery runs for a brand.
var runsCmd = &cobra.Command{
	Use:   "runs <brand-id>",
	Short: "List recent discovery runs for a brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.OpenSQLite(GetConfig().Storage.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.FindRunsByBrand(cmd.Context(), args[0], runsLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "no runs found")
			return nil
		}
		for _, run := range runs {
			fmt.Fprintf(out, "%s  %-9s sources=%s persisted=%d duplicates=%d errors=%d\n",
				run.StartedAt.UTC().Format("2006-01-02 15:04"),
				statusColor(run.Status).Sprint(string(run.Status)),
				strings.Join(run.Sources, ","),
				run.Persisted, run.Duplicates, len(run.Errors))
		}
		return nil
	},
}

func statusColor(s model.RunStatus) *color.Color {
	switch s {
	case model.RunCompleted:
		return color.New(color.FgGreen)
	case model.RunPartial:
		return color.New(color.FgYellow)
	case model.RunFailed:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgWhite)
	}
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "maximum runs to show")
	rootCmd.AddCommand(runsCmd)
}
