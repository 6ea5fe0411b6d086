package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ideascout/internal/export"
	"ideascout/internal/model"
	"ideascout/internal/storage"
)

// ideasCmd groups idea inspection subcommands.
var ideasCmd = &cobra.Command{
	Use:   "ideas",
	Short: "Inspect and export discovered ideas",
}

var (
	ideasStatus string
	ideasLimit  int
	exportDir   string
)

var ideasListCmd = &cobra.Command{
	Use:   "list <brand-id>",
	Short: "List discovered ideas, best scored first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.OpenSQLite(GetConfig().Storage.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		ideas, err := store.FindByBrand(cmd.Context(), args[0], model.Status(ideasStatus), ideasLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(ideas) == 0 {
			fmt.Fprintln(out, "no ideas found")
			return nil
		}
		for _, idea := range ideas {
			fmt.Fprintf(out, "%s  %6.2f  %-9s %-10s %s\n",
				idea.DiscoveredAt.UTC().Format("2006-01-02"),
				idea.OverallScore,
				priorityColor(idea.Priority).Sprint(string(idea.Priority)),
				idea.Source,
				idea.Title)
		}
		return nil
	},
}

var ideasExportCmd = &cobra.Command{
	Use:   "export <brand-id>",
	Short: "Export ideas as Markdown briefs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		store, err := storage.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		dir := exportDir
		if dir == "" {
			dir = cfg.Discovery.ExportDir
		}
		ideas, err := store.FindByBrand(cmd.Context(), args[0], model.Status(ideasStatus), ideasLimit)
		if err != nil {
			return err
		}
		for _, idea := range ideas {
			path, err := export.WriteBrief(dir, idea)
			if err != nil {
				return fmt.Errorf("export %q: %w", idea.Title, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	},
}

func priorityColor(p model.Priority) *color.Color {
	switch p {
	case model.PriorityUrgent:
		return color.New(color.FgRed, color.Bold)
	case model.PriorityHigh:
		return color.New(color.FgYellow)
	case model.PriorityMedium:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgWhite)
	}
}

func init() {
	ideasCmd.PersistentFlags().StringVar(&ideasStatus, "status", "", "filter by status (new, saved, dismissed, ...)")
	ideasCmd.PersistentFlags().IntVar(&ideasLimit, "limit", 20, "maximum ideas to show")
	ideasExportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default: discovery.export_dir)")
	ideasCmd.AddCommand(ideasListCmd)
	ideasCmd.AddCommand(ideasExportCmd)
	rootCmd.AddCommand(ideasCmd)
}
