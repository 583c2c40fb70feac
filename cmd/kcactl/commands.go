package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/kcalabs/kca-projects/internal/backup"
	"github.com/kcalabs/kca-projects/internal/codec"
	"github.com/kcalabs/kca-projects/internal/domain/project"
	"github.com/kcalabs/kca-projects/internal/transport"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var (
		filter project.Filter
		sortBy string
		order  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Long: `List projects, optionally filtered and sorted.

Filters combine: a project must match the search text and every given
status, priority and tech. "all" or an empty value disables a filter.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srt := project.Sort{By: project.SortKey(sortBy), Order: project.SortOrder(order)}
			switch srt.Order {
			case project.SortAsc, project.SortDesc:
			default:
				return fmt.Errorf("--order must be asc or desc, got %q", order)
			}
			view := a.projects.View(filter, srt)
			if asJSON {
				return backup.Export(cmd.OutOrStdout(), view)
			}
			renderProjects(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "Case-insensitive text to match")
	cmd.Flags().StringVar(&filter.Status, "status", "all", "Status id")
	cmd.Flags().StringVar(&filter.Priority, "priority", "all", "Priority")
	cmd.Flags().StringVar(&filter.Tech, "tech", "all", "Tech stack id")
	cmd.Flags().StringVar(&sortBy, "sort", string(project.SortByLastUpdated), "title, progress, createdAt or lastUpdated")
	cmd.Flags().StringVar(&order, "order", string(project.SortDesc), "asc or desc")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one project as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.projects.Get(args[0])
			if err != nil {
				return err
			}
			data, err := codec.EncodeProjectIndent(*p)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
			return err
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			renderStats(cmd.OutOrStdout(), a.projects.Stats())
			return nil
		},
	}
}

func newCatalogCmd(*app) *cobra.Command {
	return &cobra.Command{
		Use:         "catalog",
		Short:       "List valid statuses, tech stacks and priorities",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{loadAnnotation: loadSkip},
		RunE: func(cmd *cobra.Command, _ []string) error {
			renderCatalog(cmd.OutOrStdout())
			return nil
		},
	}
}

func newProgressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <id> <percent>",
		Short: "Set a project's progress",
		Long:  "Set a project's progress. 100 completes the project; any progress on a planning project moves it to development.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			progress, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("progress must be a whole number: %w", err)
			}
			p, err := a.projects.UpdateProgress(cmd.Context(), args[0], progress)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d%% %s\n", p.Title, p.Progress, statusLabel(p.Status))
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status-id>",
		Short: "Move a project to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.projects.UpdateStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", p.Title, statusLabel(p.Status))
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.projects.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of the collection",
		Long:  "Write a JSON backup of the collection into --backup-dir. The default name is kca-projects-backup-<date>.json.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projects := a.projects.List()
			path, err := backup.ExportFile(a.backupDir, name, projects, nowFunc())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d projects to %s\n", len(projects), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Backup file name")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a JSON backup",
		Long: `Restore a JSON backup. With --mode replace (default) the collection becomes
exactly the backup; with --mode merge only projects whose id is not already
present are added. An invalid backup changes nothing.

If the stored collection cannot be read, only --mode replace is accepted.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{loadAnnotation: loadTolerant},
		RunE: func(cmd *cobra.Command, args []string) error {
			importMode, err := project.ParseImportMode(mode)
			if err != nil {
				return err
			}
			if a.loadErr != nil && importMode != project.ImportReplace {
				return fmt.Errorf("stored projects could not be read, use --mode replace to restore: %w", a.loadErr)
			}
			records, err := backup.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			result, err := a.projects.Import(cmd.Context(), records, importMode)
			if err != nil {
				return err
			}
			if a.loadErr != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "restored unreadable collection")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s import: %d imported, %d skipped\n", result.Mode, result.Imported, result.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(project.ImportReplace), "replace or merge")
	return cmd
}

func newKeysCmd(a *app) *cobra.Command {
	keys := &cobra.Command{
		Use:         "keys",
		Short:       "Manage API keys for the HTTP server",
		Annotations: map[string]string{loadAnnotation: loadSkip},
	}

	var actor, description string
	add := &cobra.Command{
		Use:         "add",
		Short:       "Create an API key and print it once",
		Long:        "Create an API key for --actor. Only its hash is stored; the key is printed once and cannot be recovered.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{loadAnnotation: loadSkip},
		RunE: func(cmd *cobra.Command, _ []string) error {
			token := "kca_" + uuid.NewString()
			if err := a.keys.Add(cmd.Context(), transport.HashToken(token), actor, description); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	add.Flags().StringVar(&actor, "actor", "", "Name recorded as createdBy for this key (required)")
	add.Flags().StringVar(&description, "description", "", "Note about the key")
	_ = add.MarkFlagRequired("actor")

	keys.AddCommand(add)
	return keys
}
