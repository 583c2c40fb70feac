// Package main implements kcactl, a command-line tool for managing the
// project collection stored in a kca-projects database.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kcalabs/kca-projects/internal/config"
	"github.com/kcalabs/kca-projects/internal/domain/project"
	"github.com/kcalabs/kca-projects/internal/sqlite"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadAnnotation on a command controls how the collection is loaded before
// it runs. Unannotated commands need a readable collection.
const (
	loadAnnotation = "kcactl/load"
	// loadSkip commands never touch the collection, so nothing is read or seeded.
	loadSkip = "skip"
	// loadTolerant commands run even when the stored collection is unreadable.
	loadTolerant = "tolerant"
)

// app holds what every subcommand shares. The database is opened lazily
// before a subcommand runs and closed after it returns.
type app struct {
	dbPath    string
	backupDir string
	verbose   bool

	db       *sqlite.DB
	projects *project.Service
	keys     *sqlite.APIKeyRepository
	// loadErr is set when the stored collection could not be read.
	loadErr error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	root := &cobra.Command{
		Use:   "kcactl",
		Short: "Manage the KCA project collection",
		Long: `kcactl reads and changes the project collection in a kca-projects database.

Examples:
  # List projects in development, most recently updated first
  kcactl list --status development --sort lastUpdated --order desc

  # Back up the collection and restore it elsewhere
  kcactl --backup-dir ./backups export
  kcactl import ./backups/kca-projects-backup-2024-06-01.json --mode merge

  # Issue an API key for the HTTP server
  kcactl keys add --actor mentor`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			policy := cmd.Annotations[loadAnnotation]
			if err := a.open(cmd.Context(), cmd.ErrOrStderr(), policy != loadSkip); err != nil {
				return err
			}
			if a.loadErr != nil && policy != loadTolerant {
				_ = a.close()
				return fmt.Errorf("load projects from %s: %w (restore a backup with: kcactl import <file> --mode replace)", a.dbPath, a.loadErr)
			}
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", cfg.DB.Path, "Database path (env KCA_DB_PATH)")
	root.PersistentFlags().StringVar(&a.backupDir, "backup-dir", cfg.Backup.Dir, "Backup directory (env KCA_BACKUP_DIR)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log storage activity to stderr")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newStatsCmd(a),
		newCatalogCmd(a),
		newProgressCmd(a),
		newStatusCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newKeysCmd(a),
	)
	return root
}

// open prepares the database. When load is set the collection is read too; a
// read failure is kept in loadErr rather than returned.
func (a *app) open(ctx context.Context, stderr io.Writer, load bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	db, err := sqlite.New(a.dbPath)
	if err != nil {
		return err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return err
	}

	a.db = db
	a.keys = sqlite.NewAPIKeyRepository(db)
	a.projects = project.NewService(
		sqlite.NewProjectStore(sqlite.NewKVStore(db)),
		sqlite.NewActivityRepository(db),
		logger,
	)
	if !load {
		return nil
	}
	if err := a.projects.Load(ctx); err != nil {
		a.loadErr = err
		logger.Warn("stored projects could not be read", "db", a.dbPath, "error", err)
	}
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
