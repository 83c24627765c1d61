package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/rebeliceyang/lazydb/internal/app"
	"github.com/rebeliceyang/lazydb/internal/config"
	"github.com/rebeliceyang/lazydb/internal/db"
	"github.com/rebeliceyang/lazydb/internal/db/postgres"
	"github.com/rebeliceyang/lazydb/internal/db/sqlite"
	"github.com/rebeliceyang/lazydb/internal/export"
	"github.com/rebeliceyang/lazydb/internal/logging"
	"github.com/rebeliceyang/lazydb/internal/viewstate"
)

func main() {
	var (
		configPath   = pflag.StringP("config", "c", "", "config file (default: user config dir)")
		dsn          = pflag.String("postgres", "", "PostgreSQL connection string")
		sqlitePath   = pflag.String("sqlite", "", "SQLite database file")
		query        = pflag.StringP("query", "q", "", "SQL to run on startup")
		exportDir    = pflag.String("export-dir", ".", "directory for exported rows")
		exportFormat = pflag.String("export-format", "csv", "export format (csv, json, yaml)")
	)
	pflag.Parse()

	if (*dsn == "") == (*sqlitePath == "") {
		fmt.Fprintln(os.Stderr, "exactly one of --postgres or --sqlite is required")
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, *dsn, *sqlitePath, *query, *exportDir, *exportFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dsn, sqlitePath, query, exportDir, exportFormat string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		if configPath != "" {
			return err
		}
		log.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.GetDefaults()
	}

	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Setup(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	var source db.Source
	if dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		source, err = postgres.Open(ctx, dsn, postgres.Options{
			MaxConns:     int32(cfg.Data.ConnectionPoolSize),
			QueryTimeout: time.Duration(cfg.Data.QueryTimeout) * time.Millisecond,
			Logger:       logger,
		})
	} else {
		source, err = sqlite.Open(sqlitePath, logger)
	}
	if err != nil {
		return err
	}
	defer source.Close()

	var store *viewstate.Store
	if cfg.Storage.Persist && cfg.Storage.ViewStatePath != "" {
		store, err = viewstate.NewStore(cfg.Storage.ViewStatePath)
		if err != nil {
			logger.Warn("view state disabled", "path", cfg.Storage.ViewStatePath, "error", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	a := app.New(app.Options{
		Config:       cfg,
		Source:       source,
		Store:        store,
		Logger:       logger,
		Query:        query,
		ExportDir:    exportDir,
		ExportFormat: format,
	})
	defer a.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	logger.Info("starting", "source", source.Name())
	if _, err := tea.NewProgram(a, opts...).Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
