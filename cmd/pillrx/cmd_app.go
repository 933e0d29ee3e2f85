package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jask/pillrx/internal/chat"
	"github.com/jask/pillrx/internal/config"
	"github.com/jask/pillrx/internal/database"
	"github.com/jask/pillrx/internal/database/repository"
	"github.com/jask/pillrx/internal/flow"
	"github.com/jask/pillrx/internal/identify"
	"github.com/jask/pillrx/internal/logging"
	"github.com/jask/pillrx/internal/tui"
)

func runApp(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer closer.Close()
	log := logrus.NewEntry(logger).WithField("version", version)

	route := flow.StepIntake
	if len(args) == 1 {
		step, ok := flow.ParseStep(args[0])
		if !ok {
			log.WithField("route", args[0]).Warn("unknown route")
		}
		route = step
	}

	identifier, cleanup, err := buildIdentifier(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	app := tui.New(ctx, cfg, tui.Deps{
		Identifier: identifier,
		Responder:  chat.EchoResponder{},
		Log:        log,
	}, route)

	log.WithField("mode", cfg.Identify.Mode).Info("starting")
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// buildIdentifier returns the configured identifier and a cleanup func that
// releases whatever it opened.
func buildIdentifier(ctx context.Context, cfg config.Config, log *logrus.Entry) (identify.Identifier, func(), error) {
	if cfg.Identify.Mode != config.ModeCatalog {
		return identify.NewStatic(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Catalog.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir catalog dir: %w", err)
	}
	db, err := database.OpenCatalog(ctx, cfg.Catalog.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: %w", err)
	}
	log.WithField("path", cfg.Catalog.Path).Info("catalog opened")
	return identify.NewCatalog(repository.NewDrugRepo(db), cfg.Identify.Limit), func() { db.Close() }, nil
}
