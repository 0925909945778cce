// stategraph: terminal editor and runner for state graphs.
//
// Run: go run ./cmd/stategraph --graph examples.yaml
//
// Headless: go run ./cmd/stategraph --graph examples.yaml --run
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/pflag"
	"github.com/wesen/stategraph/internal/config"
	"github.com/wesen/stategraph/internal/editorui"
	"github.com/wesen/stategraph/internal/statemachine"
	"github.com/wesen/stategraph/internal/watch"
	"github.com/wesen/stategraph/pkg/graphmodel"
	"github.com/wesen/stategraph/pkg/graphview"
	"github.com/wesen/stategraph/pkg/log"
	"github.com/wesen/stategraph/pkg/nodekind"
	"github.com/wesen/stategraph/pkg/store"
)

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	reg := nodekind.Default()
	st, err := openStore(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer st.Close()

	g, err := st.Load(ctx, cfg.Name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		logger.Info("graph %q not found, starting empty", cfg.Name)
		g = graphmodel.New(cfg.Name)
	case err != nil:
		return err
	}

	if cfg.Run {
		return runHeadless(ctx, g, cfg, logger)
	}

	session := graphview.NewSession(ctx, graphview.Options{
		Registry:  reg,
		Persister: st,
		Logger:    logger,
	})
	if err := session.Open(g); err != nil {
		return err
	}
	defer session.Close()

	opts := editorui.Options{
		Session:  session,
		Store:    st,
		Name:     g.Name,
		MaxSteps: cfg.MaxSteps,
		Logger:   logger,
	}
	if cfg.Watch && cfg.Store == config.StoreYAML {
		w, err := watch.New(cfg.Graph, watch.DefaultQuiet, logger)
		if err != nil {
			logger.Warn("not watching %s: %v", cfg.Graph, err)
		} else {
			go w.Run(ctx)
			defer w.Close()
			opts.Watcher = w
		}
	}

	p := tea.NewProgram(editorui.New(ctx, opts))
	_, err = p.Run()
	return err
}

// newLogger logs to stderr in headless mode and to the log file otherwise,
// since the terminal belongs to the UI.
func newLogger(cfg *config.Config) (log.Logger, func(), error) {
	if cfg.Run || cfg.LogFile == "" {
		return log.NewWriterLogger(os.Stderr, "[stategraph] ", cfg.Level()), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return log.NewWriterLogger(f, "[stategraph] ", cfg.Level()), func() { f.Close() }, nil
}

func openStore(ctx context.Context, cfg *config.Config, reg *nodekind.Registry) (store.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := store.NewSQLite(store.SQLiteOptions{Path: cfg.SQLite, Registry: reg})
		if err != nil {
			return nil, err
		}
		if err := s.InitSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case config.StoreRedis:
		return store.NewRedis(store.RedisOptions{Addr: cfg.Redis, Registry: reg}), nil
	default:
		return store.NewYAMLFile(cfg.Graph, reg), nil
	}
}

// runHeadless runs g to completion and prints its output.
func runHeadless(ctx context.Context, g *graphmodel.Graph, cfg *config.Config, logger log.Logger) error {
	m, err := statemachine.New(g, statemachine.Options{MaxSteps: cfg.MaxSteps, Logger: logger})
	if err != nil {
		return err
	}
	err = m.Run(ctx)
	for _, line := range m.Output() {
		fmt.Println(line)
	}
	if err != nil {
		return err
	}
	logger.Info("run %q finished after %d steps", g.Name, m.StepCount)
	return nil
}
