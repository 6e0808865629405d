package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/psi-verify/internal/cache"
	"github.com/talgya/psi-verify/internal/chapters"
	"github.com/talgya/psi-verify/internal/config"
	"github.com/talgya/psi-verify/internal/logging"
	"github.com/talgya/psi-verify/internal/persistence"
	"github.com/talgya/psi-verify/internal/report"
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// app is the state shared by all commands.
type app struct {
	stdout, stderr io.Writer
	getenv         func(string) string

	configPath string
	logLevel   string
	noColor    bool

	cfg     config.Config
	catalog *chapters.Catalog
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, getenv: os.Getenv, catalog: chapters.Default()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "psiverify",
		Short:         "Numeric verification of the ψ = ψ(ψ) manuscript",
		Long:          `psiverify runs the formula checks of every manuscript chapter, records the results and serves them over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable coloured output")

	root.AddCommand(
		a.runCmd(),
		a.listCmd(),
		a.showCmd(),
		a.historyCmd(),
		a.serveCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, a.getenv)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logging.New(a.stderr, level))
	a.cfg = cfg
	return nil
}

func (a *app) color() bool {
	return !a.noColor && a.getenv("NO_COLOR") == "" && report.IsTerminal(a.stdout)
}

func (a *app) openStore() (*persistence.DB, error) {
	db, err := persistence.Open(a.cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.cfg.DB, err)
	}
	return db, nil
}

// openCache returns nil when no Redis address is configured.
func (a *app) openCache() *cache.Cache {
	if !a.cfg.CacheEnabled() {
		return nil
	}
	r := a.cfg.Redis
	return cache.New(r.Addr, r.Password, r.DB, cache.WithTTL(r.TTL))
}
