package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/cfrscore/internal/config"
)

var version = "0.1.0"

const (
	toolName = "cfrscore"
	envFile  = ".env"
)

// Exit codes.
const (
	exitGeneric  = 1
	exitBelow    = 2 // overall rating below --fail-below
	exitInput    = 3
	exitProvider = 4
	exitSchema   = 5
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitGeneric)
	}
}

// app carries state resolved by the root command for its subcommands.
type app struct {
	configPath string
	verbose    bool
	cfg        *config.ProjectConfig
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   toolName,
		Short: "Score government performance documents against the CFR rubric",
		Long: `cfrscore evaluates a departmental Commitment for Results (CFR) document.

An LLM assesses the eight rubric sections; the scores are then normalized,
penalized by the enhancement suggestions and aggregated into an overall
rating deterministically.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default: "+config.DefaultFile+" if present)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	root.AddCommand(newAnalyzeCmd(a))
	root.AddCommand(newScoreCmd(a))
	root.AddCommand(newValidateCmd())
	root.AddCommand(newHistoryCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.log)

	if err := config.LoadEnv(envFile); err != nil {
		return exitError(exitInput, "failed to load %s: %v", envFile, err)
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return exitError(exitInput, "failed to load config: %v", err)
	}
	a.cfg = cfg
	a.log.Debug("config loaded", "path", a.configPath, "profile", cfg.Profile, "provider", cfg.LLM.Provider)
	return nil
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}
