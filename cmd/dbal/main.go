// Package main contains the cli implementation of the tool. It uses cobra
// package for cli tool implementation.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dbal/internal/config"
	"dbal/internal/core"
	"dbal/internal/dialect"
	_ "dbal/internal/dialect/mysql"      // registers the MySQL platform
	_ "dbal/internal/dialect/postgresql" // registers the PostgreSQL platform
	"dbal/internal/logger"
	"dbal/internal/output"
	"dbal/internal/parser"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by every command once the root has loaded
// the configuration.
type app struct {
	envFile   string
	logLevel  string
	logFormat string

	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "dbal",
		Short:         "Compare database schemas and generate migrations for MySQL and PostgreSQL",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Optional .env file with DBAL_* settings")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (env DBAL_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: console or json (env DBAL_LOG_FORMAT)")

	rootCmd.AddCommand(newDiffCmd(a))
	rootCmd.AddCommand(newMigrateCmd(a))
	rootCmd.AddCommand(newApplyCmd(a))
	rootCmd.AddCommand(newValidateCmd(a))
	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = strings.ToLower(a.logLevel)
	}
	if a.logFormat != "" {
		cfg.LogFormat = strings.ToLower(a.logFormat)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.log = cfg.Logger(cmd.ErrOrStderr()).With().Str("command", cmd.Name()).Logger()
	return nil
}

// platformType resolves a --platform value, falling back to the configured one.
func (a *app) platformType(name string) (dialect.Type, error) {
	if name == "" {
		return a.cfg.Platform, nil
	}
	return dialect.ParseType(name)
}

func (a *app) platform(name string) (dialect.Platform, error) {
	t, err := a.platformType(name)
	if err != nil {
		return nil, err
	}
	return dialect.Get(t)
}

func loadSchemas(oldPath, newPath string) (*core.Schema, *core.Schema, error) {
	oldSchema, err := parser.ParseFile(oldPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse old schema: %w", err)
	}
	newSchema, err := parser.ParseFile(newPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse new schema: %w", err)
	}
	return oldSchema, newSchema, nil
}

// printInfo keeps stdout clean for JSON output by sending status lines to stderr.
func printInfo(cmd *cobra.Command, format string, msg string) {
	var w io.Writer = cmd.OutOrStdout()
	if strings.EqualFold(strings.TrimSpace(format), string(output.FormatJSON)) {
		w = cmd.ErrOrStderr()
	}
	_, _ = fmt.Fprintln(w, msg)
}

func writeOutput(cmd *cobra.Command, format, path, content string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	printInfo(cmd, format, fmt.Sprintf("Output saved to %s", path))
	return nil
}
