// Package main provides the CLI entrypoint for studytime.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/studytime/internal/config"
	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/store"
	"github.com/verte-zerg/studytime/internal/timer"
)

const (
	defaultBackend   = store.BackendSQLite
	defaultLogLevel  = "warn"
	defaultChartMode = string(model.BarStacked)
)

var (
	rootBackend  string
	rootDBPath   string
	rootLogLevel string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "studytime",
		Short:         "Track study time per subject",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&rootBackend, "backend", defaultBackend, "storage backend (sqlite or badger)")
	rootCmd.PersistentFlags().StringVar(&rootDBPath, "db", "", "database path (default: XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSubjectCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newTimerCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newChartCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newClearCmd())

	return rootCmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# studytime configuration
# Uncomment a value to enable it. CLI flags override config values.

[store]
# backend = %q         # sqlite or badger
# path = ""                # Database file (sqlite) or directory (badger)

[timer]
# tick-ms = %d            # Live display refresh interval in milliseconds

[log]
# level = %q             # debug, info, warn or error

[display]
# week-chart-mode = %q  # stacked or simple
`,
		defaultBackend,
		timer.DefaultTickInterval.Milliseconds(),
		defaultLogLevel,
		defaultChartMode,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
