package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/stats"
	"github.com/verte-zerg/studytime/internal/statsui"
)

const exportPerm = 0o644

var (
	chartView string
	chartMode string
	clearYes  bool
)

var chartHeadings = map[model.ChartView]string{
	model.ChartDaily:   "This month, by day",
	model.ChartWeekly:  "This week",
	model.ChartMonthly: "This year, by month",
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show today, week, month and streak totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				return stats.RenderStats(cmd.OutOrStdout(), stats.Compute(a.repo.Sessions(), a.clock.Now()))
			})
		},
	}
}

func newChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Draw study hours as a bar chart",
		Args:  cobra.NoArgs,
		RunE:  runChartCmd,
	}
	cmd.Flags().StringVar(&chartView, "view", string(model.ChartWeekly), "period (daily, weekly or monthly)")
	cmd.Flags().StringVar(&chartMode, "mode", defaultChartMode, "bars (stacked or simple)")
	return cmd
}

func parseChartFlags() (model.ChartView, model.BarMode, error) {
	view := model.ChartView(chartView)
	switch view {
	case model.ChartDaily, model.ChartWeekly, model.ChartMonthly:
	default:
		return "", "", fmt.Errorf("invalid --view value %q (expected daily, weekly or monthly)", chartView)
	}
	mode := model.BarMode(chartMode)
	switch mode {
	case model.BarStacked, model.BarSimple:
	default:
		return "", "", fmt.Errorf("invalid --mode value %q (expected stacked or simple)", chartMode)
	}
	return view, mode, nil
}

func runChartCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		applyStringConfig(cmd, "mode", &chartMode, a.cfg.Display.WeekChartMode)
		view, mode, err := parseChartFlags()
		if err != nil {
			return err
		}
		subjects := a.repo.Subjects()
		points := stats.Chart(a.repo.Sessions(), subjects, view, a.clock.Now())
		return stats.RenderChart(cmd.OutOrStdout(), points, subjects, stats.ChartOptions{
			Title: chartHeadings[view],
			Mode:  mode,
		})
	})
}

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Browse stats, sessions and subjects interactively",
		Args:  cobra.NoArgs,
		RunE:  runDashboardCmd,
	}
	cmd.Flags().StringVar(&chartView, "view", string(model.ChartWeekly), "initial chart period (daily, weekly or monthly)")
	cmd.Flags().StringVar(&chartMode, "mode", defaultChartMode, "initial bars (stacked or simple)")
	return cmd
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		applyStringConfig(cmd, "mode", &chartMode, a.cfg.Display.WeekChartMode)
		view, mode, err := parseChartFlags()
		if err != nil {
			return err
		}
		ui := statsui.NewModel(a.repo, a.clock, statsui.Config{View: view, Mode: mode})
		program := tea.NewProgram(ui, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("dashboard failed: %w", err)
		}
		return nil
	})
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write all subjects and sessions as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				doc := a.repo.ExportData()
				if len(args) == 0 || args[0] == "-" {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), doc)
					return err
				}
				if err := os.WriteFile(args[0], []byte(doc+"\n"), exportPerm); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				logErrf("Exported %d subjects and %d sessions to %s\n",
					len(a.repo.Subjects()), len(a.repo.Sessions()), args[0])
				return nil
			})
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data with a JSON export (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read import: %w", err)
			}
			return withApp(cmd, func(a *app) error {
				if !a.repo.ImportData(string(data)) {
					return fmt.Errorf("import rejected: expected a document with subjects and sessions arrays")
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %d subjects and %d sessions\n",
					len(a.repo.Subjects()), len(a.repo.Sessions()))
				return err
			})
		},
	}
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every subject and session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !clearYes {
				logErrln("This deletes all subjects and sessions. Re-run with --yes to confirm.")
				return fmt.Errorf("not confirmed")
			}
			return withApp(cmd, func(a *app) error {
				a.timer.Reset()
				a.repo.ClearAllData()
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "All data cleared.")
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&clearYes, "yes", false, "confirm deletion")
	return cmd
}
