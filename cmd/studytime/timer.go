package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/stats"
	"github.com/verte-zerg/studytime/internal/timecalc"
	"github.com/verte-zerg/studytime/internal/timer"
	"github.com/verte-zerg/studytime/internal/tui"
)

var timerNotes string

func newTimerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Time a study session",
	}

	startCmd := &cobra.Command{
		Use:   "start <subject>",
		Short: "Start timing a subject",
		Args:  cobra.ExactArgs(1),
		RunE:  runTimerStartCmd,
	}
	pauseCmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause the running timer",
		Args:  cobra.NoArgs,
		RunE:  runTimerPauseCmd,
	}
	resumeCmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused timer",
		Args:  cobra.NoArgs,
		RunE:  runTimerResumeCmd,
	}
	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the timer and save the session",
		Args:  cobra.NoArgs,
		RunE:  runTimerStopCmd,
	}
	stopCmd.Flags().StringVar(&timerNotes, "notes", "", "optional notes for the saved session")
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the running timer without saving",
		Args:  cobra.NoArgs,
		RunE:  runTimerResetCmd,
	}
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the timer state",
		Args:  cobra.NoArgs,
		RunE:  runTimerStatusCmd,
	}
	watchCmd := &cobra.Command{
		Use:   "watch [subject]",
		Short: "Show a live timer, starting one if a subject is given",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTimerWatchCmd,
	}

	cmd.AddCommand(startCmd, pauseCmd, resumeCmd, stopCmd, resetCmd, statusCmd, watchCmd)
	return cmd
}

func runTimerStartCmd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		s, err := a.subject(args[0])
		if err != nil {
			return err
		}
		if err := startTimer(a, s); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Started %s\n", s.Name)
		return err
	})
}

func startTimer(a *app, s model.Subject) error {
	if snap := a.timer.Snapshot(); snap.Running {
		return fmt.Errorf("timer already running for %s", a.subjectName(snap.SubjectID))
	}
	if !a.timer.Start(s.ID) {
		return fmt.Errorf("failed to start timer for %s", s.Name)
	}
	return nil
}

func runTimerPauseCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		if !a.timer.Pause() {
			return fmt.Errorf("no running timer to pause")
		}
		return printTimerState(cmd, a)
	})
}

func runTimerResumeCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		if !a.timer.Resume() {
			return fmt.Errorf("no paused timer to resume")
		}
		return printTimerState(cmd, a)
	})
}

func runTimerStopCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		res, ok := a.timer.Stop()
		if !ok {
			return fmt.Errorf("no timer running")
		}
		if _, saved := a.saveResult(res, timerNotes); !saved {
			return fmt.Errorf("failed to save session: subject %q no longer exists", res.SubjectID)
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), a.describeResult(res))
		return err
	})
}

func runTimerResetCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		a.timer.Reset()
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Timer reset.")
		return err
	})
}

func runTimerStatusCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		return printTimerState(cmd, a)
	})
}

func printTimerState(cmd *cobra.Command, a *app) error {
	snap := a.timer.Snapshot()
	if snap.Status() == timer.Idle {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No timer running.")
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
		a.subjectName(snap.SubjectID), timecalc.FormatClock(snap.Elapsed), snap.Status())
	return err
}

func runTimerWatchCmd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		if len(args) == 1 {
			s, err := a.subject(args[0])
			if err != nil {
				return err
			}
			if err := startTimer(a, s); err != nil {
				return err
			}
		}
		opts := tui.Options{
			Subject: a.repo.Subject,
			OnStop: func(res timer.Result) string {
				if _, ok := a.saveResult(res, ""); !ok {
					return "Session discarded: subject no longer exists."
				}
				return a.describeResult(res)
			},
			Summary: func() model.Stats {
				return stats.Compute(a.repo.Sessions(), a.clock.Now())
			},
		}
		if a.cfg.Timer.TickMs != nil && *a.cfg.Timer.TickMs > 0 {
			opts.Interval = tickInterval(*a.cfg.Timer.TickMs)
		}
		program := tea.NewProgram(tui.NewModel(a.timer, opts), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("timer UI failed: %w", err)
		}
		return nil
	})
}
