package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/stats"
	"github.com/verte-zerg/studytime/internal/timecalc"
)

var (
	logMinutes int
	logHours   float64
	logDate    string
	logNotes   string

	sessionFrom    string
	sessionTo      string
	sessionSubject string
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <subject>",
		Short: "Record a study session by hand",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogCmd,
	}
	cmd.Flags().IntVar(&logMinutes, "minutes", 0, "minutes studied")
	cmd.Flags().Float64Var(&logHours, "hours", 0, "hours studied, added to --minutes")
	cmd.Flags().StringVar(&logDate, "date", "", "session date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&logNotes, "notes", "", "optional notes")
	return cmd
}

func runLogCmd(cmd *cobra.Command, args []string) error {
	minutes := logMinutes + int(logHours*60+0.5)
	if minutes < 1 {
		return fmt.Errorf("duration must be at least one minute: pass --minutes and/or --hours")
	}
	var date model.Date
	if logDate != "" {
		d, err := model.ParseDate(logDate)
		if err != nil {
			return fmt.Errorf("invalid --date value: %w", err)
		}
		date = d
	}
	return withApp(cmd, func(a *app) error {
		s, err := a.subject(args[0])
		if err != nil {
			return err
		}
		in := model.NewSession{SubjectID: s.ID, Date: date, Duration: minutes}
		if notes := strings.TrimSpace(logNotes); notes != "" {
			in.Notes = &notes
		}
		sess, ok := a.repo.AddSession(in)
		if !ok {
			return fmt.Errorf("session rejected")
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged %s of %s on %s\n",
			timecalc.FormatDuration(sess.Duration), s.Name, sess.Date)
		return err
	})
}

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Browse and edit recorded sessions",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE:  runSessionListCmd,
	}
	listCmd.Flags().StringVar(&sessionFrom, "from", "", "first date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&sessionTo, "to", "", "last date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&sessionSubject, "subject", "", "only sessions of this subject")

	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a session",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionEditCmd,
	}
	editCmd.Flags().IntVar(&logMinutes, "minutes", 0, "new duration in minutes")
	editCmd.Flags().StringVar(&logDate, "date", "", "new date (YYYY-MM-DD)")
	editCmd.Flags().StringVar(&logNotes, "notes", "", "new notes")
	editCmd.Flags().StringVar(&sessionSubject, "subject", "", "move to another subject")

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionRmCmd,
	}

	cmd.AddCommand(listCmd, editCmd, rmCmd)
	return cmd
}

func runSessionListCmd(cmd *cobra.Command, _ []string) error {
	from, to := model.Date("0000-01-01"), model.Date("9999-12-31")
	if sessionFrom != "" {
		d, err := model.ParseDate(sessionFrom)
		if err != nil {
			return fmt.Errorf("invalid --from value: %w", err)
		}
		from = d
	}
	if sessionTo != "" {
		d, err := model.ParseDate(sessionTo)
		if err != nil {
			return fmt.Errorf("invalid --to value: %w", err)
		}
		to = d
	}
	return withApp(cmd, func(a *app) error {
		sessions := a.repo.SessionsInRange(from, to)
		if sessionSubject != "" {
			s, err := a.subject(sessionSubject)
			if err != nil {
				return err
			}
			filtered := sessions[:0]
			for _, sess := range sessions {
				if sess.SubjectID == s.ID {
					filtered = append(filtered, sess)
				}
			}
			sessions = filtered
		}
		return stats.RenderSessions(cmd.OutOrStdout(), sessions, a.repo.Subjects())
	})
}

func runSessionEditCmd(cmd *cobra.Command, args []string) error {
	var upd model.SessionUpdate
	if cmd.Flags().Changed("minutes") {
		if logMinutes < 1 {
			return fmt.Errorf("--minutes must be at least 1")
		}
		upd.Duration = &logMinutes
	}
	if cmd.Flags().Changed("date") {
		d, err := model.ParseDate(logDate)
		if err != nil {
			return fmt.Errorf("invalid --date value: %w", err)
		}
		upd.Date = &d
	}
	if cmd.Flags().Changed("notes") {
		upd.Notes = &logNotes
	}
	return withApp(cmd, func(a *app) error {
		sess, err := a.session(args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("subject") {
			s, err := a.subject(sessionSubject)
			if err != nil {
				return err
			}
			upd.SubjectID = &s.ID
		}
		if upd == (model.SessionUpdate{}) {
			return fmt.Errorf("nothing to change: pass --minutes, --date, --notes or --subject")
		}
		a.repo.UpdateSession(sess.ID, upd)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated session %s\n", sess.ID)
		return err
	})
}

func runSessionRmCmd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		sess, err := a.session(args[0])
		if err != nil {
			return err
		}
		a.repo.DeleteSession(sess.ID)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", sess.ID)
		return err
	})
}
