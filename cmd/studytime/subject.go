package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/studytime/internal/model"
	"github.com/verte-zerg/studytime/internal/stats"
)

var (
	subjectColor   string
	subjectNewName string
)

func newSubjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subject",
		Short: "Manage subjects",
	}

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a subject",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSubjectAddCmd,
	}
	addCmd.Flags().StringVar(&subjectColor, "color", "", "palette color (default: next unused)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List subjects",
		Args:  cobra.NoArgs,
		RunE:  runSubjectListCmd,
	}

	editCmd := &cobra.Command{
		Use:   "edit <subject>",
		Short: "Rename or recolor a subject",
		Args:  cobra.ExactArgs(1),
		RunE:  runSubjectEditCmd,
	}
	editCmd.Flags().StringVar(&subjectNewName, "name", "", "new name")
	editCmd.Flags().StringVar(&subjectColor, "color", "", "new palette color")

	rmCmd := &cobra.Command{
		Use:   "rm <subject>",
		Short: "Delete a subject and all of its sessions",
		Args:  cobra.ExactArgs(1),
		RunE:  runSubjectRmCmd,
	}

	cmd.AddCommand(addCmd, listCmd, editCmd, rmCmd)
	return cmd
}

func parseColor(s string) (model.Color, error) {
	c := model.Color(strings.ToLower(strings.TrimSpace(s)))
	if c == "" || c.Valid() {
		return c, nil
	}
	names := make([]string, len(model.Palette))
	for i, p := range model.Palette {
		names[i] = string(p)
	}
	return "", fmt.Errorf("unknown color %q (available: %s)", s, strings.Join(names, ", "))
}

func runSubjectAddCmd(cmd *cobra.Command, args []string) error {
	color, err := parseColor(subjectColor)
	if err != nil {
		return err
	}
	name := strings.Join(args, " ")
	return withApp(cmd, func(a *app) error {
		s, ok := a.repo.AddSubject(name, color)
		if !ok {
			return fmt.Errorf("subject name must not be empty")
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) %s\n", s.Name, s.Color, s.ID)
		return err
	})
}

func runSubjectListCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		return stats.RenderSubjects(cmd.OutOrStdout(), a.repo.Subjects(), a.repo.Sessions())
	})
}

func runSubjectEditCmd(cmd *cobra.Command, args []string) error {
	var upd model.SubjectUpdate
	if cmd.Flags().Changed("name") {
		if strings.TrimSpace(subjectNewName) == "" {
			return fmt.Errorf("--name must not be empty")
		}
		upd.Name = &subjectNewName
	}
	if cmd.Flags().Changed("color") {
		color, err := parseColor(subjectColor)
		if err != nil {
			return err
		}
		if color == "" {
			return fmt.Errorf("--color must not be empty")
		}
		upd.Color = &color
	}
	if upd.Name == nil && upd.Color == nil {
		return fmt.Errorf("nothing to change: pass --name and/or --color")
	}
	return withApp(cmd, func(a *app) error {
		s, err := a.subject(args[0])
		if err != nil {
			return err
		}
		a.repo.UpdateSubject(s.ID, upd)
		s, _ = a.repo.Subject(s.ID)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", s.Name, s.Color)
		return err
	})
}

func runSubjectRmCmd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		s, err := a.subject(args[0])
		if err != nil {
			return err
		}
		if snap := a.timer.Snapshot(); snap.Running && snap.SubjectID == s.ID {
			a.timer.Reset()
			logErrln("Discarded the running timer for this subject.")
		}
		removed := 0
		for _, sess := range a.repo.Sessions() {
			if sess.SubjectID == s.ID {
				removed++
			}
		}
		a.repo.DeleteSubject(s.ID)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s and %d session(s)\n", s.Name, removed)
		return err
	})
}
