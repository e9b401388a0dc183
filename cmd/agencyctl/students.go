package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"agency-service/internal/dashboard"
	"agency-service/internal/dialog"

	"github.com/spf13/cobra"
)

func (c *cli) studentsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "students", Short: "Student records"}
	cmd.AddCommand(c.studentsListCmd(), c.studentsImportCmd(), c.assignAgentCmd())
	return cmd
}

func (c *cli) studentsListCmd() *cobra.Command {
	var filter, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			view, err := c.dash.Students(cmd.Context(), filter, search)
			if err != nil {
				return err
			}
			return dashboard.RenderStudents(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "active, high_priority or recently_added")
	cmd.Flags().StringVar(&search, "search", "", "match name or email")
	return cmd
}

func (c *cli) studentsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import students from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			d := dialog.ImportStudents(c.dash.Store())
			d.Open()
			err = d.Submit(cmd.Context(), dialog.ImportStudentsInput{Filename: filepath.Base(args[0]), File: f})
			if err != nil {
				return submitError(d.Workflow, err)
			}
			return dashboard.RenderImportResult(cmd.OutOrStdout(), *d.Result())
		},
	}
}

func (c *cli) assignAgentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign-agent STUDENT_ID AGENT",
		Short: "Assign an agent to a student",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			studentID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			w := dialog.AssignAgent(c.dash.Store(), studentID)
			w.Open()
			if err := w.Submit(cmd.Context(), dialog.AssignAgentInput{Agent: args[1]}); err != nil {
				return submitError(w, err)
			}
			return nil
		},
	}
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// formErrors is implemented by every dialog workflow.
type formErrors interface {
	Error() string
	FieldErrors() map[string]string
}

// submitError turns a failed dialog submit into a command error. The toast
// has already been printed.
func submitError(w formErrors, err error) error {
	fields := w.FieldErrors()
	if len(fields) == 0 {
		if msg := w.Error(); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	msg := "invalid input:"
	for _, name := range names {
		msg += fmt.Sprintf(" %s %s;", name, fields[name])
	}
	return errors.New(msg[:len(msg)-1])
}
