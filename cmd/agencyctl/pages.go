package main

import (
	"agency-service/internal/application"
	"agency-service/internal/dashboard"
	"agency-service/internal/schema"

	"github.com/spf13/cobra"
)

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the dashboard overview",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			view, err := c.dash.Summary(cmd.Context())
			if err != nil {
				return err
			}
			return dashboard.RenderSummary(cmd.OutOrStdout(), view)
		},
	}
}

func (c *cli) applicationsCmd() *cobra.Command {
	var (
		stage     string
		studentID int
	)
	cmd := &cobra.Command{Use: "applications", Short: "University applications"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List applications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			rows, err := c.dash.Applications(cmd.Context(), application.ListFilter{
				StudentID: studentID,
				Stage:     schema.ApplicationStage(stage),
			})
			if err != nil {
				return err
			}
			return dashboard.RenderApplications(cmd.OutOrStdout(), rows)
		},
	}
	list.Flags().StringVar(&stage, "stage", "", "only this application stage")
	list.Flags().IntVar(&studentID, "student", 0, "only this student's applications")

	cmd.AddCommand(list)
	return cmd
}

func (c *cli) universitiesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "universities", Short: "Partner universities"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List universities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			rows, err := c.dash.Universities(cmd.Context())
			if err != nil {
				return err
			}
			return dashboard.RenderPartners(cmd.OutOrStdout(), rows)
		},
	})
	return cmd
}

func (c *cli) agentsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "agents", Short: "Recruitment agents"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List agents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			rows, err := c.dash.Agents(cmd.Context())
			if err != nil {
				return err
			}
			return dashboard.RenderPartners(cmd.OutOrStdout(), rows)
		},
	})
	return cmd
}

func (c *cli) activityCmd() *cobra.Command {
	var (
		entity string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent changes across the agency",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			rows, err := c.dash.Activity(cmd.Context(), entity, limit)
			if err != nil {
				return err
			}
			return dashboard.RenderActivity(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "", "only this entity, e.g. student or card")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	return cmd
}
