package main

import (
	"fmt"
	"time"

	"agency-service/internal/dashboard"
	"agency-service/internal/dialog"
	"agency-service/internal/message"
	"agency-service/internal/schema"

	"github.com/spf13/cobra"
)

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, use YYYY-MM-DD HH:MM", raw)
}

func (c *cli) cardsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cards", Short: "Student cards"}

	var studentID int
	list := &cobra.Command{
		Use:   "list",
		Short: "List issued cards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			rows, err := c.dash.Cards(cmd.Context(), studentID)
			if err != nil {
				return err
			}
			return dashboard.RenderCards(cmd.OutOrStdout(), rows)
		},
	}
	list.Flags().IntVar(&studentID, "student", 0, "only this student's cards")

	var in dialog.IssueCardInput
	var expires string
	issue := &cobra.Command{
		Use:   "issue STUDENT_ID",
		Short: "Issue a card to a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if expires != "" {
				t, err := parseTime(expires)
				if err != nil {
					return err
				}
				in.ExpiresAt = &t
			}
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			w := dialog.IssueCard(c.dash.Store(), id)
			w.Open()
			if err := w.Submit(cmd.Context(), in); err != nil {
				return submitError(w, err)
			}
			return nil
		},
	}
	issue.Flags().StringVar(&in.CardNumber, "number", "", "card number")
	issue.Flags().StringVar(&in.CardType, "type", "student", "student, isic or travel")
	issue.Flags().StringVar(&expires, "expires", "", "expiry date")

	cmd.AddCommand(list, issue)
	return cmd
}

func (c *cli) eventsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "events", Short: "Fairs, webinars and meetings"}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List upcoming events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			rows, err := c.dash.Events(cmd.Context(), !all)
			if err != nil {
				return err
			}
			return dashboard.RenderEvents(cmd.OutOrStdout(), rows)
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include past events")

	var (
		in           dialog.ScheduleEventInput
		eventType    string
		starts, ends string
	)
	schedule := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule an event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.EventType = schema.EventType(eventType)
			if starts != "" {
				t, err := parseTime(starts)
				if err != nil {
					return err
				}
				in.StartsAt = t
			}
			if ends != "" {
				t, err := parseTime(ends)
				if err != nil {
					return err
				}
				in.EndsAt = &t
			}
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			w := dialog.ScheduleEvent(c.dash.Store())
			w.Open()
			if err := w.Submit(cmd.Context(), in); err != nil {
				return submitError(w, err)
			}
			return nil
		},
	}
	schedule.Flags().StringVar(&in.Title, "title", "", "event title")
	schedule.Flags().StringVar(&eventType, "type", "", "fair, webinar, meeting or deadline")
	schedule.Flags().StringVar(&starts, "starts", "", "start time")
	schedule.Flags().StringVar(&ends, "ends", "", "end time")
	schedule.Flags().StringVar(&in.Location, "location", "", "where it happens")
	schedule.Flags().StringVar(&in.Description, "description", "", "details")

	cmd.AddCommand(list, schedule)
	return cmd
}

func (c *cli) messagesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "messages", Short: "Messages to students"}

	var (
		msg       message.Message
		studentID int
	)
	send := &cobra.Command{
		Use:   "send",
		Short: "Send a message to a student",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if studentID > 0 {
				msg.StudentID = &studentID
			}
			if err := c.requireUser(cmd.Context()); err != nil {
				return err
			}
			_, err := c.dash.Store().Messages().Send().Run(cmd.Context(), msg).Unwrap()
			return err
		},
	}
	send.Flags().IntVar(&studentID, "student", 0, "recipient student id")
	send.Flags().StringVar(&msg.Email, "email", "", "recipient email when not a student")
	send.Flags().StringVar(&msg.Subject, "subject", "", "subject line")
	send.Flags().StringVar(&msg.Body, "body", "", "message text")
	send.MarkFlagRequired("body")

	cmd.AddCommand(send)
	return cmd
}
