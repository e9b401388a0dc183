package dashboard

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"agency-service/internal/dataaccess"
	"agency-service/internal/student"
)

const timeLayout = "2006-01-02 15:04"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func RenderSummary(w io.Writer, v SummaryView) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "%s\n\n", v.Greeting)
	fmt.Fprintf(tw, "Students\t%d\n", v.TotalStudents)
	fmt.Fprintf(tw, "High priority\t%d\n", v.HighPriority)
	fmt.Fprintf(tw, "Agents\t%d\n", v.Agents)

	fmt.Fprintln(tw, "\nPIPELINE\tSTUDENTS")
	for _, s := range v.Stages {
		fmt.Fprintf(tw, "%s\t%d\n", s.Stage, s.Count)
	}

	fmt.Fprintln(tw, "\nAPPLICATION STAGE\tCOUNT")
	for _, s := range v.Applications {
		fmt.Fprintf(tw, "%s\t%d\n", s.Stage, s.Count)
	}

	fmt.Fprintln(tw, "\nUPCOMING\tTYPE\tSTARTS")
	if len(v.UpcomingEvents) == 0 {
		fmt.Fprintln(tw, "(none)\t\t")
	}
	for _, e := range v.UpcomingEvents {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Title, e.EventType, formatTime(e.StartsAt))
	}
	return tw.Flush()
}

func RenderStudents(w io.Writer, v StudentsView) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSTAGE\tSTATUS\tAGENT\tPRIORITY\tACTIONS")
	for _, r := range v.Rows {
		priority := ""
		if r.HighPriority {
			priority = "high"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.Email, r.Stage, r.Status, r.Agent, priority, actionTags(r.Actions))
	}
	if len(v.Rows) == 0 {
		fmt.Fprintln(tw, "No students found")
	}
	return tw.Flush()
}

func RenderApplications(w io.Writer, rows []ApplicationRow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTUDENT\tUNIVERSITY\tPROGRAM\tSTAGE\tSTATUS\tINTAKE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Student, r.University, r.Program, r.Stage, r.Status, r.Intake)
	}
	return tw.Flush()
}

func RenderPartners(w io.Writer, rows []PartnerRow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCOUNTRY\tSTATUS\tCOMMISSION")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f%%\n", r.ID, r.Name, r.Country, r.Status, r.Commission)
	}
	return tw.Flush()
}

func RenderEvents(w io.Writer, rows []EventRow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tLOCATION\tSTARTS\tENDS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Title, r.Type, r.Location, formatTime(r.StartsAt), formatTime(r.EndsAt))
	}
	return tw.Flush()
}

func RenderCards(w io.Writer, rows []CardRow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTUDENT\tNUMBER\tTYPE\tSTATUS\tISSUED\tEXPIRES")
	for _, r := range rows {
		expires := "-"
		if r.ExpiresAt != nil {
			expires = formatTime(*r.ExpiresAt)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.StudentID, r.Number, r.Type, r.Status, formatTime(r.IssuedAt), expires)
	}
	return tw.Flush()
}

func RenderActivity(w io.Writer, rows []ActivityRow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "WHEN\tEVENT\tENTITY")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s #%d\n", formatTime(r.When), r.Type, r.Entity, r.EntityID)
	}
	if len(rows) == 0 {
		fmt.Fprintln(tw, "No activity yet")
	}
	return tw.Flush()
}

// RenderImportResult prints the server's partition as received.
func RenderImportResult(w io.Writer, res student.ImportResult) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total\t%d\n", res.Total)
	fmt.Fprintf(tw, "Imported\t%d\n", res.Imported)
	fmt.Fprintf(tw, "Skipped\t%d\n", res.Skipped)
	fmt.Fprintf(tw, "Failed\t%d\n", res.Failed)
	if len(res.Errors) > 0 {
		fmt.Fprintln(tw, "\nROW\tREASON")
		for _, e := range res.Errors {
			fmt.Fprintf(tw, "%d\t%s\n", e.Row, e.Reason)
		}
	}
	return tw.Flush()
}

// PrintToasts writes each toast as one line.
func PrintToasts(w io.Writer) dataaccess.Notifier {
	return dataaccess.NotifierFunc(func(t dataaccess.Toast) {
		mark := "ok"
		if t.Variant == dataaccess.VariantDestructive {
			mark = "error"
		}
		if t.Description == "" {
			fmt.Fprintf(w, "[%s] %s\n", mark, t.Title)
			return
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", mark, t.Title, t.Description)
	})
}

func actionTags(actions []Action) string {
	tags := make([]string, len(actions))
	for i, a := range actions {
		tags[i] = a.String()
	}
	return strings.Join(tags, ",")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}
