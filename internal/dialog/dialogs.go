package dialog

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"agency-service/internal/card"
	"agency-service/internal/dataaccess"
	"agency-service/internal/event"
	"agency-service/internal/querycache"
	"agency-service/internal/schema"
	"agency-service/internal/student"
)

var validate = schema.NewValidator()

func check(in any) map[string]string {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	if fields := schema.FieldErrors(err); len(fields) > 0 {
		return fields
	}
	return map[string]string{"form": err.Error()}
}

type IssueCardInput struct {
	CardNumber string     `json:"cardNumber" validate:"required,max=64"`
	CardType   string     `json:"cardType" validate:"omitempty,oneof=student isic travel"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

// IssueCard issues a card to one student.
func IssueCard(store *dataaccess.Store, studentID int) *Workflow[IssueCardInput] {
	return newWorkflow(store,
		func(in IssueCardInput) map[string]string {
			in.CardNumber = strings.TrimSpace(in.CardNumber)
			return check(&in)
		},
		func(ctx context.Context, in IssueCardInput) error {
			_, err := run(ctx, store.Cards().Issue(), card.Card{
				StudentID:  studentID,
				CardNumber: strings.TrimSpace(in.CardNumber),
				CardType:   in.CardType,
				ExpiresAt:  in.ExpiresAt,
			})
			return err
		},
		querycache.ItemKey("students", studentID),
	)
}

type ScheduleEventInput struct {
	Title       string           `json:"title" validate:"required,max=200"`
	EventType   schema.EventType `json:"eventType" validate:"event_type"`
	StartsAt    time.Time        `json:"startsAt" validate:"required"`
	EndsAt      *time.Time       `json:"endsAt"`
	Location    string           `json:"location"`
	Description string           `json:"description"`
}

func ScheduleEvent(store *dataaccess.Store) *Workflow[ScheduleEventInput] {
	return newWorkflow(store,
		func(in ScheduleEventInput) map[string]string {
			in.Title = strings.TrimSpace(in.Title)
			fields := check(&in)
			if in.EndsAt != nil && !in.StartsAt.IsZero() && in.EndsAt.Before(in.StartsAt) {
				if fields == nil {
					fields = map[string]string{}
				}
				fields["endsAt"] = "must not be before startsAt"
			}
			return fields
		},
		func(ctx context.Context, in ScheduleEventInput) error {
			ev := event.Event{
				Title:       strings.TrimSpace(in.Title),
				EventType:   in.EventType,
				StartsAt:    in.StartsAt,
				Location:    in.Location,
				Description: in.Description,
			}
			if in.EndsAt != nil {
				ev.EndsAt = *in.EndsAt
			}
			_, err := run(ctx, store.Events().Schedule(), ev)
			return err
		},
	)
}

type AssignAgentInput struct {
	Agent string `json:"agent" validate:"required"`
}

// AssignAgent sets the student's agent with a partial update.
func AssignAgent(store *dataaccess.Store, studentID int) *Workflow[AssignAgentInput] {
	return newWorkflow(store,
		func(in AssignAgentInput) map[string]string {
			in.Agent = strings.TrimSpace(in.Agent)
			return check(&in)
		},
		func(ctx context.Context, in AssignAgentInput) error {
			agentName := strings.TrimSpace(in.Agent)
			_, err := run(ctx, store.Students().Patch(), dataaccess.StudentPatch{
				ID:    studentID,
				Patch: student.Patch{Agent: &agentName},
			})
			return err
		},
	)
}

type ImportStudentsInput struct {
	Filename string    `json:"filename" validate:"required"`
	File     io.Reader `json:"file" validate:"required"`
}

// ImportDialog keeps the partition the server returned for display.
type ImportDialog struct {
	*Workflow[ImportStudentsInput]

	mu     sync.Mutex
	result *student.ImportResult
}

func ImportStudents(store *dataaccess.Store) *ImportDialog {
	d := &ImportDialog{}
	d.Workflow = newWorkflow(store,
		func(in ImportStudentsInput) map[string]string {
			return check(&in)
		},
		func(ctx context.Context, in ImportStudentsInput) error {
			res, err := run(ctx, store.Students().Import(), dataaccess.ImportFile{Name: in.Filename, Body: in.File})
			if err != nil {
				return err
			}
			d.mu.Lock()
			d.result = &res
			d.mu.Unlock()
			return nil
		},
	)
	return d
}

// Result is nil until an import succeeds.
func (d *ImportDialog) Result() *student.ImportResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.result
}
