// Package dashboard builds the page view-models the agency front ends
// render: the summary, entity tables and their row actions.
package dashboard

import (
	"context"
	"sort"
	"time"

	"agency-service/internal/agent"
	"agency-service/internal/apiclient"
	"agency-service/internal/application"
	"agency-service/internal/dataaccess"
	"agency-service/internal/event"
	"agency-service/internal/querycache"
	"agency-service/internal/schema"
	"agency-service/internal/session"
	"agency-service/internal/student"
	"agency-service/internal/university"

	"golang.org/x/sync/errgroup"
)

const upcomingLimit = 5

// Dashboard owns the client state for one signed-in user: the session,
// the query cache and the store over them.
type Dashboard struct {
	store   *dataaccess.Store
	session *session.Session
}

func New(api *apiclient.Client, notifier dataaccess.Notifier, opts ...querycache.Option) *Dashboard {
	cache := querycache.New(opts...)
	return &Dashboard{
		store:   dataaccess.NewStore(api, cache, notifier),
		session: session.New(api),
	}
}

func (d *Dashboard) Store() *dataaccess.Store  { return d.store }
func (d *Dashboard) Session() *session.Session { return d.session }

// Context attaches the session so pages can reach it.
func (d *Dashboard) Context(ctx context.Context) context.Context {
	return session.WithSession(ctx, d.session)
}

type StageCount struct {
	Stage schema.Stage
	Count int
}

type ApplicationStageCount struct {
	Stage schema.ApplicationStage
	Count int
}

type SummaryView struct {
	Greeting       string
	TotalStudents  int
	HighPriority   int
	Stages         []StageCount
	Applications   []ApplicationStageCount
	Agents         int
	UpcomingEvents []event.Event
}

// Summary loads the overview cards concurrently. ctx must carry a session.
func (d *Dashboard) Summary(ctx context.Context) (SummaryView, error) {
	view := SummaryView{Greeting: greeting(session.FromContext(ctx))}

	var (
		students []student.Student
		counts   student.StageCounts
		apps     []application.Application
		agents   []agent.Agent
		events   []event.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = d.store.Students().List(gctx).Unwrap()
		return err
	})
	g.Go(func() (err error) {
		counts, err = d.store.Students().StageCounts(gctx).Unwrap()
		return err
	})
	g.Go(func() (err error) {
		apps, err = d.store.Applications().List(gctx, application.ListFilter{}).Unwrap()
		return err
	})
	g.Go(func() (err error) {
		agents, err = d.store.Agents().List(gctx).Unwrap()
		return err
	})
	g.Go(func() (err error) {
		events, err = d.store.Events().List(gctx, true).Unwrap()
		return err
	})
	if err := g.Wait(); err != nil {
		return SummaryView{}, err
	}

	view.TotalStudents = len(students)
	view.HighPriority = len(student.Filter(students, student.FilterHighPriority))
	for _, st := range schema.Stages() {
		view.Stages = append(view.Stages, StageCount{Stage: st, Count: counts[st]})
	}

	byStage := map[schema.ApplicationStage]int{}
	for _, a := range apps {
		byStage[a.Stage]++
	}
	for _, st := range schema.ApplicationStages() {
		view.Applications = append(view.Applications, ApplicationStageCount{Stage: st, Count: byStage[st]})
	}

	view.Agents = len(agents)

	// events is the cached slice; sort a copy
	upcoming := append([]event.Event(nil), events...)
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].StartsAt.Before(upcoming[j].StartsAt) })
	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}
	view.UpcomingEvents = upcoming
	return view, nil
}

func greeting(s *session.Session) string {
	user := s.User()
	if user == nil {
		return "Welcome"
	}
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	return "Welcome back, " + name
}

type StudentRow struct {
	ID           int
	Name         string
	Email        string
	Stage        schema.Stage
	Status       schema.StudentStatus
	Agent        string
	HighPriority bool
	Actions      []Action
}

type StudentsView struct {
	Filter string
	Search string
	Rows   []StudentRow
}

// Students applies search then the filter token to the cached list.
func (d *Dashboard) Students(ctx context.Context, filter, search string) (StudentsView, error) {
	list, err := d.store.Students().Filtered(ctx, filter, search).Unwrap()
	if err != nil {
		return StudentsView{}, err
	}

	view := StudentsView{Filter: filter, Search: search, Rows: make([]StudentRow, 0, len(list))}
	for _, s := range list {
		view.Rows = append(view.Rows, StudentRow{
			ID:           s.ID,
			Name:         s.FullName(),
			Email:        s.Email,
			Stage:        s.Stage,
			Status:       s.Status,
			Agent:        s.Agent,
			HighPriority: s.IsHighPriority,
			Actions:      studentActions,
		})
	}
	return view, nil
}

type ApplicationRow struct {
	ID         int
	Student    string
	University string
	Program    string
	Stage      schema.ApplicationStage
	Status     schema.ApplicationStatus
	Intake     string
	Actions    []Action
}

func (d *Dashboard) Applications(ctx context.Context, filter application.ListFilter) ([]ApplicationRow, error) {
	apps, err := d.store.Applications().List(ctx, filter).Unwrap()
	if err != nil {
		return nil, err
	}

	rows := make([]ApplicationRow, 0, len(apps))
	for _, a := range apps {
		row := ApplicationRow{
			ID:      a.ID,
			Stage:   a.Stage,
			Status:  a.Status,
			Intake:  a.Intake,
			Actions: applicationActions,
		}
		if a.Student != nil {
			row.Student = a.Student.FullName()
		}
		if a.University != nil {
			row.University = a.University.Name
		}
		if a.Program != nil {
			row.Program = a.Program.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type PartnerRow struct {
	ID         int
	Name       string
	Country    string
	Status     schema.PartnerStatus
	Commission float64
	Actions    []Action
}

func (d *Dashboard) Universities(ctx context.Context) ([]PartnerRow, error) {
	list, err := d.store.Universities().List(ctx).Unwrap()
	if err != nil {
		return nil, err
	}
	rows := make([]PartnerRow, 0, len(list))
	for _, u := range list {
		rows = append(rows, universityRow(u))
	}
	return rows, nil
}

func universityRow(u university.University) PartnerRow {
	return PartnerRow{
		ID:         u.ID,
		Name:       u.Name,
		Country:    u.Country,
		Status:     u.Status,
		Commission: u.CommissionRate,
		Actions:    partnerActions,
	}
}

func (d *Dashboard) Agents(ctx context.Context) ([]PartnerRow, error) {
	list, err := d.store.Agents().List(ctx).Unwrap()
	if err != nil {
		return nil, err
	}
	rows := make([]PartnerRow, 0, len(list))
	for _, a := range list {
		name := a.Name
		if a.Company != "" {
			name += " (" + a.Company + ")"
		}
		rows = append(rows, PartnerRow{
			ID:         a.ID,
			Name:       name,
			Country:    a.Country,
			Status:     a.Status,
			Commission: a.CommissionRate,
			Actions:    partnerActions,
		})
	}
	return rows, nil
}

type EventRow struct {
	ID       int
	Title    string
	Type     schema.EventType
	Location string
	StartsAt time.Time
	EndsAt   time.Time
	Actions  []Action
}

func (d *Dashboard) Events(ctx context.Context, upcomingOnly bool) ([]EventRow, error) {
	list, err := d.store.Events().List(ctx, upcomingOnly).Unwrap()
	if err != nil {
		return nil, err
	}
	rows := make([]EventRow, 0, len(list))
	for _, e := range list {
		rows = append(rows, EventRow{
			ID:       e.ID,
			Title:    e.Title,
			Type:     e.EventType,
			Location: e.Location,
			StartsAt: e.StartsAt,
			EndsAt:   e.EndsAt,
			Actions:  eventActions,
		})
	}
	return rows, nil
}

type CardRow struct {
	ID        int
	StudentID int
	Number    string
	Type      string
	Status    schema.CardStatus
	IssuedAt  time.Time
	ExpiresAt *time.Time
}

// Cards lists every card, or one student's when studentID > 0.
func (d *Dashboard) Cards(ctx context.Context, studentID int) ([]CardRow, error) {
	list, err := d.store.Cards().List(ctx, studentID).Unwrap()
	if err != nil {
		return nil, err
	}
	rows := make([]CardRow, 0, len(list))
	for _, c := range list {
		rows = append(rows, CardRow{
			ID:        c.ID,
			StudentID: c.StudentID,
			Number:    c.CardNumber,
			Type:      c.CardType,
			Status:    c.Status,
			IssuedAt:  c.IssuedAt,
			ExpiresAt: c.ExpiresAt,
		})
	}
	return rows, nil
}

type ActivityRow struct {
	When     time.Time
	Type     string
	Entity   string
	EntityID int
}

func (d *Dashboard) Activity(ctx context.Context, entity string, limit int) ([]ActivityRow, error) {
	list, err := d.store.Activity().Recent(ctx, entity, limit).Unwrap()
	if err != nil {
		return nil, err
	}
	rows := make([]ActivityRow, 0, len(list))
	for _, e := range list {
		rows = append(rows, ActivityRow{When: e.OccurredAt, Type: e.Type, Entity: e.Entity, EntityID: e.EntityID})
	}
	return rows, nil
}
