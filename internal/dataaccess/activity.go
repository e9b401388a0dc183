package dataaccess

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"agency-service/internal/activity"
	"agency-service/internal/card"
	"agency-service/internal/event"
	"agency-service/internal/message"
	"agency-service/internal/querycache"
)

type Cards struct{ s *Store }

// List returns every card, or one student's when studentID > 0.
func (q Cards) List(ctx context.Context, studentID int) Result[[]card.Card] {
	params := url.Values{}
	if studentID > 0 {
		params.Set("studentId", strconv.Itoa(studentID))
	}
	return query[[]card.Card](ctx, q.s, withQuery(querycache.ListKey("cards"), params))
}

func (q Cards) Issue() *Mutation[card.Card, card.Card] {
	post := send[card.Card](q.s, http.MethodPost)
	return newMutation(q.s, "Card issued",
		func(ctx context.Context, in card.Card) (card.Card, error) {
			return post(ctx, querycache.ListKey("cards"), in)
		},
		func(_ card.Card, out card.Card) []string {
			return []string{querycache.ListKey("cards"), querycache.ItemKey("students", out.StudentID)}
		},
	)
}

type Events struct{ s *Store }

func (q Events) List(ctx context.Context, upcomingOnly bool) Result[[]event.Event] {
	params := url.Values{}
	if upcomingOnly {
		params.Set("upcoming", "true")
	}
	return query[[]event.Event](ctx, q.s, withQuery(querycache.ListKey("events"), params))
}

func (q Events) Schedule() *Mutation[event.Event, event.Event] {
	post := send[event.Event](q.s, http.MethodPost)
	return newMutation(q.s, "Event scheduled",
		func(ctx context.Context, in event.Event) (event.Event, error) {
			return post(ctx, querycache.ListKey("events"), in)
		},
		func(event.Event, event.Event) []string { return []string{querycache.ListKey("events")} },
	)
}

type Messages struct{ s *Store }

func (q Messages) Send() *Mutation[message.Message, message.Message] {
	post := send[message.Message](q.s, http.MethodPost)
	return newMutation(q.s, "Message sent",
		func(ctx context.Context, in message.Message) (message.Message, error) {
			return post(ctx, querycache.ListKey("messages"), in)
		},
		func(message.Message, message.Message) []string { return []string{querycache.ListKey("messages")} },
	)
}

// Activity is the feed of domain events the server has read back from its
// broker. It is never invalidated by mutations; events arrive asynchronously.
type Activity struct{ s *Store }

func (q Activity) Recent(ctx context.Context, entity string, limit int) Result[[]activity.Entry] {
	params := url.Values{}
	if entity != "" {
		params.Set("entity", entity)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return query[[]activity.Entry](ctx, q.s, withQuery(querycache.ListKey("activity"), params))
}
