package dataaccess

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"agency-service/internal/application"
	"agency-service/internal/querycache"
	"agency-service/internal/schema"
)

type Applications struct{ s *Store }

type StageUpdate struct {
	ID    int
	Stage schema.ApplicationStage
}

func applicationKeys(id, studentID int) []string {
	keys := []string{querycache.ListKey("applications")}
	if id > 0 {
		keys = append(keys, querycache.ItemKey("applications", id))
	}
	if studentID > 0 {
		keys = append(keys, querycache.ItemKey("students", studentID))
	}
	return keys
}

func (q Applications) List(ctx context.Context, filter application.ListFilter) Result[[]application.Application] {
	params := url.Values{}
	if filter.StudentID > 0 {
		params.Set("studentId", strconv.Itoa(filter.StudentID))
	}
	if filter.UniversityID > 0 {
		params.Set("universityId", strconv.Itoa(filter.UniversityID))
	}
	if filter.Stage != "" {
		params.Set("stage", string(filter.Stage))
	}
	return query[[]application.Application](ctx, q.s, withQuery(querycache.ListKey("applications"), params))
}

func (q Applications) Create() *Mutation[application.Application, application.Application] {
	post := send[application.Application](q.s, http.MethodPost)
	return newMutation(q.s, "Application created",
		func(ctx context.Context, in application.Application) (application.Application, error) {
			return post(ctx, querycache.ListKey("applications"), in)
		},
		func(_ application.Application, out application.Application) []string {
			return applicationKeys(0, out.StudentID)
		},
	)
}

func (q Applications) UpdateStage() *Mutation[StageUpdate, application.Application] {
	patch := send[application.Application](q.s, http.MethodPatch)
	return newMutation(q.s, "Application stage updated",
		func(ctx context.Context, in StageUpdate) (application.Application, error) {
			stage := in.Stage
			return patch(ctx, idPath("applications", in.ID), application.Patch{Stage: &stage})
		},
		func(in StageUpdate, out application.Application) []string {
			return applicationKeys(in.ID, out.StudentID)
		},
	)
}

func (q Applications) Delete() *Mutation[int, struct{}] {
	return newMutation(q.s, "Application deleted",
		func(ctx context.Context, id int) (struct{}, error) {
			return remove(ctx, q.s, "applications", id)
		},
		func(id int, _ struct{}) []string { return applicationKeys(id, 0) },
	)
}
