package dataaccess

import (
	"context"
	"fmt"
	"net/http"

	"agency-service/internal/querycache"
	"agency-service/internal/university"
)

type Universities struct{ s *Store }

type UniversityUpdate struct {
	ID         int
	University university.University
}

func universityKeys(id int) []string {
	keys := []string{querycache.ListKey("universities")}
	if id > 0 {
		keys = append(keys, querycache.ItemKey("universities", id))
	}
	return keys
}

func programsKey(universityID int) string {
	return fmt.Sprintf("/api/programs/university/%d", universityID)
}

func (q Universities) List(ctx context.Context) Result[[]university.University] {
	return query[[]university.University](ctx, q.s, querycache.ListKey("universities"))
}

func (q Universities) Get(ctx context.Context, id int) Result[university.University] {
	return query[university.University](ctx, q.s, querycache.ItemKey("universities", id))
}

func (q Universities) Programs(ctx context.Context, id int) Result[[]university.Program] {
	return q.s.Programs().ByUniversity(ctx, id)
}

func (q Universities) Create() *Mutation[university.University, university.University] {
	post := send[university.University](q.s, http.MethodPost)
	return newMutation(q.s, "University created",
		func(ctx context.Context, in university.University) (university.University, error) {
			return post(ctx, querycache.ListKey("universities"), in)
		},
		func(university.University, university.University) []string { return universityKeys(0) },
	)
}

func (q Universities) Update() *Mutation[UniversityUpdate, university.University] {
	put := send[university.University](q.s, http.MethodPut)
	return newMutation(q.s, "University updated",
		func(ctx context.Context, in UniversityUpdate) (university.University, error) {
			return put(ctx, idPath("universities", in.ID), in.University)
		},
		func(in UniversityUpdate, _ university.University) []string { return universityKeys(in.ID) },
	)
}

func (q Universities) Delete() *Mutation[int, struct{}] {
	return newMutation(q.s, "University deleted",
		func(ctx context.Context, id int) (struct{}, error) {
			return remove(ctx, q.s, "universities", id)
		},
		func(id int, _ struct{}) []string { return append(universityKeys(id), programsKey(id)) },
	)
}

type Programs struct{ s *Store }

func (q Programs) ByUniversity(ctx context.Context, universityID int) Result[[]university.Program] {
	return query[[]university.Program](ctx, q.s, programsKey(universityID))
}

func (q Programs) Create() *Mutation[university.Program, university.Program] {
	post := send[university.Program](q.s, http.MethodPost)
	return newMutation(q.s, "Program created",
		func(ctx context.Context, in university.Program) (university.Program, error) {
			return post(ctx, "/api/programs", in)
		},
		func(in university.Program, _ university.Program) []string {
			return []string{programsKey(in.UniversityID), querycache.ItemKey("universities", in.UniversityID)}
		},
	)
}
