package dataaccess

import (
	"context"
	"io"
	"net/http"

	"agency-service/internal/querycache"
	"agency-service/internal/student"
)

type Students struct{ s *Store }

type StudentUpdate struct {
	ID      int
	Student student.Student
}

type StudentPatch struct {
	ID    int
	Patch student.Patch
}

// ImportFile is a CSV upload for POST /api/students/import.
type ImportFile struct {
	Name string
	Body io.Reader
}

// studentKeys covers the list, the stage counts and, when id > 0, the item.
func studentKeys(id int) []string {
	keys := []string{querycache.ListKey("students"), StageCountsKey}
	if id > 0 {
		keys = append(keys, querycache.ItemKey("students", id))
	}
	return keys
}

func (q Students) List(ctx context.Context) Result[[]student.Student] {
	return query[[]student.Student](ctx, q.s, querycache.ListKey("students"))
}

func (q Students) Get(ctx context.Context, id int) Result[student.Student] {
	return query[student.Student](ctx, q.s, querycache.ItemKey("students", id))
}

// Filtered narrows the cached list by search text and filter token.
// Unknown tokens leave the list as is.
func (q Students) Filtered(ctx context.Context, token, search string) Result[[]student.Student] {
	list := q.List(ctx)
	if !list.IsOk() {
		return list
	}
	return Ok(student.Filter(student.Search(list.Data(), search), token))
}

func (q Students) StageCounts(ctx context.Context) Result[student.StageCounts] {
	return query[student.StageCounts](ctx, q.s, StageCountsKey)
}

func (q Students) Create() *Mutation[student.Student, student.Student] {
	post := send[student.Student](q.s, http.MethodPost)
	return newMutation(q.s, "Student created",
		func(ctx context.Context, in student.Student) (student.Student, error) {
			return post(ctx, querycache.ListKey("students"), in)
		},
		func(student.Student, student.Student) []string { return studentKeys(0) },
	)
}

func (q Students) Update() *Mutation[StudentUpdate, student.Student] {
	put := send[student.Student](q.s, http.MethodPut)
	return newMutation(q.s, "Student updated",
		func(ctx context.Context, in StudentUpdate) (student.Student, error) {
			return put(ctx, idPath("students", in.ID), in.Student)
		},
		func(in StudentUpdate, _ student.Student) []string { return studentKeys(in.ID) },
	)
}

// Patch sends only the set fields. Derived views such as stage counts are
// refreshed along with the list and the item.
func (q Students) Patch() *Mutation[StudentPatch, student.Student] {
	patch := send[student.Student](q.s, http.MethodPatch)
	return newMutation(q.s, "Student updated",
		func(ctx context.Context, in StudentPatch) (student.Student, error) {
			return patch(ctx, idPath("students", in.ID), in.Patch)
		},
		func(in StudentPatch, _ student.Student) []string { return studentKeys(in.ID) },
	)
}

func (q Students) Delete() *Mutation[int, struct{}] {
	return newMutation(q.s, "Student deleted",
		func(ctx context.Context, id int) (struct{}, error) {
			return remove(ctx, q.s, "students", id)
		},
		func(id int, _ struct{}) []string { return studentKeys(id) },
	)
}

// Import uploads a CSV. The returned partition is the server's, untouched.
func (q Students) Import() *Mutation[ImportFile, student.ImportResult] {
	return newMutation(q.s, "Import finished",
		func(ctx context.Context, in ImportFile) (student.ImportResult, error) {
			var out student.ImportResult
			err := q.s.api.Upload(ctx, "/api/students/import", "file", in.Name, in.Body, &out)
			return out, err
		},
		func(ImportFile, student.ImportResult) []string { return studentKeys(0) },
	)
}
