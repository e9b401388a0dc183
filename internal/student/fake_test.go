package student_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"agency-service/internal/schema"
	"agency-service/internal/student"
)

// memRepo is an in-memory student.Repository.
type memRepo struct {
	mu       sync.Mutex
	nextID   int
	students map[int]student.Student
	err      error
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, students: map[int]student.Student{}}
}

func (m *memRepo) Create(_ context.Context, s *student.Student) (*student.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, existing := range m.students {
		if existing.Email == s.Email {
			return nil, student.ErrEmailExists
		}
	}
	s.ID = m.nextID
	m.nextID++
	m.students[s.ID] = *s
	return s, nil
}

func (m *memRepo) GetAll(_ context.Context) ([]student.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]student.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) GetByID(_ context.Context, id int) (*student.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, student.ErrStudentNotFound
	}
	return &s, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*student.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.Email == email {
			return &s, nil
		}
	}
	return nil, student.ErrStudentNotFound
}

func (m *memRepo) ExistingEmails(_ context.Context, emails []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := map[string]bool{}
	for _, e := range emails {
		for _, s := range m.students {
			if s.Email == e {
				found[e] = true
			}
		}
	}
	return found, nil
}

func (m *memRepo) Update(_ context.Context, s *student.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.students[s.ID]
	if !ok {
		return student.ErrStudentNotFound
	}
	s.CreatedAt = current.CreatedAt
	m.students[s.ID] = *s
	return nil
}

func (m *memRepo) UpdateColumns(_ context.Context, s *student.Student, _ []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[s.ID]; !ok {
		return student.ErrStudentNotFound
	}
	m.students[s.ID] = *s
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[id]; !ok {
		return student.ErrStudentNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *memRepo) StageCounts(_ context.Context) (student.StageCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	counts := student.StageCounts{}
	for _, st := range schema.Stages() {
		counts[st] = 0
	}
	for _, s := range m.students {
		counts[s.Stage]++
	}
	return counts, nil
}

var errDatabaseDown = errors.New("database down")
