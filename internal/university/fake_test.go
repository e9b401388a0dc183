package university_test

import (
	"context"
	"sort"
	"sync"

	"agency-service/internal/university"
)

type memRepo struct {
	mu           sync.Mutex
	nextID       int
	universities map[int]university.University
	programs     map[int]university.Program
}

func newMemRepo() *memRepo {
	return &memRepo{
		nextID:       1,
		universities: map[int]university.University{},
		programs:     map[int]university.Program{},
	}
}

func (m *memRepo) Create(_ context.Context, u *university.University) (*university.University, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.nextID
	m.nextID++
	m.universities[u.ID] = *u
	return u, nil
}

func (m *memRepo) GetAll(_ context.Context) ([]university.University, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []university.University{}
	for _, u := range m.universities {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memRepo) GetByID(_ context.Context, id int) (*university.University, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.universities[id]
	if !ok {
		return nil, university.ErrUniversityNotFound
	}
	for _, p := range m.programs {
		if p.UniversityID == id {
			u.Programs = append(u.Programs, &p)
		}
	}
	return &u, nil
}

func (m *memRepo) Update(_ context.Context, u *university.University) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.universities[u.ID]
	if !ok {
		return university.ErrUniversityNotFound
	}
	u.CreatedAt = current.CreatedAt
	m.universities[u.ID] = *u
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.universities[id]; !ok {
		return university.ErrUniversityNotFound
	}
	delete(m.universities, id)
	for pid, p := range m.programs {
		if p.UniversityID == id {
			delete(m.programs, pid)
		}
	}
	return nil
}

func (m *memRepo) CreateProgram(_ context.Context, p *university.Program) (*university.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID
	m.nextID++
	m.programs[p.ID] = *p
	return p, nil
}

func (m *memRepo) GetProgram(_ context.Context, id int) (*university.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.programs[id]
	if !ok {
		return nil, university.ErrProgramNotFound
	}
	return &p, nil
}

func (m *memRepo) ProgramsByUniversity(_ context.Context, universityID int) ([]university.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []university.Program{}
	for _, p := range m.programs {
		if p.UniversityID == universityID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
