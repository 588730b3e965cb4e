package service

import (
	"context"
	"sync"
	"time"

	"github.com/dekarrin/grammarlab/server/dao"
	"github.com/google/uuid"
)

// memStore is a minimal in-memory dao.Store used only by this package's
// tests, standing in for the sqlite-backed store so service-layer logic can
// be exercised without a real database.
type memStore struct {
	mu sync.Mutex

	grammars map[uuid.UUID]dao.Grammar
	runs     map[uuid.UUID]dao.AnalysisRun
	users    map[uuid.UUID]dao.User
}

func newMemStore() *memStore {
	return &memStore{
		grammars: map[uuid.UUID]dao.Grammar{},
		runs:     map[uuid.UUID]dao.AnalysisRun{},
		users:    map[uuid.UUID]dao.User{},
	}
}

func (s *memStore) Grammars() dao.GrammarRepository     { return (*memGrammars)(s) }
func (s *memStore) AnalysisRuns() dao.AnalysisRunRepository { return (*memRuns)(s) }
func (s *memStore) Users() dao.UserRepository            { return (*memUsers)(s) }
func (s *memStore) Close() error                         { return nil }

type memGrammars memStore

func (m *memGrammars) Create(ctx context.Context, g dao.Grammar) (dao.Grammar, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.grammars {
		if existing.Name == g.Name {
			return dao.Grammar{}, dao.ErrConstraintViolation
		}
	}

	g.ID = uuid.New()
	g.Created = time.Now()
	g.Modified = g.Created
	s.grammars[g.ID] = g
	return g, nil
}

func (m *memGrammars) GetByID(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.grammars[id]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}
	return g, nil
}

func (m *memGrammars) GetAll(ctx context.Context) ([]dao.Grammar, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []dao.Grammar
	for _, g := range s.grammars {
		all = append(all, g)
	}
	return all, nil
}

func (m *memGrammars) Update(ctx context.Context, id uuid.UUID, g dao.Grammar) (dao.Grammar, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grammars[id]; !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}
	g.ID = id
	s.grammars[id] = g
	return g, nil
}

func (m *memGrammars) Delete(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.grammars[id]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}
	delete(s.grammars, id)
	return g, nil
}

func (m *memGrammars) Close() error { return nil }

type memRuns memStore

func (m *memRuns) Create(ctx context.Context, run dao.AnalysisRun) (dao.AnalysisRun, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	run.ID = uuid.New()
	run.Created = time.Now()
	s.runs[run.ID] = run
	return run, nil
}

func (m *memRuns) GetByID(ctx context.Context, id uuid.UUID) (dao.AnalysisRun, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return dao.AnalysisRun{}, dao.ErrNotFound
	}
	return run, nil
}

func (m *memRuns) GetAllByGrammar(ctx context.Context, grammarID uuid.UUID) ([]dao.AnalysisRun, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []dao.AnalysisRun
	for _, r := range s.runs {
		if r.GrammarID == grammarID {
			all = append(all, r)
		}
	}
	return all, nil
}

func (m *memRuns) Close() error { return nil }

type memUsers memStore

func (m *memUsers) Create(ctx context.Context, u dao.User) (dao.User, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return dao.User{}, dao.ErrConstraintViolation
		}
	}
	u.ID = uuid.New()
	u.Created = time.Now()
	u.Modified = u.Created
	s.users[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return dao.User{}, dao.ErrNotFound
}

func (m *memUsers) GetAll(ctx context.Context) ([]dao.User, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []dao.User
	for _, u := range s.users {
		all = append(all, u)
	}
	return all, nil
}

func (m *memUsers) Update(ctx context.Context, id uuid.UUID, u dao.User) (dao.User, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return dao.User{}, dao.ErrNotFound
	}
	u.ID = id
	s.users[id] = u
	return u, nil
}

func (m *memUsers) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	s := (*memStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	delete(s.users, id)
	return u, nil
}

func (m *memUsers) Close() error { return nil }
