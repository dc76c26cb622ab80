package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/taskloop/taskloop-go/internal/model"
	"github.com/taskloop/taskloop-go/internal/repository"
)

// memUserStore is an in-memory UserStore returning the repository sentinels.
type memUserStore struct {
	mu      sync.Mutex
	seq     int
	users   map[string]*model.User
	avatars map[string][]byte
	deleted []string
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		users:   make(map[string]*model.User),
		avatars: make(map[string][]byte),
	}
}

func (s *memUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	s.seq++
	user.ID = fmt.Sprintf("user-%d", s.seq)
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *memUserStore) Update(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, u := range s.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *memUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	delete(s.avatars, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *memUserStore) SetAvatar(_ context.Context, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	s.avatars[id] = data
	return nil
}

func (s *memUserStore) ClearAvatar(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.avatars[id]; !ok {
		return repository.ErrNoAvatar
	}
	delete(s.avatars, id)
	return nil
}

func (s *memUserStore) GetAvatar(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return nil, repository.ErrUserNotFound
	}
	data, ok := s.avatars[id]
	if !ok {
		return nil, repository.ErrNoAvatar
	}
	return data, nil
}

// memTaskStore is an in-memory TaskStore. It records the owners passed to
// DeleteByOwner so cascade ordering can be asserted.
type memTaskStore struct {
	mu     sync.Mutex
	seq    int
	tasks  map[string]*model.Task
	purged []string
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[string]*model.Task)}
}

func (s *memTaskStore) Create(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	task.ID = fmt.Sprintf("task-%d", s.seq)
	clone := *task
	s.tasks[task.ID] = &clone
	return nil
}

func (s *memTaskStore) GetByID(_ context.Context, ownerID, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

func (s *memTaskStore) List(_ context.Context, ownerID string, filter model.ListFilter) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Task{}
	for i := 1; i <= s.seq; i++ {
		t, ok := s.tasks[fmt.Sprintf("task-%d", i)]
		if !ok || t.OwnerID != ownerID {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		out = append(out, *t)
	}
	if filter.Skip > 0 {
		if filter.Skip >= len(out) {
			out = nil
		} else {
			out = out[filter.Skip:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *memTaskStore) Update(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return repository.ErrTaskNotFound
	}
	clone := *task
	s.tasks[task.ID] = &clone
	return nil
}

func (s *memTaskStore) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return repository.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memTaskStore) DeleteByOwner(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tasks {
		if t.OwnerID == ownerID {
			delete(s.tasks, id)
		}
	}
	s.purged = append(s.purged, ownerID)
	return nil
}

// memTokenStore is an in-memory TokenStore preserving insertion order.
type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string][]string
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string][]string)}
}

func (s *memTokenStore) Insert(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = append(s.tokens[userID], token)
	return nil
}

func (s *memTokenStore) Exists(_ context.Context, userID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens[userID] {
		if t == token {
			return true, nil
		}
	}
	return false, nil
}

func (s *memTokenStore) DeleteOne(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.tokens[userID]
	for i, t := range list {
		if t == token {
			s.tokens[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memTokenStore) DeleteAll(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}

// noopMailer records notification calls without sending anything.
type noopMailer struct {
	mu            sync.Mutex
	welcomes      []string
	cancellations []string
}

func (m *noopMailer) SendWelcome(email, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomes = append(m.welcomes, email)
}

func (m *noopMailer) SendCancellation(email, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancellations = append(m.cancellations, email)
}
