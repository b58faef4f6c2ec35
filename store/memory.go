package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ghiac/ephdash/model"
)

// ErrNotFound is returned when no environment exists for a name.
var ErrNotFound = errors.New("env not found")

// EnvStore defines the interface for environment storage
type EnvStore interface {
	Get(ctx context.Context, name string) (*model.Env, error)
	Put(ctx context.Context, env *model.Env) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]*model.Env, error)

	// AppendLogs adds lines to the end of an environment's log.
	AppendLogs(ctx context.Context, name string, lines []string) error
	// Logs returns the last limit lines, oldest first. limit <= 0 returns all.
	Logs(ctx context.Context, name string, limit int) ([]string, error)

	Close() error
}

// MemoryStore is an in-memory implementation of EnvStore
type MemoryStore struct {
	envs map[string]*model.Env
	logs map[string][]string
	mu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory env store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		envs: make(map[string]*model.Env),
		logs: make(map[string][]string),
	}
}

// Get retrieves an environment by name
func (s *MemoryStore) Get(ctx context.Context, name string) (*model.Env, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	env, ok := s.envs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	cp := *env
	return &cp, nil
}

// Put stores or updates an environment
func (s *MemoryStore) Put(ctx context.Context, env *model.Env) error {
	if env == nil {
		return fmt.Errorf("env cannot be nil")
	}
	if env.Name == "" {
		return fmt.Errorf("env name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	env.UpdatedAt = time.Now()
	if env.CreatedAt.IsZero() {
		env.CreatedAt = env.UpdatedAt
	}
	cp := *env
	cp.Logs = nil
	s.envs[env.Name] = &cp
	return nil
}

// Delete removes an environment and its logs
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.envs, name)
	delete(s.logs, name)
	return nil
}

// List returns all environments ordered by name
func (s *MemoryStore) List(ctx context.Context) ([]*model.Env, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	envs := make([]*model.Env, 0, len(s.envs))
	for _, env := range s.envs {
		cp := *env
		envs = append(envs, &cp)
	}
	sort.Slice(envs, func(i, j int) bool { return envs[i].Name < envs[j].Name })
	return envs, nil
}

// AppendLogs adds lines to an environment's log
func (s *MemoryStore) AppendLogs(ctx context.Context, name string, lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.envs[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s.logs[name] = append(s.logs[name], splitLines(lines)...)
	return nil
}

// Logs returns the tail of an environment's log
func (s *MemoryStore) Logs(ctx context.Context, name string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return tail(s.logs[name], limit), nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}
