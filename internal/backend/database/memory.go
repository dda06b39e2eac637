package database

import (
	"context"
	"sync"
)

type MemoryDatabase struct {
	mu          sync.RWMutex
	submissions []*Submission
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{}
}

func (m *MemoryDatabase) Append(_ context.Context, submission *Submission) error {
	stored := *submission

	m.mu.Lock()
	m.submissions = append(m.submissions, &stored)
	m.mu.Unlock()
	return nil
}

func (m *MemoryDatabase) All(_ context.Context) ([]*Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Submission, len(m.submissions))
	for i, s := range m.submissions {
		c := *s
		out[i] = &c
	}
	return out, nil
}

func (m *MemoryDatabase) GetByID(_ context.Context, id string) (*Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.submissions {
		if s.ID == id {
			c := *s
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryDatabase) Close() error {
	return nil
}
