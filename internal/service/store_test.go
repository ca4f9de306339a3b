package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/copperline/courier/internal/domain"
)

// memStore is an in-memory EmailLogStore used across the service tests.
// It preserves insertion order and applies status updates the same way
// the postgres store does.
type memStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*domain.EmailLogEntry
	order   []uuid.UUID

	createErr error
	updateErr error

	createCalls int
	updateCalls int
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[uuid.UUID]*domain.EmailLogEntry)}
}

func (s *memStore) CreateEmailLog(ctx context.Context, entry *domain.EmailLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}

	clone := *entry
	s.entries[entry.ID] = &clone
	s.order = append(s.order, entry.ID)
	return nil
}

func (s *memStore) GetEmailLog(ctx context.Context, id uuid.UUID) (*domain.EmailLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, domain.NotFound("emaillog.get", "email log", id.String())
	}
	clone := *entry
	return &clone, nil
}

func (s *memStore) GetEmailLogByProviderID(ctx context.Context, providerID string) (*domain.EmailLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.ProviderID != nil && *entry.ProviderID == providerID {
			clone := *entry
			return &clone, nil
		}
	}
	return nil, domain.NotFound("emaillog.get", "email log", providerID)
}

func (s *memStore) ListEmailLogs(ctx context.Context, q domain.EmailLogQuery) ([]*domain.EmailLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.EmailLogEntry
	// Newest first.
	for i := len(s.order) - 1; i >= 0; i-- {
		entry := s.entries[s.order[i]]
		if q.UserID != nil && (entry.UserID == nil || *entry.UserID != *q.UserID) {
			continue
		}
		if q.Status != nil && entry.Status != *q.Status {
			continue
		}
		if q.Provider != nil && entry.Provider != *q.Provider {
			continue
		}
		clone := *entry
		out = append(out, &clone)
	}

	if q.Offset > 0 {
		if int(q.Offset) >= len(out) {
			return nil, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && int(q.Limit) < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *memStore) UpdateEmailLogStatus(ctx context.Context, id uuid.UUID, update domain.StatusUpdate) (*domain.EmailLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updateCalls++
	if s.updateErr != nil {
		return nil, s.updateErr
	}

	entry, ok := s.entries[id]
	if !ok {
		return nil, domain.NotFound("emaillog.update", "email log", id.String())
	}

	entry.Status = update.Status
	entry.ErrorMessage = update.ErrorMessage
	ts := update.OccurredAt

	switch update.Status {
	case domain.StatusSent:
		entry.SentAt = &ts
	case domain.StatusDelivered:
		entry.DeliveredAt = &ts
	case domain.StatusOpened:
		entry.OpenedAt = &ts
	case domain.StatusClicked:
		entry.ClickedAt = &ts
	case domain.StatusBounced:
		entry.BouncedAt = &ts
	case domain.StatusComplained:
		entry.ComplainedAt = &ts
	case domain.StatusFailed:
		entry.FailedAt = &ts
	}

	clone := *entry
	return &clone, nil
}
