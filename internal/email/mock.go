package email

import (
	"context"
	"fmt"
	"sync"

	"github.com/copperline/courier/internal/domain"
)

// MockAdapter is a deterministic in-memory adapter for development and
// tests. It records every message it receives and can be programmed to
// fail specific sends.
type MockAdapter struct {
	mu sync.Mutex

	// ProviderName lets tests register the mock under any provider name.
	// Defaults to domain.ProviderMock.
	ProviderName domain.Provider

	// FailWith, when non-nil, makes every send return this error.
	FailWith error

	// FailWhen, when non-nil, is consulted per message; a non-nil return
	// fails that send only. Keyed off message content rather than call
	// order because bulk sends dispatch concurrently within a batch.
	FailWhen func(msg *Message) error

	calls    int
	Messages []*Message
}

// NewMockAdapter creates a mock adapter that succeeds every send.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{ProviderName: domain.ProviderMock}
}

// Name returns the provider identifier.
func (a *MockAdapter) Name() domain.Provider {
	if a.ProviderName != "" {
		return a.ProviderName
	}
	return domain.ProviderMock
}

// SendEmail records the message and returns a synthetic message id.
func (a *MockAdapter) SendEmail(ctx context.Context, msg *Message) (*SendResult, error) {
	a.mu.Lock()
	idx := a.calls
	a.calls++
	a.Messages = append(a.Messages, msg)
	a.mu.Unlock()

	if a.FailWith != nil {
		return nil, a.FailWith
	}
	if a.FailWhen != nil {
		if err := a.FailWhen(msg); err != nil {
			return nil, err
		}
	}

	return &SendResult{Success: true, ProviderID: fmt.Sprintf("mock-%d", idx)}, nil
}

// SendBulkEmails dispatches messages in bounded concurrent batches.
func (a *MockAdapter) SendBulkEmails(ctx context.Context, msgs []*Message) []*SendResult {
	return sendInBatches(ctx, msgs, a.SendEmail)
}

// Sent returns how many messages the adapter has received.
func (a *MockAdapter) Sent() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}
