package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copperline/courier/internal/domain"
	"github.com/copperline/courier/internal/email"
)

func TestSendVerificationLifecycle(t *testing.T) {
	mock := email.NewMockAdapter()
	svc, store := newTestService(t, mock)

	expires := time.Now().Add(24 * time.Hour)
	receipt, err := svc.SendVerification(context.Background(),
		"alice@example.com", "Alice", "https://courier.test/verify?token=abc", expires)
	require.NoError(t, err)

	entry, err := store.GetEmailLog(context.Background(), receipt.EmailID)
	require.NoError(t, err)
	assert.Equal(t, "Verify Your Email Address", entry.Subject)
	assert.Equal(t, domain.ContentTypeMixed, entry.ContentType)
	assert.Nil(t, entry.UserID, "lifecycle sends carry no user lineage")
	assert.Contains(t, entry.Content, "https://courier.test/verify?token=abc")

	require.Len(t, mock.Messages, 1)
	msg := mock.Messages[0]
	assert.Contains(t, msg.TextBody, "Alice")
	assert.NotContains(t, msg.TextBody, "<p>", "plain-text body should carry no markup")
}

func TestSendWelcomeDefaultsLoginURL(t *testing.T) {
	mock := email.NewMockAdapter()
	store := newMemStore()
	registry := email.NewRegistry(domain.ProviderMock)
	registry.Register(mock)

	svc := NewEmailService(store, registry, EmailServiceOptions{
		DefaultFrom: "noreply@courier.test",
		BaseURL:     "https://app.courier.test",
	})

	_, err := svc.SendWelcome(context.Background(), "bob@example.com", "Bob", "")
	require.NoError(t, err)

	require.Len(t, mock.Messages, 1)
	assert.Contains(t, mock.Messages[0].HTMLBody, "https://app.courier.test")
}
