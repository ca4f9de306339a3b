package email

import (
	"context"
	"testing"

	"github.com/copperline/courier/internal/domain"
)

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry(domain.ProviderMock)
	mock := NewMockAdapter()
	reg.Register(mock)

	// Explicit name resolves directly
	a, err := reg.Resolve(domain.ProviderMock)
	if err != nil {
		t.Fatalf("Resolve(mock) unexpected error: %v", err)
	}
	if a.Name() != domain.ProviderMock {
		t.Errorf("Resolve(mock).Name() = %s", a.Name())
	}

	// Empty name falls back to the default
	a, err = reg.Resolve("")
	if err != nil {
		t.Fatalf("Resolve(\"\") unexpected error: %v", err)
	}
	if a.Name() != domain.ProviderMock {
		t.Errorf("Resolve(\"\") resolved %s, want default", a.Name())
	}

	// Unregistered name falls back to the default rather than failing
	a, err = reg.Resolve(domain.ProviderSendGrid)
	if err != nil {
		t.Fatalf("Resolve(sendgrid) unexpected error: %v", err)
	}
	if a.Name() != domain.ProviderMock {
		t.Errorf("Resolve(sendgrid) resolved %s, want default fallback", a.Name())
	}
}

func TestRegistryResolveNoDefault(t *testing.T) {
	reg := NewRegistry(domain.ProviderResend)

	_, err := reg.Resolve(domain.ProviderResend)
	if err == nil {
		t.Fatal("Resolve on empty registry should fail")
	}
	if domain.ErrorCode(err) != domain.ECONFIG {
		t.Errorf("error code = %s, want %s", domain.ErrorCode(err), domain.ECONFIG)
	}
}

func TestBrevoStubFailsDeterministically(t *testing.T) {
	stub := NewBrevoAdapter("test-key")

	_, err := stub.SendEmail(context.Background(), &Message{To: []string{"a@b.com"}})
	if domain.ErrorCode(err) != domain.ENOTIMPL {
		t.Errorf("brevo stub error code = %s, want %s", domain.ErrorCode(err), domain.ENOTIMPL)
	}

	results := stub.SendBulkEmails(context.Background(), []*Message{
		{To: []string{"a@b.com"}},
		{To: []string{"c@d.com"}},
	})
	for i, res := range results {
		if res.Success {
			t.Errorf("brevo stub bulk result %d should fail", i)
		}
	}
}
