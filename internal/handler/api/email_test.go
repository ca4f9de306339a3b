package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copperline/courier/internal/domain"
	"github.com/copperline/courier/internal/email"
	"github.com/copperline/courier/internal/service"
)

// listStore keeps entries in insertion order.
type listStore struct {
	entries []*domain.EmailLogEntry
}

func (s *listStore) CreateEmailLog(ctx context.Context, entry *domain.EmailLogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *listStore) GetEmailLog(ctx context.Context, id uuid.UUID) (*domain.EmailLogEntry, error) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.NotFound("emaillog.get", "email log", id.String())
}

func (s *listStore) GetEmailLogByProviderID(ctx context.Context, providerID string) (*domain.EmailLogEntry, error) {
	for _, e := range s.entries {
		if e.ProviderID != nil && *e.ProviderID == providerID {
			return e, nil
		}
	}
	return nil, domain.NotFound("emaillog.get", "email log", providerID)
}

func (s *listStore) ListEmailLogs(ctx context.Context, q domain.EmailLogQuery) ([]*domain.EmailLogEntry, error) {
	var out []*domain.EmailLogEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if q.Status != nil && e.Status != *q.Status {
			continue
		}
		out = append(out, e)
	}
	if q.Limit > 0 && int(q.Limit) < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *listStore) UpdateEmailLogStatus(ctx context.Context, id uuid.UUID, update domain.StatusUpdate) (*domain.EmailLogEntry, error) {
	entry, err := s.GetEmailLog(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.Status = update.Status
	return entry, nil
}

func newHandler(t *testing.T) (*EmailHandler, *listStore) {
	t.Helper()

	store := &listStore{}
	registry := email.NewRegistry(domain.ProviderMock)
	registry.Register(email.NewMockAdapter())

	svc := service.NewEmailService(store, registry, service.EmailServiceOptions{
		DefaultFrom: "noreply@courier.test",
	})
	return NewEmailHandler(svc), store
}

func TestSendEndpoint(t *testing.T) {
	h, store := newHandler(t)

	body := `{"to":["alice@example.com"],"subject":"Hello","html":"<p>Hi</p>"}`
	r := httptest.NewRequest(http.MethodPost, "/email/send", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Send(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp sendResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.EmailID)
	assert.NotEmpty(t, resp.ProviderID)
	assert.NotEmpty(t, resp.Message)
	assert.Len(t, store.entries, 1)
}

func TestSendEndpointRejectsBadJSON(t *testing.T) {
	h, store := newHandler(t)

	r := httptest.NewRequest(http.MethodPost, "/email/send", strings.NewReader("{"))
	w := httptest.NewRecorder()
	h.Send(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.entries)
}

func TestSendEndpointValidationError(t *testing.T) {
	h, _ := newHandler(t)

	body := `{"to":["nope"],"subject":"Hello","html":"<p>Hi</p>"}`
	r := httptest.NewRequest(http.MethodPost, "/email/send", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Send(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, domain.EINVALID, resp.Error.Code)
}

func TestSendBulkEndpoint(t *testing.T) {
	h, _ := newHandler(t)

	payload := bulkSendRequest{
		Emails: []*domain.SendRequest{
			{To: []string{"a@example.com"}, Subject: "one", Text: "x"},
			{To: []string{"b@example.com"}, Subject: "two", Text: "y"},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/email/send-bulk", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h.SendBulk(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success    bool `json:"success"`
		Total      int  `json:"total"`
		Successful int  `json:"successful"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, resp.Successful)
}

func TestLogsEndpoint(t *testing.T) {
	h, _ := newHandler(t)

	// Seed through the send endpoint so entries look real.
	body := `{"to":["alice@example.com"],"subject":"Hello","text":"hi"}`
	r := httptest.NewRequest(http.MethodPost, "/email/send", strings.NewReader(body))
	h.Send(httptest.NewRecorder(), r)

	r = httptest.NewRequest(http.MethodGet, "/email/logs?status=sent", nil)
	w := httptest.NewRecorder()
	h.Logs(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	// Decode into a raw map so a renamed field can't hide behind a
	// matching struct tag.
	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&raw))
	for _, key := range []string{"success", "emailLogs", "count", "query"} {
		assert.Contains(t, raw, key)
	}

	var resp logsResponse
	require.NoError(t, json.Unmarshal(mustMarshal(t, raw), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	assert.Len(t, resp.EmailLogs, 1)

	// The echoed query reflects the applied scope, defaults included.
	require.NotNil(t, resp.Query.Status)
	assert.Equal(t, domain.StatusSent, *resp.Query.Status)
	assert.Equal(t, int32(50), resp.Query.Limit)
	assert.Equal(t, int32(0), resp.Query.Offset)
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestLogsEndpointRejectsUnknownStatus(t *testing.T) {
	h, _ := newHandler(t)

	r := httptest.NewRequest(http.MethodGet, "/email/logs?status=vanished", nil)
	w := httptest.NewRecorder()
	h.Logs(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	h, store := newHandler(t)

	store.entries = append(store.entries,
		&domain.EmailLogEntry{ID: uuid.New(), Status: domain.StatusDelivered},
		&domain.EmailLogEntry{ID: uuid.New(), Status: domain.StatusOpened},
	)

	userID := uuid.New()
	r := httptest.NewRequest(http.MethodGet, "/email/stats?userId="+userID.String(), nil)
	w := httptest.NewRecorder()
	h.Stats(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&raw))
	assert.Contains(t, raw, "userId")

	var resp statsResponse
	require.NoError(t, json.Unmarshal(mustMarshal(t, raw), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Stats)
	assert.Equal(t, 2, resp.Stats.Total)
	assert.InDelta(t, 100.0, resp.Stats.OpenRate, 0.001)
	require.NotNil(t, resp.UserID)
	assert.Equal(t, userID, *resp.UserID)
}

func TestStatsEndpointRejectsBadUserID(t *testing.T) {
	h, _ := newHandler(t)

	r := httptest.NewRequest(http.MethodGet, "/email/stats?userId=abc", nil)
	w := httptest.NewRecorder()
	h.Stats(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
