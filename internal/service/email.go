package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/copperline/courier/internal/domain"
	"github.com/copperline/courier/internal/email"
	"github.com/copperline/courier/internal/telemetry"
)

// EmailService is the send orchestrator: it validates requests, resolves
// an adapter, dispatches, and persists exactly one log entry per attempt.
// A provider failure never skips the log write.
type EmailService struct {
	store    domain.EmailLogStore
	registry *email.Registry
	logger   *slog.Logger

	defaultFrom    string
	defaultReplyTo string
	baseURL        string
}

// EmailServiceOptions carries the injected configuration values.
// They are read once at startup by the configuration layer.
type EmailServiceOptions struct {
	DefaultFrom    string
	DefaultReplyTo string
	BaseURL        string
	Logger         *slog.Logger
}

// NewEmailService creates the send orchestrator. There is no hidden
// singleton: construct once in main and pass it where needed.
func NewEmailService(store domain.EmailLogStore, registry *email.Registry, opts EmailServiceOptions) *EmailService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &EmailService{
		store:          store,
		registry:       registry,
		logger:         logger,
		defaultFrom:    opts.DefaultFrom,
		defaultReplyTo: opts.DefaultReplyTo,
		baseURL:        opts.BaseURL,
	}
}

// BaseURL returns the configured public base URL, used when building
// lifecycle email links.
func (s *EmailService) BaseURL() string {
	return s.baseURL
}

// Send sends one email on behalf of the authenticated principal in ctx.
// The log entry carries the principal's id when present.
func (s *EmailService) Send(ctx context.Context, req *domain.SendRequest) (*domain.SendReceipt, error) {
	return s.send(ctx, req, domain.UserIDFromContext(ctx))
}

// SendSystem sends one email with no user lineage. Used for
// account-lifecycle notifications that must work before a session exists.
func (s *EmailService) SendSystem(ctx context.Context, req *domain.SendRequest) (*domain.SendReceipt, error) {
	return s.send(ctx, req, nil)
}

func (s *EmailService) send(ctx context.Context, req *domain.SendRequest, userID *uuid.UUID) (*domain.SendReceipt, error) {
	const op = "email.send"

	msg, contentType, err := s.buildMessage(req)
	if err != nil {
		return nil, err
	}

	adapter, err := s.registry.Resolve(req.Provider)
	if err != nil {
		return nil, err
	}

	entryID := uuid.New()

	result, sendErr := adapter.SendEmail(ctx, msg)
	if sendErr != nil {
		result = &email.SendResult{Success: false, Error: sendErr.Error()}
	}

	entry, err := s.persistOutcome(ctx, entryID, adapter.Name(), msg, contentType, req.Tags, userID, result)
	if err != nil {
		return nil, err
	}

	if !result.Success {
		telemetry.RecordEmailFailed(string(adapter.Name()))
		s.logger.Warn("email send failed",
			"email_id", entry.ID,
			"provider", adapter.Name(),
			"error", result.Error,
		)
		// The failed attempt is already durable in the log; now surface it.
		return nil, domain.SendFailed(op, result.Error)
	}

	telemetry.RecordEmailSent(string(adapter.Name()))
	s.logger.Info("email sent",
		"email_id", entry.ID,
		"provider", adapter.Name(),
		"provider_id", result.ProviderID,
	)

	return &domain.SendReceipt{EmailID: entry.ID, ProviderID: result.ProviderID}, nil
}

// SendBulk sends a batch of emails through one provider. A subset
// failing does not fail the whole call; the aggregate reports
// per-element outcomes in input order.
func (s *EmailService) SendBulk(ctx context.Context, reqs []*domain.SendRequest, provider domain.Provider) (*domain.BulkSendResult, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyBulkRequest
	}

	adapter, err := s.registry.Resolve(provider)
	if err != nil {
		return nil, err
	}

	userID := domain.UserIDFromContext(ctx)

	type element struct {
		id          uuid.UUID
		msg         *email.Message
		contentType domain.ContentType
		valErr      error
	}

	elements := make([]element, len(reqs))
	var msgs []*email.Message
	var msgIndex []int // maps transport slice position back to element index

	for i, req := range reqs {
		msg, contentType, verr := s.buildMessage(req)
		if verr != nil {
			elements[i] = element{valErr: verr}
			continue
		}
		elements[i] = element{id: uuid.New(), msg: msg, contentType: contentType}
		msgs = append(msgs, msg)
		msgIndex = append(msgIndex, i)
	}

	// One batch call for transport efficiency; invalid elements never
	// reach the adapter.
	transportResults := adapter.SendBulkEmails(ctx, msgs)

	agg := &domain.BulkSendResult{
		Total:   len(reqs),
		Results: make([]domain.BulkItemOutcome, len(reqs)),
	}

	for i, el := range elements {
		if el.valErr != nil {
			agg.Failed++
			agg.Results[i] = domain.BulkItemOutcome{Index: i, Success: false, Error: el.valErr.Error()}
		}
	}

	for pos, res := range transportResults {
		i := msgIndex[pos]
		el := elements[i]

		entry, perr := s.persistOutcome(ctx, el.id, adapter.Name(), el.msg, el.contentType, reqs[i].Tags, userID, res)
		if perr != nil {
			// The store failing is an internal fault for this element,
			// not grounds to abort the rest of the batch.
			s.logger.Error("failed to persist bulk email log", "error", perr, "index", i)
			agg.Failed++
			agg.Results[i] = domain.BulkItemOutcome{Index: i, Success: false, Error: "failed to record send attempt"}
			continue
		}

		agg.Logs = append(agg.Logs, entry)

		if res.Success {
			telemetry.RecordEmailSent(string(adapter.Name()))
			agg.Successful++
			agg.Results[i] = domain.BulkItemOutcome{
				Index:      i,
				Success:    true,
				EmailID:    entry.ID,
				ProviderID: res.ProviderID,
			}
		} else {
			telemetry.RecordEmailFailed(string(adapter.Name()))
			agg.Failed++
			agg.Results[i] = domain.BulkItemOutcome{
				Index:   i,
				Success: false,
				EmailID: entry.ID,
				Error:   res.Error,
			}
		}
	}

	s.logger.Info("bulk send completed",
		"provider", adapter.Name(),
		"total", agg.Total,
		"successful", agg.Successful,
		"failed", agg.Failed,
	)

	return agg, nil
}

// NormalizeLogQuery applies the paging defaults: limit 50 when unset,
// capped at 500, offset clamped to non-negative.
func NormalizeLogQuery(q domain.EmailLogQuery) domain.EmailLogQuery {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 500 {
		q.Limit = 500
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Logs returns log entries matching the query, newest first.
func (s *EmailService) Logs(ctx context.Context, q domain.EmailLogQuery) ([]*domain.EmailLogEntry, error) {
	return s.store.ListEmailLogs(ctx, NormalizeLogQuery(q))
}

// Stats derives engagement metrics for the given scope from a snapshot
// of matching log entries.
func (s *EmailService) Stats(ctx context.Context, userID *uuid.UUID, provider *domain.Provider) (*domain.EmailStats, error) {
	entries, err := s.store.ListEmailLogs(ctx, domain.EmailLogQuery{
		UserID:   userID,
		Provider: provider,
		Limit:    statsSnapshotLimit,
	})
	if err != nil {
		return nil, err
	}

	stats := ComputeStats(entries)
	return &stats, nil
}

// buildMessage validates and normalizes one request into an adapter
// message. Fails before any log entry or network call.
func (s *EmailService) buildMessage(req *domain.SendRequest) (*email.Message, domain.ContentType, error) {
	if len(req.To) == 0 {
		return nil, "", ErrMissingRecipients
	}

	to, err := email.ValidateAddresses(req.To...)
	if err != nil {
		return nil, "", err
	}

	var cc, bcc []string
	if len(req.Cc) > 0 {
		if cc, err = email.ValidateAddresses(req.Cc...); err != nil {
			return nil, "", err
		}
	}
	if len(req.Bcc) > 0 {
		if bcc, err = email.ValidateAddresses(req.Bcc...); err != nil {
			return nil, "", err
		}
	}

	from := req.From
	if from == "" {
		from = s.defaultFrom
	}
	if from == "" {
		return nil, "", ErrMissingFrom
	}
	if _, err = email.ValidateAddresses(from); err != nil {
		return nil, "", err
	}

	replyTo := req.ReplyTo
	if replyTo == "" {
		replyTo = s.defaultReplyTo
	}
	if replyTo != "" {
		if _, err = email.ValidateAddresses(replyTo); err != nil {
			return nil, "", err
		}
	}

	html := email.SanitizeContent(req.HTML)
	text := email.SanitizeContent(req.Text)

	contentType, err := email.DetermineContentType(html, text)
	if err != nil {
		return nil, "", err
	}

	msg := &email.Message{
		To:          to,
		From:        from,
		Subject:     req.Subject,
		HTMLBody:    html,
		TextBody:    text,
		Cc:          cc,
		Bcc:         bcc,
		ReplyTo:     replyTo,
		Tags:        req.Tags,
		Attachments: req.Attachments,
	}

	return msg, contentType, nil
}

// persistOutcome writes the mandatory log entry for one send attempt.
// This happens before the operation returns or raises, so failures are
// always observable via the log.
func (s *EmailService) persistOutcome(
	ctx context.Context,
	id uuid.UUID,
	provider domain.Provider,
	msg *email.Message,
	contentType domain.ContentType,
	tags []domain.Tag,
	userID *uuid.UUID,
	result *email.SendResult,
) (*domain.EmailLogEntry, error) {
	now := time.Now().UTC()

	encodedTags, err := email.EncodeTags(tags)
	if err != nil {
		return nil, domain.Internal(err, "email.log", "failed to encode tags")
	}

	// The content column stores one body; for mixed sends the HTML body
	// is canonical and contentType records that text was supplied too.
	content := msg.HTMLBody
	if content == "" {
		content = msg.TextBody
	}

	toAddress := email.JoinAddresses(msg.To)
	if toAddress == nil {
		return nil, ErrMissingRecipients
	}

	entry := &domain.EmailLogEntry{
		ID:          id,
		FromAddress: msg.From,
		ToAddress:   *toAddress,
		CcAddress:   email.JoinAddresses(msg.Cc),
		BccAddress:  email.JoinAddresses(msg.Bcc),
		Subject:     msg.Subject,
		Content:     content,
		ContentType: contentType,
		Tags:        encodedTags,
		Provider:    provider,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if msg.ReplyTo != "" {
		replyTo := msg.ReplyTo
		entry.ReplyToAddress = &replyTo
	}

	if result.Success {
		entry.Status = domain.StatusSent
		sentAt := now
		entry.SentAt = &sentAt
		if result.ProviderID != "" {
			providerID := result.ProviderID
			entry.ProviderID = &providerID
		}
	} else {
		entry.Status = domain.StatusFailed
		failedAt := now
		entry.FailedAt = &failedAt
		errMsg := result.Error
		entry.ErrorMessage = &errMsg
	}

	if err := s.store.CreateEmailLog(ctx, entry); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "email.log", "failed to persist email log entry")
	}

	return entry, nil
}
