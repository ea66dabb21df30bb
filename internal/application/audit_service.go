package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// AuditRepository captures the persistence interactions for the audit trail.
type AuditRepository interface {
	AppendAuditEntry(ctx context.Context, entry AuditEntry) (AuditEntry, error)
	ListAuditEntries(ctx context.Context, limit int) ([]AuditEntry, error)
}

// AuditService records and exposes the administrative action trail.
type AuditService struct {
	entries     AuditRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAuditService constructs an AuditService with the provided dependencies.
func NewAuditService(entries AuditRepository, idGenerator func() string, now func() time.Time) *AuditService {
	return NewAuditServiceWithLogger(entries, idGenerator, now, nil)
}

// NewAuditServiceWithLogger constructs an AuditService with a specified logger.
func NewAuditServiceWithLogger(entries AuditRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AuditService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AuditService{
		entries:     entries,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AuditService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuditService", operation, attrs...)
}

// RecordAction appends one entry to the audit trail.
func (s *AuditService) RecordAction(ctx context.Context, actorID, action, details string) error {
	if s == nil {
		return fmt.Errorf("AuditService is nil")
	}
	if s.entries == nil {
		return fmt.Errorf("audit repository not configured")
	}

	trimmedAction := strings.TrimSpace(action)
	if trimmedAction == "" {
		return &ValidationError{FieldErrors: map[string]string{"action": "action is required"}}
	}

	entry := AuditEntry{
		ID:        s.idGenerator(),
		ActorID:   strings.TrimSpace(actorID),
		Action:    trimmedAction,
		Details:   strings.TrimSpace(details),
		CreatedAt: s.now(),
	}

	if _, err := s.entries.AppendAuditEntry(ctx, entry); err != nil {
		s.loggerWith(ctx, "RecordAction", "action", trimmedAction).
			ErrorContext(ctx, "failed to append audit entry", "error", err, "error_kind", ErrorKind(err))
		return mapRepoError(err)
	}
	return nil
}

// ListEntries returns the newest audit entries, most recent first. A limit of
// zero or less applies the default of 100 entries. Only administrators may
// read the trail.
func (s *AuditService) ListEntries(ctx context.Context, principal Principal, limit int) (entries []AuditEntry, err error) {
	if s == nil {
		err = fmt.Errorf("AuditService is nil")
		return
	}
	if s.entries == nil {
		err = fmt.Errorf("audit repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListEntries", "actor_id", principal.UserID, "limit", limit)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list audit entries", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if limit <= 0 {
		limit = 100
	}

	entries, err = s.entries.ListAuditEntries(ctx, limit)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}
