// Package audit adapts the audit log repository to the service layer's sink.
// Appends run against the primary connection outside the caller's
// transaction, an audit failure never rolls back the action it records.
package audit

import (
	"context"

	"github.com/openlearn/certforge/internal/model"
	"github.com/openlearn/certforge/internal/repository"
)

type Sink struct {
	logs *repository.AuditLogRepository
}

func NewSink(logs *repository.AuditLogRepository) *Sink {
	return &Sink{logs: logs}
}

func (s *Sink) Append(ctx context.Context, entry *model.AuditLog) error {
	return s.logs.Append(ctx, nil, entry)
}
