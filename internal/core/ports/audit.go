package ports

import (
	"context"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

// VisitAuditor writes visit events to the audit trail.
type VisitAuditor interface {
	Record(ctx context.Context, event domain.VisitEvent) error
}

// AuditPublisher hands visit events off for asynchronous auditing. Publish never blocks.
type AuditPublisher interface {
	Publish(event domain.VisitEvent)
}
