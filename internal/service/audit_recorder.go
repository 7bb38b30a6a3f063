package service

import (
	"context"

	"pennypost/internal/middleware"
	"pennypost/internal/models"
	"pennypost/internal/repository"
	"pennypost/internal/saga"
)

// AuditRecorder persists non-committed saga outcomes. Rolled-back sagas are
// stored pre-resolved for the audit trail; compensation failures stay open
// until an operator reconciles them.
type AuditRecorder struct {
	audits repository.SagaAuditRepository
}

func NewAuditRecorder(audits repository.SagaAuditRepository) *AuditRecorder {
	return &AuditRecorder{audits: audits}
}

func (r *AuditRecorder) RecordOutcome(ctx context.Context, name string, status saga.Status, failedStep string, cause error) {
	record := &models.SagaRecord{
		Name:       name,
		Status:     string(status),
		FailedStep: failedStep,
		Resolved:   status == saga.StatusRolledBack,
	}
	if cause != nil {
		record.Error = cause.Error()
	}

	if err := r.audits.Record(ctx, record); err != nil {
		// The audit write is best-effort; losing it must not mask the saga's
		// own error.
		middleware.Logger.Error("failed to record saga outcome",
			"saga", name,
			"status", string(status),
			"error", err.Error(),
		)
	}
}
