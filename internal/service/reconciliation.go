package service

import (
	"context"

	"pennypost/internal/models"
	"pennypost/internal/repository"
)

// ReconciliationService exposes the saga audit trail to operators. Entries in
// a compensation-failed state describe partial writes that need a manual fix
// before being marked resolved.
type ReconciliationService struct {
	audits repository.SagaAuditRepository
}

func NewReconciliationService(audits repository.SagaAuditRepository) *ReconciliationService {
	return &ReconciliationService{audits: audits}
}

func (s *ReconciliationService) ListUnresolved(ctx context.Context, limit, offset int) ([]models.SagaRecord, error) {
	return s.audits.ListUnresolved(ctx, limit, offset)
}

func (s *ReconciliationService) Resolve(ctx context.Context, recordID uint) error {
	return s.audits.MarkResolved(ctx, recordID)
}
