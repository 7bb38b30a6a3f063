package repository

import (
	"context"

	"pennypost/internal/models"

	"gorm.io/gorm"
)

// SagaAuditRepository records sagas that did not commit cleanly. Rows with a
// CompensationFailed status are the work queue for manual reconciliation.
type SagaAuditRepository interface {
	Record(ctx context.Context, record *models.SagaRecord) error
	ListUnresolved(ctx context.Context, limit, offset int) ([]models.SagaRecord, error)
	MarkResolved(ctx context.Context, recordID uint) error
}

type sagaAuditRepository struct {
	db *gorm.DB
}

func NewSagaAuditRepository(db *gorm.DB) SagaAuditRepository {
	return &sagaAuditRepository{db: db}
}

func (r *sagaAuditRepository) Record(ctx context.Context, record *models.SagaRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return models.NewPersistenceError(err)
	}
	return nil
}

func (r *sagaAuditRepository) ListUnresolved(ctx context.Context, limit, offset int) ([]models.SagaRecord, error) {
	var records []models.SagaRecord
	err := r.db.WithContext(ctx).
		Where("resolved = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, models.NewPersistenceError(err)
	}
	return records, nil
}

func (r *sagaAuditRepository) MarkResolved(ctx context.Context, recordID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.SagaRecord{}).
		Where("id = ?", recordID).
		Update("resolved", true)
	if result.Error != nil {
		return models.NewPersistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("saga record", recordID)
	}
	return nil
}
