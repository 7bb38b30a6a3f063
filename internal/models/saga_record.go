package models

import "time"

// SagaRecord is the persisted audit row for a coordinated operation that
// did not commit cleanly. Rows with status "compensation_failed" represent
// recorded inconsistencies and form the manual reconciliation queue; they
// are never retried automatically.
type SagaRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null;index" json:"name"`
	Status     string    `gorm:"not null;index" json:"status"`
	FailedStep string    `json:"failed_step"`
	Error      string    `gorm:"type:text" json:"error"`
	Resolved   bool      `gorm:"not null;default:false;index" json:"resolved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
