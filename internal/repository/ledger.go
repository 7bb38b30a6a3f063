package repository

import (
	"context"
	"errors"

	"pennypost/internal/cache"
	"pennypost/internal/middleware"
	"pennypost/internal/models"

	"gorm.io/gorm"
)

// LedgerRepository manages penny balances. Every mutation is a single
// conditional UPDATE so each call is atomic on its own row; there are no
// multi-row transactions here.
type LedgerRepository interface {
	// Reserve debits amount pennies from the user, failing with
	// INSUFFICIENT_FUNDS when the balance would go negative.
	Reserve(ctx context.Context, userID uint, amount int64) (int64, error)
	// Credit adds amount pennies to the user's balance.
	Credit(ctx context.Context, userID uint, amount int64) (int64, error)
	// Refund returns previously reserved pennies. It is identical to Credit
	// on the wire but recorded separately so compensations are visible in
	// metrics.
	Refund(ctx context.Context, userID uint, amount int64) (int64, error)
	// Balance reads the user's current penny balance.
	Balance(ctx context.Context, userID uint) (int64, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Reserve(ctx context.Context, userID uint, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, models.NewValidationError("reserve amount must be positive")
	}

	var balance int64
	result := r.db.WithContext(ctx).Raw(
		`UPDATE users SET pennies = pennies - ?, updated_at = NOW() WHERE id = ? AND deleted_at IS NULL AND pennies >= ? RETURNING pennies`,
		amount, userID, amount,
	).Scan(&balance)
	if result.Error != nil {
		return 0, models.NewPersistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		// Either the user is gone or the balance is short. A second read
		// disambiguates; the conditional update above stays the authority.
		if _, err := r.Balance(ctx, userID); err != nil {
			return 0, err
		}
		return 0, models.NewInsufficientFundsError(amount)
	}

	middleware.LedgerMoves.WithLabelValues("reserve").Inc()
	cache.InvalidateUser(ctx, userID)
	return balance, nil
}

func (r *ledgerRepository) Credit(ctx context.Context, userID uint, amount int64) (int64, error) {
	return r.add(ctx, userID, amount, "credit")
}

func (r *ledgerRepository) Refund(ctx context.Context, userID uint, amount int64) (int64, error) {
	return r.add(ctx, userID, amount, "refund")
}

func (r *ledgerRepository) add(ctx context.Context, userID uint, amount int64, kind string) (int64, error) {
	if amount <= 0 {
		return 0, models.NewValidationError(kind + " amount must be positive")
	}

	var balance int64
	result := r.db.WithContext(ctx).Raw(
		`UPDATE users SET pennies = pennies + ?, updated_at = NOW() WHERE id = ? AND deleted_at IS NULL RETURNING pennies`,
		amount, userID,
	).Scan(&balance)
	if result.Error != nil {
		return 0, models.NewPersistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, models.NewNotFoundError("user", userID)
	}

	middleware.LedgerMoves.WithLabelValues(kind).Inc()
	cache.InvalidateUser(ctx, userID)
	return balance, nil
}

func (r *ledgerRepository) Balance(ctx context.Context, userID uint) (int64, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select("pennies").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("user", userID)
		}
		return 0, models.NewPersistenceError(err)
	}
	return user.Pennies, nil
}
