package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"pennypost/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestLedgerRepository_Reserve(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	tests := []struct {
		name            string
		userID          uint
		amount          int64
		mockBehavior    func()
		expectedBalance int64
		expectedCode    string
	}{
		{
			name:   "Success",
			userID: 1,
			amount: 1,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET pennies = pennies - $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL AND pennies >= $3 RETURNING pennies`)).
					WithArgs(int64(1), 1, int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"pennies"}).AddRow(9))
			},
			expectedBalance: 9,
		},
		{
			name:   "Insufficient Funds",
			userID: 2,
			amount: 1,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET pennies = pennies - $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL AND pennies >= $3 RETURNING pennies`)).
					WithArgs(int64(1), 2, int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"pennies"}))

				// existence read to tell a broke user from a missing one
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT "pennies" FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(2, 1).
					WillReturnRows(sqlmock.NewRows([]string{"pennies"}).AddRow(0))
			},
			expectedCode: models.CodeInsufficientFunds,
		},
		{
			name:   "User Not Found",
			userID: 3,
			amount: 1,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET pennies = pennies - $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL AND pennies >= $3 RETURNING pennies`)).
					WithArgs(int64(1), 3, int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"pennies"}))

				mock.ExpectQuery(regexp.QuoteMeta(`SELECT "pennies" FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(3, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
		},
		{
			name:         "Non-Positive Amount",
			userID:       1,
			amount:       0,
			mockBehavior: func() {},
			expectedCode: models.CodeValidationError,
		},
		{
			name:   "Database Error",
			userID: 1,
			amount: 1,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET pennies = pennies - $1`)).
					WithArgs(int64(1), 1, int64(1)).
					WillReturnError(errors.New("connection refused"))
			},
			expectedCode: models.CodePersistenceFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			balance, err := repo.Reserve(ctx, tt.userID, tt.amount)

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, models.CodeOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedBalance, balance)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLedgerRepository_Credit(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET pennies = pennies + $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL RETURNING pennies`)).
		WithArgs(int64(1), 5).
		WillReturnRows(sqlmock.NewRows([]string{"pennies"}).AddRow(11))

	balance, err := repo.Credit(ctx, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(11), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_Credit_UserNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET pennies = pennies + $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL RETURNING pennies`)).
		WithArgs(int64(1), 99).
		WillReturnRows(sqlmock.NewRows([]string{"pennies"}))

	_, err := repo.Credit(ctx, 99, 1)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_Refund(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET pennies = pennies + $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL RETURNING pennies`)).
		WithArgs(int64(1), 7).
		WillReturnRows(sqlmock.NewRows([]string{"pennies"}).AddRow(10))

	balance, err := repo.Refund(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_Balance(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "pennies" FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
		WithArgs(4, 1).
		WillReturnRows(sqlmock.NewRows([]string{"pennies"}).AddRow(42))

	balance, err := repo.Balance(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}
