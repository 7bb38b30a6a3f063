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
)

func TestContentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	content := &models.Content{Kind: models.ContentKindPost, Text: "hello world", UserID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "contents"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, uint(1), content.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_AttachChild(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		parentID     uint
		mockBehavior func()
		expectedCode string
	}{
		{
			name:     "Success",
			parentID: 1,
			mockBehavior: func() {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE contents SET reply_count = reply_count + 1, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`)).
					WithArgs(1).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:     "Parent Missing",
			parentID: 42,
			mockBehavior: func() {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE contents SET reply_count = reply_count + 1, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`)).
					WithArgs(42).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedCode: models.CodeParentNotFound,
		},
		{
			name:     "Database Error",
			parentID: 1,
			mockBehavior: func() {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE contents SET reply_count = reply_count + 1`)).
					WithArgs(1).
					WillReturnError(errors.New("connection reset"))
			},
			expectedCode: models.CodePersistenceFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			err := repo.AttachChild(ctx, tt.parentID)

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, models.CodeOf(err))
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestContentRepository_DetachChild(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE contents SET reply_count = reply_count - 1, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL AND reply_count > 0`)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DetachChild(ctx, 3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_AddLiker(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		mockBehavior func()
		expectedCode string
	}{
		{
			name: "Success",
			mockBehavior: func() {
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes (user_id, content_id, created_at) VALUES ($1, $2, NOW()) ON CONFLICT (user_id, content_id) DO NOTHING`)).
					WithArgs(1, 2).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "Duplicate Like",
			mockBehavior: func() {
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes (user_id, content_id, created_at) VALUES ($1, $2, NOW()) ON CONFLICT (user_id, content_id) DO NOTHING`)).
					WithArgs(1, 2).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedCode: models.CodeDuplicateAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			err := repo.AddLiker(ctx, 1, 2)

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, models.CodeOf(err))
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestContentRepository_RemoveLiker(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM likes WHERE user_id = $1 AND content_id = $2`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RemoveLiker(ctx, 1, 2)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_IsLiked(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "likes" WHERE user_id = $1 AND content_id = $2`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	liked, err := repo.IsLiked(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT contents\.\*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "text", "user_id", "likes_count", "liked"}).
			AddRow(1, "post", "hello", 10, 3, true))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(10, "author"))

	content, err := repo.GetByID(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "hello", content.Text)
	assert.Equal(t, 3, content.LikesCount)
	assert.True(t, content.Liked)
	assert.Equal(t, "author", content.User.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT contents\.\*`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(ctx, 99, 0)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepository_ListPosts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT contents\.\*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "text", "user_id", "likes_count", "liked"}).
			AddRow(2, "post", "second", 10, 0, false).
			AddRow(1, "post", "first", 10, 1, false))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(10, "author"))

	posts, err := repo.ListPosts(ctx, 0, 20, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}
