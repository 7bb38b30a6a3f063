package repository

import (
	"context"
	"errors"
	"strings"

	"pennypost/internal/cache"
	"pennypost/internal/models"

	"gorm.io/gorm"
)

// ContentRepository persists posts, comments and their like edges. Each
// mutation touches exactly one row; the orchestration that makes a publish or
// a like look atomic lives in the service layer.
type ContentRepository interface {
	Create(ctx context.Context, content *models.Content) error
	Delete(ctx context.Context, contentID uint) error
	// AttachChild bumps the parent's reply counter; PARENT_NOT_FOUND when the
	// parent row is missing.
	AttachChild(ctx context.Context, parentID uint) error
	DetachChild(ctx context.Context, parentID uint) error
	// AddLiker inserts the (user, content) like edge. The unique index on the
	// pair is the authority for duplicate detection; a conflicting insert
	// reports DUPLICATE_ACTION.
	AddLiker(ctx context.Context, userID, contentID uint) error
	RemoveLiker(ctx context.Context, userID, contentID uint) error
	IsLiked(ctx context.Context, userID, contentID uint) (bool, error)

	GetByID(ctx context.Context, contentID uint, viewerID uint) (*models.Content, error)
	ListPosts(ctx context.Context, viewerID uint, limit, offset int) ([]models.Content, error)
	ListChildren(ctx context.Context, parentID uint, viewerID uint, limit, offset int) ([]models.Content, error)
	GetByUserID(ctx context.Context, userID uint, viewerID uint, limit, offset int) ([]models.Content, error)
	Search(ctx context.Context, query string, viewerID uint, limit, offset int) ([]models.Content, error)
}

type contentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, content *models.Content) error {
	if err := r.db.WithContext(ctx).Create(content).Error; err != nil {
		return models.NewPersistenceError(err)
	}
	if content.Kind == models.ContentKindPost {
		cache.InvalidatePostsList(ctx)
	}
	return nil
}

// Delete removes the row outright. It exists as the compensation for Create;
// there is no public delete API, so nothing ever soft-deletes content.
func (r *contentRepository) Delete(ctx context.Context, contentID uint) error {
	result := r.db.WithContext(ctx).Unscoped().Delete(&models.Content{}, contentID)
	if result.Error != nil {
		return models.NewPersistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("content", contentID)
	}
	cache.InvalidateContent(ctx, contentID)
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *contentRepository) AttachChild(ctx context.Context, parentID uint) error {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE contents SET reply_count = reply_count + 1, updated_at = NOW() WHERE id = ? AND deleted_at IS NULL`,
		parentID,
	)
	if result.Error != nil {
		return models.NewPersistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewParentNotFoundError(parentID)
	}
	cache.InvalidateContent(ctx, parentID)
	return nil
}

func (r *contentRepository) DetachChild(ctx context.Context, parentID uint) error {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE contents SET reply_count = reply_count - 1, updated_at = NOW() WHERE id = ? AND deleted_at IS NULL AND reply_count > 0`,
		parentID,
	)
	if result.Error != nil {
		return models.NewPersistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewParentNotFoundError(parentID)
	}
	cache.InvalidateContent(ctx, parentID)
	return nil
}

func (r *contentRepository) AddLiker(ctx context.Context, userID, contentID uint) error {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, content_id, created_at) VALUES (?, ?, NOW()) ON CONFLICT (user_id, content_id) DO NOTHING`,
		userID, contentID,
	)
	if result.Error != nil {
		return models.NewPersistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewDuplicateActionError("content already liked by this user")
	}
	cache.InvalidateContent(ctx, contentID)
	return nil
}

func (r *contentRepository) RemoveLiker(ctx context.Context, userID, contentID uint) error {
	result := r.db.WithContext(ctx).Exec(
		`DELETE FROM likes WHERE user_id = ? AND content_id = ?`,
		userID, contentID,
	)
	if result.Error != nil {
		return models.NewPersistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("like", contentID)
	}
	cache.InvalidateContent(ctx, contentID)
	return nil
}

func (r *contentRepository) IsLiked(ctx context.Context, userID, contentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Count(&count).Error
	if err != nil {
		return false, models.NewPersistenceError(err)
	}
	return count > 0, nil
}

func (r *contentRepository) GetByID(ctx context.Context, contentID uint, viewerID uint) (*models.Content, error) {
	// Anonymous reads carry no viewer-specific liked flag, so they can share
	// a cache entry.
	if viewerID == 0 {
		var content models.Content
		err := cache.Aside(ctx, cache.ContentKey(contentID), &content, cache.ContentTTL, func() error {
			return r.fetchByID(ctx, contentID, viewerID, &content)
		})
		if err != nil {
			return nil, err
		}
		return &content, nil
	}

	var content models.Content
	if err := r.fetchByID(ctx, contentID, viewerID, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) fetchByID(ctx context.Context, contentID uint, viewerID uint, content *models.Content) error {
	err := r.withDetails(ctx, viewerID).
		Where("contents.id = ?", contentID).
		First(content).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("content", contentID)
		}
		return models.NewPersistenceError(err)
	}
	return nil
}

func (r *contentRepository) ListPosts(ctx context.Context, viewerID uint, limit, offset int) ([]models.Content, error) {
	// The anonymous first page is the hottest read; cache it briefly.
	if viewerID == 0 && offset == 0 {
		var contents []models.Content
		err := cache.Aside(ctx, cache.PostsListKey(), &contents, cache.PostsListTTL, func() error {
			return r.fetchPosts(ctx, viewerID, limit, offset, &contents)
		})
		if err != nil {
			return nil, err
		}
		return contents, nil
	}

	var contents []models.Content
	if err := r.fetchPosts(ctx, viewerID, limit, offset, &contents); err != nil {
		return nil, err
	}
	return contents, nil
}

func (r *contentRepository) fetchPosts(ctx context.Context, viewerID uint, limit, offset int, contents *[]models.Content) error {
	err := r.withDetails(ctx, viewerID).
		Where("contents.kind = ?", models.ContentKindPost).
		Order("contents.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(contents).Error
	if err != nil {
		return models.NewPersistenceError(err)
	}
	return nil
}

func (r *contentRepository) ListChildren(ctx context.Context, parentID uint, viewerID uint, limit, offset int) ([]models.Content, error) {
	var contents []models.Content
	err := r.withDetails(ctx, viewerID).
		Where("contents.parent_id = ?", parentID).
		Order("contents.created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&contents).Error
	if err != nil {
		return nil, models.NewPersistenceError(err)
	}
	return contents, nil
}

func (r *contentRepository) GetByUserID(ctx context.Context, userID uint, viewerID uint, limit, offset int) ([]models.Content, error) {
	var contents []models.Content
	err := r.withDetails(ctx, viewerID).
		Where("contents.user_id = ?", userID).
		Order("contents.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&contents).Error
	if err != nil {
		return nil, models.NewPersistenceError(err)
	}
	return contents, nil
}

func (r *contentRepository) Search(ctx context.Context, query string, viewerID uint, limit, offset int) ([]models.Content, error) {
	var contents []models.Content
	pattern := "%" + strings.TrimSpace(query) + "%"
	err := r.withDetails(ctx, viewerID).
		Where("contents.kind = ? AND contents.text ILIKE ?", models.ContentKindPost, pattern).
		Order("contents.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&contents).Error
	if err != nil {
		return nil, models.NewPersistenceError(err)
	}
	return contents, nil
}

// withDetails decorates content queries with like counts and the viewer's
// like state, computed via correlated subqueries.
func (r *contentRepository) withDetails(ctx context.Context, viewerID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Content{}).
		Select(`contents.*,
			(SELECT COUNT(*) FROM likes WHERE likes.content_id = contents.id) AS likes_count,
			(SELECT COUNT(*) > 0 FROM likes WHERE likes.content_id = contents.id AND likes.user_id = ?) AS liked`,
			viewerID).
		Preload("User")
}
