package service

import (
	"context"

	"pennypost/internal/models"
	"pennypost/internal/repository"
)

// LikeGuard performs the advisory pre-checks on a like: liking your own
// content is forbidden, and an existing like is rejected early. The check is
// best-effort only; the unique like index remains the authority, so a race
// that slips past the guard is still caught at insert time.
type LikeGuard struct {
	contents repository.ContentRepository
}

func NewLikeGuard(contents repository.ContentRepository) *LikeGuard {
	return &LikeGuard{contents: contents}
}

// CheckLikeAllowed validates the like and returns the target content so the
// caller does not have to fetch it twice.
func (g *LikeGuard) CheckLikeAllowed(ctx context.Context, likerID, contentID uint) (*models.Content, error) {
	content, err := g.contents.GetByID(ctx, contentID, likerID)
	if err != nil {
		return nil, err
	}

	if content.UserID == likerID {
		return nil, models.NewSelfActionError("users cannot like their own content")
	}

	liked, err := g.contents.IsLiked(ctx, likerID, contentID)
	if err != nil {
		return nil, err
	}
	if liked {
		return nil, models.NewDuplicateActionError("content already liked by this user")
	}

	return content, nil
}
