package service

import (
	"context"
	"errors"

	"pennypost/internal/models"
	"pennypost/internal/repository"
	"pennypost/internal/saga"
	"pennypost/internal/validation"
)

// Publishing and liking both cost one penny. Publish burns the penny (a
// sink); a like moves it from the liker to the content's creator.
const (
	PublishCost int64 = 1
	LikeCost    int64 = 1
)

// PublishInput is the payload for creating a post or a comment.
type PublishInput struct {
	UserID   uint
	Kind     string
	Text     string
	ImageURL string
	ParentID *uint
}

// ContentService orchestrates content mutations as sagas: every write spans
// multiple records and the storage layer only guarantees atomicity per
// record.
type ContentService struct {
	ledger   repository.LedgerRepository
	contents repository.ContentRepository
	guard    *LikeGuard
	sagas    *saga.Coordinator
}

func NewContentService(
	ledger repository.LedgerRepository,
	contents repository.ContentRepository,
	guard *LikeGuard,
	sagas *saga.Coordinator,
) *ContentService {
	return &ContentService{
		ledger:   ledger,
		contents: contents,
		guard:    guard,
		sagas:    sagas,
	}
}

// Publish creates a post or comment, charging the author one penny. Steps:
// reserve the fee, create the content record, and for comments bump the
// parent's reply counter. On failure committed steps are undone in reverse;
// the penny only stays burned when everything else stuck.
func (s *ContentService) Publish(ctx context.Context, input PublishInput) (*models.Content, error) {
	if err := validation.ValidateContentText(input.Text); err != nil {
		return nil, err
	}
	if input.ImageURL != "" {
		if err := validation.ValidateImageURL(input.ImageURL); err != nil {
			return nil, err
		}
	}

	kind := input.Kind
	switch kind {
	case models.ContentKindPost:
		if input.ParentID != nil {
			return nil, models.NewValidationError("posts cannot have a parent")
		}
	case models.ContentKindComment:
		if input.ParentID == nil {
			return nil, models.NewValidationError("comments require a parent")
		}
	default:
		return nil, models.NewValidationError("kind must be post or comment")
	}

	// Advisory parent check before any money moves. The attach step remains
	// the authority; a parent deleted between here and there still rolls the
	// saga back.
	if input.ParentID != nil {
		if _, err := s.contents.GetByID(ctx, *input.ParentID, input.UserID); err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return nil, models.NewParentNotFoundError(*input.ParentID)
			}
			return nil, err
		}
	}

	content := &models.Content{
		Kind:     kind,
		Text:     input.Text,
		ImageURL: input.ImageURL,
		UserID:   input.UserID,
		ParentID: input.ParentID,
	}

	steps := []saga.Step{
		{
			Name: "reserve_publish_fee",
			Run: func(ctx context.Context) error {
				_, err := s.ledger.Reserve(ctx, input.UserID, PublishCost)
				return err
			},
			Compensate: func(ctx context.Context) error {
				_, err := s.ledger.Refund(ctx, input.UserID, PublishCost)
				return err
			},
		},
		{
			Name: "create_content",
			Run: func(ctx context.Context) error {
				return s.contents.Create(ctx, content)
			},
			Compensate: func(ctx context.Context) error {
				return s.contents.Delete(ctx, content.ID)
			},
		},
	}
	if input.ParentID != nil {
		parentID := *input.ParentID
		steps = append(steps, saga.Step{
			Name: "attach_child",
			Run: func(ctx context.Context) error {
				return s.contents.AttachChild(ctx, parentID)
			},
			Compensate: func(ctx context.Context) error {
				return s.contents.DetachChild(ctx, parentID)
			},
		})
	}

	if err := s.sagas.Execute(ctx, "publish_"+kind, steps); err != nil {
		return nil, wrapSagaError(err)
	}

	return content, nil
}

// Like transfers one penny from the liker to the content's creator. Steps:
// reserve the liker's penny, insert the like edge (the unique index catches
// duplicate races), credit the creator.
func (s *ContentService) Like(ctx context.Context, likerID, contentID uint) (*models.Content, error) {
	content, err := s.guard.CheckLikeAllowed(ctx, likerID, contentID)
	if err != nil {
		return nil, err
	}
	creatorID := content.UserID

	steps := []saga.Step{
		{
			Name: "reserve_like_fee",
			Run: func(ctx context.Context) error {
				_, err := s.ledger.Reserve(ctx, likerID, LikeCost)
				return err
			},
			Compensate: func(ctx context.Context) error {
				_, err := s.ledger.Refund(ctx, likerID, LikeCost)
				return err
			},
		},
		{
			Name: "add_liker",
			Run: func(ctx context.Context) error {
				return s.contents.AddLiker(ctx, likerID, contentID)
			},
			Compensate: func(ctx context.Context) error {
				return s.contents.RemoveLiker(ctx, likerID, contentID)
			},
		},
		{
			Name: "credit_creator",
			Run: func(ctx context.Context) error {
				_, err := s.ledger.Credit(ctx, creatorID, LikeCost)
				return err
			},
			Compensate: func(ctx context.Context) error {
				_, err := s.ledger.Reserve(ctx, creatorID, LikeCost)
				return err
			},
		},
	}

	if err := s.sagas.Execute(ctx, "like_content", steps); err != nil {
		return nil, wrapSagaError(err)
	}

	return s.contents.GetByID(ctx, contentID, likerID)
}

// GetContent returns a single content item with like details for the viewer.
func (s *ContentService) GetContent(ctx context.Context, contentID, viewerID uint) (*models.Content, error) {
	return s.contents.GetByID(ctx, contentID, viewerID)
}

// ListPosts returns the newest posts first.
func (s *ContentService) ListPosts(ctx context.Context, viewerID uint, limit, offset int) ([]models.Content, error) {
	return s.contents.ListPosts(ctx, viewerID, limit, offset)
}

// ListComments returns a post's comments, oldest first.
func (s *ContentService) ListComments(ctx context.Context, parentID, viewerID uint, limit, offset int) ([]models.Content, error) {
	if _, err := s.contents.GetByID(ctx, parentID, viewerID); err != nil {
		return nil, err
	}
	return s.contents.ListChildren(ctx, parentID, viewerID, limit, offset)
}

// ListByUser returns a user's content, newest first.
func (s *ContentService) ListByUser(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.Content, error) {
	return s.contents.GetByUserID(ctx, userID, viewerID, limit, offset)
}

// SearchPosts finds posts whose text matches the query.
func (s *ContentService) SearchPosts(ctx context.Context, query string, viewerID uint, limit, offset int) ([]models.Content, error) {
	if err := validation.ValidateSearchQuery(query); err != nil {
		return nil, err
	}
	return s.contents.Search(ctx, query, viewerID, limit, offset)
}

// wrapSagaError translates engine errors to the API taxonomy. A failed
// compensation surfaces as COMPENSATION_FAILED; everything else keeps the
// forward step's own error.
func wrapSagaError(err error) error {
	var compErr *saga.CompensationError
	if errors.As(err, &compErr) {
		return models.NewCompensationFailedError(compErr.Saga, compErr)
	}
	return err
}
