package server

import (
	"pennypost/internal/models"
	"pennypost/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. Publishing costs one penny; the fee is
// burned, not transferred.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Text     string `json:"text"`
		ImageURL string `json:"image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	content, err := s.contentService.Publish(c.Context(), service.PublishInput{
		UserID:   userID,
		Kind:     models.ContentKindPost,
		Text:     req.Text,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(content)
}

// CreateComment handles POST /api/contents/:id/comments. Commenting costs one
// penny, same as posting.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	parentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text     string `json:"text"`
		ImageURL string `json:"image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	content, err := s.contentService.Publish(c.Context(), service.PublishInput{
		UserID:   userID,
		Kind:     models.ContentKindComment,
		Text:     req.Text,
		ImageURL: req.ImageURL,
		ParentID: &parentID,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(content)
}

// LikeContent handles POST /api/contents/:id/like. A like moves one penny
// from the liker to the content's creator.
func (s *Server) LikeContent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	contentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	content, likeErr := s.contentService.Like(c.Context(), userID, contentID)
	if likeErr != nil {
		return respondError(c, likeErr)
	}

	return c.JSON(content)
}

// GetContent handles GET /api/contents/:id
func (s *Server) GetContent(c *fiber.Ctx) error {
	contentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	content, getErr := s.contentService.GetContent(c.Context(), contentID, currentUserID(c))
	if getErr != nil {
		return respondError(c, getErr)
	}

	return c.JSON(content)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.contentService.ListPosts(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":  posts,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// GetComments handles GET /api/contents/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	parentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 50)
	comments, listErr := s.contentService.ListComments(c.Context(), parentID, currentUserID(c), p.Limit, p.Offset)
	if listErr != nil {
		return respondError(c, listErr)
	}

	return c.JSON(fiber.Map{
		"comments": comments,
		"limit":    p.Limit,
		"offset":   p.Offset,
	})
}

// SearchPosts handles GET /api/posts/search?q=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	query := c.Query("q")
	p := parsePagination(c, 20)

	posts, err := s.contentService.SearchPosts(c.Context(), query, currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":  posts,
		"query":  query,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}
