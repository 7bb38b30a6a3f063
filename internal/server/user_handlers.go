package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUser(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(user)
}

// GetMyBalance handles GET /api/users/me/balance. The balance comes straight
// from the ledger rather than the cached profile.
func (s *Server) GetMyBalance(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	balance, err := s.userService.Balance(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"pennies": balance,
	})
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, getErr := s.userService.GetUser(c.Context(), userID)
	if getErr != nil {
		return respondError(c, getErr)
	}

	return c.JSON(user)
}

// GetUserContents handles GET /api/users/:id/contents
func (s *Server) GetUserContents(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 20)
	contents, listErr := s.contentService.ListByUser(c.Context(), userID, currentUserID(c), p.Limit, p.Offset)
	if listErr != nil {
		return respondError(c, listErr)
	}

	return c.JSON(fiber.Map{
		"contents": contents,
		"limit":    p.Limit,
		"offset":   p.Offset,
	})
}
