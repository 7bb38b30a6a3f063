package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetUnresolvedSagas handles GET /api/admin/sagas. Each entry describes a
// saga that could not be fully rolled back and may have left partial state.
func (s *Server) GetUnresolvedSagas(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	records, err := s.reconciliationService.ListUnresolved(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"sagas":  records,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// ResolveSaga handles POST /api/admin/sagas/:id/resolve, marking an audit
// entry as manually reconciled.
func (s *Server) ResolveSaga(c *fiber.Ctx) error {
	recordID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if resolveErr := s.reconciliationService.Resolve(c.Context(), recordID); resolveErr != nil {
		return respondError(c, resolveErr)
	}

	return c.JSON(fiber.Map{
		"resolved": true,
	})
}
