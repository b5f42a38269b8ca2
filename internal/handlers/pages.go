package handlers

import (
	"github.com/desy0305/e-KanBan2clicks/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// PageHandler renders the HTML shell. The pages only bootstrap the client
// script; all card data is fetched from the JSON API.
type PageHandler struct{}

// NewPageHandler creates a new PageHandler.
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Index renders the kanban board.
//
// Template: web/templates/index.html
func (h *PageHandler) Index(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	return c.Render("index", fiber.Map{
		"Title":          "Kanban Board",
		"User":           id.Info(),
		"ManageCardsURL": "/manage_cards",
	})
}

// ManageCards renders the card management page.
//
// Template: web/templates/manage_cards.html
func (h *PageHandler) ManageCards(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	return c.Render("manage_cards", fiber.Map{
		"Title": "Manage Cards",
		"User":  id.Info(),
	})
}
