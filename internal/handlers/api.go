package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"

	apperrors "github.com/desy0305/e-KanBan2clicks/internal/errors"
	"github.com/desy0305/e-KanBan2clicks/internal/metrics"
	"github.com/desy0305/e-KanBan2clicks/internal/middleware"
	"github.com/desy0305/e-KanBan2clicks/internal/models"
	"github.com/desy0305/e-KanBan2clicks/internal/security"
	"github.com/desy0305/e-KanBan2clicks/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Messages returned by successful card mutations.
const (
	MsgCardUpdated = "Card updated successfully"
	MsgCardDeleted = "Card deleted successfully"
)

// msgInvalidBody is returned when the request body is not a JSON object.
const msgInvalidBody = "Invalid request body"

// APIHandler serves the JSON API under /api. Every route is mounted behind
// middleware.APIAuthRequired, so the caller's identity is always present.
type APIHandler struct {
	cardService    *services.CardService
	securityLogger *security.Logger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(cardService *services.CardService, securityLogger *security.Logger) *APIHandler {
	return &APIHandler{cardService: cardService, securityLogger: securityLogger}
}

// identity returns the caller or answers 401 itself.
func (h *APIHandler) identity(c *fiber.Ctx) (models.Identity, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		_ = jsonError(c, fiber.StatusUnauthorized, apperrors.ErrUnauthorized)
	}
	return id, ok
}

// CurrentUser handles GET /api/user.
func (h *APIHandler) CurrentUser(c *fiber.Ctx) error {
	id, ok := h.identity(c)
	if !ok {
		return nil
	}
	return c.JSON(id.Info())
}

// ListCards handles GET /api/cards.
func (h *APIHandler) ListCards(c *fiber.Ctx) error {
	id, ok := h.identity(c)
	if !ok {
		return nil
	}

	cards, err := h.cardService.List(c.UserContext(), id)
	metrics.CardOperation("list", resultFor(err))
	if err != nil {
		h.securityLogger.Error("list cards failed", err)
		return jsonError(c, statusFor(err, fiber.StatusInternalServerError), err)
	}

	return c.JSON(cards)
}

// AddCard handles POST /api/cards. The organization of the new card is the
// caller's; an "organization" key in the body is ignored.
func (h *APIHandler) AddCard(c *fiber.Ctx) error {
	id, ok := h.identity(c)
	if !ok {
		return nil
	}

	form, err := decodeCardForm(c.Body())
	if err == nil {
		var card *models.Card
		card, err = h.cardService.Add(c.UserContext(), id, form)
		if err == nil {
			metrics.CardOperation("add", metrics.ResultOK)
			userID := id.UserID
			h.securityLogger.SecurityEvent(
				security.EventCardCreate,
				&userID,
				id.Username,
				c.IP(),
				c.Get(fiber.HeaderUserAgent),
				map[string]interface{}{"card_id": card.ID, "organization": id.Organization},
			)
			return c.Status(fiber.StatusCreated).JSON(card)
		}
	}

	metrics.CardOperation("add", resultFor(err))
	if apperrors.IsStore(err) {
		h.securityLogger.Error("add card failed", err)
	}
	return jsonError(c, statusFor(err, fiber.StatusBadRequest), err)
}

// UpdateCard handles PUT /api/cards/:id. Only the status is changed.
func (h *APIHandler) UpdateCard(c *fiber.Ctx) error {
	id, ok := h.identity(c)
	if !ok {
		return nil
	}

	cardID, err := parseCardID(c)
	if err == nil {
		var form models.StatusUpdateForm
		form, err = decodeStatusForm(c.Body())
		if err == nil {
			err = h.cardService.UpdateStatus(c.UserContext(), id, cardID, form)
		}
	}

	metrics.CardOperation("update", resultFor(err))
	if err != nil {
		h.logCardFailure(c, id, "update", cardID, err)
		return jsonError(c, statusFor(err, fiber.StatusInternalServerError), err)
	}

	h.logCardEvent(c, id, security.EventCardUpdate, cardID)
	return c.JSON(messageResponse{Message: MsgCardUpdated})
}

// DeleteCard handles DELETE /api/cards/:id.
func (h *APIHandler) DeleteCard(c *fiber.Ctx) error {
	id, ok := h.identity(c)
	if !ok {
		return nil
	}

	cardID, err := parseCardID(c)
	if err == nil {
		err = h.cardService.Delete(c.UserContext(), id, cardID)
	}

	metrics.CardOperation("delete", resultFor(err))
	if err != nil {
		h.logCardFailure(c, id, "delete", cardID, err)
		return jsonError(c, statusFor(err, fiber.StatusInternalServerError), err)
	}

	h.logCardEvent(c, id, security.EventCardDelete, cardID)
	return c.JSON(messageResponse{Message: MsgCardDeleted})
}

// ListItems handles GET /api/items.
func (h *APIHandler) ListItems(c *fiber.Ctx) error {
	id, ok := h.identity(c)
	if !ok {
		return nil
	}

	items, err := h.cardService.Items(c.UserContext(), id)
	metrics.CardOperation("items", resultFor(err))
	if err != nil {
		h.securityLogger.Error("list items failed", err)
		return jsonError(c, statusFor(err, fiber.StatusInternalServerError), err)
	}

	return c.JSON(items)
}

func (h *APIHandler) logCardEvent(c *fiber.Ctx, id models.Identity, event security.SecurityEventType, cardID int) {
	userID := id.UserID
	h.securityLogger.SecurityEvent(
		event,
		&userID,
		id.Username,
		c.IP(),
		c.Get(fiber.HeaderUserAgent),
		map[string]interface{}{"card_id": cardID, "organization": id.Organization},
	)
}

func (h *APIHandler) logCardFailure(c *fiber.Ctx, id models.Identity, op string, cardID int, err error) {
	switch {
	case apperrors.IsStore(err):
		h.securityLogger.Error(op+" card failed", err)
	case resultFor(err) == metrics.ResultNotFound:
		userID := id.UserID
		h.securityLogger.SecurityEvent(
			security.EventCardScopeMiss,
			&userID,
			id.Username,
			c.IP(),
			c.Get(fiber.HeaderUserAgent),
			map[string]interface{}{"operation": op, "card_id": c.Params("id"), "organization": id.Organization},
		)
	}
}

// parseCardID reads the :id path parameter. Ids are int4 in storage; anything
// that is not a positive int32 cannot name a card of the caller's organization,
// so it is reported like any other miss.
func parseCardID(c *fiber.Ctx) (int, error) {
	cardID, err := strconv.ParseInt(c.Params("id"), 10, 32)
	if err != nil || cardID <= 0 {
		return 0, apperrors.ErrNotFoundOrUnauthorized
	}
	return int(cardID), nil
}

var cardFields = []string{"item", "quantity", "status", "location", "supplier"}

// decodeCardForm parses a POST /api/cards body. A missing key is reported as
// missing fields; a quantity that is present but not a JSON number (string,
// boolean, null) is reported as an invalid quantity.
func decodeCardForm(body []byte) (models.CardForm, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return models.CardForm{}, apperrors.NewValidationError("", msgInvalidBody)
	}

	for _, key := range cardFields {
		if _, ok := raw[key]; !ok {
			return models.CardForm{}, apperrors.NewValidationError(key, security.MsgMissingFields)
		}
	}

	var form models.CardForm
	q := bytes.TrimSpace(raw["quantity"])
	var quantity float64
	if bytes.Equal(q, []byte("null")) || json.Unmarshal(q, &quantity) != nil {
		return models.CardForm{}, apperrors.NewValidationError("quantity", security.MsgInvalidQuantity)
	}
	form.Quantity = &quantity

	targets := map[string]*string{
		"item":     &form.Item,
		"status":   &form.Status,
		"location": &form.Location,
		"supplier": &form.Supplier,
	}
	for key, dst := range targets {
		if err := json.Unmarshal(raw[key], dst); err != nil {
			return models.CardForm{}, apperrors.NewValidationError(key, "Invalid value for "+key)
		}
	}

	return form, nil
}

// decodeStatusForm parses a PUT /api/cards/:id body.
func decodeStatusForm(body []byte) (models.StatusUpdateForm, error) {
	var form models.StatusUpdateForm
	if err := json.Unmarshal(body, &form); err != nil {
		return models.StatusUpdateForm{}, apperrors.NewValidationError("status", security.MsgMissingStatus)
	}
	return form, nil
}
