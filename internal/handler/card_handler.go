package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskboard/internal/container"
)

type CardHandler struct {
	store *container.Store
	log   logrus.FieldLogger
}

func NewCardHandler(store *container.Store, log logrus.FieldLogger) *CardHandler {
	return &CardHandler{store: store, log: log}
}

type CreateCardRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Labels      []string   `json:"labels"`
}

// UpdateCardRequest changes only the fields present in the body. Send
// clear_due_date to drop the due date.
type UpdateCardRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
	Labels       *[]string  `json:"labels"`
	Attachments  *[]string  `json:"attachments"`
	Members      *[]string  `json:"members"`
}

type ReorderCardsRequest struct {
	Cards []string `json:"cards" binding:"required"`
}

type MoveCardRequest struct {
	DestinationListID *string `json:"destination_list_id"`
	Position          *int    `json:"position"`
}

// Create godoc
// @Summary   Append a card to the list
// @Tags      cards
// @Security  BearerAuth
// @Param     id   path string            true "list id"
// @Param     body body CreateCardRequest true "card"
// @Success   201 {object} model.Card
// @Router    /lists/{id}/cards [post]
func (h *CardHandler) Create(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id", "list")
	if !ok {
		return
	}
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	card, err := h.store.CreateCard(c.Request.Context(), userID, listID, container.CardInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Labels:      req.Labels,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

// GetByList godoc
// @Summary   Active cards of a list in position order
// @Tags      cards
// @Security  BearerAuth
// @Param     id path string true "list id"
// @Success   200 {array} model.Card
// @Router    /lists/{id}/cards [get]
func (h *CardHandler) GetByList(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id", "list")
	if !ok {
		return
	}
	cards, err := h.store.Cards(c.Request.Context(), userID, listID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

// Reorder godoc
// @Summary   Set the order of every active card in the list
// @Tags      cards
// @Security  BearerAuth
// @Param     id   path string              true "list id"
// @Param     body body ReorderCardsRequest true "card ids in their new order"
// @Success   200 {array} model.Card
// @Failure   400 {object} ErrorResponse
// @Router    /lists/{id}/reorder_cards [post]
func (h *CardHandler) Reorder(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id", "list")
	if !ok {
		return
	}
	var req ReorderCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	ordered, ok := parseIDs(c, req.Cards)
	if !ok {
		return
	}

	cards, err := h.store.ReorderCards(c.Request.Context(), userID, listID, ordered)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

// GetByID godoc
// @Summary   Card with members, comments and checklists
// @Tags      cards
// @Security  BearerAuth
// @Param     id path string true "card id"
// @Success   200 {object} container.CardView
// @Router    /cards/{id} [get]
func (h *CardHandler) GetByID(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id", "card")
	if !ok {
		return
	}
	view, err := h.store.Card(c.Request.Context(), userID, cardID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Update godoc
// @Summary   Edit card details
// @Tags      cards
// @Security  BearerAuth
// @Param     id   path string            true "card id"
// @Param     body body UpdateCardRequest true "fields to change"
// @Success   200 {object} model.Card
// @Router    /cards/{id} [put]
func (h *CardHandler) Update(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id", "card")
	if !ok {
		return
	}
	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	patch := container.CardPatch{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		Labels:       req.Labels,
		Attachments:  req.Attachments,
	}
	if req.Members != nil {
		members := make([]uuid.UUID, 0, len(*req.Members))
		for _, raw := range *req.Members {
			id, err := uuid.Parse(raw)
			if err != nil {
				badRequest(c, "Invalid user ID format")
				return
			}
			members = append(members, id)
		}
		patch.MemberIDs = &members
	}

	card, err := h.store.UpdateCard(c.Request.Context(), userID, cardID, patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// Move godoc
// @Summary   Move a card to a position, in its own list or another one
// @Tags      cards
// @Security  BearerAuth
// @Param     id   path string          true "card id"
// @Param     body body MoveCardRequest true "destination"
// @Success   200 {object} model.Card
// @Router    /cards/{id}/move [post]
func (h *CardHandler) Move(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id", "card")
	if !ok {
		return
	}
	var req MoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request")
		return
	}

	in := container.MoveInput{Position: req.Position}
	if req.DestinationListID != nil {
		dest, err := uuid.Parse(*req.DestinationListID)
		if err != nil {
			badRequest(c, "Invalid list ID format")
			return
		}
		in.DestinationListID = &dest
	}

	card, err := h.store.MoveCard(c.Request.Context(), userID, cardID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// Archive godoc
// @Summary   Archive a card
// @Tags      cards
// @Security  BearerAuth
// @Param     id path string true "card id"
// @Success   204
// @Router    /cards/{id}/archive [post]
func (h *CardHandler) Archive(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id", "card")
	if !ok {
		return
	}
	if err := h.store.ArchiveCard(c.Request.Context(), userID, cardID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete godoc
// @Summary   Delete a card
// @Tags      cards
// @Security  BearerAuth
// @Param     id path string true "card id"
// @Success   204
// @Router    /cards/{id} [delete]
func (h *CardHandler) Delete(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id", "card")
	if !ok {
		return
	}
	if err := h.store.DeleteCard(c.Request.Context(), userID, cardID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
