package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskboard/internal/container"
)

// ChildHandler serves comments and checklists hanging off a card.
type ChildHandler struct {
	store *container.Store
	log   logrus.FieldLogger
}

func NewChildHandler(store *container.Store, log logrus.FieldLogger) *ChildHandler {
	return &ChildHandler{store: store, log: log}
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type ChecklistRequest struct {
	Title string `json:"title"`
}

type ChecklistItemRequest struct {
	Text string `json:"text" binding:"required"`
}

// ChecklistItemUpdateRequest needs at least one of text and completed.
type ChecklistItemUpdateRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// AddComment godoc
// @Summary   Comment on a card
// @Tags      cards
// @Security  BearerAuth
// @Param     id   path string         true "card id"
// @Param     body body CommentRequest true "comment"
// @Success   201 {object} model.Comment
// @Router    /cards/{id}/comments [post]
func (h *ChildHandler) AddComment(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id", "card")
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	comment, err := h.store.AddComment(c.Request.Context(), userID, cardID, req.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Comments godoc
// @Summary   Comments on a card
// @Tags      cards
// @Security  BearerAuth
// @Param     id path string true "card id"
// @Success   200 {array} model.Comment
// @Router    /cards/{id}/comments [get]
func (h *ChildHandler) Comments(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id", "card")
	if !ok {
		return
	}
	comments, err := h.store.Comments(c.Request.Context(), userID, cardID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// CreateChecklist godoc
// @Summary   Add a checklist to a card
// @Tags      checklists
// @Security  BearerAuth
// @Param     id   path string           true "card id"
// @Param     body body ChecklistRequest true "checklist"
// @Success   201 {object} model.Checklist
// @Router    /cards/{id}/checklists [post]
func (h *ChildHandler) CreateChecklist(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id", "card")
	if !ok {
		return
	}
	var req ChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	checklist, err := h.store.CreateChecklist(c.Request.Context(), userID, cardID, req.Title)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, checklist)
}

// Checklists godoc
// @Summary   Checklists of a card with their items
// @Tags      checklists
// @Security  BearerAuth
// @Param     id path string true "card id"
// @Success   200 {array} container.ChecklistView
// @Router    /cards/{id}/checklists [get]
func (h *ChildHandler) Checklists(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	cardID, ok := pathID(c, "id", "card")
	if !ok {
		return
	}
	checklists, err := h.store.Checklists(c.Request.Context(), userID, cardID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, checklists)
}

// AddItem godoc
// @Summary   Append an item to a checklist
// @Tags      checklists
// @Security  BearerAuth
// @Param     id   path string               true "checklist id"
// @Param     body body ChecklistItemRequest true "item"
// @Success   201 {object} model.ChecklistItem
// @Router    /checklists/{id}/items [post]
func (h *ChildHandler) AddItem(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	checklistID, ok := pathID(c, "id", "checklist")
	if !ok {
		return
	}
	var req ChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	item, err := h.store.AddChecklistItem(c.Request.Context(), userID, checklistID, req.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem godoc
// @Summary   Edit a checklist item or tick it
// @Tags      checklists
// @Security  BearerAuth
// @Param     id   path string                     true "item id"
// @Param     body body ChecklistItemUpdateRequest true "changes"
// @Success   200 {object} model.ChecklistItem
// @Router    /checklist-items/{id} [put]
func (h *ChildHandler) UpdateItem(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id", "item")
	if !ok {
		return
	}
	var req ChecklistItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	item, err := h.store.UpdateChecklistItem(c.Request.Context(), userID, itemID,
		container.ItemPatch{Text: req.Text, Completed: req.Completed})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem godoc
// @Summary   Remove a checklist item
// @Tags      checklists
// @Security  BearerAuth
// @Param     id path string true "item id"
// @Success   204
// @Router    /checklist-items/{id} [delete]
func (h *ChildHandler) DeleteItem(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id", "item")
	if !ok {
		return
	}
	if err := h.store.DeleteChecklistItem(c.Request.Context(), userID, itemID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteChecklist godoc
// @Summary   Remove a checklist with its items
// @Tags      checklists
// @Security  BearerAuth
// @Param     id path string true "checklist id"
// @Success   204
// @Router    /checklists/{id} [delete]
func (h *ChildHandler) DeleteChecklist(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	checklistID, ok := pathID(c, "id", "checklist")
	if !ok {
		return
	}
	if err := h.store.DeleteChecklist(c.Request.Context(), userID, checklistID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateComment godoc
// @Summary   Edit your own comment
// @Tags      cards
// @Security  BearerAuth
// @Param     id   path string         true "comment id"
// @Param     body body CommentRequest true "comment"
// @Success   200 {object} model.Comment
// @Failure   403 {object} ErrorResponse
// @Router    /comments/{id} [put]
func (h *ChildHandler) UpdateComment(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "id", "comment")
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	comment, err := h.store.UpdateComment(c.Request.Context(), userID, commentID, req.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary   Delete your own comment
// @Tags      cards
// @Security  BearerAuth
// @Param     id path string true "comment id"
// @Success   204
// @Failure   403 {object} ErrorResponse
// @Router    /comments/{id} [delete]
func (h *ChildHandler) DeleteComment(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "id", "comment")
	if !ok {
		return
	}
	if err := h.store.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
