package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskboard/internal/container"
)

type ListHandler struct {
	store *container.Store
	log   logrus.FieldLogger
}

func NewListHandler(store *container.Store, log logrus.FieldLogger) *ListHandler {
	return &ListHandler{store: store, log: log}
}

type ListRequest struct {
	Title string `json:"title" binding:"required"`
}

// Create godoc
// @Summary   Append a list to the board
// @Tags      lists
// @Security  BearerAuth
// @Param     id   path string      true "board id"
// @Param     body body ListRequest true "list"
// @Success   201 {object} model.List
// @Router    /boards/{id}/lists [post]
func (h *ListHandler) Create(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}
	var req ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	list, err := h.store.CreateList(c.Request.Context(), userID, boardID, req.Title)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// GetAll godoc
// @Summary   Active lists of a board in position order
// @Tags      lists
// @Security  BearerAuth
// @Param     id path string true "board id"
// @Success   200 {array} model.List
// @Router    /boards/{id}/lists [get]
func (h *ListHandler) GetAll(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}
	lists, err := h.store.Lists(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

// Update godoc
// @Summary   Rename a list
// @Tags      lists
// @Security  BearerAuth
// @Param     id   path string      true "list id"
// @Param     body body ListRequest true "list"
// @Success   200 {object} model.List
// @Router    /lists/{id} [put]
func (h *ListHandler) Update(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id", "list")
	if !ok {
		return
	}
	var req ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	list, err := h.store.UpdateList(c.Request.Context(), userID, listID, req.Title)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Archive godoc
// @Summary   Archive a list
// @Tags      lists
// @Security  BearerAuth
// @Param     id path string true "list id"
// @Success   204
// @Router    /lists/{id}/archive [post]
func (h *ListHandler) Archive(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id", "list")
	if !ok {
		return
	}
	if err := h.store.ArchiveList(c.Request.Context(), userID, listID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete godoc
// @Summary   Delete a list with its cards
// @Tags      lists
// @Security  BearerAuth
// @Param     id path string true "list id"
// @Success   204
// @Router    /lists/{id} [delete]
func (h *ListHandler) Delete(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	listID, ok := pathID(c, "id", "list")
	if !ok {
		return
	}
	if err := h.store.DeleteList(c.Request.Context(), userID, listID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
