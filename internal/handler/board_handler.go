package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskboard/internal/container"
)

type BoardHandler struct {
	store *container.Store
	log   logrus.FieldLogger
}

func NewBoardHandler(store *container.Store, log logrus.FieldLogger) *BoardHandler {
	return &BoardHandler{store: store, log: log}
}

type CreateBoardRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	BackgroundColor string `json:"background_color"`
}

type UpdateBoardRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	BackgroundColor *string `json:"background_color"`
}

type AddMemberRequest struct {
	Username string `json:"username" binding:"required"`
}

type ReorderListsRequest struct {
	Lists []string `json:"lists" binding:"required"`
}

// Create godoc
// @Summary   Create a board owned by the caller
// @Tags      boards
// @Security  BearerAuth
// @Param     body body CreateBoardRequest true "board"
// @Success   201 {object} model.Board
// @Router    /boards [post]
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	board, err := h.store.CreateBoard(c.Request.Context(), userID, container.BoardInput{
		Title:           req.Title,
		Description:     req.Description,
		BackgroundColor: req.BackgroundColor,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// GetAll godoc
// @Summary   Active boards the caller owns or belongs to
// @Tags      boards
// @Security  BearerAuth
// @Success   200 {array} model.Board
// @Router    /boards [get]
func (h *BoardHandler) GetAll(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	boards, err := h.store.Boards(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, boards)
}

// GetByID godoc
// @Summary   Board with its active lists and cards
// @Tags      boards
// @Security  BearerAuth
// @Param     id path string true "board id"
// @Success   200 {object} container.BoardView
// @Failure   404 {object} ErrorResponse
// @Router    /boards/{id} [get]
func (h *BoardHandler) GetByID(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}
	view, err := h.store.Board(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Update godoc
// @Summary   Edit board details (owner only)
// @Tags      boards
// @Security  BearerAuth
// @Param     id   path string             true "board id"
// @Param     body body UpdateBoardRequest true "fields to change"
// @Success   200 {object} model.Board
// @Router    /boards/{id} [put]
func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}
	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	board, err := h.store.UpdateBoard(c.Request.Context(), userID, boardID, container.BoardPatch{
		Title:           req.Title,
		Description:     req.Description,
		BackgroundColor: req.BackgroundColor,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// Archive godoc
// @Summary   Archive a board (owner only)
// @Tags      boards
// @Security  BearerAuth
// @Param     id path string true "board id"
// @Success   204
// @Router    /boards/{id} [delete]
func (h *BoardHandler) Archive(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}
	if err := h.store.ArchiveBoard(c.Request.Context(), userID, boardID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete godoc
// @Summary   Delete a board and everything on it (owner only)
// @Tags      boards
// @Security  BearerAuth
// @Param     id path string true "board id"
// @Success   204
// @Router    /boards/{id}/permanent [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}
	if err := h.store.DeleteBoard(c.Request.Context(), userID, boardID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddMember godoc
// @Summary   Share a board with a user (owner only)
// @Tags      members
// @Security  BearerAuth
// @Param     id   path string           true "board id"
// @Param     body body AddMemberRequest true "member"
// @Success   201 {object} UserResponse
// @Router    /boards/{id}/members [post]
func (h *BoardHandler) AddMember(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	member, err := h.store.AddMember(c.Request.Context(), userID, boardID, req.Username)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse(member))
}

// RemoveMember godoc
// @Summary   Revoke a user's access (owner only)
// @Tags      members
// @Security  BearerAuth
// @Param     id      path string true "board id"
// @Param     user_id path string true "user id"
// @Success   204
// @Router    /boards/{id}/members/{user_id} [delete]
func (h *BoardHandler) RemoveMember(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "user_id", "user")
	if !ok {
		return
	}
	if err := h.store.RemoveMember(c.Request.Context(), userID, boardID, memberID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderLists godoc
// @Summary   Set the order of every active list on the board
// @Tags      lists
// @Security  BearerAuth
// @Param     id   path string              true "board id"
// @Param     body body ReorderListsRequest true "list ids in their new order"
// @Success   200 {array} model.List
// @Failure   400 {object} ErrorResponse
// @Router    /boards/{id}/reorder_lists [post]
func (h *BoardHandler) ReorderLists(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}
	var req ReorderListsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	ordered, ok := parseIDs(c, req.Lists)
	if !ok {
		return
	}

	lists, err := h.store.ReorderLists(c.Request.Context(), userID, boardID, ordered)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

// Activities godoc
// @Summary   Latest board history, newest first
// @Tags      boards
// @Security  BearerAuth
// @Param     id path string true "board id"
// @Success   200 {array} model.Activity
// @Router    /boards/{id}/activities [get]
func (h *BoardHandler) Activities(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}
	acts, err := h.store.Activities(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, acts)
}
