package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sirupsen/logrus"

	"taskboard/internal/apperr"
	"taskboard/internal/middleware"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Reason string `json:"reason,omitempty"`
}

// respondError maps err to its status. Internal errors are logged with the
// values attached through goerr and reported without detail.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	status := apperr.HTTPStatus(err)
	body := ErrorResponse{Error: err.Error(), Kind: apperr.Kind(err), Reason: string(apperr.Reason(err))}

	if status >= http.StatusInternalServerError {
		entry := log.WithError(err).WithField("path", c.FullPath())
		var ge *goerr.Error
		if errors.As(err, &ge) {
			entry = entry.WithField("values", ge.Values())
		}
		entry.Error("request failed")
		if status == http.StatusInternalServerError {
			body.Error = "internal error"
		}
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg, Kind: "validation"})
}

// actorID returns the authenticated caller or aborts with 401.
func actorID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses a uuid path parameter or aborts with 400.
func pathID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		badRequest(c, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// parseIDs parses request ids, aborting with 400 on the first malformed one.
func parseIDs(c *gin.Context, raw []string) ([]uuid.UUID, bool) {
	out := make([]uuid.UUID, len(raw))
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
				Error:  "malformed id " + s,
				Kind:   apperr.Kind(apperr.ErrInvalidOrdering),
				Reason: string(apperr.ReasonForeignID),
			})
			return nil, false
		}
		out[i] = id
	}
	return out, true
}
