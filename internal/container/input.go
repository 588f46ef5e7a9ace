package container

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"taskboard/internal/apperr"
)

const maxTextLength = 255

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type BoardInput struct {
	Title           string
	Description     string
	BackgroundColor string
}

type BoardPatch struct {
	Title           *string
	Description     *string
	BackgroundColor *string
}

type CardInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Labels      []string
}

// CardPatch changes only the fields that are set. ClearDueDate removes the
// due date and wins over DueDate.
type CardPatch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Labels       *[]string
	Attachments  *[]string
	MemberIDs    *[]uuid.UUID
}

// ItemPatch changes only the fields that are set.
type ItemPatch struct {
	Text      *string
	Completed *bool
}

// MoveInput targets a list and an index in it. A nil destination or the
// card's own list reorders within that list; a nil position means 0.
type MoveInput struct {
	DestinationListID *uuid.UUID
	Position          *int
}

func requireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", goerr.Wrap(apperr.ErrValidation, field+" is required", goerr.V("field", field))
	}
	if utf8.RuneCountInString(value) > maxTextLength {
		return "", goerr.Wrap(apperr.ErrValidation, field+" is too long",
			goerr.V("field", field), goerr.V("max", maxTextLength))
	}
	return value, nil
}

func checkColor(color string) error {
	if !hexColor.MatchString(color) {
		return goerr.Wrap(apperr.ErrValidation, "background_color must be #RRGGBB", goerr.V("value", color))
	}
	return nil
}
