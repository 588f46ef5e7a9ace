// Package activity writes the board audit trail. Records are created through
// the caller's transaction so they commit or roll back with the change they
// describe.
package activity

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// DefaultLimit is how many records the history endpoint returns.
const DefaultLimit = 50

type Entry struct {
	BoardID     uuid.UUID
	Actor       *model.User
	Kind        model.ActivityKind
	Description string
	Payload     map[string]any
}

type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one activity row. An error aborts the surrounding mutation.
func (r *Recorder) Record(ctx context.Context, tx repository.Writer, e Entry) (*model.Activity, error) {
	a := &model.Activity{
		ID:          uuid.New(),
		BoardID:     e.BoardID,
		Kind:        e.Kind,
		Description: e.Description,
		Payload:     e.Payload,
	}
	if a.Payload == nil {
		a.Payload = map[string]any{}
	}
	if e.Actor != nil {
		id := e.Actor.ID
		a.ActorID = &id
	}
	if err := tx.CreateActivity(ctx, a); err != nil {
		return nil, goerr.Wrap(err, "failed to record activity",
			goerr.V("board_id", e.BoardID), goerr.V("kind", e.Kind))
	}
	return a, nil
}

// Latest returns up to limit records for the board, newest first.
func (r *Recorder) Latest(ctx context.Context, reader repository.Reader, boardID uuid.UUID, limit int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	acts, err := reader.ActivitiesByBoard(ctx, boardID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load activities", goerr.V("board_id", boardID))
	}
	if acts == nil {
		acts = []model.Activity{}
	}
	return acts, nil
}
