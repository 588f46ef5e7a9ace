// Package container runs every board mutation as one transaction: access
// check, container lock, position allocation, one activity record, commit,
// then broadcast.
package container

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"taskboard/internal/activity"
	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"
)

const tracerName = "taskboard/internal/container"

type Store struct {
	repo      repository.Store
	recorder  *activity.Recorder
	publisher realtime.Publisher
	tracer    trace.Tracer
	log       logrus.FieldLogger
}

func NewStore(repo repository.Store, recorder *activity.Recorder, publisher realtime.Publisher, log logrus.FieldLogger) *Store {
	return &Store{
		repo:      repo,
		recorder:  recorder,
		publisher: publisher,
		tracer:    otel.Tracer(tracerName),
		log:       log,
	}
}

type outbound struct {
	boardID uuid.UUID
	event   realtime.Event
}

// unit is the state of one running mutation.
type unit struct {
	tx     repository.Tx
	actor  *model.User
	events []outbound
}

func (u *unit) emit(boardID uuid.UUID, kind string, payload any) {
	u.events = append(u.events, outbound{
		boardID: boardID,
		event:   realtime.Event{Kind: kind, Payload: payload, ActorUsername: u.actor.Username},
	})
}

func (u *unit) record(ctx context.Context, rec *activity.Recorder, boardID uuid.UUID, kind model.ActivityKind, description string, payload map[string]any) error {
	_, err := rec.Record(ctx, u.tx, activity.Entry{
		BoardID:     boardID,
		Actor:       u.actor,
		Kind:        kind,
		Description: description,
		Payload:     payload,
	})
	return err
}

// mutate runs fn inside a transaction on behalf of actorID. Events queued by
// fn are published only once the commit succeeded.
func (s *Store) mutate(ctx context.Context, op string, actorID uuid.UUID, fn func(ctx context.Context, u *unit) error) error {
	ctx, span := s.tracer.Start(ctx, "container."+op, trace.WithAttributes(
		attribute.String("actor.id", actorID.String()),
	))
	defer span.End()

	err := s.run(ctx, actorID, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.Kind(err))
	}
	return err
}

func (s *Store) run(ctx context.Context, actorID uuid.UUID, fn func(ctx context.Context, u *unit) error) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return err
	}
	actor, err := tx.GetUser(ctx, actorID)
	if err != nil {
		s.rollback(tx)
		if errors.Is(err, apperr.ErrNotFound) {
			return goerr.Wrap(apperr.ErrForbidden, "unknown actor", goerr.V("user_id", actorID))
		}
		return err
	}

	u := &unit{tx: tx, actor: actor}
	if err := fn(ctx, u); err != nil {
		s.rollback(tx)
		return err
	}
	if err := tx.Commit(); err != nil {
		if apperr.Kind(err) == "internal" {
			err = goerr.Wrap(errors.Join(apperr.ErrTransientStore, err), "commit failed")
		}
		return err
	}

	pubCtx := context.WithoutCancel(ctx)
	for _, out := range u.events {
		s.publisher.Publish(pubCtx, out.boardID, out.event)
	}
	return nil
}

func (s *Store) rollback(tx repository.Tx) {
	if err := tx.Rollback(); err != nil {
		s.log.WithError(err).Warn("rollback failed")
	}
}

// access levels for loading a board
type access int

const (
	memberAccess access = iota
	ownerAccess
	// readAccess reports a non-member as not found.
	readAccess
)

// activeBoard loads a non-archived board and checks the actor's access to it.
func activeBoard(ctx context.Context, r repository.Reader, actorID, boardID uuid.UUID, level access) (*model.Board, error) {
	board, err := r.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board.Archived {
		return nil, goerr.Wrap(apperr.ErrNotFound, "board is archived", goerr.V("board_id", boardID))
	}

	if level == ownerAccess {
		if board.OwnerID != actorID {
			return nil, goerr.Wrap(apperr.ErrForbidden, "only the board owner may do this",
				goerr.V("board_id", boardID), goerr.V("user_id", actorID))
		}
		return board, nil
	}

	ok, err := r.IsBoardMember(ctx, actorID, boardID)
	if err != nil {
		return nil, err
	}
	if !ok {
		if level == readAccess {
			return nil, goerr.Wrap(apperr.ErrNotFound, "board not found", goerr.V("board_id", boardID))
		}
		return nil, goerr.Wrap(apperr.ErrForbidden, "not a board member",
			goerr.V("board_id", boardID), goerr.V("user_id", actorID))
	}
	return board, nil
}

// listInBoard loads a list and its board. Archived lists are only returned
// when allowArchived is set.
func listInBoard(ctx context.Context, r repository.Reader, actorID, listID uuid.UUID, level access, allowArchived bool) (*model.List, *model.Board, error) {
	list, err := r.GetList(ctx, listID)
	if err != nil {
		return nil, nil, err
	}
	if list.Archived && !allowArchived {
		return nil, nil, goerr.Wrap(apperr.ErrNotFound, "list is archived", goerr.V("list_id", listID))
	}
	board, err := activeBoard(ctx, r, actorID, list.BoardID, level)
	if err != nil {
		return nil, nil, err
	}
	return list, board, nil
}

// cardInBoard resolves a card through its list to its board.
func cardInBoard(ctx context.Context, r repository.Reader, actorID, cardID uuid.UUID, level access, allowArchived bool) (*model.Card, *model.List, *model.Board, error) {
	card, err := r.GetCard(ctx, cardID)
	if err != nil {
		return nil, nil, nil, err
	}
	if card.Archived && !allowArchived {
		return nil, nil, nil, goerr.Wrap(apperr.ErrNotFound, "card is archived", goerr.V("card_id", cardID))
	}
	list, board, err := listInBoard(ctx, r, actorID, card.ListID, level, allowArchived)
	if err != nil {
		return nil, nil, nil, err
	}
	return card, list, board, nil
}

// lockList takes the list's ordering lock and re-reads it, since it or its
// board may have been archived or removed while the caller waited.
func lockList(ctx context.Context, tx repository.Tx, listID uuid.UUID) (*model.List, error) {
	if err := tx.LockLists(ctx, listID); err != nil {
		return nil, err
	}
	list, err := tx.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.Archived {
		return nil, goerr.Wrap(apperr.ErrNotFound, "list is archived", goerr.V("list_id", listID))
	}
	board, err := tx.GetBoard(ctx, list.BoardID)
	if err != nil {
		return nil, err
	}
	if board.Archived {
		return nil, goerr.Wrap(apperr.ErrNotFound, "board is archived", goerr.V("board_id", board.ID))
	}
	return list, nil
}

// lockBoard takes the board's ordering lock and re-reads the board.
func lockBoard(ctx context.Context, tx repository.Tx, boardID uuid.UUID) (*model.Board, error) {
	if err := tx.LockBoard(ctx, boardID); err != nil {
		return nil, err
	}
	board, err := tx.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board.Archived {
		return nil, goerr.Wrap(apperr.ErrNotFound, "board is archived", goerr.V("board_id", boardID))
	}
	return board, nil
}
