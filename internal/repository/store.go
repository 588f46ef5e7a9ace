package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/position"
)

// Reader is the query side shared by the store and by open transactions.
// Get* methods return an error wrapping apperr.ErrNotFound for missing rows.
// Ordered collections come back sorted by position.
type Reader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)

	GetBoard(ctx context.Context, id uuid.UUID) (*model.Board, error)
	BoardsForUser(ctx context.Context, userID uuid.UUID) ([]model.Board, error)
	BoardMemberIDs(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error)
	IsBoardMember(ctx context.Context, userID, boardID uuid.UUID) (bool, error)
	IsBoardOwner(ctx context.Context, userID, boardID uuid.UUID) (bool, error)

	GetList(ctx context.Context, id uuid.UUID) (*model.List, error)
	ListsByBoard(ctx context.Context, boardID uuid.UUID, includeArchived bool) ([]model.List, error)

	GetCard(ctx context.Context, id uuid.UUID) (*model.Card, error)
	CardsByList(ctx context.Context, listID uuid.UUID, includeArchived bool) ([]model.Card, error)
	CardMemberIDs(ctx context.Context, cardID uuid.UUID) ([]uuid.UUID, error)

	GetComment(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	CommentsByCard(ctx context.Context, cardID uuid.UUID) ([]model.Comment, error)
	GetChecklist(ctx context.Context, id uuid.UUID) (*model.Checklist, error)
	ChecklistsByCard(ctx context.Context, cardID uuid.UUID) ([]model.Checklist, error)
	GetChecklistItem(ctx context.Context, id uuid.UUID) (*model.ChecklistItem, error)
	ChecklistItems(ctx context.Context, checklistID uuid.UUID) ([]model.ChecklistItem, error)

	// ActivitiesByBoard returns at most limit records, newest first.
	ActivitiesByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]model.Activity, error)
}

// Writer mutates state inside a transaction. Update* methods write the
// descriptive fields only; the archived flag changes through Archive*, and
// positions and parents change exclusively through SetXPositions and
// SetCardList.
type Writer interface {
	// LockBoard serializes list ordering changes on one board.
	LockBoard(ctx context.Context, id uuid.UUID) error
	// LockLists serializes card ordering changes; ids are locked in ascending order.
	LockLists(ctx context.Context, ids ...uuid.UUID) error

	CreateBoard(ctx context.Context, board *model.Board) error
	UpdateBoard(ctx context.Context, board *model.Board) error
	ArchiveBoard(ctx context.Context, id uuid.UUID) error
	DeleteBoard(ctx context.Context, id uuid.UUID) error
	AddBoardMember(ctx context.Context, boardID, userID uuid.UUID) error
	RemoveBoardMember(ctx context.Context, boardID, userID uuid.UUID) error

	CreateList(ctx context.Context, list *model.List) error
	UpdateList(ctx context.Context, list *model.List) error
	ArchiveList(ctx context.Context, id uuid.UUID) error
	DeleteList(ctx context.Context, id uuid.UUID) error
	SetListPositions(ctx context.Context, assignments []position.Assignment) error

	CreateCard(ctx context.Context, card *model.Card) error
	UpdateCard(ctx context.Context, card *model.Card) error
	ArchiveCard(ctx context.Context, id uuid.UUID) error
	DeleteCard(ctx context.Context, id uuid.UUID) error
	SetCardPositions(ctx context.Context, assignments []position.Assignment) error
	SetCardList(ctx context.Context, cardID, listID uuid.UUID) error
	SetCardMembers(ctx context.Context, cardID uuid.UUID, userIDs []uuid.UUID) error

	CreateComment(ctx context.Context, comment *model.Comment) error
	UpdateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, id uuid.UUID) error
	CreateChecklist(ctx context.Context, checklist *model.Checklist) error
	DeleteChecklist(ctx context.Context, id uuid.UUID) error
	CreateChecklistItem(ctx context.Context, item *model.ChecklistItem) error
	UpdateChecklistItem(ctx context.Context, item *model.ChecklistItem) error
	DeleteChecklistItem(ctx context.Context, id uuid.UUID) error
	SetChecklistItemPositions(ctx context.Context, assignments []position.Assignment) error

	CreateActivity(ctx context.Context, activity *model.Activity) error
}

// Tx is one unit of work. Rollback after Commit is a no-op.
type Tx interface {
	Reader
	Writer
	Commit() error
	Rollback() error
}

// Store is the persistence boundary consumed by the container store.
type Store interface {
	Reader
	Begin(ctx context.Context) (Tx, error)
	CreateUser(ctx context.Context, user *model.User) error
	// UpdateProfile writes the user's full name and phone.
	UpdateProfile(ctx context.Context, user *model.User) error
}

var (
	_ Store = (*GormStore)(nil)
	_ Tx    = (*gormTx)(nil)
)

// GormStore implements Store on top of PostgreSQL through gorm.
type GormStore struct {
	queries
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{queries{db: db}}
}

func (s *GormStore) Begin(ctx context.Context) (Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, translate(tx.Error, "failed to begin transaction")
	}
	return &gormTx{queries: queries{db: tx}}, nil
}

type gormTx struct {
	queries
	done bool
}

func (t *gormTx) Commit() error {
	t.done = true
	return translate(t.db.Commit().Error, "failed to commit transaction")
}

func (t *gormTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return translate(t.db.Rollback().Error, "failed to roll back transaction")
}

// queries carries every Reader and Writer method; it is bound either to the
// pool or to an open transaction.
type queries struct {
	db *gorm.DB
}
