package repository

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
	"taskboard/internal/position"
)

func (q queries) CreateList(ctx context.Context, list *model.List) error {
	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	return translate(q.db.WithContext(ctx).Create(list).Error, "failed to create list",
		goerr.V("list_id", list.ID), goerr.V("board_id", list.BoardID))
}

func (q queries) GetList(ctx context.Context, id uuid.UUID) (*model.List, error) {
	var list model.List
	if err := q.db.WithContext(ctx).Where("id = ?", id).First(&list).Error; err != nil {
		return nil, translate(err, "list not found", goerr.V("list_id", id))
	}
	return &list, nil
}

func (q queries) ListsByBoard(ctx context.Context, boardID uuid.UUID, includeArchived bool) ([]model.List, error) {
	var lists []model.List
	db := q.db.WithContext(ctx).Where("board_id = ?", boardID)
	if !includeArchived {
		db = db.Where("archived = ?", false)
	}
	if err := db.Order("position").Order("created_at").Find(&lists).Error; err != nil {
		return nil, translate(err, "failed to list lists", goerr.V("board_id", boardID))
	}
	return lists, nil
}

func (q queries) UpdateList(ctx context.Context, list *model.List) error {
	err := q.db.WithContext(ctx).Model(list).
		Select("title", "updated_at").
		Updates(list).Error
	return translate(err, "failed to update list", goerr.V("list_id", list.ID))
}

func (q queries) ArchiveList(ctx context.Context, id uuid.UUID) error {
	err := q.db.WithContext(ctx).Model(&model.List{}).Where("id = ?", id).Update("archived", true).Error
	return translate(err, "failed to archive list", goerr.V("list_id", id))
}

func (q queries) DeleteList(ctx context.Context, id uuid.UUID) error {
	db := q.db.WithContext(ctx)
	cards := db.Model(&model.Card{}).Select("id").Where("list_id = ?", id)
	if err := deleteCardChildren(db, cards); err != nil {
		return translate(err, "failed to delete list", goerr.V("list_id", id))
	}
	if err := db.Where("list_id = ?", id).Delete(&model.Card{}).Error; err != nil {
		return translate(err, "failed to delete list", goerr.V("list_id", id))
	}
	return translate(db.Where("id = ?", id).Delete(&model.List{}).Error, "failed to delete list",
		goerr.V("list_id", id))
}

func (q queries) SetListPositions(ctx context.Context, assignments []position.Assignment) error {
	db := q.db.WithContext(ctx)
	for _, a := range assignments {
		err := db.Model(&model.List{}).Where("id = ?", a.ID).Update("position", a.Position).Error
		if err != nil {
			return translate(err, "failed to set list position", goerr.V("list_id", a.ID))
		}
	}
	return nil
}

// LockLists locks list rows in ascending id order so that two transactions
// touching the same pair of lists cannot deadlock.
func (q queries) LockLists(ctx context.Context, ids ...uuid.UUID) error {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	db := q.db.WithContext(ctx)
	var prev uuid.UUID
	for i, id := range sorted {
		if i > 0 && id == prev {
			continue
		}
		prev = id
		var list model.List
		err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", id).
			First(&list).Error
		if err != nil {
			return translate(err, "failed to lock list", goerr.V("list_id", id))
		}
	}
	return nil
}
