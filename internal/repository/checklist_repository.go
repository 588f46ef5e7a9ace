package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"taskboard/internal/model"
	"taskboard/internal/position"
)

func (q queries) CreateChecklist(ctx context.Context, checklist *model.Checklist) error {
	if checklist.ID == uuid.Nil {
		checklist.ID = uuid.New()
	}
	return translate(q.db.WithContext(ctx).Create(checklist).Error, "failed to create checklist",
		goerr.V("card_id", checklist.CardID))
}

func (q queries) GetChecklist(ctx context.Context, id uuid.UUID) (*model.Checklist, error) {
	var checklist model.Checklist
	if err := q.db.WithContext(ctx).Where("id = ?", id).First(&checklist).Error; err != nil {
		return nil, translate(err, "checklist not found", goerr.V("checklist_id", id))
	}
	return &checklist, nil
}

func (q queries) ChecklistsByCard(ctx context.Context, cardID uuid.UUID) ([]model.Checklist, error) {
	var checklists []model.Checklist
	err := q.db.WithContext(ctx).Where("card_id = ?", cardID).Order("created_at").Find(&checklists).Error
	if err != nil {
		return nil, translate(err, "failed to list checklists", goerr.V("card_id", cardID))
	}
	return checklists, nil
}

func (q queries) CreateChecklistItem(ctx context.Context, item *model.ChecklistItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return translate(q.db.WithContext(ctx).Create(item).Error, "failed to create checklist item",
		goerr.V("checklist_id", item.ChecklistID))
}

func (q queries) GetChecklistItem(ctx context.Context, id uuid.UUID) (*model.ChecklistItem, error) {
	var item model.ChecklistItem
	if err := q.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, translate(err, "checklist item not found", goerr.V("item_id", id))
	}
	return &item, nil
}

func (q queries) ChecklistItems(ctx context.Context, checklistID uuid.UUID) ([]model.ChecklistItem, error) {
	var items []model.ChecklistItem
	err := q.db.WithContext(ctx).Where("checklist_id = ?", checklistID).Order("position").Find(&items).Error
	if err != nil {
		return nil, translate(err, "failed to list checklist items", goerr.V("checklist_id", checklistID))
	}
	return items, nil
}

func (q queries) UpdateChecklistItem(ctx context.Context, item *model.ChecklistItem) error {
	err := q.db.WithContext(ctx).Model(item).
		Select("text", "completed", "updated_at").
		Updates(item).Error
	return translate(err, "failed to update checklist item", goerr.V("item_id", item.ID))
}

// DeleteChecklist removes the checklist with its items.
func (q queries) DeleteChecklist(ctx context.Context, id uuid.UUID) error {
	db := q.db.WithContext(ctx)
	if err := db.Where("checklist_id = ?", id).Delete(&model.ChecklistItem{}).Error; err != nil {
		return translate(err, "failed to delete checklist", goerr.V("checklist_id", id))
	}
	return translate(db.Where("id = ?", id).Delete(&model.Checklist{}).Error, "failed to delete checklist",
		goerr.V("checklist_id", id))
}

func (q queries) DeleteChecklistItem(ctx context.Context, id uuid.UUID) error {
	err := q.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ChecklistItem{}).Error
	return translate(err, "failed to delete checklist item", goerr.V("item_id", id))
}

func (q queries) SetChecklistItemPositions(ctx context.Context, assignments []position.Assignment) error {
	db := q.db.WithContext(ctx)
	for _, a := range assignments {
		err := db.Model(&model.ChecklistItem{}).Where("id = ?", a.ID).Update("position", a.Position).Error
		if err != nil {
			return translate(err, "failed to set checklist item position", goerr.V("item_id", a.ID))
		}
	}
	return nil
}
