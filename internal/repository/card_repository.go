package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/position"
)

func (q queries) CreateCard(ctx context.Context, card *model.Card) error {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	return translate(q.db.WithContext(ctx).Create(card).Error, "failed to create card",
		goerr.V("card_id", card.ID), goerr.V("list_id", card.ListID))
}

func (q queries) GetCard(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	var card model.Card
	if err := q.db.WithContext(ctx).Where("id = ?", id).First(&card).Error; err != nil {
		return nil, translate(err, "card not found", goerr.V("card_id", id))
	}
	return &card, nil
}

func (q queries) CardsByList(ctx context.Context, listID uuid.UUID, includeArchived bool) ([]model.Card, error) {
	var cards []model.Card
	db := q.db.WithContext(ctx).Where("list_id = ?", listID)
	if !includeArchived {
		db = db.Where("archived = ?", false)
	}
	if err := db.Order("position").Order("created_at").Find(&cards).Error; err != nil {
		return nil, translate(err, "failed to list cards", goerr.V("list_id", listID))
	}
	return cards, nil
}

func (q queries) UpdateCard(ctx context.Context, card *model.Card) error {
	err := q.db.WithContext(ctx).Model(card).
		Select("title", "description", "due_date", "labels", "attachments", "updated_at").
		Updates(card).Error
	return translate(err, "failed to update card", goerr.V("card_id", card.ID))
}

func (q queries) ArchiveCard(ctx context.Context, id uuid.UUID) error {
	err := q.db.WithContext(ctx).Model(&model.Card{}).Where("id = ?", id).Update("archived", true).Error
	return translate(err, "failed to archive card", goerr.V("card_id", id))
}

func (q queries) DeleteCard(ctx context.Context, id uuid.UUID) error {
	db := q.db.WithContext(ctx)
	cards := db.Model(&model.Card{}).Select("id").Where("id = ?", id)
	if err := deleteCardChildren(db, cards); err != nil {
		return translate(err, "failed to delete card", goerr.V("card_id", id))
	}
	return translate(db.Where("id = ?", id).Delete(&model.Card{}).Error, "failed to delete card",
		goerr.V("card_id", id))
}

func (q queries) SetCardPositions(ctx context.Context, assignments []position.Assignment) error {
	db := q.db.WithContext(ctx)
	for _, a := range assignments {
		err := db.Model(&model.Card{}).Where("id = ?", a.ID).Update("position", a.Position).Error
		if err != nil {
			return translate(err, "failed to set card position", goerr.V("card_id", a.ID))
		}
	}
	return nil
}

func (q queries) SetCardList(ctx context.Context, cardID, listID uuid.UUID) error {
	err := q.db.WithContext(ctx).Model(&model.Card{}).
		Where("id = ?", cardID).
		Updates(map[string]any{"list_id": listID, "updated_at": time.Now()}).Error
	return translate(err, "failed to move card", goerr.V("card_id", cardID), goerr.V("list_id", listID))
}

func (q queries) CardMemberIDs(ctx context.Context, cardID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := q.db.WithContext(ctx).Model(&model.CardMember{}).
		Where("card_id = ?", cardID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, translate(err, "failed to list card members", goerr.V("card_id", cardID))
	}
	return ids, nil
}

// SetCardMembers replaces the card's member set.
func (q queries) SetCardMembers(ctx context.Context, cardID uuid.UUID, userIDs []uuid.UUID) error {
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", cardID).Delete(&model.CardMember{}).Error; err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return nil
		}
		rows := make([]model.CardMember, 0, len(userIDs))
		for _, id := range userIDs {
			rows = append(rows, model.CardMember{CardID: cardID, UserID: id})
		}
		return tx.Create(&rows).Error
	})
	return translate(err, "failed to set card members", goerr.V("card_id", cardID))
}
