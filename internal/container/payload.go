package container

import (
	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/position"
)

func boardPayload(b *model.Board) map[string]any {
	return map[string]any{
		"id":               b.ID.String(),
		"title":            b.Title,
		"description":      b.Description,
		"background_color": b.BackgroundColor,
		"archived":         b.Archived,
	}
}

func listPayload(l *model.List) map[string]any {
	return map[string]any{
		"id":       l.ID.String(),
		"title":    l.Title,
		"position": l.Position,
		"board_id": l.BoardID.String(),
	}
}

func cardPayload(c *model.Card, boardID uuid.UUID) map[string]any {
	return map[string]any{
		"id":       c.ID.String(),
		"title":    c.Title,
		"position": c.Position,
		"list_id":  c.ListID.String(),
		"board_id": boardID.String(),
	}
}

func orderPayload(assignments []position.Assignment) []map[string]any {
	out := make([]map[string]any, len(assignments))
	for i, a := range assignments {
		out[i] = map[string]any{"id": a.ID.String(), "position": a.Position}
	}
	return out
}

func listIDs(lists []model.List) ([]uuid.UUID, map[uuid.UUID]int) {
	ids := make([]uuid.UUID, len(lists))
	current := make(map[uuid.UUID]int, len(lists))
	for i, l := range lists {
		ids[i] = l.ID
		current[l.ID] = l.Position
	}
	return ids, current
}

func cardIDs(cards []model.Card) ([]uuid.UUID, map[uuid.UUID]int) {
	ids := make([]uuid.UUID, len(cards))
	current := make(map[uuid.UUID]int, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
		current[c.ID] = c.Position
	}
	return ids, current
}

func positionOf(assignments []position.Assignment, id uuid.UUID) int {
	for _, a := range assignments {
		if a.ID == id {
			return a.Position
		}
	}
	return -1
}

func stringIDs(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
