package activity

import "fmt"

// Descriptions read the same way users see them in the board feed.

func CreatedBoard(actor, board string) string {
	return fmt.Sprintf("%s created board %q", actor, board)
}

func UpdatedBoard(actor, board string) string {
	return fmt.Sprintf("%s updated board %q", actor, board)
}

func ArchivedBoard(actor, board string) string {
	return fmt.Sprintf("%s archived board %q", actor, board)
}

func AddedMember(actor, member string) string {
	return fmt.Sprintf("%s added %s to the board", actor, member)
}

func RemovedMember(actor, member string) string {
	return fmt.Sprintf("%s removed %s from the board", actor, member)
}

func CreatedList(actor, list string) string {
	return fmt.Sprintf("%s created list %q", actor, list)
}

func UpdatedList(actor, list string) string {
	return fmt.Sprintf("%s updated list %q", actor, list)
}

func ArchivedList(actor, list string) string {
	return fmt.Sprintf("%s archived list %q", actor, list)
}

func DeletedList(actor, list string) string {
	return fmt.Sprintf("%s deleted list %q", actor, list)
}

func ReorderedLists(actor string) string {
	return fmt.Sprintf("%s reordered lists", actor)
}

func CreatedCard(actor, card, list string) string {
	return fmt.Sprintf("%s added card %q to %q", actor, card, list)
}

func UpdatedCard(actor, card string) string {
	return fmt.Sprintf("%s updated card %q", actor, card)
}

func ArchivedCard(actor, card string) string {
	return fmt.Sprintf("%s archived card %q", actor, card)
}

func DeletedCard(actor, card string) string {
	return fmt.Sprintf("%s deleted card %q", actor, card)
}

func ReorderedCards(actor, list string) string {
	return fmt.Sprintf("%s reordered cards in %q", actor, list)
}

func MovedCard(actor, card, from, to string) string {
	return fmt.Sprintf("%s moved card %q from %q to %q", actor, card, from, to)
}

func ReorderedCard(actor, card string) string {
	return fmt.Sprintf("%s reordered card %q", actor, card)
}

func Commented(actor, card string) string {
	return fmt.Sprintf("%s commented on card %q", actor, card)
}

func EditedComment(actor, card string) string {
	return fmt.Sprintf("%s edited a comment on card %q", actor, card)
}

func DeletedComment(actor, card string) string {
	return fmt.Sprintf("%s deleted a comment on card %q", actor, card)
}

func AddedChecklist(actor, checklist, card string) string {
	return fmt.Sprintf("%s added checklist %q to card %q", actor, checklist, card)
}

func DeletedChecklist(actor, checklist, card string) string {
	return fmt.Sprintf("%s deleted checklist %q from card %q", actor, checklist, card)
}

func AddedChecklistItem(actor, item string) string {
	return fmt.Sprintf("%s added checklist item %q", actor, item)
}

func ToggledChecklistItem(actor, item string, completed bool) string {
	if completed {
		return fmt.Sprintf("%s completed %q", actor, item)
	}
	return fmt.Sprintf("%s unchecked %q", actor, item)
}

func UpdatedChecklistItem(actor, item string) string {
	return fmt.Sprintf("%s updated checklist item %q", actor, item)
}

func DeletedChecklistItem(actor, item string) string {
	return fmt.Sprintf("%s deleted checklist item %q", actor, item)
}
