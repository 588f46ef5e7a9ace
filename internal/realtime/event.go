// Package realtime fans board events out to websocket subscribers.
package realtime

import (
	"github.com/bytedance/sonic"
)

// Event kinds emitted after committed mutations. Inbound client actions are
// relayed under whatever kind the client names.
const (
	KindBoardUpdated         = "board_updated"
	KindBoardArchived        = "board_archived"
	KindBoardDeleted         = "board_deleted"
	KindMemberAdded          = "member_added"
	KindMemberRemoved        = "member_removed"
	KindListCreated          = "list_created"
	KindListUpdated          = "list_updated"
	KindListArchived         = "list_archived"
	KindListDeleted          = "list_deleted"
	KindListsReordered       = "lists_reordered"
	KindCardCreated          = "card_created"
	KindCardUpdated          = "card_updated"
	KindCardArchived         = "card_archived"
	KindCardDeleted          = "card_deleted"
	KindCardsReordered       = "cards_reordered"
	KindCardMoved            = "card_moved"
	KindCardRemoved          = "card_removed"
	KindCardAdded            = "card_added"
	KindCommentAdded         = "comment_added"
	KindCommentUpdated       = "comment_updated"
	KindCommentDeleted       = "comment_deleted"
	KindChecklistCreated     = "checklist_created"
	KindChecklistDeleted     = "checklist_deleted"
	KindChecklistItemCreated = "checklist_item_created"
	KindChecklistItemUpdated = "checklist_item_updated"
	KindChecklistItemDeleted = "checklist_item_deleted"

	kindConnectionEstablished = "connection_established"
)

type Event struct {
	Kind          string
	Payload       any
	ActorUsername string
}

type frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
	User string `json:"user"`
}

type ack struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// inbound is what a subscribed client may send.
type inbound struct {
	Action string `json:"action"`
	Data   any    `json:"data"`
}

// Encode renders the wire frame {"type", "data", "user"}.
func (e Event) Encode() ([]byte, error) {
	return sonic.Marshal(frame{Type: e.Kind, Data: e.Payload, User: e.ActorUsername})
}

func encodeAck() ([]byte, error) {
	return sonic.Marshal(ack{Type: kindConnectionEstablished, Message: "Connected to board updates"})
}
