package realtime

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Publisher delivers committed board events. Implementations never report
// delivery failures back to the caller.
type Publisher interface {
	Publish(ctx context.Context, boardID uuid.UUID, ev Event)
}

// Broadcaster delivers to the subscribers registered in this process.
type Broadcaster struct {
	registry *Registry
	log      logrus.FieldLogger
}

var _ Publisher = (*Broadcaster)(nil)

func NewBroadcaster(registry *Registry, log logrus.FieldLogger) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

func (b *Broadcaster) Publish(ctx context.Context, boardID uuid.UUID, ev Event) {
	data, err := ev.Encode()
	if err != nil {
		b.log.WithError(err).WithFields(logrus.Fields{
			"board_id": boardID,
			"kind":     ev.Kind,
		}).Error("failed to encode board event")
		return
	}
	b.Deliver(boardID, data)
}

// Deliver hands an encoded frame to every subscriber of the board and returns
// how many accepted it.
func (b *Broadcaster) Deliver(boardID uuid.UUID, data []byte) int {
	delivered := 0
	for _, sub := range b.registry.Members(boardID) {
		if sub.Deliver(data) {
			delivered++
			continue
		}
		b.log.WithFields(logrus.Fields{
			"board_id": boardID,
			"conn_id":  sub.ID(),
		}).Warn("dropped frame for slow subscriber")
	}
	return delivered
}
