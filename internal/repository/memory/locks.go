package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"taskboard/internal/apperr"
)

// keyedLocks hands out one exclusive slot per container id.
type keyedLocks struct {
	mu    sync.Mutex
	slots map[uuid.UUID]chan struct{}
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{slots: make(map[uuid.UUID]chan struct{})}
}

func (l *keyedLocks) slot(id uuid.UUID) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[id]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[id] = ch
	}
	return ch
}

func (l *keyedLocks) acquire(ctx context.Context, id uuid.UUID) error {
	select {
	case l.slot(id) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(apperr.ErrTransientStore, "lock wait cancelled",
			goerr.V("container_id", id), goerr.V("cause", ctx.Err().Error()))
	}
}

func (l *keyedLocks) release(id uuid.UUID) {
	<-l.slot(id)
}
