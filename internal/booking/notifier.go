package booking

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// Notifier emits event records for status changes. Emission is
// fire-and-forget: failures are logged and never block a booking or
// cancellation.
type Notifier interface {
	Emit(ctx context.Context, n Notification)
}

type storeNotifier struct {
	repo Repository
}

// NewNotifier returns a Notifier that persists notification records
// through the repository.
func NewNotifier(repo Repository) Notifier {
	return &storeNotifier{repo: repo}
}

func (sn *storeNotifier) Emit(ctx context.Context, n Notification) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = nowFunc()
	}
	if err := sn.repo.InsertNotification(ctx, n); err != nil {
		log.Printf("emit notification %s (%s): %v", n.ID, n.Type, err)
	}
}
