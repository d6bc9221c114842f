package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Janitor removes records nobody will read again: notification records
// older than the retention period and availability windows whose date has
// passed (cascading to their slots). It is run periodically by the
// janitor worker.
type Janitor struct {
	repo      Repository
	retention time.Duration
}

func NewJanitor(repo Repository, retention time.Duration) *Janitor {
	return &Janitor{repo: repo, retention: retention}
}

// Sweep runs one cleanup pass relative to now and returns how many
// notifications and windows were removed.
func (j *Janitor) Sweep(ctx context.Context, now time.Time) (notifications, windows int, err error) {
	cutoff := now.Add(-j.retention)

	notes, err := j.repo.ListNotifications(ctx, uuid.Nil)
	if err != nil {
		return 0, 0, fmt.Errorf("list notifications: %w", err)
	}
	for _, n := range notes {
		if !n.CreatedAt.Before(cutoff) {
			continue
		}
		if err := j.repo.DeleteNotification(ctx, n.ID); err != nil {
			log.Printf("janitor: delete notification %s: %v", n.ID, err)
			continue
		}
		notifications++
	}

	today := now.Format("2006-01-02")
	wins, err := j.repo.ListWindows(ctx, uuid.Nil, "")
	if err != nil {
		return notifications, 0, fmt.Errorf("list windows: %w", err)
	}
	for _, w := range wins {
		if w.Date >= today {
			continue
		}
		if err := j.repo.DeleteWindow(ctx, w.ID); err != nil {
			log.Printf("janitor: delete window %s: %v", w.ID, err)
			continue
		}
		windows++
	}

	return notifications, windows, nil
}
