package persist

import (
	"context"
	"fmt"
	"sync"

	"github.com/lumen3d/lumen/internal/scene"
)

// Journal buffers registry edit events in memory and flushes them to the
// edit_journal table in one transaction per frame. Record is safe to call
// from a registry observer; it only appends under the journal's own lock
// and never touches the database.
type Journal struct {
	db *DB

	mu      sync.Mutex
	pending []scene.Event
}

func NewJournal(db *DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) Record(ev scene.Event) {
	j.mu.Lock()
	j.pending = append(j.pending, ev)
	j.mu.Unlock()
}

// Pending returns the number of buffered entries.
func (j *Journal) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending)
}

// Flush writes all buffered entries atomically, tagged with the frame they
// were drained on. On failure the entries are put back so the next flush
// retries them.
func (j *Journal) Flush(ctx context.Context, frame uint64) error {
	j.mu.Lock()
	batch := j.pending
	j.pending = nil
	j.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	tx, err := j.db.Pool.Begin(ctx)
	if err != nil {
		j.restore(batch)
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ev := range batch {
		if _, err := tx.Exec(ctx,
			`INSERT INTO edit_journal (frame, op, kind, name, component_id)
			 VALUES ($1, $2, $3, $4, $5)`,
			int64(frame), ev.Op.String(), ev.Kind, ev.Name, int32(ev.ID),
		); err != nil {
			j.restore(batch)
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		j.restore(batch)
		return fmt.Errorf("journal commit: %w", err)
	}
	return nil
}

func (j *Journal) restore(batch []scene.Event) {
	j.mu.Lock()
	j.pending = append(batch, j.pending...)
	j.mu.Unlock()
}
