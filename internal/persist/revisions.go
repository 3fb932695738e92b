package persist

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"github.com/lumen3d/lumen/internal/data"
)

// ErrNoRevision is returned when no revision matches the requested label.
var ErrNoRevision = errors.New("persist: no such revision")

// RevisionRepo stores whole-scene snapshots as JSONB manifests. A revision
// is an upsert keyed by label, so repeated saves under the same label keep
// only the latest snapshot.
type RevisionRepo struct {
	db *DB
}

func NewRevisionRepo(db *DB) *RevisionRepo {
	return &RevisionRepo{db: db}
}

func (r *RevisionRepo) Save(ctx context.Context, label string, frame uint64, m *data.Manifest) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal revision: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO scene_revisions (label, frame, components)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (label) DO UPDATE
		 SET frame = EXCLUDED.frame,
		     components = EXCLUDED.components,
		     created_at = now()`,
		label, int64(frame), payload,
	)
	if err != nil {
		return fmt.Errorf("save revision: %w", err)
	}
	return nil
}

func (r *RevisionRepo) Load(ctx context.Context, label string) (*data.Manifest, error) {
	var payload []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT components FROM scene_revisions WHERE label = $1`,
		label,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRevision
	}
	if err != nil {
		return nil, fmt.Errorf("load revision: %w", err)
	}
	var m data.Manifest
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("unmarshal revision: %w", err)
	}
	return &m, nil
}
