package store

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
)

// SweptPad identifies one pad removed by a preempt sweep, for logging.
type SweptPad struct {
	TenantID  string
	ScratchID string
}

// SweepPreempt implements the "preempt" eviction policy's background
// half: delete every pad whose last_access_at is older than maxAge,
// regardless of tenant. Unlike the request-path operations in pads.go this
// walks the whole pads bucket once per tick — it is a maintenance job, not
// a per-request read, so no tenant-prefix scoping applies. Stale pads are
// collected in one read transaction and then deleted one by one through
// DeletePad, whose own bbolt.Update keeps each deletion atomic across
// pads/cells/embeddings; ctx is re-evaluated between pads so a shutdown in
// progress can cut a long sweep short without losing already-committed
// deletions.
func (s *Store) SweepPreempt(ctx context.Context, maxAge time.Duration) ([]SweptPad, error) {
	if maxAge <= 0 {
		return nil, nil
	}
	cutoff := nowFunc().Add(-maxAge)

	var stale []SweptPad
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketPads)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var row padRow
			if err := json.Unmarshal(v, &row); err != nil {
				continue
			}
			if row.LastAccessAt.Before(cutoff) {
				stale = append(stale, SweptPad{TenantID: row.TenantID, ScratchID: row.ScratchID})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var deleted []SweptPad
	for _, p := range stale {
		if ctx.Err() != nil {
			return deleted, ctx.Err()
		}
		ok, err := s.DeletePad(ctx, p.TenantID, p.ScratchID)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted = append(deleted, p)
		}
	}
	if s.metrics != nil && len(deleted) > 0 {
		s.metrics.Evictions.WithLabelValues(string(PolicyPreempt)).Add(float64(len(deleted)))
	}
	return deleted, nil
}
