// Package lifecycle hosts the background maintenance jobs that keep the
// catalog within its configured limits outside the request path: the
// preempt-policy sweeper. It implements the internal/scheduler.Job
// contract so the sweeper plugs into the same periodic-job runner as
// any other scheduled task.
package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/store"
)

// PreemptSweeper implements scheduler.Job. On each tick it deletes every
// pad whose last_access_at exceeds the configured preempt age, across all
// tenants.
type PreemptSweeper struct {
	store  *store.Store
	maxAge time.Duration
	logger *slog.Logger
}

// NewPreemptSweeper constructs a sweeper bound to st, evicting pads idle
// longer than maxAge. A non-positive maxAge disables the sweeper (Run is a
// no-op), matching the "preempt" policy only being meaningful when
// preempt_age is configured.
func NewPreemptSweeper(st *store.Store, maxAge time.Duration, logger *slog.Logger) *PreemptSweeper {
	return &PreemptSweeper{store: st, maxAge: maxAge, logger: logger}
}

// Name identifies the job for scheduler logging.
func (p *PreemptSweeper) Name() string { return "preempt-sweeper" }

// Run performs one sweep pass, deleting stale pads and logging each
// eviction at debug level; a context cancellation mid-sweep (e.g. shutdown
// draining) stops the sweep without treating the partial progress as an
// error.
func (p *PreemptSweeper) Run(ctx context.Context) error {
	if p.maxAge <= 0 {
		return nil
	}
	swept, err := p.store.SweepPreempt(ctx, p.maxAge)
	if err != nil && ctx.Err() == nil {
		return err
	}
	if len(swept) > 0 {
		p.logger.Info("preempt sweep evicted pads", "count", len(swept), "max_age", p.maxAge)
		for _, s := range swept {
			p.logger.Debug("preempt sweep evicted pad", "tenant_id", s.TenantID, "scratch_id", s.ScratchID)
		}
	}
	return nil
}
