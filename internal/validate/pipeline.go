package validate

import (
	"context"
	"sync"
	"time"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/metrics"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/workerpool"
)

// Pipeline bounds a multi-cell validation request by a single deadline
// across all cells: "bounded by validation_request_timeout
// per request (across all cells), after which the whole request fails
// with VALIDATION_TIMEOUT and no partial result is returned."
type Pipeline struct {
	pool    *workerpool.Pool
	timeout time.Duration
	metrics *metrics.Registry // nil when metrics are disabled
}

// New creates a Pipeline offloading onto pool with the given per-request
// deadline.
func New(pool *workerpool.Pool, timeout time.Duration) *Pipeline {
	return &Pipeline{pool: pool, timeout: timeout}
}

// SetMetrics wires a metrics registry into the pipeline so every cell
// validation increments ValidationRuns by language and outcome.
func (p *Pipeline) SetMetrics(m *metrics.Registry) {
	p.metrics = m
}

func (p *Pipeline) recordOutcome(res model.ValidationResult) {
	if p.metrics == nil {
		return
	}
	outcome := "invalid"
	if res.Valid {
		outcome = "valid"
	}
	p.metrics.ValidationRuns.WithLabelValues(string(res.Language), outcome).Inc()
}

// ValidateCells validates every cell concurrently (bounded by the
// worker pool) and returns all-or-nothing: on timeout the whole request
// fails with VALIDATION_TIMEOUT and no partial results are returned.
func (p *Pipeline) ValidateCells(ctx context.Context, cells []model.Cell, lookup SchemaLookup) ([]model.ValidationResult, error) {
	deadline := p.timeout
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	results := make([]model.ValidationResult, len(cells))
	err := workerpool.RunAll(cctx, p.pool, cells, func(c context.Context, i int, cell model.Cell) error {
		results[i] = Cell(c, cell, lookup)
		p.recordOutcome(results[i])
		return nil
	})
	if err != nil {
		if cctx.Err() != nil {
			return nil, errs.NewValidationTimeout("validation did not complete within %s", deadline)
		}
		return nil, err
	}
	return results, nil
}

// ValidateCell validates a single cell with the same deadline bound,
// used by append_cell/replace_cell's automatic advisory validation.
func (p *Pipeline) ValidateCell(ctx context.Context, cell model.Cell, lookup SchemaLookup) (model.ValidationResult, error) {
	deadline := p.timeout
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var res model.ValidationResult
	var once sync.Once
	err := p.pool.Run(cctx, func(c context.Context) error {
		once.Do(func() { res = Cell(c, cell, lookup) })
		return nil
	})
	if err != nil {
		if cctx.Err() != nil {
			return model.ValidationResult{}, errs.NewValidationTimeout("validation did not complete within %s", deadline)
		}
		return model.ValidationResult{}, err
	}
	p.recordOutcome(res)
	return res, nil
}
