package batch

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dietcheck/diet"
)

// Prediction holds the per-predicate verdicts for one input row.
type Prediction struct {
	Index    int
	Verdicts map[diet.Predicate]bool
}

// Runner evaluates ground-truth rows against an engine with bounded
// parallelism. Rows are independent, so computation order is free; results
// are written by row index so output order always matches input order.
type Runner struct {
	engine  *diet.Engine
	workers int
	logger  *zap.Logger
}

// NewRunner builds a runner. Zero workers means one per CPU.
func NewRunner(engine *diet.Engine, workers int, logger *zap.Logger) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{engine: engine, workers: workers, logger: logger}
}

// Run predicts both predicates for every row. The only error source is
// caller cancellation; classification itself never fails.
func (r *Runner) Run(ctx context.Context, rows []Row) ([]Prediction, error) {
	preds := make([]Prediction, len(rows))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range rows {
		i := i
		row := rows[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := Prediction{
				Index:    row.Index,
				Verdicts: make(map[diet.Predicate]bool, len(diet.Predicates)),
			}
			for _, pred := range diet.Predicates {
				p.Verdicts[pred] = r.engine.RecipeSatisfies(pred, row.Ingredients)
			}
			preds[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.logger.Info("batch evaluation finished",
		zap.Int("rows", len(rows)),
		zap.Int("workers", r.workers),
		zap.Int("cached_phrases", r.engine.CacheLen()))
	return preds, nil
}
