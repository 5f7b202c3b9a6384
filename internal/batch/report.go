package batch

import (
	"fmt"
	"strings"

	"dietcheck/diet"
)

// Mismatch records one row where a prediction disagreed with ground truth.
type Mismatch struct {
	Index     int
	Predicate diet.Predicate
	Expected  bool
	Got       bool
}

// Report aggregates classification quality over an evaluated dataset.
type Report struct {
	Confusion  map[diet.Predicate]*diet.Confusion
	Mismatches []Mismatch
}

// BuildReport scores predictions against their rows. Rows and predictions
// must be index-aligned, which Runner.Run guarantees.
func BuildReport(rows []Row, preds []Prediction) *Report {
	rep := &Report{Confusion: make(map[diet.Predicate]*diet.Confusion, len(diet.Predicates))}
	for _, pred := range diet.Predicates {
		rep.Confusion[pred] = &diet.Confusion{}
	}
	for i, row := range rows {
		if i >= len(preds) {
			break
		}
		for _, pred := range diet.Predicates {
			truth := row.Truth[pred]
			got := preds[i].Verdicts[pred]
			rep.Confusion[pred].Observe(truth, got)
			if truth != got {
				rep.Mismatches = append(rep.Mismatches, Mismatch{
					Index:     row.Index,
					Predicate: pred,
					Expected:  truth,
					Got:       got,
				})
			}
		}
	}
	return rep
}

// Format renders the report for terminal output.
func (r *Report) Format() string {
	var b strings.Builder
	for _, pred := range diet.Predicates {
		c := r.Confusion[pred]
		if c == nil {
			continue
		}
		fmt.Fprintf(&b, "=== %s ===\n", pred)
		fmt.Fprintf(&b, "  precision %.3f  recall %.3f  f1 %.3f  accuracy %.3f\n",
			c.Precision(), c.Recall(), c.F1(), c.Accuracy())
		fmt.Fprintf(&b, "  tp=%d fp=%d tn=%d fn=%d (n=%d)\n",
			c.TP, c.FP, c.TN, c.FN, c.Total())
	}
	return b.String()
}
