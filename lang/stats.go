package lang

import (
	"log/slog"
	"sync/atomic"
)

var stats struct {
	parsedStrings       atomic.Int64
	parsedLists         atomic.Int64
	evaluations         atomic.Int64
	evaluationsComputed atomic.Int64
	exprEvaluations     atomic.Int64
}

// Statistics is a snapshot of the package's activity counters.
type Statistics struct {
	ParsedStrings       int64 // strings parsed by ParseString
	ParsedLists         int64 // lists parsed by ParseStringList
	Evaluations         int64 // macro evaluations requested
	EvaluationsComputed int64 // macro evaluations not served from a cache
	ExprEvaluations     int64 // ad hoc expression evaluations
}

// Stats returns the current counter values.
func Stats() Statistics {
	return Statistics{
		ParsedStrings:       stats.parsedStrings.Load(),
		ParsedLists:         stats.parsedLists.Load(),
		Evaluations:         stats.evaluations.Load(),
		EvaluationsComputed: stats.evaluationsComputed.Load(),
		ExprEvaluations:     stats.exprEvaluations.Load(),
	}
}

// Sub returns the counter deltas from an earlier snapshot.
func (s Statistics) Sub(prev Statistics) Statistics {
	return Statistics{
		ParsedStrings:       s.ParsedStrings - prev.ParsedStrings,
		ParsedLists:         s.ParsedLists - prev.ParsedLists,
		Evaluations:         s.Evaluations - prev.Evaluations,
		EvaluationsComputed: s.EvaluationsComputed - prev.EvaluationsComputed,
		ExprEvaluations:     s.ExprEvaluations - prev.ExprEvaluations,
	}
}

// LogValue implements slog.LogValuer.
func (s Statistics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("parsed_strings", s.ParsedStrings),
		slog.Int64("parsed_lists", s.ParsedLists),
		slog.Int64("evaluations", s.Evaluations),
		slog.Int64("evaluations_computed", s.EvaluationsComputed),
		slog.Int64("expr_evaluations", s.ExprEvaluations),
	)
}
