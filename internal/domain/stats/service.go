package stats

import (
	"context"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/org"
)

// Aggregator walks a scope of the organizational tree for one date and
// rolls the per-employee day classifications up into ScopeStats.
type Aggregator interface {
	// Aggregate computes the roll-up for a scope. Per-employee failures
	// fold into the absence bucket or are dropped from worked-hour sums;
	// one bad record never aborts the scope.
	Aggregate(ctx context.Context, scope org.Scope, date time.Time) (ScopeStats, error)

	// AggregateWithRows additionally returns the per-employee rows, for
	// report export.
	AggregateWithRows(ctx context.Context, scope org.Scope, date time.Time) (ScopeReport, error)

	// Breakdown computes the roll-up of each direct child of the scope:
	// per-site for a company, per-establishment for a site. The child
	// TotalEmployees sum to the parent's.
	Breakdown(ctx context.Context, scope org.Scope, date time.Time) ([]ScopeStats, error)
}
