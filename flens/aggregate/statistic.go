package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrUnknownStatistic is returned by Statistic for an unsupported kind.
var ErrUnknownStatistic = errors.New("unknown statistic")

// Statistics lists the kinds accepted by Statistic.
var Statistics = []string{
	"directories",
	"timeseries",
	"sunburst",
	"hierarchy",
	"navigation",
	"extensions",
	"sizes",
	"rows",
}

type TimeSeriesReport struct {
	Series      TimeSeries `json:"series"`
	Directories []string   `json:"directories"`
}

// RowCountsReport carries a partial row count and the files it left out.
type RowCountsReport struct {
	Counts RowCounts `json:"counts"`
	Errors []string  `json:"errors"`
}

// Statistic computes one named view, ready for serialization.
func (e *Engine) Statistic(ctx context.Context, kind string) (any, error) {
	switch kind {
	case "directories":
		return e.CountsAndSizesByDirectory(), nil
	case "timeseries":
		series, dirs := e.TimeSeriesByDateAndDirectory()
		return TimeSeriesReport{Series: series, Directories: dirs}, nil
	case "sunburst":
		return e.SunburstCounts(), nil
	case "hierarchy":
		return e.HierarchyAsNamedNodes(), nil
	case "navigation":
		return e.NavigationTree(), nil
	case "extensions":
		return e.ExtensionBreakdown(), nil
	case "sizes":
		return e.SizeSummary(), nil
	case "rows":
		counts, err := e.RowCountsByDirectory(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return RowCountsReport{Counts: counts, Errors: ErrorStrings(err)}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownStatistic, kind)
	}
}

// ErrorStrings flattens a multierror, or a single error, into messages.
func ErrorStrings(err error) []string {
	if err == nil {
		return []string{}
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		out := make([]string, len(merr.Errors))
		for i, e := range merr.Errors {
			out[i] = e.Error()
		}
		return out
	}
	return []string{err.Error()}
}
