package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	scrollScript = `() => window.scrollTo(0, document.body.scrollHeight)`
	heightScript = `() => document.body.scrollHeight`

	// stableChecks is how many consecutive no-growth checks end scrolling.
	stableChecks = 2
)

// Evaluator runs page scripts. playwright.Page satisfies it.
type Evaluator interface {
	Evaluate(expression string, arg ...interface{}) (interface{}, error)
}

type ScrollOptions struct {
	SettleInterval time.Duration
	MaxScrolls     int
	Deadline       time.Duration
}

func DefaultScrollOptions() ScrollOptions {
	return ScrollOptions{
		SettleInterval: 2 * time.Second,
		MaxScrolls:     60,
		Deadline:       3 * time.Minute,
	}
}

type ScrollResult struct {
	Scrolls   int
	Height    int
	Converged bool
}

// ScrollToEnd scrolls to the bottom until the document height stops growing
// for two consecutive settle intervals, so lazy-loaded entries materialize.
// MaxScrolls and Deadline bound the loop; hitting either is not an error.
func ScrollToEnd(ctx context.Context, page Evaluator, opts ScrollOptions) (*ScrollResult, error) {
	logger := slog.Default().With("component", "scroller")

	last, err := documentHeight(page)
	if err != nil {
		return nil, err
	}

	var deadline time.Time
	if opts.Deadline > 0 {
		deadline = time.Now().Add(opts.Deadline)
	}

	result := &ScrollResult{Height: last}
	stable := 0

	for result.Scrolls < opts.MaxScrolls {
		if !deadline.IsZero() && time.Now().After(deadline) {
			logger.Warn("scroll deadline reached", "scrolls", result.Scrolls, "height", last)
			return result, nil
		}

		if _, err := page.Evaluate(scrollScript); err != nil {
			return nil, fmt.Errorf("failed to scroll: %w", err)
		}
		result.Scrolls++

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.SettleInterval):
		}

		height, err := documentHeight(page)
		if err != nil {
			return nil, err
		}

		if height > last {
			last = height
			result.Height = height
			stable = 0
			continue
		}

		stable++
		if stable >= stableChecks {
			result.Converged = true
			logger.Debug("page height settled", "scrolls", result.Scrolls, "height", last)
			return result, nil
		}
	}

	logger.Warn("scroll limit reached", "scrolls", result.Scrolls, "height", last)
	return result, nil
}

func documentHeight(page Evaluator) (int, error) {
	v, err := page.Evaluate(heightScript)
	if err != nil {
		return 0, fmt.Errorf("failed to read document height: %w", err)
	}

	switch h := v.(type) {
	case int:
		return h, nil
	case int64:
		return int(h), nil
	case float64:
		return int(h), nil
	default:
		return 0, fmt.Errorf("unexpected document height %T", v)
	}
}
