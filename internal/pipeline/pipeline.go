package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/wishlist-mirror/internal/assets"
	"github.com/maltedev/wishlist-mirror/internal/database"
	"github.com/maltedev/wishlist-mirror/internal/models"
	"github.com/maltedev/wishlist-mirror/internal/publish"
	"github.com/maltedev/wishlist-mirror/internal/scraper"
)

// ErrExtractionEmpty means the listing yielded no usable items. It aborts
// the run before anything on disk is touched.
var ErrExtractionEmpty = errors.New("no items found on listing")

type Synchronizer interface {
	Sync(ctx context.Context, items []*models.Item) (*assets.Result, error)
}

type ManifestWriter interface {
	Write(items []*models.Item) error
}

type Publisher interface {
	Publish(ctx context.Context) (publish.Outcome, error)
}

type RunRecorder interface {
	Record(ctx context.Context, run *database.Run) error
}

type Notifier interface {
	NotifyUpdated(ctx context.Context, runID uuid.UUID, items []*models.Item) error
}

type Report struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Found      int
	Downloaded int
	Existing   int
	Failed     int
	Written    int
	Outcome    publish.Outcome
	// PublishErr is set when publishing failed; local files are still
	// up to date.
	PublishErr error
}

// Pipeline runs harvest, image sync, manifest write and publish once, in
// that order.
type Pipeline struct {
	harvester scraper.Harvester
	sync      Synchronizer
	writer    ManifestWriter
	publisher Publisher
	recorder  RunRecorder
	notifier  Notifier
	logger    *slog.Logger
}

// New wires the mandatory stages. A nil publisher disables publishing.
func New(h scraper.Harvester, s Synchronizer, w ManifestWriter, p Publisher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		harvester: h,
		sync:      s,
		writer:    w,
		publisher: p,
		logger:    logger.With("component", "pipeline"),
	}
}

func (p *Pipeline) WithRecorder(r RunRecorder) *Pipeline {
	p.recorder = r
	return p
}

func (p *Pipeline) WithNotifier(n Notifier) *Pipeline {
	p.notifier = n
	return p
}

func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
		Outcome:   publish.OutcomeSkipped,
	}
	logger := p.logger.With("run_id", report.RunID)

	items, err := p.run(ctx, logger, report)
	report.FinishedAt = time.Now()
	p.record(ctx, logger, report, err)

	if err != nil {
		return report, err
	}

	if report.Outcome == publish.OutcomePushed && p.notifier != nil {
		if err := p.notifier.NotifyUpdated(ctx, report.RunID, items); err != nil {
			logger.Warn("failed to publish update event", "error", err)
		}
	}

	return report, nil
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, report *Report) ([]*models.Item, error) {
	logger.Info("harvesting wishlist")
	items, err := p.harvester.Harvest(ctx)
	if err != nil {
		return nil, err
	}

	items = usable(models.Dedupe(items), logger)
	report.Found = len(items)
	if len(items) == 0 {
		return nil, ErrExtractionEmpty
	}
	logger.Info("items found", "count", len(items))

	result, err := p.sync.Sync(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("image sync interrupted: %w", err)
	}
	report.Downloaded = result.Downloaded
	report.Existing = result.Existing
	report.Failed = result.Failed

	if err := p.writer.Write(result.Items); err != nil {
		return nil, err
	}
	report.Written = len(result.Items)

	if p.publisher == nil {
		logger.Info("publishing disabled")
		return result.Items, nil
	}

	outcome, err := p.publisher.Publish(ctx)
	if err != nil {
		logger.Warn("publish failed, local files were updated", "error", err)
		report.PublishErr = err
		return result.Items, nil
	}
	report.Outcome = outcome

	return result.Items, nil
}

func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, report *Report, runErr error) {
	if p.recorder == nil {
		return
	}

	run := &database.Run{
		ID:             report.RunID,
		StartedAt:      report.StartedAt,
		FinishedAt:     report.FinishedAt,
		Found:          report.Found,
		Downloaded:     report.Downloaded,
		Existing:       report.Existing,
		Failed:         report.Failed,
		PublishOutcome: string(report.Outcome),
	}

	if err := errors.Join(runErr, report.PublishErr); err != nil {
		msg := err.Error()
		run.ErrorMessage = &msg
	}

	if err := p.recorder.Record(ctx, run); err != nil {
		logger.Warn("failed to record run", "error", err)
	}
}

// usable drops items that cannot be synchronized.
func usable(items []*models.Item, logger *slog.Logger) []*models.Item {
	out := items[:0]
	for _, item := range items {
		if problems := item.Validate(); len(problems) > 0 {
			logger.Warn("dropping item", "id", item.ID, "problems", problems)
			continue
		}
		out = append(out, item)
	}
	return out
}
