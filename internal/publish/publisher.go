package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var ErrPublish = errors.New("failed to publish")

type Outcome string

const (
	OutcomePushed    Outcome = "pushed"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeSkipped   Outcome = "skipped"
)

const nothingToCommit = "nothing to commit"

// Publisher commits the site working tree and pushes it when something
// changed.
type Publisher struct {
	git    Git
	now    func() time.Time
	logger *slog.Logger
}

func NewPublisher(git Git, logger *slog.Logger) *Publisher {
	return &Publisher{
		git:    git,
		now:    time.Now,
		logger: logger.With("component", "publisher"),
	}
}

func CommitMessage(t time.Time) string {
	return "Update wishlist: " + t.Format("2006-01-02 15:04")
}

// Publish stages everything, commits and pushes. A commit with nothing to
// commit is a successful no-op and skips the push.
func (p *Publisher) Publish(ctx context.Context) (Outcome, error) {
	if err := p.git.Stage(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrPublish, err)
	}

	out, err := p.git.Commit(ctx, CommitMessage(p.now()))
	if strings.Contains(out, nothingToCommit) {
		p.logger.Info("no changes to publish")
		return OutcomeUnchanged, nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPublish, err)
	}

	if err := p.git.Push(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrPublish, err)
	}

	p.logger.Info("changes pushed")
	return OutcomePushed, nil
}
