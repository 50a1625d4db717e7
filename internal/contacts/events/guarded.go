package events

import (
	"context"
	"fmt"
	"log/slog"

	"addressbook/pkg/platform/circuit"
	"addressbook/pkg/platform/sentinel"
)

// GuardedPublisher stops calling a failing broker until the breaker lets a
// probe through, so writes do not wait on produce timeouts during an outage.
type GuardedPublisher struct {
	next    Publisher
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuardedPublisher(next Publisher, breaker *circuit.Breaker, logger *slog.Logger) *GuardedPublisher {
	return &GuardedPublisher{next: next, breaker: breaker, logger: logger}
}

func (p *GuardedPublisher) Publish(ctx context.Context, event Event) error {
	if !p.breaker.Allow() {
		return fmt.Errorf("%s circuit open: %w", p.breaker.Name(), sentinel.ErrUnavailable)
	}

	if err := p.next.Publish(ctx, event); err != nil {
		if _, change := p.breaker.RecordFailure(); change.Opened {
			p.logger.WarnContext(ctx, "event publishing suspended",
				"breaker", p.breaker.Name(),
				"error", err.Error(),
			)
		}
		return err
	}

	if _, change := p.breaker.RecordSuccess(); change.Closed {
		p.logger.InfoContext(ctx, "event publishing resumed", "breaker", p.breaker.Name())
	}
	return nil
}
