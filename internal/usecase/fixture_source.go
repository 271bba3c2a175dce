package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/domain/fixture"
	"github.com/riskibarqy/betstats/internal/platform/logging"
)

type IngestMode string

const (
	ModeSeason   IngestMode = "season"
	ModeLive     IngestMode = "live"
	ModeUpcoming IngestMode = "upcoming"
	ModeRecent   IngestMode = "recent"
)

func ParseIngestMode(v string) (IngestMode, error) {
	switch mode := IngestMode(v); mode {
	case ModeSeason, ModeLive, ModeUpcoming, ModeRecent:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: unknown ingest mode %q", ErrInvalidInput, v)
	}
}

// FetchRequest describes what one league batch needs from a source.
type FetchRequest struct {
	Mode       IngestMode
	League     catalog.League
	SeasonYear int
	From       time.Time
	To         time.Time
}

// SourceChain consults sources in order and falls through to the next one on
// failure. The last failure is returned when no source succeeds.
type SourceChain struct {
	sources []fixture.Source
	logger  *logging.Logger
}

func NewSourceChain(logger *logging.Logger, sources ...fixture.Source) SourceChain {
	if logger == nil {
		logger = logging.Default()
	}
	out := make([]fixture.Source, 0, len(sources))
	for _, source := range sources {
		if source != nil {
			out = append(out, source)
		}
	}
	return SourceChain{sources: out, logger: logger}
}

func (c SourceChain) Sources() []fixture.Source {
	return append([]fixture.Source(nil), c.sources...)
}

// withoutPaid drops metered sources, used by the dev guard.
func (c SourceChain) withoutPaid() SourceChain {
	out := SourceChain{logger: c.logger}
	for _, source := range c.sources {
		if !source.Paid() {
			out.sources = append(out.sources, source)
		}
	}
	return out
}

func (c SourceChain) hasPaid() bool {
	for _, source := range c.sources {
		if source.Paid() {
			return true
		}
	}
	return false
}

// Fetch returns the fixtures of the first source that serves the request.
func (c SourceChain) Fetch(ctx context.Context, req FetchRequest) ([]fixture.Fixture, fixture.Source, error) {
	var lastErr error
	tried := 0
	for _, source := range c.sources {
		if !source.Supports(req.League) {
			continue
		}

		var (
			items []fixture.Fixture
			err   error
			ok    bool
		)
		switch req.Mode {
		case ModeSeason:
			var fetcher fixture.SeasonFetcher
			if fetcher, ok = source.(fixture.SeasonFetcher); ok {
				items, err = fetcher.FetchSeason(ctx, req.League, req.SeasonYear)
			}
		case ModeUpcoming, ModeRecent, ModeLive:
			var fetcher fixture.RangeFetcher
			if fetcher, ok = source.(fixture.RangeFetcher); ok {
				items, err = fetcher.FetchRange(ctx, req.League, req.From, req.To)
			}
		}
		if !ok {
			continue
		}
		tried++

		if err == nil {
			return items, source, nil
		}
		if ctx.Err() != nil {
			return nil, source, ctx.Err()
		}
		lastErr = err
		c.logger.WarnContext(ctx, "fixture source failed, trying next",
			"source", source.Name(),
			"league", req.League.Key(),
			"mode", string(req.Mode),
			"error", err,
		)
	}

	if tried == 0 {
		return nil, nil, fmt.Errorf("%w: no %s source configured for %s", ErrDependencyUnavailable, req.Mode, req.League.Key())
	}
	return nil, nil, fmt.Errorf("all %s sources failed for %s: %w", req.Mode, req.League.Key(), lastErr)
}

// FetchLive returns in-play fixtures from the first live-capable source.
func (c SourceChain) FetchLive(ctx context.Context) ([]fixture.Fixture, fixture.Source, error) {
	var lastErr error
	tried := 0
	for _, source := range c.sources {
		fetcher, ok := source.(fixture.LiveFetcher)
		if !ok {
			continue
		}
		tried++

		items, err := fetcher.FetchLive(ctx)
		if err == nil {
			return items, source, nil
		}
		if ctx.Err() != nil {
			return nil, source, ctx.Err()
		}
		lastErr = err
		c.logger.WarnContext(ctx, "live source failed, trying next",
			"source", source.Name(),
			"error", err,
		)
	}
	if tried == 0 {
		return nil, nil, fmt.Errorf("%w: no live source configured", ErrDependencyUnavailable)
	}
	return nil, nil, fmt.Errorf("all live sources failed: %w", lastErr)
}

// fetchGoals asks the source for goal events when it can serve them.
func fetchGoals(ctx context.Context, source fixture.Source, externalID string) ([]fixture.Goal, bool, error) {
	fetcher, ok := source.(fixture.GoalFetcher)
	if !ok || externalID == "" {
		return nil, false, nil
	}
	goals, err := fetcher.FetchGoals(ctx, externalID)
	if err != nil {
		return nil, true, err
	}
	return goals, true, nil
}
