package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pauljones0/listing-watch-bot/internal/models"
	"github.com/pauljones0/listing-watch-bot/internal/notifier"
)

const DefaultConcurrency = 3

// Result is the outcome of one topic's pipeline. Stage is the last stage
// reached; when Err is set the topic failed in that stage.
type Result struct {
	Topic    string
	Stage    Stage
	NewAds   int
	Err      error
	Duration time.Duration
}

func (r Result) Failed() bool { return r.Err != nil }

type Processor struct {
	fetcher     PageFetcher
	extractor   ListingExtractor
	detector    ChangeDetector
	notifier    Notifier
	concurrency int
}

func New(f PageFetcher, e ListingExtractor, d ChangeDetector, n Notifier, concurrency int) *Processor {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Processor{
		fetcher:     f,
		extractor:   e,
		detector:    d,
		notifier:    n,
		concurrency: concurrency,
	}
}

// Run processes every enabled topic with at most p.concurrency pipelines in
// flight and waits for all of them. A failing topic never affects the others;
// it is reported through the notifier instead.
func (p *Processor) Run(ctx context.Context, topics []models.Topic) []Result {
	var enabled []models.Topic
	for _, t := range topics {
		if t.Disabled {
			slog.Info("Skipping disabled topic", "topic", t.Name)
			continue
		}
		enabled = append(enabled, t)
	}

	results := make([]Result, len(enabled))
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, t := range enabled {
		g.Go(func() error {
			results[i] = p.processTopic(ctx, t)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Processor) processTopic(ctx context.Context, t models.Topic) Result {
	start := time.Now()
	res := Result{Topic: t.Name, Stage: StagePending}
	logger := slog.With("topic", t.Name)

	enter := func(s Stage) {
		res.Stage = s
		logger.Debug("Stage started", "stage", s)
	}

	res.Err = func() error {
		enter(StageFetching)
		page, err := p.fetcher.Fetch(ctx, t.URL)
		if err != nil {
			return err
		}

		enter(StageExtracting)
		ads, err := p.extractor.Extract(page)
		if err != nil {
			return err
		}
		logger.Info("Extracted ads", "count", len(ads))

		enter(StageDetecting)
		fresh, err := p.detector.DetectNew(ctx, t.Name, ads)
		if err != nil {
			return err
		}
		res.NewAds = len(fresh)

		enter(StageNotifying)
		if err := p.notifyAds(ctx, t.Name, fresh); err != nil {
			return err
		}

		enter(StageDone)
		return nil
	}()
	res.Duration = time.Since(start)

	if res.Err != nil {
		logger.Error("Topic failed", "stage", res.Stage, "error", res.Err)
		p.notifyFailure(ctx, t.Name, res.Stage, res.Err)
		return res
	}
	logger.Info("Topic done", "new", res.NewAds, "duration", res.Duration)
	return res
}

// notifyAds sends one message per ad, preferring a photo when the ad has an
// image. Every ad is attempted; failures are joined.
func (p *Processor) notifyAds(ctx context.Context, topic string, ads []models.AdRecord) error {
	var errs []error
	for _, ad := range ads {
		text := notifier.FormatAd(topic, ad)
		var err error
		if ad.ImageURL != "" {
			err = p.notifier.SendPhoto(ctx, ad.ImageURL, text)
		} else {
			err = p.notifier.SendText(ctx, text)
		}
		if err != nil {
			slog.Warn("Failed to send ad", "topic", topic, "link", ad.FullLink, "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d notifications failed: %w", len(errs), len(ads), errors.Join(errs...))
	}
	return nil
}

func (p *Processor) notifyFailure(ctx context.Context, topic string, stage Stage, cause error) {
	msg := notifier.FormatFailure(topic, fmt.Errorf("%s: %w", stage, cause))
	if err := p.notifier.SendText(ctx, msg); err != nil {
		slog.Warn("Failed to send failure notification", "topic", topic, "error", err)
	}
}
