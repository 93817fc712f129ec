package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/elonfeng/kwradar/internal/metrics"
	"github.com/elonfeng/kwradar/internal/store"
	"github.com/elonfeng/kwradar/pkg/alert"
	"github.com/elonfeng/kwradar/pkg/keyword"
	"github.com/elonfeng/kwradar/pkg/lifecycle"
	"github.com/elonfeng/kwradar/pkg/radar"
	"github.com/elonfeng/kwradar/pkg/source"
)

// Scheduler periodically refreshes sources, reclassifies the batch and
// alerts on keywords entering watched categories.
type Scheduler struct {
	store      store.Store
	analyzer   *radar.Analyzer
	sources    []source.Source
	alertMgr   *alert.Manager
	metrics    *metrics.Metrics
	logger     *zap.Logger
	interval   time.Duration
	categories []lifecycle.Category
}

// Config holds the scheduler's collaborators. Sources, Metrics and
// Categories may be empty.
type Config struct {
	Store      store.Store
	Analyzer   *radar.Analyzer
	Sources    []source.Source
	Alerts     *alert.Manager
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	Interval   time.Duration
	Categories []lifecycle.Category
}

// New creates a new scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Alerts == nil {
		cfg.Alerts = alert.NewManager(nil)
	}
	return &Scheduler{
		store:      cfg.Store,
		analyzer:   cfg.Analyzer,
		sources:    cfg.Sources,
		alertMgr:   cfg.Alerts,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		interval:   cfg.Interval,
		categories: cfg.Categories,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start.
	s.logger.Info("initial analysis")
	s.tick(ctx)

	s.logger.Info("scheduler running", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.refreshSources(ctx)
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
	}
}

func (s *Scheduler) refreshSources(ctx context.Context) {
	total := 0
	for _, src := range s.sources {
		records, err := src.Load(ctx)
		if err != nil {
			s.logger.Warn("source failed", zap.String("source", src.Name()), zap.Error(err))
			continue
		}

		n, err := s.analyzer.Import(ctx, records, false)
		if err != nil {
			s.logger.Warn("source import failed", zap.String("source", src.Name()), zap.Error(err))
			continue
		}

		s.logger.Info("source refreshed", zap.String("source", src.Name()), zap.Int("keywords", n))
		total += n
	}
	if s.metrics != nil && total > 0 {
		s.metrics.KeywordsImported.Add(float64(total))
	}
}

// RunOnce classifies the stored batch, alerts and records the run.
func (s *Scheduler) RunOnce(ctx context.Context) (*store.Run, error) {
	analysis, err := s.analyzer.Analyze(ctx, radar.YoYAuto)
	if err != nil {
		return nil, err
	}

	sent := s.alert(ctx)

	run := &store.Run{
		KeywordCount: analysis.KeywordCount,
		HasYoYData:   analysis.HasYoYData,
		AlertsSent:   sent,
	}
	if err := s.store.RecordRun(ctx, run); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	if s.metrics != nil {
		s.metrics.AnalysisRuns.Inc()
	}

	s.logger.Info("analysis complete",
		zap.String("run", run.ID),
		zap.Int("keywords", run.KeywordCount),
		zap.Bool("yoy", run.HasYoYData),
		zap.Int("alerts", sent),
	)
	return run, nil
}

// alert broadcasts one notification per watched category that gained
// keywords and returns how many notifications went out.
func (s *Scheduler) alert(ctx context.Context) int {
	if !s.alertMgr.HasNotifiers() || len(s.categories) == 0 {
		return 0
	}

	pending, err := s.store.PendingAlerts(ctx, s.categories)
	if err != nil {
		s.logger.Error("list pending alerts", zap.Error(err))
		return 0
	}

	byCategory := make(map[lifecycle.Category][]store.Keyword)
	for _, k := range pending {
		byCategory[k.Category] = append(byCategory[k.Category], k)
	}

	sent := 0
	for _, cat := range s.categories {
		ks := byCategory[cat]
		if len(ks) == 0 {
			continue
		}

		records := make([]keyword.Record, len(ks))
		ids := make([]string, len(ks))
		for i := range ks {
			records[i] = ks[i].Record
			ids[i] = ks[i].ID
		}

		// A keyword is alerted once per category entry: as soon as any
		// notifier delivered, the entry counts as alerted.
		delivered, err := s.alertMgr.Broadcast(ctx, alert.NewNotification(cat, records))
		if err != nil {
			s.logger.Warn("alert failed", zap.String("category", string(cat)), zap.Int("delivered", delivered), zap.Error(err))
		}
		if delivered == 0 {
			continue
		}

		if err := s.store.MarkAlerted(ctx, ids); err != nil {
			s.logger.Error("mark alerted", zap.String("category", string(cat)), zap.Error(err))
			continue
		}
		sent++
		s.logger.Info("alerted", zap.String("category", string(cat)), zap.Int("keywords", len(ks)))
	}
	return sent
}
