package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/elonfeng/kwradar/internal/config"
	"github.com/elonfeng/kwradar/internal/metrics"
	"github.com/elonfeng/kwradar/internal/scheduler"
	"github.com/elonfeng/kwradar/internal/store"
	"github.com/elonfeng/kwradar/pkg/alert"
	"github.com/elonfeng/kwradar/pkg/lifecycle"
	"github.com/elonfeng/kwradar/pkg/radar"
	"github.com/elonfeng/kwradar/pkg/scoring"
	"github.com/elonfeng/kwradar/pkg/server"
	"github.com/elonfeng/kwradar/pkg/source"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		for _, candidate := range []string{"config.yaml", "config.toml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	return config.Load(path)
}

func newLogger() (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// app holds what every command needs.
type app struct {
	cfg      *config.Config
	db       *store.SQLiteStore
	analyzer *radar.Analyzer
	filter   *source.Filter
	logger   *zap.Logger
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &app{
		cfg: cfg,
		db:  db,
		analyzer: radar.New(db, radar.Options{
			Brand:         cfg.Analysis.BrandName,
			HistoryMonths: cfg.Analysis.HistoryMonths,
			TopN:          cfg.Analysis.TopN,
		}),
		filter: source.NewFilter(cfg.Filter.IncludeKeywords, cfg.Filter.ExcludeKeywords),
		logger: logger,
	}, nil
}

func (a *app) Close() {
	a.db.Close()
	a.logger.Sync()
}

// sourceFor picks an HTTP or file source from the location's form.
func sourceFor(name, location string, filter *source.Filter) source.Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return source.NewURL(name, location, filter)
	}
	return source.NewFile(name, location, filter)
}

func buildSources(cfg *config.Config, filter *source.Filter) []source.Source {
	sources := make([]source.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		if sc.URL != "" {
			sources = append(sources, source.NewURL(sc.Name, sc.URL, filter))
		} else {
			sources = append(sources, source.NewFile(sc.Name, sc.Path, filter))
		}
	}
	return sources
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func newServer(a *app, m *metrics.Metrics, port int) *server.Server {
	return server.New(a.db, a.analyzer, a.filter, m, a.logger.Named("server"), port)
}

func yoyMode(yoy, noYoY bool) radar.YoYMode {
	switch {
	case yoy:
		return radar.YoYOn
	case noYoY:
		return radar.YoYOff
	}
	return radar.YoYAuto
}

func importSources(ctx context.Context, a *app, sources []source.Source, replace bool) error {
	total := 0
	for i, src := range sources {
		fmt.Fprintf(os.Stderr, "importing %s...\n", src.Name())
		records, err := src.Load(ctx)
		if err != nil {
			return err
		}

		n, err := a.analyzer.Import(ctx, records, replace && i == 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "  imported %d keywords\n", n)
		total += n
	}

	fmt.Fprintf(os.Stderr, "\ntotal: %d keywords from %d sources\n", total, len(sources))
	return nil
}

func runImport(ctx context.Context, locations []string, replace bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sources := make([]source.Source, len(locations))
	for i, loc := range locations {
		sources[i] = sourceFor("", loc, a.filter)
	}
	return importSources(ctx, a, sources, replace)
}

func runCollect(ctx context.Context, names []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	all := buildSources(a.cfg, a.filter)
	if len(all) == 0 {
		return fmt.Errorf("no sources configured")
	}

	// Filter to requested sources only.
	sources := all
	if len(names) > 0 {
		wanted := make(map[string]bool)
		for _, n := range names {
			wanted[strings.ToLower(strings.TrimSpace(n))] = true
		}
		sources = nil
		for _, s := range all {
			if wanted[strings.ToLower(s.Name())] {
				sources = append(sources, s)
			}
		}
		if len(sources) == 0 {
			return fmt.Errorf("no matching sources for: %s", strings.Join(names, ", "))
		}
	}
	return importSources(ctx, a, sources, false)
}

func runRank(ctx context.Context, strategy, brand string, jsonOutput bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.analyzer.Rank(ctx, brand, strategy)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(os.Stdout, results)
	}
	return printRankings(os.Stdout, results)
}

func runClassify(ctx context.Context, category string, mode radar.YoYMode, jsonOutput bool) error {
	var only lifecycle.Category
	if category != "" {
		c, ok := lifecycle.ParseCategory(category)
		if !ok {
			return fmt.Errorf("unknown category %q", category)
		}
		only = c
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Forcing a rule set previews it; only auto mode updates stored categories.
	classify := a.analyzer.Analyze
	if mode != radar.YoYAuto {
		classify = a.analyzer.Classify
	}
	analysis, err := classify(ctx, mode)
	if err != nil {
		return err
	}

	if only != "" {
		all, err := a.db.ListKeywords(ctx, store.ListOpts{})
		if err != nil {
			return err
		}
		keywords := []store.Keyword{}
		for _, k := range all {
			if c := analysis.Assignments.Lookup(k.Keyword); c == only {
				k.Category = c
				keywords = append(keywords, k)
			}
		}
		if jsonOutput {
			return writeJSON(os.Stdout, keywords)
		}
		return printKeywords(os.Stdout, keywords)
	}

	if jsonOutput {
		return writeJSON(os.Stdout, analysis)
	}
	return printCounts(os.Stdout, analysis)
}

func runServe(ctx context.Context, port int) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if port == 0 {
		port = a.cfg.Server.Port
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := metrics.New(a.db, a.logger)
	srv := newServer(a, m, port)
	return srv.ListenAndServe(ctx)
}

func runDaemon(ctx context.Context, port int) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if port == 0 {
		port = a.cfg.Server.Port
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := metrics.New(a.db, a.logger)
	alertMgr := buildAlertManager(a.cfg)
	alertMgr.OnSent(func(name string) { m.AlertsSent.WithLabelValues(name).Inc() })

	sched := scheduler.New(scheduler.Config{
		Store:      a.db,
		Analyzer:   a.analyzer,
		Sources:    buildSources(a.cfg, a.filter),
		Alerts:     alertMgr,
		Metrics:    m,
		Logger:     a.logger.Named("scheduler"),
		Interval:   a.cfg.Schedule.ParseAnalyzeInterval(),
		Categories: a.cfg.Alerts.WatchedCategories(),
	})
	srv := newServer(a, m, port)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return srv.ListenAndServe(ctx)
	})

	err = g.Wait()
	a.logger.Info("shut down")
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRankings(w io.Writer, results []scoring.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "== %s ==\n", r.Strategy)
		if len(r.Results) == 0 {
			fmt.Fprintln(tw, "no keywords")
			continue
		}
		fmt.Fprintln(tw, "#\tSCORE\tKEYWORD\tVOLUME\tAVG CPC\tGROWTH")
		for j, sk := range r.Results {
			fmt.Fprintf(tw, "%d\t%.3f\t%s\t%.0f\t%.2f\t%s\n",
				j+1, sk.Score, sk.Keyword, sk.SearchVolume, sk.AvgCPC(), alert.Growth(&sk.Record))
		}
	}
	return tw.Flush()
}

func printCounts(w io.Writer, a *radar.Analysis) error {
	rules := "three-month"
	if a.HasYoYData {
		rules = "year-over-year"
	}
	fmt.Fprintf(w, "%d keywords classified with %s rules\n\n", a.KeywordCount, rules)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tCOUNT\tDESCRIPTION")
	for _, cc := range a.Counts {
		if cc.Count == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", cc.Category, cc.Count, cc.Category.Description())
	}
	return tw.Flush()
}

func printKeywords(w io.Writer, keywords []store.Keyword) error {
	if len(keywords) == 0 {
		fmt.Fprintln(w, "no keywords in this category")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEYWORD\tVOLUME\tCOMPETITION\tGROWTH")
	for i := range keywords {
		k := &keywords[i]
		fmt.Fprintf(tw, "%s\t%.0f\t%s\t%s\n", k.Keyword, k.SearchVolume, k.CompetitionLevel(), alert.Growth(&k.Record))
	}
	return tw.Flush()
}
