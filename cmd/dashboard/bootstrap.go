package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"invest-dashboard/internal/analysis"
	"invest-dashboard/internal/broker"
	"invest-dashboard/internal/broker/brokerobs"
	"invest-dashboard/internal/broker/kite"
	"invest-dashboard/internal/broker/kiwoom"
	"invest-dashboard/internal/broker/mock"
	"invest-dashboard/internal/eod"
	"invest-dashboard/internal/eod/eodobs"
	"invest-dashboard/internal/indicator"
	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/llm"
	"invest-dashboard/internal/llm/claude"
	"invest-dashboard/internal/llm/llmobs"
	"invest-dashboard/internal/llm/openai"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/market"
	"invest-dashboard/internal/news"
	"invest-dashboard/internal/quotes"
	"invest-dashboard/internal/report"
	"invest-dashboard/internal/server"
	"invest-dashboard/internal/store"
	"invest-dashboard/internal/trace"
	"invest-dashboard/internal/trade"
	"invest-dashboard/internal/tradelog"
	"invest-dashboard/internal/types"
)

// initializeSystem loads .env and sets up logging and tracing.
func initializeSystem(ctx context.Context) error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(ctx, trace.WithVersion(server.Version)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// app holds every long-lived component of the dashboard.
type app struct {
	cfg        *store.Config
	quotes     *quotes.Client
	news       *news.Service
	analysis   *analysis.Service
	tradeLog   *tradelog.Log
	broker     interfaces.Broker
	fallback   interfaces.Broker
	eod        interfaces.EodSummarizer
	strategies *trade.StrategyStore
	history    trade.History
	auto       *trade.AutoTrader
}

// newAnalysisApp builds only what the indicator and report commands need.
func newAnalysisApp(ctx context.Context, cfg *store.Config) *app {
	a := &app{cfg: cfg}
	a.quotes = quotes.New(quotes.Options{
		Timeout:   time.Duration(cfg.Sources.TimeoutSeconds) * time.Second,
		UserAgent: cfg.Sources.UserAgent,
		CacheTTL:  time.Duration(cfg.Sources.CacheTTLSeconds) * time.Second,
	})

	newsCfg := news.DefaultServiceConfig()
	newsCfg.MaxArticles = cfg.Sources.NewsLimit
	newsCfg.ScraperTimeout = time.Duration(cfg.Sources.TimeoutSeconds) * time.Second
	scraper := news.NewScraper(
		news.DefaultSources("https://finance.naver.com", "https://news.naver.com"),
		newsCfg.ScraperTimeout,
		cfg.Sources.UserAgent,
	)
	a.news = news.NewService(scraper, newsCfg)

	engine := indicator.NewEngine(a.quotes, cfg.Indicators.HistoryDays,
		time.Duration(cfg.Indicators.SymbolDelayMs)*time.Millisecond)

	composer := report.NewComposer(initializeNarrator(ctx, cfg))
	a.analysis = analysis.NewService(a.quotes, a.news, engine, composer, universe(cfg))
	return a
}

// newApp builds the full dashboard including broker and trading.
func newApp(ctx context.Context, cfg *store.Config) (*app, error) {
	a := newAnalysisApp(ctx, cfg)
	a.tradeLog = tradelog.New(cfg.TradeLog.Dir)
	a.eod = eodobs.Wrap(eod.NewSummarizer(a.tradeLog))
	a.broker = initializeBroker(ctx, cfg, a.tradeLog)
	if cfg.Broker.Provider != "MOCK" {
		// Portfolio pages show the fixed account while the real backend is down.
		a.fallback = mock.New(cfg.Broker.AccountNo)
	}

	strategies, err := trade.OpenStrategies(cfg.AutoTrade.StrategiesFile)
	if err != nil {
		return nil, err
	}
	a.strategies = strategies
	a.history = initializeHistory(ctx, cfg)
	a.auto = trade.NewAutoTrader(a.broker, a.strategies, a.history,
		time.Duration(cfg.AutoTrade.IntervalSeconds)*time.Second)
	return a, nil
}

func (a *app) Close(ctx context.Context) {
	if a.auto != nil {
		a.auto.Stop(ctx)
	}
	if a.broker != nil && a.broker.Connected() {
		a.broker.Disconnect(ctx)
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			logger.Warn(ctx, "Failed to close trade history", "error", err)
		}
	}
	if a.news != nil {
		a.news.Close()
	}
}

func universe(cfg *store.Config) []types.Stock {
	out := make([]types.Stock, len(cfg.Universe))
	for i, s := range cfg.Universe {
		out[i] = types.Stock{Code: s.Code, Name: s.Name}
	}
	return out
}

// initializeBroker picks the backend named in the config and wraps it with
// observability and the order log.
func initializeBroker(ctx context.Context, cfg *store.Config, log *tradelog.Log) interfaces.Broker {
	var brk interfaces.Broker

	switch cfg.Broker.Provider {
	case "KIWOOM":
		brk = kiwoom.New(broker.Params{
			Mode:      cfg.Broker.Mode,
			BaseURL:   cfg.Broker.BaseURL,
			AppKey:    os.Getenv("KIWOOM_APP_KEY"),
			AppSecret: os.Getenv("KIWOOM_SECRET_KEY"),
			AccountNo: cfg.Broker.AccountNo,
			Timeout:   time.Duration(cfg.Sources.TimeoutSeconds) * time.Second,
		})
	case "KITE":
		brk = kite.New(broker.Params{
			Mode:        cfg.Broker.Mode,
			AppKey:      os.Getenv("KITE_API_KEY"),
			AccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
			AccountNo:   cfg.Broker.AccountNo,
			Exchange:    cfg.Broker.Exchange,
			Timeout:     time.Duration(cfg.Sources.TimeoutSeconds) * time.Second,
		})
	default:
		brk = mock.New(cfg.Broker.AccountNo)
		logger.Warn(ctx, "Using MOCK broker - account data is fixed")
	}

	if cfg.Broker.Provider != "MOCK" && cfg.Broker.Mode != broker.ModeLive {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated", "broker", brk.Name())
	}

	return brokerobs.Wrap(brk, log)
}

// initializeNarrator returns nil when no provider is usable, which makes the
// composer use the templated report.
func initializeNarrator(ctx context.Context, cfg *store.Config) interfaces.Narrator {
	var (
		narrator interfaces.Narrator
		err      error
	)

	switch cfg.LLM.Provider {
	case "OPENAI":
		var n *openai.Narrator
		if n, err = openai.NewNarrator(ctx, cfg); err == nil {
			narrator = n
		}
	case "CLAUDE":
		var n *claude.Narrator
		if n, err = claude.NewNarrator(cfg); err == nil {
			narrator = n
		}
	default:
		logger.Warn(ctx, "No LLM provider configured - reports use the templated fallback")
		return nil
	}

	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			logger.Warn(ctx, "LLM provider unavailable - reports use the templated fallback",
				"provider", cfg.LLM.Provider, "reason", err.Error())
		} else {
			logger.ErrorWithErr(ctx, "Failed to initialize LLM provider", err, "provider", cfg.LLM.Provider)
		}
		return nil
	}

	logger.Info(ctx, "LLM narrator ready", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	return llmobs.Wrap(narrator, cfg.LLM.Provider)
}

// initializeHistory opens the sqlite trade history, falling back to memory
// when the database cannot be opened.
func initializeHistory(ctx context.Context, cfg *store.Config) trade.History {
	if cfg.AutoTrade.HistoryDB == "" {
		return trade.NewMemoryHistory()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.AutoTrade.HistoryDB), 0o755); err != nil {
		logger.Warn(ctx, "Cannot create trade history directory, keeping history in memory", "error", err)
		return trade.NewMemoryHistory()
	}
	h, err := trade.OpenSQLiteHistory(ctx, cfg.AutoTrade.HistoryDB)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to open trade history, keeping history in memory", err,
			"path", cfg.AutoTrade.HistoryDB)
		return trade.NewMemoryHistory()
	}
	return h
}

// newAccessLogger builds the zap logger used for HTTP access lines.
func newAccessLogger(mode string) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if mode == "debug" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("http")
}

// scheduleMaintenance registers the end-of-day summary and order-log
// compression in KST.
func scheduleMaintenance(ctx context.Context, a *app) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(market.KST))

	if _, err := c.AddFunc(a.cfg.AutoTrade.EODSchedule, func() {
		if p, err := a.eod.SummarizeToday(ctx); err == nil && p != "" {
			logger.Info(ctx, "EOD CSV written", "path", p)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule eod: %w", err)
	}

	if _, err := c.AddFunc("@daily", func() {
		if err := a.tradeLog.CompressOlder(a.cfg.TradeLog.RetentionDays); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule log compression: %w", err)
	}

	c.Start()
	return c, nil
}
