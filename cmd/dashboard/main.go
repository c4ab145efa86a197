package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"invest-dashboard/internal/eod"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/market"
	"invest-dashboard/internal/report"
	"invest-dashboard/internal/server"
	"invest-dashboard/internal/store"
	"invest-dashboard/internal/trace"
	"invest-dashboard/internal/tradelog"
)

func main() {
	root := newRootCmd()
	err := root.Execute()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = trace.Shutdown(shutdownCtx)

	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		cfg        *store.Config
	)

	root := &cobra.Command{
		Use:          "dashboard",
		Short:        "Korean market dashboard API",
		Long:         "Serves market quotes, technical indicators, AI market reports and brokerage access for the investment dashboard.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := initializeSystem(ctx); err != nil {
				return err
			}
			c, err := loadConfig(ctx, configPath)
			if err != nil {
				return err
			}
			cfg = c
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "configuration file path")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), cfg)
			},
		},
		newIndicatorsCmd(&cfg),
		newReportCmd(&cfg),
		newEodCmd(&cfg),
	)
	return root
}

func runServe(parent context.Context, cfg *store.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	if err := a.tradeLog.CompressOlder(cfg.TradeLog.RetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old logs", "error", err)
	}

	jobs, err := scheduleMaintenance(ctx, a)
	if err != nil {
		return err
	}
	defer jobs.Stop()

	srv := server.New(cfg, server.Deps{
		Quotes:     a.quotes,
		Broker:     a.broker,
		Fallback:   a.fallback,
		Strategies: a.strategies,
		AutoTrader: a.auto,
		History:    a.history,
		Analysis:   a.analysis,
	}, newAccessLogger(cfg.Server.Mode))

	logger.Info(ctx, "Dashboard started",
		"broker", a.broker.Name(),
		"llm", cfg.LLM.Provider,
		"universe", len(cfg.Universe),
	)
	if err := srv.Run(ctx); err != nil {
		logger.ErrorWithErr(ctx, "HTTP server failed", err)
		return err
	}

	logger.Info(ctx, "Shutting down...")
	if p, err := a.eod.SummarizeToday(context.WithoutCancel(ctx)); err == nil && p != "" {
		logger.Info(ctx, "EOD CSV written", "path", p)
	}
	return nil
}

// newIndicatorsCmd prints indicator results for the universe or the given
// codes.
func newIndicatorsCmd(cfg **store.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "indicators [codes...]",
		Short: "Print technical indicators and the market summary as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			if len(args) > 0 {
				c.Universe = pickUniverse(c.Universe, args)
			}
			a := newAnalysisApp(cmd.Context(), c)
			defer a.news.Close()

			t := a.analysis.Technical(cmd.Context())
			t.Indicators = report.Localize(t.Indicators)
			t.Summary = report.LocalizeSummary(t.Summary)
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
}

// pickUniverse keeps configured names for known codes and uses the code as
// the name otherwise.
func pickUniverse(configured []store.Stock, codes []string) []store.Stock {
	names := make(map[string]string, len(configured))
	for _, s := range configured {
		names[s.Code] = s.Name
	}
	out := make([]store.Stock, 0, len(codes))
	for _, code := range codes {
		name, ok := names[code]
		if !ok {
			name = code
		}
		out = append(out, store.Stock{Code: code, Name: name})
	}
	return out
}

func newReportCmd(cfg **store.Config) *cobra.Command {
	var (
		holdings []string
		stream   bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compose one market report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := newAnalysisApp(ctx, *cfg)
			defer a.news.Close()

			if !stream {
				return printJSON(cmd.OutOrStdout(), a.analysis.Generate(ctx, holdings))
			}
			out := cmd.OutOrStdout()
			return a.analysis.Stream(ctx, holdings, func(frame string) error {
				_, err := io.WriteString(out, frame)
				return err
			})
		},
	}
	cmd.Flags().StringSliceVar(&holdings, "holdings", nil, "held stock codes to include, comma-separated")
	cmd.Flags().BoolVar(&stream, "stream", false, "print the report as server-sent event frames")
	return cmd
}

func newEodCmd(cfg **store.Config) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "eod",
		Short: "Write the end-of-day order summary CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now().In(market.KST)
			if date != "" {
				t, err := time.ParseInLocation("2006-01-02", date, market.KST)
				if err != nil {
					return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
				}
				day = t
			}

			s := eod.NewSummarizer(tradelog.New((*cfg).TradeLog.Dir))
			p, err := s.SummarizeDay(cmd.Context(), day)
			if err != nil {
				return err
			}
			if p == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no orders logged on", day.Format("2006-01-02"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "EOD CSV written:", p)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "trading day in YYYY-MM-DD (today in KST if omitted)")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
