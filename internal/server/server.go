// Package server exposes the dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"invest-dashboard/internal/broker"
	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/store"
	"invest-dashboard/internal/trade"
)

const (
	Version         = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

// Deps are the services behind the routes. Fallback, when set, serves the
// portfolio read routes while Broker is failing; orders never reach it.
type Deps struct {
	Quotes     interfaces.QuoteSource
	Broker     interfaces.Broker
	Fallback   interfaces.Broker
	Strategies *trade.StrategyStore
	AutoTrader AutoTrader
	History    trade.History
	Analysis   Analyzer
}

type Server struct {
	addr   string
	engine *gin.Engine
}

// New builds the router. A nil access logger discards request lines.
func New(cfg *store.Config, deps Deps, reqLog *zap.Logger) *Server {
	if reqLog == nil {
		reqLog = zap.NewNop()
	}
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(accessLog(reqLog), recovery(reqLog), cors.New(corsConfig(cfg.Server.FrontendOrigin)))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Investment Dashboard API", "version": Version})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")
	{
		NewMarketController(deps.Quotes).RegisterRoutes(api.Group("/market"))
		portfolio := deps.Broker
		if deps.Fallback != nil {
			portfolio = broker.WithFallback(deps.Broker, deps.Fallback)
		}
		NewPortfolioController(portfolio).RegisterRoutes(api.Group("/portfolio"))
		NewTradeController(deps.Broker, deps.Strategies, deps.AutoTrader, deps.History, cfg.AutoTrade.HistoryLimit).
			RegisterRoutes(api.Group("/trade"))
		NewAnalysisController(deps.Analysis).RegisterRoutes(api.Group("/analysis"))
	}

	return &Server{
		addr:   net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		engine: r,
	}
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled and then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		logger.Info(ctx, "Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}
