package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"invest-dashboard/internal/analysis"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/report"
	"invest-dashboard/internal/types"
)

// Analyzer is satisfied by *analysis.Service.
type Analyzer interface {
	Technical(ctx context.Context) analysis.Technical
	Indices(ctx context.Context) []types.IndexQuote
	News(ctx context.Context) []types.NewsItem
	StockNews(ctx context.Context, code string) []types.NewsItem
	Generate(ctx context.Context, holdings []string) report.Report
	Stream(ctx context.Context, holdings []string, w report.FrameWriter) error
}

type AnalysisController struct {
	svc Analyzer
}

func NewAnalysisController(svc Analyzer) *AnalysisController {
	return &AnalysisController{svc: svc}
}

// RegisterRoutes maps endpoints under /api/analysis.
func (ctrl *AnalysisController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/news", ctrl.news)
	router.GET("/news/stock/:code", ctrl.stockNews)
	router.GET("/indices", ctrl.indices)
	router.GET("/technical", ctrl.technical)
	router.POST("/generate", ctrl.generate)
	router.GET("/generate/stream", ctrl.stream)
}

func (ctrl *AnalysisController) news(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(ctrl.svc.News(c.Request.Context())))
}

func (ctrl *AnalysisController) stockNews(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(ctrl.svc.StockNews(c.Request.Context(), c.Param("code"))))
}

func (ctrl *AnalysisController) indices(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.svc.Indices(c.Request.Context()))
}

// technical returns indicator results and the summary with Korean labels.
func (ctrl *AnalysisController) technical(c *gin.Context) {
	t := ctrl.svc.Technical(c.Request.Context())
	t.Indicators = report.Localize(t.Indicators)
	t.Summary = report.LocalizeSummary(t.Summary)
	c.JSON(http.StatusOK, t)
}

type generateRequest struct {
	Holdings []string `json:"holdings"`
}

// generate accepts an empty body as no holdings.
func (ctrl *AnalysisController) generate(c *gin.Context) {
	var req generateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			fail(c, http.StatusBadRequest, err)
			return
		}
	}
	c.JSON(http.StatusOK, ctrl.svc.Generate(c.Request.Context(), req.Holdings))
}

// stream serves the report as server-sent events. Holdings come as a
// comma-separated query parameter.
func (ctrl *AnalysisController) stream(c *gin.Context) {
	var holdings []string
	for _, h := range strings.Split(c.Query("holdings"), ",") {
		if h = strings.TrimSpace(h); h != "" {
			holdings = append(holdings, h)
		}
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	write := func(frame string) error {
		if _, err := io.WriteString(c.Writer, frame); err != nil {
			return err
		}
		c.Writer.Flush()
		return ctx.Err()
	}
	if err := ctrl.svc.Stream(ctx, holdings, write); err != nil {
		logger.Warn(ctx, "Analysis stream ended early", "error", err)
	}
}

func nonNil(items []types.NewsItem) []types.NewsItem {
	if items == nil {
		return []types.NewsItem{}
	}
	return items
}
