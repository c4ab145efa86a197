package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"invest-dashboard/internal/broker"
	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/trade"
	"invest-dashboard/internal/types"
)

// AutoTrader is satisfied by *trade.AutoTrader.
type AutoTrader interface {
	Start(ctx context.Context) (bool, error)
	Stop(ctx context.Context)
	Status() trade.Status
}

type TradeController struct {
	broker       interfaces.Broker
	strategies   *trade.StrategyStore
	auto         AutoTrader
	history      trade.History
	historyLimit int
}

func NewTradeController(b interfaces.Broker, s *trade.StrategyStore, auto AutoTrader, h trade.History, historyLimit int) *TradeController {
	if historyLimit <= 0 {
		historyLimit = trade.DefaultHistoryLimit
	}
	return &TradeController{broker: b, strategies: s, auto: auto, history: h, historyLimit: historyLimit}
}

// RegisterRoutes maps endpoints under /api/trade.
func (ctrl *TradeController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/order", ctrl.placeOrder)

	auto := router.Group("/auto")
	{
		auto.GET("/status", ctrl.autoStatus)
		auto.POST("/start", ctrl.autoStart)
		auto.POST("/stop", ctrl.autoStop)
	}

	strategies := router.Group("/strategies")
	{
		strategies.GET("", ctrl.listStrategies)
		strategies.POST("", ctrl.createStrategy)
		strategies.PUT("/:id", ctrl.updateStrategy)
		strategies.DELETE("/:id", ctrl.deleteStrategy)
		strategies.POST("/:id/toggle", ctrl.toggleStrategy)
	}

	router.GET("/history", ctrl.listHistory)
}

type orderRequest struct {
	Code      string `json:"code" binding:"required"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
	OrderType string `json:"order_type"`
}

// placeOrder sends a manual order. Price 0 means a market order.
func (ctrl *TradeController) placeOrder(c *gin.Context) {
	req := orderRequest{OrderType: string(types.SideBuy)}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	resp, err := ctrl.broker.PlaceOrder(c.Request.Context(), types.OrderReq{
		Side:      types.Side(req.OrderType),
		Code:      req.Code,
		Quantity:  req.Quantity,
		Price:     req.Price,
		PriceType: broker.PriceTypeFor(req.Price),
		Tag:       "manual",
	})
	switch {
	case errors.Is(err, broker.ErrInvalidOrder):
		fail(c, http.StatusBadRequest, err)
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (ctrl *TradeController) autoStatus(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.auto.Status())
}

func (ctrl *TradeController) autoStart(c *gin.Context) {
	started, err := ctrl.auto.Start(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	msg := "Started"
	if !started {
		msg = "Already running"
	}
	c.JSON(http.StatusOK, gin.H{"success": started, "message": msg})
}

func (ctrl *TradeController) autoStop(c *gin.Context) {
	ctrl.auto.Stop(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Stopped"})
}

func (ctrl *TradeController) listStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.strategies.List())
}

type createStrategyRequest struct {
	Name              string            `json:"name" binding:"required"`
	StockCode         string            `json:"stockCode" binding:"required"`
	StockName         string            `json:"stockName"`
	BuyConditions     []trade.Condition `json:"buyConditions"`
	SellConditions    []trade.Condition `json:"sellConditions"`
	MaxAmount         int64             `json:"maxAmount"`
	LossCutPercent    *float64          `json:"lossCutPercent"`
	ProfitTakePercent *float64          `json:"profitTakePercent"`
}

func (ctrl *TradeController) createStrategy(c *gin.Context) {
	var req createStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	st := trade.Strategy{
		Name:              req.Name,
		StockCode:         req.StockCode,
		StockName:         req.StockName,
		BuyConditions:     req.BuyConditions,
		SellConditions:    req.SellConditions,
		MaxAmount:         req.MaxAmount,
		LossCutPercent:    trade.DefaultLossCutPercent,
		ProfitTakePercent: trade.DefaultProfitTakePercent,
	}
	if req.LossCutPercent != nil {
		st.LossCutPercent = *req.LossCutPercent
	}
	if req.ProfitTakePercent != nil {
		st.ProfitTakePercent = *req.ProfitTakePercent
	}

	created, err := ctrl.strategies.Create(st)
	if err != nil {
		ctrl.strategyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": created.ID})
}

func (ctrl *TradeController) updateStrategy(c *gin.Context) {
	var patch trade.StrategyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if _, err := ctrl.strategies.Update(c.Param("id"), patch); err != nil {
		ctrl.strategyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ctrl *TradeController) deleteStrategy(c *gin.Context) {
	if err := ctrl.strategies.Delete(c.Param("id")); err != nil {
		ctrl.strategyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ctrl *TradeController) toggleStrategy(c *gin.Context) {
	st, err := ctrl.strategies.Toggle(c.Param("id"))
	if err != nil {
		ctrl.strategyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "enabled": st.Enabled})
}

func (ctrl *TradeController) strategyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trade.ErrStrategyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
	case errors.Is(err, trade.ErrInvalidStrategy):
		fail(c, http.StatusBadRequest, err)
	default:
		fail(c, http.StatusInternalServerError, err)
	}
}

func (ctrl *TradeController) listHistory(c *gin.Context) {
	limit := ctrl.historyLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	recs, err := ctrl.history.Recent(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}
