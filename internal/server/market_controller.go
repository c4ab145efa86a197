package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/market"
	"invest-dashboard/internal/quotes"
)

type MarketController struct {
	quotes interfaces.QuoteSource
	now    func() time.Time
}

func NewMarketController(q interfaces.QuoteSource) *MarketController {
	return &MarketController{quotes: q, now: time.Now}
}

// RegisterRoutes maps endpoints under /api/market.
func (ctrl *MarketController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/indices", ctrl.indices)
	router.GET("/stock/:code", ctrl.stock)
	router.GET("/commodities", ctrl.commodities)
	router.GET("/status", ctrl.status)
}

func (ctrl *MarketController) indices(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.quotes.Indices(c.Request.Context()))
}

func (ctrl *MarketController) stock(c *gin.Context) {
	q, err := ctrl.quotes.Stock(c.Request.Context(), c.Param("code"))
	if errors.Is(err, quotes.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (ctrl *MarketController) commodities(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.quotes.Commodities(c.Request.Context()))
}

func (ctrl *MarketController) status(c *gin.Context) {
	c.JSON(http.StatusOK, market.Clock(ctrl.now()))
}
