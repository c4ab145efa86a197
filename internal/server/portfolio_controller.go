package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invest-dashboard/internal/interfaces"
)

type PortfolioController struct {
	broker interfaces.Broker
}

func NewPortfolioController(b interfaces.Broker) *PortfolioController {
	return &PortfolioController{broker: b}
}

// RegisterRoutes maps endpoints under /api/portfolio.
func (ctrl *PortfolioController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/connect", ctrl.connect)
	router.POST("/disconnect", ctrl.disconnect)
	router.GET("/status", ctrl.status)
	router.GET("/summary", ctrl.summary)
	router.GET("/account", ctrl.account)
	router.GET("/stocks", ctrl.stocks)
}

// connect reports failures in the body; the request itself succeeded.
func (ctrl *PortfolioController) connect(c *gin.Context) {
	if err := ctrl.broker.Connect(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Connected"})
}

func (ctrl *PortfolioController) disconnect(c *gin.Context) {
	ctrl.broker.Disconnect(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Disconnected"})
}

func (ctrl *PortfolioController) status(c *gin.Context) {
	name := ctrl.broker.Name()
	c.JSON(http.StatusOK, gin.H{
		"connected": ctrl.broker.Connected(),
		"broker":    name,
		"mock":      name == "MOCK",
	})
}

func (ctrl *PortfolioController) summary(c *gin.Context) {
	acc, err := ctrl.broker.Account(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totalValue":    acc.TotalEvaluation,
		"totalProfit":   acc.TotalProfit,
		"profitPercent": acc.ProfitPercent,
	})
}

func (ctrl *PortfolioController) account(c *gin.Context) {
	acc, err := ctrl.broker.Account(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

func (ctrl *PortfolioController) stocks(c *gin.Context) {
	hs, err := ctrl.broker.Holdings(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, hs)
}
