package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dat564/e-commerce-sub001/services"
)

// SweepController exposes the expiry sweep to the external scheduler. The
// endpoint is system-internal and bypasses the credential gate.
type SweepController struct {
	orderService *services.OrderService
	log          *zap.Logger
}

func NewSweepController(orderService *services.OrderService, log *zap.Logger) *SweepController {
	return &SweepController{orderService: orderService, log: log}
}

// ExpireOrders runs one sweep at wall-clock time and reports the number of
// orders cancelled. A storage failure is surfaced to the scheduler but never
// crashes it; the next scheduled invocation retries naturally.
func (sc *SweepController) ExpireOrders(c *gin.Context) {
	count, err := sc.orderService.SweepExpired(c.Request.Context(), time.Now())
	if err != nil {
		sc.log.Error("expiry sweep failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "sweep failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}
