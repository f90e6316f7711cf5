package controllers

import (
	"net/http"

	"ebanking/utils"

	"github.com/gin-gonic/gin"
)

// MetricsController отдает снимок метрик приложения
type MetricsController struct {
	metrics *utils.Metrics
}

func NewMetricsController(metrics *utils.Metrics) *MetricsController {
	return &MetricsController{metrics: metrics}
}

func (ctl *MetricsController) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.metrics.GetMetricsSnapshot())
}
