package middleware

import (
	"net/http"
	"strconv"
	"time"

	"ebanking/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimit middleware для ограничения частоты запросов по IP клиента
func RateLimit(limiter *utils.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, reset := limiter.Allow(c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
				"reset": reset.UTC().Format(time.RFC3339),
			})
			return
		}

		c.Next()
	}
}

// Logger middleware для логирования запросов и сбора метрик
func Logger(metrics *utils.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime)
		status := c.Writer.Status()
		metrics.RecordRequest(duration, status >= http.StatusInternalServerError)

		entry := utils.Log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   status,
			"duration": duration,
			"client":   c.ClientIP(),
		})
		if username, ok := GetUsername(c); ok {
			entry = entry.WithField("operator", username)
		}
		for _, e := range c.Errors {
			entry = entry.WithField("error", e.Error())
		}

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

// Recovery middleware для обработки паник
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				utils.LogError("Panic recovered: %v", err)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()

		c.Next()
	}
}
