package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"unblocker/src/logger"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

// cors lets the portal pages call the API from any origin
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// -----------------------------------------------------------------------------

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// -----------------------------------------------------------------------------
// Request helpers
// -----------------------------------------------------------------------------

// statusFor maps an error reason to the HTTP status of /api/proxy
func statusFor(reason string) int {
	switch reason {
	case "":
		return http.StatusOK
	case "InvalidUrl", "MethodNotAvailable":
		return http.StatusBadRequest
	case "AllMethodsFailed":
		return http.StatusBadGateway
	case "Cancelled":
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// -----------------------------------------------------------------------------

func queryLimit(c *gin.Context, def int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	return n, nil
}
