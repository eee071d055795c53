package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/metrics"
)

// RequestLogger logs one line per request and records its latency. It must
// run inside echo's RequestID middleware for the id to be present.
func RequestLogger(log logger.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			latency := time.Since(start)

			req, res := c.Request(), c.Response()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RequestDuration.WithLabelValues(req.Method, route, strconv.Itoa(res.Status)).Observe(latency.Seconds())

			fields := []interface{}{
				"method", req.Method,
				"route", route,
				"status", res.Status,
				"latency_ms", latency.Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
				"remote_ip", c.RealIP(),
			}
			switch {
			case res.Status >= http.StatusInternalServerError:
				log.Error("request", fields...)
			case res.Status >= http.StatusBadRequest:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
			return nil
		}
	}
}

// Recover turns a panic into a 500 JSON answer and an error log entry.
func Recover(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered",
						"panic", fmt.Sprint(r),
						"route", c.Path(),
						"request_id", c.Response().Header().Get(echo.HeaderXRequestID))
					err = c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
				}
			}()
			return next(c)
		}
	}
}
