package middlewares

import (
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// LoggerMiddleware writes one log entry per request.
type LoggerMiddleware struct {
	log *log.Logger
}

// MakeLogger creates the request logging middleware.
func MakeLogger(log *log.Logger) echo.MiddlewareFunc {
	logger := LoggerMiddleware{
		log: log,
	}

	return logger.handler
}

func (logger *LoggerMiddleware) handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) (err error) {
		start := time.Now()

		res := ctx.Response()
		req := ctx.Request()

		// Write the error response before logging its status.
		if err = next(ctx); err != nil {
			ctx.Error(err)
		}

		logger.log.WithFields(log.Fields{
			"remote":     req.RemoteAddr,
			"method":     req.Method,
			"uri":        req.RequestURI,
			"proto":      req.Proto,
			"status":     res.Status,
			"bytes_out":  res.Size,
			"user_agent": req.UserAgent(),
			"duration":   time.Since(start).String(),
		}).Info("request")

		return
	}
}
