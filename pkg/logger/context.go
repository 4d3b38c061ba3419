package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const loggerKey = "logger"

// FromContext retrieves the request logger from the echo context
func FromContext(c echo.Context) *zap.Logger {
	if l, ok := c.Get(loggerKey).(*zap.Logger); ok {
		return l
	}

	requestID := c.Request().Header.Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = "unknown"
	}
	return GetLogger().With(zap.String("request_id", requestID))
}

// WithFields replaces the request logger with one carrying extra fields
func WithFields(c echo.Context, fields ...zap.Field) *zap.Logger {
	l := FromContext(c).With(fields...)
	c.Set(loggerKey, l)
	return l
}
