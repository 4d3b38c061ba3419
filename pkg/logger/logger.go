package logger

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thidaswick/WorqHub/pkg/config"
)

const ServiceName = "worqhub-api"

var log *zap.Logger

// New builds a logger for the configured environment and level
func New(cfg *config.Config) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		// Default to info level if invalid
		level = zapcore.InfoLevel
	}

	fields := zap.Fields(
		zap.String("service", ServiceName),
		zap.String("environment", cfg.Server.Env),
	)

	if cfg.IsProduction() {
		// Production mode: structured JSON logs
		prodConfig := zap.NewProductionConfig()
		prodConfig.Level = zap.NewAtomicLevelAt(level)
		prodConfig.EncoderConfig.TimeKey = "timestamp"
		prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return prodConfig.Build(fields)
	}

	// Development mode: colorful, human-readable logs
	devConfig := zap.NewDevelopmentConfig()
	devConfig.Level = zap.NewAtomicLevelAt(level)
	devConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return devConfig.Build(fields)
}

// InitLogger initializes the global logger
func InitLogger(cfg *config.Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	log = l
	zap.ReplaceGlobals(log)
	log.Info("Logger initialized", zap.String("level", cfg.Log.Level))
	return nil
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if log == nil {
		return zap.L()
	}
	return log
}

// Middleware returns an Echo middleware that logs HTTP requests
func Middleware(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = c.Request().Header.Get(echo.HeaderXRequestID)
			}

			ctxLogger := base.With(zap.String("request_id", requestID))
			c.Set(loggerKey, ctxLogger)

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final
				c.Error(err)
			}

			fields := []zapcore.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
				zap.String("user_agent", c.Request().UserAgent()),
			}

			// Handlers may have enriched the logger with identity fields
			FromContext(c).Info("HTTP request completed", fields...)
			return nil
		}
	}
}
