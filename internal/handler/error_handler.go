package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/pkg/logger"
)

// NewHTTPErrorHandler renders every error in the shared envelope. Detail is
// only included, in the response and in the log, outside production.
func NewHTTPErrorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := renderError(err, production)
		log := logger.FromContext(c)
		if status >= http.StatusInternalServerError {
			fields := []zap.Field{zap.Int("status", status), zap.String("code", body.Code)}
			if !production {
				fields = append(fields, zap.Error(err))
			}
			log.Error("Request failed", fields...)
		} else {
			log.Debug("Request rejected", zap.Int("status", status), zap.String("code", body.Code), zap.Error(err))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			log.Error("Failed to write error response", zap.Error(writeErr))
		}
	}
}

func renderError(err error, production bool) (int, errorResponse) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status := appErr.Kind.Status()
		body := errorResponse{Code: appErr.Kind.Class(), Error: appErr.Message}
		if status >= http.StatusInternalServerError && production {
			body.Error = "internal server error"
		}
		if !production && appErr.Err != nil {
			body.Detail = appErr.Err.Error()
		}
		return status, body
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		body := errorResponse{
			Code:  apperror.ClassForStatus(httpErr.Code),
			Error: httpMessage(httpErr),
		}
		if !production && httpErr.Internal != nil {
			body.Detail = httpErr.Internal.Error()
		}
		return httpErr.Code, body
	}

	body := errorResponse{Code: apperror.ClassInternal, Error: "internal server error"}
	if !production {
		body.Detail = err.Error()
	}
	return http.StatusInternalServerError, body
}

func httpMessage(httpErr *echo.HTTPError) string {
	switch msg := httpErr.Message.(type) {
	case string:
		return msg
	case error:
		return msg.Error()
	case nil:
		return http.StatusText(httpErr.Code)
	default:
		return fmt.Sprint(msg)
	}
}
