package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/thidaswick/WorqHub/internal/repository"
)

type successResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type listResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, successResponse{Success: true, Data: data})
}

func respondPage[T any](c echo.Context, status int, res *repository.Result[T]) error {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return c.JSON(status, listResponse{
		Success: true,
		Data:    items,
		Total:   res.Total,
		Page:    res.Page,
		Limit:   res.Limit,
	})
}
