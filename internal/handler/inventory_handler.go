package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/internal/model"
	"github.com/thidaswick/WorqHub/internal/repository"
)

// InventoryRequest is the body for inventory item create and update
type InventoryRequest struct {
	SKU         *string  `json:"sku" validate:"omitempty,max=100"`
	Name        *string  `json:"name" validate:"omitempty,max=255"`
	Quantity    *float64 `json:"quantity" validate:"omitempty,gte=0"`
	Unit        *string  `json:"unit" validate:"omitempty,max=20"`
	MinQuantity *float64 `json:"min_quantity" validate:"omitempty,gte=0"`
	Location    *string  `json:"location" validate:"omitempty,max=255"`
}

type inventoryCodec struct{}

func (inventoryCodec) decodeCreate(c echo.Context) (*model.InventoryItem, error) {
	var req InventoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	if req.SKU == nil || strings.TrimSpace(*req.SKU) == "" {
		return nil, apperror.Validation("sku is required")
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, apperror.Validation("name is required")
	}

	item := &model.InventoryItem{
		SKU:  strings.TrimSpace(*req.SKU),
		Name: strings.TrimSpace(*req.Name),
		Unit: "unit",
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil && strings.TrimSpace(*req.Unit) != "" {
		item.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.MinQuantity != nil {
		item.MinQuantity = *req.MinQuantity
	}
	if req.Location != nil {
		item.Location = *req.Location
	}
	return item, nil
}

func (inventoryCodec) decodeUpdate(c echo.Context) (repository.Patch, error) {
	var req InventoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}

	patch := repository.Patch{}
	if req.SKU != nil {
		sku := strings.TrimSpace(*req.SKU)
		if sku == "" {
			return nil, apperror.Validation("sku cannot be empty")
		}
		patch["sku"] = sku
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.Validation("name cannot be empty")
		}
		patch["name"] = name
	}
	if req.Quantity != nil {
		patch["quantity"] = *req.Quantity
	}
	if req.Unit != nil {
		patch["unit"] = strings.TrimSpace(*req.Unit)
	}
	if req.MinQuantity != nil {
		patch["min_quantity"] = *req.MinQuantity
	}
	if req.Location != nil {
		patch["location"] = *req.Location
	}
	return patch, nil
}

func (inventoryCodec) filters(c echo.Context) (repository.Filter, error) {
	return newFilter(c).text("sku").text("location").build()
}

// NewInventoryHandler serves /inventory
func NewInventoryHandler(repo *repository.InventoryRepository) *RecordHandler[model.InventoryItem] {
	return newRecordHandler[model.InventoryItem]("inventory_item", repo.Resource(), repo, inventoryCodec{})
}
