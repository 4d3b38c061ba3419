package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/internal/model"
	"github.com/thidaswick/WorqHub/internal/repository"
)

// CustomerRequest is the body for customer create and update
type CustomerRequest struct {
	Name           *string `json:"name" validate:"omitempty,max=255"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=50"`
	Address        *string `json:"address"`
	BillingAddress *string `json:"billing_address"`
	Notes          *string `json:"notes"`
}

func (r *CustomerRequest) patch() repository.Patch {
	patch := repository.Patch{}
	set := func(column string, v *string) {
		if v != nil {
			patch[column] = strings.TrimSpace(*v)
		}
	}
	set("name", r.Name)
	set("email", r.Email)
	set("phone", r.Phone)
	set("address", r.Address)
	set("billing_address", r.BillingAddress)
	set("notes", r.Notes)
	return patch
}

type customerCodec struct{}

func (customerCodec) decodeCreate(c echo.Context) (*model.Customer, error) {
	var req CustomerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, apperror.Validation("name is required")
	}

	p := req.patch()
	customer := &model.Customer{Name: p["name"].(string)}
	if v, ok := p["email"].(string); ok {
		customer.Email = strings.ToLower(v)
	}
	if v, ok := p["phone"].(string); ok {
		customer.Phone = v
	}
	if v, ok := p["address"].(string); ok {
		customer.Address = v
	}
	if v, ok := p["billing_address"].(string); ok {
		customer.BillingAddress = v
	}
	if v, ok := p["notes"].(string); ok {
		customer.Notes = v
	}
	return customer, nil
}

func (customerCodec) decodeUpdate(c echo.Context) (repository.Patch, error) {
	var req CustomerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	patch := req.patch()
	if name, ok := patch["name"]; ok && name == "" {
		return nil, apperror.Validation("name cannot be empty")
	}
	if email, ok := patch["email"].(string); ok {
		patch["email"] = strings.ToLower(email)
	}
	return patch, nil
}

func (customerCodec) filters(c echo.Context) (repository.Filter, error) {
	f := newFilter(c).text("email")
	filter, err := f.build()
	if err != nil {
		return nil, err
	}
	if email, ok := filter["email"].(string); ok {
		filter["email"] = strings.ToLower(email)
	}
	return filter, nil
}

// NewCustomerHandler serves /customers
func NewCustomerHandler(repo *repository.CustomerRepository) *RecordHandler[model.Customer] {
	return newRecordHandler[model.Customer]("customer", repo.Resource(), repo, customerCodec{})
}
