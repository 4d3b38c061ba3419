package handler

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/internal/repository"
)

// pathID parses the :id path parameter. A malformed id cannot name any row,
// so it is reported as not found.
func pathID(c echo.Context, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound(resource)
	}
	return id, nil
}

// pageFrom reads page and limit query parameters
func pageFrom(c echo.Context) (repository.Page, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return repository.Page{}, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return repository.Page{}, err
	}
	return repository.NewPage(page, limit), nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation(name + " must be an integer")
	}
	return v, nil
}

// filterBuilder collects equality filters from query parameters
type filterBuilder struct {
	c      echo.Context
	filter repository.Filter
	err    error
}

func newFilter(c echo.Context) *filterBuilder {
	return &filterBuilder{c: c, filter: repository.Filter{}}
}

// oneOf adds a string filter restricted to allowed values
func (b *filterBuilder) oneOf(param string, allowed ...string) *filterBuilder {
	raw := b.c.QueryParam(param)
	if raw == "" || b.err != nil {
		return b
	}
	for _, a := range allowed {
		if raw == a {
			b.filter[param] = raw
			return b
		}
	}
	b.err = apperror.Validation(param + " has an unsupported value")
	return b
}

// text adds a free-form string filter
func (b *filterBuilder) text(param string) *filterBuilder {
	if raw := b.c.QueryParam(param); raw != "" && b.err == nil {
		b.filter[param] = raw
	}
	return b
}

// id adds a uuid filter
func (b *filterBuilder) id(param string) *filterBuilder {
	raw := b.c.QueryParam(param)
	if raw == "" || b.err != nil {
		return b
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		b.err = apperror.Validation(param + " must be a valid id")
		return b
	}
	b.filter[param] = id
	return b
}

func (b *filterBuilder) build() (repository.Filter, error) {
	return b.filter, b.err
}
