package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/internal/middleware"
	"github.com/thidaswick/WorqHub/internal/repository"
	"github.com/thidaswick/WorqHub/pkg/logger"
	"github.com/thidaswick/WorqHub/prometheus"
)

// recordStore is the tenant-scoped repository surface the record handlers use
type recordStore[T any] interface {
	Find(ctx context.Context, ident access.Identity, filter repository.Filter, page repository.Page) (*repository.Result[T], error)
	FindOne(ctx context.Context, ident access.Identity, id uuid.UUID) (*T, error)
	Create(ctx context.Context, ident access.Identity, entity *T) error
	Update(ctx context.Context, ident access.Identity, id uuid.UUID, patch repository.Patch) (*T, error)
	Delete(ctx context.Context, ident access.Identity, id uuid.UUID) error
}

// recordCodec turns requests into entities, patches and filters
type recordCodec[T any] interface {
	decodeCreate(c echo.Context) (*T, error)
	decodeUpdate(c echo.Context) (repository.Patch, error)
	filters(c echo.Context) (repository.Filter, error)
}

// existenceChecker confirms that an id names a row in the identity's tenant
type existenceChecker interface {
	Exists(ctx context.Context, ident access.Identity, id uuid.UUID) error
}

// reference is an id column that must point at a row of the caller's tenant
type reference[T any] struct {
	column string
	store  existenceChecker
	get    func(*T) *uuid.UUID
}

// RecordHandler serves list/get/create/update/delete for one tenant-owned
// entity. It must be mounted behind AuthMiddleware and RequireTenantContext.
type RecordHandler[T any] struct {
	entity   string
	resource string
	store    recordStore[T]
	codec    recordCodec[T]
	refs     []reference[T]
}

func newRecordHandler[T any](entity, resource string, store recordStore[T], codec recordCodec[T], refs ...reference[T]) *RecordHandler[T] {
	return &RecordHandler[T]{entity: entity, resource: resource, store: store, codec: codec, refs: refs}
}

// checkRefs rejects ids that do not name a row in the caller's tenant.
// A nil or zero id is an absent reference.
func (h *RecordHandler[T]) checkRefs(ctx context.Context, ident access.Identity, value func(reference[T]) (uuid.UUID, bool)) error {
	for _, ref := range h.refs {
		id, ok := value(ref)
		if !ok || id == uuid.Nil {
			continue
		}
		if err := ref.store.Exists(ctx, ident, id); err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return apperror.Validation(ref.column + " does not refer to an existing record")
			}
			return err
		}
	}
	return nil
}

func identity(c echo.Context) (access.Identity, error) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return access.Identity{}, apperror.ErrAuthenticationRequired
	}
	return ident, nil
}

// List handles GET /
func (h *RecordHandler[T]) List(c echo.Context) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	prometheus.RecordTenantOperation(h.entity, "list")

	page, err := pageFrom(c)
	if err != nil {
		return err
	}
	filter, err := h.codec.filters(c)
	if err != nil {
		return err
	}

	res, err := h.store.Find(c.Request().Context(), ident, filter, page)
	if err != nil {
		return err
	}
	return respondPage(c, http.StatusOK, res)
}

// Get handles GET /:id
func (h *RecordHandler[T]) Get(c echo.Context) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	prometheus.RecordTenantOperation(h.entity, "get")

	id, err := pathID(c, h.resource)
	if err != nil {
		return err
	}
	record, err := h.store.FindOne(c.Request().Context(), ident, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, record)
}

// Create handles POST /
func (h *RecordHandler[T]) Create(c echo.Context) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	prometheus.RecordTenantOperation(h.entity, "create")

	record, err := h.codec.decodeCreate(c)
	if err != nil {
		return err
	}
	err = h.checkRefs(c.Request().Context(), ident, func(ref reference[T]) (uuid.UUID, bool) {
		if id := ref.get(record); id != nil {
			return *id, true
		}
		return uuid.Nil, false
	})
	if err != nil {
		return err
	}
	if err := h.store.Create(c.Request().Context(), ident, record); err != nil {
		return err
	}

	logger.FromContext(c).Info("Record created", zap.String("entity", h.entity))
	return respond(c, http.StatusCreated, record)
}

// Update handles PUT /:id
func (h *RecordHandler[T]) Update(c echo.Context) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	prometheus.RecordTenantOperation(h.entity, "update")

	id, err := pathID(c, h.resource)
	if err != nil {
		return err
	}
	patch, err := h.codec.decodeUpdate(c)
	if err != nil {
		return err
	}
	err = h.checkRefs(c.Request().Context(), ident, func(ref reference[T]) (uuid.UUID, bool) {
		refID, ok := patch[ref.column].(uuid.UUID)
		return refID, ok
	})
	if err != nil {
		return err
	}

	record, err := h.store.Update(c.Request().Context(), ident, id, patch)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, record)
}

// Delete handles DELETE /:id
func (h *RecordHandler[T]) Delete(c echo.Context) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	prometheus.RecordTenantOperation(h.entity, "delete")

	id, err := pathID(c, h.resource)
	if err != nil {
		return err
	}
	if err := h.store.Delete(c.Request().Context(), ident, id); err != nil {
		return err
	}

	logger.FromContext(c).Info("Record deleted", zap.String("entity", h.entity), zap.String("id", id.String()))
	return respond(c, http.StatusOK, echo.Map{"id": id, "deleted": true})
}

// mount registers the routes on g, writes gated by writePerm
func (h *RecordHandler[T]) mount(g *echo.Group, writePerm access.Permission) {
	read := middleware.RequirePermission(access.PermRecordsRead)
	write := middleware.RequirePermission(writePerm)
	del := middleware.RequirePermission(access.PermRecordsDelete)

	g.GET("", h.List, read)
	g.GET("/:id", h.Get, read)
	g.POST("", h.Create, write)
	g.PUT("/:id", h.Update, write)
	g.DELETE("/:id", h.Delete, del)
}
