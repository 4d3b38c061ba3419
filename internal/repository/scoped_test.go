package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/internal/model"
)

func newWorkOrder(title string) *model.WorkOrder {
	return &model.WorkOrder{Title: title, Status: model.WorkOrderDraft, Priority: model.PriorityMedium}
}

func TestFindReturnsOnlyOwnTenant(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	a := createTenant(t, repos, "Acme")
	b := createTenant(t, repos, "Bolt")

	for i := 0; i < 3; i++ {
		require.NoError(t, repos.WorkOrders.Create(ctx, a, newWorkOrder(fmt.Sprintf("a-%d", i))))
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, repos.WorkOrders.Create(ctx, b, newWorkOrder(fmt.Sprintf("b-%d", i))))
	}

	res, err := repos.WorkOrders.Find(ctx, a, nil, NewPage(1, 20))
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	require.Len(t, res.Items, 3)
	for _, wo := range res.Items {
		assert.Equal(t, a.TenantID, wo.TenantID)
	}
}

func TestFindDiscardsCallerTenantFilter(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	a := createTenant(t, repos, "Acme")
	b := createTenant(t, repos, "Bolt")

	require.NoError(t, repos.WorkOrders.Create(ctx, a, newWorkOrder("mine")))
	require.NoError(t, repos.WorkOrders.Create(ctx, b, newWorkOrder("theirs")))

	res, err := repos.WorkOrders.Find(ctx, a, Filter{"tenant_id": b.TenantID}, NewPage(1, 20))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "mine", res.Items[0].Title)
	assert.Equal(t, a.TenantID, res.Items[0].TenantID)
}

func TestFindAppliesFilter(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	a := createTenant(t, repos, "Acme")

	scheduled := newWorkOrder("scheduled")
	scheduled.Status = model.WorkOrderScheduled
	require.NoError(t, repos.WorkOrders.Create(ctx, a, scheduled))
	require.NoError(t, repos.WorkOrders.Create(ctx, a, newWorkOrder("draft")))

	res, err := repos.WorkOrders.Find(ctx, a, Filter{"status": model.WorkOrderScheduled}, NewPage(1, 20))
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "scheduled", res.Items[0].Title)
}

func TestFindRejectsUnknownField(t *testing.T) {
	_, repos := setupRepos(t)
	a := createTenant(t, repos, "Acme")

	_, err := repos.WorkOrders.Find(context.Background(), a, Filter{"1=1 OR title": "x"}, NewPage(1, 20))
	assert.True(t, apperror.Is(err, apperror.KindValidationFailure))
}

func TestFindPaginates(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	a := createTenant(t, repos, "Acme")

	for i := 0; i < 25; i++ {
		require.NoError(t, repos.Customers.Create(ctx, a, &model.Customer{Name: fmt.Sprintf("customer-%02d", i)}))
	}

	seen := map[uuid.UUID]bool{}
	for page, want := range map[int]int{1: 10, 2: 10, 3: 5, 4: 0} {
		res, err := repos.Customers.Find(ctx, a, nil, NewPage(page, 10))
		require.NoError(t, err)
		assert.EqualValues(t, 25, res.Total)
		assert.Equal(t, page, res.Page)
		assert.Equal(t, 10, res.Limit)
		assert.Len(t, res.Items, want, "page %d", page)
		for _, c := range res.Items {
			assert.False(t, seen[c.ID], "customer %s returned twice", c.ID)
			seen[c.ID] = true
		}
	}
	assert.Len(t, seen, 25)
}

func TestNewPageClamps(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 20}, NewPage(0, 0))
	assert.Equal(t, Page{Page: 1, Limit: 20}, NewPage(-3, -1))
	assert.Equal(t, Page{Page: 2, Limit: 100}, NewPage(2, 1000))
	assert.Equal(t, 40, NewPage(3, 20).Offset())
}

func TestCreateOverwritesTenantAndID(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	a := createTenant(t, repos, "Acme")
	b := createTenant(t, repos, "Bolt")

	presetID := uuid.New()
	wo := newWorkOrder("spoofed")
	wo.ID = presetID
	wo.TenantID = b.TenantID

	require.NoError(t, repos.WorkOrders.Create(ctx, a, wo))
	assert.Equal(t, a.TenantID, wo.TenantID)
	assert.NotEqual(t, presetID, wo.ID)
	assert.NotEqual(t, uuid.Nil, wo.ID)

	_, err := repos.WorkOrders.FindOne(ctx, b, wo.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestSKUUniquePerTenant(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	a := createTenant(t, repos, "Acme")
	b := createTenant(t, repos, "Bolt")

	require.NoError(t, repos.Inventory.Create(ctx, a, &model.InventoryItem{SKU: "SKU-1", Name: "Valve", Unit: "unit"}))
	require.NoError(t, repos.Inventory.Create(ctx, b, &model.InventoryItem{SKU: "SKU-1", Name: "Valve", Unit: "unit"}))

	err := repos.Inventory.Create(ctx, a, &model.InventoryItem{SKU: "SKU-1", Name: "Other", Unit: "unit"})
	assert.True(t, apperror.Is(err, apperror.KindDuplicateKey))

	res, err := repos.Inventory.Find(ctx, b, nil, NewPage(1, 20))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, b.TenantID, res.Items[0].TenantID)
}

func TestUniqueIndexBacksPreCheck(t *testing.T) {
	db, repos := setupRepos(t)
	ctx := context.Background()
	a := createTenant(t, repos, "Acme")

	require.NoError(t, repos.Inventory.Create(ctx, a, &model.InventoryItem{SKU: "SKU-1", Name: "Valve", Unit: "unit"}))

	// Skip the repository to hit the index directly
	dup := &model.InventoryItem{SKU: "SKU-1", Name: "Valve", Unit: "unit"}
	dup.TenantID = a.TenantID
	assert.Error(t, db.Create(dup).Error)
}

func TestUpdateSKUConflict(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	a := createTenant(t, repos, "Acme")

	first := &model.InventoryItem{SKU: "SKU-1", Name: "Valve", Unit: "unit"}
	second := &model.InventoryItem{SKU: "SKU-2", Name: "Pipe", Unit: "m"}
	require.NoError(t, repos.Inventory.Create(ctx, a, first))
	require.NoError(t, repos.Inventory.Create(ctx, a, second))

	_, err := repos.Inventory.Update(ctx, a, second.ID, Patch{"sku": "SKU-1"})
	assert.True(t, apperror.Is(err, apperror.KindDuplicateKey))

	// Keeping its own sku is not a conflict
	updated, err := repos.Inventory.Update(ctx, a, first.ID, Patch{"sku": "SKU-1", "quantity": 4.0})
	require.NoError(t, err)
	assert.Equal(t, 4.0, updated.Quantity)
}

func TestCrossTenantAccessIsNotFound(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	a := createTenant(t, repos, "Acme")
	b := createTenant(t, repos, "Bolt")

	wo := newWorkOrder("private")
	require.NoError(t, repos.WorkOrders.Create(ctx, a, wo))

	_, err := repos.WorkOrders.FindOne(ctx, b, wo.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = repos.WorkOrders.Update(ctx, b, wo.ID, Patch{"title": "hijacked"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	err = repos.WorkOrders.Delete(ctx, b, wo.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	// Same outcome as an id that never existed
	_, err = repos.WorkOrders.FindOne(ctx, b, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	got, err := repos.WorkOrders.FindOne(ctx, a, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Title)
}

func TestUpdateKeepsTenantID(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	a := createTenant(t, repos, "Acme")
	b := createTenant(t, repos, "Bolt")

	wo := newWorkOrder("before")
	require.NoError(t, repos.WorkOrders.Create(ctx, a, wo))

	updated, err := repos.WorkOrders.Update(ctx, a, wo.ID, Patch{
		"tenant_id": b.TenantID,
		"id":        uuid.New(),
		"title":     "after",
	})
	require.NoError(t, err)
	assert.Equal(t, wo.ID, updated.ID)
	assert.Equal(t, a.TenantID, updated.TenantID)
	assert.Equal(t, "after", updated.Title)
	assert.False(t, updated.UpdatedAt.Before(wo.UpdatedAt))

	res, err := repos.WorkOrders.Find(ctx, b, nil, NewPage(1, 20))
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestDelete(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	a := createTenant(t, repos, "Acme")

	c := &model.Customer{Name: "Jane"}
	require.NoError(t, repos.Customers.Create(ctx, a, c))
	require.NoError(t, repos.Customers.Delete(ctx, a, c.ID))

	_, err := repos.Customers.FindOne(ctx, a, c.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	err = repos.Customers.Delete(ctx, a, c.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestMissingTenantFailsClosed(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	noTenant := access.Identity{UserID: uuid.New(), Role: access.RoleAdmin}

	_, err := repos.WorkOrders.Find(ctx, noTenant, nil, NewPage(1, 20))
	assert.True(t, apperror.Is(err, apperror.KindTenantContextMissing))

	_, err = repos.WorkOrders.FindOne(ctx, noTenant, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindTenantContextMissing))

	err = repos.WorkOrders.Create(ctx, noTenant, newWorkOrder("x"))
	assert.True(t, apperror.Is(err, apperror.KindTenantContextMissing))

	_, err = repos.WorkOrders.Update(ctx, noTenant, uuid.New(), Patch{"title": "x"})
	assert.True(t, apperror.Is(err, apperror.KindTenantContextMissing))

	err = repos.WorkOrders.Delete(ctx, noTenant, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindTenantContextMissing))

	_, err = repos.WorkOrders.Count(ctx, noTenant, nil)
	assert.True(t, apperror.Is(err, apperror.KindTenantContextMissing))
}

func TestCountAndCountBy(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	a := createTenant(t, repos, "Acme")
	b := createTenant(t, repos, "Bolt")

	for _, status := range []model.WorkOrderStatus{model.WorkOrderDraft, model.WorkOrderDraft, model.WorkOrderCompleted} {
		wo := newWorkOrder(string(status))
		wo.Status = status
		require.NoError(t, repos.WorkOrders.Create(ctx, a, wo))
	}
	require.NoError(t, repos.WorkOrders.Create(ctx, b, newWorkOrder("other")))

	byStatus, err := repos.WorkOrders.CountBy(ctx, a, "status")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"draft": 2, "completed": 1}, byStatus)

	_, err = repos.WorkOrders.CountBy(ctx, a, "tenant_id")
	assert.True(t, apperror.Is(err, apperror.KindValidationFailure))

	require.NoError(t, repos.Inventory.Create(ctx, a, &model.InventoryItem{SKU: "LOW", Name: "Low", Unit: "unit", Quantity: 1, MinQuantity: 5}))
	require.NoError(t, repos.Inventory.Create(ctx, a, &model.InventoryItem{SKU: "OK", Name: "Fine", Unit: "unit", Quantity: 10, MinQuantity: 5}))
	low, err := repos.Inventory.Count(ctx, a, nil, clause.Expr{SQL: "quantity <= min_quantity"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, low)
}

// Random interleaved writes across tenants never leak rows between them
func TestIsolationUnderRandomOperations(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	tenants := []access.Identity{
		createTenant(t, repos, "Acme"),
		createTenant(t, repos, "Bolt"),
		createTenant(t, repos, "Cask"),
	}

	rng := rand.New(rand.NewSource(42))
	owned := make(map[uuid.UUID]map[uuid.UUID]bool, len(tenants))
	for _, ident := range tenants {
		owned[ident.TenantID] = map[uuid.UUID]bool{}
	}
	var all []uuid.UUID

	for step := 0; step < 120; step++ {
		ident := tenants[rng.Intn(len(tenants))]
		switch op := rng.Intn(4); {
		case op < 2 || len(all) == 0:
			c := &model.Customer{Name: fmt.Sprintf("c-%d", step)}
			require.NoError(t, repos.Customers.Create(ctx, ident, c))
			owned[ident.TenantID][c.ID] = true
			all = append(all, c.ID)
		case op == 2:
			id := all[rng.Intn(len(all))]
			_, err := repos.Customers.Update(ctx, ident, id, Patch{"notes": fmt.Sprintf("step %d", step)})
			if owned[ident.TenantID][id] {
				require.NoError(t, err)
			} else {
				require.True(t, apperror.Is(err, apperror.KindNotFound), "step %d: %v", step, err)
			}
		default:
			id := all[rng.Intn(len(all))]
			err := repos.Customers.Delete(ctx, ident, id)
			if owned[ident.TenantID][id] {
				require.NoError(t, err)
				delete(owned[ident.TenantID], id)
			} else {
				require.True(t, apperror.Is(err, apperror.KindNotFound), "step %d: %v", step, err)
			}
		}
	}

	for _, ident := range tenants {
		res, err := repos.Customers.Find(ctx, ident, nil, NewPage(1, MaxLimit))
		require.NoError(t, err)
		assert.EqualValues(t, len(owned[ident.TenantID]), res.Total)
		for _, c := range res.Items {
			assert.Equal(t, ident.TenantID, c.TenantID)
			assert.True(t, owned[ident.TenantID][c.ID])
		}
	}
}

func TestExistsIsScopedToTenant(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	a := createTenant(t, repos, "Acme")
	b := createTenant(t, repos, "Bolt")

	wo := newWorkOrder("mine")
	require.NoError(t, repos.WorkOrders.Create(ctx, a, wo))

	assert.NoError(t, repos.WorkOrders.Exists(ctx, a, wo.ID))
	assert.True(t, apperror.Is(repos.WorkOrders.Exists(ctx, b, wo.ID), apperror.KindNotFound))
	assert.True(t, apperror.Is(repos.WorkOrders.Exists(ctx, a, uuid.Nil), apperror.KindNotFound))
	assert.True(t, apperror.Is(repos.WorkOrders.Exists(ctx, access.Identity{}, wo.ID), apperror.KindTenantContextMissing))
}
