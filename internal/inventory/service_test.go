package inventory

import (
	"context"
	"testing"

	"github.com/angelmondragon/postoko-backend/pkg/db"
	"github.com/angelmondragon/postoko-backend/pkg/db/dbtest"
	"github.com/angelmondragon/postoko-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/postoko-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.New(t)
	svc, err := NewService(client)
	require.NoError(t, err)
	return svc, client
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), "unexpected error %v", err)
	return typed
}

func TestListEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	rows, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestCreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: "  Beverages ", Description: "Cold drinks"})
	require.NoError(t, err)
	assert.Equal(t, "Beverages", created.Name)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Cold drinks", got.Description)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGetMissing(t *testing.T) {
	svc, _ := newTestService(t)

	typed := requireCode(t, mustErr(svc.Get(context.Background(), uuid.NewString())), pkgerrors.CodeNotFound)
	assert.Equal(t, "Id not found", typed.Message())

	requireCode(t, mustErr(svc.Get(context.Background(), "not-a-uuid")), pkgerrors.CodeNotFound)
}

func TestCreateDuplicateName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Name: "Snacks"})
	require.NoError(t, err)

	typed := requireCode(t, mustErr(svc.Create(ctx, Input{Name: "Snacks"})), pkgerrors.CodeConflict)
	assert.Equal(t, "Snacks already exists", typed.Message())
}

func TestCreateRequiresName(t *testing.T) {
	svc, _ := newTestService(t)
	requireCode(t, mustErr(svc.Create(context.Background(), Input{Name: "   "})), pkgerrors.CodeValidation)
}

func TestUpdateKeepsOwnName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: "Dairy", Description: "old"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID.String(), Input{Name: "Dairy", Description: "new"})
	require.NoError(t, err)
	assert.Equal(t, "Dairy", updated.Name)
	assert.Equal(t, "new", updated.Description)

	got, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "new", got.Description)
}

func TestUpdateCollidesWithOtherInventory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Name: "Frozen"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, Input{Name: "Bakery"})
	require.NoError(t, err)

	requireCode(t, mustErr(svc.Update(ctx, other.ID.String(), Input{Name: "Frozen"})), pkgerrors.CodeConflict)
}

func TestCreateConstraintRaceIsConflict(t *testing.T) {
	svc, client := newTestService(t)
	dbtest.InterleaveOnce(t, client, "inventories",
		"INSERT INTO inventories (id, name) VALUES (?, ?)", uuid.New(), "Snacks")

	typed := requireCode(t, mustErr(svc.Create(context.Background(), Input{Name: "Snacks"})), pkgerrors.CodeConflict)
	assert.Equal(t, "Snacks already exists", typed.Message())
	assert.True(t, db.IsUniqueViolation(typed.Unwrap()), "expected the insert itself to fail, got %v", typed.Unwrap())
}

func TestUpdateConstraintRaceIsConflict(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	bakery, err := svc.Create(ctx, Input{Name: "Bakery"})
	require.NoError(t, err)

	dbtest.InterleaveOnce(t, client, "inventories",
		"INSERT INTO inventories (id, name) VALUES (?, ?)", uuid.New(), "Frozen")

	requireCode(t, mustErr(svc.Update(ctx, bakery.ID.String(), Input{Name: "Frozen"})), pkgerrors.CodeConflict)

	got, err := svc.Get(ctx, bakery.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Bakery", got.Name)
}

func TestUpdateMissing(t *testing.T) {
	svc, _ := newTestService(t)

	typed := requireCode(t, mustErr(svc.Update(context.Background(), uuid.NewString(), Input{Name: "x"})), pkgerrors.CodeNotFound)
	assert.Equal(t, "Inventory not found", typed.Message())
}

func TestDeleteRemovesInventory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: "Seasonal"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	requireCode(t, mustErr(svc.Get(ctx, created.ID.String())), pkgerrors.CodeNotFound)
	requireCode(t, mustErr(svc.Delete(ctx, created.ID.String())), pkgerrors.CodeNotFound)
}

func TestDeleteRejectedWhileProductsReferenceIt(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: "Produce"})
	require.NoError(t, err)
	require.NoError(t, client.DB().Create(&models.Product{
		InventoryID: created.ID,
		Name:        "Apple",
		Price:       1000,
		Stock:       3,
	}).Error)

	typed := requireCode(t, mustErr(svc.Delete(ctx, created.ID.String())), pkgerrors.CodeDependencyExists)
	assert.Equal(t, map[string]any{"products": int64(1)}, typed.Details())

	_, err = svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
}

func TestSchemaRestrictsInventoryDelete(t *testing.T) {
	_, client := newTestService(t)
	ctx := context.Background()

	inv := &models.Inventory{Name: "Tools"}
	require.NoError(t, client.DB().Create(inv).Error)
	require.NoError(t, client.DB().Create(&models.Product{InventoryID: inv.ID, Name: "Hammer"}).Error)

	err := NewRepository(client.DB()).Delete(ctx, inv.ID)
	require.Error(t, err)
	assert.True(t, db.IsForeignKeyViolation(err))
}

func mustErr[T any](_ T, err error) error {
	return err
}
