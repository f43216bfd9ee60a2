package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/backend/internal/model"
)

func TestInsertAndListKeepOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMaterialStore()

	for _, title := range []string{"a", "b", "c"} {
		_, err := store.InsertMaterial(ctx, model.Material{Title: title})
		require.NoError(t, err)
	}

	items, err := store.ListMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, title := range []string{"a", "b", "c"} {
		assert.Equal(t, title, items[i].Title)
		assert.Equal(t, int64(i+1), items[i].ID)
	}
}

func TestDeletedIDsAreNotReused(t *testing.T) {
	ctx := context.Background()
	store := NewMaterialStore()

	first, err := store.InsertMaterial(ctx, model.Material{Title: "a"})
	require.NoError(t, err)
	second, err := store.InsertMaterial(ctx, model.Material{Title: "b"})
	require.NoError(t, err)

	_, err = store.DeleteMaterial(ctx, first.ID)
	require.NoError(t, err)

	third, err := store.InsertMaterial(ctx, model.Material{Title: "c"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
	assert.NotEqual(t, second.ID, third.ID)
	assert.Equal(t, int64(3), third.ID)
}

func TestDeleteMaterialUnknownID(t *testing.T) {
	ctx := context.Background()
	store := NewMaterialStore()

	_, err := store.DeleteMaterial(ctx, 42)
	assert.True(t, IsNoRows(err))
}

func TestReplaceMaterialsSeedsCounter(t *testing.T) {
	ctx := context.Background()
	store := NewMaterialStore()

	require.NoError(t, store.ReplaceMaterials(ctx, []model.Material{{ID: 1}, {ID: 2}, {ID: 3}}))
	assert.Equal(t, 3, store.CountMaterials())

	m, err := store.InsertMaterial(ctx, model.Material{Title: "new"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), m.ID)
}

func TestListMaterialsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMaterialStore()
	_, err := store.InsertMaterial(ctx, model.Material{Title: "a"})
	require.NoError(t, err)

	items, err := store.ListMaterials(ctx)
	require.NoError(t, err)
	items[0].Title = "mutated"

	again, err := store.ListMaterials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Title)
}
