package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/footwear-shop/internal/shoe"
	"github.com/vasiliy-maslov/footwear-shop/internal/storage/memory"
)

func TestBundledCatalogIsValid(t *testing.T) {
	catalog, err := readCatalog("../../seed/shoes.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, catalog.Shoes)

	store := memory.NewStore()
	svc := shoe.NewService(store.Shoes)
	for _, entry := range catalog.Shoes {
		created, err := svc.CreateShoe(context.Background(), entry.input())
		require.NoError(t, err, entry.Name)
		assert.NotEmpty(t, created.Image)
	}

	summary, err := svc.InventorySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(catalog.Shoes), summary.TotalProducts)
	assert.Equal(t, 1, summary.OutOfStock)
}
