package service

import (
	"context"
	"testing"

	"ai-studyassistant-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestGetPlansReturnsActiveCatalogInOrder(t *testing.T) {
	store := newMemStore()
	svc := NewPlanService(&memFactory{store})

	free := store.addPlan(&entity.Plan{Sku: entity.PlanSkuFreemium, Name: "Freemium", SortOrder: 0, IsActive: true})
	scholar := store.addPlan(&entity.Plan{Sku: "scholar", Name: "Scholar", SortOrder: 1, IsActive: true})
	store.addPlan(&entity.Plan{Sku: "legacy", Name: "Legacy", SortOrder: 2, IsActive: false})

	store.prices = append(store.prices,
		&entity.PlanPrice{PlanId: scholar.Id, Provider: entity.ProviderStripe, Currency: "USD", BillingInterval: entity.BillingIntervalMonth, PriceMinor: 999, IsActive: true},
		&entity.PlanPrice{PlanId: scholar.Id, Provider: entity.ProviderPaystack, Currency: "NGN", BillingInterval: entity.BillingIntervalMonth, PriceMinor: 500000, IsActive: true},
		&entity.PlanPrice{PlanId: scholar.Id, Provider: entity.ProviderStripe, Currency: "USD", BillingInterval: entity.BillingIntervalMonth, PriceMinor: 799, IsActive: false},
	)

	plans, err := svc.GetPlans(context.Background())
	assert.NoError(t, err)
	assert.Len(t, plans, 2)
	assert.Equal(t, free.Sku, plans[0].Sku)
	assert.Equal(t, scholar.Sku, plans[1].Sku)

	// Retired price points stay off the pricing page.
	assert.Len(t, plans[1].Prices, 2)
	for _, price := range plans[1].Prices {
		assert.NotEqual(t, int64(799), price.PriceMinor)
	}
	assert.Empty(t, plans[0].Prices)
}
