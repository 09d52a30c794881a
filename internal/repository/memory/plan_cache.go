// FILE: internal/repository/memory/plan_cache.go
package memory

import (
	"time"

	"ai-studyassistant-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// PlanCache keeps the plan catalog in process memory. Entitlement checks run
// on every quota-consuming request; plans change rarely, so a short TTL keeps
// the hot path off the database.
type PlanCache struct {
	cache *cache.Cache
}

func NewPlanCache() *PlanCache {
	// 5 minute expiry, purge every 10 minutes
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &PlanCache{
		cache: c,
	}
}

func (r *PlanCache) Save(plan *entity.Plan) {
	r.cache.Set(plan.Id.String(), plan, cache.DefaultExpiration)
}

func (r *PlanCache) Get(planId uuid.UUID) (*entity.Plan, bool) {
	if x, found := r.cache.Get(planId.String()); found {
		return x.(*entity.Plan), true
	}
	return nil, false
}

func (r *PlanCache) Invalidate(planId uuid.UUID) {
	r.cache.Delete(planId.String())
}
