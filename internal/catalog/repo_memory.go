package catalog

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repo used by tests. Brands keep insertion order.
type MemoryRepo struct {
	mu     sync.RWMutex
	brands []Brand
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Put appends or replaces a brand, preserving first-insertion order.
func (r *MemoryRepo) Put(brand Brand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.brands {
		if r.brands[i].ID == brand.ID {
			r.brands[i] = brand
			return
		}
	}
	r.brands = append(r.brands, brand)
}

func (r *MemoryRepo) ListBrands(ctx context.Context) ([]Brand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Brand, len(r.brands))
	copy(out, r.brands)
	return out, nil
}
