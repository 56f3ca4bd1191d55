package catalog

import "context"

// Repo enumerates the brand catalog with nested products.
type Repo interface {
	ListBrands(ctx context.Context) ([]Brand, error)
}
