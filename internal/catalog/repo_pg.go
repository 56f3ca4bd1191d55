package catalog

import (
	"context"
	"database/sql"
)

// PGRepo reads the brand catalog from Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) ListBrands(ctx context.Context) ([]Brand, error) {
	const brandQuery = `
SELECT id, name
FROM brands
ORDER BY position, id`
	rows, err := r.DB.QueryContext(ctx, brandQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []Brand
	index := make(map[string]int)
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		b.Products = []Product{}
		index[b.ID] = len(brands)
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const productQuery = `
SELECT id, brand_id, name, price
FROM products
ORDER BY position, id`
	productRows, err := r.DB.QueryContext(ctx, productQuery)
	if err != nil {
		return nil, err
	}
	defer productRows.Close()

	for productRows.Next() {
		var p Product
		var brandID string
		if err := productRows.Scan(&p.ID, &brandID, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		if i, ok := index[brandID]; ok {
			brands[i].Products = append(brands[i].Products, p)
		}
	}
	if err := productRows.Err(); err != nil {
		return nil, err
	}

	return brands, nil
}
