package catalog

// Product is one nested catalog item.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Brand is one top-level catalog entry with its products merged in,
// in store-iteration order.
type Brand struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}
