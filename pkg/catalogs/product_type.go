package catalogs

import (
	"fmt"
	"slices"
)

// ProductType groups related products. Its product list holds one snapshot
// per product, ordered by productID.
type ProductType struct {
	ProductTypeID          ProductTypeID `json:"productTypeID" yaml:"productTypeID"`
	ProductTypeDescription string        `json:"productTypeDescription" yaml:"productTypeDescription"`
	Products               []Product     `json:"products" yaml:"products"`
}

// ProductTypeSpec is the static definition of a product type.
type ProductTypeSpec struct {
	ID          ProductTypeID
	Description string
}

// NewProductType returns an empty index document for spec.
func NewProductType(spec ProductTypeSpec) *ProductType {
	return &ProductType{
		ProductTypeID:          spec.ID,
		ProductTypeDescription: spec.Description,
		Products:               []Product{},
	}
}

// Product returns the summary for id, if listed.
func (pt *ProductType) Product(id ProductID) (Product, bool) {
	for _, p := range pt.Products {
		if p.ProductID == id {
			return p, true
		}
	}
	return Product{}, false
}

// SortProducts orders products by productID.
func SortProducts(products []Product) {
	slices.SortStableFunc(products, func(a, b Product) int {
		return int(a.ProductID) - int(b.ProductID)
	})
}

// Upsert replaces every entry with p's productID by p and re-sorts.
func (pt *ProductType) Upsert(p Product) {
	kept := pt.Products[:0:0]
	for _, existing := range pt.Products {
		if existing.ProductID != p.ProductID {
			kept = append(kept, existing)
		}
	}
	kept = append(kept, p)
	SortProducts(kept)
	pt.Products = kept
}

// Collapse drops repeated entries for a productID, keeping the last one,
// and returns the IDs that were repeated.
func (pt *ProductType) Collapse() []ProductID {
	last := make(map[ProductID]int, len(pt.Products))
	for i, p := range pt.Products {
		last[p.ProductID] = i
	}
	if len(last) == len(pt.Products) {
		return nil
	}
	var repeated []ProductID
	kept := make([]Product, 0, len(last))
	for i, p := range pt.Products {
		if last[p.ProductID] != i {
			if !slices.Contains(repeated, p.ProductID) {
				repeated = append(repeated, p.ProductID)
			}
			continue
		}
		kept = append(kept, p)
	}
	SortProducts(kept)
	pt.Products = kept
	return repeated
}

// Validate checks a decoded index document. Repeated productIDs are left
// for Collapse.
func (pt *ProductType) Validate() error {
	for i, p := range pt.Products {
		if p.LastReloadTime != "" {
			if _, err := ParseStamp(p.LastReloadTime); err != nil {
				return fmt.Errorf("products[%d]: %w", i, err)
			}
		}
	}
	return nil
}
