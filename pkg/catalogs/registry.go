package catalogs

import (
	"fmt"
	"maps"
	"slices"

	"github.com/hdwx/mrms/pkg/constants"
	"github.com/hdwx/mrms/pkg/errors"
)

// Reflectivity is the product type of the lowest-altitude reflectivity mosaics.
var Reflectivity = ProductTypeSpec{ID: 1, Description: "MRMS Reflectivity"}

// RALAGIS is the bounding box of the georeferenced CONUS mosaic.
var RALAGIS = GISInfo{"23.5,-129", "51,-65"}

// Registry holds the static definitions of every product the catalog knows.
type Registry struct {
	types    map[ProductTypeID]ProductTypeSpec
	products map[ProductID]ProductSpec
}

// NewRegistry builds a registry from product type and product definitions.
// Every product must reference a listed type and IDs must be unique.
func NewRegistry(types []ProductTypeSpec, products []ProductSpec) (*Registry, error) {
	r := &Registry{
		types:    make(map[ProductTypeID]ProductTypeSpec, len(types)),
		products: make(map[ProductID]ProductSpec, len(products)),
	}
	for _, t := range types {
		if _, dup := r.types[t.ID]; dup {
			return nil, errors.NewValidationError("productTypeID", t.ID, "duplicate product type")
		}
		r.types[t.ID] = t
	}
	for _, p := range products {
		if _, dup := r.products[p.ID]; dup {
			return nil, errors.NewValidationError("productID", p.ID, "duplicate product")
		}
		if _, ok := r.types[p.TypeID]; !ok {
			return nil, errors.NewValidationError("productTypeID", p.TypeID,
				fmt.Sprintf("product %d references unknown product type", p.ID))
		}
		if p.Extension == "" {
			return nil, errors.NewValidationError("fileExtension", p.Extension,
				fmt.Sprintf("product %d has no file extension", p.ID))
		}
		if err := p.GISInfo.Validate(); err != nil {
			return nil, errors.WrapValidation("gisInfo", err)
		}
		r.products[p.ID] = p
	}
	return r, nil
}

// DefaultRegistry returns the reflectivity products rendered by the pipeline.
func DefaultRegistry() *Registry {
	product := func(id ProductID, desc, path string, gis bool) ProductSpec {
		p := ProductSpec{
			ID:            id,
			TypeID:        Reflectivity.ID,
			Description:   desc,
			Path:          path,
			Extension:     "png",
			IsGIS:         gis,
			DisplayFrames: constants.DefaultDisplayFrames,
			GISInfo:       NoGIS,
		}
		if gis {
			p.GISInfo = RALAGIS
		}
		return p
	}
	r, err := NewRegistry([]ProductTypeSpec{Reflectivity}, []ProductSpec{
		product(0, "MRMS Reflectivity At Lowest Altitude (GIS)", "gisproducts/radar/RALA/", true),
		product(1, "National MRMS Reflectivity At Lowest Altitude", "products/radar/national/", false),
		product(2, "Regional MRMS Reflectivity At Lowest Altitude", "products/radar/regional/", false),
		product(3, "Local MRMS Reflectivity At Lowest Altitude", "products/radar/local/", false),
	})
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the definition of product id.
func (r *Registry) Lookup(id ProductID) (ProductSpec, error) {
	p, ok := r.products[id]
	if !ok {
		return ProductSpec{}, errors.NewValidationError("productID", id, fmt.Sprintf("unknown product %d", id))
	}
	return p, nil
}

// Type returns the definition of product type id.
func (r *Registry) Type(id ProductTypeID) (ProductTypeSpec, error) {
	t, ok := r.types[id]
	if !ok {
		return ProductTypeSpec{}, errors.NewValidationError("productTypeID", id, fmt.Sprintf("unknown product type %d", id))
	}
	return t, nil
}

// Specs returns every product definition ordered by ID.
func (r *Registry) Specs() []ProductSpec {
	ids := slices.Sorted(maps.Keys(r.products))
	specs := make([]ProductSpec, 0, len(ids))
	for _, id := range ids {
		specs = append(specs, r.products[id])
	}
	return specs
}

// Types returns every product type definition ordered by ID.
func (r *Registry) Types() []ProductTypeSpec {
	ids := slices.Sorted(maps.Keys(r.types))
	types := make([]ProductTypeSpec, 0, len(ids))
	for _, id := range ids {
		types = append(types, r.types[id])
	}
	return types
}

// ProductsOfType returns the definitions of the products in type id.
func (r *Registry) ProductsOfType(id ProductTypeID) []ProductSpec {
	var specs []ProductSpec
	for _, p := range r.Specs() {
		if p.TypeID == id {
			specs = append(specs, p)
		}
	}
	return specs
}
