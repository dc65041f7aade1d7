package catalog

import (
	"strings"

	"sunquote/internal"
	"sunquote/internal/engine"
	"sunquote/internal/util"
)

// Index answers exact brand+model lookups against the synced catalog.
// Keys are built from canonical brand and model forms, so an extracted
// "SigenStor BAT 32.0" finds the product synced as "Sigenergy".
type Index struct {
	ProductsByID map[int]internal.CatalogProduct
	ByKey        map[string][]internal.CatalogProduct
	ByBrand      map[string][]internal.CatalogProduct
}

func BuildIndex(products []internal.CatalogProduct) *Index {
	idx := &Index{
		ProductsByID: map[int]internal.CatalogProduct{},
		ByKey:        map[string][]internal.CatalogProduct{},
		ByBrand:      map[string][]internal.CatalogProduct{},
	}

	for _, p := range products {
		idx.ProductsByID[p.ID] = p
		key := productKey(p.Category, p.Brand, p.Model)
		idx.ByKey[key] = append(idx.ByKey[key], p)
		brand := engine.NormalizeBrand(p.Brand)
		idx.ByBrand[brandKey(p.Category, brand)] = append(idx.ByBrand[brandKey(p.Category, brand)], p)
	}

	return idx
}

// Lookup returns the catalog product for an extracted brand+model pair,
// or nil when the pair is not in the catalog.
func (idx *Index) Lookup(category internal.ProductCategory, brand, model string) *internal.CatalogProduct {
	matches := idx.ByKey[productKey(category, brand, model)]
	if len(matches) == 0 {
		return nil
	}
	p := matches[0]
	return &p
}

// BrandProducts lists every synced product of one category and brand.
func (idx *Index) BrandProducts(category internal.ProductCategory, brand string) []internal.CatalogProduct {
	return idx.ByBrand[brandKey(category, engine.NormalizeBrand(brand))]
}

func productKey(category internal.ProductCategory, brand, model string) string {
	return string(category) + "|" + util.ProductKey(engine.NormalizeBrand(brand), engine.NormalizeModel(model))
}

func brandKey(category internal.ProductCategory, brand string) string {
	return string(category) + "|" + strings.ToLower(brand)
}
