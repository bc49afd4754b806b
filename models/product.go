package models

import "strings"

// Brand identifies a supported retailer
type Brand string

const (
	BrandUniqlo Brand = "UNIQLO"
	BrandGU     Brand = "GU"
)

// ParseBrand returns the brand for an exact, known identifier
func ParseBrand(value string) (Brand, bool) {
	switch Brand(value) {
	case BrandUniqlo, BrandGU:
		return Brand(value), true
	}
	return "", false
}

// Canonical category labels. Every resolved ProductRecord carries one of these.
const (
	CategoryTops          = "Tops"
	CategoryOuterwear     = "Outerwear"
	CategoryBottoms       = "Bottoms"
	CategoryInnerwear     = "Innerwear"
	CategoryLoungewear    = "Loungewear"
	CategoryAccessories   = "Accessories/Other"
	CategoryUncategorized = "Uncategorized"
)

// CanonicalCategories lists the full canonical set
var CanonicalCategories = []string{
	CategoryTops,
	CategoryOuterwear,
	CategoryBottoms,
	CategoryInnerwear,
	CategoryLoungewear,
	CategoryAccessories,
	CategoryUncategorized,
}

// IsCanonicalCategory reports whether label is a member of the canonical set
func IsCanonicalCategory(label string) bool {
	for _, category := range CanonicalCategories {
		if strings.EqualFold(category, label) {
			return true
		}
	}
	return false
}

// ColorVariant is one color of a product. Code is the identity key.
type ColorVariant struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// ProductRecord is the assembled result of one extraction
type ProductRecord struct {
	Title     *string        `json:"title"`
	ImageURL  *string        `json:"imageUrl"`
	SourceURL string         `json:"url"`
	ProductID string         `json:"productId"`
	Brand     Brand          `json:"brand"`
	Category  string         `json:"category"`
	Colors    []ColorVariant `json:"colors"`
}

// NewEmptyProductRecord returns the record used when no strategy produced data
func NewEmptyProductRecord(brand Brand, productID, sourceURL string) *ProductRecord {
	return &ProductRecord{
		SourceURL: sourceURL,
		ProductID: productID,
		Brand:     brand,
		Category:  CategoryUncategorized,
		Colors:    []ColorVariant{},
	}
}

// FindColor returns the variant with the given code
func (r *ProductRecord) FindColor(code string) (ColorVariant, bool) {
	for _, color := range r.Colors {
		if color.Code == code {
			return color, true
		}
	}
	return ColorVariant{}, false
}
