package config

import (
	"strings"

	"github.com/fenilmodi00/closet-backend/models"
)

// BrandProfile holds every retailer-specific URL and marker the extraction engine needs.
// Templates use the {productId}, {id} and {code} placeholders.
type BrandProfile struct {
	Brand            models.Brand
	PageURLTemplate  string
	RetryURLTemplate string // empty disables the soft-failure retry
	APIURLTemplate   string
	ProbeIDTemplates []string

	APISwatchURLTemplate   string
	StateSwatchURLTemplate string

	TitleSuffix    string
	StateAnchor    string
	StateKeyPrefix string

	// Soft-failure detection for the first page response
	MinPageBytes   int
	RedirectMarker string
}

const (
	defaultStateAnchor    = `"product":{"breadcrumbs":`
	defaultStateKeyPrefix = `"product":`
)

// DefaultBrandProfiles returns the production profile map
func DefaultBrandProfiles() map[models.Brand]BrandProfile {
	return map[models.Brand]BrandProfile{
		models.BrandUniqlo: {
			Brand:                  models.BrandUniqlo,
			PageURLTemplate:        "https://www.uniqlo.com/jp/ja/products/{productId}",
			RetryURLTemplate:       "https://www.uniqlo.com/jp/ja/products/E{productId}-000/00",
			APIURLTemplate:         "https://www.uniqlo.com/jp/api/commerce/v1/ja/products/{id}",
			ProbeIDTemplates:       []string{"{productId}", "E{productId}-000"},
			APISwatchURLTemplate:   "https://image.uniqlo.com/UQ/ST3/jp/imagesgoods/{productId}/item/jpgoods_{code}_{productId}_3x4.jpg",
			StateSwatchURLTemplate: "https://image.uniqlo.com/UQ/ST3/jp/imagesgoods/{productId}/item/jpgoods_{code}_{productId}_3x4.jpg",
			TitleSuffix:            " | UNIQLO",
			StateAnchor:            defaultStateAnchor,
			StateKeyPrefix:         defaultStateKeyPrefix,
			MinPageBytes:           1000,
			RedirectMarker:         "Redirecting to",
		},
		models.BrandGU: {
			Brand:                  models.BrandGU,
			PageURLTemplate:        "https://www.gu-global.com/jp/ja/products/{productId}",
			APIURLTemplate:         "https://www.gu-global.com/jp/api/commerce/v1/ja/products/{id}",
			ProbeIDTemplates:       []string{"{productId}"},
			APISwatchURLTemplate:   "https://image.gu-global.com/ug/img/res/goods/{productId}/item/jpgoods_{code}_{productId}.jpg",
			StateSwatchURLTemplate: "https://image.uniqlo.com/GU/ST3/AsianCommon/imagesgoods/{productId}/item/goods_{code}_{productId}_3x4.jpg",
			TitleSuffix:            " | GU",
			StateAnchor:            defaultStateAnchor,
			StateKeyPrefix:         defaultStateKeyPrefix,
		},
	}
}

// PageURL returns the canonical product page URL
func (p BrandProfile) PageURL(productID string) string {
	return expandTemplate(p.PageURLTemplate, productID, "", "")
}

// RetryURL returns the alternate page URL, or "" when the brand has none
func (p BrandProfile) RetryURL(productID string) string {
	if p.RetryURLTemplate == "" {
		return ""
	}
	return expandTemplate(p.RetryURLTemplate, productID, "", "")
}

// ProbeURLs returns the commerce API URLs in the order they should be tried
func (p BrandProfile) ProbeURLs(productID string) []string {
	urls := make([]string, 0, len(p.ProbeIDTemplates))
	for _, idTemplate := range p.ProbeIDTemplates {
		id := expandTemplate(idTemplate, productID, "", "")
		urls = append(urls, expandTemplate(p.APIURLTemplate, productID, id, ""))
	}
	return urls
}

// APISwatchURL returns the swatch image for a variant found by the commerce API
func (p BrandProfile) APISwatchURL(productID, code string) string {
	return expandTemplate(p.APISwatchURLTemplate, productID, "", code)
}

// StateSwatchURL returns the swatch image for a variant found in page data
func (p BrandProfile) StateSwatchURL(productID, code string) string {
	return expandTemplate(p.StateSwatchURLTemplate, productID, "", code)
}

// StripTitleSuffix removes the trailing brand marker and anything after it
func (p BrandProfile) StripTitleSuffix(title string) string {
	if p.TitleSuffix == "" {
		return title
	}
	if idx := strings.Index(title, p.TitleSuffix); idx >= 0 {
		return title[:idx]
	}
	return title
}

func expandTemplate(template, productID, id, code string) string {
	return strings.NewReplacer(
		"{productId}", productID,
		"{id}", id,
		"{code}", code,
	).Replace(template)
}
