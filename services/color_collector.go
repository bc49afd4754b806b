package services

import (
	"regexp"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/closet-backend/config"
	"github.com/fenilmodi00/closet-backend/models"
	"github.com/sirupsen/logrus"
)

// maxScriptColorNameLength rejects pattern hits that captured something other than a color name
const maxScriptColorNameLength = 50

var (
	scriptColorPattern = regexp.MustCompile(`"code"\s*:\s*"([^"]+)"[^}]*"name"\s*:\s*"([^"]+)"`)
	trailingTwoDigits  = regexp.MustCompile(`(\d{2})$`)
)

// ColorVariantCollector merges color variants from several sources into one ordered,
// deduplicated list. The first entry seen for a code wins.
type ColorVariantCollector struct {
	profile   config.BrandProfile
	productID string
}

// NewColorVariantCollector creates a collector for one product
func NewColorVariantCollector(profile config.BrandProfile, productID string) *ColorVariantCollector {
	return &ColorVariantCollector{profile: profile, productID: productID}
}

// Collect merges API variants, then state block variants. scriptFallback is consulted only
// when both are empty. Variants without an image get the page swatch template.
func (c *ColorVariantCollector) Collect(apiVariants, stateVariants []models.ColorVariant, scriptFallback func() []models.ColorVariant) []models.ColorVariant {
	sources := [][]models.ColorVariant{apiVariants, stateVariants}
	if len(apiVariants) == 0 && len(stateVariants) == 0 && scriptFallback != nil {
		sources = append(sources, scriptFallback())
	}

	colors := make([]models.ColorVariant, 0)
	seen := make(map[string]struct{})
	for _, source := range sources {
		for _, variant := range source {
			if variant.Code == "" {
				continue
			}
			if _, exists := seen[variant.Code]; exists {
				continue
			}
			seen[variant.Code] = struct{}{}

			if variant.ImageURL == "" {
				variant.ImageURL = c.profile.StateSwatchURL(c.productID, variant.Code)
			}
			colors = append(colors, variant)
		}
	}

	return colors
}

// ScanScriptColors looks for loose code/name pairs in every inline script of the page
func (c *ColorVariantCollector) ScanScriptColors(document *goquery.Document) []models.ColorVariant {
	if document == nil {
		return nil
	}

	var colors []models.ColorVariant
	document.Find("script").Each(func(_ int, s *goquery.Selection) {
		colors = append(colors, ScanScriptText(s.Text())...)
	})

	logrus.WithFields(logrus.Fields{
		"component":  "ColorVariantCollector",
		"method":     "ScanScriptColors",
		"product_id": c.productID,
		"found":      len(colors),
	}).Debug("Scanned inline scripts for colors")

	return colors
}

// ScanScriptText extracts code/name pairs from script source. Compound codes such as
// "GCL62" are reduced to their trailing two digits.
func ScanScriptText(content string) []models.ColorVariant {
	var colors []models.ColorVariant
	for _, match := range scriptColorPattern.FindAllStringSubmatch(content, -1) {
		code := NormalizeColorCode(match[1])
		name := match[2]
		if code == "" || name == "" || utf8.RuneCountInString(name) >= maxScriptColorNameLength {
			continue
		}
		colors = append(colors, models.ColorVariant{Code: code, Name: name})
	}
	return colors
}

// NormalizeColorCode keeps only a trailing two-digit suffix when one exists
func NormalizeColorCode(code string) string {
	if match := trailingTwoDigits.FindStringSubmatch(code); match != nil {
		return match[1]
	}
	return code
}
