package services

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/closet-backend/models"
	"github.com/sirupsen/logrus"
)

// Category signal names, in priority order
const (
	CategoryFromStateBlock  = "state_block"
	CategoryFromBreadcrumbs = "breadcrumb_elements"
	CategoryFromAltFields   = "alternate_fields"
)

// CategoryMapping maps a raw label fragment to a canonical category
type CategoryMapping struct {
	Key       string
	Canonical string
}

// DefaultCategoryMappings is matched in order; the first key contained in the
// upper-cased raw label wins, so specific entries must precede generic ones.
var DefaultCategoryMappings = []CategoryMapping{
	{"トップス", models.CategoryTops},
	{"アウター", models.CategoryOuterwear},
	{"ボトムス", models.CategoryBottoms},
	{"インナー", models.CategoryInnerwear},
	{"下着", models.CategoryInnerwear},
	{"アクセサリー", models.CategoryAccessories},
	{"グッズ", models.CategoryAccessories},
	{"バッグ", models.CategoryAccessories},
	{"シューズ", models.CategoryAccessories},
	{"ルーム", models.CategoryLoungewear},
	{"パジャマ", models.CategoryLoungewear},
	{"TOPS", models.CategoryTops},
	{"BOTTOMS", models.CategoryBottoms},
	{"OUTER", models.CategoryOuterwear},
	{"JACKET", models.CategoryOuterwear},
	{"KNIT", models.CategoryTops},
	{"SWEAT", models.CategoryTops},
	{"SHIRTS", models.CategoryTops},
	{"PANTS", models.CategoryBottoms},
}

const breadcrumbSelector = `.breadcrumb li, .fr-breadcrumb-item, [class*="breadcrumbs"] li`

var alternateCategoryFields = []*regexp.Regexp{
	regexp.MustCompile(`(?i)"categoryName"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`(?i)"classLName"\s*:\s*"([^"]+)"`),
}

// CategoryResolver derives a canonical category from the strongest available signal
type CategoryResolver struct {
	mappings []CategoryMapping
}

// NewCategoryResolver creates a resolver with the default mapping table
func NewCategoryResolver() *CategoryResolver {
	return &CategoryResolver{mappings: DefaultCategoryMappings}
}

// ResolveRaw returns the raw category label and the signal it came from.
// state and document may be nil.
func (r *CategoryResolver) ResolveRaw(state *RecoveredState, document *goquery.Document, html string) (string, string) {
	label, source, ok := firstSuccessful(
		strategy[string]{name: CategoryFromStateBlock, run: func() (string, bool) {
			if state == nil || state.Category == "" {
				return "", false
			}
			return state.Category, true
		}},
		strategy[string]{name: CategoryFromBreadcrumbs, run: func() (string, bool) {
			return categoryFromBreadcrumbElements(document)
		}},
		strategy[string]{name: CategoryFromAltFields, run: func() (string, bool) {
			return categoryFromAlternateFields(html)
		}},
	)
	if !ok {
		return "", ""
	}
	return label, source
}

// Resolve returns the canonical category for a page
func (r *CategoryResolver) Resolve(state *RecoveredState, document *goquery.Document, html string) string {
	raw, source := r.ResolveRaw(state, document, html)
	canonical := r.Standardize(raw)

	logrus.WithFields(logrus.Fields{
		"component": "CategoryResolver",
		"method":    "Resolve",
		"raw":       raw,
		"source":    source,
		"canonical": canonical,
	}).Debug("Resolved category")

	return canonical
}

// Standardize maps a raw label onto the canonical set; anything unmapped is Uncategorized
func (r *CategoryResolver) Standardize(raw string) string {
	label := strings.TrimSpace(raw)
	if label == "" || isSectionSegment(label) {
		return models.CategoryUncategorized
	}

	for _, canonical := range models.CanonicalCategories {
		if strings.EqualFold(label, canonical) {
			return canonical
		}
	}

	upper := strings.ToUpper(label)
	for _, mapping := range r.mappings {
		if strings.Contains(upper, strings.ToUpper(mapping.Key)) {
			return mapping.Canonical
		}
	}

	return models.CategoryUncategorized
}

// categoryFromBreadcrumbElements takes the second rendered breadcrumb; the first is the audience section
func categoryFromBreadcrumbElements(document *goquery.Document) (string, bool) {
	if document == nil {
		return "", false
	}

	var items []string
	document.Find(breadcrumbSelector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" && text != "/" && text != ">" {
			items = append(items, text)
		}
	})

	if len(items) < 2 {
		return "", false
	}
	return items[1], true
}

func categoryFromAlternateFields(html string) (string, bool) {
	for _, pattern := range alternateCategoryFields {
		if match := pattern.FindStringSubmatch(html); match != nil {
			return match[1], true
		}
	}
	return "", false
}
