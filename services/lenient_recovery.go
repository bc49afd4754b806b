package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/fenilmodi00/closet-backend/models"
	"github.com/fenilmodi00/closet-backend/shared"
	"github.com/sirupsen/logrus"
	"github.com/titanous/json5"
)

// Names of the strategies that can produce a recovered field
const (
	RecoveryStrict         = "strict"
	RecoveryJSON5          = "json5"
	RecoveryIsolatedArray  = "isolated_array"
	RecoveryTriplePattern  = "triple_pattern"
	RecoveryCategoryFields = "category_pattern"
)

var (
	colorsArrayPattern  = regexp.MustCompile(`"colors":\s*(\[.*?\])`)
	colorTriplePattern  = regexp.MustCompile(`\{"code":"(.*?)"\s*,\s*"displayCode":"(.*?)"\s*,\s*"name":"(.*?)"`)
	categoryLocaleField = regexp.MustCompile(`"category":\{[^}]*?"locale":"(.*?)"`)
	categoryNameField   = regexp.MustCompile(`"category":\{[^}]*?"name":"(.*?)"`)
	classLocaleField    = regexp.MustCompile(`"class":\{[^}]*?"locale":"(.*?)"`)
	classNameField      = regexp.MustCompile(`"class":\{[^}]*?"name":"(.*?)"`)
)

// sectionSegments are top-level breadcrumb entries that name an audience, not a category
var sectionSegments = []string{"MEN", "WOMEN", "KIDS", "BABY"}

func isSectionSegment(label string) bool {
	upper := strings.ToUpper(strings.TrimSpace(label))
	for _, segment := range sectionSegments {
		if upper == segment {
			return true
		}
	}
	return false
}

// RecoveredState is what could be salvaged from one embedded state block.
// Colors carry an ImageURL only when the page supplied one.
type RecoveredState struct {
	Parsed         map[string]interface{}
	ParseStrategy  string
	Colors         []models.ColorVariant
	ColorsStrategy string
	Category       string
	CategoryFrom   string
}

// RecoverStateBlock extracts category and colors from a state block, falling back from a
// full parse to progressively narrower pattern matches. Each field records its own strategy.
func RecoverStateBlock(raw string) *RecoveredState {
	logger := logrus.WithFields(logrus.Fields{
		"component": "LenientJSONRecovery",
		"method":    "RecoverStateBlock",
		"length":    len(raw),
	})

	state := &RecoveredState{}
	state.Parsed, state.ParseStrategy = parseStateObject(raw, logger)

	// Pattern fallbacks run only when the block could not be parsed
	colorStrategies := []strategy[[]models.ColorVariant]{
		{name: state.ParseStrategy, run: func() ([]models.ColorVariant, bool) {
			return nonEmpty(colorsFromParsed(state.Parsed))
		}},
	}
	if state.Parsed == nil {
		colorStrategies = append(colorStrategies,
			strategy[[]models.ColorVariant]{name: RecoveryIsolatedArray, run: func() ([]models.ColorVariant, bool) {
				return nonEmpty(colorsFromIsolatedArray(raw))
			}},
			strategy[[]models.ColorVariant]{name: RecoveryTriplePattern, run: func() ([]models.ColorVariant, bool) {
				return nonEmpty(colorsFromTriplePattern(raw))
			}},
		)
	}
	state.Colors, state.ColorsStrategy, _ = firstSuccessful(colorStrategies...)

	state.Category, state.CategoryFrom, _ = firstSuccessful(
		strategy[string]{name: state.ParseStrategy, run: func() (string, bool) {
			return categoryFromParsed(state.Parsed)
		}},
		strategy[string]{name: RecoveryCategoryFields, run: func() (string, bool) {
			return categoryFromRawFields(raw)
		}},
	)

	logger.WithFields(logrus.Fields{
		"parse_strategy":  state.ParseStrategy,
		"colors":          len(state.Colors),
		"colors_strategy": state.ColorsStrategy,
		"category":        state.Category,
		"category_from":   state.CategoryFrom,
	}).Debug("Recovered state block")

	return state
}

// parseStateObject tries a strict parse, then a JSON5 parse
func parseStateObject(raw string, logger *logrus.Entry) (map[string]interface{}, string) {
	var parsed map[string]interface{}
	strictErr := json.Unmarshal([]byte(raw), &parsed)
	if strictErr == nil {
		return parsed, RecoveryStrict
	}

	parsed = nil
	if err := json5.Unmarshal([]byte(raw), &parsed); err == nil {
		logger.WithError(strictErr).Debug("Strict parse failed, JSON5 parse succeeded")
		return parsed, RecoveryJSON5
	}

	logger.WithError(shared.NewParseFailureError("LenientJSONRecovery", "parseStateObject", strictErr)).
		Debug("State block is not parseable, using pattern fallbacks")
	return nil, ""
}

func colorsFromParsed(parsed map[string]interface{}) []models.ColorVariant {
	if parsed == nil {
		return nil
	}

	entries, ok := lookupPath(parsed, "product", "colors").([]interface{})
	if !ok {
		entries, _ = lookupPath(parsed, "colors").([]interface{})
	}

	imageMap, ok := lookupPath(parsed, "product", "images", "main").(map[string]interface{})
	if !ok {
		imageMap, _ = lookupPath(parsed, "images", "main").(map[string]interface{})
	}

	return colorsFromEntries(entries, imageMap)
}

func colorsFromEntries(entries []interface{}, imageMap map[string]interface{}) []models.ColorVariant {
	var colors []models.ColorVariant
	for _, entry := range entries {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		code := stringField(fields, "displayCode")
		if code == "" {
			code = stringField(fields, "code")
		}
		if code == "" {
			continue
		}

		color := models.ColorVariant{Code: code, Name: stringField(fields, "name")}
		if image, ok := imageMap[code].(map[string]interface{}); ok {
			color.ImageURL = stringField(image, "image")
		}
		colors = append(colors, color)
	}
	return colors
}

// colorsFromIsolatedArray parses only the "colors" array text
func colorsFromIsolatedArray(raw string) []models.ColorVariant {
	match := colorsArrayPattern.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}

	var entries []interface{}
	if err := json.Unmarshal([]byte(match[1]), &entries); err != nil {
		entries = nil
		if err := json5.Unmarshal([]byte(match[1]), &entries); err != nil {
			return nil
		}
	}
	return colorsFromEntries(entries, nil)
}

// colorsFromTriplePattern pulls code/displayCode/name triples straight out of the array text
func colorsFromTriplePattern(raw string) []models.ColorVariant {
	match := colorsArrayPattern.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}

	var colors []models.ColorVariant
	for _, triple := range colorTriplePattern.FindAllStringSubmatch(match[1], -1) {
		code := unquoteJSONFragment(triple[2])
		if code == "" {
			code = unquoteJSONFragment(triple[1])
		}
		if code == "" {
			continue
		}
		colors = append(colors, models.ColorVariant{Code: code, Name: unquoteJSONFragment(triple[3])})
	}
	return colors
}

// categoryFromParsed reads breadcrumbs.category, skipping audience segments, then breadcrumbs.class
func categoryFromParsed(parsed map[string]interface{}) (string, bool) {
	if parsed == nil {
		return "", false
	}

	if category := localeOrName(lookupPath(parsed, "breadcrumbs", "category")); category != "" && !isSectionSegment(category) {
		return category, true
	}
	if class := localeOrName(lookupPath(parsed, "breadcrumbs", "class")); class != "" {
		return class, true
	}
	return "", false
}

// categoryFromRawFields applies the same priority as categoryFromParsed to unparsed text
func categoryFromRawFields(raw string) (string, bool) {
	if category := firstFieldMatch(raw, categoryLocaleField, categoryNameField); category != "" && !isSectionSegment(category) {
		return category, true
	}
	if class := firstFieldMatch(raw, classLocaleField, classNameField); class != "" {
		return class, true
	}
	return "", false
}

func firstFieldMatch(raw string, patterns ...*regexp.Regexp) string {
	for _, pattern := range patterns {
		if match := pattern.FindStringSubmatch(raw); match != nil {
			if value := strings.TrimSpace(unquoteJSONFragment(match[1])); value != "" {
				return value
			}
		}
	}
	return ""
}

func localeOrName(node interface{}) string {
	fields, ok := node.(map[string]interface{})
	if !ok {
		return ""
	}
	if locale := strings.TrimSpace(stringField(fields, "locale")); locale != "" {
		return locale
	}
	return strings.TrimSpace(stringField(fields, "name"))
}

func lookupPath(root map[string]interface{}, path ...string) interface{} {
	var current interface{} = root
	for _, key := range path {
		fields, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current = fields[key]
	}
	return current
}

func stringField(fields map[string]interface{}, key string) string {
	value, _ := fields[key].(string)
	return value
}

// unquoteJSONFragment decodes JSON escapes in a regex-captured string body
func unquoteJSONFragment(fragment string) string {
	if !strings.Contains(fragment, `\`) {
		return fragment
	}
	var decoded string
	if err := json.Unmarshal([]byte(`"`+fragment+`"`), &decoded); err != nil {
		return fragment
	}
	return decoded
}

func nonEmpty[T any](values []T) ([]T, bool) {
	return values, len(values) > 0
}
