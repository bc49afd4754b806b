package services

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/fenilmodi00/closet-backend/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var colorNames = []string{"WHITE", "BLACK", "NAVY", "ホワイト", "ブラック", "ネイビー", "OFF WHITE", "DARK GRAY"}

// wellFormedBlock renders a product state object the way the retailer pages serialize it
func wellFormedBlock(codes []int, categoryLocale, categoryName, classLocale string) string {
	entries := make([]string, 0, len(codes))
	for _, code := range codes {
		entries = append(entries, fmt.Sprintf(`{"code":"COL%02d","displayCode":"%02d","name":"%s","filterCode":"%d"}`,
			code, code, colorNames[code%len(colorNames)], code))
	}

	return fmt.Sprintf(
		`{"breadcrumbs":{"gender":{"locale":"WOMEN"},"category":{"locale":"%s","name":"%s"},"class":{"locale":"%s","name":"class"}},`+
			`"colors":[%s],"name":"Soft Knit Crew Neck","prices":{"base":{"value":2990}}}`,
		categoryLocale, categoryName, classLocale, strings.Join(entries, ","))
}

func TestRecoverStateBlockFallbackMonotonicityProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)
	equateEmpty := cmpopts.EquateEmpty()

	properties.Property("strict parse and narrow pattern fallbacks agree on well-formed blocks", prop.ForAll(
		func(codes []int, categoryLocale, categoryName, classLocale string) bool {
			block := wellFormedBlock(codes, categoryLocale, categoryName, classLocale)

			state := RecoverStateBlock(block)
			if state.ParseStrategy != RecoveryStrict {
				t.Logf("expected strict parse for %s, got %q", block, state.ParseStrategy)
				return false
			}

			if diff := cmp.Diff(state.Colors, colorsFromIsolatedArray(block), equateEmpty); diff != "" {
				t.Logf("isolated array disagrees (-strict +fallback):\n%s", diff)
				return false
			}
			if diff := cmp.Diff(state.Colors, colorsFromTriplePattern(block), equateEmpty); diff != "" {
				t.Logf("triple pattern disagrees (-strict +fallback):\n%s", diff)
				return false
			}

			rawCategory, _ := categoryFromRawFields(block)
			if state.Category != rawCategory {
				t.Logf("category disagrees: strict %q, fallback %q", state.Category, rawCategory)
				return false
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 99), reflect.TypeOf(0)),
		gen.OneConstOf("トップス", "WOMEN", "MEN", "KIDS", "BABY", "アウター", ""),
		gen.OneConstOf("tops", "WOMEN", "", "outer"),
		gen.OneConstOf("Tシャツ", "Knit Tops", "パンツ", ""),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRecoverStateBlockStrict(t *testing.T) {
	block := `{"breadcrumbs":{"category":{"locale":"トップス","name":"tops"},"class":{"locale":"Tシャツ"}},` +
		`"colors":[{"code":"COL00","displayCode":"00","name":"WHITE"},{"code":"COL09","displayCode":"09","name":"BLACK"}],` +
		`"images":{"main":{"00":{"image":"https://img.example/00.jpg"}}}}`

	state := RecoverStateBlock(block)

	assert.Equal(t, RecoveryStrict, state.ParseStrategy)
	assert.Equal(t, RecoveryStrict, state.ColorsStrategy)
	assert.Equal(t, RecoveryStrict, state.CategoryFrom)
	assert.Equal(t, "トップス", state.Category)

	want := []models.ColorVariant{
		{Code: "00", Name: "WHITE", ImageURL: "https://img.example/00.jpg"},
		{Code: "09", Name: "BLACK"},
	}
	if diff := cmp.Diff(want, state.Colors); diff != "" {
		t.Errorf("colors mismatch (-want +got):\n%s", diff)
	}
}

func TestRecoverStateBlockNestedProductKey(t *testing.T) {
	block := `{"breadcrumbs":{"class":{"name":"Knit Tops"}},"product":{"colors":[{"code":"31","name":"BEIGE"}],` +
		`"images":{"main":{"31":{"image":"https://img.example/31.jpg"}}}}}`

	state := RecoverStateBlock(block)

	assert.Equal(t, "Knit Tops", state.Category)
	require.Len(t, state.Colors, 1)
	assert.Equal(t, models.ColorVariant{Code: "31", Name: "BEIGE", ImageURL: "https://img.example/31.jpg"}, state.Colors[0])
}

func TestRecoverStateBlockJSON5(t *testing.T) {
	block := `{"breadcrumbs":{"category":{"locale":"ボトムス",},},"colors":[{"code":"COL69","displayCode":"69","name":"NAVY",},],}`

	state := RecoverStateBlock(block)

	assert.Equal(t, RecoveryJSON5, state.ParseStrategy)
	assert.Equal(t, RecoveryJSON5, state.ColorsStrategy)
	assert.Equal(t, "ボトムス", state.Category)
	assert.Equal(t, []models.ColorVariant{{Code: "69", Name: "NAVY"}}, state.Colors)
}

func TestRecoverStateBlockIsolatedArray(t *testing.T) {
	block := `{"breadcrumbs":{"category":{"locale":"WOMEN"},"class":{"locale":"スウェット"}},` +
		`"colors":[{"code":"COL09","displayCode":"09","name":"BLACK"}],"price":undefined}`

	state := RecoverStateBlock(block)

	assert.Empty(t, state.ParseStrategy)
	assert.Equal(t, RecoveryIsolatedArray, state.ColorsStrategy)
	assert.Equal(t, []models.ColorVariant{{Code: "09", Name: "BLACK"}}, state.Colors)
	assert.Equal(t, RecoveryCategoryFields, state.CategoryFrom)
	assert.Equal(t, "スウェット", state.Category)
}

func TestRecoverStateBlockTriplePattern(t *testing.T) {
	block := `{"breadcrumbs":{"category":{"name":"outer"}},` +
		`"colors":[{"code":"COL03","displayCode":"03","name":"NAVY","swatch":undefined},` +
		`{"code":"COL56","displayCode":"56","name":"OLIVE DARK","swatch":undefined}],"x":}`

	state := RecoverStateBlock(block)

	assert.Equal(t, RecoveryTriplePattern, state.ColorsStrategy)
	want := []models.ColorVariant{
		{Code: "03", Name: "NAVY"},
		{Code: "56", Name: "OLIVE DARK"},
	}
	if diff := cmp.Diff(want, state.Colors); diff != "" {
		t.Errorf("colors mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "outer", state.Category)
}

func TestRecoverStateBlockParsedWithoutColorsSkipsPatterns(t *testing.T) {
	tests := []struct {
		name  string
		block string
		parse string
	}{
		{
			name: "strict",
			block: `{"product":{"name":"Crew Neck T","breadcrumbs":{"category":{"locale":"トップス"}}},` +
				`"recommendations":{"colors":[{"code":"COL99","displayCode":"99","name":"Other Product"}]}}`,
			parse: RecoveryStrict,
		},
		{
			name: "json5",
			block: `{"product":{"name":"Crew Neck T",},` +
				`"recommendations":{"colors":[{"code":"COL99","displayCode":"99","name":"Other Product"},]},}`,
			parse: RecoveryJSON5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := RecoverStateBlock(tt.block)

			assert.Equal(t, tt.parse, state.ParseStrategy)
			assert.Empty(t, state.Colors)
			assert.Empty(t, state.ColorsStrategy)
			require.NotEmpty(t, colorsFromIsolatedArray(tt.block), "the pattern alone would match the unrelated array")
		})
	}
}

func TestRecoverStateBlockNothingRecoverable(t *testing.T) {
	state := RecoverStateBlock(`{"breadcrumbs":{"category":{"locale":"MEN"}},"name":`)

	assert.Empty(t, state.Colors)
	assert.Empty(t, state.ColorsStrategy)
	assert.Empty(t, state.Category)
	assert.Nil(t, state.Parsed)
}

func TestColorsFromEntriesFallsBackToCode(t *testing.T) {
	entries := []interface{}{
		map[string]interface{}{"code": "11", "name": "RED"},
		map[string]interface{}{"displayCode": "", "code": "", "name": "NO CODE"},
		"not an object",
	}

	assert.Equal(t, []models.ColorVariant{{Code: "11", Name: "RED"}}, colorsFromEntries(entries, nil))
}

func TestIsSectionSegment(t *testing.T) {
	for _, segment := range []string{"MEN", "women", " Kids ", "BABY"} {
		assert.True(t, isSectionSegment(segment), segment)
	}
	for _, label := range []string{"WOMEN TOPS", "メンズ", "", "Tops"} {
		assert.False(t, isSectionSegment(label), label)
	}
}
