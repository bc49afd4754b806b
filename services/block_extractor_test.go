package services

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAnchor = StateBlockAnchor{
	Marker:    `"product":{"breadcrumbs":`,
	KeyPrefix: `"product":`,
}

// nestedStateObject wraps fragments in depth levels of objects under a breadcrumbs key
func nestedStateObject(fragments []string, depth int) string {
	inner := `{"items":[` + strings.Join(fragments, ",") + `]}`
	for i := 0; i < depth; i++ {
		inner = fmt.Sprintf(`{"level%d":%s,"tail":"}{"}`, i, inner)
	}
	return `{"breadcrumbs":` + inner + `,"name":"Crew Neck T"}`
}

func TestExtractBalancedBlockBraceBalanceProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("returns exactly the embedded object for any nesting and string content", prop.ForAll(
		func(fragments []string, depth int, prefix, suffix string) bool {
			object := nestedStateObject(fragments, depth)
			if !json.Valid([]byte(object)) {
				t.Logf("generated invalid object: %s", object)
				return false
			}

			html := prefix + `"product":` + object + suffix
			block, ok := ExtractBalancedBlock(html, testAnchor)
			if !ok {
				t.Logf("no block found in %q", html)
				return false
			}
			if block != object {
				t.Logf("block mismatch:\n got  %s\n want %s", block, object)
				return false
			}
			return true
		},
		gen.SliceOf(gen.OneConstOf(
			`"plain"`,
			`"brace { inside"`,
			`"close } inside"`,
			`"escaped \" quote {"`,
			`"backslash \\"`,
			`"a\"b{c"`,
			`{"code":"01","name":"WHITE"}`,
			`[1,2,{"x":"}"}]`,
			`{}`,
			`null`,
			`42`,
		), reflect.TypeOf("")),
		gen.IntRange(0, 12),
		gen.OneConstOf(
			`<html><script>window.__STATE__={"app":{"locale":"ja"},`,
			`<script>{{{`,
			`"product":"not an object",`,
			``,
		),
		gen.OneConstOf(
			`}};</script></html>`,
			`}`,
			`{"trailing":{"x":1}}`,
			``,
		),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestExtractBalancedBlockEscapeTolerance(t *testing.T) {
	tests := []struct {
		name   string
		object string
	}{
		{"escaped quote before brace", `{"breadcrumbs":{"v":"a\"b{c"}}`},
		{"escaped backslash closes string", `{"breadcrumbs":{"v":"a\\","w":"{"}}`},
		{"double escaped quote", `{"breadcrumbs":{"v":"\\\"}"}}`},
		{"unicode escaped braces", `{"breadcrumbs":{"v":"\u007b\u007d}"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, json.Valid([]byte(tt.object)), "fixture must be valid JSON")

			block, ok := ExtractBalancedBlock(`var s = {"product":`+tt.object+`};`, testAnchor)
			require.True(t, ok)
			assert.Equal(t, tt.object, block)
		})
	}
}

func TestExtractBalancedBlockMissingOrUnbalanced(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"no anchor", `<html><body>nothing here</body></html>`},
		{"never closes", `{"product":{"breadcrumbs":{"category":{"name":"TOPS"}}`},
		{"closing brace only inside string", `{"product":{"breadcrumbs":"}"`},
		{"empty input", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, ok := ExtractBalancedBlock(tt.html, testAnchor)
			assert.False(t, ok)
			assert.Empty(t, block)
		})
	}
}

func TestExtractBalancedBlockUsesFirstAnchor(t *testing.T) {
	first := `{"breadcrumbs":{"n":1}}`
	second := `{"breadcrumbs":{"n":2}}`
	html := `"product":` + first + `;"product":` + second

	block, ok := ExtractBalancedBlock(html, testAnchor)
	require.True(t, ok)
	assert.Equal(t, first, block)
}

func TestExtractBalancedBlockRejectsMisconfiguredAnchor(t *testing.T) {
	_, ok := ExtractBalancedBlock(`"product":{"breadcrumbs":{}}`, StateBlockAnchor{
		Marker:    `"product":{"breadcrumbs":`,
		KeyPrefix: `"item":`,
	})
	assert.False(t, ok)
}

func TestScanBalancedObjectLargeInput(t *testing.T) {
	var b strings.Builder
	b.WriteString("{")
	for i := 0; i < 5000; i++ {
		fmt.Fprintf(&b, `"k%d":{"v":"}{%d"},`, i, i)
	}
	b.WriteString(`"end":true}`)
	text := b.String()

	assert.Equal(t, len(text)-1, scanBalancedObject(text, 0))
}
