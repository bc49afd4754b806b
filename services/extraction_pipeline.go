package services

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/closet-backend/config"
	"github.com/fenilmodi00/closet-backend/models"
	"github.com/fenilmodi00/closet-backend/shared"
	"github.com/sirupsen/logrus"
)

// Counter keys recorded by the extraction pipeline
const (
	CounterAPIProbeHit       = "api_probe_hit"
	CounterStateBlockFound   = "state_block_found"
	CounterScriptFallbackHit = "script_fallback_hit"
	CounterPageFetchFailed   = "page_fetch_failed"
	CounterPartialResult     = "partial_result"
	CounterBrowserFallback   = "browser_fallback"
)

// stateBlockStrategyCounter names the tier that recovered the state block
func stateBlockStrategyCounter(state *RecoveredState) string {
	if state.ParseStrategy != "" {
		return "state_block_" + state.ParseStrategy
	}
	return "state_block_pattern"
}

// ColorProbe is the fast-path source of color variants
type ColorProbe interface {
	Probe(ctx context.Context, profile config.BrandProfile, productID string) []models.ColorVariant
}

// ProductExtractionService turns a brand and product ID into a ProductRecord
type ProductExtractionService struct {
	profiles map[models.Brand]config.BrandProfile
	probe    ColorProbe
	fetcher  PageFetcher
	browser  PageFetcher
	resolver *CategoryResolver
	metrics  *shared.ServiceMetrics
}

// NewProductExtractionService creates the pipeline. browser may be nil to disable the
// headless fallback.
func NewProductExtractionService(
	profiles map[models.Brand]config.BrandProfile,
	probe ColorProbe,
	fetcher PageFetcher,
	browser PageFetcher,
	metrics *shared.ServiceMetrics,
) *ProductExtractionService {
	if metrics == nil {
		metrics = shared.NewServiceMetrics("ProductExtractionService")
	}

	return &ProductExtractionService{
		profiles: profiles,
		probe:    probe,
		fetcher:  fetcher,
		browser:  browser,
		resolver: NewCategoryResolver(),
		metrics:  metrics,
	}
}

// Metrics returns the pipeline's counters
func (s *ProductExtractionService) Metrics() *shared.ServiceMetrics {
	return s.metrics
}

// Extract runs every stage for one product. Only invalid input and a page failure with no
// API colors to fall back on are returned as errors.
func (s *ProductExtractionService) Extract(ctx context.Context, brandValue, productID string) (*models.ProductRecord, error) {
	start := time.Now()

	profile, productID, err := s.validateInput(brandValue, productID)
	if err != nil {
		return nil, err
	}

	logger := logrus.WithFields(logrus.Fields{
		"component":  "ProductExtractionService",
		"method":     "Extract",
		"brand":      profile.Brand,
		"product_id": productID,
	})

	apiColors := s.probe.Probe(ctx, profile, productID)
	if len(apiColors) > 0 {
		s.metrics.IncrementCounter(CounterAPIProbeHit)
	}

	collector := NewColorVariantCollector(profile, productID)
	record := models.NewEmptyProductRecord(profile.Brand, productID, profile.PageURL(productID))

	anchor := StateBlockAnchor{Marker: profile.StateAnchor, KeyPrefix: profile.StateKeyPrefix}

	page, fetchErr := s.fetcher.Fetch(ctx, profile, productID)
	if fetchErr != nil && s.browser != nil {
		logger.WithError(fetchErr).Info("Plain page fetch failed, trying headless browser")
		if rendered, ok := s.renderInBrowser(ctx, profile, productID, anchor, false, logger); ok {
			page, fetchErr = rendered, nil
		}
	}
	if fetchErr != nil {
		s.metrics.IncrementCounter(CounterPageFetchFailed)
		if len(apiColors) == 0 {
			logger.WithError(fetchErr).Warn("Product page fetch failed and no API colors are available")
			s.metrics.RecordRequest(false, time.Since(start))
			return nil, fetchErr
		}

		logger.WithError(fetchErr).Info("Product page fetch failed, returning API colors only")
		s.metrics.IncrementCounter(CounterPartialResult)
		record.Colors = collector.Collect(apiColors, nil, nil)
		s.metrics.RecordRequest(true, time.Since(start))
		return record, nil
	}

	block, found := ExtractBalancedBlock(page.HTML, anchor)
	if !found && s.browser != nil {
		if rendered, ok := s.renderInBrowser(ctx, profile, productID, anchor, true, logger); ok {
			page = rendered
			block, found = ExtractBalancedBlock(page.HTML, anchor)
		}
	}

	document, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		logger.WithError(err).Warn("Failed to parse product page HTML")
		document = nil
	}
	record.Title, record.ImageURL = pageMetadata(document, profile)

	var state *RecoveredState
	if found {
		s.metrics.IncrementCounter(CounterStateBlockFound)
		state = RecoverStateBlock(block)
		s.metrics.IncrementCounter(stateBlockStrategyCounter(state))
	} else {
		logger.Debug("No embedded state block found")
	}

	record.Category = s.resolver.Resolve(state, document, page.HTML)

	var stateColors []models.ColorVariant
	if state != nil {
		stateColors = state.Colors
	}
	record.Colors = collector.Collect(apiColors, stateColors, func() []models.ColorVariant {
		colors := collector.ScanScriptColors(document)
		if len(colors) > 0 {
			s.metrics.IncrementCounter(CounterScriptFallbackHit)
		}
		return colors
	})

	s.metrics.RecordRequest(true, time.Since(start))
	logger.WithFields(logrus.Fields{
		"category": record.Category,
		"colors":   len(record.Colors),
		"duration": time.Since(start),
	}).Info("Extracted product")

	return record, nil
}

func (s *ProductExtractionService) validateInput(brandValue, productID string) (config.BrandProfile, string, error) {
	productID = strings.TrimSpace(productID)
	brandValue = strings.TrimSpace(brandValue)
	if brandValue == "" || productID == "" {
		return config.BrandProfile{}, "", shared.NewInvalidInputError("ProductExtractionService", "Extract", "Missing brand or productId")
	}

	brand, ok := models.ParseBrand(brandValue)
	if !ok {
		return config.BrandProfile{}, "", shared.NewInvalidInputError("ProductExtractionService", "Extract", "Invalid brand")
	}

	profile, ok := s.profiles[brand]
	if !ok {
		return config.BrandProfile{}, "", shared.NewInvalidInputError("ProductExtractionService", "Extract", "Invalid brand")
	}

	return profile, productID, nil
}

// renderInBrowser runs the headless fallback. With requireBlock set, a rendered page
// without a state block is discarded.
func (s *ProductExtractionService) renderInBrowser(ctx context.Context, profile config.BrandProfile, productID string, anchor StateBlockAnchor, requireBlock bool, logger *logrus.Entry) (*PageFetchResult, bool) {
	s.metrics.IncrementCounter(CounterBrowserFallback)

	rendered, err := s.browser.Fetch(ctx, profile, productID)
	if err != nil {
		logger.WithError(err).Warn("Browser fallback failed")
		return nil, false
	}
	if !requireBlock {
		return rendered, true
	}
	if _, ok := ExtractBalancedBlock(rendered.HTML, anchor); !ok {
		logger.Debug("Browser-rendered page has no state block either")
		return nil, false
	}
	return rendered, true
}

// pageMetadata reads og:title (or <title>) and og:image
func pageMetadata(document *goquery.Document, profile config.BrandProfile) (*string, *string) {
	if document == nil {
		return nil, nil
	}

	var title, image *string

	text, _ := document.Find(`meta[property="og:title"]`).Attr("content")
	if text == "" {
		text = document.Find("title").First().Text()
	}
	if text = strings.TrimSpace(profile.StripTitleSuffix(text)); text != "" {
		title = &text
	}

	if content, ok := document.Find(`meta[property="og:image"]`).Attr("content"); ok && content != "" {
		image = &content
	}

	return title, image
}
