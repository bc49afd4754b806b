package services

import (
	"context"
	"net/http"

	"github.com/fenilmodi00/closet-backend/config"
	"github.com/fenilmodi00/closet-backend/models"
	"github.com/fenilmodi00/closet-backend/shared"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

type commerceVariation struct {
	Color struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"color"`
}

type commerceProductResponse struct {
	Result struct {
		Product struct {
			Variations []commerceVariation `json:"variations"`
		} `json:"product"`
		Variations []commerceVariation `json:"variations"`
	} `json:"result"`
}

func (r *commerceProductResponse) variations() []commerceVariation {
	if len(r.Result.Product.Variations) > 0 {
		return r.Result.Product.Variations
	}
	return r.Result.Variations
}

// CommerceAPIProbe asks the retailer's internal commerce API for color variants.
// It is a fast path only: every failure yields an empty result.
type CommerceAPIProbe struct {
	client      *resty.Client
	rateLimiter *shared.HTTPRequestRateLimiter
}

// NewCommerceAPIProbe creates a probe sharing the given HTTP client
func NewCommerceAPIProbe(httpClient *http.Client, rateLimiter *shared.HTTPRequestRateLimiter) *CommerceAPIProbe {
	client := resty.NewWithClient(httpClient).
		SetHeaders(shared.BrowserLikeHeaders(shared.AcceptJSON))

	return &CommerceAPIProbe{
		client:      client,
		rateLimiter: rateLimiter,
	}
}

// Probe tries each candidate identifier in turn and stops at the first non-empty variant set
func (p *CommerceAPIProbe) Probe(ctx context.Context, profile config.BrandProfile, productID string) []models.ColorVariant {
	logger := logrus.WithFields(logrus.Fields{
		"component":  "CommerceAPIProbe",
		"method":     "Probe",
		"brand":      profile.Brand,
		"product_id": productID,
	})

	for _, url := range profile.ProbeURLs(productID) {
		variations, err := p.fetchVariations(ctx, url)
		if err != nil {
			logger.WithError(err).WithField("url", url).Debug("Commerce API probe failed")
			continue
		}

		colors := variantsFromVariations(variations, profile, productID)
		if len(colors) > 0 {
			logger.WithFields(logrus.Fields{
				"url":    url,
				"colors": len(colors),
			}).Debug("Commerce API returned variants")
			return colors
		}
	}

	return nil
}

func (p *CommerceAPIProbe) fetchVariations(ctx context.Context, url string) ([]commerceVariation, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := p.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&commerceProductResponse{}).
		Get(url)
	if err != nil {
		return nil, shared.NewUpstreamFetchError("CommerceAPIProbe", "fetchVariations", url, 0, err)
	}
	if !resp.IsSuccess() {
		return nil, shared.NewUpstreamFetchError("CommerceAPIProbe", "fetchVariations", url, resp.StatusCode(), nil)
	}

	result, ok := resp.Result().(*commerceProductResponse)
	if !ok || result == nil {
		return nil, nil
	}
	return result.variations(), nil
}

func variantsFromVariations(variations []commerceVariation, profile config.BrandProfile, productID string) []models.ColorVariant {
	var colors []models.ColorVariant
	seen := make(map[string]struct{})
	for _, variation := range variations {
		code, name := variation.Color.Code, variation.Color.Name
		if code == "" || name == "" {
			continue
		}
		if _, exists := seen[code]; exists {
			continue
		}
		seen[code] = struct{}{}

		colors = append(colors, models.ColorVariant{
			Code:     code,
			Name:     name,
			ImageURL: profile.APISwatchURL(productID, code),
		})
	}
	return colors
}
