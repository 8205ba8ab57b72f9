package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/accessivision/backend/internal/domain"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var (
	priceExpr        = regexp.MustCompile(`\$[\d,]+`)
	bedroomsExpr     = regexp.MustCompile(`(?i)(\d+)\s*\+?\s*Bed(?:room)?s?`)
	bathroomsExpr    = regexp.MustCompile(`(?i)(\d+)\s*Bath(?:room)?s?`)
	squareFeetExpr   = regexp.MustCompile(`(?i)([\d,]+)\s*(?:sq\.?\s*ft|Square Feet)`)
	mlsExpr          = regexp.MustCompile(`MLS[®#]?\s*(?:Number|No\.?)?\s*:?\s*([A-Z][A-Z0-9]*\d[A-Z0-9]*)`)
	neighborhoodExpr = regexp.MustCompile(`(?i)(?:in|of) (?:the )?(.+?) (?:Community|Neighbourhood|Neighborhood)`)
	locationExpr     = regexp.MustCompile(`(?i)Location Description\s*\n\s*(.+)`)
)

// proximityExprs flag nearby-amenity mentions inside listing descriptions.
var proximityExprs = map[string]*regexp.Regexp{
	"Highway":  regexp.MustCompile(`(?i)(?:minutes|min|mins) from Highway \d+`),
	"Downtown": regexp.MustCompile(`(?i)(?:minutes|min|mins) (?:from|to) (?:downtown|city)`),
	"Schools":  regexp.MustCompile(`(?i)(?:near|close to|walking distance to) schools`),
	"Shopping": regexp.MustCompile(`(?i)(?:near|close to) shopping`),
	"Parks":    regexp.MustCompile(`(?i)(?:near|close to) parks`),
	"Transit":  regexp.MustCompile(`(?i)(?:near|close to) (?:transit|TTC|GO Train)`),
}

// RealtorScraper extracts property photos and metadata from Realtor.ca
// listing pages. Photo URLs are taken from the listing CDN's highres
// gallery; metadata comes from the JSON-LD product block with regex
// fallbacks over the page text.
type RealtorScraper struct {
	client *http.Client
}

// NewRealtorScraper wires an HTTP client; a nil client gets a 30s timeout default.
func NewRealtorScraper(client *http.Client) *RealtorScraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RealtorScraper{client: client}
}

// FetchListing retrieves and parses the listing page.
func (s *RealtorScraper) FetchListing(ctx context.Context, listingURL string) (*domain.ListingData, error) {
	doc, err := s.fetchDocument(ctx, listingURL)
	if err != nil {
		return nil, err
	}
	return s.extractListing(doc, listingURL), nil
}

func (s *RealtorScraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept-Language", "en-CA")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}
	return doc, nil
}

func (s *RealtorScraper) extractListing(doc *goquery.Document, listingURL string) *domain.ListingData {
	listing := &domain.ListingData{
		URL:          listingURL,
		PropertyInfo: &domain.PropertyInfo{Amenities: []string{}},
	}
	info := listing.PropertyInfo

	// Highres gallery photos, deduplicated in page order.
	seen := map[string]struct{}{}
	doc.Find("img").Each(func(i int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok {
			return
		}
		if !strings.Contains(src, "cdn.realtor.ca/listing") || !strings.Contains(src, "/highres/") {
			return
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}
		listing.PhotoURLs = append(listing.PhotoURLs, src)
	})

	pageText := doc.Find("body").Text()
	description := ""

	// Structured data first: the Product JSON-LD block carries the address,
	// description, and offer price.
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, sel *goquery.Selection) {
		var data struct {
			Type        string          `json:"@type"`
			Name        string          `json:"name"`
			Description string          `json:"description"`
			Offers      json.RawMessage `json:"offers"`
		}
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil || data.Type != "Product" {
			return
		}
		if data.Name != "" {
			info.Address = data.Name
		}
		if data.Description != "" {
			description = data.Description
		}
		if price := extractOfferPrice(data.Offers); price != "" {
			info.Price = price
		}
	})

	// Regex fallbacks over the visible page text.
	if info.Price == "" {
		info.Price = priceExpr.FindString(pageText)
	}
	if m := bedroomsExpr.FindStringSubmatch(pageText); m != nil {
		info.Bedrooms = m[1]
	}
	if m := bathroomsExpr.FindStringSubmatch(pageText); m != nil {
		info.Bathrooms = m[1]
	}
	if m := squareFeetExpr.FindStringSubmatch(pageText); m != nil {
		info.SquareFeet = m[1] + " sq ft"
	}
	if m := mlsExpr.FindStringSubmatch(pageText); m != nil {
		info.MLSNumber = m[1]
	}

	if m := neighborhoodExpr.FindStringSubmatch(description); m != nil {
		info.Neighborhood = strings.TrimSpace(m[1])
	}
	if m := locationExpr.FindStringSubmatch(pageText); m != nil {
		info.Location = strings.TrimSpace(m[1])
	}

	if description != "" {
		for feature, expr := range proximityExprs {
			if match := expr.FindString(description); match != "" {
				info.Amenities = append(info.Amenities, feature+": "+match)
			}
		}
	}
	if strings.Contains(strings.ToLower(pageText), "school bus") {
		info.Amenities = append(info.Amenities, "School Bus Service Available")
	}

	fillUnknown(info)
	return listing
}

// extractOfferPrice handles offers appearing as either an object or a list.
func extractOfferPrice(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	type offer struct {
		Price json.Number `json:"price"`
	}

	var single offer
	if err := json.Unmarshal(raw, &single); err == nil && single.Price != "" {
		return "$" + single.Price.String()
	}

	var list []offer
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 && list[0].Price != "" {
		return "$" + list[0].Price.String()
	}
	return ""
}

func fillUnknown(info *domain.PropertyInfo) {
	for _, field := range []*string{
		&info.Address, &info.Price, &info.Bedrooms,
		&info.Bathrooms, &info.SquareFeet, &info.MLSNumber, &info.Neighborhood,
	} {
		if *field == "" {
			*field = "Unknown"
		}
	}
}
