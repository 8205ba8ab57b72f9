package scraper

import (
	"context"

	"github.com/accessivision/backend/internal/domain"
)

// Scraper fetches a listing page and extracts its photos and metadata.
// Implementations signal an error only when the page cannot be retrieved;
// a retrievable listing with zero photos returns an empty photo list.
type Scraper interface {
	// FetchListing retrieves and parses the listing at the given URL.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - listingURL: full URL of the listing page.
	// Returns:
	//   - *domain.ListingData: photo URLs and property metadata.
	//   - error: non-nil when the page cannot be retrieved or parsed.
	FetchListing(ctx context.Context, listingURL string) (*domain.ListingData, error)
}
