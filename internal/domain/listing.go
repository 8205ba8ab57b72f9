package domain

// PropertyInfo is the metadata block extracted from a listing page.
// Fields default to "Unknown"/empty when the page does not expose them;
// exactness is best effort.
type PropertyInfo struct {
	Address      string   `json:"address"`
	Price        string   `json:"price"`
	Bedrooms     string   `json:"bedrooms"`
	Bathrooms    string   `json:"bathrooms"`
	SquareFeet   string   `json:"square_feet"`
	MLSNumber    string   `json:"mls_number"`
	Neighborhood string   `json:"neighborhood"`
	Location     string   `json:"location"`
	Amenities    []string `json:"amenities"`
}

// ListingData is the raw scraper output: the ordered photo URLs plus the
// optional metadata block. Zero photos is a legitimate scraper result, not
// a scraper error.
type ListingData struct {
	URL          string
	PhotoURLs    []string
	PropertyInfo *PropertyInfo
}
