package listing

import (
	"math"
	"strings"

	"github.com/barkshad/Real-estate/internal/models"
)

// MaxPriceUnbounded is the "no upper bound" value of FilterOptions.MaxPrice.
// It is larger than any price a listing can carry, so it never clips.
const MaxPriceUnbounded = math.MaxFloat64

// FilterOptions is the per-session search state. It is never persisted.
type FilterOptions struct {
	Location string  `json:"location"`
	MinPrice float64 `json:"minPrice"`
	MaxPrice float64 `json:"maxPrice"`
	Bedrooms int     `json:"bedrooms"`
}

// DefaultFilterOptions matches every listing
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		Location: "",
		MinPrice: 0,
		MaxPrice: MaxPriceUnbounded,
		Bedrooms: 0,
	}
}

// SeededFilterOptions returns the defaults with the location taken from a
// deep-link search term.
func SeededFilterOptions(query string) FilterOptions {
	f := DefaultFilterOptions()
	f.Location = query
	return f
}

// Normalize clamps values the inputs cannot meaningfully hold. A negative
// or non-finite MaxPrice means "no bound".
func (f FilterOptions) Normalize() FilterOptions {
	if f.MinPrice < 0 || math.IsNaN(f.MinPrice) {
		f.MinPrice = 0
	}
	if f.MaxPrice < 0 || math.IsNaN(f.MaxPrice) || math.IsInf(f.MaxPrice, 1) {
		f.MaxPrice = MaxPriceUnbounded
	}
	if f.Bedrooms < 0 {
		f.Bedrooms = 0
	}
	return f
}

// IsDefault reports whether the filter matches everything
func (f FilterOptions) IsDefault() bool {
	return f == DefaultFilterOptions()
}

// Matches applies the three predicates: location-or-title substring,
// inclusive price range, and minimum bedrooms.
func (f FilterOptions) Matches(p *models.Property) bool {
	return f.matchLocation(p) && f.matchPrice(p) && f.matchBedrooms(p)
}

func (f FilterOptions) matchLocation(p *models.Property) bool {
	term := strings.ToLower(f.Location)
	return strings.Contains(strings.ToLower(p.Location), term) ||
		strings.Contains(strings.ToLower(p.Title), term)
}

func (f FilterOptions) matchPrice(p *models.Property) bool {
	return p.Price >= f.MinPrice && p.Price <= f.MaxPrice
}

func (f FilterOptions) matchBedrooms(p *models.Property) bool {
	return f.Bedrooms == 0 || p.Bedrooms >= f.Bedrooms
}

// Apply returns the listings that match f, in their original order. It is
// a pure function of its arguments and never returns nil.
func Apply(properties []models.Property, f FilterOptions) []models.Property {
	filtered := make([]models.Property, 0, len(properties))
	for i := range properties {
		if f.Matches(&properties[i]) {
			filtered = append(filtered, properties[i])
		}
	}
	return filtered
}
