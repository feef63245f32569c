package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/barkshad/Real-estate/internal/listing"
	"github.com/barkshad/Real-estate/internal/models"
	"github.com/meilisearch/meilisearch-go"
)

type FilterParams struct {
	Filter  listing.FilterOptions
	OwnerID string
	SortBy  string
	Limit   int64
	Offset  int64
}

// SearchResult is one page of hits
type SearchResult struct {
	Hits           []models.Property `json:"hits"`
	TotalHits      int64             `json:"total_hits"`
	ProcessingTime int64             `json:"processing_time_ms"`
}

var sortOptions = map[string]string{
	"newest":     "created_at:desc",
	"price_asc":  "price:asc",
	"price_desc": "price:desc",
	"bedrooms":   "bedrooms:desc",
}

// buildFilter translates listing filter options into a Meilisearch filter
// expression. The location term is not part of it; it is the query string.
func buildFilter(params FilterParams) string {
	f := params.Filter.Normalize()
	var filters []string

	if f.MinPrice > 0 {
		filters = append(filters, "price >= "+strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != listing.MaxPriceUnbounded {
		filters = append(filters, "price <= "+strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.Bedrooms > 0 {
		filters = append(filters, fmt.Sprintf("bedrooms >= %d", f.Bedrooms))
	}
	if params.OwnerID != "" {
		filters = append(filters, fmt.Sprintf("owner_id = %q", params.OwnerID))
	}

	return strings.Join(filters, " AND ")
}

// FilterSearch runs a relevance search over title, location and
// description, narrowed by the price and bedroom filters.
func (s *SearchClient) FilterSearch(params FilterParams) (*SearchResult, error) {
	if params.Limit == 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if filterStr := buildFilter(params); filterStr != "" {
		searchReq.Filter = filterStr
	}
	if sort, ok := sortOptions[params.SortBy]; ok {
		searchReq.Sort = []string{sort}
	}

	searchRes, err := s.client.Index(s.index).Search(params.Filter.Location, searchReq)
	if err != nil {
		return nil, err
	}

	properties := make([]models.Property, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		properties = append(properties, parsePropertyFromHit(hit))
	}

	return &SearchResult{
		Hits:           properties,
		TotalHits:      searchRes.EstimatedTotalHits,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}, nil
}
