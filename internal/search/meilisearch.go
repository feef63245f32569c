package search

import (
	"strings"
	"time"

	"github.com/barkshad/Real-estate/internal/models"
	"github.com/meilisearch/meilisearch-go"
)

// Indexer keeps the search index in step with the store
type Indexer interface {
	IndexProperty(property *models.Property) error
	IndexProperties(properties []models.Property) error
	DeleteProperty(id string) error
	Reindex(properties []models.Property) error
}

type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client: client,
		index:  "properties",
	}
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return err
	}

	index := s.client.Index(s.index)

	if _, err := index.UpdateSearchableAttributes(&[]string{
		"title",
		"location",
		"description",
	}); err != nil {
		return err
	}

	if _, err := index.UpdateFilterableAttributes(&[]string{
		"price",
		"bedrooms",
		"bathrooms",
		"owner_id",
		"status",
	}); err != nil {
		return err
	}

	if _, err := index.UpdateSortableAttributes(&[]string{
		"price",
		"bedrooms",
		"created_at",
	}); err != nil {
		return err
	}

	return nil
}

// document is the indexed shape of a listing. created_at is stored in
// unix milliseconds so it sorts numerically.
type document struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Price       float64  `json:"price"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   float64  `json:"bathrooms"`
	SquareFeet  int      `json:"square_feet"`
	Images      []string `json:"images"`
	Status      string   `json:"status"`
	OwnerID     string   `json:"owner_id"`
	CreatedAt   int64    `json:"created_at"`
}

func toDocument(p *models.Property) document {
	return document{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Location:    p.Location,
		Price:       p.Price,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		SquareFeet:  p.SquareFeet,
		Images:      p.Images,
		Status:      string(p.Status),
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt.UnixMilli(),
	}
}

// IndexProperty indexes a single property
func (s *SearchClient) IndexProperty(property *models.Property) error {
	_, err := s.client.Index(s.index).AddDocuments([]document{toDocument(property)})
	return err
}

// IndexProperties indexes multiple properties
func (s *SearchClient) IndexProperties(properties []models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	docs := make([]document, len(properties))
	for i := range properties {
		docs[i] = toDocument(&properties[i])
	}
	_, err := s.client.Index(s.index).AddDocuments(docs)
	return err
}

// DeleteProperty removes a listing from the index
func (s *SearchClient) DeleteProperty(id string) error {
	_, err := s.client.Index(s.index).DeleteDocument(id)
	return err
}

// Reindex replaces the index contents with properties
func (s *SearchClient) Reindex(properties []models.Property) error {
	if _, err := s.client.Index(s.index).DeleteAllDocuments(); err != nil {
		return err
	}
	return s.IndexProperties(properties)
}

// parsePropertyFromHit converts a search hit to a Property
func parsePropertyFromHit(hit interface{}) models.Property {
	hitMap, ok := hit.(map[string]interface{})
	if !ok {
		return models.Property{}
	}
	property := models.Property{
		ID:          getString(hitMap, "id"),
		Title:       getString(hitMap, "title"),
		Description: getString(hitMap, "description"),
		Location:    getString(hitMap, "location"),
		OwnerID:     getString(hitMap, "owner_id"),
		Status:      models.PropertyStatus(getString(hitMap, "status")),
		Images:      []string{},
	}

	if price, ok := hitMap["price"].(float64); ok {
		property.Price = price
	}
	if bedrooms, ok := hitMap["bedrooms"].(float64); ok {
		property.Bedrooms = int(bedrooms)
	}
	if bathrooms, ok := hitMap["bathrooms"].(float64); ok {
		property.Bathrooms = bathrooms
	}
	if sqft, ok := hitMap["square_feet"].(float64); ok {
		property.SquareFeet = int(sqft)
	}
	if created, ok := hitMap["created_at"].(float64); ok {
		property.CreatedAt = time.UnixMilli(int64(created)).UTC()
	}
	if images, ok := hitMap["images"].([]interface{}); ok {
		for _, img := range images {
			if url, ok := img.(string); ok {
				property.Images = append(property.Images, url)
			}
		}
	}

	return property
}

// getString safely extracts a string from map
func getString(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

// Noop is the Indexer used when search is disabled
type Noop struct{}

func (Noop) IndexProperty(*models.Property) error    { return nil }
func (Noop) IndexProperties([]models.Property) error { return nil }
func (Noop) DeleteProperty(string) error             { return nil }
func (Noop) Reindex([]models.Property) error         { return nil }
