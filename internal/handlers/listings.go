package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/barkshad/Real-estate/internal/auth"
	"github.com/barkshad/Real-estate/internal/listing"
	"github.com/barkshad/Real-estate/internal/marketplace"
	"github.com/barkshad/Real-estate/internal/media"
	"github.com/barkshad/Real-estate/internal/models"
	"github.com/barkshad/Real-estate/internal/search"
	"github.com/gin-gonic/gin"
)

// Searcher is the full-text search backend
type Searcher interface {
	FilterSearch(params search.FilterParams) (*search.SearchResult, error)
}

// ListingHandler handles listing requests
type ListingHandler struct {
	svc       *marketplace.Service
	searcher  Searcher
	maxUpload int64
}

// NewListingHandler creates a listing handler. searcher may be nil, in
// which case /api/search filters the stored listings directly.
func NewListingHandler(svc *marketplace.Service, searcher Searcher, maxUpload int64) *ListingHandler {
	return &ListingHandler{svc: svc, searcher: searcher, maxUpload: maxUpload}
}

// filterFromQuery reads q/location, min_price, max_price and bedrooms.
// Unparseable numbers are ignored.
func filterFromQuery(c *gin.Context) listing.FilterOptions {
	f := listing.SeededFilterOptions(c.Query("q"))
	if loc := c.Query("location"); loc != "" {
		f.Location = loc
	}
	if v, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil {
		f.MinPrice = v
	}
	if v, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil {
		f.MaxPrice = v
	}
	if v, err := strconv.Atoi(c.Query("bedrooms")); err == nil {
		f.Bedrooms = v
	}
	return f.Normalize()
}

// List returns all listings, newest first, with the query filter applied
func (h *ListingHandler) List(c *gin.Context) {
	properties, err := h.svc.Listings(c.Request.Context(), listing.AllListings(), filterFromQuery(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"count":      len(properties),
	})
}

// Mine returns the signed-in seller's listings
func (h *ListingHandler) Mine(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	if actor == nil {
		abortWithError(c, marketplace.ErrUnauthenticated)
		return
	}

	properties, err := h.svc.Listings(c.Request.Context(), listing.OwnedBy(actor.ID), filterFromQuery(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"count":      len(properties),
	})
}

func (h *ListingHandler) Get(c *gin.Context) {
	p, err := h.svc.Listing(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create handles the multipart listing form. Media files go in "media";
// already-hosted image URLs may be passed as repeated "images" fields.
func (h *ListingHandler) Create(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form: " + err.Error()})
		return
	}

	draft, err := draftFromForm(form.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, err := readFiles(form.File["media"])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.svc.CreateListing(c.Request.Context(), actor, draft, files)
	if err != nil {
		log.Printf("Failed to list property: %v", err)
		c.JSON(statusFor(err), gin.H{
			"error":   err.Error(),
			"message": "Failed to list property.",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Property listed successfully!",
		"property": p,
	})
}

func draftFromForm(values map[string][]string) (models.PropertyDraft, error) {
	get := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	draft := models.PropertyDraft{
		Title:       get("title"),
		Description: get("description"),
		Location:    get("location"),
		Images:      values["images"],
	}

	var err error
	if s := get("price"); s != "" {
		if draft.Price, err = strconv.ParseFloat(s, 64); err != nil {
			return draft, fmt.Errorf("invalid price %q", s)
		}
	}
	if s := get("bedrooms"); s != "" {
		if draft.Bedrooms, err = strconv.Atoi(s); err != nil {
			return draft, fmt.Errorf("invalid bedrooms %q", s)
		}
	}
	if s := get("bathrooms"); s != "" {
		if draft.Bathrooms, err = strconv.ParseFloat(s, 64); err != nil {
			return draft, fmt.Errorf("invalid bathrooms %q", s)
		}
	}
	if s := get("squareFeet"); s != "" {
		if draft.SquareFeet, err = strconv.Atoi(s); err != nil {
			return draft, fmt.Errorf("invalid squareFeet %q", s)
		}
	}
	return draft, nil
}

func readFiles(headers []*multipart.FileHeader) ([]media.File, error) {
	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}
		files = append(files, media.File{Name: fh.Filename, Data: data})
	}
	return files, nil
}

func (h *ListingHandler) Delete(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	if err := h.svc.DeleteListing(c.Request.Context(), actor, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// Search runs a full-text search. Without a search engine it falls back to
// the stored listings with the same filter.
func (h *ListingHandler) Search(c *gin.Context) {
	filter := filterFromQuery(c)

	if h.searcher == nil {
		properties, err := h.svc.Listings(c.Request.Context(), listing.AllListings(), filter)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, search.SearchResult{
			Hits:      properties,
			TotalHits: int64(len(properties)),
		})
		return
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if err != nil {
		limit = 20
	}
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	result, err := h.searcher.FilterSearch(search.FilterParams{
		Filter: filter,
		SortBy: c.DefaultQuery("sort_by", "newest"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
