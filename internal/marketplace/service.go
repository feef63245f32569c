// Package marketplace is the service layer behind the HTTP and WebSocket
// handlers. Every write goes to the store first, then to the search index,
// then to the live feeds.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/barkshad/Real-estate/internal/cache"
	"github.com/barkshad/Real-estate/internal/listing"
	"github.com/barkshad/Real-estate/internal/media"
	"github.com/barkshad/Real-estate/internal/models"
	"github.com/barkshad/Real-estate/internal/search"
	"github.com/barkshad/Real-estate/internal/store"
)

var (
	ErrUnauthenticated = errors.New("sign in required")
	ErrForbidden       = errors.New("not allowed")
	ErrNoMedia         = errors.New("please upload at least one image")
)

const settingsCacheKey = "settings:general"

// Publisher pushes a fresh value to a feed's subscribers
type Publisher interface {
	Publish()
}

type nopPublisher struct{}

func (nopPublisher) Publish() {}

// Deps are the collaborators of a Service. Nil optional fields fall back
// to no-op implementations.
type Deps struct {
	Store    store.Store
	Uploader media.Uploader
	Indexer  search.Indexer
	Cache    cache.Cache

	ListingFeed  Publisher
	SettingsFeed Publisher
	InquiryFeed  Publisher

	SettingsTTL time.Duration
}

type Service struct {
	store    store.Store
	uploader media.Uploader
	indexer  search.Indexer
	cache    cache.Cache

	listingFeed  Publisher
	settingsFeed Publisher
	inquiryFeed  Publisher

	settingsTTL time.Duration
}

func New(d Deps) *Service {
	s := &Service{
		store:        d.Store,
		uploader:     d.Uploader,
		indexer:      d.Indexer,
		cache:        d.Cache,
		listingFeed:  d.ListingFeed,
		settingsFeed: d.SettingsFeed,
		inquiryFeed:  d.InquiryFeed,
		settingsTTL:  d.SettingsTTL,
	}
	if s.indexer == nil {
		s.indexer = search.Noop{}
	}
	if s.cache == nil {
		s.cache = cache.NewLocal()
	}
	if s.listingFeed == nil {
		s.listingFeed = nopPublisher{}
	}
	if s.settingsFeed == nil {
		s.settingsFeed = nopPublisher{}
	}
	if s.inquiryFeed == nil {
		s.inquiryFeed = nopPublisher{}
	}
	if s.settingsTTL <= 0 {
		s.settingsTTL = 5 * time.Minute
	}
	return s
}

// CreateListing uploads the media, then stores the listing. If any upload
// fails nothing is stored.
func (s *Service) CreateListing(ctx context.Context, actor *models.User, draft models.PropertyDraft, files []media.File) (*models.Property, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if len(files) == 0 && len(draft.Images) == 0 {
		return nil, ErrNoMedia
	}

	if len(files) > 0 {
		if s.uploader == nil {
			return nil, fmt.Errorf("upload media: %w", media.ErrUploadFailed)
		}
		urls, err := media.UploadAll(ctx, s.uploader, files)
		if err != nil {
			return nil, fmt.Errorf("upload media: %w", err)
		}
		draft.Images = append(append([]string{}, draft.Images...), urls...)
	}

	p, err := s.store.CreateProperty(ctx, draft, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	if err := s.indexer.IndexProperty(p); err != nil {
		log.Printf("Warning: failed to index listing %s: %v", p.ID, err)
	}
	s.listingFeed.Publish()
	return p, nil
}

// DeleteListing removes a listing. Only its owner or an admin may do so.
func (s *Service) DeleteListing(ctx context.Context, actor *models.User, id string) error {
	if actor == nil {
		return ErrUnauthenticated
	}

	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}

	if err := s.store.DeleteProperty(ctx, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	if err := s.indexer.DeleteProperty(id); err != nil {
		log.Printf("Warning: failed to remove listing %s from index: %v", id, err)
	}
	s.listingFeed.Publish()
	return nil
}

func (s *Service) Listing(ctx context.Context, id string) (*models.Property, error) {
	return s.store.GetProperty(ctx, id)
}

// Listings is the one-shot form of the live view: the scoped collection,
// newest first, with the filter applied.
func (s *Service) Listings(ctx context.Context, scope listing.Scope, filter listing.FilterOptions) ([]models.Property, error) {
	props, err := s.store.ListProperties(ctx, scope.OwnerID)
	if err != nil {
		if errors.Is(err, store.ErrPermissionDenied) {
			return []models.Property{}, nil
		}
		return nil, err
	}
	return listing.Apply(props, filter.Normalize()), nil
}

// AllListings returns every listing for reindexing
func (s *Service) AllListings(ctx context.Context) ([]models.Property, error) {
	return s.store.ListProperties(ctx, "")
}

// SubmitInquiry records a contact-form message. No sign-in is needed.
func (s *Service) SubmitInquiry(ctx context.Context, draft models.InquiryDraft) (*models.Inquiry, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if draft.PropertyTitle == "" {
		if p, err := s.store.GetProperty(ctx, draft.PropertyID); err == nil {
			draft.PropertyTitle = p.Title
		}
	}

	inq, err := s.store.CreateInquiry(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("submit inquiry: %w", err)
	}
	s.inquiryFeed.Publish()
	return inq, nil
}

func (s *Service) Inquiries(ctx context.Context, actor *models.User) ([]models.Inquiry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.ListInquiries(ctx)
}

// RespondInquiry marks an inquiry as answered
func (s *Service) RespondInquiry(ctx context.Context, actor *models.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.store.SetInquiryStatus(ctx, id, models.InquiryStatusResponded); err != nil {
		return err
	}
	s.inquiryFeed.Publish()
	return nil
}

func requireAdmin(actor *models.User) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
