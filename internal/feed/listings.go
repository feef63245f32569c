package feed

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/barkshad/Real-estate/internal/listing"
	"github.com/barkshad/Real-estate/internal/models"
	"github.com/barkshad/Real-estate/internal/store"
)

// ErrClosed is returned when subscribing to a closed feed
var ErrClosed = errors.New("feed closed")

// Subscription is a stream of complete values of type T
type Subscription[T any] interface {
	Updates() <-chan T
	Done() <-chan struct{}
	Close()
}

// ListingFeed publishes listing snapshots per scope
type ListingFeed struct {
	hub *Hub[listing.Scope, listing.Snapshot]
}

// NewListingFeed creates a listing feed backed by properties
func NewListingFeed(properties store.PropertyStore, timeout time.Duration) *ListingFeed {
	load := func(ctx context.Context, scope listing.Scope) (listing.Snapshot, bool) {
		props, err := properties.ListProperties(ctx, scope.OwnerID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return listing.Snapshot{}, false
			}
			if !errors.Is(err, store.ErrPermissionDenied) {
				log.Printf("Feed: failed to load %s listings: %v", scope, err)
			}
			return listing.Snapshot{Scope: scope, Properties: []models.Property{}, Err: err}, true
		}
		return listing.Snapshot{Scope: scope, Properties: props}, true
	}
	return &ListingFeed{hub: NewHub(load, timeout)}
}

// Subscribe implements listing.Feed
func (f *ListingFeed) Subscribe(ctx context.Context, scope listing.Scope) (listing.Subscription, error) {
	s, err := f.hub.Subscribe(ctx, scope)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Publish pushes a fresh snapshot to every subscriber
func (f *ListingFeed) Publish() {
	f.hub.Publish()
}

// Subscribers returns the number of open subscriptions
func (f *ListingFeed) Subscribers() int {
	return f.hub.Subscribers()
}

func (f *ListingFeed) Close() {
	f.hub.Close()
}

type singleton struct{}

// SettingsFeed publishes the site settings document. Failed loads and a
// missing document produce no event.
type SettingsFeed struct {
	hub *Hub[singleton, models.SiteSettings]
}

func NewSettingsFeed(settings store.SettingsStore, timeout time.Duration) *SettingsFeed {
	load := func(ctx context.Context, _ singleton) (models.SiteSettings, bool) {
		s, err := settings.GetSettings(ctx)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) && ctx.Err() == nil {
				log.Printf("Feed: failed to load settings: %v", err)
			}
			return models.SiteSettings{}, false
		}
		return *s, true
	}
	return &SettingsFeed{hub: NewHub(load, timeout)}
}

// Subscribe opens a settings stream
func (f *SettingsFeed) Subscribe(ctx context.Context) (Subscription[models.SiteSettings], error) {
	s, err := f.hub.Subscribe(ctx, singleton{})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (f *SettingsFeed) Publish() {
	f.hub.Publish()
}

func (f *SettingsFeed) Close() {
	f.hub.Close()
}

// InquiryFeed publishes the inquiry inbox, newest first. A failed load is
// delivered as an empty inbox.
type InquiryFeed struct {
	hub *Hub[singleton, []models.Inquiry]
}

func NewInquiryFeed(inquiries store.InquiryStore, timeout time.Duration) *InquiryFeed {
	load := func(ctx context.Context, _ singleton) ([]models.Inquiry, bool) {
		list, err := inquiries.ListInquiries(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, false
			}
			if !errors.Is(err, store.ErrPermissionDenied) {
				log.Printf("Feed: failed to load inquiries: %v", err)
			}
			return []models.Inquiry{}, true
		}
		return list, true
	}
	return &InquiryFeed{hub: NewHub(load, timeout)}
}

// Subscribe opens an inbox stream
func (f *InquiryFeed) Subscribe(ctx context.Context) (Subscription[[]models.Inquiry], error) {
	s, err := f.hub.Subscribe(ctx, singleton{})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (f *InquiryFeed) Publish() {
	f.hub.Publish()
}

func (f *InquiryFeed) Close() {
	f.hub.Close()
}
