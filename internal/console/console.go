// Package console is the admin console view model. It stays closed until
// its PIN gate is verified; only then does it open the listing, inquiry
// and settings feeds.
package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/barkshad/Real-estate/internal/feed"
	"github.com/barkshad/Real-estate/internal/gate"
	"github.com/barkshad/Real-estate/internal/listing"
	"github.com/barkshad/Real-estate/internal/models"
)

var ErrLocked = errors.New("admin console is locked")

// InquirySource streams the inquiry inbox
type InquirySource interface {
	Subscribe(ctx context.Context) (feed.Subscription[[]models.Inquiry], error)
}

// SettingsSource streams the site settings document
type SettingsSource interface {
	Subscribe(ctx context.Context) (feed.Subscription[models.SiteSettings], error)
}

// Overview is the stats strip at the top of the console
type Overview struct {
	TotalListings    int `json:"total_listings"`
	ForSale          int `json:"for_sale"`
	PendingInquiries int `json:"pending_inquiries"`
}

// Panels is everything the console renders
type Panels struct {
	Overview   Overview             `json:"overview"`
	Listings   listing.View         `json:"listings"`
	Inquiries  []models.Inquiry     `json:"inquiries"`
	Settings   *models.SiteSettings `json:"settings,omitempty"`
	InboxReady bool                 `json:"inbox_ready"`
}

type Console struct {
	gate      *gate.PINGate
	listings  listing.Feed
	inquiries InquirySource
	settings  SettingsSource

	mu       sync.Mutex
	open     bool
	vm       *listing.ViewModel
	inqSub   feed.Subscription[[]models.Inquiry]
	setSub   feed.Subscription[models.SiteSettings]
	cancel   context.CancelFunc
	inbox    []models.Inquiry
	inboxSet bool
	current  *models.SiteSettings
	changes  chan Panels
}

func New(g *gate.PINGate, listings listing.Feed, inquiries InquirySource, settings SettingsSource) *Console {
	return &Console{
		gate:      g,
		listings:  listings,
		inquiries: inquiries,
		settings:  settings,
		changes:   make(chan Panels, 1),
	}
}

// Unlock verifies the PIN and opens the feeds. Unlocking an open console
// is a no-op.
func (c *Console) Unlock(ctx context.Context, pin string) error {
	if err := c.gate.Verify(pin); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	inqSub, err := c.inquiries.Subscribe(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to inquiries: %w", err)
	}
	setSub, err := c.settings.Subscribe(ctx)
	if err != nil {
		inqSub.Close()
		cancel()
		return fmt.Errorf("subscribe to settings: %w", err)
	}

	c.open = true
	c.cancel = cancel
	c.vm = listing.NewViewModel(listing.AllListings(), listing.DefaultFilterOptions())
	c.inqSub = inqSub
	c.setSub = setSub
	c.inbox = nil
	c.inboxSet = false
	c.current = nil

	go c.vm.Run(ctx, c.listings)
	go c.pump(ctx, c.vm, inqSub, setSub)
	return nil
}

func (c *Console) pump(ctx context.Context, vm *listing.ViewModel,
	inqSub feed.Subscription[[]models.Inquiry], setSub feed.Subscription[models.SiteSettings]) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-vm.Updates():
		case list := <-inqSub.Updates():
			c.mu.Lock()
			if c.inqSub == inqSub {
				c.inbox = list
				c.inboxSet = true
			}
			c.mu.Unlock()
		case s := <-setSub.Updates():
			c.mu.Lock()
			if c.setSub == setSub {
				c.current = &s
			}
			c.mu.Unlock()
		}
		c.notify()
	}
}

func (c *Console) notify() {
	p, err := c.Panels()
	if err != nil {
		return
	}
	select {
	case c.changes <- p:
	default:
		select {
		case <-c.changes:
		default:
		}
		select {
		case c.changes <- p:
		default:
		}
	}
}

// Changes delivers the latest panels after every feed event
func (c *Console) Changes() <-chan Panels {
	return c.changes
}

// Verified reports whether the PIN gate is open
func (c *Console) Verified() bool {
	return c.gate.Verified()
}

// Panels returns the current console state, or ErrLocked before the PIN
// has been verified.
func (c *Console) Panels() (Panels, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open || !c.gate.Verified() {
		return Panels{}, ErrLocked
	}

	view := c.vm.View()
	p := Panels{
		Listings:   view,
		Inquiries:  append([]models.Inquiry{}, c.inbox...),
		InboxReady: c.inboxSet,
	}
	if c.current != nil {
		s := *c.current
		p.Settings = &s
	}

	p.Overview.TotalListings = view.Total
	for i := range view.Properties {
		if view.Properties[i].IsForSale() {
			p.Overview.ForSale++
		}
	}
	for _, inq := range c.inbox {
		if inq.Status == models.InquiryStatusPending {
			p.Overview.PendingInquiries++
		}
	}
	return p, nil
}

// Lock relocks the gate and closes the feeds
func (c *Console) Lock() {
	c.gate.Lock()
	c.Close()
}

// Close cancels every subscription. The console can be unlocked again.
func (c *Console) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return
	}
	c.open = false
	c.vm.Close()
	c.inqSub.Close()
	c.setSub.Close()
	c.cancel()
	c.inqSub = nil
	c.setSub = nil
}
