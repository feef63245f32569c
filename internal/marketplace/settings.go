package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/barkshad/Real-estate/internal/models"
	"github.com/barkshad/Real-estate/internal/store"
)

// Settings returns the site settings. Reads go cache, then store, then the
// built-in defaults; a read never fails.
func (s *Service) Settings(ctx context.Context) models.SiteSettings {
	var cached models.SiteSettings
	if found, err := s.cache.GetJSON(ctx, settingsCacheKey, &cached); err == nil && found {
		return cached
	}

	current, err := s.store.GetSettings(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrPermissionDenied) {
			log.Printf("Warning: failed to load settings: %v", err)
		}
		return models.DefaultSiteSettings()
	}

	if err := s.cache.SetJSON(ctx, settingsCacheKey, current, s.settingsTTL); err != nil {
		log.Printf("Warning: failed to cache settings: %v", err)
	}
	return *current
}

// UpdateSettings merges the patch into the stored settings. Admins only.
func (s *Service) UpdateSettings(ctx context.Context, actor *models.User, patch models.SettingsPatch) (*models.SiteSettings, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		current := s.Settings(ctx)
		return &current, nil
	}

	merged, err := s.store.MergeSettings(ctx, patch)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}

	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		log.Printf("Warning: failed to invalidate settings cache: %v", err)
	}
	s.settingsFeed.Publish()
	return merged, nil
}

// EnsureSettings seeds the defaults when no settings document exists. It
// runs once at startup, whether or not an admin has ever signed in.
func (s *Service) EnsureSettings(ctx context.Context) (bool, error) {
	if _, err := s.store.GetSettings(ctx); err == nil {
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("load settings: %w", err)
	}

	d := models.DefaultSiteSettings()
	seed := models.SettingsPatch{
		BrandName:    &d.BrandName,
		HeroTitle:    &d.HeroTitle,
		HeroSubtitle: &d.HeroSubtitle,
		PrimaryColor: &d.PrimaryColor,
		ContactEmail: &d.ContactEmail,
		FooterText:   &d.FooterText,
	}
	if _, err := s.store.MergeSettings(ctx, seed); err != nil {
		return false, fmt.Errorf("seed settings: %w", err)
	}
	s.settingsFeed.Publish()
	return true, nil
}

// Stats is the admin overview
type Stats struct {
	TotalListings    int `json:"total_listings"`
	ForSale          int `json:"for_sale"`
	TotalInquiries   int `json:"total_inquiries"`
	PendingInquiries int `json:"pending_inquiries"`
}

func (s *Service) Stats(ctx context.Context, actor *models.User) (*Stats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	props, err := s.store.ListProperties(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}
	inquiries, err := s.store.ListInquiries(ctx)
	if err != nil {
		return nil, fmt.Errorf("count inquiries: %w", err)
	}

	stats := &Stats{TotalListings: len(props), TotalInquiries: len(inquiries)}
	for i := range props {
		if props[i].IsForSale() {
			stats.ForSale++
		}
	}
	for i := range inquiries {
		if inquiries[i].Status == models.InquiryStatusPending {
			stats.PendingInquiries++
		}
	}
	return stats, nil
}
