package marketplace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/barkshad/Real-estate/internal/listing"
	"github.com/barkshad/Real-estate/internal/media"
	"github.com/barkshad/Real-estate/internal/models"
	"github.com/barkshad/Real-estate/internal/store"
)

type countingPublisher struct {
	mu sync.Mutex
	n  int
}

func (p *countingPublisher) Publish() {
	p.mu.Lock()
	p.n++
	p.mu.Unlock()
}

func (p *countingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

type fakeUploader struct {
	failAt int
	calls  int
}

func (u *fakeUploader) Upload(ctx context.Context, f media.File) (string, error) {
	u.calls++
	if u.failAt > 0 && u.calls == u.failAt {
		return "", media.ErrUploadFailed
	}
	return fmt.Sprintf("https://cdn.example.com/%s", f.Name), nil
}

type recordingIndexer struct {
	indexed []string
	deleted []string
}

func (r *recordingIndexer) IndexProperty(p *models.Property) error {
	r.indexed = append(r.indexed, p.ID)
	return nil
}
func (r *recordingIndexer) IndexProperties([]models.Property) error { return nil }
func (r *recordingIndexer) DeleteProperty(id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}
func (r *recordingIndexer) Reindex([]models.Property) error { return nil }

type fixture struct {
	svc       *Service
	store     *store.Memory
	uploader  *fakeUploader
	indexer   *recordingIndexer
	listings  *countingPublisher
	settings  *countingPublisher
	inquiries *countingPublisher
}

func newFixture() *fixture {
	f := &fixture{
		store:     store.NewMemory(),
		uploader:  &fakeUploader{},
		indexer:   &recordingIndexer{},
		listings:  &countingPublisher{},
		settings:  &countingPublisher{},
		inquiries: &countingPublisher{},
	}
	f.svc = New(Deps{
		Store:        f.store,
		Uploader:     f.uploader,
		Indexer:      f.indexer,
		ListingFeed:  f.listings,
		SettingsFeed: f.settings,
		InquiryFeed:  f.inquiries,
	})
	return f
}

var (
	seller = &models.User{ID: "seller-1", Email: "sam@example.com", Role: models.RoleSeller}
	other  = &models.User{ID: "seller-2", Email: "kim@example.com", Role: models.RoleSeller}
	admin  = &models.User{ID: "admin-1", Email: "admin@homequest.com", Role: models.RoleAdmin}
)

func cabinDraft() models.PropertyDraft {
	return models.PropertyDraft{
		Title:    "Lakeside Cabin",
		Location: "Lake Tahoe, CA",
		Price:    450000,
		Bedrooms: 2,
	}
}

func TestCreateListing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	files := []media.File{{Name: "front.jpg"}, {Name: "tour.mp4"}}
	p, err := f.svc.CreateListing(ctx, seller, cabinDraft(), files)
	if err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}

	if p.OwnerID != seller.ID {
		t.Errorf("expected owner %s, got %s", seller.ID, p.OwnerID)
	}
	if p.Status != models.PropertyStatusForSale {
		t.Errorf("expected status for_sale, got %s", p.Status)
	}
	if len(p.Images) != 2 || p.Images[0] != "https://cdn.example.com/front.jpg" {
		t.Errorf("unexpected images: %v", p.Images)
	}
	if len(f.indexer.indexed) != 1 || f.indexer.indexed[0] != p.ID {
		t.Errorf("expected listing to be indexed, got %v", f.indexer.indexed)
	}
	if f.listings.count() != 1 {
		t.Errorf("expected one listing publish, got %d", f.listings.count())
	}
}

func TestCreateListingRequiresActor(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateListing(context.Background(), nil, cabinDraft(), []media.File{{Name: "a.jpg"}})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCreateListingRequiresMedia(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateListing(context.Background(), seller, cabinDraft(), nil)
	if !errors.Is(err, ErrNoMedia) {
		t.Errorf("expected ErrNoMedia, got %v", err)
	}

	draft := cabinDraft()
	draft.Images = []string{"https://cdn.example.com/existing.jpg"}
	if _, err := f.svc.CreateListing(context.Background(), seller, draft, nil); err != nil {
		t.Errorf("expected existing image URL to be accepted, got %v", err)
	}
}

func TestCreateListingInvalidDraft(t *testing.T) {
	f := newFixture()
	draft := cabinDraft()
	draft.Title = "  "
	_, err := f.svc.CreateListing(context.Background(), seller, draft, []media.File{{Name: "a.jpg"}})
	if !errors.Is(err, models.ErrInvalidDraft) {
		t.Errorf("expected ErrInvalidDraft, got %v", err)
	}
	if f.uploader.calls != 0 {
		t.Errorf("expected no uploads for an invalid draft, got %d", f.uploader.calls)
	}
}

func TestCreateListingUploadFailureStoresNothing(t *testing.T) {
	f := newFixture()
	f.uploader.failAt = 2
	ctx := context.Background()

	files := []media.File{{Name: "a.jpg"}, {Name: "b.jpg"}, {Name: "c.jpg"}}
	_, err := f.svc.CreateListing(ctx, seller, cabinDraft(), files)
	if !errors.Is(err, media.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}

	all, _ := f.store.ListProperties(ctx, "")
	if len(all) != 0 {
		t.Errorf("expected nothing stored, got %d listings", len(all))
	}
	if f.listings.count() != 0 {
		t.Errorf("expected no publish, got %d", f.listings.count())
	}
}

func TestDeleteListing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.svc.CreateListing(ctx, seller, cabinDraft(), []media.File{{Name: "a.jpg"}})
	if err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}

	if err := f.svc.DeleteListing(ctx, other, p.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for another seller, got %v", err)
	}
	if err := f.svc.DeleteListing(ctx, nil, p.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
	if err := f.svc.DeleteListing(ctx, seller, p.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}

	if _, err := f.svc.Listing(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected listing to be gone, got %v", err)
	}
	if len(f.indexer.deleted) != 1 {
		t.Errorf("expected listing removed from index, got %v", f.indexer.deleted)
	}
	if err := f.svc.DeleteListing(ctx, seller, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestAdminDeletesAnyListing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, _ := f.svc.CreateListing(ctx, seller, cabinDraft(), []media.File{{Name: "a.jpg"}})
	if err := f.svc.DeleteListing(ctx, admin, p.ID); err != nil {
		t.Errorf("admin delete failed: %v", err)
	}
}

func TestListingsScopeAndFilter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	f.store.SetClock(func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	})

	cabin := cabinDraft()
	cabin.Images = []string{"x"}
	loft := models.PropertyDraft{Title: "Studio Loft", Location: "Brooklyn, NY", Price: 300000, Images: []string{"y"}}

	if _, err := f.svc.CreateListing(ctx, seller, cabin, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.CreateListing(ctx, other, loft, nil); err != nil {
		t.Fatal(err)
	}

	all, err := f.svc.Listings(ctx, listing.AllListings(), listing.DefaultFilterOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Title != "Studio Loft" {
		t.Errorf("expected newest first, got %v", titles(all))
	}

	mine, _ := f.svc.Listings(ctx, listing.OwnedBy(seller.ID), listing.DefaultFilterOptions())
	if len(mine) != 1 || mine[0].Title != "Lakeside Cabin" {
		t.Errorf("expected only seller's listing, got %v", titles(mine))
	}

	filtered, _ := f.svc.Listings(ctx, listing.AllListings(), listing.SeededFilterOptions("tahoe"))
	if len(filtered) != 1 || filtered[0].Title != "Lakeside Cabin" {
		t.Errorf("expected location match, got %v", titles(filtered))
	}
}

func titles(props []models.Property) []string {
	out := make([]string, len(props))
	for i := range props {
		out[i] = props[i].Title
	}
	return out
}

func TestInquiries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, _ := f.svc.CreateListing(ctx, seller, cabinDraft(), []media.File{{Name: "a.jpg"}})
	inq, err := f.svc.SubmitInquiry(ctx, models.InquiryDraft{
		PropertyID: p.ID,
		UserName:   "Jo",
		UserEmail:  "jo@example.com",
		Message:    "Is the dock included?",
	})
	if err != nil {
		t.Fatalf("SubmitInquiry failed: %v", err)
	}
	if inq.PropertyTitle != "Lakeside Cabin" {
		t.Errorf("expected property title to be filled in, got %q", inq.PropertyTitle)
	}
	if inq.Status != models.InquiryStatusPending {
		t.Errorf("expected pending, got %s", inq.Status)
	}
	if f.inquiries.count() != 1 {
		t.Errorf("expected inbox publish, got %d", f.inquiries.count())
	}

	if _, err := f.svc.Inquiries(ctx, seller); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-admin, got %v", err)
	}

	if err := f.svc.RespondInquiry(ctx, admin, inq.ID); err != nil {
		t.Fatalf("RespondInquiry failed: %v", err)
	}
	list, err := f.svc.Inquiries(ctx, admin)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Status != models.InquiryStatusResponded {
		t.Errorf("expected responded inquiry, got %+v", list)
	}
}

func TestSubmitInquiryInvalid(t *testing.T) {
	f := newFixture()
	_, err := f.svc.SubmitInquiry(context.Background(), models.InquiryDraft{PropertyID: "p1"})
	if !errors.Is(err, models.ErrInvalidInquiry) {
		t.Errorf("expected ErrInvalidInquiry, got %v", err)
	}
}

func TestSettingsFallsBackToDefaults(t *testing.T) {
	f := newFixture()
	got := f.svc.Settings(context.Background())
	if got.BrandName != models.DefaultSiteSettings().BrandName {
		t.Errorf("expected default brand name, got %q", got.BrandName)
	}
}

func TestEnsureSettings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	seeded, err := f.svc.EnsureSettings(ctx)
	if err != nil || !seeded {
		t.Fatalf("expected first call to seed, got %v %v", seeded, err)
	}
	seeded, err = f.svc.EnsureSettings(ctx)
	if err != nil || seeded {
		t.Errorf("expected second call to be a no-op, got %v %v", seeded, err)
	}

	stored, err := f.store.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stored.HeroTitle != models.DefaultSiteSettings().HeroTitle {
		t.Errorf("expected seeded hero title, got %q", stored.HeroTitle)
	}
}

func TestUpdateSettings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// prime the cache
	_ = f.svc.Settings(ctx)
	f.svc.EnsureSettings(ctx)
	before := f.svc.Settings(ctx)

	brand := "Coastline Homes"
	patch := models.SettingsPatch{BrandName: &brand}

	if _, err := f.svc.UpdateSettings(ctx, seller, patch); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	updated, err := f.svc.UpdateSettings(ctx, admin, patch)
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if updated.BrandName != brand {
		t.Errorf("expected brand %q, got %q", brand, updated.BrandName)
	}
	if updated.HeroTitle != before.HeroTitle {
		t.Errorf("expected untouched hero title, got %q", updated.HeroTitle)
	}

	if got := f.svc.Settings(ctx); got.BrandName != brand {
		t.Errorf("expected cache to be invalidated, got %q", got.BrandName)
	}
	if f.settings.count() != 2 {
		t.Errorf("expected seed and update publishes, got %d", f.settings.count())
	}
}

func TestStats(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, _ := f.svc.CreateListing(ctx, seller, cabinDraft(), []media.File{{Name: "a.jpg"}})
	f.svc.CreateListing(ctx, other, cabinDraft(), []media.File{{Name: "b.jpg"}})
	f.svc.SubmitInquiry(ctx, models.InquiryDraft{PropertyID: p.ID, UserName: "Jo", UserEmail: "jo@example.com", Message: "hi"})

	if _, err := f.svc.Stats(ctx, seller); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	stats, err := f.svc.Stats(ctx, admin)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalListings != 2 || stats.ForSale != 2 {
		t.Errorf("unexpected listing counts: %+v", stats)
	}
	if stats.TotalInquiries != 1 || stats.PendingInquiries != 1 {
		t.Errorf("unexpected inquiry counts: %+v", stats)
	}
}
