package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/barkshad/Real-estate/internal/listing"
	"github.com/barkshad/Real-estate/internal/models"
	"github.com/barkshad/Real-estate/internal/store"
)

type deniedStore struct {
	store.PropertyStore
}

func (deniedStore) ListProperties(ctx context.Context, ownerID string) ([]models.Property, error) {
	return nil, store.ErrPermissionDenied
}

func TestListingFeedDeliversScopedSnapshots(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	mem.CreateProperty(ctx, models.PropertyDraft{Title: "Lakeside Cabin", Location: "Lake Tahoe, NV", Price: 450000}, "u1")
	mem.CreateProperty(ctx, models.PropertyDraft{Title: "Downtown Penthouse", Location: "Manhattan, NY", Price: 3800000}, "u2")

	f := NewListingFeed(mem, time.Second)
	defer f.Close()

	all, err := f.Subscribe(ctx, listing.AllListings())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	mine, _ := f.Subscribe(ctx, listing.OwnedBy("u1"))

	if got := receive(t, all.Updates()); len(got.Properties) != 2 {
		t.Errorf("all: got %d listings, want 2", len(got.Properties))
	}
	got := receive(t, mine.Updates())
	if len(got.Properties) != 1 || got.Properties[0].OwnerID != "u1" {
		t.Errorf("mine: got %+v", got.Properties)
	}
	if got.Scope != listing.OwnedBy("u1") {
		t.Errorf("scope: got %v", got.Scope)
	}

	mem.CreateProperty(ctx, models.PropertyDraft{Title: "Studio Loft", Location: "Brooklyn, NY"}, "u1")
	f.Publish()
	if got := receive(t, mine.Updates()); len(got.Properties) != 2 {
		t.Errorf("mine after publish: got %d listings, want 2", len(got.Properties))
	}

	mine.Close()
	if n := f.Subscribers(); n != 1 {
		t.Errorf("subscribers: got %d, want 1", n)
	}
}

func TestListingFeedPermissionDeniedIsEmpty(t *testing.T) {
	f := NewListingFeed(deniedStore{}, time.Second)
	defer f.Close()

	s, _ := f.Subscribe(context.Background(), listing.AllListings())
	got := receive(t, s.Updates())
	if !errors.Is(got.Err, store.ErrPermissionDenied) {
		t.Errorf("err: got %v", got.Err)
	}
	if got.Properties == nil || len(got.Properties) != 0 {
		t.Errorf("properties: got %v, want empty", got.Properties)
	}
}

func TestListingFeedDrivesViewModel(t *testing.T) {
	mem := store.NewMemory()
	f := NewListingFeed(mem, time.Second)
	defer f.Close()

	vm := listing.NewViewModel(listing.AllListings(), listing.DefaultFilterOptions())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go vm.Run(ctx, f)

	if v := receive(t, vm.Updates()); v.Phase != listing.PhaseEmpty {
		t.Errorf("phase: got %s, want empty", v.Phase)
	}

	mem.CreateProperty(ctx, models.PropertyDraft{Title: "Lakeside Cabin", Location: "Lake Tahoe, NV"}, "u1")
	f.Publish()
	if v := receive(t, vm.Updates()); v.Phase != listing.PhaseReady {
		t.Errorf("phase: got %s, want ready", v.Phase)
	}
}

func TestSettingsFeedSkipsMissingDocument(t *testing.T) {
	mem := store.NewMemory()
	f := NewSettingsFeed(mem, time.Second)
	defer f.Close()

	s, _ := f.Subscribe(context.Background())
	select {
	case v := <-s.Updates():
		t.Errorf("unexpected settings %+v", v)
	case <-time.After(100 * time.Millisecond):
	}

	name := "Coastal Homes"
	mem.MergeSettings(context.Background(), models.SettingsPatch{BrandName: &name})
	f.Publish()
	if got := receive(t, s.Updates()); got.BrandName != name {
		t.Errorf("brand: got %q, want %q", got.BrandName, name)
	}
}

func TestInquiryFeedNewestFirst(t *testing.T) {
	mem := store.NewMemory()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	mem.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	ctx := context.Background()
	mem.CreateInquiry(ctx, models.InquiryDraft{PropertyID: "p1", UserName: "Ann", UserEmail: "ann@example.com", Message: "first"})
	mem.CreateInquiry(ctx, models.InquiryDraft{PropertyID: "p1", UserName: "Bob", UserEmail: "bob@example.com", Message: "second"})

	f := NewInquiryFeed(mem, time.Second)
	defer f.Close()
	s, _ := f.Subscribe(ctx)

	got := receive(t, s.Updates())
	if len(got) != 2 || got[0].Message != "second" {
		t.Errorf("got %+v", got)
	}
	if got[0].Status != models.InquiryStatusPending {
		t.Errorf("status: got %s, want pending", got[0].Status)
	}
}
