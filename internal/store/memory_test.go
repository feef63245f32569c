package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/barkshad/Real-estate/internal/models"
)

func steppingClock() func() time.Time {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestMemoryCreateAssignsServerFields(t *testing.T) {
	m := NewMemory()
	m.SetClock(steppingClock())

	p, err := m.CreateProperty(context.Background(), models.PropertyDraft{
		Title:    "  Lakeside Cabin ",
		Location: "Lake Tahoe, NV",
		Price:    450000,
		Images:   []string{"https://cdn.example.com/a.jpg"},
	}, "u1")
	if err != nil {
		t.Fatalf("CreateProperty: %v", err)
	}
	if p.ID == "" {
		t.Error("ID not assigned")
	}
	if p.Status != models.PropertyStatusForSale {
		t.Errorf("status: got %s, want for_sale", p.Status)
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreatedAt not assigned")
	}
	if p.Title != "Lakeside Cabin" {
		t.Errorf("title: got %q", p.Title)
	}
	if p.CoverImage() != "https://cdn.example.com/a.jpg" {
		t.Errorf("cover: got %q", p.CoverImage())
	}
}

func TestMemoryListNewestFirstAndScoped(t *testing.T) {
	m := NewMemory()
	m.SetClock(steppingClock())
	ctx := context.Background()

	for _, d := range []struct{ title, owner string }{{"first", "u1"}, {"second", "u2"}, {"third", "u1"}} {
		if _, err := m.CreateProperty(ctx, models.PropertyDraft{Title: d.title, Location: "x"}, d.owner); err != nil {
			t.Fatal(err)
		}
	}

	all, _ := m.ListProperties(ctx, "")
	if len(all) != 3 || all[0].Title != "third" || all[2].Title != "first" {
		t.Errorf("order: got %v", all)
	}

	mine, _ := m.ListProperties(ctx, "u1")
	if len(mine) != 2 {
		t.Fatalf("owner u1: got %d, want 2", len(mine))
	}
	for _, p := range mine {
		if p.OwnerID != "u1" {
			t.Errorf("foreign listing %s", p.ID)
		}
	}
}

func TestMemoryDeleteIsHard(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p, _ := m.CreateProperty(ctx, models.PropertyDraft{Title: "t", Location: "l"}, "u1")

	if err := m.DeleteProperty(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProperty: %v", err)
	}
	if _, err := m.GetProperty(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: got %v, want ErrNotFound", err)
	}
	if err := m.DeleteProperty(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestMemorySettingsMerge(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.GetSettings(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSettings on empty store: got %v", err)
	}

	defaults := models.DefaultSiteSettings()
	seed := models.SettingsPatch{BrandName: &defaults.BrandName, FooterText: &defaults.FooterText}
	if _, err := m.MergeSettings(ctx, seed); err != nil {
		t.Fatal(err)
	}

	color := "#111111"
	got, err := m.MergeSettings(ctx, models.SettingsPatch{PrimaryColor: &color})
	if err != nil {
		t.Fatal(err)
	}
	if got.BrandName != defaults.BrandName || got.FooterText != defaults.FooterText {
		t.Errorf("merge dropped existing fields: %+v", got)
	}
	if got.PrimaryColor != color {
		t.Errorf("color: got %q", got.PrimaryColor)
	}
}

func TestMemoryInquiries(t *testing.T) {
	m := NewMemory()
	m.SetClock(steppingClock())
	ctx := context.Background()

	a, _ := m.CreateInquiry(ctx, models.InquiryDraft{PropertyID: "p", UserName: "A", UserEmail: "a@example.com", Message: "hi"})
	m.CreateInquiry(ctx, models.InquiryDraft{PropertyID: "p", UserName: "B", UserEmail: "b@example.com", Message: "hello"})

	if err := m.SetInquiryStatus(ctx, a.ID, models.InquiryStatusResponded); err != nil {
		t.Fatal(err)
	}
	list, _ := m.ListInquiries(ctx)
	if len(list) != 2 || list[0].UserName != "B" {
		t.Fatalf("got %+v", list)
	}
	if list[1].Status != models.InquiryStatusResponded {
		t.Errorf("status: got %s", list[1].Status)
	}
	if err := m.SetInquiryStatus(ctx, "missing", models.InquiryStatusResponded); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestMemoryAccountsUniqueByEmail(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.CreateAccount(ctx, &models.Account{Email: "Ann@Example.com", PasswordHash: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := m.CreateAccount(ctx, &models.Account{Email: "ann@example.com", PasswordHash: "y"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate: got %v, want ErrConflict", err)
	}
	acc, err := m.FindAccountByEmail(ctx, "ANN@example.com")
	if err != nil || acc.PasswordHash != "x" {
		t.Errorf("find: got %+v, %v", acc, err)
	}
}

func TestMemoryHonorsCanceledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.ListProperties(ctx, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
