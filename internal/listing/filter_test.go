package listing

import (
	"math"
	"reflect"
	"testing"

	"github.com/barkshad/Real-estate/internal/models"
)

func sampleProperties() []models.Property {
	return []models.Property{
		{ID: "1", Title: "Lakeside Cabin", Location: "Lake Tahoe, NV", Price: 450000, Bedrooms: 2, OwnerID: "u1"},
		{ID: "2", Title: "Downtown Penthouse", Location: "Manhattan, NY", Price: 3800000, Bedrooms: 3, OwnerID: "u2"},
		{ID: "3", Title: "Suburban Family Home", Location: "Austin, TX", Price: 650000, Bedrooms: 4, OwnerID: "u1"},
		{ID: "4", Title: "Studio Loft", Location: "Brooklyn, NY", Price: 1000000, Bedrooms: 0, OwnerID: "u3"},
	}
}

func ids(props []models.Property) []string {
	out := make([]string, 0, len(props))
	for _, p := range props {
		out = append(out, p.ID)
	}
	return out
}

func TestDefaultFilterMatchesEverything(t *testing.T) {
	f := DefaultFilterOptions()
	if f.MaxPrice != MaxPriceUnbounded {
		t.Errorf("MaxPrice: got %v, want unbounded", f.MaxPrice)
	}
	if !f.IsDefault() {
		t.Error("defaults should report IsDefault")
	}

	got := ids(Apply(sampleProperties(), f))
	want := []string{"1", "2", "3", "4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestApplyIsPure(t *testing.T) {
	props := sampleProperties()
	before := sampleProperties()
	f := FilterOptions{Location: "ny", MinPrice: 0, MaxPrice: MaxPriceUnbounded}

	first := Apply(props, f)
	second := Apply(props, f)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same inputs gave different outputs: %v vs %v", ids(first), ids(second))
	}
	if !reflect.DeepEqual(props, before) {
		t.Error("Apply modified its input")
	}

	first[0].Title = "changed"
	if props[1].Title == "changed" {
		t.Error("output shares storage with input")
	}
}

func TestApplyNeverReturnsNil(t *testing.T) {
	if got := Apply(nil, DefaultFilterOptions()); got == nil {
		t.Error("Apply(nil) returned nil")
	}
	f := DefaultFilterOptions()
	f.Location = "nowhere"
	if got := Apply(sampleProperties(), f); got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

func TestLocationMatchesLocationOrTitle(t *testing.T) {
	tests := []struct {
		term string
		want []string
	}{
		{"lake", []string{"1"}},
		{"LAKE TAHOE", []string{"1"}},
		{"penthouse", []string{"2"}},
		{"NY", []string{"2", "4"}},
		{"home", []string{"3"}},
		{"", []string{"1", "2", "3", "4"}},
		{"paris", []string{}},
	}

	for _, tt := range tests {
		f := DefaultFilterOptions()
		f.Location = tt.term
		got := ids(Apply(sampleProperties(), f))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("location %q: got %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestLocationMatchesTitleWord(t *testing.T) {
	villa := &models.Property{ID: "5", Title: "Modern Villa", Location: "Beverly Hills, CA", Price: 5200000, Bedrooms: 5}

	f := DefaultFilterOptions()
	f.Location = "villa"
	if !f.Matches(villa) {
		t.Error("expected \"villa\" to match the title")
	}

	f.Location = "chicago"
	if f.Matches(villa) {
		t.Error("expected \"chicago\" to be excluded")
	}
}

func TestPriceBoundsAreInclusive(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		want     []string
	}{
		{"exact bounds", 450000, 450000, []string{"1"}},
		{"upper edge", 0, 1000000, []string{"1", "3", "4"}},
		{"lower edge", 1000000, MaxPriceUnbounded, []string{"2", "4"}},
		{"inverted range", 2000000, 100, []string{}},
		{"one above min", 450001, 650000, []string{"3"}},
		{"one below max", 0, 449999, []string{}},
	}

	for _, tt := range tests {
		f := DefaultFilterOptions()
		f.MinPrice = tt.min
		f.MaxPrice = tt.max
		got := ids(Apply(sampleProperties(), f))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBedroomsThreshold(t *testing.T) {
	tests := []struct {
		bedrooms int
		want     []string
	}{
		{0, []string{"1", "2", "3", "4"}},
		{1, []string{"1", "2", "3"}},
		{3, []string{"2", "3"}},
		{4, []string{"3"}},
		{5, []string{}},
	}

	for _, tt := range tests {
		f := DefaultFilterOptions()
		f.Bedrooms = tt.bedrooms
		got := ids(Apply(sampleProperties(), f))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("bedrooms %d: got %v, want %v", tt.bedrooms, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	f := FilterOptions{MinPrice: -5, MaxPrice: math.Inf(1), Bedrooms: -1}.Normalize()
	if f != DefaultFilterOptions() {
		t.Errorf("got %+v, want defaults", f)
	}

	f = FilterOptions{MinPrice: math.NaN(), MaxPrice: -1}.Normalize()
	if f.MinPrice != 0 || f.MaxPrice != MaxPriceUnbounded {
		t.Errorf("got %+v", f)
	}

	kept := FilterOptions{Location: "x", MinPrice: 10, MaxPrice: 0, Bedrooms: 2}
	if got := kept.Normalize(); got != kept {
		t.Errorf("valid filter changed: got %+v, want %+v", got, kept)
	}
}

func TestSeededFilterOptions(t *testing.T) {
	f := SeededFilterOptions("Austin")
	got := ids(Apply(sampleProperties(), f))
	if !reflect.DeepEqual(got, []string{"3"}) {
		t.Errorf("got %v, want [3]", got)
	}
	if f.MaxPrice != MaxPriceUnbounded || f.MinPrice != 0 || f.Bedrooms != 0 {
		t.Errorf("seeded filter should keep other defaults, got %+v", f)
	}
}

func TestScope(t *testing.T) {
	p := &models.Property{OwnerID: "u1"}
	if !AllListings().Includes(p) {
		t.Error("all scope should include every listing")
	}
	if !OwnedBy("u1").Includes(p) {
		t.Error("owner scope should include own listing")
	}
	if OwnedBy("u2").Includes(p) {
		t.Error("owner scope included another owner's listing")
	}
	if s := OwnedBy("u1").String(); s != "owner:u1" {
		t.Errorf("String: got %q", s)
	}
}
