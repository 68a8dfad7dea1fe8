package dataroom

import (
	"math"
	"testing"
	"time"
)

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		in         PageRequest
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{name: "zero value gets defaults", in: PageRequest{}, wantPage: 1, wantLimit: 10, wantOffset: 0},
		{name: "limit clamped", in: PageRequest{Page: 2, Limit: 500}, wantPage: 2, wantLimit: 100, wantOffset: 100},
		{name: "negative page", in: PageRequest{Page: -3, Limit: 5}, wantPage: 1, wantLimit: 5, wantOffset: 0},
		{name: "third page", in: PageRequest{Page: 3, Limit: 20}, wantPage: 3, wantLimit: 20, wantOffset: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize(10, 100)
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit {
				t.Errorf("Normalize() = %+v, want page=%d limit=%d", got, tt.wantPage, tt.wantLimit)
			}
			if got.Offset() != tt.wantOffset {
				t.Errorf("Offset() = %d, want %d", got.Offset(), tt.wantOffset)
			}
		})
	}
}

func TestPageRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      PageRequest
		wantErr bool
	}{
		{name: "first page", in: PageRequest{Page: 1, Limit: 10}},
		{name: "largest page", in: PageRequest{Page: math.MaxInt / 10, Limit: 10}},
		{name: "overflowing page", in: PageRequest{Page: math.MaxInt/10 + 1, Limit: 10}, wantErr: true},
		{name: "not normalized", in: PageRequest{Page: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.in.Offset() < 0 {
				t.Errorf("Offset() = %d, want non-negative", tt.in.Offset())
			}
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(1, 10, 21)
	if p.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", p.TotalPages)
	}
	if NewPagination(1, 10, 0).TotalPages != 0 {
		t.Error("empty listing should have zero pages")
	}
}

func TestListOptionsValidate(t *testing.T) {
	opts := ListOptions{}
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}

	bad := ListOptions{Sort: "owner", Order: SortAsc}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown sort field")
	}

	bad = ListOptions{Sort: SortByName, Order: "sideways"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown sort order")
	}
}

func TestFileQueryValidate(t *testing.T) {
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	min, max := int64(10), int64(5)

	tests := []struct {
		name    string
		query   FileQuery
		wantErr bool
	}{
		{name: "valid", query: FileQuery{OwnerID: "u1", Limit: 20}},
		{name: "missing owner", query: FileQuery{Limit: 20}, wantErr: true},
		{name: "zero limit", query: FileQuery{OwnerID: "u1"}, wantErr: true},
		{name: "inverted dates", query: FileQuery{OwnerID: "u1", Limit: 20, DateFrom: &from, DateTo: &to}, wantErr: true},
		{name: "inverted sizes", query: FileQuery{OwnerID: "u1", Limit: 20, SizeMin: &min, SizeMax: &max}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
