package model

import (
	"testing"
)

func TestBundleDiscountPercentage(t *testing.T) {
	cases := []struct {
		count int
		want  float64
	}{
		{0, 0},
		{1, 0},
		{2, 10},
		{3, 15},
		{4, 20},
		{5, 25},
		{6, 0},
	}

	for _, tc := range cases {
		if got := BundleDiscountPercentage(tc.count); got != tc.want {
			t.Errorf("BundleDiscountPercentage(%d) = %v, want %v", tc.count, got, tc.want)
		}
	}
}

func TestComputeBundlePrice(t *testing.T) {
	events := []Event{
		{Price: 25},
		{Price: 30},
		{Price: 20},
	}

	breakdown := ComputeBundlePrice(events)

	if breakdown.OriginalTotal != 75 {
		t.Errorf("OriginalTotal = %v, want 75", breakdown.OriginalTotal)
	}
	if breakdown.DiscountPercentage != 15 {
		t.Errorf("DiscountPercentage = %v, want 15", breakdown.DiscountPercentage)
	}
	if breakdown.DiscountedTotal != 63.75 {
		t.Errorf("DiscountedTotal = %v, want 63.75", breakdown.DiscountedTotal)
	}
}

func TestComputeBundlePriceNoDiscountOutsideTiers(t *testing.T) {
	breakdown := ComputeBundlePrice([]Event{{Price: 40}})

	if breakdown.DiscountPercentage != 0 {
		t.Errorf("DiscountPercentage = %v, want 0", breakdown.DiscountPercentage)
	}
	if breakdown.DiscountedTotal != 40 {
		t.Errorf("DiscountedTotal = %v, want 40", breakdown.DiscountedTotal)
	}
}

func TestComputeBundlePriceEmpty(t *testing.T) {
	breakdown := ComputeBundlePrice(nil)

	if breakdown.OriginalTotal != 0 || breakdown.DiscountedTotal != 0 {
		t.Errorf("empty bundle priced %+v, want zeros", breakdown)
	}
}
