package config

import (
	"math"
	"testing"
)

func TestLookupPricing_Tiers(t *testing.T) {
	tests := []struct {
		model string
		want  Pricing
	}{
		{"claude-opus-4-6-20260101", defaultTiers[0].Pricing},
		{"claude-opus-4-1", defaultTiers[0].Pricing},
		{"claude-3-opus-20240229", defaultTiers[0].Pricing}, // generation-agnostic fallback
		{"claude-sonnet-4-5-20250929", defaultTiers[2].Pricing},
		{"claude-haiku-3-5", defaultTiers[4].Pricing},
		{"claude-haiku-4-5-20251001", defaultTiers[4].Pricing},
		{"CLAUDE-OPUS-4", defaultTiers[0].Pricing},
		{"gpt-4o", DefaultPricing},
		{"", DefaultPricing},
		{"unknown", DefaultPricing},
	}

	table := NewPricingTable(nil)
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := table.Lookup(tt.model); got != tt.want {
				t.Errorf("Lookup(%q) = %+v, want %+v", tt.model, got, tt.want)
			}
		})
	}
}

func TestCost_ZeroForZeroTokens(t *testing.T) {
	table := NewPricingTable(nil)
	for _, m := range []string{"claude-opus-4", "claude-haiku-3", "whatever"} {
		if got := table.Cost(m, 0, 0, 0, 0); got != 0 {
			t.Errorf("Cost(%q, 0,0,0,0) = %f, want 0", m, got)
		}
	}
}

func TestCost_WeightedSum(t *testing.T) {
	table := NewPricingTable(nil)
	// 1M of each category on opus: 15 + 18.75 + 1.50 + 75
	got := table.Cost("claude-opus-4", 1_000_000, 1_000_000, 1_000_000, 1_000_000)
	want := 110.25
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Cost = %f, want %f", got, want)
	}
}

func TestCost_Monotonic(t *testing.T) {
	table := NewPricingTable(nil)
	vectors := [][4]int64{
		{0, 0, 0, 0},
		{10, 0, 0, 0},
		{10, 5, 0, 0},
		{10, 5, 100, 0},
		{10, 5, 100, 7},
		{1000, 500, 10000, 700},
	}
	for _, m := range []string{"claude-opus-4", "claude-sonnet-4", "claude-haiku-3", "mystery"} {
		prev := -1.0
		for _, v := range vectors {
			c := table.Cost(m, v[0], v[1], v[2], v[3])
			if c < prev {
				t.Errorf("%s: cost decreased from %f to %f at %v", m, prev, c, v)
			}
			prev = c
		}
	}
}

func TestPricingTable_Overrides(t *testing.T) {
	in := 1.0
	out := 2.0
	table := NewPricingTable(map[string]PricingOverride{
		"opus":     {InputPerMTok: &in},
		"Opus-4-6": {OutputPerMTok: &out},
	})

	p := table.Lookup("claude-opus-4-6")
	if p.Output != 2.0 {
		t.Errorf("longest override should win: Output = %f, want 2.0", p.Output)
	}
	if p.Input != 15 {
		t.Errorf("unset fields keep built-in rate: Input = %f, want 15", p.Input)
	}

	p = table.Lookup("claude-opus-4-1")
	if p.Input != 1.0 {
		t.Errorf("Input = %f, want 1.0", p.Input)
	}

	if got := table.Lookup("claude-sonnet-4"); got != defaultTiers[2].Pricing {
		t.Errorf("non-matching model changed: %+v", got)
	}
}
