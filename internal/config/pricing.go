package config

import (
	"sort"
	"strings"
)

// Pricing holds per-million-token prices for one model tier.
type Pricing struct {
	Input      float64 `json:"input"`
	CacheWrite float64 `json:"cacheWrite"`
	CacheRead  float64 `json:"cacheRead"`
	Output     float64 `json:"output"`
}

type pricingTier struct {
	Key     string // family-version key, matched as a substring
	Pricing Pricing
}

// defaultTiers is ordered: the first matching key wins.
var defaultTiers = []pricingTier{
	{Key: "opus-4", Pricing: Pricing{Input: 15, CacheWrite: 18.75, CacheRead: 1.50, Output: 75}},
	{Key: "opus-3", Pricing: Pricing{Input: 15, CacheWrite: 18.75, CacheRead: 1.50, Output: 75}},
	{Key: "sonnet-4", Pricing: Pricing{Input: 3, CacheWrite: 3.75, CacheRead: 0.30, Output: 15}},
	{Key: "sonnet-3", Pricing: Pricing{Input: 3, CacheWrite: 3.75, CacheRead: 0.30, Output: 15}},
	{Key: "haiku-3", Pricing: Pricing{Input: 0.80, CacheWrite: 1.00, CacheRead: 0.08, Output: 4}},
}

// DefaultPricing is used when a model identifier matches no tier.
var DefaultPricing = Pricing{Input: 3, CacheWrite: 3.75, CacheRead: 0.30, Output: 15}

// PricingTable resolves model identifiers to prices. User overrides are
// consulted before the built-in tiers.
type PricingTable struct {
	overrides []pricingTier
}

// Active is the table used by CalculateCost. cmd replaces it after
// loading the config file.
var Active = NewPricingTable(nil)

// NewPricingTable builds a table from config overrides. Override keys are
// lowercase substrings; longer keys are tried first so "opus-4-6" beats "opus".
func NewPricingTable(overrides map[string]PricingOverride) *PricingTable {
	t := &PricingTable{}
	for key, o := range overrides {
		base := lookupBuiltin(key)
		t.overrides = append(t.overrides, pricingTier{
			Key:     strings.ToLower(key),
			Pricing: o.apply(base),
		})
	}
	sort.Slice(t.overrides, func(i, j int) bool {
		a, b := t.overrides[i].Key, t.overrides[j].Key
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return t
}

// Lookup returns the pricing for a model. It never fails: unknown models
// are billed at DefaultPricing.
func (t *PricingTable) Lookup(model string) Pricing {
	lower := strings.ToLower(model)
	for _, o := range t.overrides {
		if o.Key != "" && strings.Contains(lower, o.Key) {
			return o.Pricing
		}
	}
	return lookupBuiltin(model)
}

func lookupBuiltin(model string) Pricing {
	if model == "" {
		return DefaultPricing
	}
	lower := strings.ToLower(model)
	for _, tier := range defaultTiers {
		if strings.Contains(lower, tier.Key) {
			return tier.Pricing
		}
	}
	// Generation-agnostic fallbacks, e.g. "claude-3-opus" or "claude-haiku-4-5".
	switch {
	case strings.Contains(lower, "opus"):
		return defaultTiers[0].Pricing
	case strings.Contains(lower, "haiku"):
		return defaultTiers[4].Pricing
	}
	return DefaultPricing
}

// Cost computes USD for one token-category vector.
func (t *PricingTable) Cost(model string, rawInput, cacheCreate, cacheRead, output int64) float64 {
	p := t.Lookup(model)
	return costAt(p, float64(rawInput), float64(cacheCreate), float64(cacheRead), float64(output))
}

func costAt(p Pricing, rawInput, cacheCreate, cacheRead, output float64) float64 {
	return rawInput/1_000_000*p.Input +
		cacheCreate/1_000_000*p.CacheWrite +
		cacheRead/1_000_000*p.CacheRead +
		output/1_000_000*p.Output
}

// LookupPricing resolves a model against the active table.
func LookupPricing(model string) Pricing {
	return Active.Lookup(model)
}

// CalculateCost computes the estimated cost in USD for a single assistant turn.
func CalculateCost(model string, rawInput, cacheCreate, cacheRead, output int64) float64 {
	return Active.Cost(model, rawInput, cacheCreate, cacheRead, output)
}

// CalculateCostFloat is CalculateCost for estimated (fractional) token counts.
func CalculateCostFloat(model string, rawInput, cacheCreate, cacheRead, output float64) float64 {
	return costAt(Active.Lookup(model), rawInput, cacheCreate, cacheRead, output)
}
