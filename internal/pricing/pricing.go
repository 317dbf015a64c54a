// Package pricing maps purchase quantities to unit prices through the
// configured tier table and classifies plan names into plan tiers.
package pricing

import (
	"strings"

	"github.com/showgrid/showgrid/internal/config"
	"go.uber.org/fx"
)

// PlanTier is the commercial tier derived from a plan's name.
type PlanTier string

const (
	PlanTierFree    PlanTier = "free"
	PlanTierPro     PlanTier = "pro"
	PlanTierPremium PlanTier = "premium"
)

// Engine answers pricing questions from the current config snapshot. Pure
// lookups, no I/O.
type Engine struct {
	holder *config.PricingConfigHolder
}

func NewEngine(holder *config.PricingConfigHolder) *Engine {
	return &Engine{holder: holder}
}

// UnitPrice returns the per-unit price in cents for the given quantity: the
// first tier whose range contains it. When no tier matches, the first tier's
// price applies. That fallback is deliberate policy so the function stays
// total for every quantity >= 1.
func (e *Engine) UnitPrice(quantity int64) int64 {
	tiers := e.holder.Get().Tiers
	for _, tier := range tiers {
		if quantity < tier.MinQuantity {
			continue
		}
		if tier.MaxQuantity == nil || quantity <= *tier.MaxQuantity {
			return tier.UnitPriceCents
		}
	}
	return tiers[0].UnitPriceCents
}

// TotalPrice is quantity * unit price at that quantity's tier.
func (e *Engine) TotalPrice(quantity int64) int64 {
	return quantity * e.UnitPrice(quantity)
}

// ClassifyPlan maps a plan name to its tier by the configured keywords.
// Premium keywords win over pro so "Premium Pro" classifies as premium.
func (e *Engine) ClassifyPlan(planName string) PlanTier {
	name := strings.ToLower(strings.TrimSpace(planName))
	keywords := e.holder.Get().PlanTier

	for _, kw := range keywords.Premium {
		if kw != "" && strings.Contains(name, strings.ToLower(kw)) {
			return PlanTierPremium
		}
	}
	for _, kw := range keywords.Pro {
		if kw != "" && strings.Contains(name, strings.ToLower(kw)) {
			return PlanTierPro
		}
	}
	return PlanTierFree
}

var Module = fx.Module("pricing",
	fx.Provide(
		config.NewPricingConfigHolder,
		NewEngine,
	),
)
