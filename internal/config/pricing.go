package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PriceTier maps a quantity range to a per-unit price in cents.
// MaxQuantity == nil means the tier is open-ended.
type PriceTier struct {
	MinQuantity    int64  `mapstructure:"minQuantity" json:"min_quantity"`
	MaxQuantity    *int64 `mapstructure:"maxQuantity" json:"max_quantity,omitempty"`
	UnitPriceCents int64  `mapstructure:"unitPriceCents" json:"unit_price_cents"`
}

// TierKeywords classifies a plan name into a plan tier by substring match.
type TierKeywords struct {
	Premium []string `mapstructure:"premium"`
	Pro     []string `mapstructure:"pro"`
}

// PricingConfig is the versionable pricing table plus the plan-tier
// classifier keywords. It is reference data, edited independently of
// purchases.
type PricingConfig struct {
	Tiers    []PriceTier  `mapstructure:"tiers"`
	PlanTier TierKeywords `mapstructure:"planTiers"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		Tiers: []PriceTier{
			{MinQuantity: 1, MaxQuantity: int64Ptr(99), UnitPriceCents: 30},
			{MinQuantity: 100, MaxQuantity: int64Ptr(499), UnitPriceCents: 25},
			{MinQuantity: 500, MaxQuantity: int64Ptr(999), UnitPriceCents: 20},
			{MinQuantity: 1000, MaxQuantity: nil, UnitPriceCents: 15},
		},
		PlanTier: TierKeywords{
			Premium: []string{"premium"},
			Pro:     []string{"pro"},
		},
	}
}

func int64Ptr(v int64) *int64 { return &v }

// PricingConfigHolder serves the current pricing config and hot-reloads it
// when the backing file changes.
type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

// NewStaticPricingHolder wraps a fixed config. Used by tests and by callers
// that inject tenant-specific overrides.
func NewStaticPricingHolder(cfg PricingConfig) (*PricingConfigHolder, error) {
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}
	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)
	return holder, nil
}

func NewPricingConfigHolder() (*PricingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/showgrid/config") // Volume-mounted config
	v.AddConfigPath("/etc/showgrid")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	v.SetEnvPrefix("SHOWGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultPricingConfig()
		v.SetDefault("pricing.tiers", defaults.Tiers)
		v.SetDefault("pricing.planTiers", defaults.PlanTier)
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Tiers) == 0 {
		cfg = DefaultPricingConfig()
	}
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		if err := validatePricingConfig(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

func validatePricingConfig(cfg PricingConfig) error {
	if len(cfg.Tiers) == 0 {
		return errors.New("pricing.tiers cannot be empty")
	}

	prevEnd := int64(0)
	for i, tier := range cfg.Tiers {
		if tier.MinQuantity < 1 {
			return fmt.Errorf("pricing.tiers[%d]: minQuantity must be >= 1", i)
		}
		if tier.UnitPriceCents <= 0 {
			return fmt.Errorf("pricing.tiers[%d]: unitPriceCents must be positive", i)
		}
		if tier.MinQuantity <= prevEnd {
			return fmt.Errorf("pricing.tiers[%d]: overlaps previous tier", i)
		}
		if tier.MaxQuantity == nil {
			if i != len(cfg.Tiers)-1 {
				return fmt.Errorf("pricing.tiers[%d]: only the last tier may be open-ended", i)
			}
			continue
		}
		if *tier.MaxQuantity < tier.MinQuantity {
			return fmt.Errorf("pricing.tiers[%d]: maxQuantity below minQuantity", i)
		}
		prevEnd = *tier.MaxQuantity
	}
	return nil
}
