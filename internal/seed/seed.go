// Package seed inserts the reference data a fresh install needs.
package seed

import (
	"github.com/bwmarrin/snowflake"
	plandomain "github.com/showgrid/showgrid/internal/plan/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Stable IDs so repeated startups never duplicate the defaults.
const (
	freePlanID    snowflake.ID = 1
	proPlanID     snowflake.ID = 2
	premiumPlanID snowflake.ID = 3
)

// EnsureDefaultPlans inserts the stock plan catalogue if missing. Existing
// rows are left untouched so operator edits survive restarts.
func EnsureDefaultPlans(db *gorm.DB) error {
	plans := []plandomain.BillingPlan{
		{
			ID:             freePlanID,
			Name:           "Starter",
			PriceCents:     0,
			Currency:       "INR",
			BillingCycle:   plandomain.BillingCycleMonthly,
			InitialTickets: 10,
			IsActive:       true,
		},
		{
			ID:             proPlanID,
			Name:           "Pro Monthly",
			PriceCents:     99900,
			Currency:       "INR",
			BillingCycle:   plandomain.BillingCycleMonthly,
			InitialTickets: 500,
			IsActive:       true,
		},
		{
			ID:             premiumPlanID,
			Name:           "Premium Yearly",
			PriceCents:     999900,
			Currency:       "INR",
			BillingCycle:   plandomain.BillingCycleYearly,
			InitialTickets: 10000,
			IsActive:       true,
		},
	}

	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&plans).Error
}
