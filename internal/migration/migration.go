// Package migration creates the schema on startup so the service is usable
// out of the box for local and self-hosted environments.
package migration

import (
	accessgrantdomain "github.com/showgrid/showgrid/internal/accessgrant/domain"
	coupondomain "github.com/showgrid/showgrid/internal/coupon/domain"
	invoicedomain "github.com/showgrid/showgrid/internal/invoice/domain"
	plandomain "github.com/showgrid/showgrid/internal/plan/domain"
	subscriptiondomain "github.com/showgrid/showgrid/internal/subscription/domain"
	tenantdomain "github.com/showgrid/showgrid/internal/tenant/domain"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&tenantdomain.Tenant{},
		&plandomain.BillingPlan{},
		&subscriptiondomain.Subscription{},
		&walletdomain.Wallet{},
		&walletdomain.LedgerEntry{},
		&walletdomain.Allocation{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&coupondomain.CouponCode{},
		&accessgrantdomain.AccessGrant{},
	)
}
