package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertItems(ctx context.Context, db *gorm.DB, items []InvoiceItem) error
	FindByNumber(ctx context.Context, db *gorm.DB, invoiceNumber string) (*Invoice, error)
	FindByNumberForUpdate(ctx context.Context, db *gorm.DB, invoiceNumber string) (*Invoice, error)
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, externalPaymentID string) error
	List(ctx context.Context, db *gorm.DB, tenantID, userID, afterID snowflake.ID, limit int) ([]Invoice, error)
	ListItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceItem, error)
}
