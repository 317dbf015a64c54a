package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/internal/invoice/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) InsertItems(ctx context.Context, db *gorm.DB, items []domain.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByNumber(ctx context.Context, db *gorm.DB, invoiceNumber string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Where("invoice_number = ?", invoiceNumber).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindByNumberForUpdate(ctx context.Context, db *gorm.DB, invoiceNumber string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT *
		 FROM invoices
		 WHERE invoice_number = ?
		 FOR UPDATE`,
		invoiceNumber,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repository) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, externalPaymentID string) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET status = ?, external_payment_id = ?, paid_at = ?, updated_at = ?
		 WHERE id = ?`,
		domain.InvoiceStatusPaid, externalPaymentID, now, now, id,
	).Error
}

func (r *repository) List(ctx context.Context, db *gorm.DB, tenantID, userID, afterID snowflake.ID, limit int) ([]domain.Invoice, error) {
	stmt := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id DESC").
		Limit(limit)
	if userID != 0 {
		stmt = stmt.Where("user_id = ?", userID)
	}
	if afterID != 0 {
		stmt = stmt.Where("id < ?", afterID)
	}

	var invoices []domain.Invoice
	if err := stmt.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repository) ListItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
