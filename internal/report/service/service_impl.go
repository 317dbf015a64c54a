package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	accessgrantdomain "github.com/showgrid/showgrid/internal/accessgrant/domain"
	"github.com/showgrid/showgrid/internal/report/domain"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
	"github.com/showgrid/showgrid/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      domain.Repository
	GrantRepo accessgrantdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	grantRepo accessgrantdomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("report.service"),
		repo:      p.Repo,
		grantRepo: p.GrantRepo,
	}
}

var purchaseEntryTypes = []string{
	string(walletdomain.EntryTypePlanPurchase),
	string(walletdomain.EntryTypeManualPurchase),
	string(walletdomain.EntryTypeAdminGrant),
}

func (s *Service) SalesReport(ctx context.Context, req domain.SalesReportRequest) (domain.SalesReportResponse, error) {
	if req.TenantID == 0 {
		return domain.SalesReportResponse{}, domain.ErrInvalidTenant
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		return domain.SalesReportResponse{}, domain.ErrInvalidRange
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 10
	}
	if limit > 250 {
		limit = 250
	}

	var afterID snowflake.ID
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.SalesReportResponse{}, err
		}
		parsed, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return domain.SalesReportResponse{}, err
		}
		afterID = parsed
	}

	filter := accessgrantdomain.GrantFilter{
		TenantID: req.TenantID,
		TicketID: req.TicketID,
		Email:    req.Email,
		From:     req.From,
		To:       req.To,
	}

	purchased, err := s.repo.SumLedgerDeltas(ctx, s.db, req.TenantID, purchaseEntryTypes, req.From, req.To)
	if err != nil {
		return domain.SalesReportResponse{}, err
	}
	consumed, err := s.repo.SumLedgerDeltas(ctx, s.db, req.TenantID,
		[]string{string(walletdomain.EntryTypeConsumption)}, req.From, req.To)
	if err != nil {
		return domain.SalesReportResponse{}, err
	}
	allocated, err := s.repo.SumAllocated(ctx, s.db, req.TenantID, req.TicketID)
	if err != nil {
		return domain.SalesReportResponse{}, err
	}
	grantCount, err := s.grantRepo.Count(ctx, s.db, filter)
	if err != nil {
		return domain.SalesReportResponse{}, err
	}

	grants, err := s.grantRepo.List(ctx, s.db, filter, afterID, limit+1)
	if err != nil {
		return domain.SalesReportResponse{}, err
	}

	resp := domain.SalesReportResponse{
		Summary: domain.SalesSummary{
			TicketsPurchased: purchased,
			TicketsConsumed:  -consumed,
			TicketsAllocated: allocated,
			AccessGrants:     grantCount,
		},
	}
	if len(grants) > limit {
		grants = grants[:limit]
		resp.HasMore = true
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID: grants[limit-1].ID.String(),
		})
		if err != nil {
			return domain.SalesReportResponse{}, err
		}
		resp.NextPageToken = token
	}

	ticketIDs := make([]snowflake.ID, 0, len(grants))
	seen := make(map[snowflake.ID]struct{}, len(grants))
	for _, g := range grants {
		if _, ok := seen[g.TicketID]; ok {
			continue
		}
		seen[g.TicketID] = struct{}{}
		ticketIDs = append(ticketIDs, g.TicketID)
	}
	totals, err := s.repo.AllocationTotalsByTicket(ctx, s.db, req.TenantID, ticketIDs)
	if err != nil {
		return domain.SalesReportResponse{}, err
	}

	resp.Rows = make([]domain.SalesReportRow, 0, len(grants))
	for _, g := range grants {
		row := domain.SalesReportRow{Grant: g}
		if t, ok := totals[g.TicketID]; ok {
			row.AllocatedQuantity = t.AllocatedQuantity
			row.AvailableQuantity = t.AvailableQuantity
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp, nil
}
