package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/internal/clock"
	obsmetrics "github.com/showgrid/showgrid/internal/observability/metrics"
	"github.com/showgrid/showgrid/internal/wallet/domain"
	"github.com/showgrid/showgrid/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	metrics *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("wallet.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) GetOrCreateWallet(ctx context.Context, tenantID, userID snowflake.ID) (domain.Wallet, error) {
	if tenantID == 0 {
		return domain.Wallet{}, domain.ErrInvalidTenant
	}
	if userID == 0 {
		return domain.Wallet{}, domain.ErrInvalidUser
	}

	wallet, err := s.repo.EnsureWallet(ctx, s.db, s.genID.Generate(), tenantID, userID, s.clock.Now())
	if err != nil {
		return domain.Wallet{}, err
	}
	if wallet == nil {
		return domain.Wallet{}, domain.ErrWalletNotFound
	}
	return *wallet, nil
}

func (s *Service) ApplyDelta(ctx context.Context, req domain.ApplyDeltaRequest) (domain.Wallet, error) {
	var wallet domain.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := s.ApplyDeltaIn(ctx, tx, req)
		if err != nil {
			return err
		}
		wallet = updated
		return nil
	})
	if err != nil {
		return domain.Wallet{}, err
	}
	return wallet, nil
}

// ApplyDeltaIn locks the wallet row, appends the ledger entry and moves the
// balance, all against the caller's transaction handle. The balance check and
// the debit happen under the same row lock, so two concurrent debits cannot
// both pass against a stale balance.
func (s *Service) ApplyDeltaIn(ctx context.Context, tx *gorm.DB, req domain.ApplyDeltaRequest) (domain.Wallet, error) {
	if req.TenantID == 0 {
		return domain.Wallet{}, domain.ErrInvalidTenant
	}
	if req.UserID == 0 {
		return domain.Wallet{}, domain.ErrInvalidUser
	}
	if req.Delta == 0 {
		return domain.Wallet{}, domain.ErrInvalidQuantity
	}
	if req.EntryType == "" {
		return domain.Wallet{}, domain.ErrInvalidEntryType
	}

	now := s.clock.Now()
	if _, err := s.repo.EnsureWallet(ctx, tx, s.genID.Generate(), req.TenantID, req.UserID, now); err != nil {
		return domain.Wallet{}, err
	}

	wallet, err := s.repo.FindWalletForUpdate(ctx, tx, req.TenantID, req.UserID)
	if err != nil {
		return domain.Wallet{}, err
	}
	if wallet == nil {
		return domain.Wallet{}, domain.ErrWalletNotFound
	}

	newBalance := wallet.TicketBalance + req.Delta
	if newBalance < 0 {
		if s.metrics != nil {
			s.metrics.RecordInsufficientBalance()
		}
		return domain.Wallet{}, domain.ErrInsufficientBalance
	}

	entry := &domain.LedgerEntry{
		ID:            s.genID.Generate(),
		TenantID:      req.TenantID,
		UserID:        req.UserID,
		WalletID:      wallet.ID,
		Delta:         req.Delta,
		EntryType:     req.EntryType,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Description:   req.Description,
		Metadata:      datatypes.JSONMap(req.Metadata),
		CreatedAt:     now,
	}
	if err := s.repo.InsertLedgerEntry(ctx, tx, entry); err != nil {
		return domain.Wallet{}, err
	}
	if err := s.repo.UpdateWalletBalance(ctx, tx, wallet.ID, newBalance, now); err != nil {
		return domain.Wallet{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordLedgerEntry(string(req.EntryType))
	}

	wallet.TicketBalance = newBalance
	wallet.UpdatedAt = now
	return *wallet, nil
}

func (s *Service) Consume(ctx context.Context, req domain.ConsumeRequest) (domain.Wallet, error) {
	if req.Quantity <= 0 {
		return domain.Wallet{}, domain.ErrInvalidQuantity
	}
	return s.ApplyDelta(ctx, domain.ApplyDeltaRequest{
		TenantID:      req.TenantID,
		UserID:        req.UserID,
		Delta:         -req.Quantity,
		EntryType:     domain.EntryTypeConsumption,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Description:   req.Description,
		Metadata:      req.Metadata,
	})
}

func (s *Service) ListTransactions(ctx context.Context, req domain.ListTransactionsRequest) (domain.ListTransactionsResponse, error) {
	if req.TenantID == 0 {
		return domain.ListTransactionsResponse{}, domain.ErrInvalidTenant
	}
	if req.UserID == 0 {
		return domain.ListTransactionsResponse{}, domain.ErrInvalidUser
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
			return domain.ListTransactionsResponse{}, err
		}
		parsed, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return domain.ListTransactionsResponse{}, err
		}
		afterID = parsed
	}

	entries, err := s.repo.ListLedgerEntries(ctx, s.db, req.TenantID, req.UserID, afterID, limit+1)
	if err != nil {
		return domain.ListTransactionsResponse{}, err
	}

	resp := domain.ListTransactionsResponse{Entries: entries}
	if len(entries) > limit {
		resp.Entries = entries[:limit]
		resp.HasMore = true
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID: resp.Entries[limit-1].ID.String(),
		})
		if err != nil {
			return domain.ListTransactionsResponse{}, err
		}
		resp.NextPageToken = token
	}
	return resp, nil
}
