package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/internal/wallet/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const referenceTypeTicket = "ticket"

// Allocate earmarks quantity tickets for a listing. The wallet debit and the
// allocation upsert commit together; if the wallet cannot cover the request
// no allocation row is written.
func (s *Service) Allocate(ctx context.Context, req domain.AllocateRequest) (domain.Allocation, error) {
	if req.TicketID == 0 {
		return domain.Allocation{}, domain.ErrInvalidTicket
	}
	if req.Quantity <= 0 {
		return domain.Allocation{}, domain.ErrInvalidQuantity
	}

	var result domain.Allocation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Allocation row is locked before the wallet row, matching every
		// other allocation path, so two writers cannot deadlock.
		alloc, err := s.repo.FindAllocationForUpdate(ctx, tx, req.UserID, req.TicketID)
		if err != nil {
			return err
		}

		// A failed debit rolls the whole transaction back, so no allocation
		// row survives an insufficient balance.
		if _, err := s.ApplyDeltaIn(ctx, tx, domain.ApplyDeltaRequest{
			TenantID:      req.TenantID,
			UserID:        req.UserID,
			Delta:         -req.Quantity,
			EntryType:     domain.EntryTypeAllocation,
			ReferenceType: referenceTypeTicket,
			ReferenceID:   req.TicketID.String(),
			Description:   "allocate tickets to listing",
		}); err != nil {
			return err
		}

		now := s.clock.Now()
		if alloc == nil {
			alloc = &domain.Allocation{
				ID:                s.genID.Generate(),
				TenantID:          req.TenantID,
				UserID:            req.UserID,
				TicketID:          req.TicketID,
				AllocatedQuantity: req.Quantity,
				AvailableQuantity: req.Quantity,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if err := s.repo.InsertAllocation(ctx, tx, alloc); err != nil {
				return err
			}
			result = *alloc
			return nil
		}

		alloc.AllocatedQuantity += req.Quantity
		alloc.AvailableQuantity += req.Quantity
		if err := s.repo.UpdateAllocationQuantities(ctx, tx, alloc.ID, alloc.AllocatedQuantity, alloc.AvailableQuantity, now); err != nil {
			return err
		}
		alloc.UpdatedAt = now
		result = *alloc
		return nil
	})
	if err != nil {
		return domain.Allocation{}, err
	}
	return result, nil
}

// UpdateAllocation moves an existing allocation to newQuantity. Increases
// debit the wallet and may fail with ErrInsufficientBalance, leaving the
// allocation unchanged. Decreases credit the wallet back, capped at the
// allocation's available quantity so capacity already consumed by viewers is
// never refunded.
func (s *Service) UpdateAllocation(ctx context.Context, req domain.UpdateAllocationRequest) (domain.Allocation, error) {
	if req.TicketID == 0 {
		return domain.Allocation{}, domain.ErrInvalidTicket
	}
	if req.NewQuantity < 0 {
		return domain.Allocation{}, domain.ErrInvalidQuantity
	}

	var result domain.Allocation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alloc, err := s.repo.FindAllocationForUpdate(ctx, tx, req.UserID, req.TicketID)
		if err != nil {
			return err
		}
		if alloc == nil {
			return domain.ErrAllocationNotFound
		}

		now := s.clock.Now()
		diff := req.NewQuantity - alloc.AllocatedQuantity
		switch {
		case diff > 0:
			if _, err := s.ApplyDeltaIn(ctx, tx, domain.ApplyDeltaRequest{
				TenantID:      req.TenantID,
				UserID:        req.UserID,
				Delta:         -diff,
				EntryType:     domain.EntryTypeAllocation,
				ReferenceType: referenceTypeTicket,
				ReferenceID:   req.TicketID.String(),
				Description:   "increase ticket allocation",
			}); err != nil {
				return err
			}
			alloc.AvailableQuantity += diff
		case diff < 0:
			credit := -diff
			if credit > alloc.AvailableQuantity {
				credit = alloc.AvailableQuantity
			}
			if credit > 0 {
				if _, err := s.ApplyDeltaIn(ctx, tx, domain.ApplyDeltaRequest{
					TenantID:      req.TenantID,
					UserID:        req.UserID,
					Delta:         credit,
					EntryType:     domain.EntryTypeAllocationDecrease,
					ReferenceType: referenceTypeTicket,
					ReferenceID:   req.TicketID.String(),
					Description:   "decrease ticket allocation",
				}); err != nil {
					return err
				}
			}
			alloc.AvailableQuantity += diff
			if alloc.AvailableQuantity < 0 {
				alloc.AvailableQuantity = 0
			}
		default:
			result = *alloc
			return nil
		}

		alloc.AllocatedQuantity = req.NewQuantity
		if err := s.repo.UpdateAllocationQuantities(ctx, tx, alloc.ID, alloc.AllocatedQuantity, alloc.AvailableQuantity, now); err != nil {
			return err
		}
		alloc.UpdatedAt = now
		result = *alloc
		return nil
	})
	if err != nil {
		return domain.Allocation{}, err
	}
	return result, nil
}

// ReleaseAllocation removes the allocation and credits the wallet with the
// remaining allocated quantity. A compensating credit, not a rollback.
func (s *Service) ReleaseAllocation(ctx context.Context, tenantID, userID, ticketID snowflake.ID) (domain.ReleaseResult, error) {
	if ticketID == 0 {
		return domain.ReleaseResult{}, domain.ErrInvalidTicket
	}

	var result domain.ReleaseResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alloc, err := s.repo.FindAllocationForUpdate(ctx, tx, userID, ticketID)
		if err != nil {
			return err
		}
		if alloc == nil {
			return domain.ErrAllocationNotFound
		}

		released := alloc.AllocatedQuantity
		if released > 0 {
			wallet, err := s.ApplyDeltaIn(ctx, tx, domain.ApplyDeltaRequest{
				TenantID:      tenantID,
				UserID:        userID,
				Delta:         released,
				EntryType:     domain.EntryTypeAllocationRelease,
				ReferenceType: referenceTypeTicket,
				ReferenceID:   ticketID.String(),
				Description:   "release ticket allocation",
			})
			if err != nil {
				return err
			}
			result.Wallet = wallet
		}
		result.ReleasedQuantity = released

		return s.repo.DeleteAllocation(ctx, tx, alloc.ID)
	})
	if err != nil {
		return domain.ReleaseResult{}, err
	}

	s.log.Info("allocation released",
		zap.String("user_id", userID.String()),
		zap.String("ticket_id", ticketID.String()),
		zap.Int64("released_quantity", result.ReleasedQuantity),
	)
	return result, nil
}

// ConsumeAllocated burns capacity from the allocation when a viewer redeems
// against the listing. The wallet is untouched; only available shrinks.
func (s *Service) ConsumeAllocated(ctx context.Context, tenantID, userID, ticketID snowflake.ID, quantity int64) (domain.Allocation, error) {
	if ticketID == 0 {
		return domain.Allocation{}, domain.ErrInvalidTicket
	}
	if quantity <= 0 {
		return domain.Allocation{}, domain.ErrInvalidQuantity
	}

	var result domain.Allocation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alloc, err := s.repo.FindAllocationForUpdate(ctx, tx, userID, ticketID)
		if err != nil {
			return err
		}
		if alloc == nil {
			return domain.ErrAllocationNotFound
		}
		if alloc.AvailableQuantity < quantity {
			return domain.ErrInsufficientAllocation
		}

		now := s.clock.Now()
		alloc.AvailableQuantity -= quantity
		if err := s.repo.UpdateAllocationQuantities(ctx, tx, alloc.ID, alloc.AllocatedQuantity, alloc.AvailableQuantity, now); err != nil {
			return err
		}
		alloc.UpdatedAt = now
		result = *alloc
		return nil
	})
	if err != nil {
		return domain.Allocation{}, err
	}
	return result, nil
}

func (s *Service) GetAllocation(ctx context.Context, tenantID, userID, ticketID snowflake.ID) (domain.Allocation, error) {
	if ticketID == 0 {
		return domain.Allocation{}, domain.ErrInvalidTicket
	}
	alloc, err := s.repo.FindAllocation(ctx, s.db, userID, ticketID)
	if err != nil {
		return domain.Allocation{}, err
	}
	if alloc == nil {
		return domain.Allocation{}, domain.ErrAllocationNotFound
	}
	return *alloc, nil
}
