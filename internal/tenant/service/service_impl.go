package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/internal/clock"
	"github.com/showgrid/showgrid/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	ScopedTables []domain.ScopedTable `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	scopedTables []domain.ScopedTable
}

func NewService(p Params) domain.Service {
	tables := p.ScopedTables
	if len(tables) == 0 {
		tables = domain.DefaultScopedTables()
	}
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("tenant.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		scopedTables: tables,
	}
}

func (s *Service) GetOrCreateTenantForUser(ctx context.Context, userID snowflake.ID, name string) (domain.Tenant, error) {
	if userID == 0 {
		return domain.Tenant{}, domain.ErrInvalidUser
	}

	now := s.clock.Now()
	id := s.genID.Generate()
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("tenant-%d", userID)
	}

	// Insert-or-fetch on the owner unique index; the loser of a concurrent
	// first access reads the winner's row back.
	if err := s.db.WithContext(ctx).Exec(
		`INSERT INTO tenants (id, name, owner_user_id, custom_app_id, plan_tier, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'free', ?, ?)
		 ON CONFLICT (owner_user_id) DO NOTHING`,
		id, name, userID, fmt.Sprintf("app-%d", id), now, now,
	).Error; err != nil {
		return domain.Tenant{}, err
	}

	var tenant domain.Tenant
	err := s.db.WithContext(ctx).
		Where("owner_user_id = ?", userID).
		First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Tenant{}, domain.ErrTenantNotFound
		}
		return domain.Tenant{}, err
	}
	return tenant, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Tenant, error) {
	var tenant domain.Tenant
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Tenant{}, domain.ErrTenantNotFound
		}
		return domain.Tenant{}, err
	}
	return tenant, nil
}

// ActivatePro rewrites the tenant's scoping identifier across every
// tenant-scoped table in one transaction and reports the affected row count.
// Re-running with the identifier already in place succeeds with zero rows, so
// callers may safely retry.
func (s *Service) ActivatePro(ctx context.Context, req domain.ActivateProRequest) (domain.CascadeResult, error) {
	newAppID := strings.TrimSpace(req.NewAppID)
	if newAppID == "" {
		return domain.CascadeResult{}, domain.ErrInvalidAppID
	}

	var result domain.CascadeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenant domain.Tenant
		err := tx.WithContext(ctx).Raw(
			`SELECT * FROM tenants WHERE id = ? FOR UPDATE`, req.TenantID,
		).Scan(&tenant).Error
		if err != nil {
			return err
		}
		if tenant.ID == 0 {
			return domain.ErrTenantNotFound
		}

		oldAppID := tenant.CustomAppID
		result = domain.CascadeResult{
			Success:  true,
			OldAppID: oldAppID,
			NewAppID: newAppID,
		}
		if oldAppID == newAppID {
			return nil
		}

		now := s.clock.Now()
		tier := req.PlanTier
		if tier == "" {
			tier = tenant.PlanTier
		}
		res := tx.WithContext(ctx).Exec(
			`UPDATE tenants SET custom_app_id = ?, plan_tier = ?, updated_at = ? WHERE id = ?`,
			newAppID, tier, now, tenant.ID,
		)
		if res.Error != nil {
			return res.Error
		}
		result.TotalRowsAffected += res.RowsAffected

		for _, scoped := range s.scopedTables {
			res := tx.WithContext(ctx).Exec(
				fmt.Sprintf(`UPDATE %s SET %s = ? WHERE %s = ?`, scoped.Table, scoped.Column, scoped.Column),
				newAppID, oldAppID,
			)
			if res.Error != nil {
				return fmt.Errorf("rewrite %s.%s: %w", scoped.Table, scoped.Column, res.Error)
			}
			result.TotalRowsAffected += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return domain.CascadeResult{}, err
	}

	s.log.Info("pro activation cascade applied",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("old_app_id", result.OldAppID),
		zap.String("new_app_id", result.NewAppID),
		zap.Int64("total_rows_affected", result.TotalRowsAffected),
	)
	return result, nil
}
