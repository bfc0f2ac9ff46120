package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
	"gorm.io/gorm"
)

type loginHistoryRepository struct {
	db *gorm.DB
}

func (r *loginHistoryRepository) Append(ctx context.Context, entry domain.LoginHistoryEntry) error {
	row := loginHistoryModel{
		ID:        entry.ID,
		AccountID: entry.AccountID,
		LoginTime: entry.LoginTime,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *loginHistoryRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LoginHistoryEntry, error) {
	var rows []loginHistoryModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("login_time DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.LoginHistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainLoginHistory(row))
	}
	return out, nil
}
