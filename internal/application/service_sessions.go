package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

const (
	defaultLoginHistoryLimit = 10
	maxLoginHistoryLimit     = 100
)

// GetLoginHistory returns the newest entries first.
func (s *Service) GetLoginHistory(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LoginHistoryEntry, error) {
	entries, err := s.loginHistory.ListByAccount(ctx, accountID, clampLimit(limit, defaultLoginHistoryLimit, maxLoginHistoryLimit))
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.LoginHistoryEntry{}
	}
	return entries, nil
}

func (s *Service) CheckSession(ctx context.Context, accountID uuid.UUID) (domain.PublicAccount, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return domain.PublicAccount{}, err
	}
	return account.Public(), nil
}

// ListUsers is restricted to administrators.
func (s *Service) ListUsers(ctx context.Context, actor domain.Actor, req ListUsersRequest) ([]domain.PublicAccount, error) {
	if actor.Anonymous() {
		return nil, domain.ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	filter := ports.AccountFilter{Search: req.Search}
	if req.Role != "" {
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		filter.Role = role
	}
	accounts, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Public())
	}
	return out, nil
}
