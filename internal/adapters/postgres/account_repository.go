package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

func (r *accountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	row := toAccountModel(account)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Account{}, domain.ErrDuplicateEmail
		}
		return domain.Account{}, err
	}
	return toDomainAccount(row), nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	var row accountModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, err
	}
	return toDomainAccount(row), nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	var row accountModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, err
	}
	return toDomainAccount(row), nil
}

func (r *accountRepository) List(ctx context.Context, filter ports.AccountFilter) ([]domain.Account, error) {
	q := r.db.WithContext(ctx).Model(&accountModel{})
	if filter.Role != "" {
		q = q.Where("role = ?", string(filter.Role))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		q = q.Where("(name ILIKE ? OR email ILIKE ?)", pattern, pattern)
	}
	var rows []accountModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainAccount(row))
	}
	return out, nil
}

func (r *accountRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string, now time.Time) error {
	return r.patch(ctx, id, map[string]any{
		"password_hash": passwordHash,
		"updated_at":    now,
	}, domain.ErrAccountNotFound)
}

func (r *accountRepository) SetVerificationChallenge(ctx context.Context, id uuid.UUID, challenge domain.VerificationChallenge, now time.Time) error {
	return r.patch(ctx, id, verificationColumns(&challenge, now), domain.ErrAlreadyVerified,
		"email_verified = ?", false)
}

func (r *accountRepository) SetPasswordReset(ctx context.Context, id uuid.UUID, challenge domain.PasswordResetChallenge, now time.Time) error {
	return r.patch(ctx, id, resetColumns(&challenge, now), domain.ErrAccountNotFound)
}

func (r *accountRepository) ClearPasswordReset(ctx context.Context, id uuid.UUID, tokenHash string, now time.Time) error {
	return r.patch(ctx, id, resetColumns(nil, now), domain.ErrAccountNotFound,
		"reset_token_hash = ?", tokenHash)
}

func (r *accountRepository) ReplaceRefreshTokenHash(ctx context.Context, id uuid.UUID, current, next string, now time.Time) error {
	columns := map[string]any{
		"refresh_token_hash": next,
		"updated_at":         now,
	}
	if current == "" {
		return r.patch(ctx, id, columns, domain.ErrAccountNotFound)
	}
	return r.patch(ctx, id, columns, domain.ErrAccountNotFound, "refresh_token_hash = ?", current)
}

// patch writes columns on the account with id, narrowed by an optional
// condition. missErr is returned when nothing matched.
func (r *accountRepository) patch(ctx context.Context, id uuid.UUID, columns map[string]any, missErr error, cond ...any) error {
	q := r.db.WithContext(ctx).Model(&accountModel{}).Where("id = ?", id)
	if len(cond) > 0 {
		q = q.Where(cond[0], cond[1:]...)
	}
	res := q.Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return missErr
	}
	return nil
}

func (r *accountRepository) ConsumeVerificationCode(ctx context.Context, email, code string, now time.Time) (domain.Account, error) {
	var result domain.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row accountModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ?", email).
			Where("verification_code = ?", code).
			Where("verification_expires_at > ?", now).
			Take(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		columns := verificationColumns(nil, now)
		columns["email_verified"] = true
		if err := tx.Model(&accountModel{}).Where("id = ?", row.ID).Updates(columns).Error; err != nil {
			return err
		}
		row.EmailVerified = true
		row.VerificationCode = nil
		row.VerificationExpiresAt = nil
		row.UpdatedAt = now
		result = toDomainAccount(row)
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return result, nil
}

func (r *accountRepository) ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time, newPasswordHash string) (domain.Account, error) {
	var result domain.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row accountModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("reset_token_hash = ?", tokenHash).
			Where("reset_expires_at > ?", now).
			Take(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		columns := resetColumns(nil, now)
		columns["password_hash"] = newPasswordHash
		if err := tx.Model(&accountModel{}).Where("id = ?", row.ID).Updates(columns).Error; err != nil {
			return err
		}
		row.PasswordHash = newPasswordHash
		row.ResetTokenHash = nil
		row.ResetExpiresAt = nil
		row.UpdatedAt = now
		result = toDomainAccount(row)
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
