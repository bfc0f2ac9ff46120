package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
	"gorm.io/gorm"
)

func toAccountModel(a domain.Account) accountModel {
	row := accountModel{
		ID:               a.ID,
		Name:             a.Name,
		Email:            a.Email,
		PasswordHash:     a.PasswordHash,
		Role:             string(a.Role),
		Status:           string(a.Status),
		Address:          a.Address,
		EmailVerified:    a.EmailVerified,
		RefreshTokenHash: a.RefreshTokenHash,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
	if a.Verification != nil {
		code, expires := a.Verification.Code, a.Verification.ExpiresAt
		row.VerificationCode = &code
		row.VerificationExpiresAt = &expires
	}
	if a.PasswordReset != nil {
		hash, expires := a.PasswordReset.TokenHash, a.PasswordReset.ExpiresAt
		row.ResetTokenHash = &hash
		row.ResetExpiresAt = &expires
	}
	return row
}

func toDomainAccount(row accountModel) domain.Account {
	account := domain.Account{
		ID:               row.ID,
		Name:             row.Name,
		Email:            row.Email,
		PasswordHash:     row.PasswordHash,
		Role:             domain.Role(row.Role),
		Status:           domain.AccountStatus(row.Status),
		Address:          row.Address,
		EmailVerified:    row.EmailVerified,
		RefreshTokenHash: row.RefreshTokenHash,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.VerificationCode != nil && row.VerificationExpiresAt != nil {
		account.Verification = &domain.VerificationChallenge{
			Code:      *row.VerificationCode,
			ExpiresAt: *row.VerificationExpiresAt,
		}
	}
	if row.ResetTokenHash != nil && row.ResetExpiresAt != nil {
		account.PasswordReset = &domain.PasswordResetChallenge{
			TokenHash: *row.ResetTokenHash,
			ExpiresAt: *row.ResetExpiresAt,
		}
	}
	return account
}

// verificationColumns writes challenge, or NULLs when it is nil.
func verificationColumns(challenge *domain.VerificationChallenge, now time.Time) map[string]any {
	columns := map[string]any{
		"verification_code":       nil,
		"verification_expires_at": nil,
		"updated_at":              now,
	}
	if challenge != nil {
		columns["verification_code"] = challenge.Code
		columns["verification_expires_at"] = challenge.ExpiresAt
	}
	return columns
}

func resetColumns(challenge *domain.PasswordResetChallenge, now time.Time) map[string]any {
	columns := map[string]any{
		"reset_token_hash": nil,
		"reset_expires_at": nil,
		"updated_at":       now,
	}
	if challenge != nil {
		columns["reset_token_hash"] = challenge.TokenHash
		columns["reset_expires_at"] = challenge.ExpiresAt
	}
	return columns
}

func toOutboxRecord(row outboxModel) ports.OutboxRecord {
	return ports.OutboxRecord{
		OutboxID:       row.OutboxID,
		EventType:      row.EventType,
		PartitionKey:   row.PartitionKey,
		Payload:        []byte(row.Payload),
		RetryCount:     row.RetryCount,
		LastError:      row.LastError,
		CreatedAt:      row.CreatedAt,
		PublishedAt:    row.PublishedAt,
		LastErrorAt:    row.LastErrorAt,
		FirstSeenAt:    row.FirstSeenAt,
		ClaimToken:     row.ClaimToken,
		ClaimUntil:     row.ClaimUntil,
		DeadLetteredAt: row.DeadLetteredAt,
	}
}

func toDomainLoginHistory(row loginHistoryModel) domain.LoginHistoryEntry {
	return domain.LoginHistoryEntry{
		ID:        row.ID,
		AccountID: row.AccountID,
		LoginTime: row.LoginTime,
		IPAddress: row.IPAddress,
		UserAgent: row.UserAgent,
	}
}

func toBrandModel(b domain.Brand) (brandModel, error) {
	doc, err := json.Marshal(b)
	if err != nil {
		return brandModel{}, fmt.Errorf("encode brand document: %w", err)
	}
	return brandModel{
		ID:        b.ID,
		OwnerID:   b.OwnerID,
		Name:      b.Name,
		Status:    string(b.Status),
		Document:  string(doc),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}, nil
}

func toDomainBrand(row brandModel) (domain.Brand, error) {
	brand := domain.NewBrand()
	if err := json.Unmarshal([]byte(row.Document), &brand); err != nil {
		return domain.Brand{}, fmt.Errorf("decode brand %s: %w", row.ID, err)
	}
	brand.ID = row.ID
	brand.OwnerID = row.OwnerID
	brand.Status = domain.BrandStatus(row.Status)
	brand.CreatedAt = row.CreatedAt
	brand.UpdatedAt = row.UpdatedAt
	return brand, nil
}

func toProductModel(p domain.Product) (productModel, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return productModel{}, fmt.Errorf("encode product document: %w", err)
	}
	return productModel{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Category:  p.Category,
		Status:    string(p.Status),
		Document:  string(doc),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.LastUpdated,
	}, nil
}

func toDomainProduct(row productModel) (domain.Product, error) {
	product := domain.NewProduct()
	if err := json.Unmarshal([]byte(row.Document), &product); err != nil {
		return domain.Product{}, fmt.Errorf("decode product %s: %w", row.ID, err)
	}
	product.ID = row.ID
	product.OwnerID = row.OwnerID
	product.CreatedAt = row.CreatedAt
	product.LastUpdated = row.UpdatedAt
	return product, nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
