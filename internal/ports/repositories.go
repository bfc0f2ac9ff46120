package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
)

// AccountFilter narrows ListUsers. Search matches name or email case-insensitively.
type AccountFilter struct {
	Role   domain.Role
	Search string
}

// AccountRepository persists accounts. Create reports domain.ErrDuplicateEmail
// on an email collision and lookups report domain.ErrAccountNotFound.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	// The writes below touch only the columns they name, so a stale read
	// never undoes a concurrent reset or verification. Each reports
	// domain.ErrAccountNotFound when no row matches.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string, now time.Time) error
	// SetVerificationChallenge reports domain.ErrAlreadyVerified when the
	// account is verified by the time the write lands.
	SetVerificationChallenge(ctx context.Context, id uuid.UUID, challenge domain.VerificationChallenge, now time.Time) error
	SetPasswordReset(ctx context.Context, id uuid.UUID, challenge domain.PasswordResetChallenge, now time.Time) error
	// ClearPasswordReset withdraws the reset challenge only while it still
	// holds tokenHash.
	ClearPasswordReset(ctx context.Context, id uuid.UUID, tokenHash string, now time.Time) error
	// ReplaceRefreshTokenHash stores next. A non-empty current makes the swap
	// conditional on the stored hash still being current.
	ReplaceRefreshTokenHash(ctx context.Context, id uuid.UUID, current, next string, now time.Time) error
	// ConsumeVerificationCode marks the account verified and clears the
	// challenge in one step. It reports domain.ErrNotFound when no account
	// holds a matching unexpired code.
	ConsumeVerificationCode(ctx context.Context, email, code string, now time.Time) (domain.Account, error)
	// ConsumePasswordReset swaps the password hash for the account holding an
	// unexpired reset challenge with tokenHash and clears the challenge.
	ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time, newPasswordHash string) (domain.Account, error)
}

// LoginHistoryRepository is append-only.
type LoginHistoryRepository interface {
	Append(ctx context.Context, entry domain.LoginHistoryEntry) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LoginHistoryEntry, error)
}

type BrandFilter struct {
	Category string
	OwnerID  uuid.UUID
}

type BrandRepository interface {
	Create(ctx context.Context, brand domain.Brand) (domain.Brand, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Brand, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (domain.Brand, error)
	Update(ctx context.Context, brand domain.Brand) (domain.Brand, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter BrandFilter) ([]domain.Brand, error)
}

type ProductFilter struct {
	Category string
	OwnerID  uuid.UUID
	Status   domain.ProductStatus
	Search   string
}

type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	// RecordSale applies domain.RecordSale under a row lock so concurrent
	// sales never lose an increment.
	RecordSale(ctx context.Context, id uuid.UUID, quantity, salePrice float64, at time.Time) (domain.Product, error)
}

// OutboxEvent is the write-side event payload prior to storage.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry/error metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	FirstSeenAt    time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}
