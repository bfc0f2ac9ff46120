package postgres

import (
	"time"

	"github.com/google/uuid"
)

type accountModel struct {
	ID                    uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name                  string     `gorm:"column:name"`
	Email                 string     `gorm:"column:email"`
	PasswordHash          string     `gorm:"column:password_hash"`
	Role                  string     `gorm:"column:role"`
	Status                string     `gorm:"column:status"`
	Address               string     `gorm:"column:address"`
	EmailVerified         bool       `gorm:"column:email_verified"`
	VerificationCode      *string    `gorm:"column:verification_code"`
	VerificationExpiresAt *time.Time `gorm:"column:verification_expires_at"`
	ResetTokenHash        *string    `gorm:"column:reset_token_hash"`
	ResetExpiresAt        *time.Time `gorm:"column:reset_expires_at"`
	RefreshTokenHash      string     `gorm:"column:refresh_token_hash"`
	CreatedAt             time.Time  `gorm:"column:created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at"`
}

func (accountModel) TableName() string { return "accounts" }

type loginHistoryModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AccountID uuid.UUID `gorm:"column:account_id"`
	LoginTime time.Time `gorm:"column:login_time"`
	IPAddress string    `gorm:"column:ip_address"`
	UserAgent string    `gorm:"column:user_agent"`
}

func (loginHistoryModel) TableName() string { return "login_history" }

// brandModel keeps the whole brand as a jsonb document. The columns next to
// it exist for lookups and ordering.
type brandModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"column:owner_id"`
	Name      string    `gorm:"column:name"`
	Status    string    `gorm:"column:status"`
	Document  string    `gorm:"column:document;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (brandModel) TableName() string { return "brands" }

type productModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"column:owner_id"`
	Name      string    `gorm:"column:name"`
	Category  string    `gorm:"column:category"`
	Status    string    `gorm:"column:status"`
	Document  string    `gorm:"column:document;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (productModel) TableName() string { return "products" }

type outboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	FirstSeenAt    time.Time  `gorm:"column:first_seen_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (outboxModel) TableName() string { return "brandhub_outbox" }
