package postgres

import (
	"github.com/viralforge/brandhub/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Accounts     ports.AccountRepository
	LoginHistory ports.LoginHistoryRepository
	Brands       ports.BrandRepository
	Products     ports.ProductRepository
	Outbox       ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Accounts:     &accountRepository{db: db},
		LoginHistory: &loginHistoryRepository{db: db},
		Brands:       &brandRepository{db: db},
		Products:     &productRepository{db: db},
		Outbox:       &outboxRepository{db: db},
	}
}
