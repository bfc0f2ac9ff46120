package application

import (
	"time"

	"github.com/viralforge/brandhub/internal/ports"
)

type Service struct {
	cfg          Config
	accounts     ports.AccountRepository
	loginHistory ports.LoginHistoryRepository
	brands       ports.BrandRepository
	products     ports.ProductRepository
	outbox       ports.OutboxRepository
	rateLimiter  ports.RateLimiter
	revocations  ports.TokenRevocationStore
	mailer       ports.Mailer
	files        ports.FileStore
	hasher       ports.PasswordHasher
	tokenSigner  ports.TokenSigner
	nowFn        func() time.Time
}

type Dependencies struct {
	Config       Config
	Accounts     ports.AccountRepository
	LoginHistory ports.LoginHistoryRepository
	Brands       ports.BrandRepository
	Products     ports.ProductRepository
	Outbox       ports.OutboxRepository
	RateLimiter  ports.RateLimiter
	Revocations  ports.TokenRevocationStore
	Mailer       ports.Mailer
	Files        ports.FileStore
	Hasher       ports.PasswordHasher
	TokenSigner  ports.TokenSigner
	// Now overrides the clock; tests pin it.
	Now func() time.Time
}

func NewService(deps Dependencies) *Service {
	nowFn := deps.Now
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultConfig().ServiceName
	}
	return &Service{
		cfg:          cfg,
		accounts:     deps.Accounts,
		loginHistory: deps.LoginHistory,
		brands:       deps.Brands,
		products:     deps.Products,
		outbox:       deps.Outbox,
		rateLimiter:  deps.RateLimiter,
		revocations:  deps.Revocations,
		mailer:       deps.Mailer,
		files:        deps.Files,
		hasher:       deps.Hasher,
		tokenSigner:  deps.TokenSigner,
		nowFn:        nowFn,
	}
}
