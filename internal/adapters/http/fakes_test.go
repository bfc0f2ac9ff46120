package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/viralforge/brandhub/internal/adapters/security"
	"github.com/viralforge/brandhub/internal/adapters/storage"
	"github.com/viralforge/brandhub/internal/application"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

type memAccounts struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Account
}

func (r *memAccounts) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Email == account.Email {
			return domain.Account{}, domain.ErrDuplicateEmail
		}
	}
	r.items[account.ID] = account
	return account, nil
}

func (r *memAccounts) GetByID(_ context.Context, id uuid.UUID) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.items[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account, nil
}

func (r *memAccounts) GetByEmail(_ context.Context, email string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.items {
		if account.Email == email {
			return account, nil
		}
	}
	return domain.Account{}, domain.ErrAccountNotFound
}

func (r *memAccounts) modify(id uuid.UUID, missErr error, cond func(domain.Account) bool, mutate func(*domain.Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.items[id]
	if !ok || (cond != nil && !cond(account)) {
		return missErr
	}
	mutate(&account)
	r.items[id] = account
	return nil
}

func (r *memAccounts) UpdatePasswordHash(_ context.Context, id uuid.UUID, passwordHash string, _ time.Time) error {
	return r.modify(id, domain.ErrAccountNotFound, nil, func(a *domain.Account) { a.PasswordHash = passwordHash })
}

func (r *memAccounts) SetVerificationChallenge(_ context.Context, id uuid.UUID, challenge domain.VerificationChallenge, _ time.Time) error {
	return r.modify(id, domain.ErrAlreadyVerified, func(a domain.Account) bool { return !a.EmailVerified },
		func(a *domain.Account) { a.Verification = &challenge })
}

func (r *memAccounts) SetPasswordReset(_ context.Context, id uuid.UUID, challenge domain.PasswordResetChallenge, _ time.Time) error {
	return r.modify(id, domain.ErrAccountNotFound, nil, func(a *domain.Account) { a.PasswordReset = &challenge })
}

func (r *memAccounts) ClearPasswordReset(_ context.Context, id uuid.UUID, tokenHash string, _ time.Time) error {
	return r.modify(id, domain.ErrAccountNotFound,
		func(a domain.Account) bool { return a.PasswordReset != nil && a.PasswordReset.TokenHash == tokenHash },
		func(a *domain.Account) { a.PasswordReset = nil })
}

func (r *memAccounts) ReplaceRefreshTokenHash(_ context.Context, id uuid.UUID, current, next string, _ time.Time) error {
	var cond func(domain.Account) bool
	if current != "" {
		cond = func(a domain.Account) bool { return a.RefreshTokenHash == current }
	}
	return r.modify(id, domain.ErrAccountNotFound, cond, func(a *domain.Account) { a.RefreshTokenHash = next })
}

func (r *memAccounts) List(_ context.Context, filter ports.AccountFilter) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Account{}
	for _, account := range r.items {
		if filter.Role != "" && account.Role != filter.Role {
			continue
		}
		if filter.Search != "" && !strings.Contains(account.Email, strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, account)
	}
	return out, nil
}

func (r *memAccounts) ConsumeVerificationCode(_ context.Context, email, code string, now time.Time) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, account := range r.items {
		v := account.Verification
		if account.Email != email || v == nil || v.Code != code || !v.ExpiresAt.After(now) {
			continue
		}
		account.EmailVerified = true
		account.Verification = nil
		r.items[id] = account
		return account, nil
	}
	return domain.Account{}, domain.ErrNotFound
}

func (r *memAccounts) ConsumePasswordReset(_ context.Context, tokenHash string, now time.Time, newPasswordHash string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, account := range r.items {
		reset := account.PasswordReset
		if reset == nil || reset.TokenHash != tokenHash || !reset.ExpiresAt.After(now) {
			continue
		}
		account.PasswordHash = newPasswordHash
		account.PasswordReset = nil
		r.items[id] = account
		return account, nil
	}
	return domain.Account{}, domain.ErrNotFound
}

func (r *memAccounts) setRole(email string, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, account := range r.items {
		if account.Email == email {
			account.Role = role
			r.items[id] = account
		}
	}
}

type memLoginHistory struct {
	mu      sync.Mutex
	entries []domain.LoginHistoryEntry
}

func (r *memLoginHistory) Append(_ context.Context, entry domain.LoginHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append([]domain.LoginHistoryEntry{entry}, r.entries...)
	return nil
}

func (r *memLoginHistory) ListByAccount(_ context.Context, accountID uuid.UUID, limit int) ([]domain.LoginHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.LoginHistoryEntry{}
	for _, entry := range r.entries {
		if entry.AccountID == accountID && len(out) < limit {
			out = append(out, entry)
		}
	}
	return out, nil
}

type memBrands struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Brand
}

func (r *memBrands) Create(_ context.Context, brand domain.Brand) (domain.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[brand.ID] = brand
	return brand, nil
}

func (r *memBrands) GetByID(_ context.Context, id uuid.UUID) (domain.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	brand, ok := r.items[id]
	if !ok {
		return domain.Brand{}, domain.ErrNotFound
	}
	return brand, nil
}

func (r *memBrands) GetByOwner(_ context.Context, ownerID uuid.UUID) (domain.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, brand := range r.items {
		if brand.OwnerID == ownerID {
			return brand, nil
		}
	}
	return domain.Brand{}, domain.ErrNotFound
}

func (r *memBrands) Update(_ context.Context, brand domain.Brand) (domain.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[brand.ID]; !ok {
		return domain.Brand{}, domain.ErrNotFound
	}
	r.items[brand.ID] = brand
	return brand, nil
}

func (r *memBrands) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memBrands) List(_ context.Context, filter ports.BrandFilter) ([]domain.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Brand{}
	for _, brand := range r.items {
		if filter.Category != "" && !hasCategory(brand, filter.Category) {
			continue
		}
		out = append(out, brand)
	}
	return out, nil
}

func hasCategory(b domain.Brand, category string) bool {
	for _, c := range b.Categories {
		if c == category {
			return true
		}
	}
	return false
}

type capturingMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *capturingMailer) SendVerificationCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return nil
}

func (m *capturingMailer) SendPasswordReset(context.Context, string, string) error {
	return nil
}

func (m *capturingMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type testEnv struct {
	handler  http.Handler
	accounts *memAccounts
	mailer   *capturingMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	signer, err := security.NewJWTSigner("brandhub-test",
		"access-secret-0123456789abcdefghijkl",
		"refresh-secret-0123456789abcdefghijk")
	require.NoError(t, err)
	files, err := storage.NewLocalStore(t.TempDir(), 0)
	require.NoError(t, err)

	env := &testEnv{
		accounts: &memAccounts{items: map[uuid.UUID]domain.Account{}},
		mailer:   &capturingMailer{codes: map[string]string{}},
	}
	service := application.NewService(application.Dependencies{
		Config:       application.DefaultConfig(),
		Accounts:     env.accounts,
		LoginHistory: &memLoginHistory{},
		Brands:       &memBrands{items: map[uuid.UUID]domain.Brand{}},
		Mailer:       env.mailer,
		Files:        files,
		Hasher:       security.NewBcryptHasher(10),
		TokenSigner:  signer,
	})
	env.handler = NewRouter(NewHandler(service, files))
	return env
}
