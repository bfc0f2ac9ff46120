package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

type fixture struct {
	service      *Service
	accounts     *fakeAccounts
	loginHistory *fakeLoginHistory
	brands       *fakeBrands
	products     *fakeProducts
	outbox       *fakeOutbox
	limiter      *fakeRateLimiter
	revocations  *fakeRevocations
	mailer       *fakeMailer
	files        *fakeFiles
	signer       *fakeSigner
	clock        *fakeClock
}

func newFixture() *fixture {
	f := &fixture{
		accounts:     &fakeAccounts{items: map[uuid.UUID]domain.Account{}},
		loginHistory: &fakeLoginHistory{},
		brands:       &fakeBrands{items: map[uuid.UUID]domain.Brand{}},
		products:     &fakeProducts{items: map[uuid.UUID]domain.Product{}},
		outbox:       &fakeOutbox{},
		limiter:      &fakeRateLimiter{counts: map[string]int{}},
		revocations:  &fakeRevocations{items: map[string]time.Time{}},
		mailer:       &fakeMailer{codes: map[string]string{}, resets: map[string]string{}},
		files:        &fakeFiles{items: map[string]ports.FileUpload{}},
		signer:       &fakeSigner{issued: map[string]ports.TokenClaims{}},
		clock:        &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.service = NewService(Dependencies{
		Config:       DefaultConfig(),
		Accounts:     f.accounts,
		LoginHistory: f.loginHistory,
		Brands:       f.brands,
		Products:     f.products,
		Outbox:       f.outbox,
		RateLimiter:  f.limiter,
		Revocations:  f.revocations,
		Mailer:       f.mailer,
		Files:        f.files,
		Hasher:       fakeHasher{},
		TokenSigner:  f.signer,
		Now:          f.clock.Now,
	})
	return f
}

// register creates an account and returns it with its access token.
func (f *fixture) register(email string) (domain.PublicAccount, string) {
	res, err := f.service.Register(context.Background(), RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "secret1",
	})
	if err != nil {
		panic(fmt.Sprintf("register %s: %v", email, err))
	}
	return res.Account, res.AccessToken
}

func (f *fixture) actorWithRole(role domain.Role) domain.Actor {
	account, _ := f.register(uuid.NewString()[:8] + "@example.com")
	f.accounts.setRole(account.ID, role)
	return domain.Actor{AccountID: account.ID, Role: role}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeAccounts struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Account
	// afterRead runs once, after the next lookup returns, to interleave a
	// concurrent write between a read and the write that follows it.
	afterRead func()
}

func (r *fakeAccounts) read(account domain.Account, err error) (domain.Account, error) {
	r.mu.Lock()
	hook := r.afterRead
	r.afterRead = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return account, err
}

func (r *fakeAccounts) Create(_ context.Context, account domain.Account) (domain.Account, error) {
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

func (r *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (domain.Account, error) {
	return r.read(r.lookup(func(a domain.Account) bool { return a.ID == id }))
}

func (r *fakeAccounts) GetByEmail(_ context.Context, email string) (domain.Account, error) {
	return r.read(r.lookup(func(a domain.Account) bool { return a.Email == email }))
}

func (r *fakeAccounts) lookup(match func(domain.Account) bool) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.items {
		if match(account) {
			return account, nil
		}
	}
	return domain.Account{}, domain.ErrAccountNotFound
}

// patch applies mutate to the stored account while cond holds.
func (r *fakeAccounts) patch(id uuid.UUID, missErr error, cond func(domain.Account) bool, mutate func(*domain.Account)) error {
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

func (r *fakeAccounts) UpdatePasswordHash(_ context.Context, id uuid.UUID, passwordHash string, now time.Time) error {
	return r.patch(id, domain.ErrAccountNotFound, nil, func(a *domain.Account) {
		a.PasswordHash = passwordHash
		a.UpdatedAt = now
	})
}

func (r *fakeAccounts) SetVerificationChallenge(_ context.Context, id uuid.UUID, challenge domain.VerificationChallenge, now time.Time) error {
	unverified := func(a domain.Account) bool { return !a.EmailVerified }
	return r.patch(id, domain.ErrAlreadyVerified, unverified, func(a *domain.Account) {
		a.Verification = &challenge
		a.UpdatedAt = now
	})
}

func (r *fakeAccounts) SetPasswordReset(_ context.Context, id uuid.UUID, challenge domain.PasswordResetChallenge, now time.Time) error {
	return r.patch(id, domain.ErrAccountNotFound, nil, func(a *domain.Account) {
		a.PasswordReset = &challenge
		a.UpdatedAt = now
	})
}

func (r *fakeAccounts) ClearPasswordReset(_ context.Context, id uuid.UUID, tokenHash string, now time.Time) error {
	holds := func(a domain.Account) bool { return a.PasswordReset != nil && a.PasswordReset.TokenHash == tokenHash }
	return r.patch(id, domain.ErrAccountNotFound, holds, func(a *domain.Account) {
		a.PasswordReset = nil
		a.UpdatedAt = now
	})
}

func (r *fakeAccounts) ReplaceRefreshTokenHash(_ context.Context, id uuid.UUID, current, next string, now time.Time) error {
	var holds func(domain.Account) bool
	if current != "" {
		holds = func(a domain.Account) bool { return a.RefreshTokenHash == current }
	}
	return r.patch(id, domain.ErrAccountNotFound, holds, func(a *domain.Account) {
		a.RefreshTokenHash = next
		a.UpdatedAt = now
	})
}

func (r *fakeAccounts) setRole(id uuid.UUID, role domain.Role) {
	_ = r.patch(id, domain.ErrAccountNotFound, nil, func(a *domain.Account) { a.Role = role })
}

func (r *fakeAccounts) List(_ context.Context, filter ports.AccountFilter) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	search := strings.ToLower(filter.Search)
	out := []domain.Account{}
	for _, account := range r.items {
		if filter.Role != "" && account.Role != filter.Role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(account.Name), search) && !strings.Contains(account.Email, search) {
			continue
		}
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeAccounts) ConsumeVerificationCode(_ context.Context, email, code string, now time.Time) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, account := range r.items {
		v := account.Verification
		if account.Email != email || v == nil || v.Code != code || !v.ExpiresAt.After(now) {
			continue
		}
		account.EmailVerified = true
		account.Verification = nil
		account.UpdatedAt = now
		r.items[id] = account
		return account, nil
	}
	return domain.Account{}, domain.ErrNotFound
}

func (r *fakeAccounts) ConsumePasswordReset(_ context.Context, tokenHash string, now time.Time, newPasswordHash string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, account := range r.items {
		reset := account.PasswordReset
		if reset == nil || reset.TokenHash != tokenHash || !reset.ExpiresAt.After(now) {
			continue
		}
		account.PasswordHash = newPasswordHash
		account.PasswordReset = nil
		account.UpdatedAt = now
		r.items[id] = account
		return account, nil
	}
	return domain.Account{}, domain.ErrNotFound
}

func (r *fakeAccounts) get(email string) domain.Account {
	account, _ := r.GetByEmail(context.Background(), email)
	return account
}

type fakeLoginHistory struct {
	mu      sync.Mutex
	entries []domain.LoginHistoryEntry
}

func (r *fakeLoginHistory) Append(_ context.Context, entry domain.LoginHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeLoginHistory) ListByAccount(_ context.Context, accountID uuid.UUID, limit int) ([]domain.LoginHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.LoginHistoryEntry{}
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].AccountID == accountID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

type fakeBrands struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Brand
}

func (r *fakeBrands) Create(_ context.Context, brand domain.Brand) (domain.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[brand.ID] = brand
	return brand, nil
}

func (r *fakeBrands) GetByID(_ context.Context, id uuid.UUID) (domain.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	brand, ok := r.items[id]
	if !ok {
		return domain.Brand{}, domain.ErrNotFound
	}
	return brand, nil
}

func (r *fakeBrands) GetByOwner(_ context.Context, ownerID uuid.UUID) (domain.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, brand := range r.items {
		if brand.OwnerID == ownerID {
			return brand, nil
		}
	}
	return domain.Brand{}, domain.ErrNotFound
}

func (r *fakeBrands) Update(_ context.Context, brand domain.Brand) (domain.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[brand.ID]; !ok {
		return domain.Brand{}, domain.ErrNotFound
	}
	r.items[brand.ID] = brand
	return brand, nil
}

func (r *fakeBrands) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeBrands) List(_ context.Context, filter ports.BrandFilter) ([]domain.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Brand{}
	for _, brand := range r.items {
		if filter.OwnerID != uuid.Nil && brand.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Category != "" && !containsString(brand.Categories, filter.Category) {
			continue
		}
		out = append(out, brand)
	}
	return out, nil
}

type fakeProducts struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Product
}

func (r *fakeProducts) Create(_ context.Context, product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[product.ID] = product
	return product, nil
}

func (r *fakeProducts) GetByID(_ context.Context, id uuid.UUID) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return product.Clone(), nil
}

func (r *fakeProducts) Update(_ context.Context, product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[product.ID]; !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	r.items[product.ID] = product
	return product, nil
}

func (r *fakeProducts) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeProducts) List(_ context.Context, filter ports.ProductFilter) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Product{}
	for _, product := range r.items {
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		if filter.OwnerID != uuid.Nil && product.OwnerID != filter.OwnerID {
			continue
		}
		out = append(out, product)
	}
	return out, nil
}

func (r *fakeProducts) RecordSale(_ context.Context, id uuid.UUID, quantity, salePrice float64, at time.Time) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	if err := domain.RecordSale(&product, quantity, salePrice); err != nil {
		return domain.Product{}, err
	}
	product.LastUpdated = at
	r.items[id] = product
	return product, nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []ports.OutboxEvent
}

func (r *fakeOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeOutbox) ClaimUnpublished(context.Context, int, string, time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}

func (r *fakeOutbox) MarkPublished(context.Context, uuid.UUID, string, time.Time) error {
	return nil
}

func (r *fakeOutbox) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (r *fakeOutbox) MarkDeadLettered(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (r *fakeOutbox) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

type fakeRateLimiter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (l *fakeRateLimiter) Allow(_ context.Context, scope, key string, limit int, _ time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := scope + ":" + key
	l.counts[k]++
	if l.counts[k] > limit {
		return domain.ErrRateLimited
	}
	return nil
}

func (l *fakeRateLimiter) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts = map[string]int{}
}

type fakeRevocations struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func (r *fakeRevocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[tokenID] = until
	return nil
}

func (r *fakeRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[tokenID]
	return ok, nil
}

type fakeMailer struct {
	mu     sync.Mutex
	fail   bool
	codes  map[string]string
	resets map[string]string
	sent   int
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("%w: smtp unavailable", domain.ErrEmailDeliveryFailed)
	}
	m.codes[to] = code
	m.sent++
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, rawToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.resets[to] = rawToken
	m.sent++
	return nil
}

func (m *fakeMailer) setFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *fakeMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

func (m *fakeMailer) reset(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets[email]
}

type fakeFiles struct {
	mu    sync.Mutex
	items map[string]ports.FileUpload
}

func (s *fakeFiles) Save(_ context.Context, upload ports.FileUpload) (ports.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filename := uuid.NewString() + ".bin"
	path := domain.UploadPath(domain.UploadField(upload.Field), filename)
	s.items[path] = upload
	return ports.StoredFile{Path: path, Filename: filename}, nil
}

func (s *fakeFiles) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, path)
	return nil
}

func (s *fakeFiles) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[path]
	return ok
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hash:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeSigner struct {
	mu     sync.Mutex
	issued map[string]ports.TokenClaims
}

func (s *fakeSigner) Sign(kind ports.TokenKind, claims ports.TokenClaims) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := string(kind) + "." + claims.TokenID
	s.issued[token] = claims
	return token, nil
}

func (s *fakeSigner) Parse(kind ports.TokenKind, token string) (ports.TokenClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	claims, ok := s.issued[token]
	if !ok || claims.Kind != kind {
		return ports.TokenClaims{}, errors.New("invalid token")
	}
	return claims, nil
}

func containsString(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
