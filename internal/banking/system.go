// Package banking holds the account repository that sits between the
// presentation layers and an AccountStore. All accounts live in memory; every
// successful mutation is followed by a full Save through the store.
package banking

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bankingSystem/internal/logger"
	"bankingSystem/internal/metrics"
	"bankingSystem/models"
	"bankingSystem/repository"
)

const (
	minAccountID = 10000
	maxAccountID = 99999
	minPasscode  = 1000
	maxPasscode  = 9999
)

// System is the BankingSystem repository. It is safe for concurrent use; the
// mutex serializes every read and write of the account map.
type System struct {
	mu       sync.Mutex
	store    repository.AccountStore
	accounts map[string]*models.Account

	rng     *rand.Rand
	log     *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a System.
type Option func(*System)

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *zap.Logger) Option {
	return func(s *System) { s.log = l }
}

// WithMetrics enables operation counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *System) { s.metrics = m }
}

// WithRand replaces the random source used for ids and passcodes.
func WithRand(r *rand.Rand) Option {
	return func(s *System) { s.rng = r }
}

// New loads every account from store.
func New(ctx context.Context, store repository.AccountStore, opts ...Option) (*System, error) {
	if store == nil {
		return nil, fmt.Errorf("banking: nil account store")
	}
	s := &System{
		store:    store,
		accounts: make(map[string]*models.Account),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	for i := range loaded {
		a := loaded[i]
		if _, dup := s.accounts[a.ID]; dup {
			return nil, fmt.Errorf("load accounts: duplicate account id %s", a.ID)
		}
		s.accounts[a.ID] = &a
	}
	s.metrics.SetAccounts(len(s.accounts))
	s.log.Info("accounts loaded", zap.Int("count", len(s.accounts)))
	return s, nil
}

// CreateAccount opens a zero-balance account with a fresh random id and passcode.
func (s *System) CreateAccount(ctx context.Context, category models.Category) (acc models.Account, err error) {
	defer func() { s.observe(ctx, "create", acc.ID, err) }()

	if category != models.CategoryPersonal && category != models.CategoryBusiness {
		return models.Account{}, models.ErrInvalidCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.newID()
	if err != nil {
		return models.Account{}, err
	}
	a := &models.Account{
		ID:       id,
		Passcode: strconv.Itoa(minPasscode + s.rng.IntN(maxPasscode-minPasscode+1)),
		Category: category,
		Balance:  decimal.Zero,
	}
	s.accounts[id] = a
	if err := s.persist(ctx); err != nil {
		delete(s.accounts, id)
		return models.Account{}, err
	}
	return *a, nil
}

// newID picks an unused five-digit id. Callers hold s.mu.
func (s *System) newID() (string, error) {
	if len(s.accounts) >= maxAccountID-minAccountID+1 {
		return "", ErrNoFreeIdentifier
	}
	for {
		id := strconv.Itoa(minAccountID + s.rng.IntN(maxAccountID-minAccountID+1))
		if _, taken := s.accounts[id]; !taken {
			return id, nil
		}
	}
}

// Login returns the account when id and passcode match.
func (s *System) Login(ctx context.Context, id, passcode string) (acc models.Account, err error) {
	defer func() { s.observe(ctx, "login", id, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.Passcode != passcode {
		return models.Account{}, ErrInvalidCredentials
	}
	return *a, nil
}

// DeleteAccount removes the account and saves.
func (s *System) DeleteAccount(ctx context.Context, id string) (err error) {
	defer func() { s.observe(ctx, "delete", id, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	delete(s.accounts, id)
	if err := s.persist(ctx); err != nil {
		s.accounts[id] = a
		return err
	}
	return nil
}

// Account returns a copy of one account.
func (s *System) Account(id string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.Account{}, ErrAccountNotFound
	}
	return *a, nil
}

// Accounts returns copies of all accounts sorted by id.
func (s *System) Accounts() []models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Deposit adds amount to the account balance.
func (s *System) Deposit(ctx context.Context, id string, amount decimal.Decimal) (models.Receipt, error) {
	return s.apply(ctx, "deposit", id, "", func(a, _ *models.Account) (models.Receipt, error) {
		return a.Deposit(amount)
	})
}

// Withdraw takes amount from the account balance.
func (s *System) Withdraw(ctx context.Context, id string, amount decimal.Decimal) (models.Receipt, error) {
	return s.apply(ctx, "withdraw", id, "", func(a, _ *models.Account) (models.Receipt, error) {
		return a.Withdraw(amount)
	})
}

// Transfer moves amount from fromID to toID. An unknown recipient is
// models.ErrRecipientNotFound.
func (s *System) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (models.Receipt, error) {
	return s.apply(ctx, "transfer", fromID, toID, func(a, to *models.Account) (models.Receipt, error) {
		return a.Transfer(amount, to)
	})
}

// Recharge tops up phone from the account balance.
func (s *System) Recharge(ctx context.Context, id, phone string, amount decimal.Decimal) (models.Receipt, error) {
	return s.apply(ctx, "recharge", id, "", func(a, _ *models.Account) (models.Receipt, error) {
		return a.Recharge(amount, phone)
	})
}

// Save writes the current state through the store without mutating anything.
func (s *System) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx)
}

// apply runs fn against the account (and optional counterparty) under the lock,
// persists, and restores both accounts if the save fails.
func (s *System) apply(ctx context.Context, op, id, counterID string, fn func(a, counter *models.Account) (models.Receipt, error)) (r models.Receipt, err error) {
	defer func() { s.observe(ctx, op, id, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return models.Receipt{}, ErrAccountNotFound
	}
	var counter *models.Account
	if counterID != "" {
		// A missing counterparty stays nil; the model reports it.
		counter = s.accounts[counterID]
	}

	before := *a
	var counterBefore models.Account
	if counter != nil {
		counterBefore = *counter
	}

	r, err = fn(a, counter)
	if err != nil {
		return models.Receipt{}, err
	}
	if err := s.persist(ctx); err != nil {
		*a = before
		if counter != nil {
			*counter = counterBefore
		}
		return models.Receipt{}, err
	}
	return r, nil
}

// persist saves all accounts. Callers hold s.mu.
func (s *System) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, s.snapshot()); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	s.metrics.SetAccounts(len(s.accounts))
	return nil
}

// snapshot copies the account map sorted by id. Callers hold s.mu.
func (s *System) snapshot() []models.Account {
	out := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *System) observe(ctx context.Context, op, id string, err error) {
	s.metrics.ObserveOperation(op, err)
	l := logger.From(ctx, s.log)
	if err != nil {
		l.Info("operation rejected", logger.Operation(op), logger.AccountID(id), zap.Error(err))
		return
	}
	l.Debug("operation completed", logger.Operation(op), logger.AccountID(id))
}
