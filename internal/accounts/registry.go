package accounts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

// FileName is the registered bank accounts file inside the accounts directory.
const FileName = "bank-accounts.csv"

// ErrDuplicateAccount is returned by Add for an ID that is already registered.
var ErrDuplicateAccount = errors.New("duplicate bank account")

// Registry is an in-memory Lookup over registered bank accounts, indexed by
// ID and by tenant. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	accounts []model.BankAccount
	byID     map[string]model.BankAccount
	byTenant map[string][]model.BankAccount
}

// NewRegistry creates a Registry from a slice of accounts. Later duplicates
// of an ID are ignored.
func NewRegistry(accounts []model.BankAccount) *Registry {
	r := &Registry{
		byID:     make(map[string]model.BankAccount, len(accounts)),
		byTenant: make(map[string][]model.BankAccount),
	}
	for _, a := range accounts {
		_ = r.add(a)
	}
	return r
}

// Load reads a bank accounts CSV file and returns a Registry.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bank accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading bank accounts: %w", err)
	}
	return NewRegistry(accts), nil
}

// Save writes the registered accounts to path, creating its directory.
func (r *Registry) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bank accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, r.All()); err != nil {
		return fmt.Errorf("writing bank accounts: %w", err)
	}
	return nil
}

// Add registers an account.
func (r *Registry) Add(a model.BankAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(a)
}

func (r *Registry) add(a model.BankAccount) error {
	if a.ID == "" {
		return errors.New("bank account ID is required")
	}
	if _, ok := r.byID[a.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAccount, a.ID)
	}
	r.accounts = append(r.accounts, a)
	r.byID[a.ID] = a
	r.byTenant[a.TenantID] = append(r.byTenant[a.TenantID], a)
	return nil
}

// All returns all accounts in registration order.
func (r *Registry) All() []model.BankAccount {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.accounts)
}

// Get returns an account by ID.
func (r *Registry) Get(id string) (model.BankAccount, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok
}

// ByTenant returns the accounts registered for a tenant.
func (r *Registry) ByTenant(tenantID string) []model.BankAccount {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.byTenant[tenantID])
}

// FindByIBAN implements Lookup.
func (r *Registry) FindByIBAN(_ context.Context, tenantID, iban string) ([]model.BankAccount, error) {
	iban = CompactIBAN(iban)
	return r.filter(tenantID, func(a model.BankAccount) bool {
		return a.IBAN != "" && CompactIBAN(a.IBAN) == iban
	}), nil
}

// FindByAccountNumber implements Lookup.
func (r *Registry) FindByAccountNumber(_ context.Context, tenantID, number string) ([]model.BankAccount, error) {
	number = Digits(number)
	if number == "" {
		return nil, nil
	}
	return r.filter(tenantID, func(a model.BankAccount) bool {
		return slices.Contains(localNumbers(a), number)
	}), nil
}

// FindByNumberSuffix implements Lookup.
func (r *Registry) FindByNumberSuffix(_ context.Context, tenantID, suffix string) ([]model.BankAccount, error) {
	suffix = Digits(suffix)
	if suffix == "" {
		return nil, nil
	}
	return r.filter(tenantID, func(a model.BankAccount) bool {
		return slices.ContainsFunc(localNumbers(a), func(n string) bool {
			return strings.HasSuffix(n, suffix)
		})
	}), nil
}

func (r *Registry) filter(tenantID string, match func(model.BankAccount) bool) []model.BankAccount {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.BankAccount
	for _, a := range r.byTenant[tenantID] {
		if match(a) {
			out = append(out, a)
		}
	}
	return out
}

// localNumbers returns the digit forms an account can be matched by.
func localNumbers(a model.BankAccount) []string {
	var out []string
	if n := Digits(a.AccountNumber); n != "" {
		out = append(out, n)
	}
	if a.IBAN != "" && IsIBAN(a.IBAN) {
		if n := LocalNumber(a.IBAN); n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
