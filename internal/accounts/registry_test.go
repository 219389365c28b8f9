package accounts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

func sampleAccounts() []model.BankAccount {
	return []model.BankAccount{
		{ID: "acc-iban", TenantID: "t1", Name: "Operating", IBAN: "RS35260005601001611379", Currency: "RSD"},
		{ID: "acc-local", TenantID: "t1", Name: "Payroll", AccountNumber: "160-0000000123456-78", Currency: "RSD"},
		{ID: "acc-other-tenant", TenantID: "t2", Name: "Foreign", IBAN: "RS35260005601001611379"},
	}
}

func TestRegistry_GetAndTenants(t *testing.T) {
	r := NewRegistry(sampleAccounts())

	a, ok := r.Get("acc-local")
	require.True(t, ok)
	assert.Equal(t, "Payroll", a.Name)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Len(t, r.All(), 3)
	assert.Len(t, r.ByTenant("t1"), 2)
	assert.Empty(t, r.ByTenant("t3"))
}

func TestRegistry_Add(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Add(model.BankAccount{ID: "a", TenantID: "t1", AccountNumber: "1"}))
	assert.ErrorIs(t, r.Add(model.BankAccount{ID: "a", TenantID: "t1"}), ErrDuplicateAccount)
	assert.Error(t, r.Add(model.BankAccount{TenantID: "t1"}))
}

func TestRegistry_Find(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(sampleAccounts())

	found, err := r.FindByIBAN(ctx, "t1", "rs35 2600 0560 1001 6113 79")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "acc-iban", found[0].ID, "other tenants are never matched")

	found, err = r.FindByAccountNumber(ctx, "t1", "160000000012345678")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "acc-local", found[0].ID)

	found, err = r.FindByAccountNumber(ctx, "t1", "260005601001611379")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "acc-iban", found[0].ID, "a registered IBAN also matches by its local part")

	found, err = r.FindByNumberSuffix(ctx, "t1", "0012345678")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = r.FindByNumberSuffix(ctx, "t1", "")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRegistry_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts", FileName)
	require.NoError(t, NewRegistry(sampleAccounts()).Save(path))

	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sampleAccounts(), loaded.All())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening bank accounts")
}
