package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bxcodec/faker/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/evgeny-myasishchev/money-manager/pkg/dal"
	"github.com/evgeny-myasishchev/money-manager/pkg/ledger"
)

func TestLoadConfig(t *testing.T) {
	t.Run("load env files", func(t *testing.T) {
		owner := faker.Email()
		envFile := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envFile, []byte("WALLET_OWNER="+owner+"\n"), 0600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("WALLET_OWNER", "")
		os.Unsetenv("WALLET_OWNER")

		appCfg, err := LoadConfig(WithEnvFiles(envFile, filepath.Join(t.TempDir(), "missing.env")))
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, owner, appCfg.Wallet.Owner.Value())
		assert.Equal(t, "sqlite3", appCfg.Storage.Driver.Value())
	})

	t.Run("fail on malformed env file", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envFile, []byte("BROKEN_VAR=\"unterminated\n"), 0600); err != nil {
			t.Fatal(err)
		}
		_, err := LoadConfig(WithEnvFiles(envFile))
		assert.Error(t, err)
	})
}

func TestBootstrapServices(t *testing.T) {
	appCfg, err := LoadConfig(WithEnvFiles())
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "file::memory:?cache=shared", appCfg.Storage.DSN.Value())
	injector := BootstrapServices(appCfg)
	ctx := context.Background()
	owner := faker.Email()

	err = injector(func(storage dal.Storage, engine ledger.Engine, registry *prometheus.Registry) error {
		if err := storage.Setup(ctx); err != nil {
			return err
		}
		trx, err := engine.Create(ctx, owner, ledger.Input{
			Type:        ledger.TypeIncome,
			Amount:      ledger.NewRawAmount("10"),
			Description: faker.Sentence(),
		})
		if err != nil {
			return err
		}
		txs, err := engine.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		if assert.Len(t, txs, 1) {
			assert.Equal(t, trx.ID, txs[0].ID)
		}

		families, err := registry.Gather()
		if err != nil {
			return err
		}
		names := map[string]bool{}
		for _, family := range families {
			names[family.GetName()] = true
		}
		assert.True(t, names["money_manager_ledger_transactions_recorded_total"])
		assert.True(t, names["go_goroutines"])
		return nil
	})
	assert.NoError(t, err)
}
