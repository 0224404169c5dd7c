package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail_dashboard/internal/retail"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.ListenAddr)
	assert.Equal(t, []string{"United Kingdom"}, cfg.DefaultCountries)
	assert.Equal(t, 100, cfg.PreviewRows)

	mapping, err := cfg.Mapping()
	require.NoError(t, err)
	assert.Equal(t, retail.ClassicMapping(), mapping)
}

func TestLoad_OverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"transactions_path: /data/online_retail_II.csv\n"+
			"schema: modern\n"+
			"default_countries: [France, Germany]\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/online_retail_II.csv", cfg.TransactionsPath)
	assert.Equal(t, []string{"France", "Germany"}, cfg.DefaultCountries)
	assert.Equal(t, ":8081", cfg.ListenAddr, "unset fields keep defaults")

	mapping, err := cfg.Mapping()
	require.NoError(t, err)
	assert.Equal(t, retail.ModernMapping(), mapping)
}

func TestLoad_ExplicitColumnsOverridePreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"schema: classic\n"+
			"columns:\n"+
			"  invoice: OrderNo\n"+
			"  description: Item\n"+
			"  quantity: Qty\n"+
			"  unit_price: Price\n"+
			"  timestamp: OrderedAt\n"+
			"  customer_id: Client\n"+
			"  country: Region\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	mapping, err := cfg.Mapping()
	require.NoError(t, err)
	assert.Equal(t, "OrderNo", mapping.Invoice)
	assert.Equal(t, "Client", mapping.CustomerID)
}

func TestLoad_UnknownSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema: fancy\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown schema")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.PreviewRows = 0
	assert.ErrorContains(t, cfg.Validate(), "preview_rows")

	cfg = Default()
	cfg.TransactionsPath = ""
	assert.ErrorContains(t, cfg.Validate(), "transactions_path")
}
