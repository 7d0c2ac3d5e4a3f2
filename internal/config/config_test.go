package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultQuoteBaseURL, cfg.QuoteBaseURL)
	assert.Equal(t, DefaultReferenceMint, cfg.ReferenceMint)
	assert.Equal(t, DefaultSlippageBps, cfg.SlippageBps)
	assert.Equal(t, DefaultChartRateLimit, cfg.ChartRateLimit)
	assert.Zero(t, cfg.PriorityFeeLamports)
	assert.Equal(t, 2*time.Second, cfg.PublicKeyTimeout)
	assert.Equal(t, 30*time.Second, cfg.SignTimeout)
	assert.False(t, cfg.DebugLogging)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
quote_base_url: "https://quote.example.com"
slippage_bps: 250
priority_fee_lamports: 10000
debug_logging: true
sign_timeout: 45s
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://quote.example.com", cfg.QuoteBaseURL)
	assert.Equal(t, 250, cfg.SlippageBps)
	assert.Equal(t, uint64(10000), cfg.PriorityFeeLamports)
	assert.True(t, cfg.DebugLogging)
	assert.Equal(t, 45*time.Second, cfg.SignTimeout)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultChartBaseURL, cfg.ChartBaseURL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MINTPOP_SLIPPAGE_BPS", "500")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.SlippageBps)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad quote URL", `quote_base_url: "ftp://example.com"`},
		{"zero slippage", `slippage_bps: 0`},
		{"excess slippage", `slippage_bps: 20000`},
		{"zero rate limit", `chart_rate_limit: 0`},
		{"zero timeout", `http_timeout: 0s`},
		{"empty reference mint", `reference_mint: ""`},
		{"empty settings path", `settings_path: ""`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
