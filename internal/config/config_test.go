package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CatalogSync/internal/domain"
)

var credentialEnvs = []string{
	consumerKeyEnv, consumerSecretEnv, accessTokenEnv, tokenSecretEnv,
	voiceflowAPIKeyEnv, voiceflowProjEnv, profileEnv, logLevelEnv,
	databaseDSNEnv, telegramTokenEnv, telegramChatIDEnv, pushgatewayEnv,
}

// isolate clears every variable Load reads and points the env file at a
// path that does not exist.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, env := range credentialEnvs {
		t.Setenv(env, "")
	}
	t.Setenv(configPathEnv, "")
	t.Setenv(envFileEnv, filepath.Join(dir, "missing.env"))
	return dir
}

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv(consumerKeyEnv, "ck")
	t.Setenv(consumerSecretEnv, "cs")
	t.Setenv(accessTokenEnv, "at")
	t.Setenv(tokenSecretEnv, "ts")
	t.Setenv(voiceflowAPIKeyEnv, "vf")
	t.Setenv(voiceflowProjEnv, "proj")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg := Load()

	assert.Equal(t, "en", cfg.Profile)
	profile, err := cfg.ActiveProfile()
	require.NoError(t, err)
	assert.Equal(t, "claus_catalogo_en.txt", profile.Filename)
	assert.Equal(t, StockSourceItems, profile.Stock.Mode)
	assert.Equal(t, "warehouse_pt", profile.Stock.Warehouse)
	assert.True(t, profile.RequireStock)
	assert.Equal(t, 100, profile.PageSize)
	assert.Equal(t, 500*time.Millisecond, profile.PageDelay)
	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
}

func TestValidateReportsMissingCredentials(t *testing.T) {
	isolate(t)
	t.Setenv(consumerKeyEnv, "ck")

	err := Load().Validate(true)
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "MAGENTO_CONSUMER_SECRET")
	assert.Contains(t, err.Error(), "VF_API_KEY")
	assert.NotContains(t, err.Error(), "MAGENTO_CONSUMER_KEY,")
}

func TestValidateWithoutPublishSkipsKnowledgeBase(t *testing.T) {
	isolate(t)
	t.Setenv(consumerKeyEnv, "ck")
	t.Setenv(consumerSecretEnv, "cs")
	t.Setenv(accessTokenEnv, "at")
	t.Setenv(tokenSecretEnv, "ts")

	cfg := Load()
	assert.NoError(t, cfg.Validate(false))
	assert.ErrorIs(t, cfg.Validate(true), domain.ErrConfiguration)
}

func TestLoadExampleFile(t *testing.T) {
	isolate(t)
	setCredentials(t)
	t.Setenv(configPathEnv, filepath.Join("..", "..", "config", "catalogsync.example.yaml"))
	t.Setenv(profileEnv, "staging")

	cfg := Load()
	require.NoError(t, cfg.Validate(true))
	assert.Equal(t, []string{"en", "staging", "master"}, cfg.ProfileNames())

	staging, err := cfg.ActiveProfile()
	require.NoError(t, err)
	assert.Equal(t, StockEmbedded, staging.Stock.Mode)
	assert.False(t, staging.RequireStock)
	assert.Equal(t, 100, staging.PageSize)
	assert.Equal(t, 300*time.Millisecond, staging.Stock.BatchDelay)

	en, err := cfg.ProfileByName("en")
	require.NoError(t, err)
	assert.Equal(t, "PERFUMARIA (Fragrance)", en.CategoryLabels["Fragrance"])
	assert.Equal(t, "Europe/Lisbon", cfg.Scheduler.Timezone)
}

func TestLoadEnvFile(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, "sync.env")
	require.NoError(t, os.WriteFile(envPath, []byte("VF_PROJECT_ID=from-dotenv\n"), 0o600))
	t.Setenv(envFileEnv, envPath)
	// godotenv does not override variables that are already set, even empty ones
	require.NoError(t, os.Unsetenv(voiceflowProjEnv))
	t.Cleanup(func() { _ = os.Unsetenv(voiceflowProjEnv) })

	cfg := Load()
	assert.Equal(t, "from-dotenv", cfg.Voiceflow.ProjectID)
}

func TestUnknownProfile(t *testing.T) {
	isolate(t)
	t.Setenv(profileEnv, "pt")

	_, err := Load().ActiveProfile()
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), `unknown profile "pt"`)
}

func TestProfileValidate(t *testing.T) {
	t.Parallel()

	base := ProfileConfig{Name: "x", ProductsURL: "http://shop/rest/V1/products", Filename: "x.txt"}

	cases := []struct {
		name    string
		mutate  func(*ProfileConfig)
		wantErr string
	}{
		{name: "none without stock", mutate: func(p *ProfileConfig) { p.Stock.Mode = StockNone }},
		{name: "embedded with stock", mutate: func(p *ProfileConfig) { p.Stock.Mode = StockEmbedded; p.RequireStock = true }},
		{
			name:    "require stock without source",
			mutate:  func(p *ProfileConfig) { p.Stock.Mode = StockNone; p.RequireStock = true },
			wantErr: "requires stock but stock mode is none",
		},
		{
			name:    "source items without url",
			mutate:  func(p *ProfileConfig) { p.Stock.Mode = StockSourceItems },
			wantErr: "without stock url",
		},
		{
			name:    "unknown mode",
			mutate:  func(p *ProfileConfig) { p.Stock.Mode = "erp" },
			wantErr: `unknown stock mode "erp"`,
		},
		{
			name:    "missing filename",
			mutate:  func(p *ProfileConfig) { p.Filename = ""; p.Stock.Mode = StockNone },
			wantErr: "has no filename",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := base
			tc.mutate(&p)
			err := p.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
