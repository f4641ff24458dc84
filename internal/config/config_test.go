package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "leads_master.csv", cfg.Ledger.MasterPath)
	assert.Equal(t, "leads_analyzed.csv", cfg.Ledger.AnalyzedPath)
	assert.Equal(t, "csv", cfg.Ledger.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "https://places.googleapis.com/v1", cfg.Google.BaseURL)
	assert.Equal(t, "Mexico", cfg.Google.LocationBias)
	assert.InDelta(t, 15.8427193, cfg.Google.ReferenceLat, 1e-9)
	assert.InDelta(t, -97.0480236, cfg.Google.ReferenceLng, 1e-9)
	assert.Len(t, cfg.Website.ContactPaths, 7)
	assert.Equal(t, 3, cfg.Website.MaxEmails)
	assert.Equal(t, int64(1500), cfg.Anthropic.MaxTokens)
	assert.Equal(t, 4000, cfg.Anthropic.MaxPageChars)
	assert.Equal(t, 30, cfg.Cache.TTLDays)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, DefaultScoringConfig(), cfg.Scoring)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
ledger:
  master_path: data/master.csv
  format: xlsx
log:
  level: debug
  format: json
scoring:
  traveling_bonus: 40
  venue_keywords: [hostel]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/master.csv", cfg.Ledger.MasterPath)
	assert.Equal(t, "xlsx", cfg.Ledger.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 40, cfg.Scoring.TravelingBonus)
	assert.Equal(t, []string{"hostel"}, cfg.Scoring.VenueKeywords)
	// Defaults still apply for unset values
	assert.Equal(t, 50, cfg.Scoring.Base)
	assert.Equal(t, "leads_analyzed.csv", cfg.Ledger.AnalyzedPath)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
ledger:
  master_path: from-file.csv
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("RETREAT_LEDGER_MASTER_PATH", "from-env.csv")
	t.Setenv("RETREAT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "from-env.csv", cfg.Ledger.MasterPath)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("RETREAT_CACHE_TTL_DAYS", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Cache.TTLDays)
}

func TestLoadLegacyKeyNames(t *testing.T) {
	chdirTemp(t)

	t.Setenv("RETREAT_GOOGLE_KEY", "")
	t.Setenv("RETREAT_ANTHROPIC_KEY", "")
	t.Setenv("GOOGLE_PLACES_API_KEY", "g-key")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.Google.Key)
	assert.Equal(t, "sk-ant-key", cfg.Anthropic.Key)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RETREAT_LEDGER_FORMAT=xlsx\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("RETREAT_LEDGER_FORMAT") }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "xlsx", cfg.Ledger.Format)
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("ledger: [unclosed\n"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Ledger.MasterPath = "leads_master.csv"
	cfg.Ledger.AnalyzedPath = "leads_analyzed.csv"
	cfg.Ledger.Format = "csv"
	cfg.Scrape.TimeoutSecs = 30
	cfg.Website.Concurrency = 4
	cfg.Google.Concurrency = 4
	cfg.Anthropic.Model = "claude-sonnet-4-5-20250929"
	cfg.Anthropic.Concurrency = 2
	cfg.Cache.TTLDays = 30
	cfg.Retry.MaxAttempts = 3
	cfg.Scoring = DefaultScoringConfig()
	return cfg
}

func TestValidateShared(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate(""))

	cfg.Ledger.MasterPath = ""
	cfg.Retry.MaxAttempts = 0
	err := cfg.Validate("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger.master_path is required")
	assert.Contains(t, err.Error(), "retry.max_attempts must be >= 1")
}

func TestValidateClassify_MissingKey(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("classify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")

	cfg.Anthropic.Key = "sk-ant-key"
	assert.NoError(t, cfg.Validate("classify"))
}

func TestValidateRun_ConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Website.Concurrency = 0
	err := cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "website.concurrency must be between 1 and 32")

	cfg.Website.Concurrency = 32
	assert.NoError(t, cfg.Validate("run"))

	cfg.Google.Concurrency = 33
	err = cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google.concurrency must be between 1 and 32")
}

func TestValidateAnalyze_Format(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("analyze"))

	cfg.Ledger.Format = "parquet"
	err := cfg.Validate("analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger.format must be csv or xlsx")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
