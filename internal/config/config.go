package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Ledger    LedgerConfig    `yaml:"ledger" mapstructure:"ledger"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Website   WebsiteConfig   `yaml:"website" mapstructure:"website"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// LedgerConfig locates the master ledger and the analysis output.
type LedgerConfig struct {
	MasterPath   string `yaml:"master_path" mapstructure:"master_path"`
	AnalyzedPath string `yaml:"analyzed_path" mapstructure:"analyzed_path"`
	Format       string `yaml:"format" mapstructure:"format"`
}

// ScrapeConfig configures listing scrapes.
type ScrapeConfig struct {
	Browser      bool   `yaml:"browser" mapstructure:"browser"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PageDelayMs  int    `yaml:"page_delay_ms" mapstructure:"page_delay_ms"`
	MaxListings  int    `yaml:"max_listings" mapstructure:"max_listings"`
	FetchCenters bool   `yaml:"fetch_centers" mapstructure:"fetch_centers"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	BrowserPath  string `yaml:"browser_path" mapstructure:"browser_path"`
	SettleSecs   int    `yaml:"settle_secs" mapstructure:"settle_secs"`
	MaxScrolls   int    `yaml:"max_scrolls" mapstructure:"max_scrolls"`
}

// GoogleConfig holds Google Places settings.
type GoogleConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	LocationBias   string  `yaml:"location_bias" mapstructure:"location_bias"`
	ReferenceLat   float64 `yaml:"reference_lat" mapstructure:"reference_lat"`
	ReferenceLng   float64 `yaml:"reference_lng" mapstructure:"reference_lng"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Concurrency    int     `yaml:"concurrency" mapstructure:"concurrency"`
}

// WebsiteConfig configures organizer website scraping.
type WebsiteConfig struct {
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	ContactPaths   []string `yaml:"contact_paths" mapstructure:"contact_paths"`
	MaxEmails      int      `yaml:"max_emails" mapstructure:"max_emails"`
	Concurrency    int      `yaml:"concurrency" mapstructure:"concurrency"`
	RequestsPerSec float64  `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	Model          string  `yaml:"model" mapstructure:"model"`
	MaxTokens      int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxPageChars   int     `yaml:"max_page_chars" mapstructure:"max_page_chars"`
	Concurrency    int     `yaml:"concurrency" mapstructure:"concurrency"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// CacheConfig configures the classification cache.
type CacheConfig struct {
	Path    string `yaml:"path" mapstructure:"path"`
	TTLDays int    `yaml:"ttl_days" mapstructure:"ttl_days"`
}

// ScoringConfig holds every point value, threshold and keyword list used by
// lead scoring.
type ScoringConfig struct {
	Base                  int `yaml:"base" mapstructure:"base"`
	TravelingBonus        int `yaml:"traveling_bonus" mapstructure:"traveling_bonus"`
	MultiPlatformBonus    int `yaml:"multi_platform_bonus" mapstructure:"multi_platform_bonus"`
	ActiveBonus           int `yaml:"active_bonus" mapstructure:"active_bonus"`
	ActiveMinOccurrences  int `yaml:"active_min_occurrences" mapstructure:"active_min_occurrences"`
	RepeatBonus           int `yaml:"repeat_bonus" mapstructure:"repeat_bonus"`
	RepeatMinOccurrences  int `yaml:"repeat_min_occurrences" mapstructure:"repeat_min_occurrences"`
	AIFacilitatorMax      int `yaml:"ai_facilitator_max" mapstructure:"ai_facilitator_max"`
	AIVenuePenaltyMax     int `yaml:"ai_venue_penalty_max" mapstructure:"ai_venue_penalty_max"`
	NameFacilitatorBonus  int `yaml:"name_facilitator_bonus" mapstructure:"name_facilitator_bonus"`
	NameVenuePenalty      int `yaml:"name_venue_penalty" mapstructure:"name_venue_penalty"`
	AIConfidenceThreshold int `yaml:"ai_confidence_threshold" mapstructure:"ai_confidence_threshold"`
	DefaultAIConfidence   int `yaml:"default_ai_confidence" mapstructure:"default_ai_confidence"`

	VenueKeywords       []string `yaml:"venue_keywords" mapstructure:"venue_keywords"`
	FacilitatorKeywords []string `yaml:"facilitator_keywords" mapstructure:"facilitator_keywords"`
}

// DefaultScoringConfig returns the standard lead-scoring rules.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Base:                  50,
		TravelingBonus:        30,
		MultiPlatformBonus:    10,
		ActiveBonus:           10,
		ActiveMinOccurrences:  3,
		RepeatBonus:           5,
		RepeatMinOccurrences:  2,
		AIFacilitatorMax:      25,
		AIVenuePenaltyMax:     30,
		NameFacilitatorBonus:  15,
		NameVenuePenalty:      20,
		AIConfidenceThreshold: 60,
		DefaultAIConfidence:   50,

		VenueKeywords: []string{
			"center", "centre", "resort", "villa", "casa", "hacienda",
			"hotel", "lodge", "camp", "sanctuary", "ashram", "temple",
			"retreat center", "wellness center", "eco", "finca",
		},
		FacilitatorKeywords: []string{
			"yoga with", "wellness by", "retreats by", "journey", "school",
			"academy", "training", "teacher", "coach", "healing", "transformation",
		},
	}
}

// RetryConfig configures retries against external APIs.
type RetryConfig struct {
	MaxAttempts    int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoff int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoff     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier     float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RETREAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names used by older deployments.
	_ = v.BindEnv("google.key", "RETREAT_GOOGLE_KEY", "GOOGLE_PLACES_API_KEY")
	_ = v.BindEnv("anthropic.key", "RETREAT_ANTHROPIC_KEY", "ANTHROPIC_API_KEY")

	// Defaults
	v.SetDefault("ledger.master_path", "leads_master.csv")
	v.SetDefault("ledger.analyzed_path", "leads_analyzed.csv")
	v.SetDefault("ledger.format", "csv")
	v.SetDefault("scrape.browser", false)
	v.SetDefault("scrape.timeout_secs", 30)
	v.SetDefault("scrape.page_delay_ms", 1500)
	v.SetDefault("scrape.max_listings", 0)
	v.SetDefault("scrape.fetch_centers", true)
	v.SetDefault("scrape.settle_secs", 5)
	v.SetDefault("scrape.max_scrolls", 3)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("google.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("google.location_bias", "Mexico")
	v.SetDefault("google.reference_lat", 15.8427193)
	v.SetDefault("google.reference_lng", -97.0480236)
	v.SetDefault("google.requests_per_sec", 5)
	v.SetDefault("google.timeout_secs", 10)
	v.SetDefault("google.concurrency", 4)
	v.SetDefault("website.timeout_secs", 10)
	v.SetDefault("website.contact_paths", []string{"/contact", "/contact-us", "/contacto", "/about", "/about-us", "/connect", "/get-in-touch"})
	v.SetDefault("website.max_emails", 3)
	v.SetDefault("website.concurrency", 4)
	v.SetDefault("website.requests_per_sec", 2)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1500)
	v.SetDefault("anthropic.max_page_chars", 4000)
	v.SetDefault("anthropic.concurrency", 2)
	v.SetDefault("anthropic.requests_per_sec", 1)
	v.SetDefault("cache.path", ".cache/classifications.db")
	v.SetDefault("cache.ttl_days", 30)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 10000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.25)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	sc := DefaultScoringConfig()
	v.SetDefault("scoring.base", sc.Base)
	v.SetDefault("scoring.traveling_bonus", sc.TravelingBonus)
	v.SetDefault("scoring.multi_platform_bonus", sc.MultiPlatformBonus)
	v.SetDefault("scoring.active_bonus", sc.ActiveBonus)
	v.SetDefault("scoring.active_min_occurrences", sc.ActiveMinOccurrences)
	v.SetDefault("scoring.repeat_bonus", sc.RepeatBonus)
	v.SetDefault("scoring.repeat_min_occurrences", sc.RepeatMinOccurrences)
	v.SetDefault("scoring.ai_facilitator_max", sc.AIFacilitatorMax)
	v.SetDefault("scoring.ai_venue_penalty_max", sc.AIVenuePenaltyMax)
	v.SetDefault("scoring.name_facilitator_bonus", sc.NameFacilitatorBonus)
	v.SetDefault("scoring.name_venue_penalty", sc.NameVenuePenalty)
	v.SetDefault("scoring.ai_confidence_threshold", sc.AIConfidenceThreshold)
	v.SetDefault("scoring.default_ai_confidence", sc.DefaultAIConfidence)
	v.SetDefault("scoring.venue_keywords", sc.VenueKeywords)
	v.SetDefault("scoring.facilitator_keywords", sc.FacilitatorKeywords)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. Modes: "run", "classify",
// "analyze". An empty mode checks only the shared settings.
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Ledger.MasterPath == "" {
		errs = append(errs, "ledger.master_path is required")
	}
	if c.Cache.TTLDays < 0 {
		errs = append(errs, "cache.ttl_days must be >= 0")
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, "retry.max_attempts must be >= 1")
	}

	switch mode {
	case "":
	case "classify":
		errs = append(errs, c.validateAnthropic()...)
	case "run":
		if c.Scrape.TimeoutSecs <= 0 {
			errs = append(errs, "scrape.timeout_secs must be > 0")
		}
		if c.Website.Concurrency < 1 || c.Website.Concurrency > 32 {
			errs = append(errs, "website.concurrency must be between 1 and 32")
		}
		if c.Google.Concurrency < 1 || c.Google.Concurrency > 32 {
			errs = append(errs, "google.concurrency must be between 1 and 32")
		}
	case "analyze":
		switch c.Ledger.Format {
		case "csv", "xlsx":
		default:
			errs = append(errs, fmt.Sprintf("ledger.format must be csv or xlsx, got %q", c.Ledger.Format))
		}
		if c.Ledger.AnalyzedPath == "" {
			errs = append(errs, "ledger.analyzed_path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateAnthropic() []string {
	var errs []string
	if c.Anthropic.Key == "" {
		errs = append(errs, "anthropic.key is required")
	}
	if c.Anthropic.Model == "" {
		errs = append(errs, "anthropic.model is required")
	}
	if c.Anthropic.Concurrency < 1 || c.Anthropic.Concurrency > 16 {
		errs = append(errs, "anthropic.concurrency must be between 1 and 16")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
