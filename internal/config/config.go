package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"CatalogSync/internal/domain"
)

const (
	defaultTimezone = "UTC"
	defaultProfile  = "en"
	defaultEnvFile  = ".env"

	configPathEnv      = "CATALOGSYNC_CONFIG"
	profileEnv         = "CATALOGSYNC_PROFILE"
	envFileEnv         = "CATALOGSYNC_ENV_FILE"
	logLevelEnv        = "LOG_LEVEL"
	consumerKeyEnv     = "MAGENTO_CONSUMER_KEY"
	consumerSecretEnv  = "MAGENTO_CONSUMER_SECRET"
	accessTokenEnv     = "MAGENTO_ACCESS_TOKEN"
	tokenSecretEnv     = "MAGENTO_TOKEN_SECRET"
	voiceflowAPIKeyEnv = "VF_API_KEY"
	voiceflowProjEnv   = "VF_PROJECT_ID"
	databaseDSNEnv     = "DATABASE_DSN"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	pushgatewayEnv     = "PUSHGATEWAY_URL"
)

// Stock modes accepted in profile configuration.
const (
	StockNone        = "none"
	StockEmbedded    = "embedded"
	StockSourceItems = "source-items"
)

const (
	defaultPageSize   = 100
	defaultPageDelay  = 500 * time.Millisecond
	defaultBatchSize  = 50
	defaultBatchDelay = 300 * time.Millisecond
	defaultCurrency   = "EUR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Magento       MagentoConfig      `yaml:"magento"`
	Voiceflow     VoiceflowConfig    `yaml:"voiceflow"`
	Profile       string             `yaml:"profile"`
	Profiles      []ProfileConfig    `yaml:"profiles"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Database      DatabaseConfig     `yaml:"database"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects level and output format of the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MagentoConfig carries the OAuth1 integration credentials.
type MagentoConfig struct {
	ConsumerKey    string        `yaml:"consumerKey"`
	ConsumerSecret string        `yaml:"consumerSecret"`
	AccessToken    string        `yaml:"accessToken"`
	TokenSecret    string        `yaml:"tokenSecret"`
	Timeout        time.Duration `yaml:"timeout"`
}

// VoiceflowConfig identifies the knowledge base that receives the document.
type VoiceflowConfig struct {
	BaseURL   string        `yaml:"baseUrl"`
	APIKey    string        `yaml:"apiKey"`
	ProjectID string        `yaml:"projectId"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ProfileConfig describes one store view export.
type ProfileConfig struct {
	Name           string            `yaml:"name"`
	ProductsURL    string            `yaml:"productsUrl"`
	StorefrontURL  string            `yaml:"storefrontUrl"`
	MediaURL       string            `yaml:"mediaUrl"`
	Filename       string            `yaml:"filename"`
	Currency       string            `yaml:"currency"`
	LinkTemplate   string            `yaml:"linkTemplate"`
	PageSize       int               `yaml:"pageSize"`
	PageDelay      time.Duration     `yaml:"pageDelay"`
	RequireStock   bool              `yaml:"requireStock"`
	Stock          StockConfig       `yaml:"stock"`
	CategoryLabels map[string]string `yaml:"categoryLabels"`
}

// StockConfig selects where stock levels come from.
type StockConfig struct {
	Mode       string        `yaml:"mode"`
	URL        string        `yaml:"url"`
	Warehouse  string        `yaml:"warehouse"`
	BatchSize  int           `yaml:"batchSize"`
	BatchDelay time.Duration `yaml:"batchDelay"`
}

// DatabaseConfig describes the Postgres run history sink.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// MetricsConfig points at an optional Prometheus Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgatewayUrl"`
}

// SchedulerConfig defines when the sync should run in schedule mode.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIBase  string `yaml:"apiBase"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Load reads a .env file and YAML configuration (if present) and applies
// environment overrides.
func Load() Config {
	return LoadFile("")
}

// LoadFile is Load with an explicit YAML path; an empty path falls back to
// CATALOGSYNC_CONFIG.
func LoadFile(path string) Config {
	loadEnvFile()

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Profiles) == 0 {
		cfg.Profiles = defaultConfig().Profiles
	}
	for i := range cfg.Profiles {
		cfg.Profiles[i] = cfg.Profiles[i].withDefaults()
	}

	return cfg
}

func loadEnvFile() {
	path := os.Getenv(envFileEnv)
	if path == "" {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: cannot load %s: %v", path, err)
	}
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env string
		dst *string
	}{
		{profileEnv, &c.Profile},
		{logLevelEnv, &c.Logging.Level},
		{consumerKeyEnv, &c.Magento.ConsumerKey},
		{consumerSecretEnv, &c.Magento.ConsumerSecret},
		{accessTokenEnv, &c.Magento.AccessToken},
		{tokenSecretEnv, &c.Magento.TokenSecret},
		{voiceflowAPIKeyEnv, &c.Voiceflow.APIKey},
		{voiceflowProjEnv, &c.Voiceflow.ProjectID},
		{databaseDSNEnv, &c.Database.DSN},
		{telegramTokenEnv, &c.Notifications.Telegram.BotToken},
		{telegramChatIDEnv, &c.Notifications.Telegram.ChatID},
		{pushgatewayEnv, &c.Metrics.PushgatewayURL},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

// ActiveProfile returns the profile selected by name in the configuration.
func (c Config) ActiveProfile() (ProfileConfig, error) {
	return c.ProfileByName(c.Profile)
}

// ProfileByName looks up a profile; an empty name selects the default one.
func (c Config) ProfileByName(name string) (ProfileConfig, error) {
	if name == "" {
		name = defaultProfile
	}
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return ProfileConfig{}, fmt.Errorf("%w: unknown profile %q", domain.ErrConfiguration, name)
}

// ProfileNames lists the configured profiles in file order.
func (c Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

// Validate checks that credentials are present and the active profile is usable.
// publish=false skips the knowledge-base credentials.
func (c Config) Validate(publish bool) error {
	type requirement struct {
		env   string
		value string
	}
	required := []requirement{
		{consumerKeyEnv, c.Magento.ConsumerKey},
		{consumerSecretEnv, c.Magento.ConsumerSecret},
		{accessTokenEnv, c.Magento.AccessToken},
		{tokenSecretEnv, c.Magento.TokenSecret},
	}
	if publish {
		required = append(required,
			requirement{voiceflowAPIKeyEnv, c.Voiceflow.APIKey},
			requirement{voiceflowProjEnv, c.Voiceflow.ProjectID},
		)
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrConfiguration, strings.Join(missing, ", "))
	}

	profile, err := c.ActiveProfile()
	if err != nil {
		return err
	}
	return profile.Validate()
}

// Validate checks the profile for contradictory or missing settings.
func (p ProfileConfig) Validate() error {
	if p.ProductsURL == "" {
		return fmt.Errorf("%w: profile %s has no productsUrl", domain.ErrConfiguration, p.Name)
	}
	if p.Filename == "" {
		return fmt.Errorf("%w: profile %s has no filename", domain.ErrConfiguration, p.Name)
	}

	switch p.Stock.Mode {
	case StockNone:
		if p.RequireStock {
			return fmt.Errorf("%w: profile %s requires stock but stock mode is none", domain.ErrConfiguration, p.Name)
		}
	case StockEmbedded:
	case StockSourceItems:
		if p.Stock.URL == "" {
			return fmt.Errorf("%w: profile %s uses source-items without stock url", domain.ErrConfiguration, p.Name)
		}
	default:
		return fmt.Errorf("%w: profile %s has unknown stock mode %q", domain.ErrConfiguration, p.Name, p.Stock.Mode)
	}
	return nil
}

// TrackStock reports whether the profile loads stock at all.
func (p ProfileConfig) TrackStock() bool {
	return p.Stock.Mode != StockNone
}

func (p ProfileConfig) withDefaults() ProfileConfig {
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageDelay <= 0 {
		p.PageDelay = defaultPageDelay
	}
	if p.Stock.Mode == "" {
		p.Stock.Mode = StockNone
	}
	if p.Stock.BatchSize <= 0 {
		p.Stock.BatchSize = defaultBatchSize
	}
	if p.Stock.BatchDelay <= 0 {
		p.Stock.BatchDelay = defaultBatchDelay
	}
	return p
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Magento.ConsumerKey != "" {
		base.Magento.ConsumerKey = override.Magento.ConsumerKey
	}
	if override.Magento.ConsumerSecret != "" {
		base.Magento.ConsumerSecret = override.Magento.ConsumerSecret
	}
	if override.Magento.AccessToken != "" {
		base.Magento.AccessToken = override.Magento.AccessToken
	}
	if override.Magento.TokenSecret != "" {
		base.Magento.TokenSecret = override.Magento.TokenSecret
	}
	if override.Magento.Timeout > 0 {
		base.Magento.Timeout = override.Magento.Timeout
	}

	if override.Voiceflow.BaseURL != "" {
		base.Voiceflow.BaseURL = override.Voiceflow.BaseURL
	}
	if override.Voiceflow.APIKey != "" {
		base.Voiceflow.APIKey = override.Voiceflow.APIKey
	}
	if override.Voiceflow.ProjectID != "" {
		base.Voiceflow.ProjectID = override.Voiceflow.ProjectID
	}
	if override.Voiceflow.Timeout > 0 {
		base.Voiceflow.Timeout = override.Voiceflow.Timeout
	}

	if override.Profile != "" {
		base.Profile = override.Profile
	}
	if len(override.Profiles) > 0 {
		base.Profiles = override.Profiles
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}
	if override.Metrics.PushgatewayURL != "" {
		base.Metrics = override.Metrics
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.APIBase != "" {
		base.Notifications.Telegram.APIBase = override.Notifications.Telegram.APIBase
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Magento:   MagentoConfig{Timeout: 30 * time.Second},
		Voiceflow: VoiceflowConfig{BaseURL: "https://api.voiceflow.com", Timeout: 60 * time.Second},
		Profile:   defaultProfile,
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Profiles: []ProfileConfig{
			{
				Name:          defaultProfile,
				ProductsURL:   "https://clausporto.com/en/rest/V1/products",
				StorefrontURL: "https://clausporto.com/en/",
				MediaURL:      "https://clausporto.com/media/catalog/product",
				Filename:      "claus_catalogo_en.txt",
				Currency:      defaultCurrency,
				PageSize:      defaultPageSize,
				PageDelay:     defaultPageDelay,
				RequireStock:  true,
				Stock: StockConfig{
					Mode:       StockSourceItems,
					URL:        "https://clausporto.com/index.php/rest/en/V1/inventory/source-items",
					Warehouse:  "warehouse_pt",
					BatchSize:  defaultBatchSize,
					BatchDelay: defaultBatchDelay,
				},
			},
		},
	}
}
