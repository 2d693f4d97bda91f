package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone       = "UTC"
	placeholderGeminiKey  = "YOUR_API_KEY_HERE"
	configPathEnv         = "ARTICLE_ENRICHER_CONFIG"
	logLevelEnv           = "LOG_LEVEL"
	databaseDriverEnv     = "DATABASE_DRIVER"
	databaseDSNEnv        = "DATABASE_DSN"
	articleAPIURLEnv      = "ARTICLE_API_URL"
	sourceListingURLEnv   = "SOURCE_LISTING_URL"
	generationProviderEnv = "GENERATION_PROVIDER"
	geminiAPIKeyEnv       = "GEMINI_API_KEY"
	geminiModelEnv        = "GEMINI_MODEL"
	openAIAPIKeyEnv       = "OPENAI_API_KEY"
	telegramTokenEnv      = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv     = "TELEGRAM_CHAT_ID"
)

// Storage drivers understood by the application wiring.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
	DriverHTTP     = "http"
)

// Generation providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Storage       StorageConfig      `yaml:"storage"`
	Fetcher       FetcherConfig      `yaml:"fetcher"`
	Source        SourceConfig       `yaml:"source"`
	Search        SearchConfig       `yaml:"search"`
	Scraper       ScraperConfig      `yaml:"scraper"`
	Browser       BrowserConfig      `yaml:"browser"`
	Generation    GenerationConfig   `yaml:"generation"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects the minimum log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig picks the persistence adapter. Driver "http" talks to the article REST backend at APIURL.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	APIURL string `yaml:"apiUrl"`
}

// FetcherConfig controls plain HTTP page retrieval.
type FetcherConfig struct {
	Timeout            time.Duration `yaml:"timeout"`
	InsecureSkipVerify bool          `yaml:"insecureSkipVerify"`
	UserAgent          string        `yaml:"userAgent"`
}

// SourceConfig describes the blog being ingested.
type SourceConfig struct {
	ListingURL string          `yaml:"listingUrl"`
	Quota      int             `yaml:"quota"`
	Selectors  SelectorsConfig `yaml:"selectors"`
}

// SelectorsConfig holds the CSS selectors used by the document parser.
type SelectorsConfig struct {
	PageNumber   string   `yaml:"pageNumber"`
	ListingItem  string   `yaml:"listingItem"`
	ListingTitle string   `yaml:"listingTitle"`
	Content      []string `yaml:"content"`
	Paragraph    string   `yaml:"paragraph"`
}

// SearchConfig drives reference discovery through a search engine result page.
type SearchConfig struct {
	EngineURL     string        `yaml:"engineUrl"`
	UserAgent     string        `yaml:"userAgent"`
	ExcludedHosts []string      `yaml:"excludedHosts"`
	MaxResults    int           `yaml:"maxResults"`
	Fallback      []string      `yaml:"fallback"`
	Timeout       time.Duration `yaml:"timeout"`
}

// ScraperConfig bounds reference extraction.
type ScraperConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	MaxChars int           `yaml:"maxChars"`
}

// BrowserConfig configures the headless Chrome sessions.
type BrowserConfig struct {
	Headless  bool   `yaml:"headless"`
	NoSandbox bool   `yaml:"noSandbox"`
	ExecPath  string `yaml:"execPath"`
}

// GenerationConfig selects and configures the text-generation provider.
type GenerationConfig struct {
	Provider string       `yaml:"provider"`
	Gemini   GeminiConfig `yaml:"gemini"`
	OpenAI   OpenAIConfig `yaml:"openai"`
}

// GeminiConfig defines how to contact the Gemini API.
type GeminiConfig struct {
	APIKey  string        `yaml:"apiKey"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// OpenAIConfig defines how to contact an OpenAI-compatible chat completions API.
type OpenAIConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
}

// HasCredentials reports whether the selected provider can be called.
func (g GenerationConfig) HasCredentials() bool {
	switch g.Provider {
	case ProviderOpenAI:
		return strings.TrimSpace(g.OpenAI.APIKey) != ""
	default:
		key := strings.TrimSpace(g.Gemini.APIKey)
		return key != "" && key != placeholderGeminiKey
	}
}

// SchedulerConfig defines when the runs execute in serve mode.
type SchedulerConfig struct {
	IngestCron string         `yaml:"ingestCron"`
	EnrichCron string         `yaml:"enrichCron"`
	Timezone   string         `yaml:"timezone"`
	location   *time.Location `yaml:"-"`
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
}

// switchOverrides records which default-true booleans a config file sets
// explicitly, since a plain bool cannot tell "false" from "absent".
type switchOverrides struct {
	Fetcher struct {
		InsecureSkipVerify *bool `yaml:"insecureSkipVerify"`
	} `yaml:"fetcher"`
	Browser struct {
		Headless  *bool `yaml:"headless"`
		NoSandbox *bool `yaml:"noSandbox"`
	} `yaml:"browser"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var (
				fileCfg  Config
				switches switchOverrides
			)
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else if err := yaml.Unmarshal(raw, &switches); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg, switches)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(articleAPIURLEnv); v != "" {
		c.Storage.APIURL = v
	}

	if v := os.Getenv(sourceListingURLEnv); v != "" {
		c.Source.ListingURL = v
	}

	if v := os.Getenv(generationProviderEnv); v != "" {
		c.Generation.Provider = strings.ToLower(v)
	}
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Generation.Gemini.APIKey = v
	}
	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Generation.Gemini.Model = v
	}
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.Generation.OpenAI.APIKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
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

func mergeConfig(base, override Config, switches switchOverrides) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Storage.Driver != "" {
		base.Storage.Driver = override.Storage.Driver
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}
	if override.Storage.APIURL != "" {
		base.Storage.APIURL = override.Storage.APIURL
	}

	if override.Fetcher.Timeout > 0 {
		base.Fetcher.Timeout = override.Fetcher.Timeout
	}
	if switches.Fetcher.InsecureSkipVerify != nil {
		base.Fetcher.InsecureSkipVerify = *switches.Fetcher.InsecureSkipVerify
	}
	if override.Fetcher.UserAgent != "" {
		base.Fetcher.UserAgent = override.Fetcher.UserAgent
	}

	if override.Source.ListingURL != "" {
		base.Source.ListingURL = override.Source.ListingURL
	}
	if override.Source.Quota > 0 {
		base.Source.Quota = override.Source.Quota
	}
	base.Source.Selectors = mergeSelectors(base.Source.Selectors, override.Source.Selectors)

	if override.Search.EngineURL != "" {
		base.Search.EngineURL = override.Search.EngineURL
	}
	if override.Search.UserAgent != "" {
		base.Search.UserAgent = override.Search.UserAgent
	}
	if len(override.Search.ExcludedHosts) > 0 {
		base.Search.ExcludedHosts = override.Search.ExcludedHosts
	}
	if override.Search.MaxResults > 0 {
		base.Search.MaxResults = override.Search.MaxResults
	}
	if len(override.Search.Fallback) > 0 {
		base.Search.Fallback = override.Search.Fallback
	}
	if override.Search.Timeout > 0 {
		base.Search.Timeout = override.Search.Timeout
	}

	if override.Scraper.Timeout > 0 {
		base.Scraper.Timeout = override.Scraper.Timeout
	}
	if override.Scraper.MaxChars > 0 {
		base.Scraper.MaxChars = override.Scraper.MaxChars
	}

	if switches.Browser.Headless != nil {
		base.Browser.Headless = *switches.Browser.Headless
	}
	if switches.Browser.NoSandbox != nil {
		base.Browser.NoSandbox = *switches.Browser.NoSandbox
	}
	if override.Browser.ExecPath != "" {
		base.Browser.ExecPath = override.Browser.ExecPath
	}

	if override.Generation.Provider != "" {
		base.Generation.Provider = strings.ToLower(override.Generation.Provider)
	}
	if override.Generation.Gemini.APIKey != "" {
		base.Generation.Gemini.APIKey = override.Generation.Gemini.APIKey
	}
	if override.Generation.Gemini.Model != "" {
		base.Generation.Gemini.Model = override.Generation.Gemini.Model
	}
	if override.Generation.Gemini.Timeout > 0 {
		base.Generation.Gemini.Timeout = override.Generation.Gemini.Timeout
	}
	if override.Generation.OpenAI.Endpoint != "" {
		base.Generation.OpenAI.Endpoint = override.Generation.OpenAI.Endpoint
	}
	if override.Generation.OpenAI.Model != "" {
		base.Generation.OpenAI.Model = override.Generation.OpenAI.Model
	}
	if override.Generation.OpenAI.APIKey != "" {
		base.Generation.OpenAI.APIKey = override.Generation.OpenAI.APIKey
	}
	if override.Generation.OpenAI.SystemPrompt != "" {
		base.Generation.OpenAI.SystemPrompt = override.Generation.OpenAI.SystemPrompt
	}
	if override.Generation.OpenAI.Timeout > 0 {
		base.Generation.OpenAI.Timeout = override.Generation.OpenAI.Timeout
	}

	if override.Scheduler.IngestCron != "" {
		base.Scheduler.IngestCron = override.Scheduler.IngestCron
	}
	if override.Scheduler.EnrichCron != "" {
		base.Scheduler.EnrichCron = override.Scheduler.EnrichCron
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func mergeSelectors(base, override SelectorsConfig) SelectorsConfig {
	if override.PageNumber != "" {
		base.PageNumber = override.PageNumber
	}
	if override.ListingItem != "" {
		base.ListingItem = override.ListingItem
	}
	if override.ListingTitle != "" {
		base.ListingTitle = override.ListingTitle
	}
	if len(override.Content) > 0 {
		base.Content = override.Content
	}
	if override.Paragraph != "" {
		base.Paragraph = override.Paragraph
	}
	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DSN:    "articles.db",
			APIURL: "http://127.0.0.1:8080/api",
		},
		Fetcher: FetcherConfig{
			Timeout:            30 * time.Second,
			InsecureSkipVerify: true,
			UserAgent:          "ArticleEnricher/1.0",
		},
		Source: SourceConfig{
			ListingURL: "https://beyondchats.com/blogs/",
			Quota:      5,
			Selectors: SelectorsConfig{
				PageNumber:   ".page-numbers",
				ListingItem:  "article",
				ListingTitle: "h2 a",
				Content:      []string{".entry-content", "article"},
				Paragraph:    "p",
			},
		},
		Search: SearchConfig{
			EngineURL:     "https://www.google.com/search",
			UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			ExcludedHosts: []string{"google.", "youtube."},
			MaxResults:    2,
			Fallback: []string{
				"https://en.wikipedia.org/wiki/Chatbot",
				"https://www.ibm.com/topics/chatbots",
			},
			Timeout: 30 * time.Second,
		},
		Scraper: ScraperConfig{
			Timeout:  30 * time.Second,
			MaxChars: 5000,
		},
		Browser: BrowserConfig{
			Headless:  true,
			NoSandbox: true,
		},
		Generation: GenerationConfig{
			Provider: ProviderGemini,
			Gemini: GeminiConfig{
				Model:   "gemini-2.5-flash",
				Timeout: 2 * time.Minute,
			},
			OpenAI: OpenAIConfig{
				Endpoint:     "https://api.openai.com/v1/chat/completions",
				Model:        "gpt-4o-mini",
				SystemPrompt: "You are an expert editor.",
				Timeout:      2 * time.Minute,
			},
		},
		Scheduler: SchedulerConfig{
			IngestCron: "0 6 * * *",
			EnrichCron: "30 6 * * *",
			Timezone:   defaultTimezone,
			location:   tz,
		},
	}
}
