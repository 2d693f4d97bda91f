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
	t.Setenv(configPathEnv, "")
	t.Setenv(geminiAPIKeyEnv, "")

	cfg := Load()

	assert.Equal(t, "https://beyondchats.com/blogs/", cfg.Source.ListingURL)
	assert.Equal(t, 5, cfg.Source.Quota)
	assert.Equal(t, []string{".entry-content", "article"}, cfg.Source.Selectors.Content)
	assert.Equal(t, 2, cfg.Search.MaxResults)
	assert.Len(t, cfg.Search.Fallback, 2)
	assert.Equal(t, 5000, cfg.Scraper.MaxChars)
	assert.Equal(t, 30*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, "gemini-2.5-flash", cfg.Generation.Gemini.Model)
	assert.False(t, cfg.Generation.HasCredentials())
	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
logging:
  level: debug
storage:
  driver: postgres
  dsn: postgres://file
source:
  listingUrl: https://blog.example.org/
  quota: 3
  selectors:
    listingTitle: h3 a
search:
  timeout: 10s
scheduler:
  timezone: Europe/Berlin
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "postgres://env")
	t.Setenv(geminiAPIKeyEnv, "secret")

	cfg := Load()

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://env", cfg.Storage.DSN)
	assert.Equal(t, "https://blog.example.org/", cfg.Source.ListingURL)
	assert.Equal(t, 3, cfg.Source.Quota)
	assert.Equal(t, "h3 a", cfg.Source.Selectors.ListingTitle)
	assert.Equal(t, "article", cfg.Source.Selectors.ListingItem, "unset selectors keep defaults")
	assert.Equal(t, 10*time.Second, cfg.Search.Timeout)
	assert.Equal(t, "Europe/Berlin", cfg.Scheduler.Location().String())
	assert.True(t, cfg.Generation.HasCredentials())
}

func TestLoadKeepsBrowserDefaultsForPartialSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
browser:
  execPath: /usr/bin/chromium
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	t.Setenv(configPathEnv, path)

	cfg := Load()

	assert.Equal(t, "/usr/bin/chromium", cfg.Browser.ExecPath)
	assert.True(t, cfg.Browser.Headless)
	assert.True(t, cfg.Browser.NoSandbox)
	assert.True(t, cfg.Fetcher.InsecureSkipVerify)
}

func TestLoadHonoursExplicitFalseSwitches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
fetcher:
  insecureSkipVerify: false
browser:
  headless: false
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	t.Setenv(configPathEnv, path)

	cfg := Load()

	assert.False(t, cfg.Browser.Headless)
	assert.True(t, cfg.Browser.NoSandbox, "unset switch keeps its default")
	assert.Empty(t, cfg.Browser.ExecPath)
	assert.False(t, cfg.Fetcher.InsecureSkipVerify)
}

func TestLoadIgnoresUnreadableFile(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
}

func TestHasCredentials(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  GenerationConfig
		want bool
	}{
		{name: "gemini empty", cfg: GenerationConfig{Provider: ProviderGemini}, want: false},
		{name: "gemini placeholder", cfg: GenerationConfig{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "YOUR_API_KEY_HERE"}}, want: false},
		{name: "gemini key", cfg: GenerationConfig{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "k"}}, want: true},
		{name: "openai empty", cfg: GenerationConfig{Provider: ProviderOpenAI, Gemini: GeminiConfig{APIKey: "k"}}, want: false},
		{name: "openai key", cfg: GenerationConfig{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "k"}}, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.cfg.HasCredentials())
		})
	}
}
