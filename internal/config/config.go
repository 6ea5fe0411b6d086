package config

import "strings"

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// StorageConfig holds the SQLite datastore settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// OpenAIConfig holds the OpenAI provider credentials.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// AnthropicConfig holds the Anthropic provider credentials.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ProvidersConfig groups inference providers. Default names the provider used
// when a brand does not configure one.
type ProvidersConfig struct {
	Default   string          `mapstructure:"default"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	RateRPS   float64         `mapstructure:"rate_rps"`
	RateBurst int             `mapstructure:"rate_burst"`
}

// SourceCredentials holds global per-source credentials; per-brand policy
// (subreddits, tags, feeds) lives in the stored DiscoveryConfig instead.
type SourceCredentials struct {
	ForumBaseURL     string `mapstructure:"forum_base_url"`
	ForumUserAgent   string `mapstructure:"forum_user_agent"`
	VideoAPIKey      string `mapstructure:"video_api_key"`
	VideoBaseURL     string `mapstructure:"video_base_url"`
	MicroblogToken   string `mapstructure:"microblog_token"`
	MicroblogBaseURL string `mapstructure:"microblog_base_url"`
	KeywordsBaseURL  string `mapstructure:"keywords_base_url"`
	KeywordsAPIKey   string `mapstructure:"keywords_api_key"`
	QnABaseURL       string `mapstructure:"qna_base_url"`
	QnAKey           string `mapstructure:"qna_key"`
}

// DiscoveryTuning bounds the pipeline's concurrency and dedup behavior.
type DiscoveryTuning struct {
	EnrichmentWorkers  int     `mapstructure:"enrichment_workers"`
	DuplicateThreshold float64 `mapstructure:"duplicate_threshold"`
	RecentSampleSize   int     `mapstructure:"recent_sample_size"`
	ExportDir          string  `mapstructure:"export_dir"`
}

// BrandConfig describes one brand the pipeline discovers ideas for.
type BrandConfig struct {
	ID       string   `mapstructure:"id"`
	Name     string   `mapstructure:"name"`
	Voice    string   `mapstructure:"voice"`
	Audience string   `mapstructure:"audience"`
	Topics   []string `mapstructure:"topics"`
	Provider string   `mapstructure:"provider"` // overrides providers.default
	Model    string   `mapstructure:"model"`
	Schedule string   `mapstructure:"schedule"` // cron expression for serve
}

// Config is the top-level configuration structure.
type Config struct {
	App       AppConfig         `mapstructure:"app"`
	Storage   StorageConfig     `mapstructure:"storage"`
	Redis     RedisConfig       `mapstructure:"redis"`
	Providers ProvidersConfig   `mapstructure:"providers"`
	Sources   SourceCredentials `mapstructure:"sources"`
	Discovery DiscoveryTuning   `mapstructure:"discovery"`
	Brands    []BrandConfig     `mapstructure:"brands"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "./ideascout.db"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Providers.Default == "" {
		c.Providers.Default = "openai"
	}
	if c.Providers.RateRPS == 0 {
		c.Providers.RateRPS = 2
	}
	if c.Providers.RateBurst == 0 {
		c.Providers.RateBurst = 4
	}
	if c.Sources.ForumBaseURL == "" {
		c.Sources.ForumBaseURL = "https://www.reddit.com"
	}
	if c.Sources.ForumUserAgent == "" {
		c.Sources.ForumUserAgent = "ideascout/1.0"
	}
	if c.Sources.VideoBaseURL == "" {
		c.Sources.VideoBaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if c.Sources.MicroblogBaseURL == "" {
		c.Sources.MicroblogBaseURL = "https://api.twitter.com/2"
	}
	if c.Sources.QnABaseURL == "" {
		c.Sources.QnABaseURL = "https://api.stackexchange.com/2.3"
	}
	if c.Discovery.EnrichmentWorkers <= 0 {
		c.Discovery.EnrichmentWorkers = 4
	}
	if c.Discovery.DuplicateThreshold <= 0 {
		c.Discovery.DuplicateThreshold = 85
	}
	if c.Discovery.RecentSampleSize <= 0 {
		c.Discovery.RecentSampleSize = 50
	}
	if c.Discovery.ExportDir == "" {
		c.Discovery.ExportDir = "./out"
	}
	for i := range c.Brands {
		b := &c.Brands[i]
		if b.Name == "" {
			b.Name = b.ID
		}
		if b.Schedule == "" {
			b.Schedule = "0 */6 * * *" // every six hours
		}
	}
}

// Brand looks up a configured brand by id.
func (c Config) Brand(id string) (BrandConfig, bool) {
	id = strings.TrimSpace(id)
	for _, b := range c.Brands {
		if b.ID == id {
			return b, true
		}
	}
	return BrandConfig{}, false
}
