// Package config loads sift settings with viper. Values are resolved from
// defaults, an optional config file, then SIFT_* environment variables.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/sift"
	"github.com/fwojciec/sift/crawl"
	"github.com/fwojciec/sift/extract"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SIFT_CRAWL_MAX_PAGES.
const EnvPrefix = "SIFT"

// Embedding providers.
const (
	ProviderHash   = "hash"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config captures every tunable.
type Config struct {
	Crawl     CrawlConfig     `mapstructure:"crawl"`
	Tiers     crawl.TierTable `mapstructure:"tiers"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Search    SearchConfig    `mapstructure:"search"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// CrawlConfig is the operator policy the optimizer starts from.
type CrawlConfig struct {
	MaxPages           int           `mapstructure:"max_pages"`
	MaxDepth           int           `mapstructure:"max_depth"`
	Delay              time.Duration `mapstructure:"delay"`
	Timeout            time.Duration `mapstructure:"timeout"`
	RespectRobots      bool          `mapstructure:"respect_robots"`
	Concurrency        int           `mapstructure:"concurrency"`
	BatchSize          int           `mapstructure:"batch_size"`
	CheckpointInterval int           `mapstructure:"checkpoint_interval"`
	MinContentLength   int           `mapstructure:"min_content_length"`
	UserAgent          string        `mapstructure:"user_agent"`
	Adaptive           bool          `mapstructure:"adaptive"`
	SamplePages        int           `mapstructure:"sample_pages"`
	Checkpoints        bool          `mapstructure:"checkpoints"`
}

// ExtractConfig selects the first extraction tier.
type ExtractConfig struct {
	Engine string `mapstructure:"engine"`
}

// SearchConfig tunes chunking and ranking.
type SearchConfig struct {
	ChunkSize           int     `mapstructure:"chunk_size"`
	ChunkOverlap        int     `mapstructure:"chunk_overlap"`
	MaxResults          int     `mapstructure:"max_results"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	SemanticWeight      float64 `mapstructure:"semantic_weight"`
	KeywordWeight       float64 `mapstructure:"keyword_weight"`
	MaxFeatures         int     `mapstructure:"max_features"`
}

// EmbeddingConfig selects and configures the embedder.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Dimensions int    `mapstructure:"dimensions"`
	Cache      bool   `mapstructure:"cache"`
}

// StorageConfig locates output and cache files.
type StorageConfig struct {
	OutputDir     string `mapstructure:"output_dir"`
	CachePath     string `mapstructure:"cache_path"`
	CheckpointDir string `mapstructure:"checkpoint_dir"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig enables the metrics endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load builds a Config from defaults, the file at path when non-empty,
// and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, sift.Errorf(sift.EINVALID, "read config: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, sift.Errorf(sift.EINVALID, "unmarshal config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	policy := sift.DefaultCrawlPolicy()
	v.SetDefault("crawl.max_pages", policy.MaxPages)
	v.SetDefault("crawl.max_depth", policy.MaxDepth)
	v.SetDefault("crawl.delay", time.Duration(0))
	v.SetDefault("crawl.timeout", policy.Timeout)
	v.SetDefault("crawl.respect_robots", true)
	v.SetDefault("crawl.concurrency", policy.Concurrency)
	v.SetDefault("crawl.batch_size", policy.BatchSize)
	v.SetDefault("crawl.checkpoint_interval", policy.CheckpointInterval)
	v.SetDefault("crawl.min_content_length", policy.MinContentLength)
	v.SetDefault("crawl.user_agent", policy.UserAgent)
	v.SetDefault("crawl.adaptive", true)
	v.SetDefault("crawl.sample_pages", crawl.DefaultSampleSize)
	v.SetDefault("crawl.checkpoints", true)

	tiers := crawl.DefaultTierTable()
	v.SetDefault("tiers.small_threshold", tiers.SmallThreshold)
	v.SetDefault("tiers.large_threshold", tiers.LargeThreshold)
	v.SetDefault("tiers.robots_delay_floor", tiers.RobotsDelayFloor)
	for name, tier := range map[string]crawl.Tier{
		"small":  tiers.Small,
		"medium": tiers.Medium,
		"large":  tiers.Large,
	} {
		v.SetDefault("tiers."+name+".concurrency", tier.Concurrency)
		v.SetDefault("tiers."+name+".batch_size", tier.BatchSize)
		v.SetDefault("tiers."+name+".checkpoint_interval", tier.CheckpointInterval)
		v.SetDefault("tiers."+name+".delay", tier.Delay)
	}

	v.SetDefault("extract.engine", extract.EngineTrafilatura)

	chunker := sift.NewChunker()
	v.SetDefault("search.chunk_size", chunker.Size)
	v.SetDefault("search.chunk_overlap", chunker.Overlap)
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.similarity_threshold", 0.0)
	v.SetDefault("search.semantic_weight", 0.7)
	v.SetDefault("search.keyword_weight", 0.3)
	v.SetDefault("search.max_features", 5000)

	v.SetDefault("embedding.provider", ProviderHash)
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.dimensions", 384)
	v.SetDefault("embedding.cache", true)

	v.SetDefault("storage.output_dir", "data")
	v.SetDefault("storage.cache_path", "data/embeddings.db")
	v.SetDefault("storage.checkpoint_dir", "data/checkpoints")

	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.addr", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if err := c.CrawlPolicy().Validate(); err != nil {
		return err
	}
	if c.Crawl.SamplePages <= 0 {
		return sift.Errorf(sift.EINVALID, "crawl.sample_pages must be > 0")
	}
	if c.Tiers.SmallThreshold > c.Tiers.LargeThreshold {
		return sift.Errorf(sift.EINVALID, "tiers.small_threshold must not exceed tiers.large_threshold")
	}
	for name, tier := range map[string]crawl.Tier{"small": c.Tiers.Small, "medium": c.Tiers.Medium, "large": c.Tiers.Large} {
		if tier.Concurrency <= 0 {
			return sift.Errorf(sift.EINVALID, "tiers.%s.concurrency must be > 0", name)
		}
		if tier.Delay < 0 {
			return sift.Errorf(sift.EINVALID, "tiers.%s.delay must not be negative", name)
		}
	}
	switch strings.ToLower(c.Extract.Engine) {
	case extract.EngineTrafilatura, extract.EngineReadability:
	default:
		return sift.Errorf(sift.EINVALID, "unknown extract.engine %q", c.Extract.Engine)
	}
	if err := c.Chunker().Validate(); err != nil {
		return err
	}
	if c.Search.MaxResults <= 0 {
		return sift.Errorf(sift.EINVALID, "search.max_results must be > 0")
	}
	if c.Search.SemanticWeight < 0 || c.Search.KeywordWeight < 0 {
		return sift.Errorf(sift.EINVALID, "search weights must not be negative")
	}
	switch c.Embedding.Provider {
	case ProviderHash:
		if c.Embedding.Dimensions <= 0 {
			return sift.Errorf(sift.EINVALID, "embedding.dimensions must be > 0")
		}
	case ProviderGemini:
		if c.Embedding.APIKey == "" {
			return sift.Errorf(sift.EINVALID, "embedding.api_key must be set for the gemini provider")
		}
	case ProviderOpenAI:
	default:
		return sift.Errorf(sift.EINVALID, "unknown embedding.provider %q", c.Embedding.Provider)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// CrawlPolicy returns the base policy described by the crawl section.
func (c Config) CrawlPolicy() sift.CrawlPolicy {
	return sift.CrawlPolicy{
		MaxPages:           c.Crawl.MaxPages,
		MaxDepth:           c.Crawl.MaxDepth,
		Concurrency:        c.Crawl.Concurrency,
		InterRequestDelay:  c.Crawl.Delay,
		Timeout:            c.Crawl.Timeout,
		BatchSize:          c.Crawl.BatchSize,
		CheckpointInterval: c.Crawl.CheckpointInterval,
		MinContentLength:   c.Crawl.MinContentLength,
		RespectRobots:      c.Crawl.RespectRobots,
		UserAgent:          c.Crawl.UserAgent,
	}
}

// TierTable returns the optimizer tiers.
func (c Config) TierTable() crawl.TierTable {
	return c.Tiers
}

// Chunker returns the chunker described by the search section.
func (c Config) Chunker() *sift.Chunker {
	return &sift.Chunker{Size: c.Search.ChunkSize, Overlap: c.Search.ChunkOverlap}
}

// LogLevel parses log.level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, sift.Errorf(sift.EINVALID, "invalid log.level %q", c.Log.Level)
	}
	return level, nil
}
