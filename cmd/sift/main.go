package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sift"
	"github.com/fwojciec/sift/badger"
	"github.com/fwojciec/sift/config"
	"github.com/fwojciec/sift/crawl"
	"github.com/fwojciec/sift/extract"
	"github.com/fwojciec/sift/featurehash"
	"github.com/fwojciec/sift/fs"
	"github.com/fwojciec/sift/gemini"
	"github.com/fwojciec/sift/goquery"
	sifthttp "github.com/fwojciec/sift/http"
	"github.com/fwojciec/sift/openai"
	siftprom "github.com/fwojciec/sift/prometheus"
	"github.com/fwojciec/sift/robotstxt"
	"github.com/fwojciec/sift/search"
	siftslog "github.com/fwojciec/sift/slog"
	"github.com/fwojciec/sift/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Resources opened by Run and released by Close.
	Fetcher     *sifthttp.Fetcher
	Checkpoints *badger.CheckpointStore
	DB          *sqlite.DB

	metricsServer *http.Server
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases everything Run opened. Run calls it before returning.
func (m *Main) Close() error {
	var errs []error
	if m.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, m.metricsServer.Shutdown(ctx))
		m.metricsServer = nil
	}
	if m.Fetcher != nil {
		errs = append(errs, m.Fetcher.Close())
		m.Fetcher = nil
	}
	if m.Checkpoints != nil {
		errs = append(errs, m.Checkpoints.Close())
		m.Checkpoints = nil
	}
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
		m.DB = nil
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sift"),
		kong.Description("Crawl documentation sites and search them offline."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		fmt.Fprintln(stderr, "error: no command specified. Run 'sift --help' to see available commands.")
		return sift.Errorf(sift.EINVALID, "no command specified")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}
	defer m.Close()

	level, _ := cfg.LogLevel()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Config = cfg
	deps.Logger = logger
	deps.Datasets = fs.NewDatasetService(cfg.Storage.OutputDir, logger)

	var metrics *siftprom.Metrics
	if cfg.Metrics.Addr != "" {
		metrics, err = m.serveMetrics(cfg.Metrics.Addr, logger)
		if err != nil {
			return err
		}
		deps.Observe = metrics.ObserveProgress
	}

	switch strings.Fields(kongCtx.Command())[0] {
	case "crawl":
		if err := m.wireCrawler(deps, metrics, cli.Crawl.Fixed); err != nil {
			fmt.Fprintf(stderr, "error: %s\n", sift.ErrorMessage(err))
			return err
		}
	case "search":
		if err := m.wireSearch(deps, metrics, cli.Search.Mode); err != nil {
			fmt.Fprintf(stderr, "error: %s\n", sift.ErrorMessage(err))
			return err
		}
	case "cache":
		if err := m.openCache(cfg.Storage.CachePath); err != nil {
			fmt.Fprintf(stderr, "error: %s\n", sift.ErrorMessage(err))
			return err
		}
		deps.Cache = sqlite.NewEmbeddingCache(m.DB)
	case "checkpoints":
		store, err := badger.Open(cfg.Storage.CheckpointDir, logger)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", sift.ErrorMessage(err))
			return err
		}
		m.Checkpoints = store
		deps.Checkpoints = store
	}

	return kongCtx.Run(deps)
}

// loadConfig reads the config file and applies global flags on top.
func loadConfig(cli *CLI) (config.Config, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return config.Config{}, err
	}
	if cli.DataDir != "" {
		cfg.Storage.OutputDir = cli.DataDir
		cfg.Storage.CachePath = filepath.Join(cli.DataDir, "embeddings.db")
		cfg.Storage.CheckpointDir = filepath.Join(cli.DataDir, "checkpoints")
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
		if _, err := cfg.LogLevel(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// serveMetrics exposes /metrics on addr until Close.
func (m *Main) serveMetrics(addr string, logger *slog.Logger) (*siftprom.Metrics, error) {
	metrics, err := siftprom.NewMetrics(nil)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	m.metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func(srv *http.Server) {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}(m.metricsServer)
	logger.Info("serving metrics", "addr", addr)
	return metrics, nil
}

// wireCrawler builds the crawl pipeline from the configuration.
func (m *Main) wireCrawler(deps *Dependencies, metrics *siftprom.Metrics, fixed bool) error {
	cfg := deps.Config
	logger := deps.Logger
	policy := cfg.CrawlPolicy()

	m.Fetcher = sifthttp.NewFetcher(
		sifthttp.WithUserAgent(policy.UserAgent),
		sifthttp.WithTimeout(policy.Timeout),
	)
	var fetcher sift.Fetcher = siftslog.NewLoggingFetcher(m.Fetcher, logger)
	if metrics != nil {
		fetcher = siftprom.NewFetcher(fetcher, metrics)
	}

	var robots sift.RobotsPolicy = robotstxt.AllowAll{}
	if policy.RespectRobots {
		robots = robotstxt.NewCache(m.Fetcher.Client(), robotstxt.WithUserAgent(policy.UserAgent))
	}

	extractor, err := extract.NewDefaultExtractor(cfg.Extract.Engine, extract.WithMinContentLength(policy.MinContentLength))
	if err != nil {
		return err
	}

	var checkpoints sift.CheckpointStore
	if cfg.Crawl.Checkpoints {
		store, err := badger.Open(cfg.Storage.CheckpointDir, logger)
		if err != nil {
			return err
		}
		m.Checkpoints = store
		checkpoints = store
	}

	deps.Crawler = &crawl.Crawler{
		Validator: sift.NewValidator(logger),
		Estimator: &crawl.Estimator{
			Fetcher:    fetcher,
			Links:      goquery.NewLinkExtractor(),
			Robots:     robots,
			Sitemaps:   siftslog.NewLoggingSitemapService(sifthttp.NewSitemapService(m.Fetcher.Client()), logger),
			SampleSize: cfg.Crawl.SamplePages,
		},
		Executor: &crawl.Executor{
			Fetcher:     fetcher,
			Extractor:   extractor,
			Robots:      robots,
			Checkpoints: checkpoints,
			Logger:      logger,
		},
		Writer:   siftslog.NewLoggingResultWriter(fs.NewResultWriter(cfg.Storage.OutputDir), logger),
		Logger:   logger,
		Base:     policy,
		Tiers:    cfg.TierTable(),
		Adaptive: cfg.Crawl.Adaptive && !fixed,
	}
	return nil
}

// wireSearch builds the embedder, cache and search engine.
func (m *Main) wireSearch(deps *Dependencies, metrics *siftprom.Metrics, mode string) error {
	cfg := deps.Config
	logger := deps.Logger

	embedder, err := newEmbedder(deps.Ctx, cfg.Embedding)
	if err != nil {
		return err
	}

	opts := []search.Option{
		search.WithChunker(cfg.Chunker()),
		search.WithLogger(logger),
		search.WithWeights(cfg.Search.SemanticWeight, cfg.Search.KeywordWeight),
		search.WithMinScore(cfg.Search.SimilarityThreshold),
		search.WithMaxFeatures(cfg.Search.MaxFeatures),
	}
	if cfg.Embedding.Cache {
		if err := m.openCache(cfg.Storage.CachePath); err != nil {
			return err
		}
		opts = append(opts, search.WithCache(sqlite.NewEmbeddingCache(m.DB)))
	}
	if cfg.Embedding.Provider == config.ProviderHash && mode != string(sift.SearchKeyword) {
		logger.Warn("semantic scores come from the hash embedder and only reflect shared terms",
			"provider", cfg.Embedding.Provider,
			"mode", mode,
		)
	}

	engine := search.NewEngine(siftslog.NewLoggingEmbedder(embedder, logger), opts...)
	deps.Index = engine

	var searcher sift.Searcher = siftslog.NewLoggingSearcher(engine, logger)
	if metrics != nil {
		searcher = siftprom.NewSearcher(searcher, metrics)
	}
	deps.Searcher = searcher
	return nil
}

// openCache opens the embedding cache database at path.
func (m *Main) openCache(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	m.DB = sqlite.NewDB(path)
	return m.DB.Open()
}

// newEmbedder returns the embedder selected by the provider setting.
func newEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (sift.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		return gemini.NewEmbedder(client, cfg.Model), nil
	case config.ProviderOpenAI:
		return openai.NewEmbedder(openai.Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		})
	default:
		return featurehash.NewEmbedder(cfg.Dimensions), nil
	}
}
