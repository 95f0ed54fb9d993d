package i8n

import (
	"context"
	"sync"
	"time"

	"github.com/ZaguanLabs/i8n/cache"
	"github.com/ZaguanLabs/i8n/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// TranslationCache is the interface for translation caching.
type TranslationCache = cache.TranslationCache

const (
	// DefaultTimeout bounds a single backend call.
	DefaultTimeout = 10 * time.Second

	// DefaultConcurrency is the number of parallel lookups in TranslateAll.
	DefaultConcurrency = 8
)

var (
	defaultCacheOnce sync.Once
	defaultCache     *cache.InMemoryCache
)

// DefaultCache returns the process-wide in-memory cache used by every
// Translator that is not given a cache explicitly.
func DefaultCache() *cache.InMemoryCache {
	defaultCacheOnce.Do(func() {
		defaultCache = cache.NewInMemoryCache(0)
	})
	return defaultCache
}

// Translator serves translation lookups from a cache and a backend.
// It is safe for concurrent use.
type Translator struct {
	mu  sync.RWMutex
	cfg *translatorConfig
	sf  singleflight.Group
}

// translatorConfig is the full Translator state replaced by Init.
type translatorConfig struct {
	local       Backend
	remote      RemoteClient
	backend     BackendConfig
	cache       TranslationCache
	defaultTag  string
	cacheTTL    time.Duration
	cacheTTLSet bool
	timeout     time.Duration
	concurrency int
	logger      logrus.FieldLogger
	processors  map[string]ContentProcessor
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*translatorConfig)

// WithBackend sets the backend from a BackendConfig.
func WithBackend(b BackendConfig) TranslatorOption {
	return func(c *translatorConfig) {
		switch b.Kind() {
		case BackendLocal:
			c.local = b.local
		case BackendRemote:
			c.remote = b.remote
		}
	}
}

// WithLocalBackend sets an in-process backend. It conflicts with WithRemoteBackend.
func WithLocalBackend(b Backend) TranslatorOption {
	return WithBackend(LocalBackend(b))
}

// WithRemoteBackend sets a remote client. It conflicts with WithLocalBackend.
func WithRemoteBackend(client RemoteClient) TranslatorOption {
	return WithBackend(RemoteBackend(client))
}

// WithCache sets the translation cache. A nil cache disables caching.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(c *translatorConfig) {
		c.cache = cache
	}
}

// WithDefaultTag sets the tag used when a request has none.
func WithDefaultTag(tag string) TranslatorOption {
	return func(c *translatorConfig) {
		c.defaultTag = tag
	}
}

// WithCacheTTL sets how long backend results stay cached. Zero or less
// keeps them out of the cache.
func WithCacheTTL(ttl time.Duration) TranslatorOption {
	return func(c *translatorConfig) {
		c.cacheTTL = ttl
		c.cacheTTLSet = true
	}
}

// WithTimeout bounds each backend call. Zero disables the bound.
func WithTimeout(timeout time.Duration) TranslatorOption {
	return func(c *translatorConfig) {
		c.timeout = timeout
	}
}

// WithConcurrency sets the number of parallel lookups in TranslateAll.
func WithConcurrency(n int) TranslatorOption {
	return func(c *translatorConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger receiving fallback warnings.
func WithLogger(logger logrus.FieldLogger) TranslatorOption {
	return func(c *translatorConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) TranslatorOption {
	return func(c *translatorConfig) {
		if processor != nil {
			c.processors[processor.ContentType()] = processor
		}
	}
}

// NewTranslator creates a new Translator. It fails only when both a local
// and a remote backend are configured.
func NewTranslator(opts ...TranslatorOption) (*Translator, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Translator{cfg: cfg}, nil
}

// Init replaces the whole configuration. Options not given fall back to
// their defaults. On error the previous configuration is kept.
func (t *Translator) Init(opts ...TranslatorOption) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.cfg = cfg
	t.mu.Unlock()
	return nil
}

func buildConfig(opts []TranslatorOption) (*translatorConfig, error) {
	envTTL, envErr := config.CacheTTLFromEnv()
	if envErr != nil {
		envTTL = config.DefaultCacheTTL
	}

	cfg := &translatorConfig{
		cache:       DefaultCache(),
		cacheTTL:    envTTL,
		timeout:     DefaultTimeout,
		concurrency: DefaultConcurrency,
		logger:      logrus.StandardLogger(),
		processors:  make(map[string]ContentProcessor),
	}

	for _, opt := range opts {
		opt(cfg)
	}
	if envErr != nil && !cfg.cacheTTLSet {
		cfg.logger.WithError(envErr).WithField("cache_ttl", envTTL.String()).
			Warn("Invalid cache TTL in environment, using default")
	}

	switch {
	case cfg.local != nil && cfg.remote != nil:
		return nil, &ConfigurationError{
			Message: "translator initialized with both backends",
			Cause:   ErrConfigurationConflict,
		}
	case cfg.local != nil:
		cfg.backend = LocalBackend(cfg.local)
	case cfg.remote != nil:
		cfg.backend = RemoteBackend(cfg.remote)
	default:
		cfg.backend = NoBackend()
	}

	return cfg, nil
}

func (t *Translator) config() *translatorConfig {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cfg
}

// Source tells where a lookup result came from.
type Source string

const (
	// SourceNone means the sentence was empty and nothing was looked up.
	SourceNone Source = "none"
	// SourceCache means the result was a cache hit.
	SourceCache Source = "cache"
	// SourceBackend means the backend translated the sentence.
	SourceBackend Source = "backend"
	// SourceFallback means the original sentence was returned.
	SourceFallback Source = "fallback"
)

// Result is the outcome of a single lookup.
type Result struct {
	Text   string // Translated text, or the original sentence on fallback
	Source Source
	Key    string // Cache key, empty for SourceNone
	Err    error  // Absorbed error behind a fallback, if any
}

// T translates sentence with the given request options.
func (t *Translator) T(ctx context.Context, sentence string, opts ...RequestOption) string {
	return t.Translate(ctx, NewRequest(sentence, opts...))
}

// Translate returns the translation of req. It never fails: when the
// sentence cannot be translated the original sentence is returned and a
// warning is logged. An empty sentence is returned as is.
func (t *Translator) Translate(ctx context.Context, req TranslationRequest) string {
	return t.Lookup(ctx, req).Text
}

// Lookup translates req and reports where the result came from.
func (t *Translator) Lookup(ctx context.Context, req TranslationRequest) Result {
	if req.Sentence == "" {
		return Result{Source: SourceNone}
	}

	cfg := t.config()
	if req.Tag == "" {
		req.Tag = cfg.defaultTag
	}
	key := BuildCacheKey(req)

	if cfg.cache != nil {
		if cached, ok := cfg.cache.Get(key); ok {
			translationsTotal.WithLabelValues(string(SourceCache)).Inc()
			return Result{Text: cached, Source: SourceCache, Key: key}
		}
	}

	if cfg.backend.Kind() == BackendNone {
		return t.fallback(cfg, req, key, KindBackendUnavailable, ErrBackendUnavailable)
	}

	// Concurrent misses for the same key share one backend call. The call
	// runs detached from any single caller; each caller only gives up on
	// its own context.
	ch := t.sf.DoChan(key, func() (any, error) {
		return t.fetch(context.WithoutCancel(ctx), cfg, req, key)
	})
	select {
	case <-ctx.Done():
		return t.fallback(cfg, req, key, KindBackendCallFailure, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return t.fallback(cfg, req, key, KindBackendCallFailure, res.Err)
		}
		translationsTotal.WithLabelValues(string(SourceBackend)).Inc()
		return Result{Text: res.Val.(string), Source: SourceBackend, Key: key}
	}
}

// fetch calls the backend, bounded by the configured timeout, and caches a
// successful result. With a TTL of zero or less the result would expire
// immediately, so it is not stored.
func (t *Translator) fetch(ctx context.Context, cfg *translatorConfig, req TranslationRequest, key string) (string, error) {
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	start := time.Now()
	translated, err := cfg.backend.translate(ctx, req)
	recordBackendRequest(cfg.backend.Kind(), err, time.Since(start))
	if err != nil {
		return "", err
	}

	if cfg.cache != nil && cfg.cacheTTL > 0 {
		if err := cfg.cache.Set(key, translated, cfg.cacheTTL); err != nil {
			t.warn(cfg, req, key, KindCacheWriteFailure,
				&CacheError{Message: "storing translation", Cause: err})
		}
	}
	return translated, nil
}

func (t *Translator) fallback(cfg *translatorConfig, req TranslationRequest, key string, kind EventKind, err error) Result {
	t.warn(cfg, req, key, kind, err)
	translationsTotal.WithLabelValues(string(SourceFallback)).Inc()
	fallbacksTotal.WithLabelValues(string(kind)).Inc()
	return Result{Text: req.Sentence, Source: SourceFallback, Key: key, Err: err}
}

// DefaultTag returns the tag used when a request has none.
func (t *Translator) DefaultTag() string {
	return t.config().defaultTag
}

// CacheTTL returns how long backend results stay cached.
func (t *Translator) CacheTTL() time.Duration {
	return t.config().cacheTTL
}

// Backend returns the configured backend.
func (t *Translator) Backend() BackendConfig {
	return t.config().backend
}

// Cache returns the configured cache, nil when caching is disabled.
func (t *Translator) Cache() TranslationCache {
	return t.config().cache
}
