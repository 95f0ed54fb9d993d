// Command i8n translates sentences through a Pumpwood translation backend,
// caching the results.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ZaguanLabs/i8n"
	"github.com/ZaguanLabs/i8n/backend"
	"github.com/ZaguanLabs/i8n/cache"
	"github.com/ZaguanLabs/i8n/config"
	"github.com/ZaguanLabs/i8n/processor"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("i8n", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: i8n [flags] [sentence ...]\n\n")
		fmt.Fprintf(stderr, "Sentences are read one per line from stdin when none are given.\n\n")
		fs.PrintDefaults()
	}

	envFile := fs.String("env", "", "Load environment variables from this file (default: .env when present)")
	tag := fs.String("tag", "", "Usage context of the sentences (default: PUMPWOOD__I8N__DEFAULT_TAG)")
	plural := fs.Bool("plural", false, "Translate as plural")
	lang := fs.String("lang", "", "Target language (e.g., pt-BR)")
	userType := fs.String("user-type", "", "Audience segment")
	htmlFile := fs.String("html", "", "Translate the text nodes of an HTML file ('-' for stdin)")
	cacheFile := fs.String("cache-file", "", "Warm the cache from this JSON file and save it back on exit")
	jsonOutput := fs.Bool("json", false, "Output results as JSON")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error (default: LOG_LEVEL)")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", i8n.Name, i8n.FullVersion())
		if i8n.BuildDate != "" {
			fmt.Fprintf(stdout, "  built: %s\n", i8n.BuildDate)
		}
		return nil
	}

	if err := loadEnv(*envFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(stderr, firstNonEmpty(*logLevel, cfg.LogLevel))

	tc, err := newCache(cfg, *cacheFile, logger)
	if err != nil {
		return err
	}

	opts := []i8n.TranslatorOption{
		i8n.WithCache(tc),
		i8n.WithCacheTTL(cfg.CacheTTL()),
		i8n.WithDefaultTag(cfg.DefaultTag),
		i8n.WithTimeout(cfg.Timeout),
		i8n.WithLogger(logger),
		i8n.WithProcessor(processor.NewHTMLProcessor()),
	}
	switch cfg.Backend {
	case config.BackendRemote:
		opts = append(opts, i8n.WithRemoteBackend(newRemote(cfg, logger)))
	case config.BackendLocal:
		opts = append(opts, i8n.WithLocalBackend(newLocal(cfg)))
	}

	translator, err := i8n.NewTranslator(opts...)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"backend":   translator.Backend().Kind().String(),
		"cache_ttl": translator.CacheTTL().String(),
		"tag":       translator.DefaultTag(),
	}).Debug("Translator ready")

	reqOpts := []i8n.RequestOption{
		i8n.WithPlural(*plural),
		i8n.WithLanguage(*lang),
		i8n.WithUserType(*userType),
	}
	if *tag != "" {
		reqOpts = append(reqOpts, i8n.WithTag(*tag))
	}

	ctx := context.Background()
	if *htmlFile != "" {
		err = translateHTML(ctx, translator, *htmlFile, stdin, stdout, *jsonOutput, reqOpts)
	} else {
		err = translateSentences(ctx, translator, fs.Args(), stdin, stdout, *jsonOutput, reqOpts)
	}
	if err != nil {
		return err
	}

	if *cacheFile != "" {
		if mem, ok := tc.(*cache.InMemoryCache); ok {
			if err := cache.NewExporter(mem).ExportToFile(*cacheFile, map[string]string{
				"generator": i8n.UserAgent(),
			}); err != nil {
				return fmt.Errorf("saving cache: %w", err)
			}
		}
	}
	return nil
}

// loadEnv loads path, or .env when path is empty and the file exists.
func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Overload(path); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, using info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// newCache returns a Redis cache when configured, otherwise a fresh
// in-memory cache warmed from cacheFile.
func newCache(cfg *config.Config, cacheFile string, logger logrus.FieldLogger) (i8n.TranslationCache, error) {
	ttlSeconds := int(cfg.CacheTTL() / time.Second)
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			URL: cfg.RedisURL,
			TTL: ttlSeconds,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return rc, nil
	}

	mem := cache.NewInMemoryCache(ttlSeconds)
	if cacheFile == "" {
		return mem, nil
	}

	res, err := cache.NewImporter(mem).ImportFromFile(cacheFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run: the file is written on exit
	case err != nil:
		return nil, fmt.Errorf("loading cache: %w", err)
	default:
		logger.WithFields(logrus.Fields{
			"file":     cacheFile,
			"imported": res.Imported,
			"expired":  res.Expired,
		}).Debug("Cache warmed")
	}
	return mem, nil
}

func newRemote(cfg *config.Config, logger logrus.FieldLogger) i8n.RemoteClient {
	var remote i8n.RemoteClient = backend.NewPumpwoodClient(backend.PumpwoodConfig{
		BaseURL:  cfg.MicroserviceURL,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout,
		Logger:   logger,
	})
	return decorate(remote, cfg)
}

func newLocal(cfg *config.Config) i8n.Backend {
	return decorate(backend.NewOpenAIBackend(backend.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
	}), cfg)
}

// decorate adds rate limiting and retries as configured. Both decorators
// forward Authenticate to remote clients.
func decorate(b i8n.Backend, cfg *config.Config) i8n.RemoteClient {
	if cfg.RequestsPerMinute > 0 {
		b = i8n.NewRateLimitedBackend(b, i8n.RateLimitConfig{RequestsPerMinute: cfg.RequestsPerMinute})
	}
	retry := i8n.DefaultRetryConfig()
	retry.MaxRetries = cfg.RetryMax
	return i8n.NewRetryableBackend(b, retry)
}

// sentenceResult is one line of JSON output.
type sentenceResult struct {
	Sentence    string `json:"sentence"`
	Translation string `json:"translation"`
	Source      string `json:"source"`
	Error       string `json:"error,omitempty"`
}

func translateSentences(ctx context.Context, t *i8n.Translator, sentences []string, stdin io.Reader, stdout io.Writer, jsonOut bool, opts []i8n.RequestOption) error {
	if len(sentences) == 0 {
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			sentences = append(sentences, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	reqs := make([]i8n.TranslationRequest, len(sentences))
	for i, s := range sentences {
		reqs[i] = i8n.NewRequest(s, opts...)
	}
	results := t.LookupAll(ctx, reqs)

	if !jsonOut {
		for _, res := range results {
			fmt.Fprintln(stdout, res.Text)
		}
		return nil
	}

	enc := json.NewEncoder(stdout)
	for i, res := range results {
		out := sentenceResult{
			Sentence:    sentences[i],
			Translation: res.Text,
			Source:      string(res.Source),
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

// htmlResult is the JSON output of an HTML translation.
type htmlResult struct {
	Content         string `json:"content"`
	TotalNodes      int    `json:"total_nodes"`
	TranslatedCount int    `json:"translated_count"`
	CachedCount     int    `json:"cached_count"`
	FallbackCount   int    `json:"fallback_count"`
}

func translateHTML(ctx context.Context, t *i8n.Translator, path string, stdin io.Reader, stdout io.Writer, jsonOut bool, opts []i8n.RequestOption) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	}
	if err != nil {
		return fmt.Errorf("reading html: %w", err)
	}

	res, err := t.ProcessHTML(ctx, string(data), opts...)
	if err != nil {
		return fmt.Errorf("translating html: %w", err)
	}

	if jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(htmlResult{
			Content:         res.Content,
			TotalNodes:      res.TotalNodes,
			TranslatedCount: res.TranslatedCount,
			CachedCount:     res.CachedCount,
			FallbackCount:   res.FallbackCount,
		})
	}

	fmt.Fprint(stdout, res.Content)
	if !strings.HasSuffix(res.Content, "\n") {
		fmt.Fprintln(stdout)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
