package i8n

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ZaguanLabs/i8n/cache"
	"github.com/ZaguanLabs/i8n/config"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// mockRemote is a scripted remote client for testing.
type mockRemote struct {
	mu           sync.Mutex
	translations map[string]string
	err          error
	block        chan struct{} // Translate waits on it when set
	calls        int
	logins       int
	lastReq      TranslationRequest
}

func newMockRemote() *mockRemote {
	return &mockRemote{
		translations: map[string]string{
			"Hello":          "Olá",
			"World":          "Mundo",
			"Translate me":   "Traduza-me",
			"Translate this": "Traduza isto",
		},
	}
}

func (m *mockRemote) Authenticate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins++
	return nil
}

func (m *mockRemote) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	m.mu.Lock()
	m.calls++
	m.lastReq = req
	block, err := m.block, m.err
	translated, ok := m.translations[req.Sentence]
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "[" + req.Sentence + "]", nil
	}
	return translated, nil
}

func (m *mockRemote) counts() (calls, logins int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls, m.logins
}

// recordingCache wraps an InMemoryCache and remembers the TTLs it was given.
type recordingCache struct {
	*cache.InMemoryCache
	mu   sync.Mutex
	ttls []time.Duration
}

func (c *recordingCache) Set(key, value string, ttl time.Duration) error {
	c.mu.Lock()
	c.ttls = append(c.ttls, ttl)
	c.mu.Unlock()
	return c.InMemoryCache.Set(key, value, ttl)
}

// brokenCache never stores anything.
type brokenCache struct{}

func (brokenCache) Get(key string) (string, bool) { return "", false }

func (brokenCache) Set(key, value string, ttl time.Duration) error {
	return errors.New("redis: connection refused")
}

// lineProcessor treats every distinct non-empty line as a text node.
type lineProcessor struct{}

func (lineProcessor) Extract(content string) (any, []TextNode, error) {
	lines := strings.Split(content, "\n")
	var nodes []TextNode
	seen := make(map[string]bool)
	for _, line := range lines {
		if text := strings.TrimSpace(line); text != "" && !seen[text] {
			seen[text] = true
			nodes = append(nodes, TextNode{ID: text, Text: text, NodeType: "line"})
		}
	}
	return lines, nodes, nil
}

func (lineProcessor) Apply(parsed any, nodes []TextNode, translations map[string]string) (string, error) {
	lines := parsed.([]string)
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line
		if translated, ok := translations[strings.TrimSpace(line)]; ok {
			out[i] = translated
		}
	}
	return strings.Join(out, "\n"), nil
}

func (lineProcessor) ContentType() string { return "html" }

func newTestTranslator(t *testing.T, opts ...TranslatorOption) (*Translator, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	base := []TranslatorOption{
		WithCache(cache.NewInMemoryCache(0)),
		WithCacheTTL(time.Hour),
		WithLogger(logger),
	}
	tr, err := NewTranslator(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}
	return tr, hook
}

func TestTranslator_EmptySentence(t *testing.T) {
	remote := newMockRemote()
	tr, hook := newTestTranslator(t, WithRemoteBackend(remote))

	res := tr.Lookup(context.Background(), NewRequest("", WithTag("ui")))

	if res.Text != "" || res.Source != SourceNone || res.Key != "" {
		t.Errorf("Expected empty result, got %+v", res)
	}
	if calls, logins := remote.counts(); calls != 0 || logins != 0 {
		t.Errorf("Expected no backend activity, got %d calls and %d logins", calls, logins)
	}
	if len(hook.AllEntries()) != 0 {
		t.Errorf("Expected no log entries, got %d", len(hook.AllEntries()))
	}
}

func TestTranslator_RemoteTranslation(t *testing.T) {
	remote := newMockRemote()
	tr, _ := newTestTranslator(t, WithRemoteBackend(remote))

	got := tr.T(context.Background(), "Hello", WithLanguage("pt-BR"))

	if got != "Olá" {
		t.Errorf("Expected 'Olá', got %q", got)
	}
	if calls, logins := remote.counts(); calls != 1 || logins != 1 {
		t.Errorf("Expected 1 call and 1 login, got %d and %d", calls, logins)
	}
}

func TestTranslator_AuthenticatesBeforeEachCall(t *testing.T) {
	remote := newMockRemote()
	tr, _ := newTestTranslator(t, WithRemoteBackend(remote))
	ctx := context.Background()

	tr.T(ctx, "Hello")
	tr.T(ctx, "World")
	tr.T(ctx, "Hello") // cached

	if calls, logins := remote.counts(); calls != 2 || logins != 2 {
		t.Errorf("Expected 2 calls and 2 logins, got %d and %d", calls, logins)
	}
}

func TestTranslator_CacheHit(t *testing.T) {
	remote := newMockRemote()
	c := cache.NewInMemoryCache(0)
	tr, _ := newTestTranslator(t, WithRemoteBackend(remote), WithCache(c))
	ctx := context.Background()

	req := NewRequest("Hello", WithTag("ui"), WithLanguage("pt-BR"))
	if err := c.Set(BuildCacheKey(req), "Olá (cached)", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	res := tr.Lookup(ctx, req)

	if res.Text != "Olá (cached)" || res.Source != SourceCache {
		t.Errorf("Expected cached result, got %+v", res)
	}
	if calls, _ := remote.counts(); calls != 0 {
		t.Errorf("Backend should not be called on cache hit, got %d calls", calls)
	}
}

func TestTranslator_CachesBackendResult(t *testing.T) {
	remote := newMockRemote()
	c := &recordingCache{InMemoryCache: cache.NewInMemoryCache(0)}
	tr, _ := newTestTranslator(t, WithRemoteBackend(remote), WithCache(c), WithCacheTTL(90*time.Second))
	ctx := context.Background()

	first := tr.Lookup(ctx, NewRequest("Hello"))
	second := tr.Lookup(ctx, NewRequest("Hello"))

	if first.Source != SourceBackend || second.Source != SourceCache {
		t.Errorf("Expected backend then cache, got %s then %s", first.Source, second.Source)
	}
	if first.Key != second.Key {
		t.Error("Identical requests should share a key")
	}
	if len(c.ttls) != 1 || c.ttls[0] != 90*time.Second {
		t.Errorf("Expected one Set with 90s TTL, got %v", c.ttls)
	}
}

func TestTranslator_ExpiredEntryRefetched(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	remote := newMockRemote()
	tr, _ := newTestTranslator(t,
		WithRemoteBackend(remote),
		WithCache(cache.NewInMemoryCache(0, cache.WithClock(clock))),
		WithCacheTTL(time.Hour),
	)
	ctx := context.Background()

	tr.T(ctx, "Hello")
	advance(59 * time.Minute)
	tr.T(ctx, "Hello")
	if calls, _ := remote.counts(); calls != 1 {
		t.Fatalf("Expected 1 call before expiry, got %d", calls)
	}

	advance(2 * time.Minute)
	if got := tr.T(ctx, "Hello"); got != "Olá" {
		t.Errorf("Expected 'Olá', got %q", got)
	}
	tr.T(ctx, "Hello")
	if calls, _ := remote.counts(); calls != 2 {
		t.Errorf("Expected exactly one new call after expiry, got %d total", calls)
	}
}

func TestTranslator_DefaultTag(t *testing.T) {
	remote := newMockRemote()
	tr, _ := newTestTranslator(t, WithRemoteBackend(remote), WithDefaultTag("ui"))
	ctx := context.Background()

	res := tr.Lookup(ctx, NewRequest("Hello"))

	want := BuildCacheKey(TranslationRequest{Sentence: "Hello", Tag: "ui"})
	if res.Key != want {
		t.Errorf("Key should use the default tag")
	}
	if remote.lastReq.Tag != "ui" {
		t.Errorf("Backend should receive the default tag, got %q", remote.lastReq.Tag)
	}

	tr.Lookup(ctx, NewRequest("Hello", WithTag("menu")))
	if remote.lastReq.Tag != "menu" {
		t.Errorf("Explicit tag should win, got %q", remote.lastReq.Tag)
	}
}

func TestTranslator_NoBackend(t *testing.T) {
	tr, hook := newTestTranslator(t)

	res := tr.Lookup(context.Background(), NewRequest("Hello", WithLanguage("pt-BR")))

	if res.Text != "Hello" || res.Source != SourceFallback {
		t.Errorf("Expected fallback to sentence, got %+v", res)
	}
	if !errors.Is(res.Err, ErrBackendUnavailable) {
		t.Errorf("Expected ErrBackendUnavailable, got %v", res.Err)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("Expected a warning")
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("Expected warn level, got %s", entry.Level)
	}
	if entry.Data["kind"] != string(KindBackendUnavailable) {
		t.Errorf("Expected kind %q, got %v", KindBackendUnavailable, entry.Data["kind"])
	}
	if entry.Data["language"] != "pt-BR" {
		t.Errorf("Expected language field, got %v", entry.Data["language"])
	}
}

func TestTranslator_BackendFailure(t *testing.T) {
	remote := newMockRemote()
	remote.err = &BackendError{Op: "translate", Message: "unexpected status", StatusCode: 500}
	c := cache.NewInMemoryCache(0)
	tr, hook := newTestTranslator(t, WithRemoteBackend(remote), WithCache(c))

	got := tr.T(context.Background(), "Hello")

	if got != "Hello" {
		t.Errorf("Expected original sentence, got %q", got)
	}
	if c.Len() != 0 {
		t.Error("Failures must not be cached")
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Data["kind"] != string(KindBackendCallFailure) {
		t.Fatalf("Expected backend_call_failure warning, got %+v", entry)
	}
	logged, ok := entry.Data[logrus.ErrorKey].(error)
	if !ok || !strings.Contains(logged.Error(), "unexpected status") {
		t.Errorf("Warning should carry the error text, got %v", entry.Data[logrus.ErrorKey])
	}
}

func TestTranslator_Timeout(t *testing.T) {
	remote := newMockRemote()
	remote.block = make(chan struct{})
	tr, hook := newTestTranslator(t, WithRemoteBackend(remote), WithTimeout(20*time.Millisecond))

	res := tr.Lookup(context.Background(), NewRequest("Hello"))

	if res.Text != "Hello" || res.Source != SourceFallback {
		t.Errorf("Expected fallback, got %+v", res)
	}
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline error, got %v", res.Err)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Data["kind"] != string(KindBackendCallFailure) {
		t.Errorf("Expected backend_call_failure warning")
	}
}

func TestTranslator_CacheWriteFailure(t *testing.T) {
	remote := newMockRemote()
	tr, hook := newTestTranslator(t, WithRemoteBackend(remote), WithCache(brokenCache{}))

	res := tr.Lookup(context.Background(), NewRequest("Hello"))

	if res.Text != "Olá" || res.Source != SourceBackend {
		t.Errorf("Translation should survive a cache failure, got %+v", res)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Data["kind"] != string(KindCacheWriteFailure) {
		t.Fatalf("Expected cache_write_failure warning, got %+v", entry)
	}
	var cacheErr *CacheError
	if err, _ := entry.Data[logrus.ErrorKey].(error); !errors.As(err, &cacheErr) {
		t.Errorf("Expected *CacheError, got %v", entry.Data[logrus.ErrorKey])
	}
}

func TestTranslator_NilCache(t *testing.T) {
	remote := newMockRemote()
	tr, _ := newTestTranslator(t, WithRemoteBackend(remote), WithCache(nil))
	ctx := context.Background()

	tr.T(ctx, "Hello")
	tr.T(ctx, "Hello")

	if calls, _ := remote.counts(); calls != 2 {
		t.Errorf("Without cache every lookup reaches the backend, got %d calls", calls)
	}
	if tr.Cache() != nil {
		t.Error("Cache() should be nil")
	}
}

func TestTranslator_LocalBackend(t *testing.T) {
	remote := newMockRemote()
	// Passed as a plain Backend: no login expected
	tr, _ := newTestTranslator(t, WithLocalBackend(plainAdapter{remote}))

	if got := tr.T(context.Background(), "World"); got != "Mundo" {
		t.Errorf("Expected 'Mundo', got %q", got)
	}
	if _, logins := remote.counts(); logins != 0 {
		t.Errorf("Local backends are not authenticated, got %d logins", logins)
	}
	if tr.Backend().Kind() != BackendLocal {
		t.Errorf("Expected local backend, got %s", tr.Backend().Kind())
	}
}

// plainAdapter hides Authenticate.
type plainAdapter struct{ b Backend }

func (p plainAdapter) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	return p.b.Translate(ctx, req)
}

func TestTranslator_BothBackendsConflict(t *testing.T) {
	_, err := NewTranslator(
		WithLocalBackend(plainBackend{}),
		WithRemoteBackend(newMockRemote()),
	)

	if !errors.Is(err, ErrConfigurationConflict) {
		t.Fatalf("Expected ErrConfigurationConflict, got %v", err)
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Expected *ConfigurationError, got %T", err)
	}
}

func TestTranslator_Init(t *testing.T) {
	remote := newMockRemote()
	tr, _ := newTestTranslator(t, WithRemoteBackend(remote), WithDefaultTag("ui"), WithCacheTTL(time.Minute))

	logger, _ := test.NewNullLogger()
	if err := tr.Init(WithLogger(logger), WithCache(cache.NewInMemoryCache(0))); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	// Full reset: options not given are back to their defaults
	if tr.DefaultTag() != "" {
		t.Errorf("Expected empty default tag after reset, got %q", tr.DefaultTag())
	}
	if tr.Backend().Kind() != BackendNone {
		t.Errorf("Expected no backend after reset, got %s", tr.Backend().Kind())
	}
	if got := tr.T(context.Background(), "Hello"); got != "Hello" {
		t.Errorf("Expected fallback after reset, got %q", got)
	}
}

func TestTranslator_InitConflictKeepsConfig(t *testing.T) {
	remote := newMockRemote()
	tr, _ := newTestTranslator(t, WithRemoteBackend(remote), WithDefaultTag("ui"))

	err := tr.Init(WithLocalBackend(plainBackend{}), WithRemoteBackend(remote))
	if !errors.Is(err, ErrConfigurationConflict) {
		t.Fatalf("Expected conflict, got %v", err)
	}

	if tr.DefaultTag() != "ui" || tr.Backend().Kind() != BackendRemote {
		t.Error("Previous configuration should be kept on error")
	}
}

func TestTranslator_ConcurrentMissesShareCall(t *testing.T) {
	remote := newMockRemote()
	remote.block = make(chan struct{})
	tr, _ := newTestTranslator(t, WithRemoteBackend(remote))
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tr.T(ctx, "Hello")
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(remote.block)
	wg.Wait()

	for i, r := range results {
		if r != "Olá" {
			t.Errorf("result %d = %q, want 'Olá'", i, r)
		}
	}
	if calls, _ := remote.counts(); calls != 1 {
		t.Errorf("Expected 1 backend call, got %d", calls)
	}
}

func TestTranslator_DefaultCacheShared(t *testing.T) {
	remote := newMockRemote()
	remote.translations["Shared default cache"] = "Cache padrão compartilhado"

	writer, err := NewTranslator(WithRemoteBackend(remote), WithLogger(logrus.New()))
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}
	reader, err := NewTranslator()
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}

	ctx := context.Background()
	writer.T(ctx, "Shared default cache")

	res := reader.Lookup(ctx, NewRequest("Shared default cache"))
	if res.Source != SourceCache || res.Text != "Cache padrão compartilhado" {
		t.Errorf("Translators should share the default cache, got %+v", res)
	}
	if reader.Cache() != TranslationCache(DefaultCache()) {
		t.Error("Cache() should return the default cache")
	}
}

func TestTranslator_TranslateAll(t *testing.T) {
	remote := newMockRemote()
	tr, _ := newTestTranslator(t, WithRemoteBackend(remote), WithConcurrency(2))

	reqs := []TranslationRequest{
		NewRequest("Hello"),
		NewRequest(""),
		NewRequest("World"),
		NewRequest("Unknown"),
	}
	got := tr.TranslateAll(context.Background(), reqs)

	want := []string{"Olá", "", "Mundo", "[Unknown]"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d results, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTranslator_Process(t *testing.T) {
	remote := newMockRemote()
	c := cache.NewInMemoryCache(0)
	tr, _ := newTestTranslator(t, WithRemoteBackend(remote), WithCache(c), WithProcessor(lineProcessor{}))
	ctx := context.Background()

	tr.T(ctx, "World")

	res, err := tr.ProcessHTML(ctx, "Hello\nWorld\n\nHello")
	if err != nil {
		t.Fatalf("ProcessHTML failed: %v", err)
	}

	if res.Content != "Olá\nMundo\n\nOlá" {
		t.Errorf("unexpected content %q", res.Content)
	}
	if res.TotalNodes != 2 || res.TranslatedCount != 1 || res.CachedCount != 1 {
		t.Errorf("unexpected counts: %+v", res)
	}
}

func TestTranslator_ProcessFallbackCounts(t *testing.T) {
	tr, _ := newTestTranslator(t, WithProcessor(lineProcessor{}))

	res, err := tr.ProcessHTML(context.Background(), "Hello\nWorld")
	if err != nil {
		t.Fatalf("ProcessHTML failed: %v", err)
	}
	if res.Content != "Hello\nWorld" || res.FallbackCount != 2 {
		t.Errorf("Expected untouched content with 2 fallbacks, got %+v", res)
	}
}

func TestTranslator_NoProcessor(t *testing.T) {
	tr, _ := newTestTranslator(t)

	_, err := tr.TranslateHTML(context.Background(), "<p>Hello</p>")

	var procErr *ProcessorError
	if !errors.As(err, &procErr) {
		t.Fatalf("Expected *ProcessorError, got %v", err)
	}
}

func TestTranslator_TranslateHTMLBlank(t *testing.T) {
	tr, _ := newTestTranslator(t)

	got, err := tr.TranslateHTML(context.Background(), "  ")
	if err != nil || got != "  " {
		t.Errorf("Blank content should be returned as is, got %q, %v", got, err)
	}
}

// waitForCalls polls until the remote has received n translate calls.
func waitForCalls(t *testing.T, remote *mockRemote, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if calls, _ := remote.counts(); calls >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d backend calls", n)
}

func TestTranslator_CancelledCallerDoesNotFailOthers(t *testing.T) {
	remote := newMockRemote()
	remote.block = make(chan struct{})
	tr, hook := newTestTranslator(t, WithRemoteBackend(remote))

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	resA := make(chan Result, 1)
	go func() { resA <- tr.Lookup(ctxA, NewRequest("Hello")) }()
	waitForCalls(t, remote, 1)

	resB := make(chan Result, 1)
	go func() { resB <- tr.Lookup(context.Background(), NewRequest("Hello")) }()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	a := <-resA
	if a.Source != SourceFallback || !errors.Is(a.Err, context.Canceled) {
		t.Errorf("Cancelled caller should fall back with its own error, got %+v", a)
	}

	close(remote.block)
	b := <-resB
	if b.Text != "Olá" || b.Source == SourceFallback {
		t.Errorf("Caller with a live context should get the translation, got %+v", b)
	}
	if calls, _ := remote.counts(); calls != 1 {
		t.Errorf("Expected 1 backend call, got %d", calls)
	}

	failures := 0
	for _, entry := range hook.AllEntries() {
		if entry.Data["kind"] == string(KindBackendCallFailure) {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("Expected 1 backend_call_failure warning, got %d", failures)
	}
}

func TestTranslator_ZeroTTLNotCached(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := cache.NewInMemoryCache(0, cache.WithClock(func() time.Time { return now }))
	remote := newMockRemote()
	tr, _ := newTestTranslator(t, WithRemoteBackend(remote), WithCache(c), WithCacheTTL(0))
	ctx := context.Background()

	if got := tr.T(ctx, "Hello"); got != "Olá" {
		t.Fatalf("Expected 'Olá', got %q", got)
	}
	res := tr.Lookup(ctx, NewRequest("Hello"))

	if res.Source != SourceBackend {
		t.Errorf("Entry with zero TTL should already be expired, got source %s", res.Source)
	}
	if calls, _ := remote.counts(); calls != 2 {
		t.Errorf("Expected 2 backend calls, got %d", calls)
	}
	if c.Len() != 0 {
		t.Errorf("Expected nothing cached, got %d entries", c.Len())
	}
}

func TestTranslator_ZeroTTLFromEnv(t *testing.T) {
	t.Setenv(config.CacheTTLEnv, "3600")
	t.Setenv(config.LegacyCacheExpiryEnv, "0")
	logger, _ := test.NewNullLogger()

	remote := newMockRemote()
	tr, err := NewTranslator(WithRemoteBackend(remote), WithCache(cache.NewInMemoryCache(0)), WithLogger(logger))
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}
	if tr.CacheTTL() != 0 {
		t.Fatalf("Expected zero TTL from the legacy expiry, got %v", tr.CacheTTL())
	}

	ctx := context.Background()
	tr.T(ctx, "Hello")
	tr.T(ctx, "Hello")
	if calls, _ := remote.counts(); calls != 2 {
		t.Errorf("Expected 2 backend calls, got %d", calls)
	}
}

func TestTranslator_InvalidTTLFromEnv(t *testing.T) {
	t.Setenv(config.CacheTTLEnv, "3600")
	t.Setenv(config.LegacyCacheExpiryEnv, "NaN")
	logger, hook := test.NewNullLogger()

	tr, err := NewTranslator(WithLogger(logger))
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}
	if tr.CacheTTL() != config.DefaultCacheTTL {
		t.Errorf("Expected default TTL, got %v", tr.CacheTTL())
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.WarnLevel {
		t.Errorf("Expected a warning about the invalid TTL, got %+v", entry)
	}

	hook.Reset()
	if _, err := NewTranslator(WithLogger(logger), WithCacheTTL(time.Minute)); err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}
	if len(hook.AllEntries()) != 0 {
		t.Error("An explicit TTL should silence the environment warning")
	}
}

// panickingBackend writes to a nil map.
type panickingBackend struct{}

func (panickingBackend) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	var seen map[string]bool
	seen[req.Sentence] = true
	return req.Sentence, nil
}

func TestTranslator_BackendPanic(t *testing.T) {
	tr, hook := newTestTranslator(t, WithLocalBackend(panickingBackend{}))

	res := tr.Lookup(context.Background(), NewRequest("Hello"))

	if res.Text != "Hello" || res.Source != SourceFallback {
		t.Errorf("Expected fallback, got %+v", res)
	}
	var backendErr *BackendError
	if !errors.As(res.Err, &backendErr) {
		t.Fatalf("Expected *BackendError, got %v", res.Err)
	}
	if !strings.Contains(backendErr.Error(), "nil map") {
		t.Errorf("Expected the panic value in the error, got %q", backendErr.Error())
	}
	if entry := hook.LastEntry(); entry == nil || entry.Data["kind"] != string(KindBackendCallFailure) {
		t.Errorf("Expected backend_call_failure warning")
	}
}

func TestTranslator_BackendPanicConcurrent(t *testing.T) {
	tr, _ := newTestTranslator(t, WithLocalBackend(panickingBackend{}))
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tr.T(ctx, "Hello")
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r != "Hello" {
			t.Errorf("result %d = %q, want 'Hello'", i, r)
		}
	}
}

func TestTranslator_NilProcessorIgnored(t *testing.T) {
	tr, _ := newTestTranslator(t, WithProcessor(nil))

	_, err := tr.TranslateHTML(context.Background(), "<p>Hello</p>")

	var procErr *ProcessorError
	if !errors.As(err, &procErr) {
		t.Fatalf("Expected *ProcessorError, got %v", err)
	}
}
