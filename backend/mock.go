package backend

import (
	"context"
	"fmt"
	"sync"
)

// MockBackend is a mock remote backend for testing.
type MockBackend struct {
	Translations map[string]string // Map of sentence to translation
	Err          error             // Returned by Translate when set
	LoginErr     error             // Returned by Authenticate when set

	mu          sync.Mutex
	callCount   int
	loginCount  int
	lastRequest *TranslationRequest
}

// NewMockBackend creates a new mock backend with default translations.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Translations: map[string]string{
			"Hello":                "Olá",
			"World":                "Mundo",
			"Hello World":          "Olá Mundo",
			"Welcome to our site.": "Bem-vindo ao nosso site.",
		},
	}
}

// Authenticate counts the call and returns LoginErr.
func (m *MockBackend) Authenticate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginCount++
	return m.LoginErr
}

// Translate returns mock translations. Unknown sentences come back
// bracketed.
func (m *MockBackend) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.lastRequest = &req

	if m.Err != nil {
		return "", m.Err
	}
	if translation, ok := m.Translations[req.Sentence]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s]", req.Sentence), nil
}

// CallCount returns the number of Translate calls.
func (m *MockBackend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LoginCount returns the number of Authenticate calls.
func (m *MockBackend) LoginCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginCount
}

// LastRequest returns the last request received, or nil.
func (m *MockBackend) LastRequest() *TranslationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset resets the counters and last request.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.loginCount = 0
	m.lastRequest = nil
}

// Verify MockBackend implements RemoteClient
var _ RemoteClient = (*MockBackend)(nil)
