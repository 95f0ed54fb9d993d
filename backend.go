package i8n

import (
	"context"
	"fmt"
)

// Backend is the interface for translation backends.
type Backend interface {
	Translate(ctx context.Context, req TranslationRequest) (string, error)
}

// RemoteClient is a Backend reached over the network that must authenticate
// before each request. Authenticate is idempotent.
type RemoteClient interface {
	Backend
	Authenticate(ctx context.Context) error
}

// BackendKind identifies the variant held by a BackendConfig.
type BackendKind int

const (
	// BackendNone means no backend: every miss falls back to the sentence.
	BackendNone BackendKind = iota
	// BackendLocal is a backend running in-process (a directly held model).
	BackendLocal
	// BackendRemote is a RemoteClient, authenticated before each call.
	BackendRemote
)

func (k BackendKind) String() string {
	switch k {
	case BackendLocal:
		return "local"
	case BackendRemote:
		return "remote"
	default:
		return "none"
	}
}

// BackendConfig is the backend a Translator delegates to. It can only be
// built with NoBackend, LocalBackend or RemoteBackend, so it always holds
// exactly one variant.
type BackendConfig struct {
	kind   BackendKind
	local  Backend
	remote RemoteClient
}

// NoBackend returns the empty backend configuration.
func NoBackend() BackendConfig {
	return BackendConfig{}
}

// LocalBackend returns a configuration for an in-process backend.
// A nil backend yields NoBackend.
func LocalBackend(b Backend) BackendConfig {
	if b == nil {
		return NoBackend()
	}
	return BackendConfig{kind: BackendLocal, local: b}
}

// RemoteBackend returns a configuration for a remote client.
// A nil client yields NoBackend.
func RemoteBackend(c RemoteClient) BackendConfig {
	if c == nil {
		return NoBackend()
	}
	return BackendConfig{kind: BackendRemote, remote: c}
}

// Kind returns the configured variant.
func (c BackendConfig) Kind() BackendKind {
	return c.kind
}

// translate dispatches req to the configured variant. A panicking backend
// is reported as a BackendError.
func (c BackendConfig) translate(ctx context.Context, req TranslationRequest) (translated string, err error) {
	defer func() {
		if r := recover(); r != nil {
			translated = ""
			err = &BackendError{
				Op:      "translate",
				Message: fmt.Sprintf("%s backend panicked: %v", c.kind, r),
			}
		}
	}()

	switch c.kind {
	case BackendLocal:
		return c.local.Translate(ctx, req)
	case BackendRemote:
		if err := c.remote.Authenticate(ctx); err != nil {
			return "", err
		}
		return c.remote.Translate(ctx, req)
	default:
		return "", ErrBackendUnavailable
	}
}
