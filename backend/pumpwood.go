package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ZaguanLabs/i8n"
	"github.com/sirupsen/logrus"
)

const (
	// TranslationModelClass is the Pumpwood entity exposing the translate action.
	TranslationModelClass = "PumpwoodI8nTranslation"

	// TranslateAction is the action called on TranslationModelClass.
	TranslateAction = "translate"

	// DefaultPumpwoodTimeout is the HTTP client timeout.
	DefaultPumpwoodTimeout = 30 * time.Second

	// DefaultTokenTTL is how long a login token is reused before
	// Authenticate logs in again.
	DefaultTokenTTL = time.Hour

	loginPath = "/rest/registration/login/"
)

// PumpwoodConfig holds configuration for the Pumpwood client.
type PumpwoodConfig struct {
	BaseURL    string        // Pumpwood gateway URL (e.g., "http://pumpwood.local")
	Username   string        // Service user
	Password   string        // Service user password
	Timeout    time.Duration // HTTP timeout (default: 30s)
	TokenTTL   time.Duration // Token reuse window (default: 1h)
	HTTPClient *http.Client  // Custom HTTP client (optional)
	Logger     logrus.FieldLogger
}

// PumpwoodClient implements i8n.RemoteClient against a Pumpwood microservice
// gateway using its REST action API.
type PumpwoodClient struct {
	baseURL    string
	username   string
	password   string
	tokenTTL   time.Duration
	httpClient *http.Client
	logger     logrus.FieldLogger
	now        func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewPumpwoodClient creates a new Pumpwood client.
func NewPumpwoodClient(cfg PumpwoodConfig) *PumpwoodClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultPumpwoodTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &PumpwoodClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		tokenTTL:   tokenTTL,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// loginRequest is the body of the Pumpwood login endpoint.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the relevant part of the login answer.
type loginResponse struct {
	Token string `json:"token"`
}

// translateParameters are the parameters of the translate action.
type translateParameters struct {
	Sentence string `json:"sentence"`
	Tag      string `json:"tag"`
	Plural   bool   `json:"plural"`
	Language string `json:"language"`
	UserType string `json:"user_type"`
}

// actionResponse is the envelope returned by Pumpwood actions.
type actionResponse struct {
	Result json.RawMessage `json:"result"`
}

// Authenticate logs in unless a token obtained within the token TTL is
// still held. It is safe to call before every request.
func (c *PumpwoodClient) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return nil
	}

	var resp loginResponse
	if err := c.post(ctx, "authenticate", loginPath, "", loginRequest{
		Username: c.username,
		Password: c.password,
	}, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return &i8n.BackendError{
			Op:      "authenticate",
			Message: "login response without token",
		}
	}

	c.token = resp.Token
	c.tokenExpiry = c.now().Add(c.tokenTTL)
	c.logger.WithFields(logrus.Fields{
		"base_url": c.baseURL,
		"username": c.username,
	}).Debug("Authenticated with Pumpwood")
	return nil
}

// Translate calls the translate action of PumpwoodI8nTranslation.
func (c *PumpwoodClient) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	raw, err := c.ExecuteAction(ctx, TranslationModelClass, TranslateAction, translateParameters{
		Sentence: req.Sentence,
		Tag:      req.Tag,
		Plural:   req.Plural,
		Language: req.Language,
		UserType: req.UserType,
	})
	if err != nil {
		return "", err
	}

	var result *string
	if err := json.Unmarshal(raw, &result); err != nil || result == nil {
		return "", &i8n.BackendError{
			Op:      "translate",
			Message: fmt.Sprintf("unexpected action result %s", truncate(string(raw), 200)),
			Cause:   err,
		}
	}
	return *result, nil
}

// ExecuteAction runs action on modelClass with the given parameters and
// returns the raw "result" field of the answer.
func (c *PumpwoodClient) ExecuteAction(ctx context.Context, modelClass, action string, parameters any) (json.RawMessage, error) {
	token := c.currentToken()
	if token == "" {
		return nil, &i8n.BackendError{
			Op:      action,
			Message: "not authenticated",
		}
	}

	path := fmt.Sprintf("/rest/%s/actions/%s/", strings.ToLower(modelClass), action)

	var resp actionResponse
	if err := c.post(ctx, action, path, token, parameters, &resp); err != nil {
		var be *i8n.BackendError
		if errors.As(err, &be) && be.StatusCode == http.StatusUnauthorized {
			c.invalidateToken()
		}
		return nil, err
	}
	if len(resp.Result) == 0 {
		return nil, &i8n.BackendError{
			Op:      action,
			Message: "action response without result",
		}
	}
	return resp.Result, nil
}

func (c *PumpwoodClient) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *PumpwoodClient) invalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.tokenExpiry = time.Time{}
}

// post sends body as JSON to path and decodes the answer into out.
func (c *PumpwoodClient) post(ctx context.Context, op, path, token string, body, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return &i8n.BackendError{Op: op, Message: "encode request", Cause: err}
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return &i8n.BackendError{Op: op, Message: "create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", i8n.UserAgent())
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"url": url,
		}).Debug("Pumpwood request failed")
		return &i8n.BackendError{
			Op:        op,
			Message:   "request failed",
			Cause:     err,
			Retryable: ctx.Err() == nil,
		}
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"url":         url,
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Pumpwood request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &i8n.BackendError{
			Op:         op,
			Message:    "unexpected status: " + truncate(strings.TrimSpace(string(bodyBytes)), 200),
			StatusCode: resp.StatusCode,
			Retryable:  isRetryableStatus(resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &i8n.BackendError{Op: op, Message: "decode response", Cause: err}
	}
	return nil
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Verify PumpwoodClient implements RemoteClient
var _ RemoteClient = (*PumpwoodClient)(nil)
