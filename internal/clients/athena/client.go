package athena

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/junoathena/gateway-backend/internal/platform/envutil"
	"github.com/junoathena/gateway-backend/internal/platform/httpx"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
)

// Client talks to the institutional Athena service: it is the credential
// source for passkeys and the generator for assistant replies.
type Client interface {
	IsPasskeyValid(ctx context.Context, email, passkey string) (bool, error)
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL:    strings.TrimSpace(os.Getenv("ATHENA_BASE_URL")),
		APIKey:     strings.TrimSpace(os.Getenv("ATHENA_API_KEY")),
		Timeout:    envutil.Seconds("ATHENA_TIMEOUT_SECONDS", 20*time.Second),
		MaxRetries: envutil.Int("ATHENA_MAX_RETRIES", 3),
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing ATHENA_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://athena.junolabs.io/api"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &client{
		log:        log.With("client", "AthenaClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type verifyRequest struct {
	Email   string `json:"email"`
	Passkey string `json:"passkey"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

type replyRequest struct {
	Prompt string `json:"prompt"`
}

type replyResponse struct {
	Text string `json:"text"`
}

func (c *client) IsPasskeyValid(ctx context.Context, email, passkey string) (bool, error) {
	var out verifyResponse
	if err := c.post(ctx, "/v1/passkeys/verify", verifyRequest{Email: email, Passkey: passkey}, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

func (c *client) GenerateReply(ctx context.Context, prompt string) (string, error) {
	var out replyResponse
	if err := c.post(ctx, "/v1/replies", replyRequest{Prompt: prompt}, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

func (c *client) post(ctx context.Context, path string, payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal athena request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(httpx.JitterSleep(time.Duration(attempt) * 500 * time.Millisecond)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(raw))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if httpx.IsRetryableError(err) {
				continue
			}
			return err
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out == nil {
				return nil
			}
			return json.Unmarshal(body, out)
		}
		lastErr = fmt.Errorf("athena %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
		if !httpx.IsRetryableHTTPStatus(resp.StatusCode) {
			return lastErr
		}
	}
	return lastErr
}
