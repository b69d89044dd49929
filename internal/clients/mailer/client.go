package mailer

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

// Client delivers mentor notifications through the lab's mail relay.
// Delivery is best-effort: callers treat failures as logged-but-undelivered.
type Client interface {
	Send(ctx context.Context, subject, body string) error
}

type Config struct {
	APIKey     string
	BaseURL    string
	FromEmail  string
	ToEmail    string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:     strings.TrimSpace(os.Getenv("MENTOR_MAIL_API_KEY")),
		BaseURL:    strings.TrimSpace(os.Getenv("MENTOR_MAIL_BASE_URL")),
		FromEmail:  strings.TrimSpace(os.Getenv("MENTOR_MAIL_FROM")),
		ToEmail:    strings.TrimSpace(os.Getenv("MENTOR_MAIL_TO")),
		Timeout:    envutil.Seconds("MENTOR_MAIL_TIMEOUT_SECONDS", 10*time.Second),
		MaxRetries: envutil.Int("MENTOR_MAIL_MAX_RETRIES", 2),
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
		return nil, fmt.Errorf("missing MENTOR_MAIL_API_KEY")
	}
	if cfg.ToEmail == "" {
		return nil, fmt.Errorf("missing MENTOR_MAIL_TO")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.FromEmail == "" {
		cfg.FromEmail = "gateway@junolabs.io"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:        log.With("client", "MentorMailClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type mailRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []address `json:"to"`
}

type address struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (c *client) Send(ctx context.Context, subject, body string) error {
	payload := mailRequest{
		Personalizations: []personalization{{To: []address{{Email: c.cfg.ToEmail}}}},
		From:             address{Email: c.cfg.FromEmail},
		Subject:          subject,
		Content:          []content{{Type: "text/plain", Value: body}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(httpx.JitterSleep(time.Duration(attempt) * time.Second)):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(raw))
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
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("mail relay returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if !httpx.IsRetryableHTTPStatus(resp.StatusCode) {
			return lastErr
		}
		sleepFor := httpx.RetryAfterDuration(resp, time.Duration(attempt+1)*time.Second, 30*time.Second)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
		}
	}
	return lastErr
}
