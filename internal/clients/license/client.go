package license

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/junoathena/gateway-backend/internal/platform/envutil"
	"github.com/junoathena/gateway-backend/internal/platform/httpx"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
)

// Status is the license oracle's answer for one principal.
type Status struct {
	Valid     bool      `json:"valid"`
	Reason    string    `json:"reason,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Client queries license validity. Lookups are deduplicated with
// singleflight and cached in Redis for a short TTL so the per-navigation
// refresh cadence never stampedes the oracle.
type Client interface {
	Validate(ctx context.Context, email string) (Status, error)
}

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	CacheTTL   time.Duration
	RedisAddr  string
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL:    strings.TrimSpace(os.Getenv("LICENSE_BASE_URL")),
		APIKey:     strings.TrimSpace(os.Getenv("LICENSE_API_KEY")),
		Timeout:    envutil.Seconds("LICENSE_TIMEOUT_SECONDS", 5*time.Second),
		CacheTTL:   envutil.Seconds("LICENSE_CACHE_TTL_SECONDS", 60*time.Second),
		RedisAddr:  strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		MaxRetries: envutil.Int("LICENSE_MAX_RETRIES", 2),
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("missing LICENSE_BASE_URL")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	c := &client{
		log:        log.With("client", "LicenseClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}

	// Cache is optional: without REDIS_ADDR every Validate hits the oracle.
	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:        cfg.RedisAddr,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			c.log.Warn("redis unreachable, license cache disabled", "error", err)
		} else {
			c.rdb = rdb
		}
	}
	return c, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	rdb        *goredis.Client
	group      singleflight.Group
}

type oracleResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

func (c *client) Validate(ctx context.Context, email string) (Status, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return Status{}, fmt.Errorf("missing email")
	}

	if st, ok := c.cacheGet(ctx, email); ok {
		return st, nil
	}

	v, err, _ := c.group.Do(email, func() (interface{}, error) {
		st, err := c.query(ctx, email)
		if err != nil {
			return Status{}, err
		}
		c.cacheSet(ctx, email, st)
		return st, nil
	})
	if err != nil {
		return Status{}, err
	}
	return v.(Status), nil
}

func (c *client) query(ctx context.Context, email string) (Status, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := c.cfg.BaseURL + "/v1/licenses/" + url.PathEscape(email)

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return Status{}, err
		}
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if httpx.IsRetryableError(err) {
				continue
			}
			return Status{}, err
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			var out oracleResponse
			if err := json.Unmarshal(body, &out); err != nil {
				return Status{}, fmt.Errorf("decode license response: %w", err)
			}
			return Status{Valid: out.Valid, Reason: out.Reason, CheckedAt: time.Now().UTC()}, nil
		}
		lastErr = fmt.Errorf("license oracle returned %d", resp.StatusCode)
		if !httpx.IsRetryableHTTPStatus(resp.StatusCode) {
			return Status{}, lastErr
		}
	}
	return Status{}, lastErr
}

func (c *client) cacheGet(ctx context.Context, email string) (Status, bool) {
	if c.rdb == nil {
		return Status{}, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(email)).Bytes()
	if err != nil {
		return Status{}, false
	}
	var st Status
	if err := json.Unmarshal(raw, &st); err != nil {
		return Status{}, false
	}
	return st, true
}

func (c *client) cacheSet(ctx context.Context, email string, st Status) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(email), raw, c.cfg.CacheTTL).Err(); err != nil {
		c.log.Warn("license cache write failed", "error", err)
	}
}

func cacheKey(email string) string {
	return "license:" + email
}
