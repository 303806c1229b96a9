package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"travelgo/internal/metrics"
	"travelgo/internal/redis"

	"go.uber.org/zap"
)

const (
	ToolHTTPTimeout = 10 * time.Second

	weatherCacheTTL  = 10 * time.Minute
	placesCacheTTL   = 6 * time.Hour
	currencyCacheTTL = time.Hour
)

// ToolDeps carries shared dependencies into the tool adapters. The cache
// may be nil; adapters then always hit the upstream API.
type ToolDeps struct {
	Cache      *redis.Client
	Logger     *zap.Logger
	HTTPClient *http.Client
}

func (d *ToolDeps) httpClient() *http.Client {
	if d != nil && d.HTTPClient != nil {
		return d.HTTPClient
	}
	return &http.Client{Timeout: ToolHTTPTimeout}
}

func (d *ToolDeps) log() *zap.Logger {
	if d != nil && d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

// cachedFetch returns the cached value for key when present, otherwise runs
// fetch and stores its result. Fetch errors are never cached.
func (d *ToolDeps) cachedFetch(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (string, error)) (string, error) {
	if cached, err := d.Cache.Get(ctx, key); err == nil {
		return cached, nil
	} else if !errors.Is(err, redis.ErrCacheMiss) {
		d.log().Warn("tool cache read failed", zap.String("key", key), zap.Error(err))
	}

	result, err := fetch(ctx)
	if err != nil {
		return "", err
	}
	if err := d.Cache.Set(ctx, key, result, ttl); err != nil {
		d.log().Warn("tool cache write failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

func cacheKey(tool string, parts ...string) string {
	normalized := make([]string, 0, len(parts))
	for _, p := range parts {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(p)))
	}
	return "tool:" + tool + ":" + strings.Join(normalized, ":")
}

// getJSON performs a GET and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func countToolCall(tool string) {
	metrics.ToolCalls.WithLabelValues(tool).Inc()
}
