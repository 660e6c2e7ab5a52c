// Package catalog implements the iTunes catalog query client: one search
// request, loaded into tables and summarized.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aluiziolira/itunes-catalog/config"
	"github.com/aluiziolira/itunes-catalog/models"
	"github.com/aluiziolira/itunes-catalog/parser"
	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const dateLayout = "2006-01-02"

const (
	ctxStart  = "start"
	ctxBody   = "body"
	ctxStatus = "status"
)

// Client issues the configured search and wrangles the response. The query
// settings are captured at construction and never change afterwards.
type Client struct {
	url          string
	headers      http.Header
	attributes   []string
	snapshotDate string

	collector *colly.Collector
	transport *contextTransport
	cache     *lru.Cache[string, []byte]
	Metrics   *Metrics

	now func() time.Time
	mu  sync.Mutex
}

// NewClient builds a client configured from cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
	)
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(cfg.Timeout)

	transport := &contextTransport{base: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}}
	collector.WithTransport(transport)

	headers := make(http.Header, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}

	c := &Client{
		url:        cfg.SearchURL(),
		headers:    headers,
		attributes: append([]string(nil), models.Attributes...),
		collector:  collector,
		transport:  transport,
		Metrics:    NewMetrics(),
		now:        time.Now,
	}
	c.snapshotDate = c.now().Format(dateLayout)

	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, []byte](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create response cache: %w", err)
		}
		c.cache = cache
	}

	c.configureHandlers()
	return c, nil
}

// URL returns the composed search URL.
func (c *Client) URL() string {
	return c.url
}

// SnapshotDate returns the day recorded on every fetched row.
func (c *Client) SnapshotDate() string {
	return c.snapshotDate
}

// FetchAndProject runs the search and returns the raw table, the projected
// table, the missing-value report over the raw table, and the duration
// series of the projected table. Any failure aborts the whole run.
func (c *Client) FetchAndProject(ctx context.Context) (*models.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	result := &models.Result{
		RunID:        uuid.NewString(),
		URL:          c.url,
		SnapshotDate: c.snapshotDate,
	}
	logger := slog.With(slog.String("run_id", result.RunID))

	body, cached, err := c.body(ctx)
	if err != nil {
		c.Metrics.IncError(errorTypeLabel(err))
		logger.Error("catalog request failed", slog.String("url", c.url), slog.Any("error", err))
		return nil, err
	}
	result.FromCache = cached
	result.FetchedAt = c.now()

	if err := c.wrangle(body, result); err != nil {
		c.Metrics.IncError(errorTypeLabel(err))
		logger.Error("catalog response rejected", slog.Any("error", err))
		return nil, err
	}

	c.Metrics.AddRows("raw", result.Raw.Len())
	c.Metrics.AddRows("projected", result.Projected.Len())
	logger.Debug("catalog search complete",
		slog.Int("rows", result.Raw.Len()),
		slog.Int("columns", len(result.Raw.Columns)),
		slog.Bool("cached", cached),
	)
	return result, nil
}

// Playtime converts a duration series into (minutes, seconds).
func (c *Client) Playtime(durations models.Series) models.Playtime {
	return parser.ComputePlaytime(durations)
}

func (c *Client) wrangle(body []byte, result *models.Result) error {
	raw, err := parser.DecodeResults(body)
	if err != nil {
		return fmt.Errorf("decode search response: %w", err)
	}
	parser.AddConstantColumn(raw, models.SnapshotColumn, c.snapshotDate)

	projected, err := parser.Project(raw, c.attributes)
	if err != nil {
		return fmt.Errorf("project attributes: %w", err)
	}

	result.Raw = raw
	result.Projected = projected
	result.Missing = parser.MissingValues(raw)
	result.Durations = parser.ColumnSeries(projected, models.DurationColumn)
	return nil
}

func (c *Client) body(ctx context.Context) ([]byte, bool, error) {
	key := c.snapshotDate + " " + c.url
	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			c.Metrics.IncCacheHit()
			return body, true, nil
		}
	}

	body, err := c.fetch(ctx)
	if err != nil {
		return nil, false, err
	}
	if c.cache != nil {
		c.cache.Add(key, body)
	}
	return body, false, nil
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, classifyError(err, 0)
	}
	c.transport.setContext(ctx)
	defer c.transport.setContext(nil)

	reqCtx := colly.NewContext()
	err := c.collector.Request(http.MethodGet, c.url, nil, reqCtx, c.headers.Clone())

	status, _ := reqCtx.GetAny(ctxStatus).(int)
	if err != nil {
		c.Metrics.IncRequest("error")
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, classifyError(err, status)
	}
	c.Metrics.IncRequest("ok")

	body, _ := reqCtx.GetAny(ctxBody).([]byte)
	return body, nil
}

func (c *Client) configureHandlers() {
	c.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put(ctxStart, time.Now())
		slog.Debug("catalog request", slog.String("url", r.URL.String()))
	})

	c.collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxStatus, r.StatusCode)
		r.Ctx.Put(ctxBody, r.Body)
		if start, ok := r.Ctx.GetAny(ctxStart).(time.Time); ok {
			c.Metrics.ObserveDuration(time.Since(start))
		}
	})

	c.collector.OnError(func(r *colly.Response, err error) {
		if r == nil || r.Ctx == nil {
			return
		}
		r.Ctx.Put(ctxStatus, r.StatusCode)
		if start, ok := r.Ctx.GetAny(ctxStart).(time.Time); ok {
			c.Metrics.ObserveDuration(time.Since(start))
		}
	})
}

// contextTransport binds the caller's context to the request colly issues,
// so cancelling the context aborts the in-flight search.
type contextTransport struct {
	mu   sync.Mutex
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) setContext(ctx context.Context) {
	t.mu.Lock()
	t.ctx = ctx
	t.mu.Unlock()
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	ctx := t.ctx
	base := t.base
	t.mu.Unlock()

	if ctx != nil {
		req = req.WithContext(ctx)
	}
	return base.RoundTrip(req)
}
