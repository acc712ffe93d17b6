package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Gunvolt24/wb_l3/internal/domain"
	"github.com/Gunvolt24/wb_l3/internal/ports"
)

// Проверки портов: клиент служит и провайдером каталога, и источником снимков.
var (
	_ ports.CatalogProvider = (*Client)(nil)
	_ ports.SnapshotSource  = (*Client)(nil)
)

// Config — настройки клиента внешнего провайдера.
type Config struct {
	BaseURL    string
	Collection string
	Timeout    time.Duration
}

// Client — HTTP-клиент внешнего каталога. Ошибки транспорта и статусы
// ответа переводятся в sentinel-ошибки домена, чтобы верхние слои
// не зависели от HTTP.
type Client struct {
	baseURL    string
	collection string
	httpc      *http.Client
	log        ports.Logger
}

// NewClient — конструктор с настроенным транспортом (keep-alive пул).
func NewClient(cfg Config, log ports.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		collection: cfg.Collection,
		httpc: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		log: log,
	}
}

// Search — поисковый запрос к каталогу: GET /search?kind=...&term=...
func (c *Client) Search(ctx context.Context, q domain.Query) ([]domain.CatalogItem, error) {
	q = q.Normalized()

	params := url.Values{}
	params.Set("kind", q.Kind)
	params.Set("term", q.Term)

	var items []domain.CatalogItem
	if err := c.getJSON(ctx, c.baseURL+"/search?"+params.Encode(), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Snapshot — полный снимок отслеживаемой коллекции:
// GET /collections/{collection}/snapshot
func (c *Client) Snapshot(ctx context.Context) ([]domain.Listing, error) {
	u := c.baseURL + "/collections/" + url.PathEscape(c.collection) + "/snapshot"

	var listings []domain.Listing
	if err := c.getJSON(ctx, u, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// getJSON — GET с классификацией статуса и разбором тела.
func (c *Client) getJSON(ctx context.Context, rawURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		// сеть/таймаут: временная недоступность
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		// тело не читаем дальше лимита: для классификации хватает статуса
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// classifyStatus — перевод HTTP-статуса в sentinel-ошибку домена.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status 429", domain.ErrThrottled)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", domain.ErrAccessDenied, code)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: status 404", domain.ErrNotFound)
	default:
		return fmt.Errorf("%w: status %d", domain.ErrUnavailable, code)
	}
}
