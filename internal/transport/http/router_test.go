package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gunvolt24/wb_l3/internal/domain"
	"github.com/Gunvolt24/wb_l3/internal/feed"
	"github.com/Gunvolt24/wb_l3/internal/ports"
	"github.com/Gunvolt24/wb_l3/internal/ports/mocks"
	rest "github.com/Gunvolt24/wb_l3/internal/transport/http"
	"github.com/Gunvolt24/wb_l3/internal/usecase"
	"github.com/golang/mock/gomock"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

func newTestRouter(t *testing.T) (*mocks.MockCatalogSearchService, *rest.Handler, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockCatalogSearchService(ctrl)
	h := rest.NewHandler(svc, noopLogger{}, 0)
	return svc, h, rest.NewRouter(h, "", "test")
}

func TestSearch_OK(t *testing.T) {
	svc, _, r := newTestRouter(t)

	want := []domain.CatalogItem{{ID: "i-1", Title: "Laptop", Price: 500}}
	svc.EXPECT().
		Search(gomock.Any(), domain.Query{Term: "laptop", Kind: "search"}).
		Return(want, nil)

	req := httptest.NewRequest(http.MethodGet, "/catalog/search?term=Laptop", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Items []domain.CatalogItem `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].ID != "i-1" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
}

func TestSearch_Pagination(t *testing.T) {
	svc, _, r := newTestRouter(t)

	full := []domain.CatalogItem{
		{ID: "i-1"}, {ID: "i-2"}, {ID: "i-3"}, {ID: "i-4"}, {ID: "i-5"},
	}
	svc.EXPECT().
		Search(gomock.Any(), domain.Query{Term: "laptop", Kind: "search"}).
		Return(full, nil).
		Times(2)

	// limit=2 offset=1 — вторая и третья позиции
	req := httptest.NewRequest(http.MethodGet, "/catalog/search?term=laptop&limit=2&offset=1", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Items []domain.CatalogItem `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].ID != "i-2" || got.Items[1].ID != "i-3" {
		t.Fatalf("unexpected page: %+v", got.Items)
	}

	// offset за концом выдачи — пустая страница, не ошибка
	req = httptest.NewRequest(http.MethodGet, "/catalog/search?term=laptop&offset=99", http.NoBody)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	got.Items = nil
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("want empty page, got %+v", got.Items)
	}
}

func TestSearch_EmptyTerm_400(t *testing.T) {
	_, _, r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/catalog/search?term=++", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestSearch_Throttled_429(t *testing.T) {
	svc, _, r := newTestRouter(t)

	svc.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrThrottled)

	req := httptest.NewRequest(http.MethodGet, "/catalog/search?term=x", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("want 429, got %d, body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("want Retry-After header")
	}
}

// Сторонняя ошибка с "429" в тексте тоже трактуется как троттлинг.
func TestSearch_ThrottledByMessage_429(t *testing.T) {
	svc, _, r := newTestRouter(t)

	svc.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("provider said: 429 slow down"))

	req := httptest.NewRequest(http.MethodGet, "/catalog/search?term=x", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("want 429, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestSearch_AccessDenied_403(t *testing.T) {
	svc, _, r := newTestRouter(t)

	svc.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrAccessDenied)

	req := httptest.NewRequest(http.MethodGet, "/catalog/search?term=x", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("want 403, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestSearch_NotFound_404(t *testing.T) {
	svc, _, r := newTestRouter(t)

	svc.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/catalog/search?term=x", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestSearch_Unavailable_502(t *testing.T) {
	svc, _, r := newTestRouter(t)

	svc.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrUnavailable)

	req := httptest.NewRequest(http.MethodGet, "/catalog/search?term=x", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("want 502, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestStatsCache_200(t *testing.T) {
	svc, _, r := newTestRouter(t)

	svc.EXPECT().
		CacheStats(gomock.Any()).
		Return(ports.CacheStats{Entries: 3, Capacity: 100, TTL: time.Minute})

	req := httptest.NewRequest(http.MethodGet, "/stats/cache", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got ports.CacheStats
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Entries != 3 || got.Capacity != 100 {
		t.Fatalf("unexpected stats: %+v", got)
	}
}

func TestStatsGovernor_200(t *testing.T) {
	svc, _, r := newTestRouter(t)

	svc.EXPECT().
		GovernorStats(gomock.Any()).
		Return(ports.GovernorStats{QueueLength: 2, WindowCount: 5, BackedOff: true})

	req := httptest.NewRequest(http.MethodGet, "/stats/governor", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got ports.GovernorStats
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.QueueLength != 2 || !got.BackedOff {
		t.Fatalf("unexpected stats: %+v", got)
	}
}

func TestStatsFeed_PullMode(t *testing.T) {
	_, _, r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/stats/feed", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["mode"] != "pull" {
		t.Fatalf("want pull mode, got %+v", got)
	}
}

func TestStatsFeed_PushMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockCatalogSearchService(ctrl)
	consumer := mocks.NewMockMessageConsumer(ctrl)

	consumer.EXPECT().Status().Return(ports.ConsumerStatus{
		Connected: true,
		Topic:     "listings",
		GroupID:   "catalog",
	})

	h := rest.NewHandler(svc, noopLogger{}, 0)
	h.AttachConsumer(consumer)
	r := rest.NewRouter(h, "", "test")

	req := httptest.NewRequest(http.MethodGet, "/stats/feed", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Mode      string               `json:"mode"`
		Transport ports.ConsumerStatus `json:"transport"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Mode != "push" || !got.Transport.Connected || got.Transport.Topic != "listings" {
		t.Fatalf("unexpected status: %+v", got)
	}
}

func TestResync_OK(t *testing.T) {
	svc, _, r := newTestRouter(t)

	svc.EXPECT().Resync(gomock.Any()).Return(4, nil)

	req := httptest.NewRequest(http.MethodPost, "/feed/resync", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Inserted int `json:"inserted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Inserted != 4 {
		t.Fatalf("want inserted=4, got %+v", got)
	}
}

func TestResync_FeedDisabled_409(t *testing.T) {
	svc, _, r := newTestRouter(t)

	svc.EXPECT().Resync(gomock.Any()).Return(0, usecase.ErrFeedDisabled)

	req := httptest.NewRequest(http.MethodPost, "/feed/resync", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestResync_Busy_409(t *testing.T) {
	svc, _, r := newTestRouter(t)

	svc.EXPECT().Resync(gomock.Any()).Return(0, feed.ErrSyncBusy)

	req := httptest.NewRequest(http.MethodPost, "/feed/resync", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestResync_SourceError_502(t *testing.T) {
	svc, _, r := newTestRouter(t)

	svc.EXPECT().Resync(gomock.Any()).Return(0, errors.New("snapshot failed"))

	req := httptest.NewRequest(http.MethodPost, "/feed/resync", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("want 502, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestNoRoute_404(t *testing.T) {
	_, _, r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/no-such-route", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestMethodNotAllowed_405(t *testing.T) {
	_, _, r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/catalog/search", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d, body=%s", w.Code, w.Body.String())
	}
	if allow := w.Header().Get("Allow"); allow != "GET" {
		t.Fatalf("want Allow: GET, got %q", allow)
	}
}

func TestPing_200(t *testing.T) {
	_, _, r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestMetrics_200(t *testing.T) {
	_, _, r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	// Содержимое может меняться — достаточно проверить, что не пусто.
	if w.Body.Len() == 0 {
		t.Fatal("metrics body is empty")
	}
}
