package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/graduation-masterpiece/demo-repository/internal/data/kv"
	"github.com/graduation-masterpiece/demo-repository/internal/data/repos"
	"github.com/graduation-masterpiece/demo-repository/internal/data/repos/testutil"
	httpH "github.com/graduation-masterpiece/demo-repository/internal/http/handlers"
	httpMW "github.com/graduation-masterpiece/demo-repository/internal/http/middleware"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/cards"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/cards/steps"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/engagement"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/feedback"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/search"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/objectstore"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/ratelimit"
)

const adminSecret = "router-test-secret"

type stubSummarizer struct{}

func (stubSummarizer) Summarize(ctx context.Context, title, description string) (steps.Summary, error) {
	return steps.Summary{Raw: title + ". Read on.", Sentences: []string{title + ".", "Read on."}}, nil
}

type stubIllustrator struct {
	mu    sync.Mutex
	store *objectstore.Memory
	n     int
	err   error
}

func (s *stubIllustrator) Illustrate(ctx context.Context, title, description string) (steps.Illustration, error) {
	s.mu.Lock()
	s.n++
	n, err := s.n, s.err
	s.mu.Unlock()
	if err != nil {
		return steps.Illustration{}, err
	}
	key := fmt.Sprintf("images/%d.png", n)
	if err := s.store.Put(ctx, key, bytes.NewReader([]byte("png")), "image/png"); err != nil {
		return steps.Illustration{}, err
	}
	return steps.Illustration{ImageURL: s.store.PublicURL(key), ImageKey: key}, nil
}

func (s *stubIllustrator) Discard(ctx context.Context, key string) error {
	return s.store.Delete(ctx, key)
}

type testServer struct {
	engine *gin.Engine
	art    *stubIllustrator
	store  *objectstore.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, nil)
}

func newTestServerWith(t *testing.T, tweak func(*RouterConfig)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	store := objectstore.NewMemory("")
	art := &stubIllustrator{store: store}

	books := repos.NewBookRecordRepo(db, log)
	cardRepo := repos.NewCardAssetRepo(db, log)
	issues := repos.NewIssueReportRepo(db, log)

	cardUC := cards.New(cards.UsecasesDeps{
		DB: db, Log: log,
		Books: books, Cards: cardRepo, Issues: issues,
		Summarizer: stubSummarizer{}, Illustrator: art, Store: store,
	})
	likes := engagement.New(engagement.Deps{Log: log, Flags: kv.NewMemoryFlagStore(), Cards: cardRepo})
	ac := search.New(search.Deps{Log: log, Store: kv.NewMemoryRecencyStore()})
	fb := feedback.New(feedback.Deps{Log: log, Books: books, Issues: issues, Visits: repos.NewVisitLogRepo(db, log)})

	rc := RouterConfig{
		Log:             log,
		ServiceName:     "router-test",
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, adminSecret),
		HealthHandler:   httpH.NewHealthHandler(nil),
		CardHandler:     httpH.NewCardHandler(log, cardUC),
		LikeHandler:     httpH.NewLikeHandler(log, likes),
		SearchHandler:   httpH.NewSearchHandler(log, ac),
		FeedbackHandler: httpH.NewFeedbackHandler(log, fb),
	}
	if tweak != nil {
		tweak(&rc)
	}
	engine := NewRouter(rc)
	return &testServer{engine: engine, art: art, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectJSON(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	var got, exp any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	if err := json.Unmarshal([]byte(want), &exp); err != nil {
		t.Fatalf("decode expected %q: %v", want, err)
	}
	if !reflect.DeepEqual(got, exp) {
		t.Fatalf("expected body %s, got %s", want, rec.Body.String())
	}
}

func expectBodyContains(t *testing.T, rec *httptest.ResponseRecorder, sub string) {
	t.Helper()
	if !strings.Contains(rec.Body.String(), sub) {
		t.Fatalf("expected body to contain %s, got %s", sub, rec.Body.String())
	}
}

type createResp struct {
	AlreadyExists bool     `json:"alreadyExists"`
	ID            string   `json:"id"`
	ImageURL      string   `json:"imageUrl"`
	Summary       []string `json:"summary"`
}

type errorResp struct {
	Error struct {
		Code    string            `json:"code"`
		Stage   string            `json:"stage"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func bookBody(isbn string) map[string]string {
	return map[string]string{
		"isbn":        isbn,
		"title":       "Example",
		"author":      "A. Writer",
		"publisher":   "Press",
		"pubdate":     "20240101",
		"description": "A quiet town hides a dark secret.",
		"book_cover":  "https://covers.example.org/978-1.jpg",
	}
}

func (s *testServer) createBook(t *testing.T, isbn string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/book", bookBody(isbn))
	expectStatus(t, rec, http.StatusOK)
	return decode[createResp](t, rec).ID
}

func TestHealthcheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthcheck", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "ok" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestCreateCardAndResubmit(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/book", bookBody("978-1"))
	expectStatus(t, rec, http.StatusOK)
	first := decode[createResp](t, rec)
	if first.AlreadyExists || first.ImageURL == "" {
		t.Fatalf("expected a fresh card with an image, got %+v", first)
	}
	if !reflect.DeepEqual(first.Summary, []string{"Example.", "Read on."}) {
		t.Fatalf("unexpected summary: %q", first.Summary)
	}

	rec = s.do(t, http.MethodPost, "/api/book", bookBody("978-1"))
	expectStatus(t, rec, http.StatusOK)
	second := decode[createResp](t, rec)
	if !second.AlreadyExists || second.ImageURL != "" {
		t.Fatalf("resubmission should only report the existing card, got %+v", second)
	}
	if n := s.store.Len(); n != 1 {
		t.Fatalf("resubmission must not generate another image, store has %d", n)
	}
}

func TestCreateCardValidation(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/book", bookBody(""))
	expectStatus(t, rec, http.StatusBadRequest)
	e := decode[errorResp](t, rec)
	if e.Error.Code != "validation_error" || e.Error.Details["isbn"] != "is required" {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/book", bytes.NewBufferString("{not json"))
	out := httptest.NewRecorder()
	s.engine.ServeHTTP(out, req)
	expectStatus(t, out, http.StatusBadRequest)
}

func TestCreateCardStageFailure(t *testing.T) {
	s := newTestServer(t)
	s.art.err = apierr.Upstream("image generation failed", errors.New("503"))

	rec := s.do(t, http.MethodPost, "/api/book", bookBody("978-fail"))
	expectStatus(t, rec, http.StatusBadGateway)
	e := decode[errorResp](t, rec)
	if e.Error.Code != "upstream_error" || e.Error.Stage != cards.StageIllustrate {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}

	list := decode[cards.ListCardsResult](t, s.do(t, http.MethodGet, "/api/book-cards", nil))
	if list.Total != 0 {
		t.Fatalf("failed card should not be listed, total=%d", list.Total)
	}

	s.art.err = nil
	rec = s.do(t, http.MethodPost, "/api/book", bookBody("978-fail"))
	expectStatus(t, rec, http.StatusOK)
	if decode[createResp](t, rec).AlreadyExists {
		t.Fatalf("a failed record is regenerated on resubmission")
	}
}

func TestListAndGetCards(t *testing.T) {
	s := newTestServer(t)
	id := s.createBook(t, "978-list")

	rec := s.do(t, http.MethodGet, "/api/book-cards?page=1&pageSize=5&sort=likes", nil)
	expectStatus(t, rec, http.StatusOK)
	list := decode[cards.ListCardsResult](t, rec)
	if list.Total != 1 || len(list.Items) != 1 || list.Items[0].Title != "Example" {
		t.Fatalf("unexpected listing: %s", rec.Body.String())
	}

	for _, q := range []string{"pageSize=51", "page=x", "sort=oldest"} {
		expectStatus(t, s.do(t, http.MethodGet, "/api/book-cards?"+q, nil), http.StatusBadRequest)
	}

	rec = s.do(t, http.MethodGet, "/api/book/"+id, nil)
	expectStatus(t, rec, http.StatusOK)
	expectBodyContains(t, rec, `"isbn":"978-list"`)

	expectStatus(t, s.do(t, http.MethodGet, "/api/book/not-a-uuid", nil), http.StatusBadRequest)
	expectStatus(t, s.do(t, http.MethodGet, "/api/book/6f1c8f2e-8a43-4c1e-9d52-0d3b7c0e9a11", nil), http.StatusNotFound)

	lib := s.do(t, http.MethodGet, "/api/my-library", nil)
	expectStatus(t, lib, http.StatusOK)
	expectBodyContains(t, lib, id)
}

func TestLikeIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	s := newTestServer(t)
	id := s.createBook(t, "978-xff")

	rec := s.do(t, http.MethodPatch, "/api/book/"+id+"/like", nil, "X-Forwarded-For", "10.0.0.1")
	expectStatus(t, rec, http.StatusOK)
	expectJSON(t, rec, `{"likes":1}`)

	rec = s.do(t, http.MethodPatch, "/api/book/"+id+"/like", nil, "X-Forwarded-For", "10.0.0.2")
	expectStatus(t, rec, http.StatusConflict)
	if code := decode[errorResp](t, rec).Error.Code; code != "already_liked" {
		t.Fatalf("unexpected error code: %q", code)
	}
}

func TestLikeHonoursForwardedForFromTrustedProxy(t *testing.T) {
	// httptest requests arrive from 192.0.2.1.
	s := newTestServerWith(t, func(rc *RouterConfig) { rc.TrustedProxies = []string{"192.0.2.1"} })
	id := s.createBook(t, "978-proxy")

	for i, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		rec := s.do(t, http.MethodPatch, "/api/book/"+id+"/like", nil, "X-Forwarded-For", ip)
		expectStatus(t, rec, http.StatusOK)
		expectJSON(t, rec, fmt.Sprintf(`{"likes":%d}`, i+1))
	}
}

func TestCreateThrottleIgnoresForwardedFor(t *testing.T) {
	s := newTestServerWith(t, func(rc *RouterConfig) {
		l := ratelimit.New(1, 1, time.Minute)
		t.Cleanup(l.Stop)
		rc.CreateLimiter = l
		rc.CreateRetryAfter = time.Minute
	})

	rec := s.do(t, http.MethodPost, "/api/book", bookBody("978-t1"), "X-Forwarded-For", "10.0.0.1")
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(t, http.MethodPost, "/api/book", bookBody("978-t2"), "X-Forwarded-For", "10.0.0.2")
	expectStatus(t, rec, http.StatusTooManyRequests)
}

func TestLikeOncePerClient(t *testing.T) {
	s := newTestServer(t)
	id := s.createBook(t, "978-like")

	rec := s.do(t, http.MethodPatch, "/api/book/"+id+"/like", nil)
	expectStatus(t, rec, http.StatusOK)
	expectJSON(t, rec, `{"likes":1}`)

	rec = s.do(t, http.MethodPatch, "/api/book/"+id+"/like", nil)
	expectStatus(t, rec, http.StatusConflict)
	if code := decode[errorResp](t, rec).Error.Code; code != "already_liked" {
		t.Fatalf("unexpected error code: %q", code)
	}

	missing := s.do(t, http.MethodPatch, "/api/book/6f1c8f2e-8a43-4c1e-9d52-0d3b7c0e9a11/like", nil)
	expectStatus(t, missing, http.StatusNotFound)
}

func TestSearchHistoryAndAutocomplete(t *testing.T) {
	s := newTestServer(t)
	for _, q := range []string{"cat", "car", "dog"} {
		expectStatus(t, s.do(t, http.MethodPost, "/api/search-history", map[string]string{"query": q}), http.StatusNoContent)
	}

	rec := s.do(t, http.MethodGet, "/api/autocomplete?prefix=ca", nil)
	expectStatus(t, rec, http.StatusOK)
	expectJSON(t, rec, `{"suggestions":["car","cat"]}`)

	rec = s.do(t, http.MethodGet, "/api/autocomplete?prefix=z", nil)
	expectJSON(t, rec, `{"suggestions":[]}`)

	rec = s.do(t, http.MethodPost, "/api/search-history", map[string]string{"query": "  !! "})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestFeedbackRoutes(t *testing.T) {
	s := newTestServer(t)
	id := s.createBook(t, "978-feedback")

	rec := s.do(t, http.MethodPost, "/api/error-report", map[string]string{
		"book_info_id": id,
		"error_type":   "Image is weird.",
		"report_time":  "2024-05-01T09:30:00Z",
	})
	expectStatus(t, rec, http.StatusCreated)
	expectBodyContains(t, rec, `"category":"image"`)

	rec = s.do(t, http.MethodPost, "/api/error-report", map[string]string{"book_info_id": id})
	expectStatus(t, rec, http.StatusBadRequest)

	req := httptest.NewRequest(http.MethodPost, "/api/log-utm", nil)
	out := httptest.NewRecorder()
	s.engine.ServeHTTP(out, req)
	expectStatus(t, out, http.StatusNoContent)

	rec = s.do(t, http.MethodPost, "/api/log-utm", map[string]string{"source": "newsletter"})
	expectStatus(t, rec, http.StatusNoContent)
}

func adminToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, httpMW.AdminClaims{
		Role:             httpMW.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(adminSecret))
	if err != nil {
		t.Fatalf("sign admin token: %v", err)
	}
	return "Bearer " + tok
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	id := s.createBook(t, "978-admin")
	expectStatus(t, s.do(t, http.MethodPatch, "/api/book/"+id+"/like", nil), http.StatusOK)

	expectStatus(t, s.do(t, http.MethodDelete, "/api/book/"+id, nil), http.StatusForbidden)

	rec := s.do(t, http.MethodPatch, "/api/book/"+id+"/likes/reset", nil, "Authorization", adminToken(t))
	expectStatus(t, rec, http.StatusOK)
	expectBodyContains(t, s.do(t, http.MethodGet, "/api/book/"+id, nil), `"likes":0`)

	rec = s.do(t, http.MethodDelete, "/api/book/"+id, nil, "Authorization", adminToken(t))
	expectStatus(t, rec, http.StatusNoContent)
	expectStatus(t, s.do(t, http.MethodGet, "/api/book/"+id, nil), http.StatusNotFound)
	if n := s.store.Len(); n != 0 {
		t.Fatalf("stored image should be removed with the book, %d remain", n)
	}

	rec = s.do(t, http.MethodDelete, "/api/book/"+id, nil, "Authorization", adminToken(t))
	expectStatus(t, rec, http.StatusNotFound)
}
