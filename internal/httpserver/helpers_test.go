package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/draft"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

var testSecret = []byte("http-test-secret")

const csrfToken = "test-csrf-token"

type testServer struct {
	e        *echo.Echo
	repo     *repo.GormRepo
	events   *events.Recorder
	gateway  *toggleGateway
	category models.Category
}

type toggleGateway struct {
	decline bool
}

func (g *toggleGateway) Pay(context.Context, payment.Card, decimal.Decimal) (bool, error) {
	return !g.decline, nil
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(gdb) })

	r := &repo.GormRepo{DB: gdb}
	rec := &events.Recorder{}
	gw := &toggleGateway{}
	carts := &service.CartService{Repo: r, Events: rec}

	e := echo.New()
	Register(e, &Deps{
		Catalog: &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: rec}},
		Cart:    &CartHTTP{Svc: carts},
		Checkout: &CheckoutHTTP{Svc: &service.CheckoutService{
			Carts:   carts,
			Repo:    r,
			Drafts:  draft.NewMemoryStore(time.Minute),
			Gateway: gw,
			Events:  rec,
		}},
		Orders:     &OrderHTTP{Svc: &service.OrderService{Repo: r, Events: rec}},
		JWTSecret:  testSecret,
		SessionTTL: time.Minute,
	})

	cat := models.Category{Name: "Shoes"}
	require.NoError(t, gdb.Create(&cat).Error)

	return &testServer{e: e, repo: r, events: rec, gateway: gw, category: cat}
}

func (s *testServer) product(t *testing.T, name, price string, stock int, size string) models.Product {
	t.Helper()

	p := models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock, Size: size, CategoryID: s.category.ID}
	require.NoError(t, s.repo.DB.Create(&p).Error)
	return p
}

func (s *testServer) stock(t *testing.T, id uint) int {
	t.Helper()

	var p models.Product
	require.NoError(t, s.repo.DB.First(&p, id).Error)
	return p.Stock
}

type caller struct {
	userID string
	role   string
	sid    string
}

var (
	alice = caller{userID: "alice", role: "user", sid: "6f1d7c1e-8f43-4c1b-9d7e-1a2b3c4d5e6f"}
	bob   = caller{userID: "bob", role: "user", sid: "0b7e8a52-3a8e-4f0f-8a51-7c9d2e1f0a3b"}
	admin = caller{userID: "root", role: tokens.RoleAdmin, sid: "c3a1f9d0-5b2e-4e7a-9f3c-2d1e0b9a8c7d"}
	anon  = caller{}
)

func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func authorize(t *testing.T, req *http.Request, who caller) {
	t.Helper()

	if who.userID == "" {
		return
	}
	tok, err := tokens.NewAccessToken(who.userID, who.role, time.Now().Add(time.Hour), testSecret)
	require.NoError(t, err)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	req.AddCookie(&http.Cookie{Name: "sid", Value: who.sid})
}

func withCSRF(req *http.Request) {
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("X-CSRF-Token", csrfToken)
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: csrfToken})
}

func serve(s *testServer, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// do sends an authorized JSON request that passes the CSRF check.
func (s *testServer) do(t *testing.T, who caller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	req := newJSONRequest(t, method, path, body)
	authorize(t, req, who)
	withCSRF(req)
	return serve(s, req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
