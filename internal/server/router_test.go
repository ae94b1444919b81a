package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth/gate"
	"storefront/internal/auth/hashing"
	"storefront/internal/auth/token"
	"storefront/internal/domain"
	"storefront/internal/dto"
	"storefront/internal/infrastructure/memory"
	"storefront/internal/order"
	"storefront/internal/product"
	"storefront/internal/server/middleware"
	"storefront/internal/user"
)

type testApp struct {
	handler  http.Handler
	users    *memory.UserStore
	products *memory.ProductStore
	hasher   *hashing.Hasher
}

func newTestApp(t *testing.T, loginBurst int) *testApp {
	t.Helper()

	users := memory.NewUserStore()
	orders := memory.NewOrderStore()
	products := memory.NewProductStore()
	hasher := hashing.NewHasher(bcrypt.MinCost)
	tokens, err := token.NewManager([]byte(strings.Repeat("k", 32)), time.Hour)
	require.NoError(t, err)

	logger := zap.NewNop()
	handler := NewRouter(Controllers{
		Auth:    user.NewModule(users, hasher, tokens, logger),
		Orders:  order.NewModule(orders, products, users, logger),
		Product: product.NewModule(products, logger),
	}, gate.New(tokens), middleware.NewRateLimiter(0.001, loginBurst), logger)

	return &testApp{handler: handler, users: users, products: products, hasher: hasher}
}

func (a *testApp) do(t *testing.T, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if tok != "" {
		req.Header.Set("Authorization", tok)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// seedAdmin stores an admin directly; no endpoint grants the role.
func (a *testApp) seedAdmin(t *testing.T, email, password string) {
	t.Helper()
	hash, err := a.hasher.Hash(password)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, a.users.Insert(context.Background(), domain.User{
		ID:           uuid.NewString(),
		Name:         "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
}

func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestOrderLifecycle_EndToEnd(t *testing.T) {
	app := newTestApp(t, 10)
	laptop := app.products.Put(domain.Product{Name: "Laptop", Description: "fast", Price: 1200, Quantity: 5})

	rec := app.do(t, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Name:     "Ana",
		Email:    "a@x.com",
		Password: "pw123",
		Phone:    "555-0100",
		Address:  "1 Main St",
		Answer:   "blue",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	buyerToken := app.login(t, "a@x.com", "pw123")

	rec = app.do(t, http.MethodPost, "/api/v1/auth/orders", buyerToken, dto.CreateOrderRequest{
		Items:   []dto.CreateOrderItem{{ProductID: laptop.ID, Price: 999}},
		Payment: dto.PaymentDTO{Success: true, Reference: "txn_1"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created dto.OrderDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Not Process", created.Status)
	assert.True(t, created.Payment.Success)

	app.seedAdmin(t, "admin@x.com", "adminpw")
	adminToken := "Bearer " + app.login(t, "admin@x.com", "adminpw")

	rec = app.do(t, http.MethodGet, "/api/v1/auth/all-orders", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var all []dto.OrderDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Equal(t, created.ID, all[0].ID)
	assert.Equal(t, "Ana", all[0].Buyer.Name)
	require.Len(t, all[0].Products, 1)
	assert.Equal(t, "Laptop", all[0].Products[0].Name)
	assert.Equal(t, 999.0, all[0].Products[0].Price)

	rec = app.do(t, http.MethodPut, "/api/v1/auth/order-status/"+created.ID, adminToken,
		dto.UpdateOrderStatusRequest{Status: "Delivered"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/v1/auth/orders", buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []dto.OrderDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "Delivered", mine[0].Status)
}

func TestAccessControl(t *testing.T) {
	app := newTestApp(t, 10)

	rec := app.do(t, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Name: "Ana", Email: "a@x.com", Password: "pw123", Phone: "1", Address: "x", Answer: "blue",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	buyerToken := app.login(t, "a@x.com", "pw123")

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{name: "no token", method: http.MethodGet, path: "/api/v1/auth/orders", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "garbage token", method: http.MethodGet, path: "/api/v1/auth/user-auth", token: "not.a.token", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "buyer probe", method: http.MethodGet, path: "/api/v1/auth/user-auth", token: buyerToken, wantStatus: http.StatusOK},
		{name: "buyer on admin probe", method: http.MethodGet, path: "/api/v1/auth/admin-auth", token: buyerToken, wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "buyer lists all", method: http.MethodGet, path: "/api/v1/auth/all-orders", token: buyerToken, wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "buyer sets status", method: http.MethodPut, path: "/api/v1/auth/order-status/o-1", token: buyerToken, wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "anonymous sets status", method: http.MethodPut, path: "/api/v1/auth/order-status/o-1", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, tt.method, tt.path, tt.token, map[string]string{"status": "Shipped"})
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestRegister_DuplicateThroughRouter(t *testing.T) {
	app := newTestApp(t, 10)
	req := dto.RegisterRequest{Name: "Ana", Email: "a@x.com", Password: "pw123", Phone: "1", Address: "x", Answer: "blue"}

	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/v1/auth/register", "", req).Code)

	req.Email = "A@X.com"
	rec := app.do(t, http.MethodPost, "/api/v1/auth/register", "", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "DUPLICATE_CONTACT")
	assert.Equal(t, 1, app.users.Count())
}

func TestForgotPasswordFlow(t *testing.T) {
	app := newTestApp(t, 10)
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Name: "Ana", Email: "a@x.com", Password: "pw123", Phone: "1", Address: "x", Answer: "Blue",
	}).Code)

	rec := app.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", dto.ForgotPasswordRequest{
		Email: "a@x.com", Answer: "red", NewPassword: "newpass1",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", dto.ForgotPasswordRequest{
		Email: "a@x.com", Answer: " blue ", NewPassword: "newpass1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	app.login(t, "a@x.com", "newpass1")
	rec = app.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "a@x.com", Password: "pw123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRateLimited(t *testing.T) {
	app := newTestApp(t, 2)

	creds := dto.LoginRequest{Email: "nobody@x.com", Password: "whatever"}
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/api/v1/auth/login", "", creds).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/api/v1/auth/login", "", creds).Code)

	rec := app.do(t, http.MethodPost, "/api/v1/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHealthzAndTraceHeader(t *testing.T) {
	app := newTestApp(t, 1)

	rec := app.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.TraceHeader))
}

func TestProductSearchThroughRouter(t *testing.T) {
	app := newTestApp(t, 1)
	laptop := app.products.Put(domain.Product{Name: "Laptop", Price: 1200, Quantity: 1})

	rec := app.do(t, http.MethodPost, "/api/v1/product/search", "", product.SearchProductsRequest{
		ProductIDs: []string{laptop.ID, "missing"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp product.SearchProductsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, []string{"missing"}, resp.NotFound)
}
