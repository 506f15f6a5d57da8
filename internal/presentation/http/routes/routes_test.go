package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/application/service"
	"github.com/sangkips/repairshop-api/internal/config"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/policy"
	"github.com/sangkips/repairshop-api/internal/infrastructure/memory"
	"github.com/sangkips/repairshop-api/internal/presentation/http/handler"
	"github.com/sangkips/repairshop-api/pkg/utils"
	"go.uber.org/zap"
)

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	jwt    *utils.JWTManager
	users  *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	log := zap.NewNop()
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, "repairshop-test")
	loc := time.UTC

	userService := service.NewUserService(store.Users())
	h := &Handlers{
		Auth:    handler.NewAuthHandler(service.NewAuthService(store.Users(), jwtManager)),
		Product: handler.NewProductHandler(service.NewProductService(store.Products()), loc),
		Sale:    handler.NewSaleHandler(service.NewSaleService(store.Products(), store.Sales(), store.Repairs(), service.DefaultTaxRate, log), loc),
		Repair:  handler.NewRepairHandler(service.NewRepairService(store.Repairs(), store.Sales(), log)),
		Report:  handler.NewReportHandler(service.NewReportService(store.Analytics(), store.Products(), store.ReportCache(), loc, log)),
		Expense: handler.NewExpenseHandler(service.NewExpenseService(store.Expenses()), loc),
		User:    handler.NewUserHandler(userService),
	}
	router := Setup(h, &Deps{
		JWTManager:      jwtManager,
		Cfg:             &config.Config{App: config.AppConfig{Name: "repairshop-test"}},
		IdempotencyRepo: store.Idempotency(),
		Policy:          policy.DefaultTable(),
		Logger:          log,
	})

	return &testServer{router: router, store: store, jwt: jwtManager, users: userService}
}

// tokenFor creates a user holding roles and returns a bearer token for it
func (s *testServer) tokenFor(t *testing.T, roles ...enum.Role) string {
	t.Helper()
	user, err := s.users.CreateUser(context.Background(), &service.CreateUserInput{
		Username: "user-" + uuid.NewString()[:8],
		Password: "secret123",
		Roles:    enum.NewRoleSet(roles...),
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := s.jwt.GenerateAccessToken(user.ID, user.Username, user.Roles.Strings())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (s *testServer) product(t *testing.T, title string, typ enum.ProductType, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{Title: title, Type: typ, PurchasePrice: 50, Stock: stock}
	if err := s.store.Products().Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func cart(a, b *entity.Product) map[string]interface{} {
	return map[string]interface{}{
		"sale_code": "V-" + uuid.NewString()[:6],
		"items": []map[string]interface{}{
			{"product_id": a.ID, "qty": 2, "unit_price": 116},
			{"product_id": b.ID, "qty": 1, "unit_price": 500, "service_info": map[string]string{
				"customer_name":  "Laura",
				"customer_phone": "5551234567",
				"brand":          "Samsung",
				"model":          "A52",
				"description":    "Broken screen",
			}},
		},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.users.CreateUser(context.Background(), &service.CreateUserInput{
		Username: "caja", Password: "secret123", Roles: enum.NewRoleSet(enum.RoleSales),
	}); err != nil {
		t.Fatal(err)
	}

	w, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "caja", "password": "secret123"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	var data struct {
		AccessToken string `json:"access_token"`
	}
	_ = json.Unmarshal(env.Data, &data)

	w, _ = s.do(t, http.MethodGet, "/api/v1/auth/me", data.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected the issued token to work, got %d", w.Code)
	}

	w, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "caja", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a bad password, got %d", w.Code)
	}
}

func TestAuthorizationBySegment(t *testing.T) {
	s := newTestServer(t)
	sales := s.tokenFor(t, enum.RoleSales)
	inventory := s.tokenFor(t, enum.RoleInventory)
	admin := s.tokenFor(t, enum.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/sales", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/sales", "nope", nil, http.StatusUnauthorized},
		{"sales lists sales", http.MethodGet, "/api/v1/sales", sales, nil, http.StatusOK},
		{"sales cannot see reports", http.MethodGet, "/api/v1/reports", sales, nil, http.StatusForbidden},
		{"sales cannot see repairs", http.MethodGet, "/api/v1/repairs/history", sales, nil, http.StatusForbidden},
		{"sales cannot manage users", http.MethodGet, "/api/v1/users", sales, nil, http.StatusForbidden},
		{"anyone reads products", http.MethodGet, "/api/v1/products", sales, nil, http.StatusOK},
		{"sales cannot create products", http.MethodPost, "/api/v1/products", sales, map[string]interface{}{"title": "Case"}, http.StatusForbidden},
		{"inventory creates products", http.MethodPost, "/api/v1/products", inventory, map[string]interface{}{"title": "Case", "stock": 3}, http.StatusCreated},
		{"inventory cannot sell", http.MethodGet, "/api/v1/sales", inventory, nil, http.StatusForbidden},
		{"admin sees reports", http.MethodGet, "/api/v1/reports", admin, nil, http.StatusOK},
		{"admin lists roles", http.MethodGet, "/api/v1/users/roles", admin, nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := s.do(t, tt.method, tt.path, tt.token, tt.body)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body)
			}
		})
	}
}

func TestCheckoutToDelivery(t *testing.T) {
	s := newTestServer(t)
	cashier := s.tokenFor(t, enum.RoleSales)
	tech := s.tokenFor(t, enum.RoleTechnician)
	courier := s.tokenFor(t, enum.RoleDelivery)

	a := s.product(t, "Charger", enum.ProductTypeProduct, 5)
	b := s.product(t, "Screen repair", enum.ProductTypeService, 0)

	w, env := s.do(t, http.MethodPost, "/api/v1/sales", cashier, cart(a, b))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body)
	}
	var sale entity.Sale
	if err := json.Unmarshal(env.Data, &sale); err != nil {
		t.Fatal(err)
	}
	if sale.Total != 732 || sale.Status != enum.SaleStatusPending {
		t.Fatalf("unexpected sale: total %v status %s", sale.Total, sale.Status)
	}

	w, env = s.do(t, http.MethodGet, "/api/v1/repairs", tech, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list repairs: %d", w.Code)
	}
	var repairs []entity.Repair
	_ = json.Unmarshal(env.Data, &repairs)
	if len(repairs) != 1 {
		t.Fatalf("expected one active repair, got %d", len(repairs))
	}
	path := "/api/v1/repairs/" + repairs[0].ID.String() + "/status"
	deliver := "/api/v1/deliveries/" + repairs[0].ID.String()

	// delivery desk cannot hand over a ticket that is not completed
	w, _ = s.do(t, http.MethodPut, deliver, courier, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 delivering a received ticket, got %d", w.Code)
	}

	// technicians cannot mark delivered through the free-form path
	w, _ = s.do(t, http.MethodPatch, path, tech, map[string]string{"status": "delivered"})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	w, _ = s.do(t, http.MethodPatch, path, tech, map[string]string{"status": "finished"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown status, got %d", w.Code)
	}
	w, _ = s.do(t, http.MethodPatch, path, tech, map[string]string{"status": "completed", "revision": "replaced screen"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}

	// technicians do not work the delivery desk
	w, _ = s.do(t, http.MethodPut, deliver, tech, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}

	w, _ = s.do(t, http.MethodPut, deliver, courier, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}

	stored, _ := s.store.Sales().GetByID(context.Background(), sale.ID)
	if stored.Status != enum.SaleStatusCompleted {
		t.Errorf("expected sale completed, got %s", stored.Status)
	}
	stocked, _ := s.store.Products().GetByID(context.Background(), a.ID)
	if stocked.Stock != 3 {
		t.Errorf("expected stock 3, got %d", stocked.Stock)
	}
}

func TestCheckoutIdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	cashier := s.tokenFor(t, enum.RoleSales)
	a := s.product(t, "Charger", enum.ProductTypeProduct, 5)
	b := s.product(t, "Screen repair", enum.ProductTypeService, 0)
	body := cart(a, b)

	first, _ := s.do(t, http.MethodPost, "/api/v1/sales", cashier, body, "Idempotency-Key", "checkout-1")
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body)
	}

	replay, _ := s.do(t, http.MethodPost, "/api/v1/sales", cashier, body, "Idempotency-Key", "checkout-1")
	if replay.Code != http.StatusCreated || replay.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Fatalf("expected a replayed 201, got %d", replay.Code)
	}
	if replay.Body.String() != first.Body.String() {
		t.Error("replayed body differs from the first response")
	}

	stocked, _ := s.store.Products().GetByID(context.Background(), a.ID)
	if stocked.Stock != 3 {
		t.Errorf("replay sold twice: stock %d", stocked.Stock)
	}

	other := cart(a, b)
	w, _ := s.do(t, http.MethodPost, "/api/v1/sales", cashier, other, "Idempotency-Key", "checkout-1")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for a reused key with a new body, got %d", w.Code)
	}
}

func TestCheckoutErrors(t *testing.T) {
	s := newTestServer(t)
	cashier := s.tokenFor(t, enum.RoleSales)
	a := s.product(t, "Charger", enum.ProductTypeProduct, 1)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"empty cart", map[string]interface{}{"items": []interface{}{}}, http.StatusBadRequest},
		{"unknown product", map[string]interface{}{"items": []map[string]interface{}{{"product_id": uuid.New(), "qty": 1, "unit_price": 10}}}, http.StatusNotFound},
		{"not enough stock", map[string]interface{}{"items": []map[string]interface{}{{"product_id": a.ID, "qty": 2, "unit_price": 10}}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := s.do(t, http.MethodPost, "/api/v1/sales", cashier, tt.body)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body)
			}
		})
	}
}

func TestReportEndpoint(t *testing.T) {
	s := newTestServer(t)
	admin := s.tokenFor(t, enum.RoleAdmin)

	w, env := s.do(t, http.MethodGet, "/api/v1/reports?year=2025&month=all", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var first struct {
		Cached  bool              `json:"cached"`
		Monthly []json.RawMessage `json:"monthly"`
	}
	_ = json.Unmarshal(env.Data, &first)
	if first.Cached || len(first.Monthly) != 12 {
		t.Errorf("unexpected first report: cached %v, %d months", first.Cached, len(first.Monthly))
	}

	_, env = s.do(t, http.MethodGet, "/api/v1/reports?year=2025&month=all", admin, nil)
	var second struct {
		Cached bool `json:"cached"`
	}
	_ = json.Unmarshal(env.Data, &second)
	if !second.Cached {
		t.Error("expected the second report to be served from cache")
	}

	w, _ = s.do(t, http.MethodGet, "/api/v1/reports?year=2025&month=13", admin, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for month 13, got %d", w.Code)
	}
}

func TestExpenses(t *testing.T) {
	s := newTestServer(t)
	finance := s.tokenFor(t, enum.RoleFinance)

	w, _ := s.do(t, http.MethodPost, "/api/v1/expenses", finance, map[string]interface{}{
		"type": "fixed", "title": "Rent", "amount": 4500, "date": "2025-03-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body)
	}

	w, _ = s.do(t, http.MethodPost, "/api/v1/expenses", finance, map[string]interface{}{
		"type": "fixed", "title": "Rent", "amount": 4500, "date": "March",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad date, got %d", w.Code)
	}

	w, _ = s.do(t, http.MethodGet, "/api/v1/expenses?from=2025-03-01&to=2025-03-31", finance, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestUpdateSaleRoute(t *testing.T) {
	s := newTestServer(t)
	cashier := s.tokenFor(t, enum.RoleSales)
	a := s.product(t, "Charger", enum.ProductTypeProduct, 5)
	b := s.product(t, "Screen repair", enum.ProductTypeService, 0)

	w, env := s.do(t, http.MethodPost, "/api/v1/sales", cashier, cart(a, b))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body)
	}
	var sale entity.Sale
	if err := json.Unmarshal(env.Data, &sale); err != nil {
		t.Fatal(err)
	}

	update := map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": a.ID, "qty": 4, "unit_price": 116}},
	}
	w, env = s.do(t, http.MethodPut, "/api/v1/sales/"+sale.ID.String(), cashier, update)
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body)
	}
	var updated entity.Sale
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Status != enum.SaleStatusCompleted || len(updated.Items) != 1 || updated.Total != 464 {
		t.Errorf("unexpected sale after update: %+v", updated)
	}

	stocked, _ := s.store.Products().GetByID(context.Background(), a.ID)
	if stocked.Stock != 1 {
		t.Errorf("expected stock 1, got %d", stocked.Stock)
	}

	w, _ = s.do(t, http.MethodPut, "/api/v1/sales/"+uuid.NewString(), cashier, update)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown sale: want 404, got %d", w.Code)
	}
	w, _ = s.do(t, http.MethodPut, "/api/v1/sales/"+sale.ID.String(), "", update)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: want 401, got %d", w.Code)
	}
}
