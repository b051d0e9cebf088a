package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/pupsorders/internal/domain/order"
	"github.com/geocoder89/pupsorders/internal/http/handlers"
	"github.com/geocoder89/pupsorders/internal/http/middlewares"
	"github.com/geocoder89/pupsorders/internal/notifications"
	"github.com/geocoder89/pupsorders/internal/observability"
	"github.com/geocoder89/pupsorders/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAccounts struct {
	registerFn       func(ctx context.Context, email, password string) (string, error)
	loginFn          func(ctx context.Context, email, password string) (string, error)
	changePasswordFn func(ctx context.Context, userID, newPassword string) error
}

func (f *fakeAccounts) Register(ctx context.Context, email, password string) (string, error) {
	return f.registerFn(ctx, email, password)
}

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (string, error) {
	return f.loginFn(ctx, email, password)
}

func (f *fakeAccounts) ChangePassword(ctx context.Context, userID, newPassword string) error {
	return f.changePasswordFn(ctx, userID, newPassword)
}

type fakeEmails struct {
	emailFn func(token string) (string, error)
}

func (f *fakeEmails) Email(token string) (string, error) { return f.emailFn(token) }

type fakeOrders struct {
	createFn func(ctx context.Context, userID string, req order.CreateRequest) ([]order.Order, error)
	listFn   func(ctx context.Context, userID string) ([]order.Order, error)
	deleteFn func(ctx context.Context, userID, orderID string) ([]order.Order, error)
}

func (f *fakeOrders) CreateOrder(ctx context.Context, userID string, req order.CreateRequest) ([]order.Order, error) {
	return f.createFn(ctx, userID, req)
}

func (f *fakeOrders) ListOrders(ctx context.Context, userID string) ([]order.Order, error) {
	return f.listFn(ctx, userID)
}

func (f *fakeOrders) DeleteOrder(ctx context.Context, userID, orderID string) ([]order.Order, error) {
	return f.deleteFn(ctx, userID, orderID)
}

type fakeNotifier struct {
	sendFn func(ctx context.Context, msg notifications.ContactMessage) error
}

func (f *fakeNotifier) SendContactMessage(ctx context.Context, msg notifications.ContactMessage) error {
	return f.sendFn(ctx, msg)
}

// withIdentity stands in for RequireAuth.
func withIdentity(userID, token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.CtxUserID, userID)
		c.Set(middlewares.CtxToken, token)
		c.Next()
	}
}

func setupRouter(accounts handlers.AccountService, emails handlers.EmailResolver, orders handlers.OrderService) *gin.Engine {
	r := gin.New()

	uh := handlers.NewUsersHandler(accounts, emails)
	oh := handlers.NewOrdersHandler(orders)

	r.POST("/users/register", uh.Register)
	r.POST("/users/login", uh.Login)

	authed := r.Group("/", withIdentity("u1", "tok-1"))
	authed.POST("/users/update", uh.UpdatePassword)
	authed.GET("/users/email", uh.GetEmail)
	authed.POST("/orders/create", oh.CreateOrder)
	authed.GET("/orders/list", oh.ListOrders)
	authed.DELETE("/orders/delete", oh.DeleteOrder)

	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v body=%s", err, w.Body.String())
	}
	return body.Error.Code
}

func TestRegister(t *testing.T) {
	accounts := &fakeAccounts{registerFn: func(_ context.Context, email, password string) (string, error) {
		if email == "taken@x.com" {
			return "", fmt.Errorf("%w: %s", service.ErrAlreadyRegistered, email)
		}
		return "tok-" + email, nil
	}}
	r := setupRouter(accounts, nil, nil)

	w := doJSON(r, http.MethodPost, "/users/register", `{"email":"a@x.com","password":"pw1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", w.Code, w.Body.String())
	}

	var ok struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ok); err != nil || ok.Token != "tok-a@x.com" {
		t.Fatalf("unexpected body %s (err %v)", w.Body.String(), err)
	}

	w = doJSON(r, http.MethodPost, "/users/register", `{"email":"taken@x.com","password":"pw1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if code := errorCode(t, w); code != "already_registered" {
		t.Fatalf("code = %q, want already_registered", code)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	accounts := &fakeAccounts{loginFn: func(_ context.Context, _, _ string) (string, error) {
		return "", service.ErrUnauthorized
	}}
	r := setupRouter(accounts, nil, nil)

	w := doJSON(r, http.MethodPost, "/users/login", `{"email":"a@x.com","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if code := errorCode(t, w); code != "invalid_credentials" {
		t.Fatalf("code = %q, want invalid_credentials", code)
	}
}

func TestLogin_StoreUnavailable(t *testing.T) {
	accounts := &fakeAccounts{loginFn: func(_ context.Context, _, _ string) (string, error) {
		return "", fmt.Errorf("%w: %w", service.ErrUnavailable, context.DeadlineExceeded)
	}}
	r := setupRouter(accounts, nil, nil)

	w := doJSON(r, http.MethodPost, "/users/login", `{"email":"a@x.com","password":"pw"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestUpdatePassword(t *testing.T) {
	var gotUser, gotPassword string
	accounts := &fakeAccounts{changePasswordFn: func(_ context.Context, userID, newPassword string) error {
		gotUser, gotPassword = userID, newPassword
		return nil
	}}
	r := setupRouter(accounts, nil, nil)

	w := doJSON(r, http.MethodPost, "/users/update", `{"password":"pw2"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if gotUser != "u1" || gotPassword != "pw2" {
		t.Fatalf("ChangePassword(%q, %q)", gotUser, gotPassword)
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Message != "Password updated successfully" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestGetEmail(t *testing.T) {
	emails := &fakeEmails{emailFn: func(token string) (string, error) {
		if token != "tok-1" {
			return "", service.ErrUnauthorized
		}
		return "a@x.com", nil
	}}
	r := setupRouter(nil, emails, nil)

	w := doJSON(r, http.MethodGet, "/users/email", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		Email   string `json:"email"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Email != "a@x.com" {
		t.Fatalf("unexpected body %s (err %v)", w.Body.String(), err)
	}
}

func TestCreateOrder(t *testing.T) {
	version := order.Version("1")
	orders := &fakeOrders{createFn: func(_ context.Context, userID string, req order.CreateRequest) ([]order.Order, error) {
		if req.HasVersion() && *req.ReadyPupsVersion == "3" {
			return nil, fmt.Errorf("%w: %q", service.ErrUnsupportedVersion, "3")
		}
		return []order.Order{{ID: "o1", Price: 100, Status: order.StatusPlaced, ReadyPupsVersion: &version}}, nil
	}}
	r := setupRouter(nil, nil, orders)

	w := doJSON(r, http.MethodPost, "/orders/create", `{"readyPupsVersion":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var body struct {
		Success bool                     `json:"success"`
		Data    []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || len(body.Data) != 1 {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
	if body.Data[0]["readyPupsVersion"] != float64(1) {
		t.Fatalf("readyPupsVersion = %v, want numeric 1", body.Data[0]["readyPupsVersion"])
	}

	w = doJSON(r, http.MethodPost, "/orders/create", `{"readyPupsVersion":3}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if code := errorCode(t, w); code != "unsupported_version" {
		t.Fatalf("code = %q, want unsupported_version", code)
	}
}

func TestListOrders_EmptyIsArray(t *testing.T) {
	orders := &fakeOrders{listFn: func(_ context.Context, _ string) ([]order.Order, error) {
		return nil, nil
	}}
	r := setupRouter(nil, nil, orders)

	w := doJSON(r, http.MethodGet, "/orders/list", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if want := `{"data":[],"success":true}`; w.Body.String() != want {
		t.Fatalf("body = %s, want %s", w.Body.String(), want)
	}
}

func TestDeleteOrder(t *testing.T) {
	orders := &fakeOrders{deleteFn: func(_ context.Context, _, orderID string) ([]order.Order, error) {
		if orderID != "o1" {
			return nil, order.ErrNotFound
		}
		return []order.Order{}, nil
	}}
	r := setupRouter(nil, nil, orders)

	w := doJSON(r, http.MethodDelete, "/orders/delete", `{"orderId":"o1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodDelete, "/orders/delete", `{"orderId":"nope"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if code := errorCode(t, w); code != "order_not_found" {
		t.Fatalf("code = %q, want order_not_found", code)
	}

	w = doJSON(r, http.MethodDelete, "/orders/delete", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing orderId", w.Code)
	}
}

func TestRespondServiceError_Unknown(t *testing.T) {
	orders := &fakeOrders{listFn: func(_ context.Context, _ string) ([]order.Order, error) {
		return nil, errors.New("boom")
	}}
	r := setupRouter(nil, nil, orders)

	w := doJSON(r, http.MethodGet, "/orders/list", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if code := errorCode(t, w); code != "internal_error" {
		t.Fatalf("code = %q, want internal_error", code)
	}
}

func TestNotificationsCreate(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	var sendErr error
	notifier := &fakeNotifier{sendFn: func(_ context.Context, _ notifications.ContactMessage) error {
		return sendErr
	}}

	r := gin.New()
	r.POST("/notifications/create", handlers.NewNotificationsHandler(notifier, prom).Create)

	body := `{"name":"Ann","email":"ann@x.com","subject":"Hi","message":"Hello"}`

	tests := []struct {
		name   string
		err    error
		status int
		result string
	}{
		{name: "sent", err: nil, status: http.StatusAccepted, result: "sent"},
		{name: "breaker_open", err: notifications.ErrCircuitOpen, status: http.StatusServiceUnavailable, result: "rejected"},
		{name: "provider_failure", err: errors.New("smtp down"), status: http.StatusBadGateway, result: "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sendErr = tt.err

			w := doJSON(r, http.MethodPost, "/notifications/create", body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if got := testutil.ToFloat64(prom.NotificationsTotal.WithLabelValues(tt.result)); got != 1 {
				t.Fatalf("notifications{%s} = %v, want 1", tt.result, got)
			}
		})
	}

	w := doJSON(r, http.MethodPost, "/notifications/create", `{"name":"Ann"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for incomplete message", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	var pingErr error
	h := handlers.NewHealthHandler(func(context.Context) error { return pingErr })

	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if w := doJSON(r, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz = %d, want 200", w.Code)
	}

	pingErr = errors.New("store down")
	if w := doJSON(r, http.MethodGet, "/readyz", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz = %d, want 503", w.Code)
	}
}
