package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salesdesk/internal/database"
	"salesdesk/internal/middleware"
	"salesdesk/internal/model"
	"salesdesk/internal/repository"
	"salesdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("customer: %w", service.ErrNotFound), http.StatusNotFound},
		{service.ErrConflict, http.StatusConflict},
		{service.ErrReadOnlyTaxKind, http.StatusMethodNotAllowed},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{fmt.Errorf("%w: bad date", service.ErrInvalidInput), http.StatusBadRequest},
		{service.ErrInvalidAllocation, http.StatusBadRequest},
		{service.ErrProfileInactive, http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

type testServer struct {
	router   *gin.Engine
	customer *model.Customer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	SetupValidator()
	middleware.SetJWTSecret("handler-test-secret")
	t.Cleanup(func() { middleware.SetJWTSecret("default_super_secret_key") })

	db, err := database.OpenInMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := zap.NewNop()
	tx := repository.NewTransactionManager(db)
	customers := repository.NewCustomerRepository(db)
	sales := repository.NewSalesPersonRepository(db)
	taxes := repository.NewTaxOptionRepository(db)
	audit := repository.NewAuditRepository(db)

	customer := &model.Customer{Name: "Acme", IsActive: true}
	require.NoError(t, customers.Create(context.Background(), customer))

	r := gin.New()
	group := r.Group("/api/v1/sales")
	NewCustomerHandler(service.NewCustomerService(customers, sales, audit, tx, nil)).RegisterRoutes(group)
	NewTaxHandler(service.NewTaxService(taxes, audit, tx, nil, log)).RegisterRoutes(group)
	NewDeliveryChallanHandler(service.NewDeliveryChallanService(
		repository.NewDeliveryChallanRepository(db), customers, taxes, audit, tx, nil, log,
	)).RegisterRoutes(group)

	return &testServer{router: r, customer: customer}
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": uuid.NewString(), "role": role})
	s, err := token.SignedString(middleware.GetJWTSecret())
	require.NoError(t, err)
	return "Bearer " + s
}

func (s *testServer) do(t *testing.T, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestDeliveryChallanHandler_CreateAndDownload(t *testing.T) {
	s := newTestServer(t)
	auth := bearer(t, model.RoleStaff)

	w := s.do(t, http.MethodPost, "/api/v1/sales/delivery-challans/create/", auth, gin.H{
		"customer_id":  s.customer.ID.String(),
		"challan_no":   "DC-999",
		"challan_type": model.ChallanTypeJobWork,
		"items": []gin.H{
			{"description": "Gear box", "quantity": "2", "rate": "150"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var challan service.DeliveryChallanResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &challan))
	assert.Equal(t, "DC-001", challan.ChallanNo)
	assert.Equal(t, "300.00", challan.GrandTotal)

	w = s.do(t, http.MethodGet, "/api/v1/sales/delivery-challans/"+challan.ID+"/pdf", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=DC-001.pdf", w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = s.do(t, http.MethodGet, "/api/v1/sales/delivery-challans/?customer="+s.customer.ID.String(), auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &page))
	assert.EqualValues(t, 1, page.Total)
}

func TestDeliveryChallanHandler_DownloadSlashNumber(t *testing.T) {
	s := newTestServer(t)
	auth := bearer(t, model.RoleStaff)

	w := s.do(t, http.MethodPost, "/api/v1/sales/delivery-challans/create/", auth, gin.H{
		"customer_id":    s.customer.ID.String(),
		"challan_no":     "DC-1",
		"number_pattern": "YEAR_SLASH_MONTH",
		"challan_type":   model.ChallanTypeJobWork,
		"items": []gin.H{
			{"description": "Valve", "quantity": "1", "rate": "80"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var challan service.DeliveryChallanResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &challan))
	assert.Regexp(t, `^DC-\d{4}/\d{2}-001$`, challan.ChallanNo)

	w = s.do(t, http.MethodGet, "/api/v1/sales/delivery-challans/"+challan.ID+"/pdf", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Regexp(t, `^attachment; filename=DC-\d{4}-\d{2}-001\.pdf$`, w.Header().Get("Content-Disposition"))
}

func TestAttachment(t *testing.T) {
	assert.Equal(t, "attachment; filename=DC-001.pdf", attachment("DC-001.pdf"))
	assert.Equal(t, "attachment; filename=DC-2025-03-001.pdf", attachment("DC-2025/03-001.pdf"))
	assert.Equal(t, `attachment; filename="a b.pdf"`, attachment("a b.pdf"))
}

func TestDeliveryChallanHandler_Errors(t *testing.T) {
	s := newTestServer(t)
	auth := bearer(t, model.RoleStaff)

	w := s.do(t, http.MethodPost, "/api/v1/sales/delivery-challans/create/", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/sales/delivery-challans/create/", bearer(t, "guest"), gin.H{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/sales/delivery-challans/create/", auth, gin.H{"customer_id": s.customer.ID.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeEnvelope(t, w).Error, "Invalid request payload")

	w = s.do(t, http.MethodPost, "/api/v1/sales/delivery-challans/create/", auth, gin.H{
		"customer_id":  uuid.NewString(),
		"challan_type": model.ChallanTypeOthers,
		"items":        []gin.H{{"description": "Pipe", "quantity": "1", "rate": "10"}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/sales/delivery-challans/not-a-uuid/", auth, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaxHandler_TDSIsReadOnly(t *testing.T) {
	s := newTestServer(t)
	auth := bearer(t, model.RoleManager)

	w := s.do(t, http.MethodPost, "/api/v1/sales/TCS/", auth, gin.H{"name": "Scrap", "rate": "1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/sales/TCS/", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var options []service.TaxOptionResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &options))
	require.Len(t, options, 1)
	assert.Equal(t, "Scrap", options[0].Name)

	w = s.do(t, http.MethodPost, "/api/v1/sales/TCS/", auth, gin.H{"name": "Bad", "rate": "ten"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request payload: rate must be a number", decodeEnvelope(t, w).Error)

	w = s.do(t, http.MethodPost, "/api/v1/sales/TDS/", auth, gin.H{"name": "Rent", "rate": "10"})
	assert.Equal(t, http.StatusNotFound, w.Code) // no POST route for TDS
}

func TestCustomerHandler_SalesPersonRequiresManager(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{"name": "Ravi", "email": "ravi@example.com"}

	w := s.do(t, http.MethodPost, "/api/v1/sales/sales-persons/", bearer(t, model.RoleStaff), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/sales/sales-persons/", bearer(t, model.RoleManager), body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/sales/sales-persons/", bearer(t, model.RoleAdmin), body)
	assert.Equal(t, http.StatusConflict, w.Code)
}
