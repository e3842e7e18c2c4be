package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"zaqeen-be/internal/botcheck"
	"zaqeen-be/internal/checkout"
	"zaqeen-be/internal/coupon"
	"zaqeen-be/internal/inventory"
	"zaqeen-be/internal/risk"
	"zaqeen-be/internal/verification"
)

type MockCheckout struct {
	mock.Mock
}

func (m *MockCheckout) PlaceOrder(ctx context.Context, req *checkout.Request) (*checkout.Receipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Receipt), args.Error(1)
}

type MockVerification struct {
	mock.Mock
}

func (m *MockVerification) Send(ctx context.Context, phone string) error {
	args := m.Called(ctx, phone)
	return args.Error(0)
}

func (m *MockVerification) Verify(ctx context.Context, phone, code string) (string, error) {
	args := m.Called(ctx, phone, code)
	return args.String(0), args.Error(1)
}

func newTestHandler() (*Handler, *MockCheckout, *MockVerification) {
	checkoutSvc := new(MockCheckout)
	verificationSvc := new(MockVerification)
	return NewHandler(checkoutSvc, verificationSvc), checkoutSvc, verificationSvc
}

const checkoutBody = `{
	"userId": "u1",
	"items": [{"productId": "p1", "name": "Panjabi", "unitPrice": "750", "quantity": 2}],
	"delivery": {
		"name": "Rahim Uddin",
		"phone": "01712345678",
		"email": "rahim@example.com",
		"city": "Dhaka",
		"address": "House 12, Road 4, Dhanmondi"
	},
	"paymentMethod": "cod",
	"botToken": "tok-1"
}`

func postCheckout(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)
	return w
}

func TestPlaceOrderHandlerSuccess(t *testing.T) {
	h, checkoutSvc, _ := newTestHandler()

	checkoutSvc.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(req *checkout.Request) bool {
		return req.UserID == "u1" &&
			req.IP == "203.0.113.9" &&
			len(req.Lines) == 1 &&
			req.Lines[0].UnitPrice.Equal(decimal.NewFromInt(750))
	})).Return(&checkout.Receipt{
		OrderID:     "ZQN-1-0001",
		Subtotal:    decimal.NewFromInt(1500),
		ShippingFee: decimal.NewFromInt(60),
		Total:       decimal.NewFromInt(1560),
	}, nil)

	w := postCheckout(t, h, checkoutBody)

	assert.Equal(t, http.StatusCreated, w.Code)

	var body receiptPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ZQN-1-0001", body.OrderID)
	assert.True(t, body.Total.Equal(decimal.NewFromInt(1560)))
}

func TestPlaceOrderHandlerMalformedJSON(t *testing.T) {
	h, _, _ := newTestHandler()

	w := postCheckout(t, h, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaceOrderHandlerValidationFields(t *testing.T) {
	h, checkoutSvc, _ := newTestHandler()

	checkoutSvc.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(nil, &checkout.ValidationError{Fields: map[string]string{"phone": "enter a valid Bangladeshi phone number"}})

	w := postCheckout(t, h, checkoutBody)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation_failed", body.Error)
	assert.Contains(t, body.Fields, "phone")
}

func TestPlaceOrderHandlerRejectionsAreOpaque(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"blacklist hit", &risk.Rejection{Dimension: "phone"}},
		{"order quota", &risk.Rejection{Dimension: "account"}},
		{"bot rejected", botcheck.ErrBotRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, checkoutSvc, _ := newTestHandler()
			checkoutSvc.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := postCheckout(t, h, checkoutBody)

			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Contains(t, w.Body.String(), "order could not be accepted")
			assert.NotContains(t, w.Body.String(), "blacklist")
			assert.NotContains(t, w.Body.String(), tt.name)
		})
	}
}

func TestPlaceOrderHandlerInsufficientStock(t *testing.T) {
	h, checkoutSvc, _ := newTestHandler()

	checkoutSvc.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(nil, &inventory.InsufficientStockError{ProductID: "p1", Name: "Panjabi", Requested: 2, Available: 1})

	w := postCheckout(t, h, checkoutBody)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Panjabi")
}

func TestPlaceOrderHandlerCouponError(t *testing.T) {
	h, checkoutSvc, _ := newTestHandler()

	checkoutSvc.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, coupon.ErrExpired)

	w := postCheckout(t, h, checkoutBody)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestPlaceOrderHandlerPersistenceFailure(t *testing.T) {
	h, checkoutSvc, _ := newTestHandler()

	checkoutSvc.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(nil, &checkout.PersistenceError{ReservationID: "rsv-1", Err: errors.New("db down")})

	w := postCheckout(t, h, checkoutBody)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "rsv-1")
}

func TestSendOTPHandler(t *testing.T) {
	h, _, verificationSvc := newTestHandler()

	verificationSvc.On("Send", mock.Anything, "01712345678").Return(nil)

	req := httptest.NewRequest("POST", "/api/otp/send", strings.NewReader(`{"phone":"01712345678"}`))
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestSendOTPHandlerMissingPhone(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest("POST", "/api/otp/send", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyOTPHandler(t *testing.T) {
	h, _, verificationSvc := newTestHandler()

	verificationSvc.On("Verify", mock.Anything, "01712345678", "123456").Return("proof-token", nil)

	req := httptest.NewRequest("POST", "/api/otp/verify", strings.NewReader(`{"phone":"01712345678","code":"123456"}`))
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "proof-token", body["proofToken"])
}

func TestVerifyOTPHandlerMismatch(t *testing.T) {
	h, _, verificationSvc := newTestHandler()

	verificationSvc.On("Verify", mock.Anything, "01712345678", "000000").
		Return("", verification.ErrCodeMismatch)

	req := httptest.NewRequest("POST", "/api/otp/verify", strings.NewReader(`{"phone":"01712345678","code":"000000"}`))
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthHandler(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
