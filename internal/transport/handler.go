package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"zaqeen-be/internal/botcheck"
	"zaqeen-be/internal/checkout"
	"zaqeen-be/internal/coupon"
	"zaqeen-be/internal/inventory"
	"zaqeen-be/internal/logger"
	"zaqeen-be/internal/middleware"
	"zaqeen-be/internal/order"
	"zaqeen-be/internal/risk"
	"zaqeen-be/internal/settings"
	"zaqeen-be/internal/verification"
)

type Handler struct {
	checkout     checkout.Service
	verification verification.Service
}

func NewHandler(checkoutSvc checkout.Service, verificationSvc verification.Service) *Handler {
	return &Handler{checkout: checkoutSvc, verification: verificationSvc}
}

// Routes wires the public API surface onto a mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/checkout", h.placeOrder)
	mux.HandleFunc("POST /api/otp/send", h.sendOTP)
	mux.HandleFunc("POST /api/otp/verify", h.verifyOTP)
	mux.HandleFunc("GET /healthz", h.health)
	return mux
}

type checkoutLine struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
	SelectedSize *string         `json:"selectedSize,omitempty"`
}

type deliveryPayload struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Email   string  `json:"email"`
	City    string  `json:"city"`
	Address string  `json:"address"`
	Note    *string `json:"note,omitempty"`
}

type checkoutPayload struct {
	UserID        string          `json:"userId"`
	Items         []checkoutLine  `json:"items"`
	Delivery      deliveryPayload `json:"delivery"`
	PaymentMethod string          `json:"paymentMethod"`
	TransactionID string          `json:"transactionId"`
	CouponCode    string          `json:"couponCode"`
	BotToken      string          `json:"botToken"`
	OTPProof      string          `json:"otpProof"`
}

type receiptPayload struct {
	OrderID     string          `json:"orderId"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Total       decimal.Decimal `json:"total"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var payload checkoutPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("request body is not valid JSON"))
		return
	}

	lines := make([]checkout.Line, 0, len(payload.Items))
	for _, item := range payload.Items {
		lines = append(lines, checkout.Line{
			ProductID:    item.ProductID,
			Name:         item.Name,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
			SelectedSize: item.SelectedSize,
		})
	}

	ownerID := payload.UserID
	if ownerID == "" {
		ownerID = r.Header.Get("X-Device-ID")
	}

	req := &checkout.Request{
		UserID:      payload.UserID,
		CartOwnerID: ownerID,
		Lines:       lines,
		Delivery: order.DeliveryInfo{
			Name:    payload.Delivery.Name,
			Phone:   payload.Delivery.Phone,
			Email:   payload.Delivery.Email,
			City:    payload.Delivery.City,
			Address: payload.Delivery.Address,
			Note:    payload.Delivery.Note,
		},
		PaymentMethod:     payload.PaymentMethod,
		TransactionID:     payload.TransactionID,
		CouponCode:        payload.CouponCode,
		BotToken:          payload.BotToken,
		OTPProof:          payload.OTPProof,
		IP:                middleware.ClientIP(r),
		UserAgent:         r.UserAgent(),
		DeviceFingerprint: r.Header.Get("X-Device-ID"),
	}

	receipt, err := h.checkout.PlaceOrder(r.Context(), req)
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, receiptPayload{
		OrderID:     receipt.OrderID,
		Subtotal:    receipt.Subtotal,
		Discount:    receipt.Discount,
		ShippingFee: receipt.ShippingFee,
		Total:       receipt.Total,
	})
}

type otpPayload struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (h *Handler) sendOTP(w http.ResponseWriter, r *http.Request) {
	var payload otpPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Phone == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("phone is required"))
		return
	}

	if err := h.verification.Send(r.Context(), payload.Phone); err != nil {
		logger.FromCtx(r.Context()).Error("otp dispatch failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorBody("could not send verification code"))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (h *Handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var payload otpPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Phone == "" || payload.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("phone and code are required"))
		return
	}

	proof, err := h.verification.Verify(r.Context(), payload.Phone, payload.Code)
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrNotRequested),
			errors.Is(err, verification.ErrCodeMismatch),
			errors.Is(err, verification.ErrCodeExpired):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			logger.FromCtx(r.Context()).Error("otp verify failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorBody("verification failed"))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"proofToken": proof})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeCheckoutError maps pipeline failures to HTTP statuses. Risk and bot
// rejections share one deliberately vague message.
func (h *Handler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromCtx(r.Context())

	var vErr *checkout.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation_failed",
			"fields": vErr.Fields,
		})
		return
	}

	var rejection *risk.Rejection
	if errors.As(err, &rejection) || errors.Is(err, botcheck.ErrBotRejected) {
		writeJSON(w, http.StatusForbidden, errorBody("order could not be accepted"))
		return
	}

	if errors.Is(err, checkout.ErrPhoneUnverified) {
		writeJSON(w, http.StatusForbidden, errorBody(err.Error()))
		return
	}

	switch {
	case errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, coupon.ErrExpired),
		errors.Is(err, coupon.ErrMinSpend),
		errors.Is(err, coupon.ErrExhausted):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	var notFound *inventory.ProductNotFoundError
	if errors.As(err, &notFound) {
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		return
	}

	var shortage *inventory.InsufficientStockError
	if errors.As(err, &shortage) {
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
		return
	}
	if errors.Is(err, inventory.ErrReservationConflict) {
		writeJSON(w, http.StatusConflict, errorBody("could not reserve stock, please retry"))
		return
	}

	if errors.Is(err, settings.ErrNotConfigured) {
		log.Error("checkout unavailable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("checkout is temporarily unavailable"))
		return
	}

	log.Error("checkout failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody("something went wrong, please try again"))
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
