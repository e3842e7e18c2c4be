package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"zaqeen-be/internal/botcheck"
	"zaqeen-be/internal/cart"
	"zaqeen-be/internal/coupon"
	"zaqeen-be/internal/inventory"
	"zaqeen-be/internal/logger"
	"zaqeen-be/internal/order"
	"zaqeen-be/internal/pricing"
	"zaqeen-be/internal/risk"
	"zaqeen-be/internal/settings"
)

// Line is one cart line as submitted by the buyer. The unit price was
// quoted when the item entered the cart and is frozen onto the order.
type Line struct {
	ProductID    string
	Name         string
	UnitPrice    decimal.Decimal
	Quantity     int
	SelectedSize *string
}

// Request is everything a checkout submission carries.
type Request struct {
	UserID            string
	CartOwnerID       string
	Lines             []Line
	Delivery          order.DeliveryInfo
	PaymentMethod     string
	TransactionID     string
	CouponCode        string
	BotToken          string
	OTPProof          string
	IP                string
	UserAgent         string
	DeviceFingerprint string
}

// Receipt is returned to the buyer on success.
type Receipt struct {
	OrderID     string
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
}

// ProofChecker validates the OTP proof token issued after phone
// verification.
type ProofChecker interface {
	Check(token, phone string) error
}

type Service interface {
	// PlaceOrder runs the full pipeline: pricing, validation, bot check,
	// risk screening, stock reservation, and persistence. Any failing
	// stage aborts the stages after it.
	PlaceOrder(ctx context.Context, req *Request) (*Receipt, error)
}

type service struct {
	settings  settings.Repository
	coupons   coupon.Service
	riskSvc   risk.Service
	inventory inventory.Service
	orders    order.Service
	carts     cart.Repository
	bots      botcheck.Verifier
	proofs    ProofChecker
}

func NewService(
	settingsRepo settings.Repository,
	coupons coupon.Service,
	riskSvc risk.Service,
	inventorySvc inventory.Service,
	orders order.Service,
	carts cart.Repository,
	bots botcheck.Verifier,
	proofs ProofChecker,
) Service {
	return &service{
		settings:  settingsRepo,
		coupons:   coupons,
		riskSvc:   riskSvc,
		inventory: inventorySvc,
		orders:    orders,
		carts:     carts,
		bots:      bots,
		proofs:    proofs,
	}
}

func (s *service) PlaceOrder(ctx context.Context, req *Request) (*Receipt, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
	)

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		log.Error("settings fetch failed", zap.Error(err))
		return nil, err
	}

	subtotal := s.subtotal(req.Lines)

	discount := decimal.Zero
	couponCode := ""
	if strings.TrimSpace(req.CouponCode) != "" {
		applied, err := s.coupons.Apply(ctx, req.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}
		discount = applied.Amount
		couponCode = applied.Code
	}

	shippingFee := pricing.ShippingFee(subtotal, req.Delivery.City, cfg)
	total := pricing.Total(subtotal, discount, shippingFee)

	if fieldErrs := Validate(req.Delivery, total, cfg); len(fieldErrs) > 0 {
		log.Info("validation rejected", zap.Int("fields", len(fieldErrs)))
		return nil, &ValidationError{Fields: fieldErrs}
	}
	if len(req.Lines) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"items": "cart is empty"}}
	}
	if !cfg.PaymentMethodEnabled(req.PaymentMethod) {
		return nil, &ValidationError{Fields: map[string]string{
			"paymentMethod": "payment method is not available",
		}}
	}
	// Online payments must carry the buyer's transaction evidence. Only
	// cash on delivery is allowed through without one.
	if !isCOD(req.PaymentMethod) && strings.TrimSpace(req.TransactionID) == "" {
		return nil, &ValidationError{Fields: map[string]string{
			"transactionId": "transaction id is required for " + req.PaymentMethod,
		}}
	}

	if cfg.OTPRequired {
		if err := s.proofs.Check(req.OTPProof, req.Delivery.Phone); err != nil {
			log.Info("otp proof rejected", zap.Error(err))
			return nil, ErrPhoneUnverified
		}
	}

	botResult, err := s.bots.Verify(ctx, req.BotToken, req.IP)
	if err != nil {
		log.Info("bot check rejected", zap.Error(err))
		return nil, err
	}

	userID := req.UserID
	if userID == "" {
		userID = order.GuestUserID
	}
	identity := risk.Identity{
		UserID: userID,
		Phone:  req.Delivery.Phone,
		Email:  req.Delivery.Email,
		IP:     req.IP,
	}
	if err := s.riskSvc.Screen(ctx, identity, cfg.MaxOrdersPerDay); err != nil {
		return nil, err
	}

	reservationID, snapshots, err := s.inventory.Reserve(ctx, reservationItems(req.Lines))
	if err != nil {
		return nil, err
	}

	o := s.buildOrder(req, userID, snapshots, subtotal, discount, couponCode, shippingFee, total, botResult.Score)

	orderID, err := s.orders.PersistNew(ctx, o, reservationID)
	if err != nil {
		log.Error("order persistence failed after reservation",
			zap.String("reservation_id", reservationID),
			zap.Error(err),
		)
		return nil, &PersistenceError{ReservationID: reservationID, Err: err}
	}

	if couponCode != "" {
		if err := s.coupons.ConsumeUsage(ctx, couponCode); err != nil {
			log.Warn("coupon usage increment failed",
				zap.String("order_id", orderID),
				zap.String("code", couponCode),
				zap.Error(err),
			)
		}
	}

	if req.CartOwnerID != "" {
		if err := s.carts.Clear(ctx, req.CartOwnerID); err != nil {
			log.Warn("cart clear failed", zap.String("order_id", orderID), zap.Error(err))
		}
	}

	log.Info("order placed",
		zap.String("order_id", orderID),
		zap.String("total", total.String()),
	)

	return &Receipt{
		OrderID:     orderID,
		Subtotal:    subtotal,
		Discount:    discount,
		ShippingFee: shippingFee,
		Total:       total,
	}, nil
}

// codMethod is the one payment method that carries no transaction evidence.
const codMethod = "cod"

func isCOD(method string) bool {
	return strings.EqualFold(strings.TrimSpace(method), codMethod)
}

func (s *service) subtotal(lines []Line) decimal.Decimal {
	priced := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		priced = append(priced, pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity})
	}
	return pricing.Subtotal(priced)
}

func reservationItems(lines []Line) []inventory.ReservationItem {
	items := make([]inventory.ReservationItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, inventory.ReservationItem{
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			SelectedSize: l.SelectedSize,
		})
	}
	return items
}

func (s *service) buildOrder(
	req *Request,
	userID string,
	snapshots []inventory.Snapshot,
	subtotal, discount decimal.Decimal,
	couponCode string,
	shippingFee, total decimal.Decimal,
	botScore float64,
) *order.Order {
	names := make(map[string]string, len(snapshots))
	for _, snap := range snapshots {
		names[snap.ProductID] = snap.Name
	}

	items := make([]order.Item, 0, len(req.Lines))
	for _, l := range req.Lines {
		name := l.Name
		if catalogName, ok := names[l.ProductID]; ok {
			name = catalogName
		}
		items = append(items, order.Item{
			ProductID:       l.ProductID,
			Name:            name,
			Quantity:        l.Quantity,
			PriceAtPurchase: l.UnitPrice,
			SelectedSize:    l.SelectedSize,
		})
	}

	txnID := strings.TrimSpace(req.TransactionID)
	if isCOD(req.PaymentMethod) {
		txnID = order.CODTransactionID
	}

	return &order.Order{
		UserID:       userID,
		Items:        items,
		Subtotal:     subtotal,
		Discount:     discount,
		CouponCode:   couponCode,
		ShippingFee:  shippingFee,
		TotalAmount:  total,
		DeliveryInfo: req.Delivery,
		PaymentInfo: order.PaymentInfo{
			Method:        req.PaymentMethod,
			TransactionID: txnID,
			Status:        "pending",
			Verified:      false,
		},
		Status: order.StatusPending,
		Metadata: order.Metadata{
			IP:                req.IP,
			UserAgent:         req.UserAgent,
			DeviceFingerprint: req.DeviceFingerprint,
			BotScore:          botScore,
			Timestamp:         time.Now(),
		},
	}
}
