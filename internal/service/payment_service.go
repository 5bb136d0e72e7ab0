package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"dayliz/config"
	"dayliz/internal/domain"
	"dayliz/internal/fraud"
	"dayliz/internal/models"
	"dayliz/pkg/gateway"
)

// PaymentOrchestrator owns the payment lifecycle: it creates orders, opens
// gateway attempts, applies verified payments exactly once, and gates COD
// through the fraud engine. All payment status transitions in the system go
// through this type or the webhook processor.
type PaymentOrchestrator struct {
	cfg           *config.Config
	orders        OrderStore
	gatewayOrders GatewayOrderStore
	addresses     AddressStore
	audit         AuditSink
	gateway       gateway.Client
	fraud         *fraud.Engine
	notifier      StatusNotifier
	now           func() time.Time
}

func NewPaymentOrchestrator(
	cfg *config.Config,
	orders OrderStore,
	gatewayOrders GatewayOrderStore,
	addresses AddressStore,
	audit AuditSink,
	gw gateway.Client,
	fraudEngine *fraud.Engine,
	notifier StatusNotifier,
) *PaymentOrchestrator {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &PaymentOrchestrator{
		cfg:           cfg,
		orders:        orders,
		gatewayOrders: gatewayOrders,
		addresses:     addresses,
		audit:         audit,
		gateway:       gw,
		fraud:         fraudEngine,
		notifier:      notifier,
		now:           time.Now,
	}
}

type ItemRequest struct {
	ProductID  string
	Name       string
	ImageURL   string
	Quantity   int
	PricePaise int64
}

type CreateOrderRequest struct {
	Method            string
	AmountPaise       int64
	ShippingAddressID uint
	UPIApp            string
	Items             []ItemRequest
	IP                string
	UserAgent         string
}

// PaymentInitiation is returned to the client to drive checkout. For UPI it
// carries the intent deep link; for COD it confirms the order directly.
type PaymentInitiation struct {
	OrderID         string    `json:"order_id"`
	GatewayOrderID  string    `json:"gateway_order_id,omitempty"`
	Method          string    `json:"payment_method"`
	AmountPaise     int64     `json:"amount_paise"`
	Currency        string    `json:"currency"`
	KeyID           string    `json:"key_id,omitempty"`
	UPIIntentURL    string    `json:"upi_intent_url,omitempty"`
	TimeoutAt       time.Time `json:"timeout_at,omitempty"`
	Status          string    `json:"payment_status"`
	PaymentRequired bool      `json:"payment_required"`
	RetryCount      int       `json:"retry_count,omitempty"`
	Message         string    `json:"message,omitempty"`
}

// CreateOrderWithPayment creates the order and, for electronic methods,
// opens the first gateway attempt in the same call.
func (s *PaymentOrchestrator) CreateOrderWithPayment(ctx context.Context, userID uint, req CreateOrderRequest) (*PaymentInitiation, error) {
	method, err := domain.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, err
	}
	if err := s.checkAmount(method, req.AmountPaise); err != nil {
		return nil, err
	}
	// the daily spend cap applies to electronic payments only; COD has its
	// own amount limit inside the eligibility check
	if method.Electronic() {
		if err := s.checkDailyCap(userID, req.AmountPaise); err != nil {
			return nil, err
		}
	}

	var addr *models.Address
	if req.ShippingAddressID != 0 {
		addr, err = s.addresses.FindForUser(req.ShippingAddressID, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: shipping address", domain.ErrValidation)
		}
	}

	in := s.fraudInput(userID, req, method, addr)

	if method == domain.MethodCOD {
		return s.createCODOrder(ctx, userID, req, addr, in)
	}

	score := s.fraud.Analyze(ctx, in)
	if score.Tier == fraud.TierCritical {
		s.audit.Record(&userID, "", nil, "fraud_blocked", domain.SeverityWarning, req.IP, req.UserAgent, score)
		return nil, &domain.FraudBlockedError{Reason: "Transaction blocked due to security concerns"}
	}

	order := s.newOrder(userID, req, method, domain.PaymentPending)
	if err := s.orders.Create(order); err != nil {
		return nil, err
	}
	s.audit.Record(&userID, order.ID, nil, "order_created", domain.SeverityInfo, req.IP, req.UserAgent, map[string]any{
		"amount_paise": req.AmountPaise,
		"method":       string(method),
		"risk_score":   score.Score,
	})

	return s.openAttempt(ctx, order, domain.PaymentPending, req.IP, req.UserAgent)
}

func (s *PaymentOrchestrator) createCODOrder(ctx context.Context, userID uint, req CreateOrderRequest, addr *models.Address, in fraud.Input) (*PaymentInitiation, error) {
	order := s.newOrder(userID, req, domain.MethodCOD, domain.PaymentPending)
	if err := s.orders.Create(order); err != nil {
		return nil, err
	}

	decision := s.fraud.ValidateCODEligibility(ctx, in)
	if !decision.Eligible {
		// the row stays for the audit trail but is flipped to a rejected
		// state so nothing downstream can treat it as live
		if err := s.orders.CancelUnpaid(order.ID, domain.PaymentFailed); err != nil {
			log.Printf("[PAYMENT] cancel rejected cod order=%s: %v", order.ID, err)
		}
		s.audit.Record(&userID, order.ID, nil, "cod_rejected", domain.SeverityWarning, req.IP, req.UserAgent, decision)
		return nil, &domain.FraudBlockedError{Reason: decision.Reason}
	}

	if err := s.orders.ConfirmCOD(order.ID); err != nil {
		return nil, err
	}
	s.audit.Record(&userID, order.ID, nil, "cod_order_created", domain.SeverityInfo, req.IP, req.UserAgent, decision)

	return &PaymentInitiation{
		OrderID:         order.ID,
		Method:          string(domain.MethodCOD),
		AmountPaise:     order.TotalPaise,
		Currency:        order.Currency,
		Status:          string(domain.PaymentPending),
		PaymentRequired: false,
		Message:         "Order confirmed. Pay on delivery.",
	}, nil
}

func (s *PaymentOrchestrator) newOrder(userID uint, req CreateOrderRequest, method domain.PaymentMethod, status domain.PaymentStatus) *models.Order {
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{
			ProductID:  it.ProductID,
			Name:       it.Name,
			ImageURL:   it.ImageURL,
			Quantity:   it.Quantity,
			PricePaise: it.PricePaise,
		})
	}
	order := &models.Order{
		UserID:        userID,
		TotalPaise:    req.AmountPaise,
		Currency:      "INR",
		Status:        domain.OrderPendingPayment,
		PaymentMethod: method,
		PaymentStatus: status,
		UPIApp:        domain.UPIApp(req.UPIApp),
		Items:         items,
	}
	if req.ShippingAddressID != 0 {
		id := req.ShippingAddressID
		order.ShippingAddressID = &id
	}
	return order
}

// openAttempt creates one gateway order, records the attempt row and moves
// the order into payment_processing. The gateway call gets a single internal
// retry before the attempt is abandoned.
func (s *PaymentOrchestrator) openAttempt(ctx context.Context, order *models.Order, from domain.PaymentStatus, ip, userAgent string) (*PaymentInitiation, error) {
	gwReq := gateway.CreateOrderRequest{
		AmountPaise: order.TotalPaise,
		Currency:    order.Currency,
		Receipt:     order.ID,
		Notes:       map[string]string{"order_id": order.ID},
	}
	gwOrder, err := s.gateway.CreateOrder(ctx, gwReq)
	if err != nil {
		log.Printf("[PAYMENT] gateway create failed order=%s, retrying once: %v", order.ID, err)
		gwOrder, err = s.gateway.CreateOrder(ctx, gwReq)
	}
	if err != nil {
		s.audit.Record(&order.UserID, order.ID, nil, "gateway_error", domain.SeverityError, ip, userAgent, map[string]string{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	timeoutAt := s.now().Add(s.cfg.Payment.TimeoutWindow)
	attempt := &models.GatewayOrder{
		GatewayOrderID: gwOrder.ID,
		OrderID:        order.ID,
		UserID:         order.UserID,
		AmountPaise:    order.TotalPaise,
		Currency:       order.Currency,
		Status:         domain.GatewayCreated,
		UPIApp:         order.UPIApp,
		TimeoutAt:      timeoutAt,
		IP:             ip,
		UserAgent:      userAgent,
	}
	if err := s.gatewayOrders.Create(attempt); err != nil {
		return nil, err
	}
	if err := s.orders.SetProcessing(order.ID, from, gwOrder.ID, order.UPIApp, timeoutAt); err != nil {
		return nil, err
	}
	s.audit.Record(&order.UserID, order.ID, &gwOrder.ID, "payment_initiated", domain.SeverityInfo, ip, userAgent, map[string]any{
		"amount_paise": order.TotalPaise,
		"method":       string(order.PaymentMethod),
	})

	init := &PaymentInitiation{
		OrderID:         order.ID,
		GatewayOrderID:  gwOrder.ID,
		Method:          string(order.PaymentMethod),
		AmountPaise:     order.TotalPaise,
		Currency:        order.Currency,
		KeyID:           s.cfg.Gateway.KeyID,
		TimeoutAt:       timeoutAt,
		Status:          string(domain.PaymentProcessing),
		PaymentRequired: true,
	}
	if order.PaymentMethod == domain.MethodUPI {
		init.UPIIntentURL = s.upiIntentURL(order.UPIApp, gwOrder.ID, order.TotalPaise)
	}
	return init, nil
}

// upiIntentURL builds the app-specific deep link. GPay, PhonePe and Paytm
// register their own schemes; everything else falls back to the generic
// upi:// scheme the OS resolves.
func (s *PaymentOrchestrator) upiIntentURL(app domain.UPIApp, gatewayOrderID string, amountPaise int64) string {
	base := "upi://pay"
	switch app {
	case domain.UPIAppGooglePay:
		base = "tez://upi/pay"
	case domain.UPIAppPhonePe:
		base = "phonepe://pay"
	case domain.UPIAppPaytm:
		base = "paytmmp://pay"
	}
	q := url.Values{}
	q.Set("pa", s.cfg.Payment.MerchantVPA)
	q.Set("pn", s.cfg.Payment.MerchantName)
	q.Set("am", fmt.Sprintf("%d.%02d", amountPaise/100, amountPaise%100))
	q.Set("cu", "INR")
	q.Set("tn", "Order "+gatewayOrderID)
	q.Set("tr", gatewayOrderID)
	return base + "?" + q.Encode()
}

func (s *PaymentOrchestrator) checkAmount(method domain.PaymentMethod, amountPaise int64) error {
	p := s.cfg.Payment
	if amountPaise < p.MinPaise {
		return fmt.Errorf("%w: amount below minimum ₹%d", domain.ErrValidation, p.MinPaise/100)
	}
	if method.Electronic() && amountPaise > p.OnlineMaxPaise {
		return fmt.Errorf("%w: amount exceeds ₹%d online transaction limit", domain.ErrValidation, p.OnlineMaxPaise/100)
	}
	return nil
}

func (s *PaymentOrchestrator) checkDailyCap(userID uint, amountPaise int64) error {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	spent, err := s.orders.CompletedPaiseSince(userID, dayStart)
	if err != nil {
		return err
	}
	if spent+amountPaise > s.cfg.Payment.DailyCapPaise {
		return fmt.Errorf("%w: daily transaction limit of ₹%d exceeded", domain.ErrValidation, s.cfg.Payment.DailyCapPaise/100)
	}
	return nil
}

func (s *PaymentOrchestrator) fraudInput(userID uint, req CreateOrderRequest, method domain.PaymentMethod, addr *models.Address) fraud.Input {
	items := make([]fraud.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, fraud.ItemInput{Name: it.Name, Quantity: it.Quantity, PricePaise: it.PricePaise})
	}
	return fraud.Input{
		UserID:      userID,
		AmountPaise: req.AmountPaise,
		Method:      method,
		IP:          req.IP,
		UserAgent:   req.UserAgent,
		Address:     addr,
		Items:       items,
	}
}

// StatusView is the client-facing payment status of one order.
type StatusView struct {
	OrderID        string     `json:"order_id"`
	OrderStatus    string     `json:"order_status"`
	PaymentStatus  string     `json:"payment_status"`
	PaymentMethod  string     `json:"payment_method"`
	AmountPaise    int64      `json:"amount_paise"`
	GatewayOrderID *string    `json:"gateway_order_id,omitempty"`
	RetryCount     int        `json:"retry_count"`
	CanRetry       bool       `json:"can_retry"`
	TimeoutAt      *time.Time `json:"timeout_at,omitempty"`
}

// GetStatus returns the order's payment state, applying logical expiry on
// read: a processing payment whose window has passed is reported (and
// persisted) as timed out even if no sweeper has run.
func (s *PaymentOrchestrator) GetStatus(ctx context.Context, userID uint, orderID string) (*StatusView, error) {
	order, err := s.orders.FindForUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	s.expireIfStale(order, "", "")
	return &StatusView{
		OrderID:        order.ID,
		OrderStatus:    string(order.Status),
		PaymentStatus:  string(order.PaymentStatus),
		PaymentMethod:  string(order.PaymentMethod),
		AmountPaise:    order.TotalPaise,
		GatewayOrderID: order.GatewayOrderID,
		RetryCount:     order.PaymentRetryCount,
		CanRetry:       order.PaymentStatus.Retryable() && order.PaymentRetryCount < s.cfg.Payment.MaxRetries,
		TimeoutAt:      order.PaymentTimeoutAt,
	}, nil
}

// expireIfStale applies the timeout rule to an in-memory order and persists
// the transition. Lost races are fine: the conditional update no-ops and the
// winner's state stands.
func (s *PaymentOrchestrator) expireIfStale(order *models.Order, ip, userAgent string) {
	if order.PaymentStatus != domain.PaymentProcessing || !domain.PaymentExpired(order.PaymentTimeoutAt, s.now()) {
		return
	}
	if err := s.orders.FailPayment(order.ID, domain.PaymentTimeout); err != nil {
		log.Printf("[PAYMENT] expire order=%s: %v", order.ID, err)
		return
	}
	order.PaymentStatus = domain.PaymentTimeout
	if order.GatewayOrderID != nil {
		if err := s.gatewayOrders.MarkFailed(*order.GatewayOrderID, "payment window expired"); err != nil {
			log.Printf("[PAYMENT] expire attempt order=%s: %v", order.ID, err)
		}
	}
	s.audit.Record(&order.UserID, order.ID, order.GatewayOrderID, "payment_timeout", domain.SeverityWarning, ip, userAgent, nil)
	s.notifier.NotifyPaymentStatus(order.UserID, StatusEvent{
		OrderID:       order.ID,
		PaymentStatus: string(domain.PaymentTimeout),
	})
}

// RetryPayment opens a fresh gateway attempt for a failed or timed out
// payment, up to the configured maximum. A non-empty upiApp switches the
// target app for the new attempt, so a user whose app keeps timing out can
// retry through another one.
func (s *PaymentOrchestrator) RetryPayment(ctx context.Context, userID uint, orderID, upiApp, ip, userAgent string) (*PaymentInitiation, error) {
	order, err := s.orders.FindForUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	s.expireIfStale(order, ip, userAgent)
	if !order.PaymentStatus.Retryable() {
		return nil, domain.ErrStateConflict
	}
	if upiApp != "" {
		order.UPIApp = domain.UPIApp(upiApp)
	}
	if err := s.orders.IncrementRetry(orderID, s.cfg.Payment.MaxRetries); err != nil {
		return nil, err
	}
	s.audit.Record(&userID, orderID, order.GatewayOrderID, "payment_retry", domain.SeverityInfo, ip, userAgent, map[string]any{
		"attempt": order.PaymentRetryCount + 1,
		"upi_app": string(order.UPIApp),
	})
	init, err := s.openAttempt(ctx, order, order.PaymentStatus, ip, userAgent)
	if err != nil {
		return nil, err
	}
	init.RetryCount = order.PaymentRetryCount + 1
	return init, nil
}

// VerifyPayment handles the client-side checkout callback: it checks the
// gateway signature and, when valid, applies the payment.
func (s *PaymentOrchestrator) VerifyPayment(ctx context.Context, userID uint, gatewayOrderID, paymentID, signature, ip, userAgent string) (*StatusView, error) {
	if !s.gateway.VerifyPaymentSignature(gatewayOrderID, paymentID, signature) {
		s.audit.Record(&userID, "", &gatewayOrderID, "signature_failed", domain.SeverityWarning, ip, userAgent, nil)
		return nil, domain.ErrUnauthorized
	}
	orderID, err := s.ApplyVerifiedPayment(ctx, gatewayOrderID, paymentID, "client", ip, userAgent)
	if err != nil {
		return nil, err
	}
	return s.GetStatus(ctx, userID, orderID)
}

// StatusEvent is what the websocket hub pushes on a payment state change.
type StatusEvent struct {
	OrderID       string `json:"order_id"`
	PaymentStatus string `json:"payment_status"`
	PaymentID     string `json:"payment_id,omitempty"`
}

// ApplyVerifiedPayment settles a signature-verified payment exactly once.
// The gateway attempt row is the idempotency anchor: its conditional
// created→paid update admits one winner, and every later arrival of the same
// payment id is acknowledged without re-applying. Returns the order id.
func (s *PaymentOrchestrator) ApplyVerifiedPayment(ctx context.Context, gatewayOrderID, paymentID, source, ip, userAgent string) (string, error) {
	attempt, err := s.gatewayOrders.FindByGatewayOrderID(gatewayOrderID)
	if err != nil {
		return "", err
	}

	if err := s.gatewayOrders.MarkPaid(gatewayOrderID, paymentID, s.now()); err != nil {
		if !errors.Is(err, domain.ErrStateConflict) {
			return "", err
		}
		current, ferr := s.gatewayOrders.FindByGatewayOrderID(gatewayOrderID)
		if ferr != nil {
			return "", ferr
		}
		if current.Status == domain.GatewayPaid && current.PaymentID != nil && *current.PaymentID == paymentID {
			// duplicate delivery of an already-settled payment
			return attempt.OrderID, nil
		}
		return "", domain.ErrStateConflict
	}

	if err := s.orders.CompletePayment(attempt.OrderID, paymentID); err != nil {
		if !errors.Is(err, domain.ErrStateConflict) {
			return "", err
		}
		// attempt won but the order had already moved on (e.g. expired a
		// moment earlier); keep the payment recorded and surface the conflict
		log.Printf("[PAYMENT] verified payment on settled order=%s gateway_order=%s", attempt.OrderID, gatewayOrderID)
		return "", domain.ErrStateConflict
	}

	s.audit.Record(&attempt.UserID, attempt.OrderID, &gatewayOrderID, "payment_completed", domain.SeverityInfo, ip, userAgent, map[string]string{
		"payment_id": paymentID,
		"source":     source,
	})
	s.notifier.NotifyPaymentStatus(attempt.UserID, StatusEvent{
		OrderID:       attempt.OrderID,
		PaymentStatus: string(domain.PaymentCompleted),
		PaymentID:     paymentID,
	})
	return attempt.OrderID, nil
}

// FailAttempt marks a gateway attempt and its order failed, from a webhook
// or an explicit client failure report.
func (s *PaymentOrchestrator) FailAttempt(ctx context.Context, gatewayOrderID, reason, ip, userAgent string) error {
	attempt, err := s.gatewayOrders.FindByGatewayOrderID(gatewayOrderID)
	if err != nil {
		return err
	}
	if err := s.gatewayOrders.MarkFailed(gatewayOrderID, reason); err != nil {
		if errors.Is(err, domain.ErrStateConflict) {
			return nil // already settled either way
		}
		return err
	}
	if err := s.orders.FailPayment(attempt.OrderID, domain.PaymentFailed); err != nil && !errors.Is(err, domain.ErrStateConflict) {
		return err
	}
	s.audit.Record(&attempt.UserID, attempt.OrderID, &gatewayOrderID, "payment_failed", domain.SeverityWarning, ip, userAgent, map[string]string{
		"reason": reason,
	})
	s.notifier.NotifyPaymentStatus(attempt.UserID, StatusEvent{
		OrderID:       attempt.OrderID,
		PaymentStatus: string(domain.PaymentFailed),
	})
	return nil
}

// CheckCODEligibility answers the pre-checkout COD question without creating
// an order.
func (s *PaymentOrchestrator) CheckCODEligibility(ctx context.Context, userID uint, amountPaise int64, addressID uint, ip, userAgent string) (*fraud.CODDecision, error) {
	var addr *models.Address
	if addressID != 0 {
		var err error
		addr, err = s.addresses.FindForUser(addressID, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: shipping address", domain.ErrValidation)
		}
	}
	decision := s.fraud.ValidateCODEligibility(ctx, fraud.Input{
		UserID:      userID,
		AmountPaise: amountPaise,
		Method:      domain.MethodCOD,
		IP:          ip,
		UserAgent:   userAgent,
		Address:     addr,
	})
	return &decision, nil
}

// ProcessCOD converts an existing unpaid order to cash on delivery after
// re-running the eligibility gate against the order's own amount and
// address.
func (s *PaymentOrchestrator) ProcessCOD(ctx context.Context, userID uint, orderID, ip, userAgent string) (*StatusView, error) {
	order, err := s.orders.FindForUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != domain.PaymentPending {
		return nil, domain.ErrStateConflict
	}

	var addr *models.Address
	if order.ShippingAddressID != nil {
		addr, err = s.addresses.FindForUser(*order.ShippingAddressID, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	items := make([]fraud.ItemInput, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, fraud.ItemInput{Name: it.Name, Quantity: it.Quantity, PricePaise: it.PricePaise})
	}
	decision := s.fraud.ValidateCODEligibility(ctx, fraud.Input{
		UserID:      userID,
		AmountPaise: order.TotalPaise,
		Method:      domain.MethodCOD,
		IP:          ip,
		UserAgent:   userAgent,
		Address:     addr,
		Items:       items,
	})
	if !decision.Eligible {
		s.audit.Record(&userID, orderID, nil, "cod_rejected", domain.SeverityWarning, ip, userAgent, decision)
		return nil, &domain.FraudBlockedError{Reason: decision.Reason}
	}
	if err := s.orders.ConfirmCOD(orderID); err != nil {
		return nil, err
	}
	s.audit.Record(&userID, orderID, nil, "cod_confirmed", domain.SeverityInfo, ip, userAgent, decision)
	return s.GetStatus(ctx, userID, orderID)
}

// ExpireStalePayments is the active sweep counterpart of lazy expiry; wired
// to a ticker in main. Both share the same timeout rule.
func (s *PaymentOrchestrator) ExpireStalePayments(ctx context.Context) (int64, error) {
	n, err := s.orders.ExpireStalePayments(s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("[PAYMENT] expired %d stale payments", n)
	}
	return n, nil
}

// MethodInfo describes one payment method for the checkout screen.
type MethodInfo struct {
	Method      string `json:"method"`
	DisplayName string `json:"display_name"`
	Enabled     bool   `json:"enabled"`
	MaxPaise    int64  `json:"max_amount_paise,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// AvailableMethods lists payment methods for one user's checkout. When an
// amount is supplied, COD is gated through the eligibility check so the
// client can grey it out before order creation.
func (s *PaymentOrchestrator) AvailableMethods(ctx context.Context, userID uint, amountPaise int64, addressID uint, ip, userAgent string) []MethodInfo {
	p := s.cfg.Payment
	methods := []MethodInfo{
		{Method: string(domain.MethodUPI), DisplayName: "UPI", Enabled: true, MaxPaise: p.OnlineMaxPaise},
		{Method: string(domain.MethodCard), DisplayName: "Credit / Debit Card", Enabled: true, MaxPaise: p.OnlineMaxPaise},
		{Method: string(domain.MethodWallet), DisplayName: "Wallet", Enabled: true, MaxPaise: p.OnlineMaxPaise},
	}
	cod := MethodInfo{Method: string(domain.MethodCOD), DisplayName: "Cash on Delivery", Enabled: true, MaxPaise: p.CODMaxPaise}
	if amountPaise > 0 {
		if decision, err := s.CheckCODEligibility(ctx, userID, amountPaise, addressID, ip, userAgent); err == nil && !decision.Eligible {
			cod.Enabled = false
			cod.Reason = decision.Reason
		}
	}
	return append(methods, cod)
}
