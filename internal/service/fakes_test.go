package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dayliz/internal/domain"
	"dayliz/internal/fraud"
	"dayliz/internal/models"
	"dayliz/internal/security"
	"dayliz/pkg/gateway"
)

type fakeOrderStore struct {
	mu     sync.Mutex
	seq    int
	orders map[string]*models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]*models.Order)}
}

func (s *fakeOrderStore) Create(order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == "" {
		s.seq++
		order.ID = fmt.Sprintf("ord-%04d", s.seq)
	}
	order.CreatedAt = time.Now()
	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

func (s *fakeOrderStore) get(orderID string) (*models.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *fakeOrderStore) FindForUser(orderID string, userID uint) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.get(orderID)
	if err != nil || o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) SetProcessing(orderID string, from domain.PaymentStatus, gatewayOrderID string, upiApp domain.UPIApp, timeoutAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.get(orderID)
	if err != nil {
		return err
	}
	if o.PaymentStatus != from {
		return domain.ErrStateConflict
	}
	o.PaymentStatus = domain.PaymentProcessing
	o.GatewayOrderID = &gatewayOrderID
	o.GatewayPaymentID = nil
	o.UPIApp = upiApp
	o.PaymentTimeoutAt = &timeoutAt
	return nil
}

func (s *fakeOrderStore) CompletePayment(orderID, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.get(orderID)
	if err != nil {
		return err
	}
	if o.PaymentStatus != domain.PaymentProcessing {
		return domain.ErrStateConflict
	}
	o.PaymentStatus = domain.PaymentCompleted
	o.Status = domain.OrderProcessing
	o.GatewayPaymentID = &paymentID
	return nil
}

func (s *fakeOrderStore) FailPayment(orderID string, to domain.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.get(orderID)
	if err != nil {
		return err
	}
	if o.PaymentStatus != domain.PaymentProcessing {
		return domain.ErrStateConflict
	}
	o.PaymentStatus = to
	return nil
}

func (s *fakeOrderStore) IncrementRetry(orderID string, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.get(orderID)
	if err != nil {
		return err
	}
	if o.PaymentRetryCount >= max || !o.PaymentStatus.Retryable() {
		return domain.ErrRetryExhausted
	}
	o.PaymentRetryCount++
	return nil
}

func (s *fakeOrderStore) CancelUnpaid(orderID string, paymentStatus domain.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.get(orderID)
	if err != nil {
		return err
	}
	if o.PaymentStatus.Terminal() {
		return domain.ErrStateConflict
	}
	o.Status = domain.OrderCancelled
	o.PaymentStatus = paymentStatus
	return nil
}

func (s *fakeOrderStore) ConfirmCOD(orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.get(orderID)
	if err != nil {
		return err
	}
	if o.PaymentStatus != domain.PaymentPending {
		return domain.ErrStateConflict
	}
	o.PaymentMethod = domain.MethodCOD
	o.Status = domain.OrderProcessing
	return nil
}

func (s *fakeOrderStore) ExpireStalePayments(now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, o := range s.orders {
		if o.PaymentStatus == domain.PaymentProcessing && domain.PaymentExpired(o.PaymentTimeoutAt, now) {
			o.PaymentStatus = domain.PaymentTimeout
			n++
		}
	}
	return n, nil
}

func (s *fakeOrderStore) CompletedPaiseSince(userID uint, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, o := range s.orders {
		if o.UserID == userID && o.PaymentStatus == domain.PaymentCompleted && !o.CreatedAt.Before(since) {
			total += o.TotalPaise
		}
	}
	return total, nil
}

// setTimeout rewrites the stored payment deadline, for expiry tests.
func (s *fakeOrderStore) setTimeout(orderID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[orderID]; ok {
		o.PaymentTimeoutAt = &at
	}
}

type fakeGatewayOrderStore struct {
	mu       sync.Mutex
	attempts map[string]*models.GatewayOrder
}

func newFakeGatewayOrderStore() *fakeGatewayOrderStore {
	return &fakeGatewayOrderStore{attempts: make(map[string]*models.GatewayOrder)}
}

func (s *fakeGatewayOrderStore) Create(g *models.GatewayOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *g
	s.attempts[g.GatewayOrderID] = &cp
	return nil
}

func (s *fakeGatewayOrderStore) FindByGatewayOrderID(gatewayOrderID string) (*models.GatewayOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.attempts[gatewayOrderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *fakeGatewayOrderStore) MarkPaid(gatewayOrderID, paymentID string, verifiedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.attempts[gatewayOrderID]
	if !ok {
		return domain.ErrNotFound
	}
	if g.Status != domain.GatewayCreated {
		return domain.ErrStateConflict
	}
	g.Status = domain.GatewayPaid
	g.PaymentID = &paymentID
	g.VerifiedAt = &verifiedAt
	return nil
}

func (s *fakeGatewayOrderStore) MarkFailed(gatewayOrderID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.attempts[gatewayOrderID]
	if !ok {
		return domain.ErrNotFound
	}
	if g.Status != domain.GatewayCreated {
		return domain.ErrStateConflict
	}
	g.Status = domain.GatewayFailed
	g.FailureReason = reason
	return nil
}

type fakeAddressStore struct {
	addrs map[uint]*models.Address
}

func (s *fakeAddressStore) FindForUser(id, userID uint) (*models.Address, error) {
	a, ok := s.addrs[id]
	if !ok || a.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

type auditEvent struct {
	OrderID        string
	GatewayOrderID string
	EventType      string
	Severity       string
}

type fakeAudit struct {
	mu     sync.Mutex
	events []auditEvent
}

func (a *fakeAudit) Record(userID *uint, orderID string, gatewayOrderID *string, eventType, severity, ip, userAgent string, payload any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ev := auditEvent{OrderID: orderID, EventType: eventType, Severity: severity}
	if gatewayOrderID != nil {
		ev.GatewayOrderID = *gatewayOrderID
	}
	a.events = append(a.events, ev)
}

func (a *fakeAudit) last(eventType string) auditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.events) - 1; i >= 0; i-- {
		if a.events[i].EventType == eventType {
			return a.events[i]
		}
	}
	return auditEvent{}
}

func (a *fakeAudit) count(eventType string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, ev := range a.events {
		if ev.EventType == eventType {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []StatusEvent
}

func (n *fakeNotifier) NotifyPaymentStatus(userID uint, event any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if se, ok := event.(StatusEvent); ok {
		n.events = append(n.events, se)
	}
}

// fakeGateway signs like the real thing but creates deterministic order ids
// and can be told to fail the first N create calls.
type fakeGateway struct {
	mu       sync.Mutex
	verifier *security.Verifier
	calls    int
	failures int
}

func newFakeGateway(secret string) *fakeGateway {
	return &fakeGateway{verifier: security.NewVerifier(secret)}
}

func (g *fakeGateway) CreateOrder(_ context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.calls <= g.failures {
		return nil, fmt.Errorf("gateway 5xx")
	}
	return &gateway.Order{
		ID:          fmt.Sprintf("order_fake_%04d", g.calls),
		AmountPaise: req.AmountPaise,
		Currency:    "INR",
		Receipt:     req.Receipt,
		Status:      "created",
	}, nil
}

func (g *fakeGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return g.verifier.VerifyPayment(orderID, paymentID, signature)
}

func (g *fakeGateway) VerifyWebhookSignature(payload []byte, signature string) bool {
	return g.verifier.VerifyWebhook(payload, signature)
}

// quietHistory is an established low-risk user so fraud scoring stays out of
// the way of orchestration tests.
type quietHistory struct{}

func (quietHistory) AverageOrderPaise(context.Context, uint) (int64, error) { return 50_000, nil }

func (quietHistory) RecentTransactions(context.Context, uint, time.Time) ([]fraud.TxnSummary, error) {
	return nil, nil
}

func (quietHistory) AccountAgeDays(context.Context, uint, time.Time) (int, error) { return 120, nil }

func (quietHistory) TotalOrders(context.Context, uint) (int64, error) { return 25, nil }

func (quietHistory) RecentFailedPayments(context.Context, uint, time.Time) (int64, error) {
	return 0, nil
}

func (quietHistory) CODReturnRate(context.Context, uint) (float64, error) { return 0, nil }

func (quietHistory) LastTransactionAt(context.Context, uint) (*time.Time, error) { return nil, nil }
