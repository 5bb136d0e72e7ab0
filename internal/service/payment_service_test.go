package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"dayliz/config"
	"dayliz/internal/domain"
	"dayliz/internal/fraud"
	"dayliz/internal/models"
	"dayliz/internal/security"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	orchestrator *PaymentOrchestrator
	orders       *fakeOrderStore
	attempts     *fakeGatewayOrderStore
	audit        *fakeAudit
	notifier     *fakeNotifier
	gateway      *fakeGateway
	verifier     *security.Verifier
	cfg          *config.Config
}

const testUser uint = 7

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Load()
	orders := newFakeOrderStore()
	attempts := newFakeGatewayOrderStore()
	audit := &fakeAudit{}
	notifier := &fakeNotifier{}
	gw := newFakeGateway("test_secret")
	addrs := &fakeAddressStore{addrs: map[uint]*models.Address{
		1: {ID: 1, UserID: testUser, Street: "12 MG Road", City: "Tura", State: "Meghalaya", Pincode: "794001"},
	}}
	engine := fraud.NewEngine(cfg, quietHistory{}, nil, nil)
	return &testEnv{
		orchestrator: NewPaymentOrchestrator(cfg, orders, attempts, addrs, audit, gw, engine, notifier),
		orders:       orders,
		attempts:     attempts,
		audit:        audit,
		notifier:     notifier,
		gateway:      gw,
		verifier:     security.NewVerifier("test_secret"),
		cfg:          cfg,
	}
}

func upiRequest(amountPaise int64) CreateOrderRequest {
	return CreateOrderRequest{
		Method:            "upi",
		AmountPaise:       amountPaise,
		ShippingAddressID: 1,
		UPIApp:            "googlepay",
		Items: []ItemRequest{
			{ProductID: "p1", Name: "Basmati Rice 5kg", Quantity: 1, PricePaise: amountPaise},
		},
		IP:        "103.27.8.44",
		UserAgent: "Mozilla/5.0 (Linux; Android 13) Chrome/120",
	}
}

func TestCreateOrderWithPaymentUPI(t *testing.T) {
	env := newTestEnv(t)
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)

	require.NotEmpty(t, init.OrderID)
	require.NotEmpty(t, init.GatewayOrderID)
	require.Equal(t, string(domain.PaymentProcessing), init.Status)
	require.True(t, init.PaymentRequired)
	require.True(t, strings.HasPrefix(init.UPIIntentURL, "tez://upi/pay?"))
	require.Contains(t, init.UPIIntentURL, "am=499.00")
	require.False(t, init.TimeoutAt.IsZero())

	order, err := env.orders.FindForUser(init.OrderID, testUser)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentProcessing, order.PaymentStatus)
	require.Equal(t, init.GatewayOrderID, *order.GatewayOrderID)

	attempt, err := env.attempts.FindByGatewayOrderID(init.GatewayOrderID)
	require.NoError(t, err)
	require.Equal(t, domain.GatewayCreated, attempt.Status)
	require.Equal(t, int64(49_900), attempt.AmountPaise)

	require.Equal(t, 1, env.audit.count("order_created"))
	require.Equal(t, 1, env.audit.count("payment_initiated"))
}

func TestCreateOrderAmountBounds(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(50))
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(200_000_01))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateOrderUnknownMethod(t *testing.T) {
	env := newTestEnv(t)
	req := upiRequest(49_900)
	req.Method = "crypto"
	_, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, req)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateOrderDailyCap(t *testing.T) {
	env := newTestEnv(t)
	env.orders.Create(&models.Order{
		UserID:        testUser,
		TotalPaise:    95_000_00,
		PaymentStatus: domain.PaymentCompleted,
	})

	_, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(10_000_00))
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(4_000_00))
	require.NoError(t, err)
}

func TestDailyCapDoesNotApplyToCOD(t *testing.T) {
	env := newTestEnv(t)
	env.orders.Create(&models.Order{
		UserID:        testUser,
		TotalPaise:    95_000_00,
		PaymentStatus: domain.PaymentCompleted,
	})

	req := upiRequest(30_000_00)
	req.Method = "cod"
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, req)
	require.NoError(t, err)
	require.Equal(t, 1, env.audit.count("cod_order_created"))

	order, err := env.orders.FindForUser(init.OrderID, testUser)
	require.NoError(t, err)
	require.Equal(t, domain.OrderProcessing, order.Status)
}

func TestCreateCODOrder(t *testing.T) {
	env := newTestEnv(t)
	req := upiRequest(80_000)
	req.Method = "cod"

	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, req)
	require.NoError(t, err)
	require.Empty(t, init.GatewayOrderID)
	require.Equal(t, string(domain.PaymentPending), init.Status)
	require.False(t, init.PaymentRequired)
	require.Equal(t, "Order confirmed. Pay on delivery.", init.Message)

	order, err := env.orders.FindForUser(init.OrderID, testUser)
	require.NoError(t, err)
	require.Equal(t, domain.OrderProcessing, order.Status)
	require.Equal(t, domain.PaymentPending, order.PaymentStatus)
	require.Equal(t, 1, env.audit.count("cod_order_created"))
}

func TestCreateCODOrderOverLimit(t *testing.T) {
	env := newTestEnv(t)
	req := upiRequest(60_000_00)
	req.Method = "cod"

	_, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, req)
	var blocked *domain.FraudBlockedError
	require.ErrorAs(t, err, &blocked)
	require.Contains(t, blocked.Reason, "RBI guidelines")
	require.Equal(t, 1, env.audit.count("cod_rejected"))

	// the rejected order row survives for the audit trail, but cancelled
	rejected := env.audit.last("cod_rejected")
	require.NotEmpty(t, rejected.OrderID)
	order, err := env.orders.FindForUser(rejected.OrderID, testUser)
	require.NoError(t, err)
	require.Equal(t, domain.OrderCancelled, order.Status)
	require.Equal(t, domain.PaymentFailed, order.PaymentStatus)
}

func TestCreateOrderGatewayRetriesOnce(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.failures = 1

	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)
	require.NotEmpty(t, init.GatewayOrderID)
	require.Equal(t, 2, env.gateway.calls)
}

func TestCreateOrderGatewayDown(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.failures = 2

	_, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.ErrorIs(t, err, domain.ErrGateway)
	require.Equal(t, 1, env.audit.count("gateway_error"))
}

func TestVerifyPaymentCompletesOrder(t *testing.T) {
	env := newTestEnv(t)
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)

	sig := env.verifier.SignPayment(init.GatewayOrderID, "pay_001")
	view, err := env.orchestrator.VerifyPayment(context.Background(), testUser, init.GatewayOrderID, "pay_001", sig, "ip", "ua")
	require.NoError(t, err)
	require.Equal(t, string(domain.PaymentCompleted), view.PaymentStatus)
	require.Equal(t, string(domain.OrderProcessing), view.OrderStatus)

	attempt, err := env.attempts.FindByGatewayOrderID(init.GatewayOrderID)
	require.NoError(t, err)
	require.Equal(t, domain.GatewayPaid, attempt.Status)
	require.Equal(t, "pay_001", *attempt.PaymentID)

	require.Len(t, env.notifier.events, 1)
	require.Equal(t, string(domain.PaymentCompleted), env.notifier.events[0].PaymentStatus)
}

func TestVerifyPaymentIdempotent(t *testing.T) {
	env := newTestEnv(t)
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)

	sig := env.verifier.SignPayment(init.GatewayOrderID, "pay_001")
	_, err = env.orchestrator.VerifyPayment(context.Background(), testUser, init.GatewayOrderID, "pay_001", sig, "ip", "ua")
	require.NoError(t, err)

	// same payment delivered again: acknowledged, applied once
	view, err := env.orchestrator.VerifyPayment(context.Background(), testUser, init.GatewayOrderID, "pay_001", sig, "ip", "ua")
	require.NoError(t, err)
	require.Equal(t, string(domain.PaymentCompleted), view.PaymentStatus)
	require.Equal(t, 1, env.audit.count("payment_completed"))
	require.Len(t, env.notifier.events, 1)
}

func TestVerifyPaymentConflictingPaymentID(t *testing.T) {
	env := newTestEnv(t)
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)

	sig := env.verifier.SignPayment(init.GatewayOrderID, "pay_001")
	_, err = env.orchestrator.VerifyPayment(context.Background(), testUser, init.GatewayOrderID, "pay_001", sig, "ip", "ua")
	require.NoError(t, err)

	sig2 := env.verifier.SignPayment(init.GatewayOrderID, "pay_002")
	_, err = env.orchestrator.VerifyPayment(context.Background(), testUser, init.GatewayOrderID, "pay_002", sig2, "ip", "ua")
	require.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestVerifyPaymentBadSignature(t *testing.T) {
	env := newTestEnv(t)
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)

	_, err = env.orchestrator.VerifyPayment(context.Background(), testUser, init.GatewayOrderID, "pay_001", "deadbeef", "ip", "ua")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Equal(t, 1, env.audit.count("signature_failed"))

	order, err := env.orders.FindForUser(init.OrderID, testUser)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentProcessing, order.PaymentStatus)
}

func TestGetStatusLazyExpiry(t *testing.T) {
	env := newTestEnv(t)
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)

	env.orders.setTimeout(init.OrderID, time.Now().Add(-time.Minute))

	view, err := env.orchestrator.GetStatus(context.Background(), testUser, init.OrderID)
	require.NoError(t, err)
	require.Equal(t, string(domain.PaymentTimeout), view.PaymentStatus)
	require.True(t, view.CanRetry)

	attempt, err := env.attempts.FindByGatewayOrderID(init.GatewayOrderID)
	require.NoError(t, err)
	require.Equal(t, domain.GatewayFailed, attempt.Status)
	require.Equal(t, 1, env.audit.count("payment_timeout"))
}

func TestRetryPaymentUpToMax(t *testing.T) {
	env := newTestEnv(t)
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)

	for attempt := 1; attempt <= env.cfg.Payment.MaxRetries; attempt++ {
		require.NoError(t, env.orders.FailPayment(init.OrderID, domain.PaymentFailed))
		next, err := env.orchestrator.RetryPayment(context.Background(), testUser, init.OrderID, "", "ip", "ua")
		require.NoError(t, err, "retry %d", attempt)
		require.NotEqual(t, init.GatewayOrderID, next.GatewayOrderID, "retry must open a fresh attempt")
		require.Equal(t, attempt, next.RetryCount)
		init.GatewayOrderID = next.GatewayOrderID
	}

	require.NoError(t, env.orders.FailPayment(init.OrderID, domain.PaymentFailed))
	_, err = env.orchestrator.RetryPayment(context.Background(), testUser, init.OrderID, "", "ip", "ua")
	require.ErrorIs(t, err, domain.ErrRetryExhausted)
}

func TestRetryPaymentOnCompletedOrder(t *testing.T) {
	env := newTestEnv(t)
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)
	require.NoError(t, env.orders.CompletePayment(init.OrderID, "pay_001"))

	_, err = env.orchestrator.RetryPayment(context.Background(), testUser, init.OrderID, "", "ip", "ua")
	require.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestRetryAfterTimeoutExpiresLazily(t *testing.T) {
	env := newTestEnv(t)
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)
	env.orders.setTimeout(init.OrderID, time.Now().Add(-time.Minute))

	// retry without a status poll first: expiry happens inside the retry
	next, err := env.orchestrator.RetryPayment(context.Background(), testUser, init.OrderID, "", "ip", "ua")
	require.NoError(t, err)
	require.NotEqual(t, init.GatewayOrderID, next.GatewayOrderID)
}

func TestRetryPaymentSwitchesUPIApp(t *testing.T) {
	env := newTestEnv(t)
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(init.UPIIntentURL, "tez://upi/pay?"))
	require.NoError(t, env.orders.FailPayment(init.OrderID, domain.PaymentFailed))

	next, err := env.orchestrator.RetryPayment(context.Background(), testUser, init.OrderID, "phonepe", "ip", "ua")
	require.NoError(t, err)
	require.Equal(t, 1, next.RetryCount)
	require.True(t, strings.HasPrefix(next.UPIIntentURL, "phonepe://pay?"))

	attempt, err := env.attempts.FindByGatewayOrderID(next.GatewayOrderID)
	require.NoError(t, err)
	require.Equal(t, domain.UPIAppPhonePe, attempt.UPIApp)

	order, err := env.orders.FindForUser(init.OrderID, testUser)
	require.NoError(t, err)
	require.Equal(t, domain.UPIAppPhonePe, order.UPIApp)
}

func TestProcessCOD(t *testing.T) {
	env := newTestEnv(t)
	addrID := uint(1)
	order := &models.Order{
		UserID:            testUser,
		TotalPaise:        80_000,
		Status:            domain.OrderPendingPayment,
		PaymentMethod:     domain.MethodUPI,
		PaymentStatus:     domain.PaymentPending,
		ShippingAddressID: &addrID,
	}
	require.NoError(t, env.orders.Create(order))

	view, err := env.orchestrator.ProcessCOD(context.Background(), testUser, order.ID, "ip", "Mozilla/5.0 (Android)")
	require.NoError(t, err)
	require.Equal(t, string(domain.MethodCOD), view.PaymentMethod)
	require.Equal(t, string(domain.OrderProcessing), view.OrderStatus)
	require.Equal(t, 1, env.audit.count("cod_confirmed"))
}

func TestProcessCODOnSettledOrder(t *testing.T) {
	env := newTestEnv(t)
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)

	_, err = env.orchestrator.ProcessCOD(context.Background(), testUser, init.OrderID, "ip", "ua")
	require.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestGetStatusWrongUser(t *testing.T) {
	env := newTestEnv(t)
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)

	_, err = env.orchestrator.GetStatus(context.Background(), testUser+1, init.OrderID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExpireStalePaymentsSweep(t *testing.T) {
	env := newTestEnv(t)
	init, err := env.orchestrator.CreateOrderWithPayment(context.Background(), testUser, upiRequest(49_900))
	require.NoError(t, err)
	env.orders.setTimeout(init.OrderID, time.Now().Add(-time.Minute))

	n, err := env.orchestrator.ExpireStalePayments(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	view, err := env.orchestrator.GetStatus(context.Background(), testUser, init.OrderID)
	require.NoError(t, err)
	require.Equal(t, string(domain.PaymentTimeout), view.PaymentStatus)
}

func TestAvailableMethodsGatesCOD(t *testing.T) {
	env := newTestEnv(t)
	methods := env.orchestrator.AvailableMethods(context.Background(), testUser, 60_000_00, 1, "ip", "Mozilla/5.0 (Android)")

	var cod *MethodInfo
	for i := range methods {
		if methods[i].Method == string(domain.MethodCOD) {
			cod = &methods[i]
		}
	}
	require.NotNil(t, cod)
	require.False(t, cod.Enabled)
	require.Contains(t, cod.Reason, "RBI guidelines")
}
