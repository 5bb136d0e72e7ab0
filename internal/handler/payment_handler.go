package handler

import (
	"math"
	"net/http"

	"dayliz/internal/middleware"
	"dayliz/internal/service"
	"dayliz/pkg/gateway"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	orchestrator *service.PaymentOrchestrator
	mock         *gateway.MockGateway // nil in live mode
}

func NewPaymentHandler(orchestrator *service.PaymentOrchestrator, mock *gateway.MockGateway) *PaymentHandler {
	return &PaymentHandler{orchestrator: orchestrator, mock: mock}
}

// Amounts cross the API in rupees; everything internal is paise.
func rupeesToPaise(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}

type orderItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	ImageURL  string  `json:"image_url"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	Price     float64 `json:"price" binding:"required,gt=0"`
}

type createOrderRequest struct {
	Amount            float64            `json:"amount" binding:"required,gt=0"`
	PaymentMethod     string             `json:"payment_method" binding:"required"`
	ShippingAddressID uint               `json:"shipping_address_id"`
	UPIApp            string             `json:"upi_app"`
	Items             []orderItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (h *PaymentHandler) CreateOrderWithPayment(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	items := make([]service.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.ItemRequest{
			ProductID:  it.ProductID,
			Name:       it.Name,
			ImageURL:   it.ImageURL,
			Quantity:   it.Quantity,
			PricePaise: rupeesToPaise(it.Price),
		})
	}
	init, err := h.orchestrator.CreateOrderWithPayment(c.Request.Context(), middleware.GetUserID(c), service.CreateOrderRequest{
		Method:            req.PaymentMethod,
		AmountPaise:       rupeesToPaise(req.Amount),
		ShippingAddressID: req.ShippingAddressID,
		UPIApp:            req.UPIApp,
		Items:             items,
		IP:                c.ClientIP(),
		UserAgent:         c.Request.UserAgent(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, init)
}

func (h *PaymentHandler) GetStatus(c *gin.Context) {
	view, err := h.orchestrator.GetStatus(c.Request.Context(), middleware.GetUserID(c), c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type retryRequest struct {
	UPIApp string `json:"upi_app"`
}

// RetryPayment accepts an optional body so the client can switch UPI apps on
// the new attempt.
func (h *PaymentHandler) RetryPayment(c *gin.Context) {
	var req retryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
	}
	init, err := h.orchestrator.RetryPayment(c.Request.Context(), middleware.GetUserID(c), c.Param("order_id"), req.UPIApp, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, init)
}

type verifyRequest struct {
	GatewayOrderID string `json:"razorpay_order_id" binding:"required"`
	PaymentID      string `json:"razorpay_payment_id" binding:"required"`
	Signature      string `json:"razorpay_signature" binding:"required"`
}

func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	view, err := h.orchestrator.VerifyPayment(c.Request.Context(), middleware.GetUserID(c),
		req.GatewayOrderID, req.PaymentID, req.Signature, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type codProcessRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

func (h *PaymentHandler) ProcessCOD(c *gin.Context) {
	var req codProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	view, err := h.orchestrator.ProcessCOD(c.Request.Context(), middleware.GetUserID(c), req.OrderID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order confirmed. Pay on delivery.",
		"status":  view,
	})
}

type methodsQuery struct {
	Amount    float64 `form:"amount"`
	AddressID uint    `form:"address_id"`
}

func (h *PaymentHandler) GetMethods(c *gin.Context) {
	var q methodsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return
	}
	methods := h.orchestrator.AvailableMethods(c.Request.Context(), middleware.GetUserID(c),
		rupeesToPaise(q.Amount), q.AddressID, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"methods": methods})
}

type simulateRequest struct {
	GatewayOrderID string `json:"gateway_order_id" binding:"required"`
	Method         string `json:"method" binding:"required"`
}

// SimulatePayment drives the mock gateway through a full checkout: it
// resolves the attempt, then routes the outcome through the same
// verification and failure paths a real gateway callback would take.
// Disabled outside mock mode.
func (h *PaymentHandler) SimulatePayment(c *gin.Context) {
	if h.mock == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "simulation available in mock mode only"})
		return
	}
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	result, err := h.mock.SimulatePayment(req.GatewayOrderID, req.Method)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	if result.Status == gateway.MockCaptured {
		view, err := h.orchestrator.VerifyPayment(c.Request.Context(), userID,
			result.OrderID, result.PaymentID, result.Signature, c.ClientIP(), c.Request.UserAgent())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payment": result, "status": view})
		return
	}
	if err := h.orchestrator.FailAttempt(c.Request.Context(), result.OrderID, result.ErrorDescription, c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": result})
}
