package handler

import (
	"net/http"

	"dayliz/internal/middleware"
	"dayliz/internal/models"
	"dayliz/internal/repository"

	"github.com/gin-gonic/gin"
)

type AddressHandler struct {
	addresses *repository.AddressRepo
}

func NewAddressHandler(addresses *repository.AddressRepo) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

type createAddressRequest struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required,len=6,numeric"`
}

func (h *AddressHandler) Create(c *gin.Context) {
	var req createAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	addr := &models.Address{
		UserID:  middleware.GetUserID(c),
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		Pincode: req.Pincode,
	}
	if err := h.addresses.Create(addr); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, addr)
}

func (h *AddressHandler) List(c *gin.Context) {
	addrs, err := h.addresses.ListByUser(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addrs})
}
