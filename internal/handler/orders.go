package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrdersHandler) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	data, total, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "total": total, "page": page, "limit": limit})
}

type sendToProductionRequest struct {
	ExpectedDate *time.Time `json:"expected_date"`
}

// SendItemToProduction accepts an order line into production planning,
// creating a pending demand.
func (h *OrdersHandler) SendItemToProduction(c *gin.Context) {
	itemID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}
	var req sendToProductionRequest
	// Empty body is fine: the expected date then defaults downstream.
	_ = c.ShouldBindJSON(&req)

	resp, err := h.svc.SendItemToProduction(c.Request.Context(), itemID, req.ExpectedDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
