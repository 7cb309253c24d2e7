package handlers

import (
	"net/http"

	"github.com/cuesoftinc/cuelabs-backend/internal/middleware"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type MarketHandler struct {
	marketService *services.MarketService
}

func NewMarketHandler(marketService *services.MarketService) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

type MarketItemResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Price       int                 `json:"price"`
	Category    string              `json:"category,omitempty"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
	InStock     bool                `json:"in_stock"`
}

type MarketItemListResponse struct {
	Items []MarketItemResponse `json:"items"`
	Total int                  `json:"total"`
}

type OrderLineRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type PlaceOrderRequest struct {
	Items []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

type OrderResponse struct {
	ID         string   `json:"id"`
	Items      []string `json:"items"`
	Total      int      `json:"total"`
	Status     string   `json:"status"`
	PickupCode string   `json:"pickup_code,omitempty"`
}

// ListItems godoc
// @Summary List market items
// @Description Get marketplace items, optionally filtered by category
// @Tags market
// @Accept json
// @Produce json
// @Param category query string false "Item category"
// @Success 200 {object} MarketItemListResponse
// @Failure 500 {object} ErrorResponse
// @Router /market/items [get]
func (h *MarketHandler) ListItems(c *gin.Context) {
	items, err := h.marketService.ListItems(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	response := MarketItemListResponse{
		Items: make([]MarketItemResponse, len(items)),
		Total: len(items),
	}
	for i := range items {
		response.Items[i] = toMarketItemResponse(&items[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetItem godoc
// @Summary Get a market item
// @Description Get one marketplace item by record ID
// @Tags market
// @Accept json
// @Produce json
// @Param id path string true "Item record ID"
// @Success 200 {object} MarketItemResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /market/items/{id} [get]
func (h *MarketHandler) GetItem(c *gin.Context) {
	item, err := h.marketService.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == services.ErrItemNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "market item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toMarketItemResponse(item))
}

// PlaceOrder godoc
// @Summary Place an order
// @Description Order marketplace items against the authenticated user's wallet balance
// @Tags market
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PlaceOrderRequest true "Order lines"
// @Success 201 {object} OrderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /market/orders [post]
func (h *MarketHandler) PlaceOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	lines := make([]services.OrderLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = services.OrderLine{ItemID: item.ItemID, Quantity: item.Quantity}
	}

	order, err := h.marketService.PlaceOrder(c.Request.Context(), userID, lines)
	if err != nil {
		switch err {
		case services.ErrItemNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "market item not found"})
		case services.ErrInsufficientBalance:
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "insufficient wallet balance"})
		case services.ErrEmptyOrder, services.ErrInvalidQuantity:
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// ListMyOrders godoc
// @Summary List orders
// @Description Get the authenticated user's orders
// @Tags market
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {array} OrderResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /market/orders [get]
func (h *MarketHandler) ListMyOrders(c *gin.Context) {
	orders, err := h.marketService.ListOrders(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	response := make([]OrderResponse, len(orders))
	for i := range orders {
		response[i] = toOrderResponse(&orders[i])
	}

	c.JSON(http.StatusOK, response)
}

func toMarketItemResponse(item *models.MarketItem) MarketItemResponse {
	return MarketItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Category:    item.Category,
		Attachments: item.Attachments,
		InStock:     item.InStock,
	}
}

func toOrderResponse(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:         o.ID,
		Items:      o.Items,
		Total:      o.Total,
		Status:     o.Status,
		PickupCode: o.PickupCode,
	}
	if resp.Items == nil {
		resp.Items = []string{}
	}
	return resp
}
