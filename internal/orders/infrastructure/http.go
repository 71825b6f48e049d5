package infrastructure

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pharmacart/internal/orders/application"
	"pharmacart/internal/orders/domain"
	"pharmacart/internal/orders/ports"
	"pharmacart/pkg/errors"
	"pharmacart/pkg/middleware"
)

// HTTPHandler handles HTTP requests for carts and orders
type HTTPHandler struct {
	cart   *application.CartUseCase
	orders *application.OrderUseCase
	query  *application.QueryUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(cart *application.CartUseCase, orders *application.OrderUseCase, query *application.QueryUseCase) *HTTPHandler {
	return &HTTPHandler{cart: cart, orders: orders, query: query}
}

// RegisterRoutes registers the cart and order routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	cart := r.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddItemToCart)
		cart.PATCH("/items/:productId", h.UpdateItemQuantity)
		cart.DELETE("/items/:productId", h.RemoveItemFromCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/confirm", h.ConfirmCart)
		cart.POST("/abandon", h.AbandonCart)
	}

	orders := r.Group("/orders")
	{
		orders.GET("", h.GetOrderHistory)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/confirm", h.ConfirmOrder)
		orders.POST("/:id/pay", h.PayForOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
	}
}

// MoneyResponse is the wire shape of a monetary amount
type MoneyResponse struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// ItemResponse is the wire shape of an order line
type ItemResponse struct {
	ProductID   string        `json:"product_id"`
	ProductName string        `json:"product_name"`
	UnitPrice   MoneyResponse `json:"unit_price"`
	Quantity    int           `json:"quantity"`
	Subtotal    MoneyResponse `json:"subtotal"`
	AddedAt     string        `json:"added_at"`
}

// OrderResponse is the wire shape of an order
type OrderResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Status    string         `json:"status"`
	Items     []ItemResponse `json:"items"`
	Total     MoneyResponse  `json:"total"`
	ItemCount int            `json:"item_count"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// PagedOrdersResponse is one page of order history
type PagedOrdersResponse struct {
	Items           []OrderResponse `json:"items"`
	Total           int64           `json:"total"`
	Page            int             `json:"page"`
	Limit           int             `json:"limit"`
	TotalPages      int             `json:"total_pages"`
	HasNextPage     bool            `json:"has_next_page"`
	HasPreviousPage bool            `json:"has_previous_page"`
}

// AddItemRequest is the request body for adding a cart item
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// UpdateQuantityRequest is the request body for changing a line quantity
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart handles GET /cart
func (h *HTTPHandler) GetCart(c *gin.Context) {
	out, err := h.cart.GetCart(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		c.Error(err)
		return
	}

	if out.Order == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toOrderResponse(out.Order)})
}

// AddItemToCart handles POST /cart/items
func (h *HTTPHandler) AddItemToCart(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	out, err := h.cart.AddItemToCart(c.Request.Context(), application.AddItemInput{
		UserID:    c.GetString(middleware.UserIDKey),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponse(out.Order)})
}

// UpdateItemQuantity handles PATCH /cart/items/:productId
func (h *HTTPHandler) UpdateItemQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	out, err := h.cart.UpdateItemQuantity(c.Request.Context(), application.UpdateQuantityInput{
		UserID:    c.GetString(middleware.UserIDKey),
		ProductID: c.Param("productId"),
		Quantity:  req.Quantity,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponse(out.Order)})
}

// RemoveItemFromCart handles DELETE /cart/items/:productId
func (h *HTTPHandler) RemoveItemFromCart(c *gin.Context) {
	out, err := h.cart.RemoveItemFromCart(c.Request.Context(), application.ItemInput{
		UserID:    c.GetString(middleware.UserIDKey),
		ProductID: c.Param("productId"),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponse(out.Order)})
}

// ClearCart handles DELETE /cart
func (h *HTTPHandler) ClearCart(c *gin.Context) {
	out, err := h.cart.ClearCart(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponse(out.Order)})
}

// ConfirmCart handles POST /cart/confirm
func (h *HTTPHandler) ConfirmCart(c *gin.Context) {
	out, err := h.cart.ConfirmDraftOrder(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":                  toOrderResponse(out.Order),
		"requires_prescription": out.RequiresPrescription,
	})
}

// AbandonCart handles POST /cart/abandon
func (h *HTTPHandler) AbandonCart(c *gin.Context) {
	out, err := h.cart.AbandonCart(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponse(out.Order)})
}

// GetOrderHistory handles GET /orders?page=&limit=
func (h *HTTPHandler) GetOrderHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.query.GetOrderHistory(c.Request.Context(), c.GetString(middleware.UserIDKey), ports.Pagination{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		c.Error(err)
		return
	}

	items := make([]OrderResponse, len(result.Items))
	for i, order := range result.Items {
		items[i] = toOrderResponse(order)
	}

	c.JSON(http.StatusOK, gin.H{"data": PagedOrdersResponse{
		Items:           items,
		Total:           result.Total,
		Page:            result.Page,
		Limit:           result.Limit,
		TotalPages:      result.TotalPages,
		HasNextPage:     result.HasNextPage,
		HasPreviousPage: result.HasPreviousPage,
	}})
}

// GetOrder handles GET /orders/:id
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	out, err := h.query.GetOrderByID(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey))
	if err != nil {
		c.Error(err)
		return
	}

	body := gin.H{"data": toOrderResponse(out.Order)}
	if out.Compliance != nil {
		body["compliance"] = out.Compliance
	}
	c.JSON(http.StatusOK, body)
}

// ConfirmOrder handles POST /orders/:id/confirm
func (h *HTTPHandler) ConfirmOrder(c *gin.Context) {
	h.lifecycle(c, h.orders.ConfirmOrder)
}

// PayForOrder handles POST /orders/:id/pay
func (h *HTTPHandler) PayForOrder(c *gin.Context) {
	h.lifecycle(c, h.orders.PayForOrder)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	h.lifecycle(c, h.orders.CancelOrder)
}

func (h *HTTPHandler) lifecycle(c *gin.Context, op func(ctx context.Context, input application.OrderInput) (*application.OrderOutput, error)) {
	out, err := op(c.Request.Context(), application.OrderInput{
		OrderID: c.Param("id"),
		UserID:  c.GetString(middleware.UserIDKey),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponse(out.Order)})
}

func toOrderResponse(order *domain.Order) OrderResponse {
	items := make([]ItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = ItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   toMoneyResponse(item.UnitPrice),
			Quantity:    item.Quantity,
			Subtotal:    toMoneyResponse(item.Subtotal()),
			AddedAt:     item.AddedAt.Format(time.RFC3339),
		}
	}

	return OrderResponse{
		ID:        order.ID,
		UserID:    order.UserID,
		Status:    string(order.Status),
		Items:     items,
		Total:     toMoneyResponse(order.Total()),
		ItemCount: order.ItemCount(),
		CreatedAt: order.CreatedAt.Format(time.RFC3339),
		UpdatedAt: order.UpdatedAt.Format(time.RFC3339),
	}
}

func toMoneyResponse(m domain.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Amount, Currency: m.Currency}
}
