package cart

import (
	"net/http"
	"strconv"

	"bookcart/api/response"
	cartapp "bookcart/application/cart"
	"bookcart/domain/shared"

	"github.com/gin-gonic/gin"
)

// Controller Cart controller
type Controller struct {
	cartService *cartapp.ApplicationService
}

// NewController Create cart controller
func NewController(cartService *cartapp.ApplicationService) *Controller {
	return &Controller{
		cartService: cartService,
	}
}

// RegisterRoutes Register cart routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	cartGroup := router.Group("/carts")
	{
		cartGroup.GET("/customer/:customer_id", c.ViewCart)
		cartGroup.POST("/customer/:customer_id/add", c.AddItem)
		cartGroup.DELETE("/item/:item_id", c.RemoveItem)
	}
}

func parseCustomerID(ctx *gin.Context) (int64, bool) {
	customerID, err := strconv.ParseInt(ctx.Param("customer_id"), 10, 64)
	if err != nil || customerID <= 0 {
		response.HandleAppError(ctx, shared.NewValidationError("cart", "customer_id",
			"customer id must be a positive integer"))
		return 0, false
	}
	return customerID, true
}

// ViewCart Get the customer's cart with live prices
func (c *Controller) ViewCart(ctx *gin.Context) {
	customerID, ok := parseCustomerID(ctx)
	if !ok {
		return
	}

	view, err := c.cartService.ViewCart(ctx.Request.Context(), customerID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, view, "Cart retrieved successfully")
}

// AddItem Add a book to the customer's cart
func (c *Controller) AddItem(ctx *gin.Context) {
	customerID, ok := parseCustomerID(ctx)
	if !ok {
		return
	}

	var req cartapp.AddItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "Invalid request parameters", http.StatusBadRequest)
		return
	}

	item, err := c.cartService.AddItem(ctx.Request.Context(), customerID, req.BookID, req.Quantity)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, item, "Item added to cart")
}

// RemoveItem Remove a line item from the cart by id
func (c *Controller) RemoveItem(ctx *gin.Context) {
	itemID := ctx.Param("item_id")
	if itemID == "" {
		response.HandleError(ctx, nil, "Item id is required", http.StatusBadRequest)
		return
	}

	if err := c.cartService.RemoveItem(ctx.Request.Context(), itemID); err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, nil, "Item removed from cart")
}
