package book

import (
	"bookcart/api/response"
	cartapp "bookcart/application/cart"

	"github.com/gin-gonic/gin"
)

// Controller Book listing controller. Pure passthrough to the book
// service; this service owns no book data.
type Controller struct {
	cartService *cartapp.ApplicationService
}

// NewController Create book controller
func NewController(cartService *cartapp.ApplicationService) *Controller {
	return &Controller{
		cartService: cartService,
	}
}

// RegisterRoutes Register book routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	bookGroup := router.Group("/books")
	{
		bookGroup.GET("/catalog", c.Catalog)
	}
}

// Catalog List all books from the book service
func (c *Controller) Catalog(ctx *gin.Context) {
	books, err := c.cartService.CatalogBooks(ctx.Request.Context())
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, books, "Catalog retrieved successfully")
}
