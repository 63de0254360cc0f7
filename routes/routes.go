package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dat564/e-commerce-sub001/controllers"
	"github.com/dat564/e-commerce-sub001/middleware"
)

// Controllers groups the handler sets registered on the router.
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Order    *controllers.OrderController
	Product  *controllers.ProductController
	Category *controllers.CategoryController
	Sweep    *controllers.SweepController
}

// Register wires every route. Protected groups compose the same two gates
// in a fixed order: authenticate, then authorize.
func Register(r *gin.Engine, auth *middleware.Auth, c Controllers) {
	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Use(middleware.RateLimitMiddleware())
	authRoutes.POST("/register", c.Auth.Register)
	authRoutes.POST("/login", c.Auth.Login)
	authRoutes.POST("/refresh", c.Auth.Refresh)

	userRoutes := api.Group("/users")
	userRoutes.Use(auth.RequireAuth())
	userRoutes.GET("/me", c.User.GetProfile)
	userRoutes.PUT("/me", c.Auth.UpdateProfile)

	productRoutes := api.Group("/products")
	productRoutes.GET("", c.Product.ListProducts)
	productRoutes.GET("/:id", c.Product.GetProduct)

	categoryRoutes := api.Group("/categories")
	categoryRoutes.GET("", c.Category.ListCategories)

	orderRoutes := api.Group("/orders")
	orderRoutes.Use(auth.RequireAuth())
	orderRoutes.POST("", c.Order.CreateOrder)
	orderRoutes.GET("", c.Order.GetOrders)
	orderRoutes.GET("/:id", c.Order.GetOrderByID)

	adminRoutes := api.Group("/admin")
	adminRoutes.Use(auth.RequireAuth(), auth.RequireAdmin())
	adminRoutes.GET("/orders", c.Order.ListOrders)
	adminRoutes.PUT("/orders/:id/status", c.Order.UpdateStatus)
	adminRoutes.GET("/users", c.User.ListUsers)
	adminRoutes.PUT("/users/:id/deactivate", c.User.DeactivateUser)
	adminRoutes.POST("/products", c.Product.CreateProduct)
	adminRoutes.PUT("/products/:id", c.Product.UpdateProduct)
	adminRoutes.DELETE("/products/:id", c.Product.DeleteProduct)
	adminRoutes.POST("/categories", c.Category.CreateCategory)
	adminRoutes.DELETE("/categories/:id", c.Category.DeleteCategory)

	// consumed by the external payment provider
	api.POST("/payments/callback", c.Order.PaymentCallback)

	// invoked by the external scheduler; system-internal, no credential gate
	api.GET("/cron/expire-orders", c.Sweep.ExpireOrders)
}
