package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/handlers"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/orders"
	"github.com/example/bazaar/internal/repository"
	"github.com/example/bazaar/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	paymentService := services.NewPaymentService(cfg.StripeSecretKey)

	store := repository.NewGormStore(db)
	orderService := orders.NewService(store, paymentService)

	authHandler := handlers.NewAuthHandler(db, cfg)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	orderHandler := handlers.NewOrderHandler(db, cfg, orderService, paymentService, telegramService)
	returnHandler := handlers.NewReturnHandler(db, orderService, telegramService)
	profileHandler := handlers.NewProfileHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Public catalog
	api.Get("/categories", productHandler.ListCategories)
	api.Get("/products", productHandler.ListProducts)
	api.Get("/products/:id", productHandler.GetProduct)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Post("/products/:id/reviews", productHandler.CreateReview)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Get("/profile/addresses", profileHandler.ListAddresses)
	protected.Post("/profile/addresses", profileHandler.CreateAddress)
	protected.Put("/profile/addresses/:id", profileHandler.UpdateAddress)
	protected.Delete("/profile/addresses/:id", profileHandler.DeleteAddress)

	protected.Get("/cart", cartHandler.GetCart)
	protected.Post("/cart/items", cartHandler.AddItem)
	protected.Put("/cart/items/:itemId", cartHandler.UpdateItem)
	protected.Delete("/cart/items/:itemId", cartHandler.RemoveItem)
	protected.Delete("/cart", cartHandler.ClearCart)

	protected.Post("/orders/checkout", orderHandler.Checkout)
	protected.Post("/orders/confirm", orderHandler.ConfirmPayment)
	protected.Get("/orders", orderHandler.ListMyOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Post("/orders/:id/cancel", orderHandler.CancelOrder)

	protected.Post("/returns", returnHandler.CreateReturn)
	protected.Get("/returns", returnHandler.ListMyReturns)

	// Seller routes
	seller := protected.Group("/seller", middleware.RequireRoles(models.RoleSeller, models.RoleAdmin))
	seller.Get("/products", productHandler.ListSellerProducts)
	seller.Post("/products", productHandler.CreateProduct)
	seller.Put("/products/:id", productHandler.UpdateProduct)
	seller.Delete("/products/:id", productHandler.DeleteProduct)
	seller.Get("/orders", orderHandler.ListSellerOrders)
	seller.Put("/orders/:id/items/:itemId/status", orderHandler.UpdateItemStatus)
	seller.Post("/orders/:id/cancel-items", orderHandler.CancelSellerItems)
	seller.Get("/returns", returnHandler.ListSellerReturns)
	seller.Put("/returns/:id", returnHandler.ProcessReturn)

	// Admin routes
	admin := protected.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.Get("/orders", orderHandler.ListAllOrders)
	admin.Put("/orders/:id/status", orderHandler.ForceOrderStatus)
	admin.Get("/returns", returnHandler.ListAllReturns)
}
