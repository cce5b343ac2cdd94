// Package router maps the storefront API surface onto Echo routes.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/arunprasath/shopcart/internal/config"
	"github.com/arunprasath/shopcart/internal/handler"
	"github.com/arunprasath/shopcart/internal/middleware"
	"github.com/arunprasath/shopcart/internal/model"
)

// Deps collects everything route registration needs.
type Deps struct {
	Cfg      config.Config
	Redis    *redis.Client
	Auth     *handler.AuthHandler
	Products *handler.ProductHandler
	Orders   *handler.OrderHandler
	Payments *handler.PaymentHandler
}

// Register wires all routes under /api/v1, mirroring the paths the
// storefront frontend calls. Public catalog reads sit behind the Redis
// response cache; the endpoints that send mail or run bcrypt sit behind
// the token-bucket limiter.
func Register(e *echo.Echo, d Deps) {
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	e.GET("/healthz", handler.Health)
	e.Static("/uploads", d.Cfg.UploadDir)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)
	authed := middleware.JWTAuth(d.Cfg.JWTSecret)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := e.Group("/api/v1")

	// catalog (public)
	v1.GET("/products", d.Products.List, cache)
	v1.GET("/product/:id", d.Products.Get, cache)

	// reviews
	v1.PUT("/review", d.Products.CreateReview, authed)
	v1.DELETE("/review", d.Products.DeleteReview, authed)
	v1.GET("/reviews", d.Products.Reviews, authed)

	// auth and account
	v1.POST("/register", d.Auth.Register, limiter)
	v1.POST("/verify-otp", d.Auth.VerifyOTP)
	v1.POST("/resend-otp", d.Auth.ResendOTP, limiter)
	v1.POST("/login", d.Auth.Login, limiter)
	v1.GET("/logout", d.Auth.Logout)
	v1.POST("/password/forgot", d.Auth.ForgotPassword)
	v1.POST("/password/reset/:token", d.Auth.ResetPassword)
	v1.GET("/myprofile", d.Auth.Profile, authed)
	v1.PUT("/password/change", d.Auth.ChangePassword, authed)
	v1.PUT("/update", d.Auth.UpdateProfile, authed)

	// orders
	v1.POST("/order/new", d.Orders.Create, authed)
	v1.GET("/order/:id", d.Orders.Get, authed)
	v1.GET("/myorders", d.Orders.MyOrders, authed)

	// payments
	v1.POST("/payments/order", d.Payments.CreateOrder, authed)
	v1.POST("/payments/verify", d.Payments.VerifyPayment, authed)

	// admin
	admin := v1.Group("/admin", authed, adminOnly)
	admin.GET("/products", d.Products.AdminList)
	admin.POST("/product/new", d.Products.Create)
	admin.PUT("/product/:id", d.Products.Update)
	admin.DELETE("/product/:id", d.Products.Delete)
	admin.GET("/reviews", d.Products.Reviews)
	admin.DELETE("/review", d.Products.DeleteReview)
	admin.GET("/orders", d.Orders.AdminList)
	admin.PUT("/order/:id", d.Orders.Update)
	admin.DELETE("/order/:id", d.Orders.Delete)
	admin.GET("/users", d.Auth.AdminListUsers)
	admin.GET("/user/:id", d.Auth.AdminGetUser)
	admin.PUT("/user/:id", d.Auth.AdminUpdateUser)
	admin.DELETE("/user/:id", d.Auth.AdminDeleteUser)
}
