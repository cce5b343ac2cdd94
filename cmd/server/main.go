package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/arunprasath/shopcart/internal/config"
	"github.com/arunprasath/shopcart/internal/database"
	"github.com/arunprasath/shopcart/internal/handler"
	"github.com/arunprasath/shopcart/internal/mailer"
	"github.com/arunprasath/shopcart/internal/notify"
	"github.com/arunprasath/shopcart/internal/payment"
	"github.com/arunprasath/shopcart/internal/queue"
	"github.com/arunprasath/shopcart/internal/repository"
	"github.com/arunprasath/shopcart/internal/router"
	"github.com/arunprasath/shopcart/internal/service"
	"github.com/arunprasath/shopcart/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	client, err := database.Open(cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	db := client.Database(cfg.MongoDB)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient()

	products := repository.NewProductRepo(db.Collection("products"))
	users := repository.NewUserRepo(db.Collection("users"))
	orders := repository.NewOrderRepo(db.Collection("orders"))

	mail, err := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}
	uploads, err := storage.New(cfg.UploadDir, cfg.BackendURL)
	if err != nil {
		log.Fatalf("uploads: %v", err)
	}
	gateway := payment.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL)
	whatsapp := notify.NewWhatsApp(cfg.WhatsAppToken, cfg.WhatsAppPhoneID, cfg.AdminPhone, "")

	orderSvc := service.NewOrderService(orders, products, service.Pricing{
		TaxRate:         cfg.TaxRate,
		ShippingFlat:    cfg.ShippingFlat,
		FreeShippingMin: cfg.FreeShippingMin,
		Tolerance:       cfg.PriceTolerance,
	}, cfg.LegacyStockBehavior)

	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler(cfg.Dev())

	router.Register(e, router.Deps{
		Cfg:      cfg,
		Redis:    rdb,
		Auth:     handler.NewAuthHandler(cfg, users, mail, uploads),
		Products: handler.NewProductHandler(products, uploads),
		Orders:   handler.NewOrderHandler(orderSvc, orders, users, whatsapp),
		Payments: handler.NewPaymentHandler(gateway),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
