package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"fundis/internal/config"
	"fundis/internal/database"
	"fundis/internal/middleware"
	"fundis/internal/modules/auth"
	"fundis/internal/modules/blog"
	"fundis/internal/modules/booking"
	"fundis/internal/modules/notify"
	"fundis/internal/modules/payment"
	"fundis/internal/mpesa"
	jwtsvc "fundis/internal/pkg/jwt"
	"fundis/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	loggerf := log.Printf

	sessionRepo := repository.NewPaymentSessionRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	gateway := mpesa.NewClient(mpesa.Config{
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		Passkey:        cfg.Mpesa.Passkey,
		Shortcode:      cfg.Mpesa.Shortcode,
		BaseURL:        cfg.Mpesa.BaseURL,
		CallbackURL:    cfg.Mpesa.CallbackURL,
		Timeout:        cfg.Mpesa.Timeout,
	})

	hub := notify.NewHub(loggerf)
	defer hub.Close()

	paymentService := payment.NewService(gateway, sessionRepo, bookingRepo, hub, payment.PollConfig{
		InitialDelay:      cfg.Poll.InitialDelay,
		Interval:          cfg.Poll.Interval,
		MaxAttempts:       cfg.Poll.MaxAttempts,
		PendingResultCode: cfg.Poll.PendingResultCode,
	}, loggerf)
	defer paymentService.Close()
	paymentHandler := payment.NewHandler(paymentService, loggerf)

	bookingService := booking.NewService(bookingRepo, loggerf)
	bookingHandler := booking.NewHandler(bookingService)

	blogService := blog.NewService(postRepo, commentRepo, categoryRepo, loggerf)
	blogHandler := blog.NewHandler(blogService)

	authService := auth.NewService(cfg.AdminEmail, cfg.AdminPasswordHash, j, loggerf)
	authHandler := auth.NewHandler(authService)

	notifyHandler := notify.NewHandler(hub, loggerf)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		blogHandler.RegisterPublicRoutes(v1)
		paymentHandler.RegisterRoutes(v1)
		bookingHandler.RegisterRoutes(v1)
		notifyHandler.RegisterRoutes(v1)

		// admin content management
		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(j), middleware.AdminOnly())
		{
			blogHandler.RegisterAdminRoutes(admin)
		}
	}

	log.Printf("listening on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
