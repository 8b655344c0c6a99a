package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "salesdesk/api/swagger" // swagger docs
	"salesdesk/internal/config"
	"salesdesk/internal/database"
	"salesdesk/internal/handler"
	"salesdesk/internal/logger"
	"salesdesk/internal/middleware"
	"salesdesk/internal/repository"
	"salesdesk/internal/scheduler"
	"salesdesk/internal/service"
	"salesdesk/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Salesdesk API
// @version         1.0
// @description     Delivery challans, recurring invoices and customer payments.
// @host            localhost:8000
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	defer func() { _ = log.Sync() }()

	middleware.SetJWTSecret(cfg.JWT.Secret)

	db, err := database.NewConnection(cfg.Database, log)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log.Named("ws"))
	go wsHub.Run(ctx)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	salesPersonRepo := repository.NewSalesPersonRepository(db)
	taxRepo := repository.NewTaxOptionRepository(db)
	challanRepo := repository.NewDeliveryChallanRepository(db)
	recurringRepo := repository.NewRecurringInvoiceRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	authService := service.NewAuthService(userRepo, tokenRepo, txManager, service.AuthOptions{
		Secret:     []byte(cfg.JWT.Secret),
		AccessTTL:  cfg.JWT.AccessTokenExpiration,
		RefreshTTL: cfg.JWT.RefreshTokenExpiration,
	}, log.Named("auth"))
	auditService := service.NewAuditService(auditRepo)
	taxService := service.NewTaxService(taxRepo, auditRepo, txManager, wsHub, log.Named("tax"))
	customerService := service.NewCustomerService(customerRepo, salesPersonRepo, auditRepo, txManager, wsHub)
	challanService := service.NewDeliveryChallanService(challanRepo, customerRepo, taxRepo, auditRepo, txManager, wsHub, log.Named("challan"))
	invoiceService := service.NewInvoiceService(invoiceRepo, customerRepo, taxRepo, auditRepo, txManager, wsHub)
	scheduleLoc := scheduler.LoadLocation(cfg.Recurring.TimeZone, log.Named("scheduler"))
	recurringService := service.NewRecurringInvoiceService(recurringRepo, invoiceRepo, customerRepo, salesPersonRepo,
		taxRepo, auditRepo, txManager, wsHub, log.Named("recurring"), scheduleLoc)
	paymentService := service.NewPaymentService(paymentRepo, invoiceRepo, customerRepo, auditRepo, txManager, wsHub)
	reportService := service.NewReportService(challanRepo, invoiceRepo, paymentRepo)

	if err := taxService.SeedDefaults(ctx); err != nil {
		log.Fatal("failed to seed tax options", zap.Error(err))
	}
	if cfg.Seed.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
			log.Fatal("failed to seed admin user", zap.Error(err))
		}
	}

	var sched *scheduler.Scheduler
	if cfg.Recurring.Enabled {
		sched, err = scheduler.New(scheduler.Config{
			Schedule: cfg.Recurring.Schedule,
			Location: scheduleLoc,
		}, recurringService, log.Named("scheduler"))
		if err != nil {
			log.Fatal("failed to configure recurring invoice scheduler", zap.Error(err))
		}
		scheduler.RunOnce(ctx, recurringService, log.Named("scheduler"))
		sched.Start()
	}

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	auditHandler := handler.NewAuditHandler(auditService)
	customerHandler := handler.NewCustomerHandler(customerService)
	taxHandler := handler.NewTaxHandler(taxService)
	challanHandler := handler.NewDeliveryChallanHandler(challanService)
	recurringHandler := handler.NewRecurringInvoiceHandler(recurringService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	reportHandler := handler.NewReportHandler(reportService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.SetupValidator()
	router := gin.New()
	router.Use(logger.GinMiddleware(log.Named("http")), logger.Recovery(log))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "ws_clients": wsHub.ClientCount()})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	// API Routing
	authHandler.RegisterRoutes(router.Group("/api"))
	auditHandler.RegisterRoutes(router.Group("/api/v1"))

	sales := router.Group("/api/v1/sales")
	customerHandler.RegisterRoutes(sales)
	taxHandler.RegisterRoutes(sales)
	challanHandler.RegisterRoutes(sales)
	recurringHandler.RegisterRoutes(sales)
	invoiceHandler.RegisterRoutes(sales)
	paymentHandler.RegisterRoutes(sales)
	reportHandler.RegisterRoutes(sales)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
