package main

import (
	"database/sql"
	"log"

	"firebase.google.com/go/messaging"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"mindaudit/internal/config"
	"mindaudit/internal/handlers"
	"mindaudit/internal/repositories"
	"mindaudit/internal/services"
	"mindaudit/utils"
)

type application struct {
	errorLog   *log.Logger
	infoLog    *log.Logger
	db         *sql.DB
	signingKey string

	userRepo         *repositories.UserRepository
	collaboratorRepo *repositories.CollaboratorRepository

	consultationService *services.ConsultationService

	userHandler         *handlers.UserHandler
	collaboratorHandler *handlers.CollaboratorHandler
	packageHandler      *handlers.HourPackageHandler
	purchaseHandler     *handlers.PurchaseHandler
	consultationHandler *handlers.ConsultationHandler
	budgetHandler       *handlers.BudgetHandler
	commissionHandler   *handlers.CommissionHandler
	stripeWebhook       *handlers.StripeWebhookHandler
	pandadocWebhook     *handlers.PandaDocWebhookHandler
	fcmHandler          *handlers.FCMHandler
	auditHandler        *handlers.AuditLogHandler

	wsManager *WebSocketManager
}

func initializeApp(cfg config.Config, db *sql.DB, rdb *redis.Client, fcmClient *messaging.Client, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := repositories.UserRepository{DB: db}
	collaboratorRepo := repositories.CollaboratorRepository{DB: db}
	packageRepo := repositories.HourPackageRepository{DB: db}
	purchaseRepo := repositories.HourPurchaseRepository{DB: db}
	consultationRepo := repositories.ConsultationRepository{DB: db}
	messageRepo := repositories.MessageRepository{DB: db}
	budgetRepo := repositories.BudgetRepository{DB: db}
	commissionRepo := repositories.CommissionRepository{DB: db}
	auditRepo := repositories.AuditLogRepository{DB: db}
	webhookEventRepo := repositories.WebhookEventRepository{DB: db, RDB: rdb, ErrorLog: errorLog}

	// Providers
	stripeService := &services.StripeService{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
	}
	pandadocService := &services.PandaDocService{SharedKey: cfg.PandaDoc.SharedKey}
	notificationService := &services.NotificationService{
		Client:   fcmClient,
		UserRepo: &userRepo,
		ErrorLog: errorLog,
	}

	tokenManager, err := utils.NewManager(cfg.Auth.SigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	// Services
	userService := &services.UserService{
		UserRepo:         &userRepo,
		CollaboratorRepo: &collaboratorRepo,
		TokenManager:     tokenManager,
		SigningKey:       cfg.Auth.SigningKey,
	}
	collaboratorService := &services.CollaboratorService{
		DB:               db,
		CollaboratorRepo: &collaboratorRepo,
		CommissionRepo:   &commissionRepo,
		UserRepo:         &userRepo,
		AuditRepo:        &auditRepo,
		Notifications:    notificationService,
	}
	packageService := &services.HourPackageService{
		PackageRepo: &packageRepo,
		AuditRepo:   &auditRepo,
	}
	purchaseService := &services.PurchaseService{
		DB:               db,
		Stripe:           stripeService,
		PurchaseRepo:     &purchaseRepo,
		PackageRepo:      &packageRepo,
		CollaboratorRepo: &collaboratorRepo,
		AuditRepo:        &auditRepo,
		Notifications:    notificationService,
	}
	consultationService := &services.ConsultationService{
		DB:               db,
		ConsultationRepo: &consultationRepo,
		CollaboratorRepo: &collaboratorRepo,
		MessageRepo:      &messageRepo,
		AuditRepo:        &auditRepo,
		Notifications:    notificationService,
	}
	commissionService := &services.CommissionService{
		DB:               db,
		CommissionRepo:   &commissionRepo,
		BudgetRepo:       &budgetRepo,
		CollaboratorRepo: &collaboratorRepo,
		AuditRepo:        &auditRepo,
		Notifications:    notificationService,
	}

	wsManager := NewWebSocketManager()

	// Handlers
	consultationHandler := &handlers.ConsultationHandler{
		Service:   consultationService,
		Broadcast: wsManager.Publish,
	}

	return &application{
		errorLog:   errorLog,
		infoLog:    infoLog,
		db:         db,
		signingKey: cfg.Auth.SigningKey,

		userRepo:         &userRepo,
		collaboratorRepo: &collaboratorRepo,

		consultationService: consultationService,

		userHandler:         &handlers.UserHandler{Service: userService},
		collaboratorHandler: &handlers.CollaboratorHandler{Service: collaboratorService},
		packageHandler:      &handlers.HourPackageHandler{Service: packageService},
		purchaseHandler:     &handlers.PurchaseHandler{Service: purchaseService},
		consultationHandler: consultationHandler,
		budgetHandler:       &handlers.BudgetHandler{BudgetRepo: &budgetRepo},
		commissionHandler:   &handlers.CommissionHandler{Service: commissionService},
		stripeWebhook: &handlers.StripeWebhookHandler{
			Stripe:      stripeService,
			Purchases:   purchaseService,
			Commissions: commissionService,
			Events:      &webhookEventRepo,
			ErrorLog:    errorLog,
		},
		pandadocWebhook: &handlers.PandaDocWebhookHandler{
			PandaDoc:      pandadocService,
			Collaborators: collaboratorService,
			Events:        &webhookEventRepo,
			ErrorLog:      errorLog,
		},
		fcmHandler:   &handlers.FCMHandler{UserRepo: &userRepo},
		auditHandler: &handlers.AuditLogHandler{AuditRepo: &auditRepo},

		wsManager: wsManager,
	}
}
