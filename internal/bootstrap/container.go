package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-studyassistant-be/internal/config"
	"ai-studyassistant-be/internal/controller"
	"ai-studyassistant-be/internal/pkg/logger"
	"ai-studyassistant-be/internal/pkg/mailer"
	"ai-studyassistant-be/internal/repository/memory"
	"ai-studyassistant-be/internal/repository/unitofwork"
	"ai-studyassistant-be/internal/service"
	"ai-studyassistant-be/pkg/payments"
	"ai-studyassistant-be/pkg/storage"

	pktNats "ai-studyassistant-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const webhookDedupeTTL = 48 * time.Hour

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	PlanController     controller.IPlanController
	PaymentController  controller.IPaymentController
	WebhookController  controller.IWebhookController
	MaterialController controller.IMaterialController
	UsageController    controller.IUsageController

	// Background services (main.go starts these)
	TtlExpirer          *service.TtlExpirerService
	NotificationService *service.NotificationService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.App.ClientURL,
	)

	// 2. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	deduper := payments.NewEventDeduper(rdb, webhookDedupeTTL)

	// Object storage
	s3Store, err := storage.NewS3Storage(context.Background(), storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize object storage: %v", err)
	}

	// Payment providers
	stripeProvider := payments.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	paystackProvider := payments.NewPaystackProvider(cfg.Paystack.SecretKey)
	registry := payments.NewRegistry(stripeProvider, paystackProvider)

	// 3. Services
	lifecycleService := service.NewSubscriptionLifecycleService(uowFactory, natsPub, sysLogger)
	authService := service.NewAuthService(uowFactory, lifecycleService)
	planService := service.NewPlanService(uowFactory)
	checkoutService := service.NewCheckoutService(uowFactory, registry, lifecycleService, cfg.App.ClientURL, sysLogger)
	subscriptionService := service.NewSubscriptionService(uowFactory, registry, lifecycleService, cfg.App.ClientURL, sysLogger)
	transactionService := service.NewTransactionService(uowFactory, registry)
	stripeWebhookService := service.NewStripeWebhookService(uowFactory, stripeProvider, lifecycleService, deduper, sysLogger)
	paystackWebhookService := service.NewPaystackWebhookService(uowFactory, paystackProvider, lifecycleService, deduper, sysLogger)

	planCache := memory.NewPlanCache()
	usageService := service.NewUsageService(uowFactory, planCache)
	materialService := service.NewMaterialService(uowFactory, usageService, s3Store, sysLogger)

	ttlExpirer := service.NewTtlExpirerService(uowFactory, sysLogger)
	notifService := service.NewNotificationService(uowFactory, natsSub, emailService, sysLogger)

	// 4. Controllers
	return &Container{
		AuthController:     controller.NewAuthController(authService),
		PlanController:     controller.NewPlanController(planService),
		PaymentController:  controller.NewPaymentController(checkoutService, subscriptionService, transactionService),
		WebhookController:  controller.NewWebhookController(stripeWebhookService, paystackWebhookService),
		MaterialController: controller.NewMaterialController(materialService),
		UsageController:    controller.NewUsageController(usageService),

		TtlExpirer:          ttlExpirer,
		NotificationService: notifService,
	}
}
