package bootstrap

import (
	"context"
	"time"

	"gen8n-be/internal/config"
	"gen8n-be/internal/controller"
	"gen8n-be/internal/handler"
	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/pkg/mailer"
	"gen8n-be/internal/pkg/payment"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/repository/cache"
	"gen8n-be/internal/repository/contract"
	"gen8n-be/internal/repository/memory"
	"gen8n-be/internal/repository/unitofwork"
	"gen8n-be/internal/service"
	"gen8n-be/internal/websocket"
	"gen8n-be/pkg/events"
	pktNats "gen8n-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	AuthController       controller.IAuthController
	OAuthController      controller.IOAuthController
	OnboardingController controller.IOnboardingController
	CreditController     controller.ICreditController
	SettingsController   controller.ISettingsController
	WorkflowController   controller.IWorkflowController
	PaymentController    controller.IPaymentController
	FeedbackController   controller.IFeedbackController

	// Background services, started by main.go
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService
	WebSocketHub        *websocket.Hub
	WorkflowSocket      *handler.WorkflowSocketHandler

	closers []func()
}

// Close releases broker connections.
func (c *Container) Close() {
	for _, fn := range c.closers {
		fn()
	}
}

// connectRedis returns nil when Redis is unreachable; callers fall back to
// in-process state.
func connectRedis(url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOT", "Invalid Redis URL, using it as an address", map[string]interface{}{"error": err})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("BOOT", "Redis unavailable, falling back to in-memory state", map[string]interface{}{"error": err})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	c := &Container{Logger: sysLogger}

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// 2. Infrastructure
	var publisher events.Publisher = events.NopPublisher{}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("BOOT", "NATS publisher unavailable, events are dropped", map[string]interface{}{"error": err})
	} else {
		publisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("BOOT", "NATS subscriber unavailable, notification emails are disabled", map[string]interface{}{"error": err})
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}

	rdb := connectRedis(cfg.App.RedisURL, sysLogger)
	var wizardStore contract.OnboardingStateStore
	if rdb != nil {
		wizardStore = cache.NewOnboardingStateStore(rdb, cfg.Onboarding.StateTTL)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	} else {
		wizardStore = memory.NewOnboardingStateStore(cfg.Onboarding.StateTTL)
	}

	// In-process bus between the workflow callback and its fan-out.
	bus := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewStdLogger(false, false))

	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	// 3. Services
	authService := service.NewAuthService(uowFactory, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, sysLogger)
	oauthService := service.NewOAuthService(uowFactory, memory.NewOAuthStateStore(), service.OAuthConfig{
		ClientID:     cfg.Auth.GoogleClientID,
		ClientSecret: cfg.Auth.GoogleClientSecret,
		RedirectURL:  cfg.Auth.GoogleRedirectURL,
		ClientURL:    cfg.App.ClientURL,
		JWTSecret:    cfg.Auth.JWTSecret,
		TokenTTL:     cfg.Auth.TokenTTL,
	}, sysLogger)
	onboardingService := service.NewOnboardingService(uowFactory, wizardStore, publisher, sysLogger)
	creditService := service.NewCreditService(uowFactory, sysLogger)
	settingsService := service.NewSettingsService(uowFactory, sysLogger)
	triggerService := service.NewTriggerService(uowFactory, resty.New(), service.TriggerConfig{
		WebhookURL:               cfg.Generator.WebhookURL,
		CallbackURL:              cfg.App.BaseURL + "/api/workflow-webhook",
		PlatformMainProvider:     cfg.Generator.PlatformMainProvider,
		PlatformFallbackProvider: cfg.Generator.PlatformFallbackProvider,
		PlatformKeys:             cfg.Generator.PlatformKeys,
	}, sysLogger)
	workflowService := service.NewWorkflowService(uowFactory, triggerService, bus, cfg.Generator.CallbackSecret, sysLogger)
	billingService := service.NewBillingService(
		uowFactory,
		payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret),
		publisher,
		service.BillingConfig{
			ClientURL:      cfg.App.ClientURL,
			UnitPriceCents: cfg.Stripe.UnitPriceCents,
			Currency:       cfg.Stripe.Currency,
		},
		sysLogger,
	)
	feedbackService := service.NewFeedbackService(uowFactory, sysLogger)

	c.ConsumerService = service.NewConsumerService(bus, service.WorkflowUpdatedTopic, c.WebSocketHub, publisher, sysLogger)
	if natsSub != nil {
		c.NotificationService = service.NewNotificationService(natsSub, uowFactory, emailService, sysLogger)
	}

	// 4. Controllers
	guard := serverutils.NewSessionGuard(cfg.Auth.JWTSecret, cfg.Auth.SessionCookieName)
	onboardingGuard := serverutils.NewOnboardingGuard(onboardingService)
	cookie := controller.SessionCookie{
		Name:   cfg.Auth.SessionCookieName,
		TTL:    cfg.Auth.TokenTTL,
		Secure: cfg.App.IsProduction(),
	}

	c.AuthController = controller.NewAuthController(authService, cfg.Auth.JWTSecret, cookie)
	c.OAuthController = controller.NewOAuthController(oauthService, cfg.App.ClientURL, sysLogger)
	c.OnboardingController = controller.NewOnboardingController(onboardingService, guard)
	c.CreditController = controller.NewCreditController(creditService, guard)
	c.SettingsController = controller.NewSettingsController(settingsService, guard)
	c.WorkflowController = controller.NewWorkflowController(workflowService, triggerService, guard, onboardingGuard)
	c.PaymentController = controller.NewPaymentController(billingService, guard)
	c.FeedbackController = controller.NewFeedbackController(feedbackService, guard)
	c.WorkflowSocket = handler.NewWorkflowSocketHandler(c.WebSocketHub, cfg.Auth.JWTSecret, wsLogger)

	return c
}
