package bootstrap

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tutorlink-be/internal/config"
	"tutorlink-be/internal/controller"
	"tutorlink-be/internal/handler"
	"tutorlink-be/internal/pkg/logger"
	"tutorlink-be/internal/pkg/mailer"
	"tutorlink-be/internal/repository/implementation"
	"tutorlink-be/internal/repository/unitofwork"
	"tutorlink-be/internal/service"
	"tutorlink-be/internal/websocket"
	pktNats "tutorlink-be/pkg/nats"
	"tutorlink-be/pkg/payment"
	"tutorlink-be/pkg/stream"
)

type Container struct {
	// Controllers
	AuthController      controller.IAuthController
	UserController      controller.IUserController
	SessionController   controller.ISessionController
	PaymentController   controller.IPaymentController
	MessagingController controller.IMessagingController

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	// Infrastructure handles exposed for shutdown.
	MessageFeed *stream.Feed
	NatsPub     *pktNats.Publisher
	NatsSub     *pktNats.Subscriber
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	messageFeed := stream.NewFeed()

	gateway := payment.NewMidtransGateway(cfg.Payment.MidtransServerKey, cfg.Payment.MidtransIsProduction)

	// 3. Services
	authService := service.NewAuthService(uowFactory, cfg.JWT.Secret)
	userService := service.NewUserService(uowFactory)
	sessionService := service.NewSessionService(uowFactory, emailService, natsPub, sysLogger)
	paymentService := service.NewPaymentService(uowFactory, gateway, sessionService, sysLogger)
	messagingService := service.NewMessagingService(uowFactory, messageFeed, natsPub, sysLogger)

	// 4. Notification worker
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	return &Container{
		AuthController:      controller.NewAuthController(authService),
		UserController:      controller.NewUserController(userService),
		SessionController:   controller.NewSessionController(sessionService),
		PaymentController:   controller.NewPaymentController(paymentService),
		MessagingController: controller.NewMessagingController(messagingService, sysLogger),

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,

		MessageFeed: messageFeed,
		NatsPub:     natsPub,
		NatsSub:     natsSub,
	}
}
