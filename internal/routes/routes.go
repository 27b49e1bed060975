package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mayckon02/shapebot-ai/internal/attribution"
	"github.com/Mayckon02/shapebot-ai/internal/completion"
	"github.com/Mayckon02/shapebot-ai/internal/config"
	"github.com/Mayckon02/shapebot-ai/internal/handlers"
	"github.com/Mayckon02/shapebot-ai/internal/middleware"
	"github.com/Mayckon02/shapebot-ai/internal/payment"
	"github.com/Mayckon02/shapebot-ai/internal/repository"
	"github.com/Mayckon02/shapebot-ai/internal/services"
	paymentws "github.com/Mayckon02/shapebot-ai/internal/websocket"
	"github.com/Mayckon02/shapebot-ai/pkg/logger"
)

// RegisterRoutes wires the full API surface. The returned cleanup stops the
// background payment watchers and must run before the process exits.
func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, log *logger.Logger) (func(), error) {
	userRepo := repository.NewUserRepository(db)
	userProfileRepo := repository.NewUserProfileRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	quotaRepo := repository.NewQuotaRepository(db)
	weightRepo := repository.NewWeightRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	hub := paymentws.NewHub()
	go hub.Run()

	completionClient := completion.NewClient(cfg.OpenAIAPIKey).WithModel(cfg.OpenAIModel)
	gateway := payment.NewClient(cfg.PaymentAPIURL, cfg.PaymentSecretKey)
	watcher := payment.NewWatcher(gateway, cfg.PaymentPollInterval, cfg.PaymentPollAttempts, log)
	tracker := attribution.NewClient(cfg.UTMifyAPIURL, cfg.UTMifyAPIToken)

	sessionService := services.NewSessionService(userRepo, cfg.JWTSecret)
	profileService := services.NewProfileService(userProfileRepo, quotaRepo, messageRepo, weightRepo)
	chatService := services.NewChatService(sessionService, profileService, completionClient, log)
	checkoutService := services.NewCheckoutService(
		paymentRepo,
		userRepo,
		gateway,
		watcher,
		tracker,
		hub,
		cfg.AppURL,
		log,
	)

	authHandler := handlers.NewAuthHandler(sessionService, profileService)
	onboardingHandler := handlers.NewOnboardingHandler(profileService)
	chatHandler := handlers.NewChatHandler(chatService)
	weightHandler := handlers.NewWeightHandler(profileService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	wsHandler := handlers.NewWSHandler(hub, cfg.JWTSecret)

	api := app.Group("/api")
	authRequired := middleware.AuthRequired(cfg.JWTSecret)

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", authRequired, authHandler.Me)
	auth.Post("/logout", authRequired, authHandler.Logout)

	// The websocket route carries its own auth (token via query or header),
	// so the bearer guard goes on each REST subgroup rather than on /v1.
	v1 := api.Group("/v1")

	users := v1.Group("/users", authRequired)
	users.Post("/onboarding", onboardingHandler.SaveProfile)
	users.Get("/profile", onboardingHandler.GetProfile)

	chat := v1.Group("/chat", authRequired)
	chat.Get("/messages", chatHandler.GetMessages)
	chat.Post("/messages", chatHandler.SendMessage)
	chat.Delete("/history", chatHandler.ClearHistory)

	weights := v1.Group("/weights", authRequired)
	weights.Get("", weightHandler.ListWeights)
	weights.Post("", weightHandler.AddWeight)
	v1.Get("/dashboard", authRequired, weightHandler.Dashboard)

	checkout := v1.Group("/checkout", authRequired)
	checkout.Get("/plans", checkoutHandler.ListPlans)
	checkout.Post("/pix", checkoutHandler.CreatePix)
	checkout.Get("/payments/:id", checkoutHandler.GetPayment)
	checkout.Post("/payments/:id/retry", checkoutHandler.Retry)

	v1.Use("/ws", wsHandler.WebSocketAuth)
	v1.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	if err := registerDocsRoutes(app, cfg); err != nil {
		return nil, err
	}

	return checkoutService.Shutdown, nil
}
