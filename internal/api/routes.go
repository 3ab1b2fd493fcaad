package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/access"
	"sokrate-backend-go/internal/core"
	"sokrate-backend-go/internal/gate"
	"sokrate-backend-go/internal/middleware"
)

// maxJSONBody bounds request bodies; base64 images dominate the size.
const maxJSONBody = 8 << 20

// Dependencies groups everything SetupRoutes wires into handlers.
type Dependencies struct {
	Sessions        *middleware.SessionMiddleware
	Gate            *gate.Gate
	ProfileService  core.ProfileService
	TutorService    core.TutorService
	BillingService  core.BillingService
	HistoryService  core.HistoryService
	FeedbackService core.FeedbackService
	Metrics         http.Handler
	StaticDir       string
	Logger          *zap.Logger
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (request ID, logging, recovery, CORS) is applied in main.go.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	apiGate := deps.Gate.API()

	sessionHandler := NewSessionHandler(deps.Sessions, logger)
	accessHandler := NewAccessHandler(deps.Gate)
	accountHandler := NewAccountHandler(deps.ProfileService, logger)
	tutorHandler := NewTutorHandler(deps.TutorService, logger)
	billingHandler := NewBillingHandler(deps.BillingService, logger)
	historyHandler := NewHistoryHandler(deps.HistoryService, logger)
	feedbackHandler := NewFeedbackHandler(deps.FeedbackService, logger)
	pageHandler := NewPageHandler(deps.StaticDir, deps.Gate)

	// Stripe signs the raw body, so the webhook is registered before the session
	// and body-limit middleware.
	router.POST("/api/billing/webhook", billingHandler.HandleStripeWebhook)

	apiGroup := router.Group("/api", deps.Sessions.Attach(), middleware.BodyLimit(maxJSONBody))
	{
		sessionGroup := apiGroup.Group("/session")
		{
			sessionGroup.GET("", sessionHandler.GetSession)
			sessionGroup.POST("", sessionHandler.ReportSession)
			sessionGroup.DELETE("", sessionHandler.SignOut)
		}

		apiGroup.GET("/access", accessHandler.GetAccess)
		apiGroup.GET("/courses", func(c *gin.Context) {
			c.JSON(http.StatusOK, []interface{}{})
		})

		apiGroup.POST("/solve", apiGate.Plan("/solver"), tutorHandler.Solve)
		apiGroup.POST("/synthesize", apiGate.Plan("/synthesizer"), tutorHandler.Synthesize)
		apiGroup.POST("/quiz/generate", apiGate.Plan("/quizzes"), tutorHandler.GenerateQuiz)

		historyGroup := apiGroup.Group("/history", apiGate.Plan("/history"))
		{
			historyGroup.GET("", historyHandler.List)
			historyGroup.GET("/recent", historyHandler.Recent)
			historyGroup.POST("", historyHandler.Create)
			historyGroup.DELETE("/:id", historyHandler.Delete)
		}

		feedbackGroup := apiGroup.Group("/feedback", apiGate.Plan("/feedback"))
		{
			feedbackGroup.GET("", feedbackHandler.List)
			feedbackGroup.POST("", feedbackHandler.Create)
			feedbackGroup.DELETE("/:id", feedbackHandler.Delete)
		}

		accountGroup := apiGroup.Group("/account", apiGate.Plan("/account"))
		{
			accountGroup.GET("/profile", accountHandler.GetProfile)
			accountGroup.PATCH("/profile", accountHandler.UpdateProfile)
		}

		apiGroup.GET("/subscription/onboarding-status", middleware.RequireIdentity(), accountHandler.OnboardingStatus)
		apiGroup.POST("/create-checkout-session", billingHandler.CreateCheckoutSession)
		apiGroup.GET("/checkout/confirm", middleware.RequireIdentity(), billingHandler.ConfirmCheckout)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Sokrate backend is healthy."})
	})
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	// Pages need the session too; NoRoute handlers only see global middleware.
	router.NoRoute(deps.Sessions.Attach(), pageHandler.NoRoute)

	logger.Info("Routes configured", zap.Strings("gated_pages", access.GatedRoutes()))
}
