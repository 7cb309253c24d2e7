package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
	"github.com/cuesoftinc/cuelabs-backend/internal/auth"
	"github.com/cuesoftinc/cuelabs-backend/internal/config"
	"github.com/cuesoftinc/cuelabs-backend/internal/database"
	"github.com/cuesoftinc/cuelabs-backend/internal/handlers"
	"github.com/cuesoftinc/cuelabs-backend/internal/middleware"
	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
	"github.com/cuesoftinc/cuelabs-backend/internal/saga"
	"github.com/cuesoftinc/cuelabs-backend/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	_ "github.com/cuesoftinc/cuelabs-backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CueLABS API server",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(); err != nil {
			log.Fatal(err)
		}
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	base := airtable.NewClient(cfg.Airtable.Endpoint, cfg.Airtable.BaseID, cfg.Airtable.APIKey)

	userRepo := repository.NewUserRepository(base)
	bountyRepo := repository.NewBountyRepository(base)
	submissionRepo := repository.NewSubmissionRepository(base)
	earningRepo := repository.NewEarningRepository(base)
	marketRepo := repository.NewMarketRepository(base)
	tokenRepo := repository.NewTokenRepository(db)
	intents := saga.NewStore(db)

	userService := services.NewUserService(userRepo, earningRepo)
	bountyService := services.NewBountyService(bountyRepo, userRepo, submissionRepo)
	reviewService := services.NewReviewService(submissionRepo, bountyRepo, userRepo, earningRepo, intents)
	marketService := services.NewMarketService(marketRepo, userRepo)
	exportService := services.NewExportService(userRepo, earningRepo, cfg.ExportSigningKey)
	tokenService := services.NewTokenService(tokenRepo, cfg.JWT.Secret)

	// Approvals interrupted by a crash or deploy pick up where they stopped.
	reviewService.ResumeUnfinished(context.Background())

	authMiddleware := middleware.NewAuthMiddleware(tokenService, cfg.TestMode)
	adminMiddleware := middleware.NewAdminMiddleware(cfg.AdminEmails)

	bountyHandler := handlers.NewBountyHandler(bountyService)
	userHandler := handlers.NewUserHandler(userService, exportService)
	marketHandler := handlers.NewMarketHandler(marketService)
	adminHandler := handlers.NewAdminHandler(reviewService, userService)
	publicHandler := handlers.NewPublicHandler(bountyService)
	tokenHandler := handlers.NewTokenHandler(tokenService)

	router := gin.Default()

	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("cuelabs_session", store))

	logtoHandler := auth.NewLogtoHandler(&cfg.Logto, userService)

	authRoutes := router.Group("/auth")
	{
		authRoutes.GET("/login", logtoHandler.Login)
		authRoutes.GET("/callback", logtoHandler.Callback)
		authRoutes.GET("/logout", logtoHandler.Logout)
	}

	router.GET("/docs", handlers.SwaggerUIWithBearerFix())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	{
		api.GET("/health", publicHandler.Health)
		api.GET("/stats", publicHandler.GetStats)
		api.GET("/bounties", bountyHandler.ListBounties)
		api.GET("/bounties/:id", bountyHandler.GetBounty)
		api.GET("/users/:id", userHandler.GetUser)
		api.GET("/market/items", marketHandler.ListItems)
		api.GET("/market/items/:id", marketHandler.GetItem)

		authenticated := api.Group("")
		if cfg.TestMode {
			authenticated.Use(authMiddleware.RequireAuth())
		} else {
			authenticated.Use(logtoHandler.RequireAuth())
		}
		{
			authenticated.GET("/me", userHandler.GetMe)
			authenticated.GET("/me/earnings", userHandler.GetMyEarnings)
			authenticated.GET("/me/export", userHandler.ExportEarnings)

			authenticated.POST("/bounties/:id/claim", bountyHandler.ClaimBounty)
			authenticated.POST("/bounties/:id/submissions", bountyHandler.CreateSubmission)

			authenticated.POST("/market/orders", marketHandler.PlaceOrder)
			authenticated.GET("/market/orders", marketHandler.ListMyOrders)

			authenticated.POST("/tokens", tokenHandler.CreateToken)
			authenticated.GET("/tokens", tokenHandler.ListTokens)
			authenticated.DELETE("/tokens/:id", tokenHandler.DeleteToken)
		}

		admin := api.Group("/admin")
		if cfg.TestMode {
			admin.Use(authMiddleware.RequireAuth())
		} else {
			admin.Use(logtoHandler.RequireAuth())
		}
		admin.Use(adminMiddleware.RequireAdmin())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/submissions", adminHandler.ListSubmissions)
			admin.POST("/submissions/:id/accept", adminHandler.AcceptSubmission)
			admin.POST("/submissions/:id/decline", adminHandler.DeclineSubmission)
			admin.GET("/approvals", adminHandler.ListApprovals)
			admin.POST("/approvals/:id/retry", adminHandler.RetryApproval)
		}
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting CueLABS server on %s", addr)
	if cfg.TestMode {
		log.Println("TEST MODE ENABLED - Authentication bypassed")
	}
	return router.Run(addr)
}
