package main

import (
	"courtside-server/routes"
	"courtside-server/services"
	"courtside-server/storage"
	"courtside-server/utils"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers
	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifier.WithDefaultBlocklist()
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Routes
	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/google", routes.GoogleLoginOrSignUp)
		user.Post("/apple", routes.AppleLoginOrSignUp)
		user.Post("/forgotpassword", routes.ForgotPassword)
		user.Post("/resetpassword", resetTokenVerifierMiddleware, routes.ResetPassword)
		user.Get("/search", accessTokenVerifierMiddleware, routes.SearchUsers)
		user.Get("/{id}", accessTokenVerifierMiddleware, routes.GetUserProfile)
		user.Patch("/{id}/profile", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.UpdateProfile)
		user.Post("/{id}/avatar", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.UploadAvatar)
		user.Patch("/{id}/settings/notifications", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterAllowsNotifications)
		user.Get("/{id}/preferences", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.GetUserPreferences)
		user.Post("/{id}/preferences", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.CreatePreference)
		user.Put("/{id}/preferences/{preferenceID}", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.UpdatePreference)
		user.Delete("/{id}/preferences/{preferenceID}", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.DeletePreference)
		user.Get("/{id}/reviews", routes.GetUserReviews)
	}

	courts := app.Party("/api/courts")
	{
		courts.Get("/", routes.GetCourts)
		courts.Get("/{id}", routes.GetCourt)
	}

	schedules := app.Party("/api/schedules")
	{
		schedules.Get("/", routes.GetSchedules)
	}

	categories := app.Party("/api/categories")
	{
		categories.Get("/", routes.GetCategories)
	}

	reservations := app.Party("/api/reservations")
	{
		reservations.Get("/", routes.GetReservations)
		reservations.Post("/", accessTokenVerifierMiddleware, routes.CreateReservation)
		reservations.Get("/{id:uint}", routes.GetReservation)
		reservations.Get("/user/{id}", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.GetUserReservations)
		reservations.Post("/{id:uint}/join", accessTokenVerifierMiddleware, routes.JoinReservation)
		reservations.Post("/{id:uint}/leave", accessTokenVerifierMiddleware, routes.LeaveReservation)
		reservations.Post("/{id:uint}/confirm", accessTokenVerifierMiddleware, utils.StaffOnlyMiddleware, routes.ConfirmReservation)
		reservations.Post("/{id:uint}/cancel", accessTokenVerifierMiddleware, routes.CancelReservation)
	}

	reviews := app.Party("/api/reviews")
	{
		reviews.Post("/", accessTokenVerifierMiddleware, routes.CreateReview)
		reviews.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeleteReview)
	}

	matchmaking := app.Party("/api/matchmaking")
	{
		matchmaking.Get("/recommendations", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetRecommendations)
		matchmaking.Get("/score/{otherID:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetPairScore)
		matchmaking.Post("/recompute", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.RecomputeRelations)
		matchmaking.Post("/optimize", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.OptimizeWeights)
		matchmaking.Post("/notify/{id:uint}", accessTokenVerifierMiddleware, utils.StaffOnlyMiddleware, routes.NotifySlot)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Get("/users/{id:uint}", routes.AdminGetUser)
		admin.Patch("/users/{id:uint}/role", utils.SuperAdminOnlyMiddleware, routes.AdminChangeUserRole)
		admin.Patch("/users/{id:uint}/enabled", routes.AdminSetUserEnabled)
		admin.Post("/courts", routes.AdminCreateCourt)
		admin.Patch("/courts/{id:uint}", routes.AdminUpdateCourt)
		admin.Post("/schedules", routes.AdminCreateSchedule)
		admin.Patch("/schedules/{id:uint}", routes.AdminUpdateSchedule)
		admin.Post("/categories", routes.AdminCreateCategory)
		admin.Patch("/categories/{id:uint}", routes.AdminUpdateCategory)
		admin.Patch("/reviews/{id:uint}/visibility", routes.AdminSetReviewVisibility)
		admin.Get("/audit", routes.AdminListAuditLog)
		admin.Get("/stats", routes.AdminStats)
		admin.Get("/activity", routes.AdminActivity)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	// Background jobs
	services.Jobs.AddInterval("expire-pending-reservations", 10*time.Minute, func() {
		if _, err := services.ExpirePendingReservations(); err != nil {
			log.Printf("expire-pending job failed: %v", err)
		}
	})
	services.Jobs.AddInterval("recompute-relations", 3*time.Hour, func() {
		if _, err := services.RecomputeAllRelations(); err != nil {
			log.Printf("recompute job failed: %v", err)
		}
	})
	services.Jobs.AddInterval("optimize-weights", 24*time.Hour, func() {
		if _, err := services.OptimizeWeights(); err != nil {
			log.Printf("optimize job failed: %v", err)
		}
	})

	iris.RegisterOnInterrupt(func() {
		services.Jobs.Shutdown()
	})

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	// Start server
	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
