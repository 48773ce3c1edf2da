package main

import (
	"campus-voice-server/models"
	"campus-voice-server/routes"
	"campus-voice-server/storage"
	"campus-voice-server/utils"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeRedis()
	ensureAdminUser()

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
		user.Get("/me", accessTokenVerifierMiddleware, routes.CurrentUser)
		user.Get("/{id}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetUser)
		user.Patch("/{id}/pushtoken", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterPushToken)
		user.Patch("/{id}/settings/notifications", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AllowsNotifications)
	}

	concern := app.Party("/api/concern")
	{
		concern.Get("/", routes.ListConcerns)
		concern.Post("/", routes.SubmitConcern)
		concern.Post("/as-user", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.SubmitConcern)
		concern.Get("/stats", routes.ConcernStatusBoard)
		concern.Get("/identity", routes.NewVoterIdentity)
		concern.Get("/{id:uint}", routes.GetConcern)
		concern.Post("/{id:uint}/replies", routes.CreateConcernReply)
		concern.Post("/{id:uint}/vote", routes.VoteConcern)
	}

	notice := app.Party("/api/notice")
	{
		notice.Get("/", routes.ListNotices)
	}

	event := app.Party("/api/event")
	{
		event.Get("/", routes.ListEvents)
	}

	quiz := app.Party("/api/quiz")
	{
		quiz.Get("/", routes.ListQuizzes)
		quiz.Get("/{id:uint}", routes.GetQuiz)
		quiz.Post("/{id:uint}/responses", routes.SubmitQuizResponse)
		quiz.Get("/{id:uint}/leaderboard", routes.GetQuizLeaderboard)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Patch("/users/{id:uint}/role", utils.SuperAdminOnlyMiddleware, routes.AdminChangeUserRole)
		admin.Get("/concerns", routes.AdminListConcerns)
		admin.Get("/concerns/{id:uint}", routes.AdminGetConcern)
		admin.Patch("/concerns/{id:uint}/status", routes.AdminUpdateConcernStatus)
		admin.Post("/concerns/{id:uint}/hide", routes.AdminToggleConcernHidden)
		admin.Post("/concerns/{id:uint}/replies", routes.AdminReplyConcern)
		admin.Delete("/concerns/{id:uint}", routes.AdminDeleteConcern)
		admin.Post("/notices", routes.AdminCreateNotice)
		admin.Patch("/notices/{id:uint}", routes.AdminUpdateNotice)
		admin.Delete("/notices/{id:uint}", routes.AdminDeleteNotice)
		admin.Post("/events", routes.AdminCreateEvent)
		admin.Patch("/events/{id:uint}", routes.AdminUpdateEvent)
		admin.Delete("/events/{id:uint}", routes.AdminDeleteEvent)
		admin.Post("/quizzes", routes.AdminCreateQuiz)
		admin.Delete("/quizzes/{id:uint}", routes.AdminDeleteQuiz)
		admin.Get("/stats", routes.AdminStats)
		admin.Get("/activity", routes.AdminActivity)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

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

// ensureAdminUser bootstraps the dashboard account from ADMIN_EMAIL and
// ADMIN_PASSWORD so a fresh deployment always has an admin login.
func ensureAdminUser() {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("⚠️  ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin bootstrap")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("❌ Admin bootstrap failed to hash password: %v", err)
		return
	}

	var admin models.User
	defaults := models.User{
		FirstName: "Admin",
		Email:     email,
		Password:  string(hashed),
		Role:      "super_admin",
	}
	// Assign instead of a create condition: the row is matched by email alone,
	// and a changed ADMIN_PASSWORD rotates the stored hash on restart.
	result := storage.DB.Where("email = ?", email).Assign(defaults).FirstOrCreate(&admin)
	if result.Error != nil {
		log.Printf("❌ Admin bootstrap failed: %v", result.Error)
		return
	}
	log.Printf("✅ Admin account %s ready", email)
}
