package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sreevasthav1710/study10/config"
	"github.com/sreevasthav1710/study10/database"
	"github.com/sreevasthav1710/study10/handlers"
	assignment_handlers "github.com/sreevasthav1710/study10/handlers/assignment"
	auth_handlers "github.com/sreevasthav1710/study10/handlers/auth"
	doubt_handlers "github.com/sreevasthav1710/study10/handlers/doubt"
	node_handlers "github.com/sreevasthav1710/study10/handlers/node"
	resource_handlers "github.com/sreevasthav1710/study10/handlers/resource"
	stats_handlers "github.com/sreevasthav1710/study10/handlers/stats"
	subject_handlers "github.com/sreevasthav1710/study10/handlers/subject"
	test_handlers "github.com/sreevasthav1710/study10/handlers/test"
	"github.com/sreevasthav1710/study10/services/doubts"
	"github.com/sreevasthav1710/study10/services/storage"
	"github.com/sreevasthav1710/study10/services/tests"
	"github.com/sreevasthav1710/study10/services/tree"
	"github.com/sreevasthav1710/study10/utils/auth"
	"github.com/sreevasthav1710/study10/utils/cache"
	"github.com/sreevasthav1710/study10/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "study10-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize Redis cache for brute force protection and tree caching
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection and tree caching will be disabled.", err)
		redisCache = nil
	}

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Initialize object storage for uploaded resources (optional)
	var spacesClient *storage.SpacesClient
	if getEnv, err := config.Get(); err == nil && getEnv.STORAGE_ACCESS_KEY != "" {
		spacesClient, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: getEnv.STORAGE_ACCESS_KEY,
			SecretKey: getEnv.STORAGE_SECRET_KEY,
			Bucket:    getEnv.STORAGE_BUCKET,
			Region:    getEnv.STORAGE_REGION,
			Endpoint:  getEnv.STORAGE_ENDPOINT,
			CDNURL:    getEnv.STORAGE_CDN_URL,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. File uploads will be disabled.", err)
		}
	}

	// Initialize services
	treeService := tree.NewTreeService(db, redisCache)
	testService := tests.NewTestService(db)
	doubtService := doubts.NewDoubtService(db, doubts.NewHub())

	// Initialize handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	subjectHandler := subject_handlers.NewSubjectHandler(db, treeService)
	nodeHandler := node_handlers.NewNodeHandler(treeService)
	resourceHandler := resource_handlers.NewResourceHandler(db, spacesClient)
	assignmentHandler := assignment_handlers.NewAssignmentHandler(db)
	testHandler := test_handlers.NewTestHandler(db, testService)
	doubtHandler := doubt_handlers.NewDoubtHandler(db, doubtService)
	statsHandler := stats_handlers.NewStatsHandler(db, treeService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Subjects: reads for any authenticated user, writes admin only
	subjects := api.Group("/subjects")
	subjects.Get("/", authMiddleware.Required(), subjectHandler.ListSubjects)
	subjects.Get("/:id", authMiddleware.Required(), subjectHandler.GetSubject)
	subjects.Post("/", authMiddleware.RequireAdmin(), subjectHandler.CreateSubject)
	subjects.Put("/:id", authMiddleware.RequireAdmin(), subjectHandler.UpdateSubject)
	subjects.Delete("/:id", authMiddleware.RequireAdmin(), subjectHandler.DeleteSubject)

	// Curriculum nodes: admin CRUD, student progress toggle
	nodes := api.Group("/nodes")
	nodes.Post("/", authMiddleware.RequireAdmin(), nodeHandler.CreateNode)
	nodes.Put("/:id", authMiddleware.RequireAdmin(), nodeHandler.UpdateNode)
	nodes.Delete("/:id", authMiddleware.RequireAdmin(), nodeHandler.DeleteNode)
	nodes.Put("/:id/progress", authMiddleware.RequireStudent(), nodeHandler.ToggleProgress)

	// Chapter attachments, listed per node
	nodes.Get("/:id/resources", authMiddleware.Required(), resourceHandler.ListByChapter)
	nodes.Get("/:id/assignments", authMiddleware.Required(), assignmentHandler.ListByChapter)
	nodes.Get("/:id/tests", authMiddleware.Required(), testHandler.ListByChapter)
	nodes.Post("/:id/resources/upload", authMiddleware.RequireAdmin(), resourceHandler.Upload)

	// Resources (admin only mutations)
	resources := api.Group("/resources")
	resources.Post("/", authMiddleware.RequireAdmin(), resourceHandler.Create)
	resources.Put("/:id", authMiddleware.RequireAdmin(), resourceHandler.Update)
	resources.Delete("/:id", authMiddleware.RequireAdmin(), resourceHandler.Delete)

	// Assignments: admin CRUD, student completion toggle
	assignments := api.Group("/assignments")
	assignments.Post("/", authMiddleware.RequireAdmin(), assignmentHandler.Create)
	assignments.Put("/:id", authMiddleware.RequireAdmin(), assignmentHandler.Update)
	assignments.Delete("/:id", authMiddleware.RequireAdmin(), assignmentHandler.Delete)
	assignments.Put("/:id/completion", authMiddleware.RequireStudent(), assignmentHandler.ToggleCompletion)

	// Tests: admin CRUD plus the student attempt state machine
	testsGroup := api.Group("/tests")
	testsGroup.Get("/:id", authMiddleware.Required(), testHandler.GetTest)
	testsGroup.Post("/", authMiddleware.RequireAdmin(), testHandler.Create)
	testsGroup.Put("/:id", authMiddleware.RequireAdmin(), testHandler.Update)
	testsGroup.Delete("/:id", authMiddleware.RequireAdmin(), testHandler.Delete)
	testsGroup.Post("/:id/questions", authMiddleware.RequireAdmin(), testHandler.AddQuestion)
	testsGroup.Get("/:id/submissions", authMiddleware.RequireAdmin(), testHandler.ListSubmissions)
	testsGroup.Get("/:id/attempt", authMiddleware.RequireStudent(), testHandler.GetAttempt)
	testsGroup.Post("/:id/start", authMiddleware.RequireStudent(), testHandler.StartAttempt)
	testsGroup.Post("/:id/answer", authMiddleware.RequireStudent(), testHandler.SaveAnswer)
	testsGroup.Post("/:id/submit", authMiddleware.RequireStudent(), testHandler.SubmitAttempt)

	questions := api.Group("/questions")
	questions.Put("/:id", authMiddleware.RequireAdmin(), testHandler.UpdateQuestion)
	questions.Delete("/:id", authMiddleware.RequireAdmin(), testHandler.DeleteQuestion)

	// Doubts: students own their threads, admins see everything
	doubtsGroup := api.Group("/doubts")
	doubtsGroup.Post("/", authMiddleware.RequireStudent(), doubtHandler.Create)
	doubtsGroup.Get("/", authMiddleware.RequireStudent(), doubtHandler.ListMine)
	doubtsGroup.Get("/:id", authMiddleware.Required(), doubtHandler.Get)
	doubtsGroup.Post("/:id/replies", authMiddleware.Required(), doubtHandler.Reply)
	doubtsGroup.Put("/:id/resolve", authMiddleware.RequireAdmin(), doubtHandler.Resolve)

	adminDoubts := api.Group("/admin/doubts", authMiddleware.RequireAdmin())
	adminDoubts.Get("/", doubtHandler.ListAll)
	adminDoubts.Get("/stream", doubtHandler.Stream)

	// Dashboard stats
	api.Get("/stats/dashboard", authMiddleware.Required(), statsHandler.Dashboard)
}
